package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ActivityRepository reads the activity facts behind the visibility and submission indicators.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs the repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// ResourceVisibility returns the student's overall progress percentage in the subject, or nil when unknown.
func (r *ActivityRepository) ResourceVisibility(ctx context.Context, studentID, subjectID int64) (*float64, error) {
	const query = `SELECT progress FROM resource_progress
        WHERE student_id = $1 AND subject_id = $2 AND learning_object_id IS NULL
        LIMIT 1`
	var progress sql.NullFloat64
	if err := r.db.GetContext(ctx, &progress, query, studentID, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch resource progress: %w", err)
	}
	if !progress.Valid {
		return nil, nil
	}
	return &progress.Float64, nil
}

// RequiredActivityCount returns how many graded activities the subject defines.
func (r *ActivityRepository) RequiredActivityCount(ctx context.Context, subjectID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM subject_grade_items WHERE subject_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, subjectID); err != nil {
		return 0, fmt.Errorf("count required activities: %w", err)
	}
	return count, nil
}

// SubmittedActivityCount returns how many graded activities the student turned in.
func (r *ActivityRepository) SubmittedActivityCount(ctx context.Context, studentID, subjectID int64) (int, error) {
	const query = `SELECT COUNT(score) FROM student_grades WHERE subject_id = $1 AND student_id = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, subjectID, studentID); err != nil {
		return 0, fmt.Errorf("count submitted activities: %w", err)
	}
	return count, nil
}
