package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-idp-batch/internal/models"
)

// EnrollmentRepository reads subject enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListEligibleBySubject returns confirmed and graduated enrollments taken directly
// in the subject, excluding those scoped to a parent program or learning object.
func (r *EnrollmentRepository) ListEligibleBySubject(ctx context.Context, subjectID int64) ([]models.Enrollment, error) {
	const query = `SELECT id, student_id, subject_id, status, start_date, graduation_date, last_login
        FROM subject_enrollments
        WHERE subject_id = $1
          AND status IN ($2, $3)
          AND program_id IS NULL
          AND learning_object_id IS NULL
        ORDER BY id`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, subjectID,
		models.EnrollmentStatusConfirmed, models.EnrollmentStatusGraduated); err != nil {
		return nil, fmt.Errorf("list subject enrollments: %w", err)
	}
	return enrollments, nil
}
