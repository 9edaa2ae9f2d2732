package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-idp-batch/internal/models"
)

// SubjectRepository reads subject metadata.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs the repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// Duration returns the subject's nominal duration, or nil when the subject row is missing.
func (r *SubjectRepository) Duration(ctx context.Context, subjectID int64) (*models.SubjectDuration, error) {
	const query = `SELECT duration, duration_unit FROM subjects WHERE id = $1`
	var duration models.SubjectDuration
	if err := r.db.GetContext(ctx, &duration, query, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch subject duration: %w", err)
	}
	return &duration, nil
}
