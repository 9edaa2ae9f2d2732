package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-idp-batch/internal/models"
)

// WeightsRepository reads the per-subject IDP weight configuration.
type WeightsRepository struct {
	db *sqlx.DB
}

// NewWeightsRepository constructs the repository.
func NewWeightsRepository(db *sqlx.DB) *WeightsRepository {
	return &WeightsRepository{db: db}
}

// List returns the configured subjects, optionally restricted to subjectIDs.
func (r *WeightsRepository) List(ctx context.Context, subjectIDs []int64) ([]models.SubjectWeights, error) {
	query := `SELECT subject_id, visibility_weight, submissions_weight, pace_weight, inactivity_weight
        FROM idp_subject_weights`
	var args []interface{}
	if len(subjectIDs) > 0 {
		query += " WHERE subject_id = ANY($1)"
		args = append(args, pq.Array(subjectIDs))
	}
	query += " ORDER BY subject_id"

	var weights []models.SubjectWeights
	if err := r.db.SelectContext(ctx, &weights, query, args...); err != nil {
		return nil, fmt.Errorf("list subject weights: %w", err)
	}
	return weights, nil
}
