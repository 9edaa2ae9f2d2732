package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-idp-batch/internal/models"
	appErrors "github.com/noah-isme/sma-idp-batch/pkg/errors"
)

// IdpResultRepository persists IDP rows, one per (student, subject).
type IdpResultRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewIdpResultRepository constructs the repository.
func NewIdpResultRepository(db *sqlx.DB) *IdpResultRepository {
	return &IdpResultRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

const (
	lockPairQuery     = `SELECT pg_advisory_xact_lock($1)`
	countResultsQuery = `SELECT COUNT(*) FROM idp_results WHERE student_id = $1 AND subject_id = $2`
)

// pairLockKey packs (subject, student) into one advisory lock key. Colliding keys only serialise
// unrelated pairs.
func pairLockKey(studentID, subjectID int64) int64 {
	return subjectID<<32 ^ (studentID & 0xffffffff)
}

// Upsert inserts the row on first evaluation or rewrites every mutable field, leaving the
// top-decile flag and the enrollment reference untouched. It reports whether a row was created.
// Each call is its own transaction and holds an advisory lock on the pair until commit,
// so overlapping runs cannot both insert.
func (r *IdpResultRepository) Upsert(ctx context.Context, result *models.IdpResult) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin idp upsert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, lockPairQuery, pairLockKey(result.StudentID, result.SubjectID)); err != nil {
		tx.Rollback() //nolint:errcheck
		return false, fmt.Errorf("lock idp pair: %w", err)
	}

	n, err := countResults(ctx, tx, result.StudentID, result.SubjectID)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return false, err
	}

	now := r.now()
	result.UpdatedAt = now
	created := n == 0
	if created {
		if result.ID == "" {
			result.ID = uuid.NewString()
		}
		result.CreatedAt = now
		const insert = `INSERT INTO idp_results (id, student_id, subject_id, enrollment_id, visibility_score,
            submissions_score, pace_score, inactivity_score, idp_score, tier, top_decile, created_at, updated_at)
            VALUES (:id, :student_id, :subject_id, :enrollment_id, :visibility_score, :submissions_score,
            :pace_score, :inactivity_score, :idp_score, :tier, FALSE, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, insert, result); err != nil {
			tx.Rollback() //nolint:errcheck
			return false, fmt.Errorf("insert idp result: %w", err)
		}
	} else {
		const update = `UPDATE idp_results
            SET visibility_score = $1, submissions_score = $2, pace_score = $3, inactivity_score = $4,
                idp_score = $5, tier = $6, updated_at = $7
            WHERE student_id = $8 AND subject_id = $9`
		if _, err := tx.ExecContext(ctx, update,
			result.VisibilityScore, result.SubmissionsScore, result.PaceScore, result.InactivityScore,
			result.Score, result.Tier, now, result.StudentID, result.SubjectID); err != nil {
			tx.Rollback() //nolint:errcheck
			return false, fmt.Errorf("update idp result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit idp result: %w", err)
	}
	return created, nil
}

// ListHighTier returns the high-tier rows of the given students in creation order.
func (r *IdpResultRepository) ListHighTier(ctx context.Context, subjectID int64, studentIDs []int64) ([]models.DecileCandidate, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT student_id, idp_score, created_at FROM idp_results
        WHERE subject_id = $1 AND student_id = ANY($2) AND tier = $3
        ORDER BY created_at ASC, id ASC`
	var candidates []models.DecileCandidate
	if err := r.db.SelectContext(ctx, &candidates, query, subjectID, pq.Array(studentIDs), models.TierHigh); err != nil {
		return nil, fmt.Errorf("list high tier results: %w", err)
	}
	return candidates, nil
}

// MarkTopDecile sets the top-decile flag for the given students. It never clears the flag.
func (r *IdpResultRepository) MarkTopDecile(ctx context.Context, subjectID int64, studentIDs []int64) error {
	if len(studentIDs) == 0 {
		return nil
	}
	const query = `UPDATE idp_results SET top_decile = TRUE WHERE subject_id = $1 AND student_id = ANY($2)`
	if _, err := r.db.ExecContext(ctx, query, subjectID, pq.Array(studentIDs)); err != nil {
		return fmt.Errorf("mark top decile: %w", err)
	}
	return nil
}

// countResults finds the existing rows for the pair. More than one is an invariant violation.
func countResults(ctx context.Context, q sqlx.QueryerContext, studentID, subjectID int64) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, countResultsQuery, studentID, subjectID); err != nil {
		return 0, fmt.Errorf("find idp result: %w", err)
	}
	if n > 1 {
		return n, appErrors.Clone(appErrors.ErrInvariant,
			fmt.Sprintf("%d idp rows for student %d in subject %d", n, studentID, subjectID))
	}
	return n, nil
}
