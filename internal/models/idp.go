package models

import "time"

// PerformanceTier classifies a student's IDP score.
type PerformanceTier string

// Tiers ordered from best to worst.
const (
	TierHigh       PerformanceTier = "high"
	TierMediumHigh PerformanceTier = "medium-high"
	TierMediumLow  PerformanceTier = "medium-low"
	TierLow        PerformanceTier = "low"
)

// IndicatorScores are the four normalised indicators of one evaluation, each in [0,1].
type IndicatorScores struct {
	Visibility  float64 `json:"visibility"`
	Submissions float64 `json:"submissions"`
	Pace        float64 `json:"pace"`
	Inactivity  float64 `json:"inactivity"`
}

// IdpResult is the persisted IDP row, unique per (student, subject).
type IdpResult struct {
	ID               string          `db:"id" json:"id"`
	StudentID        int64           `db:"student_id" json:"student_id"`
	SubjectID        int64           `db:"subject_id" json:"subject_id"`
	EnrollmentID     int64           `db:"enrollment_id" json:"enrollment_id"`
	VisibilityScore  float64         `db:"visibility_score" json:"visibility_score"`
	SubmissionsScore float64         `db:"submissions_score" json:"submissions_score"`
	PaceScore        float64         `db:"pace_score" json:"pace_score"`
	InactivityScore  float64         `db:"inactivity_score" json:"inactivity_score"`
	Score            float64         `db:"idp_score" json:"idp_score"`
	Tier             PerformanceTier `db:"tier" json:"tier"`
	TopDecile        bool            `db:"top_decile" json:"top_decile"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// Scores returns the indicator tuple stored on the row.
func (r IdpResult) Scores() IndicatorScores {
	return IndicatorScores{
		Visibility:  r.VisibilityScore,
		Submissions: r.SubmissionsScore,
		Pace:        r.PaceScore,
		Inactivity:  r.InactivityScore,
	}
}

// SetScores copies the indicator tuple onto the row.
func (r *IdpResult) SetScores(s IndicatorScores) {
	r.VisibilityScore = s.Visibility
	r.SubmissionsScore = s.Submissions
	r.PaceScore = s.Pace
	r.InactivityScore = s.Inactivity
}

// DecileCandidate is a persisted high-tier row considered for the top decile.
type DecileCandidate struct {
	StudentID int64     `db:"student_id" json:"student_id"`
	Score     float64   `db:"idp_score" json:"idp_score"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
