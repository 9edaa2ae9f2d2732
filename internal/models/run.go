package models

import "time"

// StudentOutcomeStatus describes what happened to one enrollment during a run.
type StudentOutcomeStatus string

const (
	// StudentCreated means a new IDP row was inserted.
	StudentCreated StudentOutcomeStatus = "created"
	// StudentUpdated means the existing IDP row was rewritten in place.
	StudentUpdated StudentOutcomeStatus = "updated"
	// StudentSkipped covers graduates evaluated outside their graduation day.
	StudentSkipped StudentOutcomeStatus = "skipped"
	// StudentNotComputable means no ideal date could be derived, so nothing was written.
	StudentNotComputable StudentOutcomeStatus = "not_computable"
	// StudentFailed means evaluation or persistence errored.
	StudentFailed StudentOutcomeStatus = "failed"
)

// Persisted reports whether the outcome left a row written in this run.
func (s StudentOutcomeStatus) Persisted() bool {
	return s == StudentCreated || s == StudentUpdated
}

// StudentOutcome is the per-enrollment result of a subject pass.
type StudentOutcome struct {
	StudentID    int64                `json:"student_id"`
	EnrollmentID int64                `json:"enrollment_id"`
	Status       StudentOutcomeStatus `json:"status"`
	Scores       *IndicatorScores     `json:"scores,omitempty"`
	Score        float64              `json:"idp_score"`
	Tier         PerformanceTier      `json:"tier,omitempty"`
	Err          error                `json:"-"`
}

// SubjectReport aggregates the outcomes of one subject.
type SubjectReport struct {
	SubjectID int64            `json:"subject_id"`
	Students  []StudentOutcome `json:"students"`
	TopDecile []int64          `json:"top_decile,omitempty"`
	Err       error            `json:"-"`
}

// Processed returns the ids of students whose row was persisted in this run, in evaluation order.
func (r SubjectReport) Processed() []int64 {
	ids := make([]int64, 0, len(r.Students))
	for _, s := range r.Students {
		if s.Status.Persisted() {
			ids = append(ids, s.StudentID)
		}
	}
	return ids
}

// Count returns how many students ended with the given status.
func (r SubjectReport) Count(status StudentOutcomeStatus) int {
	n := 0
	for _, s := range r.Students {
		if s.Status == status {
			n++
		}
	}
	return n
}

// RunReport is the summary of one batch invocation.
type RunReport struct {
	RunID      string          `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Skipped    bool            `json:"skipped"`
	Subjects   []SubjectReport `json:"subjects"`
}

// Duration returns the wall time of the run.
func (r RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FailedSubjects counts subjects that ended with an error.
func (r RunReport) FailedSubjects() int {
	n := 0
	for _, s := range r.Subjects {
		if s.Err != nil {
			n++
		}
	}
	return n
}
