package models

// DurationUnit is the unit a subject's nominal duration is expressed in.
type DurationUnit string

// Supported duration units. Months are counted as four weeks.
const (
	DurationUnitDays   DurationUnit = "days"
	DurationUnitWeeks  DurationUnit = "weeks"
	DurationUnitMonths DurationUnit = "months"
)

// SubjectDuration is the nominal length of a subject. Either field may be missing.
type SubjectDuration struct {
	Amount *int    `db:"duration" json:"duration,omitempty"`
	Unit   *string `db:"duration_unit" json:"duration_unit,omitempty"`
}

// SubjectWeights holds the IDP indicator weights configured for a subject.
// Weights are expected to be pre-scaled so that all-perfect indicators yield 100.
type SubjectWeights struct {
	SubjectID   int64   `db:"subject_id" json:"subject_id"`
	Visibility  float64 `db:"visibility_weight" json:"visibility_weight" validate:"gte=0"`
	Submissions float64 `db:"submissions_weight" json:"submissions_weight" validate:"gte=0"`
	Pace        float64 `db:"pace_weight" json:"pace_weight" validate:"gte=0"`
	Inactivity  float64 `db:"inactivity_weight" json:"inactivity_weight" validate:"gte=0"`
}
