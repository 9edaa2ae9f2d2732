package service

import (
	"strings"
	"time"

	"github.com/noah-isme/sma-idp-batch/internal/models"
	appErrors "github.com/noah-isme/sma-idp-batch/pkg/errors"
)

// Pace scores, shared by both branches.
const (
	paceOnTime   = 1.0
	paceSlight   = 0.75
	paceLate     = 0.50
	paceVeryLate = 0.25
)

// Legacy rows store units in Spanish; both spellings are accepted.
var durationUnitAliases = map[string]models.DurationUnit{
	"days":    models.DurationUnitDays,
	"day":     models.DurationUnitDays,
	"dias":    models.DurationUnitDays,
	"días":    models.DurationUnitDays,
	"weeks":   models.DurationUnitWeeks,
	"week":    models.DurationUnitWeeks,
	"semanas": models.DurationUnitWeeks,
	"months":  models.DurationUnitMonths,
	"month":   models.DurationUnitMonths,
	"meses":   models.DurationUnitMonths,
}

// ParseDurationUnit normalises a stored duration unit.
func ParseDurationUnit(raw string) (models.DurationUnit, bool) {
	unit, ok := durationUnitAliases[strings.ToLower(strings.TrimSpace(raw))]
	return unit, ok
}

// IdealDate is the enrollment start plus the subject's nominal duration.
// It fails with ErrPaceUndefined when the duration, its unit or the start date is missing.
func IdealDate(start *time.Time, duration *models.SubjectDuration) (time.Time, error) {
	if duration == nil || duration.Amount == nil || *duration.Amount <= 0 {
		return time.Time{}, appErrors.Clone(appErrors.ErrPaceUndefined, "subject duration missing")
	}
	if duration.Unit == nil || *duration.Unit == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrPaceUndefined, "subject duration unit missing")
	}
	if start == nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrPaceUndefined, "enrollment start date missing")
	}
	unit, ok := ParseDurationUnit(*duration.Unit)
	if !ok {
		return time.Time{}, appErrors.Clone(appErrors.ErrPaceUndefined, "unknown duration unit "+*duration.Unit)
	}

	amount := *duration.Amount
	base := civilDate(*start)
	switch unit {
	case models.DurationUnitWeeks:
		return base.AddDate(0, 0, amount*7), nil
	case models.DurationUnitMonths:
		return base.AddDate(0, 0, amount*4*7), nil
	default:
		return base.AddDate(0, 0, amount), nil
	}
}

// GraduatedPaceScore grades a finished student. Up to a week late still earns 0.75.
func GraduatedPaceScore(daysLate int) float64 {
	switch {
	case daysLate <= 0:
		return paceOnTime
	case daysLate <= 7:
		return paceSlight
	case daysLate <= 14:
		return paceLate
	default:
		return paceVeryLate
	}
}

// ActivePaceScore grades a student still taking the subject. Reaching the ideal date
// without finishing already costs a quarter.
func ActivePaceScore(daysLate int) float64 {
	switch {
	case daysLate < 0:
		return paceOnTime
	case daysLate == 0:
		return paceSlight
	case daysLate <= 7:
		return paceLate
	default:
		return paceVeryLate
	}
}

// PaceScore compares the graduation date, or today for active students, with the ideal date.
func PaceScore(ideal time.Time, graduation *time.Time, today time.Time) float64 {
	if graduation != nil {
		return GraduatedPaceScore(daysBetween(ideal, *graduation))
	}
	return ActivePaceScore(daysBetween(ideal, today))
}
