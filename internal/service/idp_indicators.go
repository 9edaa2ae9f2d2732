package service

import (
	"math"
	"time"
)

// Inactivity scores by days since the last login.
const (
	inactivityRecent  = 1.0
	inactivityLapsing = 2.0 / 3.0
	inactivityIdle    = 1.0 / 3.0
)

// round2 rounds half-to-even at two decimals, matching how scores are stored.
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// VisibilityScore converts the stored resource progress percentage into [0,1].
// Missing progress scores 0.
func VisibilityScore(progress *float64) float64 {
	if progress == nil {
		return 0
	}
	return clampUnit(round2(*progress / 100))
}

// SubmissionScore is the share of required activities the student submitted.
// A subject without required activities scores 0, not 1.
func SubmissionScore(submitted, required int) float64 {
	if required <= 0 {
		return 0
	}
	return clampUnit(round2(float64(submitted) / float64(required)))
}

// InactivityScore rewards recent logins. A student who never logged in gets the idle score.
func InactivityScore(lastLogin *time.Time, today time.Time) float64 {
	if lastLogin == nil {
		return round2(inactivityIdle)
	}
	days := daysBetween(*lastLogin, today)
	switch {
	case days < 7:
		return round2(inactivityRecent)
	case days < 14:
		return round2(inactivityLapsing)
	default:
		return round2(inactivityIdle)
	}
}

// inLocation moves a stored timestamp into loc so its calendar day is read there.
func inLocation(t *time.Time, loc *time.Location) *time.Time {
	if t == nil || loc == nil {
		return t
	}
	local := t.In(loc)
	return &local
}

// civilDate truncates t to its calendar date in its own location.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole calendar days from a to b (negative when b is earlier).
func daysBetween(a, b time.Time) int {
	return int(math.Round(civilDate(b).Sub(civilDate(a)).Hours() / 24))
}

func sameDay(a, b time.Time) bool {
	return civilDate(a).Equal(civilDate(b))
}
