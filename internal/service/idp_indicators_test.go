package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptrFloat(v float64) *float64 {
	return &v
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestVisibilityScore(t *testing.T) {
	cases := []struct {
		name     string
		progress *float64
		want     float64
	}{
		{name: "absent", progress: nil, want: 0},
		{name: "zero", progress: ptrFloat(0), want: 0},
		{name: "partial rounds to two decimals", progress: ptrFloat(45.678), want: 0.46},
		{name: "complete", progress: ptrFloat(100), want: 1},
		{name: "over cap clamps", progress: ptrFloat(130), want: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, VisibilityScore(tc.progress), 1e-9)
		})
	}
}

func TestSubmissionScore(t *testing.T) {
	assert.Equal(t, 0.0, SubmissionScore(0, 0), "no required activities must not reward the student")
	assert.Equal(t, 0.0, SubmissionScore(3, 0))
	assert.InDelta(t, 0.67, SubmissionScore(2, 3), 1e-9)
	assert.InDelta(t, 0.5, SubmissionScore(4, 8), 1e-9)
	assert.Equal(t, 1.0, SubmissionScore(8, 8))
	assert.Equal(t, 1.0, SubmissionScore(9, 8))
}

func TestInactivityScore(t *testing.T) {
	today := date(2026, time.March, 20)
	cases := []struct {
		name  string
		login *time.Time
		want  float64
	}{
		{name: "never logged in", login: nil, want: 0.33},
		{name: "today", login: ptrTime(today.Add(9 * time.Hour)), want: 1},
		{name: "six days", login: ptrTime(today.AddDate(0, 0, -6)), want: 1},
		{name: "seven days", login: ptrTime(today.AddDate(0, 0, -7)), want: 0.67},
		{name: "thirteen days", login: ptrTime(today.AddDate(0, 0, -13)), want: 0.67},
		{name: "fourteen days", login: ptrTime(today.AddDate(0, 0, -14)), want: 0.33},
		{name: "months ago", login: ptrTime(today.AddDate(0, -3, 0)), want: 0.33},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, InactivityScore(tc.login, today), 1e-9)
		})
	}
}

func TestInactivityScoreCountsDaysInRunLocation(t *testing.T) {
	art := time.FixedZone("ART", -3*60*60)
	today := date(2026, time.October, 19)
	// 02:00 UTC on the 13th is 23:00 on the 12th in ART: seven local days, not six.
	login := ptrTime(time.Date(2026, time.October, 13, 2, 0, 0, 0, time.UTC))

	assert.InDelta(t, 1.0, InactivityScore(login, today), 1e-9)
	assert.InDelta(t, 0.67, InactivityScore(inLocation(login, art), today), 1e-9)
	assert.Nil(t, inLocation(nil, art))
	assert.Same(t, login, inLocation(login, nil))
}

func TestIndicatorsStayWithinUnitRange(t *testing.T) {
	today := date(2026, time.March, 20)
	for progress := -10.0; progress <= 250; progress += 7.5 {
		v := VisibilityScore(ptrFloat(progress))
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	for required := 0; required <= 12; required++ {
		for submitted := 0; submitted <= 15; submitted++ {
			v := SubmissionScore(submitted, required)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
	for days := -3; days <= 60; days++ {
		v := InactivityScore(ptrTime(today.AddDate(0, 0, -days)), today)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestDaysBetweenIgnoresTimeOfDay(t *testing.T) {
	a := time.Date(2026, time.March, 1, 23, 59, 0, 0, time.UTC)
	b := time.Date(2026, time.March, 2, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 1, daysBetween(a, b))
	assert.Equal(t, -1, daysBetween(b, a))
	assert.True(t, sameDay(b, date(2026, time.March, 2)))
}
