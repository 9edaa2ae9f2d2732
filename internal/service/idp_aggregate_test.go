package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-idp-batch/internal/models"
)

func TestAggregateIDPEvenWeights(t *testing.T) {
	weights := models.SubjectWeights{SubjectID: 1, Visibility: 25, Submissions: 25, Pace: 25, Inactivity: 25}
	scores := models.IndicatorScores{Visibility: 1.0, Submissions: 0.5, Pace: 0.75, Inactivity: 1.0}

	idp := AggregateIDP(scores, weights)
	assert.InDelta(t, 81.25, idp, 1e-9)
	assert.Equal(t, models.TierHigh, TierFor(idp))
}

func TestAggregateIDPIsOrderIndependent(t *testing.T) {
	weights := models.SubjectWeights{Visibility: 40, Submissions: 30, Pace: 20, Inactivity: 10}
	scores := models.IndicatorScores{Visibility: 0.33, Submissions: 0.67, Pace: 0.25, Inactivity: 0.67}

	// Swap indicator and weight positions together: the weighted sum must not change.
	swapped := AggregateIDP(
		models.IndicatorScores{Visibility: scores.Inactivity, Submissions: scores.Pace, Pace: scores.Submissions, Inactivity: scores.Visibility},
		models.SubjectWeights{Visibility: weights.Inactivity, Submissions: weights.Pace, Pace: weights.Submissions, Inactivity: weights.Visibility},
	)
	assert.InDelta(t, AggregateIDP(scores, weights), swapped, 1e-9)
}

func TestAggregateIDPRange(t *testing.T) {
	weights := models.SubjectWeights{Visibility: 30, Submissions: 30, Pace: 20, Inactivity: 20}
	values := []float64{0, 0.25, 0.33, 0.5, 0.67, 0.75, 1}
	for _, v := range values {
		for _, s := range values {
			for _, p := range values {
				for _, i := range values {
					idp := AggregateIDP(models.IndicatorScores{Visibility: v, Submissions: s, Pace: p, Inactivity: i}, weights)
					assert.GreaterOrEqual(t, idp, 0.0)
					assert.LessOrEqual(t, idp, 100.0)
				}
			}
		}
	}
	assert.Equal(t, 100.0, AggregateIDP(models.IndicatorScores{Visibility: 1, Submissions: 1, Pace: 1, Inactivity: 1}, weights))
}

func TestTierForBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  models.PerformanceTier
	}{
		{0, models.TierLow},
		{24.99, models.TierLow},
		{25, models.TierMediumLow},
		{49.99, models.TierMediumLow},
		{50, models.TierMediumHigh},
		{74.99, models.TierMediumHigh},
		{75, models.TierHigh},
		{100, models.TierHigh},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TierFor(tc.score), "score %.2f", tc.score)
	}
}
