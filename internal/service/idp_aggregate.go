package service

import "github.com/noah-isme/sma-idp-batch/internal/models"

// Tier thresholds, inclusive lower bounds.
const (
	tierHighFrom       = 75.0
	tierMediumHighFrom = 50.0
	tierMediumLowFrom  = 25.0
)

// AggregateIDP combines the indicators with the subject weights. Weights are not normalised.
func AggregateIDP(scores models.IndicatorScores, weights models.SubjectWeights) float64 {
	return round2(scores.Visibility*weights.Visibility +
		scores.Submissions*weights.Submissions +
		scores.Pace*weights.Pace +
		scores.Inactivity*weights.Inactivity)
}

// TierFor maps an IDP score to its performance tier.
func TierFor(score float64) models.PerformanceTier {
	switch {
	case score >= tierHighFrom:
		return models.TierHigh
	case score >= tierMediumHighFrom:
		return models.TierMediumHigh
	case score >= tierMediumLowFrom:
		return models.TierMediumLow
	default:
		return models.TierLow
	}
}
