package service

import (
	"sort"

	"github.com/noah-isme/sma-idp-batch/internal/models"
)

// TopDecileCount is a tenth of the processed students, never less than one.
func TopDecileCount(processed int) int {
	count := processed / 10
	if count < 1 {
		return 1
	}
	return count
}

// SelectTopDecile picks the best high-tier candidates among the processed students.
// Candidates must arrive in persisted creation order; equal scores keep that order.
func SelectTopDecile(processed []int64, candidates []models.DecileCandidate) []int64 {
	if len(processed) == 0 || len(candidates) == 0 {
		return nil
	}
	inRun := make(map[int64]struct{}, len(processed))
	for _, id := range processed {
		inRun[id] = struct{}{}
	}

	ranked := make([]models.DecileCandidate, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := inRun[c.StudentID]; ok {
			ranked = append(ranked, c)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].CreatedAt.Before(ranked[j].CreatedAt)
	})

	limit := TopDecileCount(len(processed))
	if limit > len(ranked) {
		limit = len(ranked)
	}
	winners := make([]int64, 0, limit)
	for _, c := range ranked[:limit] {
		winners = append(winners, c.StudentID)
	}
	return winners
}
