package service

import "math"

// Score computes the 0-100 suitability score of a realized BOM.
//
// Weights: item coverage contributes up to 50 points, an all-in-stock plan
// earns 20, consolidation onto few distributors earns 15/10/5 for exactly
// one/two/three distributors, and full coverage earns a final 15.
// The weights are a fixed heuristic; changing them breaks score
// compatibility with existing clients.
func Score(itemCount, totalItems int, allInStock bool, distributorCount int) int {
	if totalItems <= 0 {
		return 0
	}

	score := float64(itemCount) / float64(totalItems) * 50

	if allInStock {
		score += 20
	}

	switch {
	case distributorCount == 1:
		score += 15
	case distributorCount == 2:
		score += 10
	case distributorCount == 3:
		score += 5
	}

	if itemCount == totalItems {
		score += 15
	}

	return int(math.Round(math.Min(math.Max(score, 0), 100)))
}
