package service

import "testing"

func TestScoreFullCoverageInStockSingleDistributorIsMaximal(t *testing.T) {
	// 50 coverage + 20 in stock + 15 single distributor + 15 full coverage
	if got := Score(2, 2, true, 1); got != 100 {
		t.Fatalf("expected score 100, got %d", got)
	}
}

func TestScorePartialCoverage(t *testing.T) {
	// 25 coverage + 20 in stock + 15 single distributor, no full-coverage bonus
	if got := Score(1, 2, true, 1); got != 60 {
		t.Fatalf("expected score 60, got %d", got)
	}
}

func TestScoreOutOfStockLosesAvailabilityBonus(t *testing.T) {
	if got := Score(2, 2, false, 1); got != 80 {
		t.Fatalf("expected score 80, got %d", got)
	}
}

func TestScoreConsolidationTiers(t *testing.T) {
	one := Score(4, 4, false, 1)
	two := Score(4, 4, false, 2)
	three := Score(4, 4, false, 3)
	four := Score(4, 4, false, 4)

	if one != 80 || two != 75 || three != 70 || four != 65 {
		t.Fatalf("expected 80/75/70/65 across distributor counts, got %d/%d/%d/%d", one, two, three, four)
	}
}

func TestScoreZeroTotalItemsIsZero(t *testing.T) {
	if got := Score(0, 0, true, 1); got != 0 {
		t.Fatalf("expected score 0 for empty BOM, got %d", got)
	}
}

func TestScoreRoundsFractionalCoverage(t *testing.T) {
	// 1/3 coverage = 16.67 points, rounds to 17
	if got := Score(1, 3, false, 0); got != 17 {
		t.Fatalf("expected score 17, got %d", got)
	}
}
