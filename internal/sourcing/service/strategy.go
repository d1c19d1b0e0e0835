package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bomsource_backend/internal/sourcing/transport"
)

// Strategy synthesizes one sourcing plan from the matched line items and
// their offers. Implementations must be pure over their inputs and
// independent of each other: running strategies in any order yields the same
// individual results. A nil return means the strategy has no viable plan.
type Strategy interface {
	// Name returns a stable identifier for logging.
	Name() string
	// Realize builds a realized BOM, or returns nil when no item can be
	// fulfilled under this strategy's selection rule. totalItems is the
	// size of the original BOM, used for coverage scoring.
	Realize(ctx context.Context, items []transport.BomLineItem, offers transport.OffersByItem, totalItems int) *transport.RealizedBom
}

// selection pairs a line item with its chosen offer.
type selection struct {
	item  transport.BomLineItem
	offer transport.Offer
}

// buildRealizedBom assembles and scores a plan from offer selections.
// Distributors are recorded in first-seen order; the currency is taken from
// the first selection, falling back to USD.
func buildRealizedBom(name, description string, selections []selection, totalItems int) *transport.RealizedBom {
	if len(selections) == 0 {
		return nil
	}

	lineItems := make([]transport.RealizedLineItem, 0, len(selections))
	totalCost := decimal.Zero
	allInStock := true
	seen := make(map[string]bool)
	var distributors []string

	for _, sel := range selections {
		lineTotal := sel.offer.Price.Mul(decimal.NewFromInt(int64(sel.item.Quantity)))
		inStock := sel.offer.Stock >= sel.item.Quantity

		lineItems = append(lineItems, transport.RealizedLineItem{
			LineItem:  sel.item,
			Offer:     sel.offer,
			UnitPrice: sel.offer.Price,
			LineTotal: lineTotal,
			InStock:   inStock,
		})

		totalCost = totalCost.Add(lineTotal)
		if !inStock {
			allInStock = false
		}
		if !seen[sel.offer.Distributor] {
			seen[sel.offer.Distributor] = true
			distributors = append(distributors, sel.offer.Distributor)
		}
	}

	currency := selections[0].offer.Currency
	if currency == "" {
		currency = "USD"
	}

	return &transport.RealizedBom{
		ID:           uuid.New().String(),
		Name:         name,
		Description:  description,
		LineItems:    lineItems,
		TotalCost:    totalCost,
		Currency:     currency,
		AllInStock:   allInStock,
		Distributors: distributors,
		Score:        Score(len(lineItems), totalItems, allInStock, len(distributors)),
	}
}

// cheapestOffer returns the minimum-price offer, breaking ties by original
// slice order (the first minimal offer wins).
func cheapestOffer(offers []transport.Offer) (transport.Offer, bool) {
	if len(offers) == 0 {
		return transport.Offer{}, false
	}
	best := offers[0]
	for _, offer := range offers[1:] {
		if offer.Price.LessThan(best.Price) {
			best = offer
		}
	}
	return best, true
}

// ── Lowest Price ──────────────────────────────────────────────────────────────

// LowestPriceStrategy picks the cheapest offer for every matched item.
type LowestPriceStrategy struct{}

// Name returns the strategy identifier.
func (LowestPriceStrategy) Name() string { return "lowest_price" }

// Realize selects the minimum-price offer per item.
func (LowestPriceStrategy) Realize(_ context.Context, items []transport.BomLineItem, offers transport.OffersByItem, totalItems int) *transport.RealizedBom {
	var selections []selection
	for _, item := range items {
		offer, ok := cheapestOffer(offers[item.ID])
		if !ok {
			continue
		}
		selections = append(selections, selection{item: item, offer: offer})
	}

	return buildRealizedBom(
		"Lowest Price",
		"Selects the cheapest available offer for every line item to minimize total cost.",
		selections,
		totalItems,
	)
}

// ── Single Distributor ────────────────────────────────────────────────────────

// SingleDistributorStrategy consolidates the order onto the one distributor
// that can fulfill the most items.
type SingleDistributorStrategy struct{}

// Name returns the strategy identifier.
func (SingleDistributorStrategy) Name() string { return "single_distributor" }

// Realize picks the distributor with the highest distinct-item coverage,
// breaking ties by the order distributors are first seen while walking the
// items and their offer lists. Coverage may be partial: only the items that
// distributor can fulfill are included.
func (SingleDistributorStrategy) Realize(_ context.Context, items []transport.BomLineItem, offers transport.OffersByItem, totalItems int) *transport.RealizedBom {
	// cheapest offer per (distributor, item), distributors in first-seen order
	type coverage struct {
		byItem map[string]transport.Offer
	}
	coverageByDistributor := make(map[string]*coverage)
	var order []string

	for _, item := range items {
		for _, offer := range offers[item.ID] {
			cov, ok := coverageByDistributor[offer.Distributor]
			if !ok {
				cov = &coverage{byItem: make(map[string]transport.Offer)}
				coverageByDistributor[offer.Distributor] = cov
				order = append(order, offer.Distributor)
			}
			current, exists := cov.byItem[item.ID]
			if !exists || offer.Price.LessThan(current.Price) {
				cov.byItem[item.ID] = offer
			}
		}
	}

	var best string
	bestCount := 0
	for _, distributor := range order {
		if count := len(coverageByDistributor[distributor].byItem); count > bestCount {
			best = distributor
			bestCount = count
		}
	}
	if bestCount == 0 {
		return nil
	}

	chosen := coverageByDistributor[best]
	var selections []selection
	for _, item := range items {
		offer, ok := chosen.byItem[item.ID]
		if !ok {
			continue
		}
		selections = append(selections, selection{item: item, offer: offer})
	}

	return buildRealizedBom(
		fmt.Sprintf("%s Only", best),
		fmt.Sprintf("Consolidates purchasing with a single distributor: %d/%d items from %s.", bestCount, totalItems, best),
		selections,
		totalItems,
	)
}

// ── In Stock Only ─────────────────────────────────────────────────────────────

// InStockOnlyStrategy keeps only offers that can cover the required quantity
// from stock.
type InStockOnlyStrategy struct{}

// Name returns the strategy identifier.
func (InStockOnlyStrategy) Name() string { return "in_stock_only" }

// Realize filters each item's offers to those with sufficient stock, then
// picks the cheapest survivor. Items with no in-stock offer are excluded.
func (InStockOnlyStrategy) Realize(_ context.Context, items []transport.BomLineItem, offers transport.OffersByItem, totalItems int) *transport.RealizedBom {
	var selections []selection
	for _, item := range items {
		var inStock []transport.Offer
		for _, offer := range offers[item.ID] {
			if offer.Stock >= item.Quantity {
				inStock = append(inStock, offer)
			}
		}
		offer, ok := cheapestOffer(inStock)
		if !ok {
			continue
		}
		selections = append(selections, selection{item: item, offer: offer})
	}

	return buildRealizedBom(
		"All In Stock",
		"Selects only offers with sufficient stock on hand, favoring the fastest delivery.",
		selections,
		totalItems,
	)
}
