package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bomsource_backend/internal/events"
	"bomsource_backend/internal/sourcing/gateway"
	"bomsource_backend/internal/sourcing/transport"
	"bomsource_backend/platform/apperr"
	"bomsource_backend/platform/logger"
)

// Service orchestrates BOM suggestion runs: it aggregates offers, runs every
// registered strategy, and ranks the resulting plans.
type Service struct {
	aggregator *Aggregator
	strategies []Strategy
	log        *logger.Logger
	bus        events.Bus
}

// New creates the sourcing service. Strategy registration order is the
// tie-break order for equal-score suggestions.
func New(aggregator *Aggregator, strategies []Strategy, log *logger.Logger, bus events.Bus) *Service {
	return &Service{
		aggregator: aggregator,
		strategies: strategies,
		log:        log,
		bus:        bus,
	}
}

// SuggestBoms runs the full pipeline for a set of line items and returns the
// ranked sourcing plans plus the items no provider had offers for.
// Zero suggestions is a legitimate outcome, not an error.
func (s *Service) SuggestBoms(ctx context.Context, req transport.SuggestBomsRequest) (transport.BomSuggestionResult, error) {
	if err := validateItems(req.Items); err != nil {
		return transport.BomSuggestionResult{}, err
	}

	start := time.Now()

	offers := s.aggregator.Aggregate(ctx, req.Items, req.Providers)

	var matched, unmatched []transport.BomLineItem
	for _, item := range req.Items {
		if len(offers[item.ID]) > 0 {
			matched = append(matched, item)
		} else {
			unmatched = append(unmatched, item)
		}
	}

	suggestions := []transport.RealizedBom{}
	for _, strategy := range s.strategies {
		if bom := strategy.Realize(ctx, matched, offers, len(req.Items)); bom != nil {
			suggestions = append(suggestions, *bom)
		}
	}

	// Stable sort keeps strategy registration order on score ties.
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})

	duration := float64(time.Since(start).Milliseconds())
	s.log.WithContext(ctx).SuggestionRun(len(req.Items), len(matched), len(unmatched), len(suggestions), duration)
	s.bus.Publish(ctx, events.SuggestionRunCompleted{
		BaseEvent:   events.NewBaseEvent(),
		Items:       len(req.Items),
		Matched:     len(matched),
		Unmatched:   len(unmatched),
		Suggestions: len(suggestions),
		DurationMs:  duration,
	})

	if unmatched == nil {
		unmatched = []transport.BomLineItem{}
	}

	return transport.BomSuggestionResult{
		OriginalItems:  req.Items,
		Suggestions:    suggestions,
		UnmatchedItems: unmatched,
	}, nil
}

// SearchParts fans a single query out to all requested gateways and merges
// the offers, cheapest first.
func (s *Service) SearchParts(ctx context.Context, req transport.SearchPartsRequest) (transport.SearchPartsResponse, error) {
	byProvider := s.aggregator.SearchAll(ctx, req.Query, req.Manufacturer, req.Providers)

	searched := gateway.Names(gateway.Filter(s.aggregator.Gateways(), req.Providers))

	merged := []transport.Offer{}
	counts := make(map[string]int, len(searched))
	for _, name := range searched {
		merged = append(merged, byProvider[name]...)
		counts[name] = len(byProvider[name])
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Price.LessThan(merged[j].Price)
	})

	return transport.SearchPartsResponse{
		Query:             req.Query,
		Results:           merged,
		ProvidersSearched: searched,
		ResultsByProvider: counts,
	}, nil
}

// Providers lists all known provider integrations and the configured subset.
func (s *Service) Providers() transport.ProvidersResponse {
	return transport.ProvidersResponse{
		Configured: gateway.Names(s.aggregator.Gateways()),
		Available:  gateway.Available(),
	}
}

// validateItems enforces the line-item preconditions before any network
// call: a stable id, a positive quantity, and at least one searchable field.
func validateItems(items []transport.BomLineItem) error {
	if len(items) == 0 {
		return apperr.Validation("at least one line item is required")
	}

	seen := make(map[string]bool, len(items))
	for i, item := range items {
		if item.ID == "" {
			return apperr.Validation(fmt.Sprintf("line item %d: missing id", i+1))
		}
		if seen[item.ID] {
			return apperr.Validation(fmt.Sprintf("line item %d: duplicate id %q", i+1, item.ID))
		}
		seen[item.ID] = true
		if item.Quantity < 1 {
			return apperr.Validation(fmt.Sprintf("line item %d: quantity must be at least 1", i+1))
		}
		if item.SearchQuery() == "" {
			return apperr.Validation(fmt.Sprintf("line item %d: requires an MPN, part number, or description", i+1))
		}
	}
	return nil
}
