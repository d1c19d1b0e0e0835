package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"bomsource_backend/internal/events"
	"bomsource_backend/internal/sourcing/gateway"
	"bomsource_backend/internal/sourcing/transport"
	"bomsource_backend/platform/logger"
)

// Aggregator fans BOM line items out to the configured provider gateways and
// merges the results into a complete offers-by-item map.
type Aggregator struct {
	gateways    []gateway.Gateway
	timeout     time.Duration
	concurrency int
	log         *logger.Logger
	bus         events.Bus
}

// NewAggregator creates an aggregator over an explicit gateway list.
// Zero gateways is legal and yields empty offer lists for every item.
func NewAggregator(gateways []gateway.Gateway, timeout time.Duration, concurrency int, log *logger.Logger, bus events.Bus) *Aggregator {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Aggregator{
		gateways:    gateways,
		timeout:     timeout,
		concurrency: concurrency,
		log:         log,
		bus:         bus,
	}
}

// Gateways returns the configured gateway list.
func (a *Aggregator) Gateways() []gateway.Gateway {
	return a.gateways
}

// Aggregate issues one concurrent search per (item, gateway) pair and
// returns offers keyed by item ID. Every input item gets a key, even when no
// gateway returned anything for it. A failed call degrades to zero offers
// from that gateway for that item; it never aborts the rest of the run.
//
// Each (item, gateway) result lands in its own slot, so no locking is
// needed; slots are concatenated only after all searches settle.
func (a *Aggregator) Aggregate(ctx context.Context, items []transport.BomLineItem, providers []string) transport.OffersByItem {
	gateways := gateway.Filter(a.gateways, providers)

	cells := make([][]transport.Offer, len(items)*len(gateways))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, item := range items {
		for j, gw := range gateways {
			slot := i*len(gateways) + j
			g.Go(func() error {
				cells[slot] = a.search(gctx, gw, item.SearchQuery(), item.Manufacturer, item.ID)
				return nil
			})
		}
	}
	// Workers never return errors; failures degrade to empty slots.
	_ = g.Wait()

	offers := make(transport.OffersByItem, len(items))
	for i, item := range items {
		merged := []transport.Offer{}
		for j := range gateways {
			merged = append(merged, cells[i*len(gateways)+j]...)
		}
		offers[item.ID] = merged
	}
	return offers
}

// SearchAll runs a single query against every gateway in parallel and
// returns offers keyed by provider name. Failed providers map to nil.
func (a *Aggregator) SearchAll(ctx context.Context, query, manufacturer string, providers []string) map[string][]transport.Offer {
	gateways := gateway.Filter(a.gateways, providers)

	results := make([][]transport.Offer, len(gateways))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, gw := range gateways {
		g.Go(func() error {
			results[i] = a.search(gctx, gw, query, manufacturer, "")
			return nil
		})
	}
	_ = g.Wait()

	byProvider := make(map[string][]transport.Offer, len(gateways))
	for i, gw := range gateways {
		byProvider[gw.Name()] = results[i]
	}
	return byProvider
}

// search performs one bounded gateway call, recovering failures locally.
func (a *Aggregator) search(ctx context.Context, gw gateway.Gateway, query, manufacturer, itemID string) []transport.Offer {
	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	offers, err := gw.Search(callCtx, query, manufacturer)
	if err != nil {
		a.log.GatewayError(gw.Name(), query, err)
		a.bus.Publish(ctx, events.GatewaySearchFailed{
			BaseEvent: events.NewBaseEvent(),
			Provider:  gw.Name(),
			ItemID:    itemID,
			Query:     query,
			Error:     err.Error(),
		})
		return nil
	}

	a.log.GatewaySearch(gw.Name(), query, len(offers), float64(time.Since(start).Milliseconds()))
	return offers
}
