// Package gateway provides clients for external part-distributor search
// APIs. Each client normalizes its provider's wire format into the shared
// Offer model; field-name translation never leaks past this package.
package gateway

import (
	"context"
	"sort"
	"strings"

	"bomsource_backend/internal/sourcing/transport"
)

// Gateway is a search backend for part offers. Implementations must be safe
// for concurrent use; the aggregator issues one call per (item, gateway) pair
// in parallel.
type Gateway interface {
	// Name returns the provider identifier, e.g. "mouser".
	Name() string
	// Configured reports whether the gateway has credentials to operate.
	Configured() bool
	// Search returns offers for a free-text query. The manufacturer hint is
	// optional and may be ignored by providers without a dedicated MPN search.
	Search(ctx context.Context, query, manufacturer string) ([]transport.Offer, error)
}

// Available returns the names of every provider integration this package
// ships, configured or not.
func Available() []string {
	return []string{"digikey", "mouser", "octopart"}
}

// Filter returns the gateways whose names appear in the allow-list.
// A nil or empty allow-list keeps all gateways.
func Filter(gateways []Gateway, names []string) []Gateway {
	if len(names) == 0 {
		return gateways
	}
	allowed := make(map[string]bool, len(names))
	for _, n := range names {
		allowed[strings.ToLower(strings.TrimSpace(n))] = true
	}
	filtered := make([]Gateway, 0, len(gateways))
	for _, g := range gateways {
		if allowed[g.Name()] {
			filtered = append(filtered, g)
		}
	}
	return filtered
}

// Names returns the gateway names in slice order.
func Names(gateways []Gateway) []string {
	names := make([]string, 0, len(gateways))
	for _, g := range gateways {
		names = append(names, g.Name())
	}
	return names
}

// sortByPrice orders offers ascending by unit price, preserving the
// original order among equal prices.
func sortByPrice(offers []transport.Offer) {
	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].Price.LessThan(offers[j].Price)
	})
}
