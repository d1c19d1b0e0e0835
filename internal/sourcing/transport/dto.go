// Package transport defines the wire-level data model for the sourcing
// bounded context: BOM line items, distributor offers and realized BOMs.
package transport

import (
	"github.com/shopspring/decimal"
)

// ── Domain model ──────────────────────────────────────────────────────────────

// BomLineItem is one row of an uploaded BOM, produced by the importer or
// supplied pre-parsed by the client. Immutable within the sourcing core.
type BomLineItem struct {
	ID           string `json:"id"`
	MPN          string `json:"mpn,omitempty"`
	PartNumber   string `json:"partNumber,omitempty"`
	Description  string `json:"description,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Quantity     int    `json:"quantity" validate:"min=1"`
}

// SearchQuery derives the distributor search query for this item.
// Preference order: MPN, then generic part number, then description.
// An empty result means the item is unsearchable and must be rejected.
func (li BomLineItem) SearchQuery() string {
	switch {
	case li.MPN != "":
		return li.MPN
	case li.PartNumber != "":
		return li.PartNumber
	default:
		return li.Description
	}
}

// Offer is one provider's purchasable option for a part. Price and stock are
// authoritative only at search time; offers are never cached or persisted.
type Offer struct {
	MPN          string          `json:"mpn"`
	Manufacturer string          `json:"manufacturer"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	Stock        int             `json:"stock"`
	MinQuantity  int             `json:"minQuantity"`
	Provider     string          `json:"provider"`
	Distributor  string          `json:"distributor"`
	URL          string          `json:"url"`
}

// OffersByItem maps a line item ID to its candidate offers. Aggregation
// guarantees a key for every input item, possibly with an empty slice.
type OffersByItem map[string][]Offer

// RealizedLineItem pairs a BOM line item with one chosen offer.
type RealizedLineItem struct {
	LineItem  BomLineItem     `json:"lineItem"`
	Offer     Offer           `json:"offer"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
	InStock   bool            `json:"inStock"`
}

// RealizedBom is one complete sourcing plan produced by a strategy.
// It may cover a strict subset of the original items, but never contains
// a line item without an offer.
type RealizedBom struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	LineItems    []RealizedLineItem `json:"lineItems"`
	TotalCost    decimal.Decimal    `json:"totalCost"`
	Currency     string             `json:"currency"`
	AllInStock   bool               `json:"allInStock"`
	Distributors []string           `json:"distributors"`
	Score        int                `json:"score"`
}

// BomSuggestionResult is the output of one full suggestion run.
// Suggestions are sorted descending by score; ties keep strategy order.
type BomSuggestionResult struct {
	OriginalItems  []BomLineItem `json:"originalItems"`
	Suggestions    []RealizedBom `json:"suggestions"`
	UnmatchedItems []BomLineItem `json:"unmatchedItems"`
}

// ── Requests ──────────────────────────────────────────────────────────────────

// SuggestBomsRequest is the request body for a suggestion run over
// pre-parsed line items.
type SuggestBomsRequest struct {
	Items []BomLineItem `json:"items" validate:"required,min=1,dive"`
	// Providers optionally restricts which configured gateways are queried.
	Providers []string `json:"providers,omitempty"`
}

// SearchPartsRequest is the request body for a raw part search.
type SearchPartsRequest struct {
	Query        string   `json:"query" validate:"required,min=1"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Providers    []string `json:"providers,omitempty"`
}

// SearchPartsResponse aggregates search results across providers.
type SearchPartsResponse struct {
	Query             string         `json:"query"`
	Results           []Offer        `json:"results"`
	ProvidersSearched []string       `json:"providersSearched"`
	ResultsByProvider map[string]int `json:"resultsByProvider"`
}

// ProvidersResponse lists available and configured provider gateways.
type ProvidersResponse struct {
	Configured []string `json:"configured"`
	Available  []string `json:"available"`
}
