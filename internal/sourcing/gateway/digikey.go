package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"bomsource_backend/internal/sourcing/transport"
)

const (
	digikeyTokenURL  = "https://api.digikey.com/v1/oauth2/token"
	digikeySearchURL = "https://api.digikey.com/products/v4/search/keyword"
)

// DigiKey is a part gateway backed by the DigiKey product search API v4
// with OAuth2 client-credentials authentication.
type DigiKey struct {
	clientID    string
	searchURL   string
	recordLimit int
	httpClient  *http.Client
	tokens      *tokenSource
}

// DigiKeyConfig configures the DigiKey gateway.
type DigiKeyConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string // defaults to the public DigiKey OAuth endpoint
	SearchURL    string // defaults to the public DigiKey search endpoint
	RecordLimit  int
	Timeout      time.Duration
}

// NewDigiKey creates a DigiKey gateway client.
func NewDigiKey(cfg DigiKeyConfig) *DigiKey {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = digikeyTokenURL
	}
	searchURL := cfg.SearchURL
	if searchURL == "" {
		searchURL = digikeySearchURL
	}
	recordLimit := cfg.RecordLimit
	if recordLimit <= 0 {
		recordLimit = 10
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{Timeout: timeout}

	return &DigiKey{
		clientID:    cfg.ClientID,
		searchURL:   searchURL,
		recordLimit: recordLimit,
		httpClient:  httpClient,
		tokens:      newTokenSource(tokenURL, cfg.ClientID, cfg.ClientSecret, httpClient),
	}
}

// Name returns the provider identifier.
func (d *DigiKey) Name() string { return "digikey" }

// Configured reports whether OAuth credentials are present.
func (d *DigiKey) Configured() bool {
	return d.clientID != "" && d.tokens.clientSecret != ""
}

// DigiKey wire types
type digikeySearchRequest struct {
	Keywords                   string `json:"Keywords"`
	RecordCount                int    `json:"RecordCount"`
	RecordStartPosition        int    `json:"RecordStartPosition"`
	ExcludeMarketPlaceProducts bool   `json:"ExcludeMarketPlaceProducts"`
}

type digikeyPriceTier struct {
	UnitPrice float64 `json:"UnitPrice"`
}

type digikeyProduct struct {
	ManufacturerPartNumber string `json:"ManufacturerPartNumber"`
	Manufacturer           struct {
		Name string `json:"Name"`
	} `json:"Manufacturer"`
	ProductDescription   string             `json:"ProductDescription"`
	DetailedDescription  string             `json:"DetailedDescription"`
	UnitPrice            float64            `json:"UnitPrice"`
	StandardPricing      []digikeyPriceTier `json:"StandardPricing"`
	QuantityAvailable    int                `json:"QuantityAvailable"`
	MinimumOrderQuantity int                `json:"MinimumOrderQuantity"`
	ProductURL           string             `json:"ProductUrl"`
}

type digikeySearchResponse struct {
	Products []digikeyProduct `json:"Products"`
}

// Search queries the DigiKey keyword endpoint. The manufacturer hint is not
// sent; DigiKey keyword search matches MPNs directly.
func (d *DigiKey) Search(ctx context.Context, query, _ string) ([]transport.Offer, error) {
	if !d.Configured() {
		return nil, fmt.Errorf("digikey OAuth credentials not configured")
	}

	token, err := d.tokens.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("digikey token: %w", err)
	}

	payload := digikeySearchRequest{
		Keywords:                   query,
		RecordCount:                d.recordLimit,
		RecordStartPosition:        0,
		ExcludeMarketPlaceProducts: true,
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal digikey search request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, d.searchURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create digikey search request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+token)
	request.Header.Set("X-DIGIKEY-Client-Id", d.clientID)
	request.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("digikey search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("digikey API returned %d: %s", resp.StatusCode, string(body))
	}

	var result digikeySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode digikey search response: %w", err)
	}

	return d.transform(result), nil
}

func (d *DigiKey) transform(result digikeySearchResponse) []transport.Offer {
	offers := make([]transport.Offer, 0, len(result.Products))

	for _, product := range result.Products {
		// Prefer the first standard pricing tier (qty 1) over the list price
		price := product.UnitPrice
		if len(product.StandardPricing) > 0 {
			price = product.StandardPricing[0].UnitPrice
		}
		if price <= 0 {
			continue
		}

		description := product.ProductDescription
		if description == "" {
			description = product.DetailedDescription
		}

		mpn := product.ManufacturerPartNumber
		productURL := product.ProductURL
		if productURL == "" {
			productURL = "https://www.digikey.com/products/en?keywords=" + mpn
		}

		minQty := product.MinimumOrderQuantity
		if minQty < 1 {
			minQty = 1
		}

		offers = append(offers, transport.Offer{
			MPN:          mpn,
			Manufacturer: defaultString(product.Manufacturer.Name, "Unknown"),
			Description:  description,
			Price:        decimal.NewFromFloat(price),
			Currency:     "USD",
			Stock:        product.QuantityAvailable,
			MinQuantity:  minQty,
			Provider:     d.Name(),
			Distributor:  "DigiKey",
			URL:          productURL,
		})
	}

	sortByPrice(offers)
	return offers
}

// Compile-time check that DigiKey implements Gateway
var _ Gateway = (*DigiKey)(nil)
