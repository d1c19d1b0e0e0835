package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bomsource_backend/internal/sourcing/transport"
)

const mouserSearchURL = "https://api.mouser.com/api/v1/search/keyword"

var (
	stockRegex    = regexp.MustCompile(`(\d+)`)
	nonPriceRegex = regexp.MustCompile(`[^0-9.]`)
)

// Mouser is a part gateway backed by the Mouser keyword search API.
type Mouser struct {
	apiKey      string
	baseURL     string
	recordLimit int
	httpClient  *http.Client
}

// MouserConfig configures the Mouser gateway.
type MouserConfig struct {
	APIKey      string
	BaseURL     string // defaults to the public Mouser API
	RecordLimit int
	Timeout     time.Duration
}

// NewMouser creates a Mouser gateway client.
func NewMouser(cfg MouserConfig) *Mouser {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = mouserSearchURL
	}
	recordLimit := cfg.RecordLimit
	if recordLimit <= 0 {
		recordLimit = 10
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Mouser{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		recordLimit: recordLimit,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider identifier.
func (m *Mouser) Name() string { return "mouser" }

// Configured reports whether an API key is present.
func (m *Mouser) Configured() bool { return m.apiKey != "" }

// Mouser wire types
type mouserSearchRequest struct {
	Keyword        string `json:"keyword"`
	Records        int    `json:"records"`
	StartingRecord int    `json:"startingRecord"`
}

type mouserRequestEnvelope struct {
	SearchByKeywordRequest mouserSearchRequest `json:"SearchByKeywordRequest"`
}

type mouserError struct {
	Message string `json:"Message"`
}

type mouserPriceBreak struct {
	Quantity int    `json:"Quantity"`
	Price    string `json:"Price"`
	Currency string `json:"Currency"`
}

type mouserPart struct {
	ManufacturerPartNumber string             `json:"ManufacturerPartNumber"`
	Manufacturer           string             `json:"Manufacturer"`
	Description            string             `json:"Description"`
	Availability           string             `json:"Availability"`
	Min                    string             `json:"Min"`
	ProductDetailURL       string             `json:"ProductDetailUrl"`
	PriceBreaks            []mouserPriceBreak `json:"PriceBreaks"`
}

type mouserSearchResponse struct {
	Errors        []mouserError `json:"Errors"`
	SearchResults struct {
		Parts []mouserPart `json:"Parts"`
	} `json:"SearchResults"`
}

// Search queries the Mouser keyword endpoint. The manufacturer hint is not
// used; Mouser keyword search already matches on MPN.
func (m *Mouser) Search(ctx context.Context, query, _ string) ([]transport.Offer, error) {
	if !m.Configured() {
		return nil, fmt.Errorf("mouser API key not configured")
	}

	payload := mouserRequestEnvelope{
		SearchByKeywordRequest: mouserSearchRequest{
			Keyword:        query,
			Records:        m.recordLimit,
			StartingRecord: 0,
		},
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mouser search request: %w", err)
	}

	url := m.baseURL + "?apiKey=" + m.apiKey
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create mouser search request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("mouser search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("mouser API returned %d: %s", resp.StatusCode, string(body))
	}

	var result mouserSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode mouser search response: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("mouser API error: %s", result.Errors[0].Message)
	}

	return m.transform(result), nil
}

func (m *Mouser) transform(result mouserSearchResponse) []transport.Offer {
	offers := make([]transport.Offer, 0, len(result.SearchResults.Parts))

	for _, part := range result.SearchResults.Parts {
		if len(part.PriceBreaks) == 0 {
			continue
		}

		// First price break is the qty-1 tier
		first := part.PriceBreaks[0]
		price, err := decimal.NewFromString(nonPriceRegex.ReplaceAllString(first.Price, ""))
		if err != nil || !price.IsPositive() {
			continue
		}

		currency := first.Currency
		if currency == "" {
			currency = "USD"
		}

		offers = append(offers, transport.Offer{
			MPN:          part.ManufacturerPartNumber,
			Manufacturer: defaultString(part.Manufacturer, "Unknown"),
			Description:  part.Description,
			Price:        price,
			Currency:     currency,
			Stock:        parseMouserStock(part.Availability),
			MinQuantity:  parseMinQuantity(part.Min),
			Provider:     m.Name(),
			Distributor:  "Mouser",
			URL:          part.ProductDetailURL,
		})
	}

	sortByPrice(offers)
	return offers
}

// parseMouserStock extracts the leading count from availability strings
// such as "2500 In Stock".
func parseMouserStock(availability string) int {
	match := stockRegex.FindString(availability)
	if match == "" {
		return 0
	}
	stock, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return stock
}

func parseMinQuantity(value string) int {
	minQty, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || minQty < 1 {
		return 1
	}
	return minQty
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// Compile-time check that Mouser implements Gateway
var _ Gateway = (*Mouser)(nil)
