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
	nexarTokenURL = "https://identity.nexar.com/connect/token"
	nexarAPIURL   = "https://api.nexar.com/graphql"
)

const octopartSearchQuery = `
query Search($q: String!, $limit: Int!) {
  supSearch(q: $q, limit: $limit) {
    results {
      part {
        mpn
        manufacturer {
          name
        }
        shortDescription
        sellers {
          company {
            name
          }
          offers {
            clickUrl
            inventoryLevel
            moq
            prices {
              price
              currency
              quantity
            }
          }
        }
      }
    }
  }
}`

// Octopart is a part gateway backed by the Octopart/Nexar GraphQL API.
// Unlike Mouser and DigiKey, a single Octopart part fans out into one offer
// per (seller, offer) pair, so the distributor name varies per offer.
type Octopart struct {
	apiURL      string
	recordLimit int
	httpClient  *http.Client
	tokens      *tokenSource
}

// OctopartConfig configures the Octopart/Nexar gateway.
type OctopartConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string // defaults to the Nexar identity endpoint
	APIURL       string // defaults to the Nexar GraphQL endpoint
	RecordLimit  int
	Timeout      time.Duration
}

// NewOctopart creates an Octopart gateway client.
func NewOctopart(cfg OctopartConfig) *Octopart {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = nexarTokenURL
	}
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = nexarAPIURL
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

	return &Octopart{
		apiURL:      apiURL,
		recordLimit: recordLimit,
		httpClient:  httpClient,
		tokens:      newTokenSource(tokenURL, cfg.ClientID, cfg.ClientSecret, httpClient),
	}
}

// Name returns the provider identifier.
func (o *Octopart) Name() string { return "octopart" }

// Configured reports whether OAuth credentials are present.
func (o *Octopart) Configured() bool {
	return o.tokens.clientID != "" && o.tokens.clientSecret != ""
}

// Nexar wire types
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type nexarPrice struct {
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Quantity int     `json:"quantity"`
}

type nexarOffer struct {
	ClickURL       string       `json:"clickUrl"`
	InventoryLevel int          `json:"inventoryLevel"`
	MOQ            int          `json:"moq"`
	Prices         []nexarPrice `json:"prices"`
}

type nexarSeller struct {
	Company struct {
		Name string `json:"name"`
	} `json:"company"`
	Offers []nexarOffer `json:"offers"`
}

type nexarPart struct {
	MPN          string `json:"mpn"`
	Manufacturer struct {
		Name string `json:"name"`
	} `json:"manufacturer"`
	ShortDescription string        `json:"shortDescription"`
	Sellers          []nexarSeller `json:"sellers"`
}

type nexarSearchResponse struct {
	Data struct {
		SupSearch struct {
			Results []struct {
				Part nexarPart `json:"part"`
			} `json:"results"`
		} `json:"supSearch"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// Search queries the Nexar supSearch endpoint. When a manufacturer hint is
// given it is prefixed to the query, matching Octopart search behavior.
func (o *Octopart) Search(ctx context.Context, query, manufacturer string) ([]transport.Offer, error) {
	if !o.Configured() {
		return nil, fmt.Errorf("octopart OAuth credentials not configured")
	}

	token, err := o.tokens.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("octopart token: %w", err)
	}

	if manufacturer != "" {
		query = manufacturer + " " + query
	}

	payload := graphqlRequest{
		Query: octopartSearchQuery,
		Variables: map[string]any{
			"q":     query,
			"limit": o.recordLimit,
		},
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal octopart search request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, o.apiURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create octopart search request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+token)
	request.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("octopart search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("octopart API returned %d: %s", resp.StatusCode, string(body))
	}

	var result nexarSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode octopart search response: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("octopart API error: %s", result.Errors[0].Message)
	}

	return o.transform(result), nil
}

func (o *Octopart) transform(result nexarSearchResponse) []transport.Offer {
	var offers []transport.Offer

	for _, searchResult := range result.Data.SupSearch.Results {
		part := searchResult.Part

		for _, seller := range part.Sellers {
			distributor := defaultString(seller.Company.Name, "Unknown")

			for _, offer := range seller.Offers {
				price, currency, ok := lowestNexarPrice(offer.Prices)
				if !ok {
					continue
				}

				minQty := offer.MOQ
				if minQty < 1 {
					minQty = 1
				}

				offers = append(offers, transport.Offer{
					MPN:          part.MPN,
					Manufacturer: defaultString(part.Manufacturer.Name, "Unknown"),
					Description:  part.ShortDescription,
					Price:        price,
					Currency:     currency,
					Stock:        offer.InventoryLevel,
					MinQuantity:  minQty,
					Provider:     o.Name(),
					Distributor:  distributor,
					URL:          offer.ClickURL,
				})
			}
		}
	}

	sortByPrice(offers)
	return offers
}

// lowestNexarPrice picks the cheapest price tier of an offer.
func lowestNexarPrice(prices []nexarPrice) (decimal.Decimal, string, bool) {
	var (
		best     float64
		currency string
		found    bool
	)
	for _, p := range prices {
		if p.Price <= 0 {
			continue
		}
		if !found || p.Price < best {
			best = p.Price
			currency = p.Currency
			found = true
		}
	}
	if !found {
		return decimal.Zero, "", false
	}
	if currency == "" {
		currency = "USD"
	}
	return decimal.NewFromFloat(best), currency, true
}

// Compile-time check that Octopart implements Gateway
var _ Gateway = (*Octopart)(nil)
