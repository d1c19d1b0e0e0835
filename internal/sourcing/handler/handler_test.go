package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"bomsource_backend/internal/events"
	"bomsource_backend/internal/sourcing/gateway"
	"bomsource_backend/internal/sourcing/service"
	"bomsource_backend/internal/sourcing/transport"
	"bomsource_backend/platform/logger"
	"bomsource_backend/platform/validator"
)

type stubGateway struct {
	name   string
	offers map[string][]transport.Offer
}

func (s *stubGateway) Name() string     { return s.name }
func (s *stubGateway) Configured() bool { return true }
func (s *stubGateway) Search(_ context.Context, query, _ string) ([]transport.Offer, error) {
	return s.offers[query], nil
}

func testRouter(t *testing.T, gateways ...gateway.Gateway) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New("test")
	bus := events.NewInMemoryBus(log)
	agg := service.NewAggregator(gateways, time.Second, 4, log, bus)
	svc := service.New(agg, []service.Strategy{
		service.LowestPriceStrategy{},
		service.SingleDistributorStrategy{},
		service.InStockOnlyStrategy{},
	}, log, bus)
	h := New(svc, validator.New())

	engine := gin.New()
	v1 := engine.Group("/api/v1")
	v1.POST("/bom/suggest", h.SuggestBoms)
	v1.POST("/bom/upload", h.UploadBom)
	v1.POST("/search/parts", h.SearchParts)
	v1.GET("/search/providers", h.ListProviders)
	return engine
}

func mouserStub() *stubGateway {
	return &stubGateway{name: "mouser", offers: map[string][]transport.Offer{
		"LM358": {{
			MPN:         "LM358",
			Price:       decimal.RequireFromString("0.25"),
			Currency:    "USD",
			Stock:       1000,
			MinQuantity: 1,
			Provider:    "mouser",
			Distributor: "Mouser",
		}},
	}}
}

func TestSuggestBomsEndpoint(t *testing.T) {
	engine := testRouter(t, mouserStub())

	body := `{"items":[{"id":"a","mpn":"LM358","quantity":2},{"id":"b","mpn":"UNKNOWN","quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bom/suggest", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result transport.BomSuggestionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result.Suggestions) == 0 {
		t.Fatal("expected suggestions for the matched item")
	}
	if len(result.UnmatchedItems) != 1 || result.UnmatchedItems[0].ID != "b" {
		t.Fatalf("expected item b unmatched, got %v", result.UnmatchedItems)
	}
}

func TestSuggestBomsRejectsMalformedJSON(t *testing.T) {
	engine := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bom/suggest", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSuggestBomsRejectsEmptyItems(t *testing.T) {
	engine := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bom/suggest", bytes.NewBufferString(`{"items":[]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func multipartBody(t *testing.T, files map[string]struct{ name, content string }) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for field, file := range files {
		part, err := writer.CreateFormFile(field, file.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(file.content)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestUploadBomEndpointParsesCSV(t *testing.T) {
	engine := testRouter(t, mouserStub())

	body, contentType := multipartBody(t, map[string]struct{ name, content string }{
		"bom": {"bom.csv", "MPN,Qty\nLM358,2\n"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bom/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result transport.BomSuggestionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result.OriginalItems) != 1 || result.OriginalItems[0].MPN != "LM358" {
		t.Fatalf("expected parsed CSV item, got %v", result.OriginalItems)
	}
	if len(result.Suggestions) == 0 {
		t.Fatal("expected suggestions for the uploaded BOM")
	}
}

func TestUploadBomAppliesProfileMultiplier(t *testing.T) {
	engine := testRouter(t, mouserStub())

	body, contentType := multipartBody(t, map[string]struct{ name, content string }{
		"bom":     {"bom.csv", "MPN,Qty\nLM358,2\n"},
		"profile": {"profile.yaml", "quantity_multiplier: 5\n"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bom/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result transport.BomSuggestionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.OriginalItems[0].Quantity != 10 {
		t.Fatalf("expected quantity scaled to 10, got %d", result.OriginalItems[0].Quantity)
	}
}

func TestUploadBomRequiresFile(t *testing.T) {
	engine := testRouter(t)

	body, contentType := multipartBody(t, map[string]struct{ name, content string }{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bom/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSearchPartsEndpoint(t *testing.T) {
	engine := testRouter(t, mouserStub())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search/parts", bytes.NewBufferString(`{"query":"LM358"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result transport.SearchPartsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result.Results) != 1 || result.Results[0].MPN != "LM358" {
		t.Fatalf("unexpected results: %v", result.Results)
	}
	if result.ResultsByProvider["mouser"] != 1 {
		t.Fatalf("unexpected provider counts: %v", result.ResultsByProvider)
	}
}

func TestSearchPartsRequiresQuery(t *testing.T) {
	engine := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search/parts", bytes.NewBufferString(`{"query":""}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListProvidersEndpoint(t *testing.T) {
	engine := testRouter(t, mouserStub())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search/providers", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var result transport.ProvidersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result.Configured) != 1 || result.Configured[0] != "mouser" {
		t.Fatalf("unexpected configured providers: %v", result.Configured)
	}
	if len(result.Available) != 3 {
		t.Fatalf("unexpected available providers: %v", result.Available)
	}
}
