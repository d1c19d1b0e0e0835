// Package sourcing wires the BOM sourcing bounded context: distributor
// gateways, the offer aggregator, the realization strategies and the HTTP
// endpoints.
package sourcing

import (
	"context"

	"bomsource_backend/internal/events"
	apphttp "bomsource_backend/internal/http"
	"bomsource_backend/internal/sourcing/gateway"
	"bomsource_backend/internal/sourcing/handler"
	"bomsource_backend/internal/sourcing/service"
	"bomsource_backend/platform/config"
	"bomsource_backend/platform/logger"
	"bomsource_backend/platform/validator"
)

// ModuleConfig combines the config interfaces the sourcing module needs.
type ModuleConfig interface {
	config.SearchConfig
	config.MouserConfig
	config.DigiKeyConfig
	config.OctopartConfig
	config.GenAIConfig
}

// Module wires the sourcing HTTP routes.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule builds the sourcing module from configuration. Only gateways
// with credentials are registered; the module works with zero configured
// gateways (every item simply comes back unmatched).
func NewModule(ctx context.Context, cfg ModuleConfig, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	var gateways []gateway.Gateway

	if cfg.IsDigiKeyEnabled() {
		gateways = append(gateways, gateway.NewDigiKey(gateway.DigiKeyConfig{
			ClientID:     cfg.GetDigiKeyClientID(),
			ClientSecret: cfg.GetDigiKeyClientSecret(),
			RecordLimit:  cfg.GetSearchRecordLimit(),
			Timeout:      cfg.GetGatewayTimeout(),
		}))
	}
	if cfg.IsMouserEnabled() {
		gateways = append(gateways, gateway.NewMouser(gateway.MouserConfig{
			APIKey:      cfg.GetMouserAPIKey(),
			RecordLimit: cfg.GetSearchRecordLimit(),
			Timeout:     cfg.GetGatewayTimeout(),
		}))
	}
	if cfg.IsOctopartEnabled() {
		gateways = append(gateways, gateway.NewOctopart(gateway.OctopartConfig{
			ClientID:     cfg.GetOctopartClientID(),
			ClientSecret: cfg.GetOctopartClientSecret(),
			RecordLimit:  cfg.GetSearchRecordLimit(),
			Timeout:      cfg.GetGatewayTimeout(),
		}))
	}
	log.Info("sourcing gateways configured", "gateways", gateway.Names(gateways))

	aggregator := service.NewAggregator(gateways, cfg.GetGatewayTimeout(), cfg.GetGatewayConcurrency(), log, bus)

	strategies := []service.Strategy{
		service.LowestPriceStrategy{},
		service.SingleDistributorStrategy{},
		service.InStockOnlyStrategy{},
	}
	if cfg.IsGenAIEnabled() {
		llm, err := service.NewLLMStrategy(ctx, cfg.GetGeminiAPIKey(), cfg.GetGeminiModel(), log)
		if err != nil {
			log.Warn("llm strategy disabled", "error", err)
		} else {
			strategies = append(strategies, llm)
			log.Info("llm strategy enabled", "model", cfg.GetGeminiModel())
		}
	}

	svc := service.New(aggregator, strategies, log, bus)

	return &Module{
		handler: handler.New(svc, val),
		svc:     svc,
	}
}

// Service exposes the sourcing service for cross-module consumers.
func (m *Module) Service() *service.Service {
	return m.svc
}

func (m *Module) Name() string {
	return "sourcing"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	bom := ctx.V1.Group("/bom")
	bom.POST("/suggest", m.handler.SuggestBoms)
	bom.POST("/upload", m.handler.UploadBom)

	search := ctx.V1.Group("/search")
	search.POST("/parts", m.handler.SearchParts)
	search.GET("/providers", m.handler.ListProviders)
}

var _ apphttp.Module = (*Module)(nil)
