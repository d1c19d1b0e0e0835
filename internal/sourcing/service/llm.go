package service

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"bomsource_backend/internal/sourcing/transport"
	"bomsource_backend/platform/logger"
)

// LLMStrategy is an optional, model-driven strategy behind the same
// interface as the deterministic ones. It asks a Gemini model to pick one
// offer per item and explain the trade-off. Any failure, from transport to
// an invalid selection, yields no plan rather than an error.
type LLMStrategy struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

// NewLLMStrategy creates the model-backed strategy.
func NewLLMStrategy(ctx context.Context, apiKey, model string, log *logger.Logger) (*LLMStrategy, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &LLMStrategy{
		client: client,
		model:  model,
		log:    log,
	}, nil
}

// Name returns the strategy identifier.
func (s *LLMStrategy) Name() string { return "ai_optimized" }

const llmPromptPreamble = `You are a BOM sourcing expert. Given line items and candidate offers per item,
pick exactly one offer per item that balances cost, stock availability and
distributor consolidation. Not every item has to be selected; skip items with
no acceptable offer.

Respond with JSON only, in this shape:
{
  "name": "short strategy name",
  "description": "one sentence on the trade-off this selection optimizes",
  "selections": { "<itemId>": <zero-based index into that item's offers> }
}

Input:
`

type llmInputItem struct {
	Item   transport.BomLineItem `json:"item"`
	Offers []transport.Offer     `json:"offers"`
}

type llmSelectionResponse struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Selections  map[string]int `json:"selections"`
}

// Realize prompts the model with the matched items and their offers and
// builds a realized BOM from the returned selections.
func (s *LLMStrategy) Realize(ctx context.Context, items []transport.BomLineItem, offers transport.OffersByItem, totalItems int) *transport.RealizedBom {
	if len(items) == 0 {
		return nil
	}

	input := make([]llmInputItem, 0, len(items))
	for _, item := range items {
		input = append(input, llmInputItem{Item: item, Offers: offers[item.ID]})
	}
	inputJSON, err := json.Marshal(input)
	if err != nil {
		s.log.Warn("llm strategy: failed to marshal input", "error", err)
		return nil
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model,
		genai.Text(llmPromptPreamble+string(inputJSON)),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		s.log.Warn("llm strategy: generation failed", "error", err)
		return nil
	}

	var parsed llmSelectionResponse
	if err := json.Unmarshal([]byte(resp.Text()), &parsed); err != nil {
		s.log.Warn("llm strategy: invalid response JSON", "error", err)
		return nil
	}
	if parsed.Name == "" || len(parsed.Selections) == 0 {
		return nil
	}

	// Only accept selections that reference real offers.
	var selections []selection
	for _, item := range items {
		index, ok := parsed.Selections[item.ID]
		if !ok {
			continue
		}
		candidates := offers[item.ID]
		if index < 0 || index >= len(candidates) {
			s.log.Warn("llm strategy: selection out of range", "item", item.ID, "index", index)
			continue
		}
		selections = append(selections, selection{item: item, offer: candidates[index]})
	}

	return buildRealizedBom(parsed.Name, parsed.Description, selections, totalItems)
}

// Compile-time check that LLMStrategy implements Strategy
var _ Strategy = (*LLMStrategy)(nil)
