// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"bomsource_backend/platform/events"
	"bomsource_backend/platform/logger"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
// This is a convenience re-export from platform/events.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Sourcing Domain Events
// =============================================================================

// GatewaySearchFailed is published when a single provider search degrades
// to zero offers because of a transport or parsing failure.
type GatewaySearchFailed struct {
	BaseEvent
	Provider string `json:"provider"`
	ItemID   string `json:"itemId"`
	Query    string `json:"query"`
	Error    string `json:"error"`
}

func (e GatewaySearchFailed) EventName() string { return "sourcing.gateway.search_failed" }

// SuggestionRunCompleted is published after a full suggestion run finishes,
// whatever the outcome.
type SuggestionRunCompleted struct {
	BaseEvent
	Items       int     `json:"items"`
	Matched     int     `json:"matched"`
	Unmatched   int     `json:"unmatched"`
	Suggestions int     `json:"suggestions"`
	DurationMs  float64 `json:"durationMs"`
}

func (e SuggestionRunCompleted) EventName() string { return "sourcing.run.completed" }
