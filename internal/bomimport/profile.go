package bomimport

import (
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"bomsource_backend/internal/sourcing/transport"
	"bomsource_backend/platform/apperr"
)

// Profile is an optional YAML document uploaded alongside a BOM that tunes
// the sourcing run: which providers to query, the expected currency, and a
// multiplier applied to every quantity (e.g. build 10 boards from a
// per-board BOM).
type Profile struct {
	Providers          []string `yaml:"providers"`
	Currency           string   `yaml:"currency"`
	QuantityMultiplier int      `yaml:"quantity_multiplier"`
}

// ParseProfile reads and validates a YAML sourcing profile.
func ParseProfile(r io.Reader) (*Profile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, "failed to read profile", err)
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, "failed to parse profile YAML", err)
	}

	if profile.QuantityMultiplier < 0 {
		return nil, apperr.Validation("profile: quantity_multiplier must be positive")
	}
	if profile.QuantityMultiplier == 0 {
		profile.QuantityMultiplier = 1
	}
	for i, provider := range profile.Providers {
		profile.Providers[i] = strings.ToLower(strings.TrimSpace(provider))
	}

	return &profile, nil
}

// Apply rewrites the line items according to the profile. Items are modified
// in place and returned for convenience.
func (p *Profile) Apply(items []transport.BomLineItem) []transport.BomLineItem {
	if p.QuantityMultiplier > 1 {
		for i := range items {
			items[i].Quantity *= p.QuantityMultiplier
		}
	}
	return items
}
