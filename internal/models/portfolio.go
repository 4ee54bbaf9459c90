// Package models defines data structures for InvestBadge
package models

import (
	"fmt"
	"math"
)

// PortfolioAllocation is the percentage breakdown of a portfolio across the four
// asset buckets. Each component is on a 0-100 scale. Components are independent:
// they are not required to sum to 100 and are never normalized.
type PortfolioAllocation struct {
	Stablecoins float64 `json:"stablecoins" toml:"stablecoins"`
	Bitcoin     float64 `json:"bitcoin" toml:"bitcoin"`
	Altcoins    float64 `json:"altcoins" toml:"altcoins"`
	DeFi        float64 `json:"defi" toml:"defi"`
}

// DefaultAllocation returns the canonical mock allocation used when no portfolio
// source is configured.
func DefaultAllocation() PortfolioAllocation {
	return PortfolioAllocation{
		Stablecoins: 35,
		Bitcoin:     25,
		Altcoins:    30,
		DeFi:        10,
	}
}

// AllocationComponent is one named bucket of an allocation.
type AllocationComponent struct {
	Name  string
	Value float64
}

// Components returns the four buckets in display order.
func (a PortfolioAllocation) Components() []AllocationComponent {
	return []AllocationComponent{
		{Name: "stablecoins", Value: a.Stablecoins},
		{Name: "bitcoin", Value: a.Bitcoin},
		{Name: "altcoins", Value: a.Altcoins},
		{Name: "defi", Value: a.DeFi},
	}
}

// Validate rejects negative, non-finite, or above-100 components.
func (a PortfolioAllocation) Validate() error {
	for _, c := range a.Components() {
		if math.IsNaN(c.Value) || math.IsInf(c.Value, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidAllocation, c.Name)
		}
		if c.Value < 0 || c.Value > 100 {
			return fmt.Errorf("%w: %s = %g must be within [0, 100]", ErrInvalidAllocation, c.Name, c.Value)
		}
	}
	return nil
}

// RiskScore is the volatile share of the allocation: altcoins plus defi.
func (a PortfolioAllocation) RiskScore() float64 {
	return a.Altcoins + a.DeFi
}

// PositiveComponents counts the buckets strictly greater than zero.
func (a PortfolioAllocation) PositiveComponents() int {
	n := 0
	for _, c := range a.Components() {
		if c.Value > 0 {
			n++
		}
	}
	return n
}

// AllocationSlice is one allocation bucket prepared for display.
type AllocationSlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// Slices returns the allocation as labelled, coloured display slices.
func (a PortfolioAllocation) Slices() []AllocationSlice {
	return []AllocationSlice{
		{Name: "Stablecoins", Value: a.Stablecoins, Color: "#10B981"},
		{Name: "Bitcoin", Value: a.Bitcoin, Color: "#F59E0B"},
		{Name: "Altcoins", Value: a.Altcoins, Color: "#EF4444"},
		{Name: "DeFi", Value: a.DeFi, Color: "#8B5CF6"},
	}
}
