package models

import (
	"errors"
	"math"
	"testing"
)

func TestPortfolioAllocation_Validate(t *testing.T) {
	tests := []struct {
		name    string
		alloc   PortfolioAllocation
		wantErr bool
	}{
		{"default", DefaultAllocation(), false},
		{"all zero", PortfolioAllocation{}, false},
		{"not summing to 100", PortfolioAllocation{Stablecoins: 100, Bitcoin: 100, Altcoins: 100, DeFi: 100}, false},
		{"negative", PortfolioAllocation{Stablecoins: -1}, true},
		{"above 100", PortfolioAllocation{DeFi: 100.5}, true},
		{"nan", PortfolioAllocation{Bitcoin: math.NaN()}, true},
		{"inf", PortfolioAllocation{Altcoins: math.Inf(1)}, true},
	}
	for _, tt := range tests {
		err := tt.alloc.Validate()
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidAllocation) {
				t.Errorf("%s: Validate() = %v, want ErrInvalidAllocation", tt.name, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: Validate() = %v, want nil", tt.name, err)
		}
	}
}

func TestPortfolioAllocation_RiskScoreAndComponents(t *testing.T) {
	a := PortfolioAllocation{Stablecoins: 0, Bitcoin: 0, Altcoins: 70, DeFi: 30}
	if got := a.RiskScore(); got != 100 {
		t.Errorf("RiskScore() = %v, want 100", got)
	}
	if got := a.PositiveComponents(); got != 2 {
		t.Errorf("PositiveComponents() = %d, want 2", got)
	}
	if got := DefaultAllocation().PositiveComponents(); got != 4 {
		t.Errorf("default PositiveComponents() = %d, want 4", got)
	}
}

func TestPortfolioAllocation_Slices(t *testing.T) {
	slices := DefaultAllocation().Slices()
	if len(slices) != 4 {
		t.Fatalf("expected 4 slices, got %d", len(slices))
	}
	if slices[0].Name != "Stablecoins" || slices[0].Value != 35 || slices[0].Color != "#10B981" {
		t.Errorf("unexpected first slice: %+v", slices[0])
	}
	if slices[3].Name != "DeFi" || slices[3].Value != 10 {
		t.Errorf("unexpected last slice: %+v", slices[3])
	}
}

func TestParseInvestorType(t *testing.T) {
	tests := []struct {
		input string
		want  InvestorType
		ok    bool
	}{
		{"Risk-averse", InvestorTypeRiskAverse, true},
		{"balanced", InvestorTypeBalanced, true},
		{" AGGRESSIVE ", InvestorTypeAggressive, true},
		{"reckless", "", false},
	}
	for _, tt := range tests {
		got, err := ParseInvestorType(tt.input)
		if (err == nil) != tt.ok {
			t.Errorf("ParseInvestorType(%q) error = %v, want ok=%v", tt.input, err, tt.ok)
		}
		if got != tt.want {
			t.Errorf("ParseInvestorType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNFTLabel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1", "#0001"},
		{"42", "#0042"},
		{"12345", "#12345"},
		{"6ba7b810-9dad-11d1-80b4-00c04fd430c8", "#6ba7b810"},
	}
	for _, tt := range tests {
		if got := NFTLabel(tt.input); got != tt.want {
			t.Errorf("NFTLabel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
