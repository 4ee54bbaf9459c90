package models

import (
	"fmt"
	"strings"
	"time"
)

// InvestorType is the risk classification derived from an allocation.
type InvestorType string

const (
	InvestorTypeRiskAverse InvestorType = "Risk-averse"
	InvestorTypeBalanced   InvestorType = "Balanced"
	InvestorTypeAggressive InvestorType = "Aggressive"
)

// InvestorTypes lists every classification in ascending risk order.
var InvestorTypes = []InvestorType{
	InvestorTypeRiskAverse,
	InvestorTypeBalanced,
	InvestorTypeAggressive,
}

// ParseInvestorType matches a label case-insensitively.
func ParseInvestorType(s string) (InvestorType, error) {
	for _, t := range InvestorTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown investor type %q", s)
}

// RiskLevel is the user-facing risk band of an allocation.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "Low"
	RiskLevelMedium RiskLevel = "Medium"
	RiskLevelHigh   RiskLevel = "High"

	RiskLevelUnknown RiskLevel = "Unknown"
)

// InvestorProfile is the identity and derived reputation state of one wallet.
// Score and Type are derived from a PortfolioAllocation; the allocation itself
// is not part of the profile.
type InvestorProfile struct {
	ID                   string       `json:"id"`
	Address              string       `json:"address"`
	Score                int          `json:"score"`
	Type                 InvestorType `json:"type"`
	NFTID                string       `json:"nft_id,omitempty"`
	PortfolioValue       float64      `json:"portfolio_value"`
	DiversificationScore int          `json:"diversification_score"`
	LastUpdated          time.Time    `json:"last_updated"`
	IsFollowing          bool         `json:"is_following,omitempty"`
}

// NFTLabel returns the badge token label for a profile id: "#" followed by the
// id left-padded with zeros to four characters. Long ids are cut to eight.
func NFTLabel(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	if len(id) < 4 {
		id = strings.Repeat("0", 4-len(id)) + id
	}
	return "#" + id
}
