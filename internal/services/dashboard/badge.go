package dashboard

import (
	"fmt"
	"time"

	"github.com/bobmcallan/investbadge/internal/models"
)

// glowScore is the score from which a badge glows.
const glowScore = 90

var badgeStyles = map[models.InvestorType]models.BadgeStyle{
	models.InvestorTypeRiskAverse: {Gradient: [2]string{"#2563EB", "#1E40AF"}, Accent: "#93C5FD", Icon: "shield"},
	models.InvestorTypeBalanced:   {Gradient: [2]string{"#CA8A04", "#854D0E"}, Accent: "#FDE047", Icon: "trending-up"},
	models.InvestorTypeAggressive: {Gradient: [2]string{"#DC2626", "#991B1B"}, Accent: "#FCA5A5", Icon: "zap"},
}

var fallbackStyle = models.BadgeStyle{Gradient: [2]string{"#4B5563", "#1F2937"}, Accent: "#D1D5DB", Icon: "trophy"}

// BadgeStyleFor returns the visual treatment of a profile's badge.
func BadgeStyleFor(p *models.InvestorProfile) models.BadgeStyle {
	style, ok := badgeStyles[p.Type]
	if !ok {
		style = fallbackStyle
		style.TypeLabel = "Unranked"
	} else {
		style.TypeLabel = string(p.Type)
	}
	style.Glow = p.Score >= glowScore
	return style
}

// badgeMetadata builds ERC-721 style metadata; imageURL points at the rendered badge.
func badgeMetadata(p *models.InvestorProfile, level models.RiskLevel, imageURL string) models.NFTMetadata {
	label := p.NFTID
	if label == "" {
		label = models.NFTLabel(p.ID)
	}
	return models.NFTMetadata{
		Name:        fmt.Sprintf("InvestBadge %s", label),
		Description: fmt.Sprintf("%s investor reputation badge with a score of %d/100.", p.Type, p.Score),
		Image:       imageURL,
		Attributes: []models.NFTAttribute{
			{TraitType: "Score", Value: p.Score},
			{TraitType: "Investor Type", Value: string(p.Type)},
			{TraitType: "Risk Level", Value: string(level)},
			{TraitType: "Diversification", Value: p.DiversificationScore},
			{TraitType: "Portfolio Value", Value: p.PortfolioValue},
			{TraitType: "Last Updated", Value: p.LastUpdated.UTC().Format(time.RFC3339)},
		},
	}
}
