package leaderboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/bobmcallan/investbadge/internal/models"
)

// MockInvestors returns the built-in investor population.
func MockInvestors() []models.InvestorProfile {
	return []models.InvestorProfile{
		{ID: "1", Address: "0x1234567890123456789012345678901234567890", Score: 95, Type: models.InvestorTypeBalanced, PortfolioValue: 250000, DiversificationScore: 85},
		{ID: "2", Address: "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd", Score: 88, Type: models.InvestorTypeRiskAverse, PortfolioValue: 180000, DiversificationScore: 92},
		{ID: "3", Address: "0x9876543210987654321098765432109876543210", Score: 76, Type: models.InvestorTypeAggressive, PortfolioValue: 320000, DiversificationScore: 65},
		{ID: "4", Address: "0xfedcbafedcbafedcbafedcbafedcbafedcbafedc", Score: 82, Type: models.InvestorTypeBalanced, PortfolioValue: 145000, DiversificationScore: 78},
		{ID: "5", Address: "0x5555555555555555555555555555555555555555", Score: 91, Type: models.InvestorTypeRiskAverse, PortfolioValue: 420000, DiversificationScore: 89},
	}
}

// SeedInvestors stores the mock investors that are not already present.
// It returns the number added.
func (s *Service) SeedInvestors(ctx context.Context) (int, error) {
	added := 0
	for _, p := range MockInvestors() {
		if _, err := s.profiles.GetProfile(ctx, p.ID); err == nil {
			continue
		} else if !errors.Is(err, models.ErrNotFound) {
			return added, fmt.Errorf("failed to check investor %s: %w", p.ID, err)
		}
		p.NFTID = models.NFTLabel(p.ID)
		p.LastUpdated = s.now()
		if err := s.profiles.SaveProfile(ctx, &p); err != nil {
			return added, fmt.Errorf("failed to seed investor %s: %w", p.ID, err)
		}
		added++
	}
	s.logger.Info().Int("added", added).Msg("Leaderboard investors seeded")
	return added, nil
}
