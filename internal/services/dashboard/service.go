// Package dashboard assembles the dashboard view of a session and renders
// its allocation chart and badge image.
package dashboard

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bobmcallan/investbadge/internal/common"
	"github.com/bobmcallan/investbadge/internal/interfaces"
	"github.com/bobmcallan/investbadge/internal/models"
	"github.com/bobmcallan/investbadge/internal/services/reputation"
	"github.com/bobmcallan/investbadge/internal/wallet"
)

// Service implements interfaces.DashboardService.
type Service struct {
	baseURL string
	logger  *common.Logger
}

var _ interfaces.DashboardService = (*Service)(nil)

// NewService creates a dashboard service. baseURL prefixes badge image links.
func NewService(baseURL string, logger *common.Logger) *Service {
	return &Service{baseURL: baseURL, logger: logger}
}

// Overview builds the dashboard for a session snapshot.
func (s *Service) Overview(_ context.Context, view *models.SessionView) (*models.DashboardOverview, error) {
	assessment, err := reputation.Assess(view.Allocation)
	if err != nil {
		return nil, err
	}
	profile := view.Profile

	return &models.DashboardOverview{
		Profile:        profile,
		ShortAddress:   wallet.ShortenAddress(profile.Address),
		Allocation:     view.Allocation.Slices(),
		RiskScore:      assessment.RiskScore,
		RiskLevel:      assessment.RiskLevel,
		HighRiskAlert:  assessment.RiskLevel == models.RiskLevelHigh,
		RefreshStatus:  view.RefreshStatus,
		Badge:          BadgeStyleFor(&profile),
		Metadata:       s.Metadata(&profile),
		FollowingCount: len(view.Following),
	}, nil
}

// Metadata returns the NFT metadata for a profile.
func (s *Service) Metadata(profile *models.InvestorProfile) models.NFTMetadata {
	return badgeMetadata(profile, reputation.RiskLevelFor(profile.Type), s.imageURL(profile.ID))
}

// AllocationChart renders the allocation pie chart.
func (s *Service) AllocationChart(_ context.Context, allocation models.PortfolioAllocation) ([]byte, error) {
	if err := allocation.Validate(); err != nil {
		return nil, err
	}
	return RenderAllocationChart(allocation)
}

// BadgeImage renders the badge image for a profile.
func (s *Service) BadgeImage(_ context.Context, profile *models.InvestorProfile) ([]byte, error) {
	png, err := RenderBadgeImage(profile)
	if err != nil {
		s.logger.Warn().Err(err).Str("profile_id", profile.ID).Msg("Badge render failed")
		return nil, err
	}
	return png, nil
}

func (s *Service) imageURL(profileID string) string {
	return fmt.Sprintf("%s/api/badges/%s/image.png", s.baseURL, url.PathEscape(profileID))
}
