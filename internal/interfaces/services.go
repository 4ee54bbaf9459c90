package interfaces

import (
	"context"

	"github.com/bobmcallan/investbadge/internal/models"
)

// EventPublisher delivers refresh lifecycle events to subscribers.
// Publish must not block.
type EventPublisher interface {
	Publish(event models.RefreshEvent)
}

// SessionService manages connected wallet sessions
type SessionService interface {
	// Connect validates the address and allocation and opens a new session.
	// A nil allocation uses the configured default.
	Connect(ctx context.Context, address string, allocation *models.PortfolioAllocation) (*models.SessionView, error)

	// Get returns a snapshot of the session.
	Get(ctx context.Context, sessionID string) (*models.SessionView, error)

	// ChangeAccount handles an account-change notification from the wallet.
	// An empty address disconnects the session.
	ChangeAccount(ctx context.Context, sessionID, address string) (*models.SessionView, error)

	// Disconnect closes the session.
	Disconnect(ctx context.Context, sessionID string) error

	// Refresh starts, or joins, the refresh of the session's profile.
	Refresh(ctx context.Context, sessionID string) (models.RefreshTaskInfo, error)

	// RefreshStatus reports the most recent refresh task for the session.
	RefreshStatus(ctx context.Context, sessionID string) (models.RefreshTaskInfo, error)

	// RefreshAll refreshes every connected session with bounded concurrency.
	RefreshAll(ctx context.Context) error

	// ToggleFollow flips whether the session follows an investor and
	// returns the new state.
	ToggleFollow(ctx context.Context, sessionID, investorID string) (bool, error)

	// Following returns the investor IDs the session follows.
	Following(ctx context.Context, sessionID string) ([]string, error)
}

// LeaderboardService ranks investors
type LeaderboardService interface {
	// List returns investors ranked by score. filter is "all", "" or an investor type.
	// following marks entries the viewer follows.
	List(ctx context.Context, filter string, following []string) ([]models.LeaderboardEntry, error)

	// Stats summarizes the investor population.
	Stats(ctx context.Context, following []string) (*models.LeaderboardStats, error)

	// Details returns the detail view for one investor.
	Details(ctx context.Context, investorID string, following []string) (*models.InvestorDetails, error)

	// Profile returns a single investor profile.
	Profile(ctx context.Context, investorID string) (*models.InvestorProfile, error)
}

// DashboardService assembles dashboard views and renders images
type DashboardService interface {
	Overview(ctx context.Context, view *models.SessionView) (*models.DashboardOverview, error)
	Metadata(profile *models.InvestorProfile) models.NFTMetadata
	AllocationChart(ctx context.Context, allocation models.PortfolioAllocation) ([]byte, error)
	BadgeImage(ctx context.Context, profile *models.InvestorProfile) ([]byte, error)
}
