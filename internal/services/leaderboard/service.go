// Package leaderboard ranks stored investor profiles and builds their
// summary statistics and detail views.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/bobmcallan/investbadge/internal/common"
	"github.com/bobmcallan/investbadge/internal/interfaces"
	"github.com/bobmcallan/investbadge/internal/models"
	"github.com/bobmcallan/investbadge/internal/services/reputation"
)

// FilterAll selects every investor type.
const FilterAll = "all"

// ErrInvalidFilter is returned for a filter that is neither "all" nor an investor type.
var ErrInvalidFilter = errors.New("invalid leaderboard filter")

// Service implements interfaces.LeaderboardService.
type Service struct {
	profiles interfaces.ProfileStore
	rng      reputation.Rand
	now      func() time.Time
	logger   *common.Logger
}

var _ interfaces.LeaderboardService = (*Service)(nil)

// Option configures a Service.
type Option func(*Service)

// WithRand sets the source for mock detail figures.
func WithRand(rng reputation.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a leaderboard over profiles.
func NewService(profiles interfaces.ProfileStore, logger *common.Logger, opts ...Option) *Service {
	s := &Service{
		profiles: profiles,
		rng:      reputation.NewRand(0),
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseFilter returns the investor type for filter, or "" for all.
func ParseFilter(filter string) (models.InvestorType, error) {
	f := strings.TrimSpace(filter)
	if f == "" || strings.EqualFold(f, FilterAll) {
		return "", nil
	}
	t, err := models.ParseInvestorType(f)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, filter)
	}
	return t, nil
}

// List ranks investors by score, highest first. Ties are ordered by ID.
func (s *Service) List(ctx context.Context, filter string, following []string) ([]models.LeaderboardEntry, error) {
	typ, err := ParseFilter(filter)
	if err != nil {
		return nil, err
	}
	profiles, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list investors: %w", err)
	}

	ranked := make([]models.InvestorProfile, 0, len(profiles))
	for _, p := range profiles {
		if typ != "" && p.Type != typ {
			continue
		}
		ranked = append(ranked, *p)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID < ranked[j].ID
	})

	entries := make([]models.LeaderboardEntry, len(ranked))
	for i, p := range ranked {
		p.IsFollowing = slices.Contains(following, p.ID)
		entries[i] = models.LeaderboardEntry{Rank: i + 1, Profile: p}
	}
	return entries, nil
}

// Stats summarizes every stored investor.
func (s *Service) Stats(ctx context.Context, following []string) (*models.LeaderboardStats, error) {
	profiles, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list investors: %w", err)
	}

	stats := &models.LeaderboardStats{
		TotalInvestors: len(profiles),
		ByType:         make(map[models.InvestorType]int, len(models.InvestorTypes)),
	}
	for _, t := range models.InvestorTypes {
		stats.ByType[t] = 0
	}
	for _, id := range following {
		if slices.ContainsFunc(profiles, func(p *models.InvestorProfile) bool { return p.ID == id }) {
			stats.Following++
		}
	}
	if len(profiles) == 0 {
		return stats, nil
	}

	scores := make([]float64, len(profiles))
	values := make([]float64, len(profiles))
	for i, p := range profiles {
		scores[i] = float64(p.Score)
		values[i] = p.PortfolioValue
		stats.ByType[p.Type]++
	}

	stats.HighestScore = int(floats.Max(scores))
	stats.TotalPortfolioValue = floats.Sum(values)
	stats.AvgPortfolioValue = stat.Mean(values, nil)
	if len(scores) > 1 {
		stats.MeanScore, stats.ScoreStdDev = stat.MeanStdDev(scores, nil)
	} else {
		stats.MeanScore = scores[0]
	}
	return stats, nil
}

// Profile returns one investor.
func (s *Service) Profile(ctx context.Context, investorID string) (*models.InvestorProfile, error) {
	return s.profiles.GetProfile(ctx, investorID)
}

// holdingWeights is the mock split of an investor's portfolio.
var holdingWeights = []struct {
	symbol  string
	percent float64
}{
	{"BTC", 35},
	{"ETH", 25},
	{"USDC", 20},
	{"LINK", 12},
	{"UNI", 8},
}

var recentTrades = []models.Trade{
	{Token: "AAVE", Action: "BUY", Amount: "$5,200", Age: "2h ago", PnL: "+12.5%"},
	{Token: "SOL", Action: "SELL", Amount: "$8,100", Age: "1d ago", PnL: "+8.2%"},
	{Token: "MATIC", Action: "BUY", Amount: "$3,400", Age: "2d ago", PnL: "-2.1%"},
	{Token: "DOT", Action: "SELL", Amount: "$6,700", Age: "3d ago", PnL: "+15.8%"},
}

// Details builds the detail view for an investor. Performance figures are
// drawn from the service's random source on every call.
func (s *Service) Details(ctx context.Context, investorID string, following []string) (*models.InvestorDetails, error) {
	p, err := s.profiles.GetProfile(ctx, investorID)
	if err != nil {
		return nil, err
	}
	p.IsFollowing = slices.Contains(following, p.ID)

	holdings := make([]models.Holding, len(holdingWeights))
	for i, w := range holdingWeights {
		holdings[i] = models.Holding{
			Symbol:     w.symbol,
			Percentage: w.percent,
			Value:      p.PortfolioValue * w.percent / 100,
		}
	}

	return &models.InvestorDetails{
		Profile:       *p,
		TotalTrades:   s.rng.IntN(500) + 100,
		WinRate:       s.rng.IntN(40) + 60,
		AvgHoldDays:   s.rng.IntN(30) + 5,
		BestTrade:     s.rng.IntN(500) + 100,
		WorstTrade:    -(s.rng.IntN(50) + 10),
		MonthlyReturn: s.rng.IntN(30) + 5,
		Followers:     s.rng.IntN(1000) + 50,
		TopHoldings:   holdings,
		RecentTrades:  slices.Clone(recentTrades),
		GeneratedAt:   s.now(),
	}, nil
}
