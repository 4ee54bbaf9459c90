package leaderboard

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/investbadge/internal/common"
	"github.com/bobmcallan/investbadge/internal/models"
	"github.com/bobmcallan/investbadge/internal/storage/memdb"
)

type lowRand struct{}

func (lowRand) IntN(int) int { return 0 }

var seededAt = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func newSeededService(t *testing.T) (*Service, *memdb.Store) {
	t.Helper()
	store := memdb.NewStore(common.NewSilentLogger())
	svc := NewService(store, common.NewSilentLogger(),
		WithRand(lowRand{}),
		WithClock(func() time.Time { return seededAt }))
	n, err := svc.SeedInvestors(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, n)
	return svc, store
}

func ids(entries []models.LeaderboardEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Profile.ID
	}
	return out
}

func TestSeedInvestors_Idempotent(t *testing.T) {
	svc, _ := newSeededService(t)
	n, err := svc.SeedInvestors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	p, err := svc.Profile(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "#0001", p.NFTID)
	assert.Equal(t, seededAt, p.LastUpdated)
}

func TestList_RankedByScore(t *testing.T) {
	svc, _ := newSeededService(t)

	entries, err := svc.List(context.Background(), FilterAll, []string{"3"})
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"1", "5", "2", "4", "3"}, ids(entries)); diff != "" {
		t.Errorf("ranking mismatch (-want +got):\n%s", diff)
	}
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
		assert.Equal(t, e.Profile.ID == "3", e.Profile.IsFollowing)
	}
}

func TestList_TiesOrderedByID(t *testing.T) {
	svc, store := newSeededService(t)
	require.NoError(t, store.SaveProfile(context.Background(), &models.InvestorProfile{ID: "0", Score: 95, Type: models.InvestorTypeBalanced}))

	entries, err := svc.List(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1"}, ids(entries)[:2])
}

func TestList_Filter(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	tests := []struct {
		filter string
		want   []string
	}{
		{"Risk-averse", []string{"5", "2"}},
		{"balanced", []string{"1", "4"}},
		{"Aggressive", []string{"3"}},
		{"", []string{"1", "5", "2", "4", "3"}},
	}
	for _, tt := range tests {
		entries, err := svc.List(ctx, tt.filter, nil)
		require.NoError(t, err, tt.filter)
		assert.Equal(t, tt.want, ids(entries), tt.filter)
	}

	_, err := svc.List(ctx, "degen", nil)
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestStats(t *testing.T) {
	svc, _ := newSeededService(t)

	stats, err := svc.Stats(context.Background(), []string{"1", "2", "ghost"})
	require.NoError(t, err)

	assert.Equal(t, 5, stats.TotalInvestors)
	assert.Equal(t, 95, stats.HighestScore)
	assert.InDelta(t, 86.4, stats.MeanScore, 1e-9)
	// Sample standard deviation of {95, 88, 76, 82, 91}.
	assert.InDelta(t, math.Sqrt(56.3), stats.ScoreStdDev, 1e-9)
	assert.Equal(t, 1315000.0, stats.TotalPortfolioValue)
	assert.Equal(t, 263000.0, stats.AvgPortfolioValue)
	assert.Equal(t, 2, stats.Following, "unknown ids are not counted")
	assert.Equal(t, map[models.InvestorType]int{
		models.InvestorTypeRiskAverse: 2,
		models.InvestorTypeBalanced:   2,
		models.InvestorTypeAggressive: 1,
	}, stats.ByType)
}

func TestStats_Empty(t *testing.T) {
	svc := NewService(memdb.NewStore(common.NewSilentLogger()), common.NewSilentLogger())
	stats, err := svc.Stats(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalInvestors)
	assert.Zero(t, stats.ScoreStdDev)
}

func TestDetails(t *testing.T) {
	svc, _ := newSeededService(t)

	d, err := svc.Details(context.Background(), "3", []string{"3"})
	require.NoError(t, err)

	assert.True(t, d.Profile.IsFollowing)
	assert.Equal(t, 100, d.TotalTrades)
	assert.Equal(t, 60, d.WinRate)
	assert.Equal(t, 5, d.AvgHoldDays)
	assert.Equal(t, 100, d.BestTrade)
	assert.Equal(t, -10, d.WorstTrade)
	assert.Equal(t, 5, d.MonthlyReturn)
	assert.Equal(t, 50, d.Followers)
	require.Len(t, d.TopHoldings, 5)
	assert.Equal(t, models.Holding{Symbol: "BTC", Percentage: 35, Value: 112000}, d.TopHoldings[0])
	assert.Equal(t, models.Holding{Symbol: "UNI", Percentage: 8, Value: 25600}, d.TopHoldings[4])
	require.Len(t, d.RecentTrades, 4)
	assert.Equal(t, "AAVE", d.RecentTrades[0].Token)
	assert.Equal(t, seededAt, d.GeneratedAt)

	_, err = svc.Details(context.Background(), "99", nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
