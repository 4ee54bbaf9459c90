package reputation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/investbadge/internal/models"
)

func TestClassifyAndScore_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		alloc     models.PortfolioAllocation
		wantType  models.InvestorType
		wantScore int
	}{
		{"canonical mock allocation", models.PortfolioAllocation{Stablecoins: 35, Bitcoin: 25, Altcoins: 30, DeFi: 10}, models.InvestorTypeBalanced, 95},
		{"all stablecoins", models.PortfolioAllocation{Stablecoins: 100}, models.InvestorTypeRiskAverse, 76},
		{"all volatile, half rounds up", models.PortfolioAllocation{Altcoins: 70, DeFi: 30}, models.InvestorTypeAggressive, 58},
		{"empty", models.PortfolioAllocation{}, models.InvestorTypeRiskAverse, 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, err := Classify(tt.alloc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, gotType)

			gotScore, err := Score(tt.alloc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, gotScore)
		})
	}
}

func TestClassify_BandBoundaries(t *testing.T) {
	tests := []struct {
		altcoins, defi float64
		want           models.InvestorType
	}{
		{0, 0, models.InvestorTypeRiskAverse},
		{30, 0, models.InvestorTypeRiskAverse},
		{20, 10, models.InvestorTypeRiskAverse},
		{30, 0.001, models.InvestorTypeBalanced},
		{60, 0, models.InvestorTypeBalanced},
		{30, 30, models.InvestorTypeBalanced},
		{60, 0.001, models.InvestorTypeAggressive},
		{100, 100, models.InvestorTypeAggressive},
	}
	for _, tt := range tests {
		got, err := Classify(models.PortfolioAllocation{Altcoins: tt.altcoins, DeFi: tt.defi})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "altcoins=%v defi=%v", tt.altcoins, tt.defi)
	}
}

func TestScore_NonIncreasingAboveFifty(t *testing.T) {
	prev := 101
	for defi := 1.0; defi <= 100; defi++ {
		s, err := Score(models.PortfolioAllocation{Stablecoins: 10, Bitcoin: 10, Altcoins: 50, DeFi: defi})
		require.NoError(t, err)
		assert.LessOrEqual(t, s, prev, "score rose at defi=%v", defi)
		prev = s
	}
}

func TestScoreAndClassify_TotalAndBounded(t *testing.T) {
	values := []float64{0, 0.5, 12.5, 25, 50, 75, 99.5, 100}
	for _, s := range values {
		for _, b := range values {
			for _, a := range values {
				for _, d := range values {
					alloc := models.PortfolioAllocation{Stablecoins: s, Bitcoin: b, Altcoins: a, DeFi: d}

					score, err := Score(alloc)
					require.NoError(t, err)
					assert.GreaterOrEqual(t, score, 0)
					assert.LessOrEqual(t, score, 100)

					typ, err := Classify(alloc)
					require.NoError(t, err)
					assert.Contains(t, models.InvestorTypes, typ)
				}
			}
		}
	}
}

func TestScoreAndClassify_Idempotent(t *testing.T) {
	alloc := models.PortfolioAllocation{Stablecoins: 12.5, Bitcoin: 7, Altcoins: 55.5, DeFi: 25}
	s1, _ := Score(alloc)
	s2, _ := Score(alloc)
	assert.Equal(t, s1, s2)

	c1, _ := Classify(alloc)
	c2, _ := Classify(alloc)
	assert.Equal(t, c1, c2)
}

func TestClassifyAndScore_RejectInvalidAllocation(t *testing.T) {
	bad := models.PortfolioAllocation{Stablecoins: -5, Altcoins: 10}

	_, err := Classify(bad)
	assert.ErrorIs(t, err, models.ErrInvalidAllocation)

	_, err = Score(bad)
	assert.ErrorIs(t, err, models.ErrInvalidAllocation)

	_, err = Assess(models.PortfolioAllocation{DeFi: 101})
	assert.ErrorIs(t, err, models.ErrInvalidAllocation)
}

func TestAssess_Breakdown(t *testing.T) {
	a, err := Assess(models.PortfolioAllocation{Altcoins: 70, DeFi: 30})
	require.NoError(t, err)

	assert.Equal(t, models.InvestorTypeAggressive, a.Type)
	assert.Equal(t, 58, a.Score)
	assert.Equal(t, 100.0, a.RiskScore)
	assert.Equal(t, models.RiskLevelHigh, a.RiskLevel)
	assert.Equal(t, 12.5, a.DiversificationBonus)
	assert.Equal(t, 25.0, a.RiskPenalty)

	low, err := Assess(models.DefaultAllocation())
	require.NoError(t, err)
	assert.Equal(t, models.RiskLevelMedium, low.RiskLevel)
}

func TestRiskLevelFor(t *testing.T) {
	assert.Equal(t, models.RiskLevelLow, RiskLevelFor(models.InvestorTypeRiskAverse))
	assert.Equal(t, models.RiskLevelMedium, RiskLevelFor(models.InvestorTypeBalanced))
	assert.Equal(t, models.RiskLevelHigh, RiskLevelFor(models.InvestorTypeAggressive))
	assert.Equal(t, models.RiskLevelUnknown, RiskLevelFor(""))
	assert.Equal(t, models.RiskLevelUnknown, RiskLevelFor("Speculator"))

	for _, alloc := range []models.PortfolioAllocation{
		{Stablecoins: 100},
		models.DefaultAllocation(),
		{Altcoins: 70, DeFi: 30},
	} {
		a, err := Assess(alloc)
		require.NoError(t, err)
		assert.Equal(t, RiskLevelFor(a.Type), a.RiskLevel)
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-3))
	assert.Equal(t, 100, ClampScore(104))
	assert.Equal(t, 42, ClampScore(42))
}

func TestPerturb_OffsetRange(t *testing.T) {
	for n := 0; n < 10; n++ {
		rng := fixedRand(n)
		assert.Equal(t, 50+n-5, Perturb(50, rng))
	}
	assert.Equal(t, 100, Perturb(100, fixedRand(9)))
	assert.Equal(t, 0, Perturb(0, fixedRand(0)))
	assert.Equal(t, 96, Perturb(100, fixedRand(1)))
}

func TestPerturb_NeverLeavesBounds(t *testing.T) {
	rng := NewRand(7)
	for i := 0; i < 2000; i++ {
		for _, s := range []int{0, 3, 50, 97, 100} {
			got := Perturb(s, rng)
			if got < 0 || got > 100 {
				t.Fatalf("Perturb(%d) = %d, out of bounds", s, got)
			}
			if got < s-5 || got > s+4 {
				t.Fatalf("Perturb(%d) = %d, offset outside [-5, +4]", s, got)
			}
		}
	}
}

func TestNewRand_Deterministic(t *testing.T) {
	a, b := NewRand(99), NewRand(99)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
	}
}
