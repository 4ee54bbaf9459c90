// Package reputation derives investor type and reputation score from a
// portfolio allocation, and refreshes scores asynchronously.
package reputation

import (
	"math"

	"github.com/bobmcallan/investbadge/internal/models"
)

const (
	baseScore = 70.0

	// diversificationStep is awarded per allocation bucket above zero.
	diversificationStep     = 6.25
	maxDiversificationBonus = 25.0

	// The penalty applies only to the volatile share above penaltyThreshold.
	penaltyThreshold = 50.0
	penaltyRate      = 0.5

	// Upper bounds (inclusive) of the risk-averse and balanced bands.
	riskAverseCeiling = 30.0
	balancedCeiling   = 60.0

	minScore = 0
	maxScore = 100
)

// Assessment is the full scoring breakdown for one allocation.
type Assessment struct {
	Type                 models.InvestorType        `json:"type"`
	Score                int                        `json:"score"`
	RiskScore            float64                    `json:"risk_score"`
	RiskLevel            models.RiskLevel           `json:"risk_level"`
	DiversificationBonus float64                    `json:"diversification_bonus"`
	RiskPenalty          float64                    `json:"risk_penalty"`
	Allocation           models.PortfolioAllocation `json:"allocation"`
}

// Classify returns the investor type for an allocation.
// Invalid allocations return models.ErrInvalidAllocation.
func Classify(a models.PortfolioAllocation) (models.InvestorType, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	return classify(a), nil
}

// Score returns the reputation score in [0, 100] for an allocation.
// Invalid allocations return models.ErrInvalidAllocation.
func Score(a models.PortfolioAllocation) (int, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	return score(a), nil
}

// Assess validates an allocation and returns type, score and risk breakdown.
func Assess(a models.PortfolioAllocation) (Assessment, error) {
	if err := a.Validate(); err != nil {
		return Assessment{}, err
	}
	return Assessment{
		Type:                 classify(a),
		Score:                score(a),
		RiskScore:            a.RiskScore(),
		RiskLevel:            riskLevel(a),
		DiversificationBonus: diversificationBonus(a),
		RiskPenalty:          riskPenalty(a),
		Allocation:           a,
	}, nil
}

func classify(a models.PortfolioAllocation) models.InvestorType {
	switch risk := a.RiskScore(); {
	case risk <= riskAverseCeiling:
		return models.InvestorTypeRiskAverse
	case risk <= balancedCeiling:
		return models.InvestorTypeBalanced
	default:
		return models.InvestorTypeAggressive
	}
}

func riskLevel(a models.PortfolioAllocation) models.RiskLevel {
	return RiskLevelFor(classify(a))
}

// RiskLevelFor maps an investor type onto its risk band. Types the engine
// does not produce map to RiskLevelUnknown.
func RiskLevelFor(t models.InvestorType) models.RiskLevel {
	switch t {
	case models.InvestorTypeRiskAverse:
		return models.RiskLevelLow
	case models.InvestorTypeBalanced:
		return models.RiskLevelMedium
	case models.InvestorTypeAggressive:
		return models.RiskLevelHigh
	default:
		return models.RiskLevelUnknown
	}
}

func diversificationBonus(a models.PortfolioAllocation) float64 {
	return math.Min(maxDiversificationBonus, diversificationStep*float64(a.PositiveComponents()))
}

func riskPenalty(a models.PortfolioAllocation) float64 {
	return math.Max(0, penaltyRate*(a.RiskScore()-penaltyThreshold))
}

// score clamps before rounding. Halves round away from zero.
func score(a models.PortfolioAllocation) int {
	raw := baseScore + diversificationBonus(a) - riskPenalty(a)
	return int(math.Round(math.Max(minScore, math.Min(maxScore, raw))))
}

// ClampScore bounds a score to [0, 100].
func ClampScore(s int) int {
	if s < minScore {
		return minScore
	}
	if s > maxScore {
		return maxScore
	}
	return s
}

// Perturb applies the refresh offset, uniform over [-5, +4], and clamps the result.
func Perturb(s int, rng Rand) int {
	return ClampScore(s + rng.IntN(10) - 5)
}
