package models

import "time"

// LeaderboardEntry is one ranked investor.
type LeaderboardEntry struct {
	Rank    int             `json:"rank"`
	Profile InvestorProfile `json:"profile"`
}

// LeaderboardStats summarizes the visible investor population.
type LeaderboardStats struct {
	TotalInvestors      int                  `json:"total_investors"`
	HighestScore        int                  `json:"highest_score"`
	MeanScore           float64              `json:"mean_score"`
	ScoreStdDev         float64              `json:"score_std_dev"`
	AvgPortfolioValue   float64              `json:"avg_portfolio_value"`
	TotalPortfolioValue float64              `json:"total_portfolio_value"`
	ByType              map[InvestorType]int `json:"by_type"`
	Following           int                  `json:"following"`
}

// Holding is one position in an investor's top holdings.
type Holding struct {
	Symbol     string  `json:"symbol"`
	Percentage float64 `json:"percentage"`
	Value      float64 `json:"value"`
}

// Trade is a recent trade shown on an investor's detail view.
type Trade struct {
	Token  string `json:"token"`
	Action string `json:"action"`
	Amount string `json:"amount"`
	Age    string `json:"age"`
	PnL    string `json:"pnl"`
}

// InvestorDetails is the detail view of a leaderboard investor.
// Performance figures are mock values.
type InvestorDetails struct {
	Profile       InvestorProfile `json:"profile"`
	TotalTrades   int             `json:"total_trades"`
	WinRate       int             `json:"win_rate"`
	AvgHoldDays   int             `json:"avg_hold_days"`
	BestTrade     int             `json:"best_trade"`
	WorstTrade    int             `json:"worst_trade"`
	MonthlyReturn int             `json:"monthly_return"`
	Followers     int             `json:"followers"`
	TopHoldings   []Holding       `json:"top_holdings"`
	RecentTrades  []Trade         `json:"recent_trades"`
	GeneratedAt   time.Time       `json:"generated_at"`
}
