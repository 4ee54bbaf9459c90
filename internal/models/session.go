package models

import "time"

// SessionView is a snapshot of one connected wallet session.
type SessionView struct {
	SessionID     string              `json:"session_id"`
	Profile       InvestorProfile     `json:"profile"`
	Allocation    PortfolioAllocation `json:"allocation"`
	RefreshStatus RefreshStatus       `json:"refresh_status"`
	Following     []string            `json:"following"`
	ConnectedAt   time.Time           `json:"connected_at"`
}

// DashboardOverview is everything the dashboard page renders for a session.
type DashboardOverview struct {
	Profile        InvestorProfile   `json:"profile"`
	ShortAddress   string            `json:"short_address"`
	Allocation     []AllocationSlice `json:"allocation"`
	RiskScore      float64           `json:"risk_score"`
	RiskLevel      RiskLevel         `json:"risk_level"`
	HighRiskAlert  bool              `json:"high_risk_alert"`
	RefreshStatus  RefreshStatus     `json:"refresh_status"`
	Badge          BadgeStyle        `json:"badge"`
	Metadata       NFTMetadata       `json:"metadata"`
	FollowingCount int               `json:"following_count"`
}
