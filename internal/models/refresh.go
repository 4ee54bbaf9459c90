package models

import "time"

// RefreshStatus is the lifecycle state of a score refresh.
type RefreshStatus string

// Refresh status constants
const (
	RefreshStatusIdle     RefreshStatus = "idle"
	RefreshStatusUpdating RefreshStatus = "updating"
	RefreshStatusSettled  RefreshStatus = "settled"
	RefreshStatusFailed   RefreshStatus = "failed"
)

// ScoreUpdate is the outcome a refresh settles into a profile.
type ScoreUpdate struct {
	Score     int          `json:"score"`
	Type      InvestorType `json:"type"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ScoreConfirmation is what the oracle is asked to confirm before a refresh settles.
type ScoreConfirmation struct {
	TaskID    string       `json:"task_id"`
	ProfileID string       `json:"profile_id"`
	Address   string       `json:"address"`
	Score     int          `json:"score"`
	Type      InvestorType `json:"type"`
}

// RefreshTaskInfo is a point-in-time view of a refresh task.
type RefreshTaskInfo struct {
	ID        string        `json:"id"`
	SessionID string        `json:"session_id"`
	ProfileID string        `json:"profile_id"`
	Status    RefreshStatus `json:"status"`
	Score     int           `json:"score,omitempty"`
	Type      InvestorType  `json:"type,omitempty"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	SettledAt time.Time     `json:"settled_at,omitempty"`
}

// Refresh event types
const (
	RefreshEventStarted   = "refresh_started"
	RefreshEventCoalesced = "refresh_coalesced"
	RefreshEventSettled   = "refresh_settled"
	RefreshEventFailed    = "refresh_failed"
)

// RefreshEvent is broadcast via WebSocket when a refresh changes state.
type RefreshEvent struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	Task      RefreshTaskInfo `json:"task"`
	Timestamp time.Time       `json:"timestamp"`
}
