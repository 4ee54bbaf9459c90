package server

import (
	"net/http"
	"time"

	"github.com/bobmcallan/investbadge/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Scoring
	mux.HandleFunc("/api/reputation/classify", s.handleClassify)
	mux.HandleFunc("/api/reputation/score", s.handleScore)

	// Wallet sessions
	mux.HandleFunc("/api/session", s.handleSession)
	mux.HandleFunc("/api/session/account", s.handleSessionAccount)
	mux.HandleFunc("/api/session/refresh", s.handleSessionRefresh)

	// Dashboard
	mux.HandleFunc("/api/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/dashboard/allocation.png", s.handleAllocationChart)

	// Badges
	mux.HandleFunc("/api/badges/", s.routeBadges)

	// Leaderboard
	mux.HandleFunc("/api/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("/api/leaderboard/stats", s.handleLeaderboardStats)
	mux.HandleFunc("/api/leaderboard/", s.routeLeaderboard)

	// Refresh events
	mux.HandleFunc("/api/ws", s.handleWebSocket)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version":  common.GetVersion(),
		"build":    common.GetBuild(),
		"commit":   common.GetGitCommit(),
		"backend":  s.app.Storage.Backend(),
		"sessions": s.app.SessionService.Count(),
		"uptime":   time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

// routeBadges dispatches /api/badges/{id} and /api/badges/{id}/image.png.
func (s *Server) routeBadges(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "/api/badges/", "")
	if id == "" {
		WriteError(w, http.StatusNotFound, "Badge not found")
		return
	}
	switch r.URL.Path {
	case "/api/badges/" + id:
		s.handleBadgeMetadata(w, r, id)
	case "/api/badges/" + id + "/image.png":
		s.handleBadgeImage(w, r, id)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// routeLeaderboard dispatches /api/leaderboard/{id} and /api/leaderboard/{id}/follow.
func (s *Server) routeLeaderboard(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "/api/leaderboard/", "")
	if id == "" {
		s.handleLeaderboard(w, r)
		return
	}
	switch r.URL.Path {
	case "/api/leaderboard/" + id:
		s.handleInvestorDetails(w, r, id)
	case "/api/leaderboard/" + id + "/follow":
		s.handleToggleFollow(w, r, id)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}
