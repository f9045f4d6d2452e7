// Package adapthttp is the driving JSON adapter: the external command layer
// (chat transport) talks to the engine through it.
package adapthttp

import (
	"log/slog"
	"net/http"

	"fatrate/internal/app"
)

// Server routes requests to the application services.
type Server struct {
	ranking     *app.RankingService
	leaderboard *app.LeaderboardService
	log         *slog.Logger
}

// New creates a Server wired to the given application services.
func New(rs *app.RankingService, ls *app.LeaderboardService, log *slog.Logger) *Server {
	return &Server{ranking: rs, leaderboard: ls, log: log}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/measurements", s.handleMeasurements)
	api.HandleFunc("/weight", s.handleWeight)
	api.HandleFunc("/leaderboard", s.handleLeaderboard)
	api.HandleFunc("/profile", s.handleProfile)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	return s.loggingMiddleware(root)
}
