// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/mcthuva007/Acadamist/broadcast"
	"github.com/mcthuva007/Acadamist/cliparse"
	"github.com/mcthuva007/Acadamist/handlers"
	"github.com/mcthuva007/Acadamist/middleware"
	"github.com/mcthuva007/Acadamist/store"
)

func NewRouter(st *store.Store, hub *broadcast.Hub, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	voteHandler := handlers.NewVoteHandler(st, cfg)
	calendarHandler := handlers.NewCalendarHandler(st)
	socketHandler := handlers.NewSocketHandler(st, hub)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Votes
	mux.HandleFunc("GET /api/votes", middleware.WithLogging(voteHandler.GetVotes))
	mux.HandleFunc("POST /api/vote", middleware.WithLogging(voteHandler.SubmitVote))
	mux.HandleFunc("POST /api/clear-votes", middleware.WithLogging(voteHandler.ClearVotes))

	// Calendar (no PUT: event edits are not served)
	mux.HandleFunc("GET /api/events", middleware.WithLogging(calendarHandler.GetEvents))
	mux.HandleFunc("POST /api/events", middleware.WithLogging(calendarHandler.AddEvent))
	mux.HandleFunc("DELETE /api/events/{key}/{index}", middleware.WithLogging(calendarHandler.DeleteEvent))

	// Real-time channel
	mux.HandleFunc("GET /socket", middleware.WithLogging(socketHandler.Connect))

	// Root: the static site when configured
	if cfg.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(cfg.StaticDir)))
	} else {
		mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("acadamist API v1"))
		})
	}

	return mux
}
