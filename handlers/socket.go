// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mcthuva007/Acadamist/broadcast"
	"github.com/mcthuva007/Acadamist/middleware"
	"github.com/mcthuva007/Acadamist/models"
	"github.com/mcthuva007/Acadamist/store"
)

type SocketHandler struct {
	store    *store.Store
	hub      *broadcast.Hub
	upgrader websocket.Upgrader
}

func NewSocketHandler(st *store.Store, hub *broadcast.Hub) *SocketHandler {
	return &SocketHandler{
		store: st,
		hub:   hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Same policy as the CORS middleware: any origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Connect handles GET /socket
// The new client receives the full tally and calendar before any update.
func (h *SocketHandler) Connect(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	remote := middleware.GetClientIP(r)

	var regErr error
	h.store.Attach(func(doc models.Document) {
		_, regErr = h.hub.Register(conn, remote,
			models.Message{Event: models.EventVoteUpdate, Data: doc.CrushVotes},
			models.Message{Event: models.EventCalendarUpdate, Data: doc.CalendarEvents},
		)
	})
	if regErr != nil {
		slog.Warn("failed to register client", "remote", remote, "error", regErr)
	}
}
