// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/mcthuva007/Acadamist/middleware"
	"github.com/mcthuva007/Acadamist/models"
	"github.com/mcthuva007/Acadamist/store"
)

type CalendarHandler struct {
	store *store.Store
}

func NewCalendarHandler(st *store.Store) *CalendarHandler {
	return &CalendarHandler{store: st}
}

// GetEvents handles GET /api/events
func (h *CalendarHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.store.Events())
}

// AddEvent handles POST /api/events
func (h *CalendarHandler) AddEvent(w http.ResponseWriter, r *http.Request) {
	var req models.AddEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if _, err := models.ParseDateKey(req.Key); req.Key != "" && err != nil {
		// Any non-empty key is accepted; odd ones are only worth a note.
		slog.Debug("event key is not a calendar date", "key", req.Key, "error", err)
	}

	events, err := h.store.AddEvent(req.Key, req.Event)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.EventsResponse{
		Success: true,
		Events:  events,
	})
}

// DeleteEvent handles DELETE /api/events/{key}/{index}
// index is the event's position for the day or its id.
func (h *CalendarHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "key is required")
		return
	}

	events, err := h.store.DeleteEvent(key, r.PathValue("index"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.EventsResponse{
		Success: true,
		Events:  events,
	})
}
