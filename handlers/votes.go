// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/mcthuva007/Acadamist/auth"
	"github.com/mcthuva007/Acadamist/cliparse"
	"github.com/mcthuva007/Acadamist/middleware"
	"github.com/mcthuva007/Acadamist/models"
	"github.com/mcthuva007/Acadamist/store"
)

type VoteHandler struct {
	store *store.Store
	cfg   cliparse.Config
}

func NewVoteHandler(st *store.Store, cfg cliparse.Config) *VoteHandler {
	return &VoteHandler{store: st, cfg: cfg}
}

// GetVotes handles GET /api/votes
func (h *VoteHandler) GetVotes(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.store.Votes())
}

// SubmitVote handles POST /api/vote
func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	votes, err := h.store.SubmitVote(req.Name)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{
		Success: true,
		Votes:   votes,
	})
}

// ClearVotes handles POST /api/clear-votes
// Open to any caller unless an admin key is configured.
func (h *VoteHandler) ClearVotes(w http.ResponseWriter, r *http.Request) {
	if err := auth.ValidateAdminKey(auth.RequestAdminKey(r), h.cfg.AdminKey); err != nil {
		slog.Warn("rejected clear-votes", "remote", middleware.GetClientIP(r), "error", err)
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	h.store.ClearVotes()

	middleware.JSONResponse(w, http.StatusOK, models.ClearVotesResponse{
		Success: true,
		Message: "Votes cleared",
	})
}
