package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pollbox/pollbox/internal/auth"
	"github.com/pollbox/pollbox/internal/service"
)

// VoteHandler serves vote casting and results.
type VoteHandler struct {
	votes  *service.VoteService
	logger *slog.Logger
}

func NewVoteHandler(votes *service.VoteService, logger *slog.Logger) *VoteHandler {
	return &VoteHandler{votes: votes, logger: logger}
}

type castVoteRequest struct {
	OptionID string `json:"optionId"`
}

// HandleCast serves POST /api/polls/{id}/votes. A repeat vote by the same
// caller returns 409.
func (h *VoteHandler) HandleCast(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	pollID := chi.URLParam(r, "id")

	var req castVoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	vote, err := h.votes.Cast(r.Context(), userID, pollID, req.OptionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, vote)
}

// HandleResults serves GET /api/polls/{id}/results. Counts are recomputed
// from the vote rows on every call.
func (h *VoteHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")

	tally, err := h.votes.Tally(r.Context(), pollID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tally)
}
