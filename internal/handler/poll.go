package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pollbox/pollbox/internal/auth"
	"github.com/pollbox/pollbox/internal/service"
)

// PollHandler serves the poll CRUD endpoints.
type PollHandler struct {
	polls  *service.PollService
	votes  *service.VoteService
	logger *slog.Logger
}

func NewPollHandler(polls *service.PollService, votes *service.VoteService, logger *slog.Logger) *PollHandler {
	return &PollHandler{polls: polls, votes: votes, logger: logger}
}

type pollRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Options     []string `json:"options"`
}

// HandleCreate serves POST /api/polls.
func (h *PollHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req pollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	pw, err := h.polls.Create(r.Context(), userID, req.Title, req.Description, req.Options)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pw)
}

// HandleList serves GET /api/polls?limit=&offset=.
func (h *PollHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	summaries, err := h.polls.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"polls": summaries})
}

// HandleGet serves GET /api/polls/{id}. For a logged-in caller the
// response includes their own vote, if any.
func (h *PollHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")

	pw, err := h.polls.Get(r.Context(), pollID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := map[string]any{
		"poll":            pw.Poll,
		"options":         pw.Options,
		"descriptionHtml": pw.DescriptionHTML,
	}
	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		vote, err := h.votes.VoteOf(r.Context(), pollID, userID)
		if err != nil {
			writeError(w, err)
			return
		}
		if vote != nil {
			resp["myVote"] = vote
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleUpdate serves PUT /api/polls/{id}. Replacing the option set
// discards existing votes.
func (h *PollHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	pollID := chi.URLParam(r, "id")

	var req pollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	pw, err := h.polls.Update(r.Context(), userID, pollID, req.Title, req.Description, req.Options)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pw)
}

// HandleDelete serves DELETE /api/polls/{id}.
func (h *PollHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	pollID := chi.URLParam(r, "id")

	if err := h.polls.Delete(r.Context(), userID, pollID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
