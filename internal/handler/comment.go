package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pollbox/pollbox/internal/auth"
	"github.com/pollbox/pollbox/internal/service"
)

// CommentHandler serves poll comments.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

type createCommentRequest struct {
	Content string `json:"content"`
}

// HandleCreate serves POST /api/polls/{id}/comments.
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	pollID := chi.URLParam(r, "id")

	var req createCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.comments.Create(r.Context(), userID, pollID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// HandleList serves GET /api/polls/{id}/comments?limit=&offset=.
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	comments, err := h.comments.List(r.Context(), pollID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

// HandleDelete serves DELETE /api/comments/{id}. Author or admin only.
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	commentID := chi.URLParam(r, "id")

	if err := h.comments.Delete(r.Context(), userID, commentID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
