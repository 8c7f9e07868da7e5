package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/inkwell-press/apiserver/internal/services"
)

// CommentHandler provides standalone comment endpoints.
type CommentHandler struct {
	comments *services.CommentService
}

// CommentRouter registers comment routes on the given router.
func CommentRouter(
	r chi.Router,
	comments *services.CommentService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := &CommentHandler{comments: comments}

	r.With(authMiddleware).Delete("/{commentID}", handler.DeleteComment)
}

// DeleteComment removes a comment; only the author may do so.
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	raw := chi.URLParam(r, "commentID")
	commentID, err := strconv.Atoi(raw)
	if err != nil || commentID < 1 {
		writeError(w, http.StatusBadRequest, "Invalid comment ID")
		return
	}

	if err := h.comments.Delete(r.Context(), commentID, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			writeError(w, http.StatusNotFound, "Comment not found")
		case errors.Is(err, services.ErrForbidden):
			writeError(w, http.StatusForbidden, "Unauthorized")
		default:
			writeInternalError(w, "failed to delete comment", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Comment deleted"})
}
