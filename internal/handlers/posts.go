package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/inkwell-press/apiserver/internal/services"
)

// PostHandler provides post and per-post comment endpoints.
type PostHandler struct {
	posts    *services.PostService
	comments *services.CommentService
	uploads  *services.UploadService
}

// NewPostHandler constructs a PostHandler with the provided dependencies.
func NewPostHandler(
	posts *services.PostService,
	comments *services.CommentService,
	uploads *services.UploadService,
) *PostHandler {
	return &PostHandler{posts: posts, comments: comments, uploads: uploads}
}

// PostRouter registers post routes on the given router.
func PostRouter(
	r chi.Router,
	posts *services.PostService,
	comments *services.CommentService,
	uploads *services.UploadService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewPostHandler(posts, comments, uploads)

	r.Get("/", handler.ListPosts)
	r.With(authMiddleware).Post("/", handler.CreatePost)
	r.Route("/{postID}", func(r chi.Router) {
		r.Get("/", handler.GetPost)
		r.With(authMiddleware).Put("/", handler.UpdatePost)
		r.With(authMiddleware).Delete("/", handler.DeletePost)
		r.Get("/comments", handler.ListComments)
		r.With(authMiddleware).Post("/comments", handler.CreateComment)
	})
}

// ListPosts returns all posts newest-first, optionally filtered by
// author. The list is fully materialized; there is no pagination.
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	authorID := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("authorId")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "Invalid author ID")
			return
		}
		authorID = parsed
	}

	posts, err := h.posts.List(r.Context(), authorID)
	if err != nil {
		writeInternalError(w, "failed to list posts", err)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := parsePostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	post, err := h.posts.Get(r.Context(), postID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Post not found")
			return
		}
		writeInternalError(w, "failed to fetch post", err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// CreatePost publishes a new post; JSON or multipart with an optional
// thumbnail image.
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	input, thumbName, thumbData, err := parsePostRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if thumbData != nil {
		path, err := h.uploads.SaveImage(r.Context(), thumbName, thumbData)
		if err != nil {
			if errors.Is(err, services.ErrValidation) {
				writeError(w, http.StatusBadRequest, "No file uploaded or invalid file type")
				return
			}
			writeInternalError(w, "failed to store thumbnail", err)
			return
		}
		input.Thumbnail = &path
	}

	post, err := h.posts.Create(r.Context(), userID, input)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeError(w, http.StatusBadRequest, "Title and content are required")
			return
		}
		writeInternalError(w, "failed to create post", err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

// UpdatePost edits a post; only the author may do so.
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	postID, err := parsePostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	input, thumbName, thumbData, err := parsePostRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if thumbData != nil {
		path, err := h.uploads.SaveImage(r.Context(), thumbName, thumbData)
		if err != nil {
			if errors.Is(err, services.ErrValidation) {
				writeError(w, http.StatusBadRequest, "No file uploaded or invalid file type")
				return
			}
			writeInternalError(w, "failed to store thumbnail", err)
			return
		}
		input.Thumbnail = &path
	}

	post, err := h.posts.Update(r.Context(), postID, userID, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			writeError(w, http.StatusNotFound, "Post not found")
		case errors.Is(err, services.ErrForbidden):
			writeError(w, http.StatusForbidden, "Unauthorized")
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, "Title and content are required")
		default:
			writeInternalError(w, "failed to update post", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// DeletePost removes a post and its comments; only the author may do so.
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	postID, err := parsePostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	if err := h.posts.Delete(r.Context(), postID, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			writeError(w, http.StatusNotFound, "Post not found")
		case errors.Is(err, services.ErrForbidden):
			writeError(w, http.StatusForbidden, "Unauthorized")
		default:
			writeInternalError(w, "failed to delete post", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Post deleted"})
}

// ListComments returns a post's comments newest-first.
func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := parsePostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	comments, err := h.comments.ListByPost(r.Context(), postID)
	if err != nil {
		writeInternalError(w, "failed to list comments", err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

// CreateComment adds a comment to an existing post.
func (h *PostHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	postID, err := parsePostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post ID")
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	comment, err := h.comments.Create(r.Context(), postID, userID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, "Content is required")
		case errors.Is(err, services.ErrNotFound):
			writeError(w, http.StatusNotFound, "Post not found")
		default:
			writeInternalError(w, "failed to create comment", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

type CommentRequest struct {
	Content string `json:"content"`
}

type postUpsertRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Summary string `json:"summary"`
}

func parsePostRequest(r *http.Request) (services.PostInput, string, []byte, error) {
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return services.PostInput{}, "", nil, err
		}
		input := services.PostInput{
			Title:   r.FormValue("title"),
			Content: r.FormValue("content"),
			Summary: optionalString(r.FormValue("summary")),
		}
		name, data, _, err := formFile(r.MultipartForm, "thumbnail")
		if err != nil {
			return services.PostInput{}, "", nil, err
		}
		return input, name, data, nil
	}

	var req postUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return services.PostInput{}, "", nil, err
	}
	return services.PostInput{
		Title:   req.Title,
		Content: req.Content,
		Summary: optionalString(req.Summary),
	}, "", nil, nil
}

func parsePostID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "postID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid post id")
	}
	return id, nil
}
