package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/inkwell-press/apiserver/internal/services"
)

// UserHandler provides profile and follow-graph endpoints.
type UserHandler struct {
	users   *services.UserService
	social  *services.SocialService
	uploads *services.UploadService
}

// NewUserHandler constructs a UserHandler with the provided dependencies.
func NewUserHandler(
	users *services.UserService,
	social *services.SocialService,
	uploads *services.UploadService,
) *UserHandler {
	return &UserHandler{users: users, social: social, uploads: uploads}
}

// UserRouter registers user routes on the given router.
func UserRouter(
	r chi.Router,
	users *services.UserService,
	social *services.SocialService,
	uploads *services.UploadService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewUserHandler(users, social, uploads)

	r.With(authMiddleware).Put("/me", handler.UpdateMe)
	r.With(authMiddleware).Post("/avatar", handler.UploadAvatar)
	r.Get("/{userID}", handler.GetProfile)
	r.With(authMiddleware).Post("/{userID}/follow", handler.Follow)
	r.With(authMiddleware).Delete("/{userID}/follow", handler.Unfollow)
}

// UpdateMe mutates the caller's own profile; JSON or multipart with an
// optional replacement avatar.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	input, avatarName, avatarData, err := parseProfileRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if avatarData != nil {
		path, err := h.uploads.SaveImage(r.Context(), avatarName, avatarData)
		if err != nil {
			if errors.Is(err, services.ErrValidation) {
				writeError(w, http.StatusBadRequest, "No file uploaded or invalid file type")
				return
			}
			writeInternalError(w, "failed to store avatar", err)
			return
		}
		input.Avatar = &path
	}

	if _, err := h.users.UpdateProfile(r.Context(), userID, input); err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, "First name, last name, and username are required")
		case errors.Is(err, services.ErrConflict):
			writeError(w, http.StatusConflict, "Username already taken")
		case errors.Is(err, services.ErrNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		default:
			writeInternalError(w, "failed to update profile", err)
		}
		return
	}

	profile, err := h.social.Profile(r.Context(), userID, true)
	if err != nil {
		writeInternalError(w, "failed to load user", err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{User: profile})
}

// UploadAvatar stores a new avatar and updates the caller's record.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded or invalid file type")
		return
	}
	name, data, ok, err := formFile(r.MultipartForm, "avatar")
	if err != nil || !ok {
		writeError(w, http.StatusBadRequest, "No file uploaded or invalid file type")
		return
	}

	path, err := h.uploads.SaveImage(r.Context(), name, data)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeError(w, http.StatusBadRequest, "No file uploaded or invalid file type")
			return
		}
		writeInternalError(w, "failed to store avatar", err)
		return
	}

	user, err := h.users.SetAvatar(r.Context(), userID, path)
	if err != nil {
		writeInternalError(w, "failed to update avatar", err)
		return
	}

	writeJSON(w, http.StatusOK, AvatarResponse{Avatar: user.Avatar})
}

// GetProfile returns a public profile with follower/following id lists.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	profile, err := h.social.Profile(r.Context(), userID, false)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeInternalError(w, "failed to load user", err)
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{User: profile})
}

// Follow creates the caller -> target follow edge.
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	requesterID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	targetID, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.social.Follow(r.Context(), requesterID, targetID); err != nil {
		switch {
		case errors.Is(err, services.ErrSelfFollow):
			writeError(w, http.StatusBadRequest, "Cannot follow yourself")
		case errors.Is(err, services.ErrNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, services.ErrConflict):
			writeError(w, http.StatusConflict, "Already following this user")
		default:
			writeInternalError(w, "failed to follow user", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Followed user successfully"})
}

// Unfollow removes the caller -> target follow edge.
func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	requesterID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	targetID, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.social.Unfollow(r.Context(), requesterID, targetID); err != nil {
		switch {
		case errors.Is(err, services.ErrSelfFollow):
			writeError(w, http.StatusBadRequest, "Cannot unfollow yourself")
		case errors.Is(err, services.ErrNotFollowing):
			writeError(w, http.StatusBadRequest, "Not following this user")
		case errors.Is(err, services.ErrNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		default:
			writeInternalError(w, "failed to unfollow user", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Unfollowed user successfully"})
}

// AvatarResponse is the avatar upload payload.
type AvatarResponse struct {
	Avatar *string `json:"avatar"`
}

type profileUpdateRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Bio       string `json:"bio"`
}

func parseProfileRequest(r *http.Request) (services.ProfileUpdate, string, []byte, error) {
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return services.ProfileUpdate{}, "", nil, err
		}
		input := services.ProfileUpdate{
			FirstName: r.FormValue("firstName"),
			LastName:  r.FormValue("lastName"),
			Username:  r.FormValue("username"),
			Bio:       optionalString(r.FormValue("bio")),
		}
		name, data, _, err := formFile(r.MultipartForm, "avatar")
		if err != nil {
			return services.ProfileUpdate{}, "", nil, err
		}
		return input, name, data, nil
	}

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return services.ProfileUpdate{}, "", nil, err
	}
	return services.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Bio:       optionalString(req.Bio),
	}, "", nil, nil
}

func parseUserID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "userID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid user id")
	}
	return id, nil
}
