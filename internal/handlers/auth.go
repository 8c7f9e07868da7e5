package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/inkwell-press/apiserver/internal/services"
	"github.com/inkwell-press/apiserver/types"
)

const defaultTokenTTL = 24 * time.Hour

// tokenCookieName is the HTTP-only cookie carrying the session token.
// The middleware accepts the token from this cookie or from the
// Authorization header.
const tokenCookieName = "token"

// AuthHandler provides JWT authentication endpoints.
type AuthHandler struct {
	users        *services.UserService
	social       *services.SocialService
	uploads      *services.UploadService
	secret       []byte
	tokenTTL     time.Duration
	cookieSecure bool
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(
	users *services.UserService,
	social *services.SocialService,
	uploads *services.UploadService,
	jwtSecret string,
	cookieSecure bool,
) *AuthHandler {
	return &AuthHandler{
		users:        users,
		social:       social,
		uploads:      uploads,
		secret:       []byte(jwtSecret),
		tokenTTL:     defaultTokenTTL,
		cookieSecure: cookieSecure,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(
	r chi.Router,
	users *services.UserService,
	social *services.SocialService,
	uploads *services.UploadService,
	jwtSecret string,
	cookieSecure bool,
) {
	handler := NewAuthHandler(users, social, uploads, jwtSecret, cookieSecure)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Post("/logout", handler.Logout)
	r.With(handler.RequireAuth).Get("/me", handler.Me)
}

// RequireAuth enforces authentication and injects the subject into context.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return requireAuth(h.secret)(next)
}

// RequireAuth constructs auth middleware for other routers.
func RequireAuth(jwtSecret string) func(http.Handler) http.Handler {
	return requireAuth([]byte(jwtSecret))
}

func requireAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := requestToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "No token provided")
				return
			}

			subject, err := parseTokenSubject(tokenString, secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), contextSubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Register creates a new account and returns a session token. The body
// is either JSON or, when an avatar is attached, multipart form data.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	input, avatarName, avatarData, err := parseRegisterRequest(r)
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

	user, err := h.users.Register(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, "Required fields are missing")
		case errors.Is(err, services.ErrConflict):
			writeError(w, http.StatusConflict, "User already exists")
		default:
			writeInternalError(w, "failed to create user", err)
		}
		return
	}

	token, err := issueToken(user.ID, h.secret, h.tokenTTL)
	if err != nil {
		writeInternalError(w, "failed to create token", err)
		return
	}

	h.setTokenCookie(w, token)
	writeJSON(w, http.StatusCreated, AuthResponse{User: user, Token: token})
}

// Login verifies credentials and returns a session token. Unknown
// email and wrong password produce identical responses.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeInternalError(w, "failed to authenticate", err)
		return
	}

	token, err := issueToken(user.ID, h.secret, h.tokenTTL)
	if err != nil {
		writeInternalError(w, "failed to create token", err)
		return
	}

	h.setTokenCookie(w, token)
	writeJSON(w, http.StatusOK, AuthResponse{User: user, Token: token})
}

// Me returns the authenticated user's profile with follower lists.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	profile, err := h.social.Profile(r.Context(), userID, true)
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

// Logout clears the token cookie. Tokens are stateless, so nothing is
// invalidated server-side; a token stays valid until expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
	})
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Bio       string `json:"bio"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  types.User `json:"user"`
	Token string     `json:"token"`
}

type ProfileResponse struct {
	User types.Profile `json:"user"`
}

func parseRegisterRequest(r *http.Request) (services.RegisterInput, string, []byte, error) {
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return services.RegisterInput{}, "", nil, err
		}
		input := services.RegisterInput{
			FirstName: r.FormValue("firstName"),
			LastName:  r.FormValue("lastName"),
			Username:  r.FormValue("username"),
			Email:     r.FormValue("email"),
			Password:  r.FormValue("password"),
			Bio:       optionalString(r.FormValue("bio")),
		}
		name, data, _, err := formFile(r.MultipartForm, "avatar")
		if err != nil {
			return services.RegisterInput{}, "", nil, err
		}
		return input, name, data, nil
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return services.RegisterInput{}, "", nil, err
	}
	return services.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Bio:       optionalString(req.Bio),
	}, "", nil, nil
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		Expires:  time.Now().Add(h.tokenTTL),
	})
}

func issueToken(userID int, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseTokenSubject(tokenString string, secret []byte) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("missing subject")
	}
	return claims.Subject, nil
}

// requestToken extracts the session token from the Authorization
// header or, failing that, the token cookie.
func requestToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", errors.New("invalid authorization")
		}
		token := strings.TrimSpace(parts[1])
		if token == "" {
			return "", errors.New("invalid authorization")
		}
		return token, nil
	}

	cookie, err := r.Cookie(tokenCookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return "", errors.New("missing token")
	}
	return cookie.Value, nil
}
