package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRegisterIssuesTokenAndCookie(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"firstName": "Alice",
		"lastName":  "Smith",
		"username":  "alice",
		"email":     "alice@x.com",
		"password":  "secret123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register code %d body %s", w.Code, w.Body.String())
	}

	var resp AuthResponse
	decodeBody(t, w, &resp)
	if resp.Token == "" {
		t.Fatalf("expected token in response")
	}
	if resp.User.Username != "alice" {
		t.Fatalf("unexpected username %q", resp.User.Username)
	}

	var found bool
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "token" && cookie.Value != "" {
			if !cookie.HttpOnly {
				t.Fatalf("token cookie must be http-only")
			}
			found = true
		}
	}
	if !found {
		t.Fatalf("token cookie not set")
	}
}

func TestRegisterMissingFields(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"firstName": "Alice",
		"email":     "alice@x.com",
		"password":  "secret123",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "alice@x.com", "alice")

	w := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"firstName": "Other",
		"lastName":  "Person",
		"username":  "other",
		"email":     "alice@x.com",
		"password":  "secret123",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body %s", w.Code, w.Body.String())
	}
}

func TestLoginFailuresIndistinguishable(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "alice@x.com", "alice")

	wrongPassword := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "alice@x.com",
		"password": "wrong",
	})
	unknownEmail := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "nobody@x.com",
		"password": "secret123",
	})

	if wrongPassword.Code != http.StatusUnauthorized || unknownEmail.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPassword.Code, unknownEmail.Code)
	}
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Fatalf("failure bodies differ: %q vs %q", wrongPassword.Body.String(), unknownEmail.Body.String())
	}
}

func TestMeAcceptsBearerAndCookie(t *testing.T) {
	router := newTestRouter(t)
	auth := registerUser(t, router, "alice@x.com", "alice")

	// Bearer header.
	w := doJSON(t, router, http.MethodGet, "/auth/me", auth.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me with bearer: code %d body %s", w.Code, w.Body.String())
	}
	var resp ProfileResponse
	decodeBody(t, w, &resp)
	if resp.User.Email != "alice@x.com" {
		t.Fatalf("expected own email in /auth/me, got %q", resp.User.Email)
	}
	if resp.User.Followers == nil || resp.User.Following == nil {
		t.Fatalf("expected follower lists to be present")
	}

	// Cookie only.
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: auth.Token})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("me with cookie: code %d", w.Code)
	}
}

func TestMeRejectsBadTokens(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "alice@x.com", "alice")

	// Missing token.
	w := doJSON(t, router, http.MethodGet, "/auth/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", w.Code)
	}

	// Malformed token.
	w = doJSON(t, router, http.MethodGet, "/auth/me", "not-a-jwt", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("malformed token: expected 401, got %d", w.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/auth/logout", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout code %d", w.Code)
	}

	var cleared bool
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "token" && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("expected token cookie to be cleared")
	}
}
