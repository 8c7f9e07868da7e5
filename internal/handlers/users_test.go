package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFollowLifecycle(t *testing.T) {
	router := newTestRouter(t)
	alice := registerUser(t, router, "alice@x.com", "alice")
	bob := registerUser(t, router, "bob@x.com", "bob")

	// Follow.
	w := doJSON(t, router, http.MethodPost, followPath(bob.User.ID), alice.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("follow code %d body %s", w.Code, w.Body.String())
	}

	// Duplicate follow conflicts.
	w = doJSON(t, router, http.MethodPost, followPath(bob.User.ID), alice.Token, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate follow: expected 409, got %d", w.Code)
	}

	// Bob's public profile shows alice as a follower.
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/users/%d", bob.User.ID), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("profile code %d", w.Code)
	}
	var profile ProfileResponse
	decodeBody(t, w, &profile)
	if len(profile.User.Followers) != 1 || profile.User.Followers[0].ID != alice.User.ID {
		t.Fatalf("unexpected followers %+v", profile.User.Followers)
	}
	if profile.User.Email != "" {
		t.Fatalf("public profile must not expose email")
	}

	// Unfollow restores the pre-follow state.
	w = doJSON(t, router, http.MethodDelete, followPath(bob.User.ID), alice.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unfollow code %d body %s", w.Code, w.Body.String())
	}
	w = doJSON(t, router, http.MethodDelete, followPath(bob.User.ID), alice.Token, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unfollow absent edge: expected 400, got %d", w.Code)
	}
}

func TestFollowSelfRejected(t *testing.T) {
	router := newTestRouter(t)
	alice := registerUser(t, router, "alice@x.com", "alice")

	w := doJSON(t, router, http.MethodPost, followPath(alice.User.ID), alice.Token, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("self follow: expected 400, got %d", w.Code)
	}
}

func TestFollowUnknownUser(t *testing.T) {
	router := newTestRouter(t)
	alice := registerUser(t, router, "alice@x.com", "alice")

	w := doJSON(t, router, http.MethodPost, followPath(999), alice.Token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("follow unknown: expected 404, got %d", w.Code)
	}
}

func TestFollowRequiresAuth(t *testing.T) {
	router := newTestRouter(t)
	bob := registerUser(t, router, "bob@x.com", "bob")

	w := doJSON(t, router, http.MethodPost, followPath(bob.User.ID), "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestUpdateProfile(t *testing.T) {
	router := newTestRouter(t)
	alice := registerUser(t, router, "alice@x.com", "alice")
	registerUser(t, router, "bob@x.com", "bob")

	// Taking another user's username conflicts.
	w := doJSON(t, router, http.MethodPut, "/users/me", alice.Token, map[string]string{
		"firstName": "Alice",
		"lastName":  "Smith",
		"username":  "bob",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body %s", w.Code, w.Body.String())
	}

	// Valid update.
	w = doJSON(t, router, http.MethodPut, "/users/me", alice.Token, map[string]string{
		"firstName": "Alicia",
		"lastName":  "Smith",
		"username":  "alice",
		"bio":       "writer",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update code %d body %s", w.Code, w.Body.String())
	}
	var resp ProfileResponse
	decodeBody(t, w, &resp)
	if resp.User.FirstName != "Alicia" {
		t.Fatalf("unexpected first name %q", resp.User.FirstName)
	}
	if resp.User.Bio == nil || *resp.User.Bio != "writer" {
		t.Fatalf("unexpected bio %v", resp.User.Bio)
	}
}

func TestAvatarUploadAndServe(t *testing.T) {
	router := newTestRouter(t)
	alice := registerUser(t, router, "alice@x.com", "alice")

	req := multipartRequest(t, "/users/avatar", alice.Token, "avatar", "me.png", pngBytes, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("avatar upload code %d body %s", w.Code, w.Body.String())
	}

	var resp AvatarResponse
	decodeBody(t, w, &resp)
	if resp.Avatar == nil || !strings.HasPrefix(*resp.Avatar, "/uploads/") {
		t.Fatalf("unexpected avatar path %v", resp.Avatar)
	}

	// The stored reference resolves against this server.
	get := httptest.NewRequest(http.MethodGet, *resp.Avatar, nil)
	got := httptest.NewRecorder()
	router.ServeHTTP(got, get)
	if got.Code != http.StatusOK {
		t.Fatalf("fetch avatar code %d", got.Code)
	}
	if got.Body.Len() != len(pngBytes) {
		t.Fatalf("avatar bytes mismatch: %d != %d", got.Body.Len(), len(pngBytes))
	}
}

func TestAvatarUploadRejectsNonImage(t *testing.T) {
	router := newTestRouter(t)
	alice := registerUser(t, router, "alice@x.com", "alice")

	req := multipartRequest(t, "/users/avatar", alice.Token, "avatar", "notes.txt", []byte("plain text"), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestServeExtensionlessUploadSniffsContentType(t *testing.T) {
	router := newTestRouter(t)
	alice := registerUser(t, router, "alice@x.com", "alice")

	// A filename without an extension yields a bare uuid key.
	req := multipartRequest(t, "/users/avatar", alice.Token, "avatar", "avatar", pngBytes, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("avatar upload code %d body %s", w.Code, w.Body.String())
	}

	var resp AvatarResponse
	decodeBody(t, w, &resp)
	if resp.Avatar == nil || strings.Contains(*resp.Avatar, ".") {
		t.Fatalf("expected extensionless avatar key, got %v", resp.Avatar)
	}

	get := httptest.NewRequest(http.MethodGet, *resp.Avatar, nil)
	got := httptest.NewRecorder()
	router.ServeHTTP(got, get)
	if got.Code != http.StatusOK {
		t.Fatalf("fetch avatar code %d", got.Code)
	}
	if ct := got.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected sniffed image/png content type, got %q", ct)
	}
	if got.Body.Len() != len(pngBytes) {
		t.Fatalf("avatar bytes mismatch: %d != %d", got.Body.Len(), len(pngBytes))
	}
}

func TestGetUnknownUpload(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/uploads/missing.png", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
