package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/inkwell-press/apiserver/config"
	"github.com/inkwell-press/apiserver/internal/services"
	"github.com/inkwell-press/apiserver/internal/storage"
	"github.com/inkwell-press/apiserver/internal/store/storetest"
)

const testSecret = "test-secret"

// pngBytes is a minimal payload http.DetectContentType reports as image/png.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	st := storetest.New()
	local, err := storage.NewLocalClient(config.LocalStorageConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}
	uploadStorage := storage.NewStorage(local)
	if err := uploadStorage.EnsureBucket(context.Background()); err != nil {
		t.Fatalf("ensure bucket: %v", err)
	}

	users := services.NewUserService(st.Users())
	social := services.NewSocialService(st.Users(), st.Follows())
	posts := services.NewPostService(st.Posts())
	comments := services.NewCommentService(st.Comments(), st.Posts())
	uploads := services.NewUploadService(uploadStorage)

	auth := RequireAuth(testSecret)

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, users, social, uploads, testSecret, false)
	})
	router.Route("/users", func(r chi.Router) {
		UserRouter(r, users, social, uploads, auth)
	})
	router.Route("/posts", func(r chi.Router) {
		PostRouter(r, posts, comments, uploads, auth)
	})
	router.Route("/comments", func(r chi.Router) {
		CommentRouter(r, comments, auth)
	})
	router.Route("/uploads", func(r chi.Router) {
		UploadRouter(r, uploads)
	})
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, value any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(value); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func registerUser(t *testing.T, router http.Handler, email, username string) AuthResponse {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"firstName": "Test",
		"lastName":  "User",
		"username":  username,
		"email":     email,
		"password":  "secret123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: code %d body %s", email, w.Code, w.Body.String())
	}

	var resp AuthResponse
	decodeBody(t, w, &resp)
	return resp
}

func multipartRequest(t *testing.T, path, token, fileField, filename string, fileData []byte, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(fileData); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func followPath(userID int) string {
	return fmt.Sprintf("/users/%d/follow", userID)
}
