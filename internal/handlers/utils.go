package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/inkwell-press/apiserver/internal/logger"
	"github.com/inkwell-press/apiserver/internal/services"
)

type contextKey string

const contextSubjectKey contextKey = "sub"

const maxMultipartMemory = 32 << 20

func userIDFromContext(ctx context.Context) (int, error) {
	value := ctx.Value(contextSubjectKey)
	switch subject := value.(type) {
	case int:
		if subject < 1 {
			return 0, errors.New("invalid subject")
		}
		return subject, nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(subject))
		if err != nil || parsed < 1 {
			return 0, errors.New("invalid subject")
		}
		return parsed, nil
	default:
		return 0, errors.New("missing subject")
	}
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}

// writeInternalError logs the cause server-side and returns an opaque
// 500 to the caller.
func writeInternalError(w http.ResponseWriter, op string, err error) {
	logger.Log.WithError(err).Error(op)
	writeError(w, http.StatusInternalServerError, "Server error")
}

// ErrorResponse is the error payload; the field name is part of the
// external contract.
type ErrorResponse struct {
	Message string `json:"message"`
}

// MessageResponse is the payload for confirmation-only responses.
type MessageResponse struct {
	Message string `json:"message"`
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// formFile reads a single optional file field from a parsed multipart
// form. A missing field returns ok == false with no error.
func formFile(form *multipart.Form, field string) (filename string, data []byte, ok bool, err error) {
	if form == nil {
		return "", nil, false, nil
	}
	files := form.File[field]
	if len(files) == 0 {
		return "", nil, false, nil
	}
	if len(files) > 1 {
		return "", nil, false, errors.New("only one file is allowed")
	}

	fileHeader := files[0]
	file, err := fileHeader.Open()
	if err != nil {
		return "", nil, false, err
	}

	data, err = readFileLimited(file, services.MaxUploadBytes)
	_ = file.Close()
	if err != nil {
		return "", nil, false, err
	}
	return fileHeader.Filename, data, true, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
