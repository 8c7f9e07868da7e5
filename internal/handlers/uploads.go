package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/inkwell-press/apiserver/internal/services"
	"github.com/inkwell-press/apiserver/internal/storage"
)

// UploadHandler serves stored avatars and thumbnails so that the
// "/uploads/<key>" references on entities resolve against this server.
type UploadHandler struct {
	uploads *services.UploadService
}

// UploadRouter registers the upload-serving route on the given router.
func UploadRouter(r chi.Router, uploads *services.UploadService) {
	handler := &UploadHandler{uploads: uploads}

	r.Get("/{key}", handler.GetUpload)
}

// GetUpload streams a stored object by its key.
func (h *UploadHandler) GetUpload(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	reader, err := h.uploads.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
		writeInternalError(w, "failed to open upload", err)
		return
	}
	defer reader.Close()

	// Extensionless keys fall back to sniffing the leading bytes, the
	// same way the upload path classified them.
	head := make([]byte, 512)
	n, err := io.ReadFull(reader, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		writeInternalError(w, "failed to read upload", err)
		return
	}
	head = head[:n]

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = http.DetectContentType(head)
	}
	w.Header().Set("Content-Type", contentType)

	if _, err := w.Write(head); err != nil {
		return
	}
	if _, err := io.Copy(w, reader); err != nil {
		// Response already started; nothing useful to send.
		return
	}
}
