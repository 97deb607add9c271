package handlers

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/camptrades/apiserver/internal/storage"
)

const (
	maxImageBytes      = 8 << 20
	imageFormField     = "file"
	defaultContentType = "application/octet-stream"
)

// ImageHandler stores and serves listing images through the
// configured object storage backend.
type ImageHandler struct {
	storage *storage.Storage
}

func NewImageHandler(store *storage.Storage) *ImageHandler {
	return &ImageHandler{storage: store}
}

// Upload accepts a multipart image and returns the path it is served
// from.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(imageFormField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		writeError(w, http.StatusBadRequest, "image too large")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}

	key := uuid.NewString() + strings.ToLower(path.Ext(header.Filename))
	if err := h.storage.Put(r.Context(), key, file, header.Size, contentType); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"image": "/images/" + key})
}

// Serve streams a stored image back to the client.
func (h *ImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" || strings.Contains(key, "/") {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}

	object, err := h.storage.Get(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	defer object.Close()

	if _, err := io.Copy(w, object); err != nil && !errors.Is(err, io.EOF) {
		// Headers are already written; nothing useful left to send.
		return
	}
}
