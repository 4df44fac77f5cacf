package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ecomstack/backend/internal/models"
	"github.com/ecomstack/backend/internal/respond"
)

// FieldName is the multipart field carrying the image.
const FieldName = "product"

// ImagePath is where stored images are served from.
const ImagePath = "/images"

// multipartOverhead is the slack allowed on top of the file limit for
// boundaries, part headers and small form fields.
const multipartOverhead = 64 << 10

// FileStore defines the interface for image storage.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
}

// Handler accepts product image uploads and serves them back.
type Handler struct {
	files    FileStore
	baseURL  string
	maxBytes int64
	log      *slog.Logger
	now      func() time.Time
}

func NewHandler(files FileStore, baseURL string, maxBytes int64, log *slog.Logger) *Handler {
	return &Handler{files: files, baseURL: baseURL, maxBytes: maxBytes, log: log, now: time.Now}
}

// Upload stores the file in the "product" field and returns its public URL.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	limit := h.maxBytes + multipartOverhead
	if r.ContentLength > limit {
		h.tooLarge(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	file, header, err := r.FormFile(FieldName)
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig):
		h.tooLarge(w)
		return
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		respond.Text(w, http.StatusBadRequest, "No file uploaded.")
		return
	case err != nil:
		h.log.Warn("read upload", "err", err)
		respond.Text(w, http.StatusBadRequest, "No file uploaded.")
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		h.tooLarge(w)
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		h.log.Error("read upload", "err", err)
		h.failed(w, http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > h.maxBytes {
		h.tooLarge(w)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	name := h.objectName(header.Filename)
	if err := h.files.Upload(r.Context(), name, data, contentType); err != nil {
		h.log.Error("store upload", "name", name, "err", err)
		h.failed(w, http.StatusInternalServerError)
		return
	}

	h.log.Info("image uploaded", "name", name, "bytes", len(data))
	respond.JSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"image_url": h.baseURL + ImagePath + "/" + name,
	})
}

// Serve streams a stored image.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !plainName(name) {
		http.NotFound(w, r)
		return
	}

	data, contentType, err := h.files.Download(r.Context(), name)
	if errors.Is(err, models.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.log.Error("serve image", "name", name, "err", err)
		http.Error(w, "download failed", http.StatusInternalServerError)
		return
	}

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Write(data)
}

// plainName reports whether name is a single file name with no directory part.
func plainName(name string) bool {
	switch name {
	case "", ".", "..":
		return false
	}
	return name == filepath.Base(name)
}

// objectName is <field>_<unix millis>_<random><ext>.
func (h *Handler) objectName(original string) string {
	return fmt.Sprintf("%s_%d_%s%s", FieldName, h.now().UnixMilli(), uuid.NewString()[:8], filepath.Ext(original))
}

func (h *Handler) tooLarge(w http.ResponseWriter) {
	h.failed(w, http.StatusRequestEntityTooLarge)
}

func (h *Handler) failed(w http.ResponseWriter, status int) {
	respond.JSON(w, status, map[string]any{"success": false, "message": "File upload failed"})
}
