package web

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"statement-agent/internal/core"
	"statement-agent/internal/session"
)

// attachmentTTL is how long an uploaded chat image stays on disk before
// the cleanup goroutine removes it.
const attachmentTTL = 15 * time.Minute

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

type chatRequest struct {
	Text          string   `json:"text"`
	AttachmentIDs []string `json:"attachment_ids"`
}

// chat runs one protocol turn: free text plus any previously uploaded
// image attachments. Overlapping turns on the same session are rejected.
func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Text == "" && len(req.AttachmentIDs) == 0 {
		writeError(w, r, "empty message", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	images := make([]core.Image, 0, len(req.AttachmentIDs))
	for _, id := range req.AttachmentIDs {
		img, err := h.loadAttachment(id)
		if err != nil {
			writeError(w, r, "unknown attachment: "+id, "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		images = append(images, img)
	}

	result, err := h.svc.Chat(r.Context(), chi.URLParam(r, "sessionID"), req.Text, images)
	if err != nil {
		if errors.Is(err, session.ErrBusy) {
			writeError(w, r, err.Error(), "CONFLICT", http.StatusConflict)
			return
		}
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// uploadAttachment stores a chat image on disk and returns its id. The
// file is deleted after attachmentTTL whether or not it was used.
func (h *Handler) uploadAttachment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFileSize); err != nil {
		writeError(w, r, "invalid multipart request", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, "missing file field", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > maxFileSize {
		writeError(w, r, "file too large", "PAYLOAD_TOO_LARGE", http.StatusRequestEntityTooLarge)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, "could not read upload", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	mimeType := http.DetectContentType(data)
	if !allowedImageTypes[mimeType] {
		writeError(w, r, "unsupported image type: "+mimeType, "UNSUPPORTED_MEDIA", http.StatusUnsupportedMediaType)
		return
	}

	id := uuid.NewString()
	path := filepath.Join(h.uploadDir, id)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		writeError(w, r, "could not store upload", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	time.AfterFunc(attachmentTTL, func() {
		os.Remove(path)
	})

	writeJSON(w, map[string]string{"attachment_id": id})
}

func (h *Handler) loadAttachment(id string) (core.Image, error) {
	if _, err := uuid.Parse(id); err != nil {
		return core.Image{}, err
	}
	data, err := os.ReadFile(filepath.Join(h.uploadDir, id))
	if err != nil {
		return core.Image{}, err
	}
	return core.Image{MimeType: http.DetectContentType(data), Data: data}, nil
}
