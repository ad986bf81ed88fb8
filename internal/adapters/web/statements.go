package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"statement-agent/internal/app"
	"statement-agent/internal/db"
	"statement-agent/internal/extract"
)

// processStatement accepts a multipart upload of statement files and runs
// the full extraction pipeline, returning the new session and its ledger.
func (h *Handler) processStatement(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(uploadLimit); err != nil {
		writeError(w, r, "invalid multipart request", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	parts := r.MultipartForm.File["files"]
	if len(parts) == 0 {
		writeError(w, r, "no files uploaded", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if len(parts) > maxUploadFiles {
		writeError(w, r, "too many files", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	files := make([]app.UploadedFile, 0, len(parts))
	for _, part := range parts {
		if part.Size > maxFileSize {
			writeError(w, r, "file too large: "+part.Filename, "PAYLOAD_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return
		}
		f, err := part.Open()
		if err != nil {
			writeError(w, r, "could not read upload", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, r, "could not read upload", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		files = append(files, app.UploadedFile{
			Name:      part.Filename,
			MediaType: part.Header.Get("Content-Type"),
			Data:      data,
		})
	}

	result, err := h.svc.ProcessStatement(r.Context(), files)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// getStatement returns a persisted statement's raw text and file names.
func (h *Handler) getStatement(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.GetStatement(r.Context(), chi.URLParam(r, "statementID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, st)
}

// restructure re-runs AI structuring over a persisted statement's raw
// text, producing a fresh session without re-extracting the files.
func (h *Handler) restructure(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Restructure(r.Context(), chi.URLParam(r, "statementID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// writeServiceError maps application errors onto HTTP status and error
// codes. Unknown errors become 502 AI_ERROR when the AI pipeline failed,
// otherwise 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var unsupported *extract.ErrUnsupported
	switch {
	case errors.As(err, &unsupported):
		writeError(w, r, err.Error(), "UNSUPPORTED_MEDIA", http.StatusUnsupportedMediaType)
	case errors.Is(err, app.ErrSessionNotFound), errors.Is(err, db.ErrStatementNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, app.ErrPersistenceDisabled):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, app.ErrExtraction):
		writeError(w, r, err.Error(), "EXTRACT_ERROR", http.StatusUnprocessableEntity)
	case errors.Is(err, app.ErrAI):
		writeError(w, r, err.Error(), "AI_ERROR", http.StatusBadGateway)
	default:
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
