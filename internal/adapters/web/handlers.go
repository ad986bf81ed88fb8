package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"statement-agent/internal/app"
)

const (
	jsonBodyLimit  = 1 << 20  // 1MB for JSON endpoints
	uploadLimit    = 64 << 20 // 64MB for multipart uploads
	maxUploadFiles = 5
	maxFileSize    = 10 << 20
)

// Handler serves the HTTP API. All business logic lives behind the
// application service; handlers only translate HTTP to service calls.
type Handler struct {
	svc       app.ApplicationService
	uploadDir string
}

// NewHandler builds the chi router with the full middleware chain.
func NewHandler(svc app.ApplicationService, allowedOrigins, uploadDir string) http.Handler {
	h := &Handler{svc: svc, uploadDir: uploadDir}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})

	// Upload endpoints carry multipart bodies and get their own limit.
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(uploadLimit))
		r.Post("/api/statements", h.processStatement)
		r.Post("/api/sessions/{sessionID}/attachments", h.uploadAttachment)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(jsonBodyLimit))
		r.Get("/api/statements/{statementID}", h.getStatement)
		r.Post("/api/statements/{statementID}/restructure", h.restructure)
		r.Get("/api/sessions/{sessionID}", h.getSession)
		r.Post("/api/sessions/{sessionID}/transactions/{index}", h.updateTransaction)
		r.Post("/api/sessions/{sessionID}/transactions", h.addTransaction)
		r.Post("/api/sessions/{sessionID}/undo", h.undo)
		r.Post("/api/sessions/{sessionID}/chat", h.chat)
		r.Get("/api/sessions/{sessionID}/export", h.export)
	})

	return r
}
