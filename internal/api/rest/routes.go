package rest

import (
	"net/http"
	"strings"
)

// Register mounts the image API under base (e.g. "/api") and the health
// check at /health.
func (h *Handler) Register(mux *http.ServeMux, base string) {
	base = strings.TrimSuffix(base, "/")
	wrap := func(fn http.HandlerFunc) http.HandlerFunc {
		return withTimeout(fn, h.opts.RequestTimeout)
	}

	mux.HandleFunc("GET /health", h.handleHealth)

	mux.HandleFunc("GET "+base+"/images", wrap(h.handleListImages))
	mux.HandleFunc("DELETE "+base+"/images", wrap(h.handleDeleteImages))
	mux.HandleFunc("GET "+base+"/images/{id}", wrap(h.handleGetImage))
	mux.HandleFunc("DELETE "+base+"/images/{id}", wrap(h.handleDeleteImage))

	mux.HandleFunc(base+"/", h.handleNotFound)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusNotFound, "Not Found - "+r.URL.Path)
}
