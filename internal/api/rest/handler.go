package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/schema"

	"github.com/syntrixbase/wallpaper/internal/ctxkeys"
	"github.com/syntrixbase/wallpaper/internal/query"
	"github.com/syntrixbase/wallpaper/internal/storage/types"
	"github.com/syntrixbase/wallpaper/pkg/model"
)

// Default request timeout
const DefaultRequestTimeout = 30 * time.Second

// Options tunes a Handler.
type Options struct {
	// ExposeErrors adds the stack trace to 500 responses. Never enable in production.
	ExposeErrors bool

	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// Handler serves the image API.
type Handler struct {
	images  types.ImageStore
	engine  *query.Engine
	decoder *schema.Decoder
	opts    Options
	logger  *slog.Logger
}

// NewHandler creates a Handler. images and engine must not be nil.
func NewHandler(images types.ImageStore, engine *query.Engine, opts Options) *Handler {
	if images == nil {
		panic("image store cannot be nil")
	}
	if engine == nil {
		panic("query engine cannot be nil")
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(false)

	return &Handler{
		images:  images,
		engine:  engine,
		decoder: decoder,
		opts:    opts,
		logger:  logger.With("component", "rest"),
	}
}

// MessageResponse is the body of plain acknowledgements and 404s.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of 500 responses.
type ErrorResponse struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// ValidationResponse is the body of 422 responses.
type ValidationResponse struct {
	Name   string        `json:"name"`
	Issues []model.Issue `json:"issues"`
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("Failed to encode JSON response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Message: message})
}

func writeValidation(w http.ResponseWriter, verr *model.ValidationError) {
	writeJSON(w, http.StatusUnprocessableEntity, ValidationResponse{
		Name:   verr.Name(),
		Issues: verr.Issues,
	})
}

// writeError maps err onto a response: validation issues and queries the
// database rejects become 422, missing documents 404, and everything else 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidation(w, verr)
	case errors.Is(err, model.ErrInvalidQuery):
		verr = &model.ValidationError{}
		verr.Add(model.IssueInvalidValue, model.Path{}, "%v", err)
		writeValidation(w, verr)
	case errors.Is(err, model.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Not Found")
	case errors.Is(err, model.ErrCanceled):
		h.logger.Warn("Request canceled", "method", r.Method, "path", r.URL.Path,
			"request_id", ctxkeys.RequestID(r.Context()), "error", err)
		writeMessage(w, 499, "Request canceled")
	default:
		h.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path,
			"request_id", ctxkeys.RequestID(r.Context()), "error", err)
		resp := ErrorResponse{Message: err.Error()}
		if h.opts.ExposeErrors {
			resp.Stack = string(debug.Stack())
		}
		writeJSON(w, http.StatusInternalServerError, resp)
	}
}

// withTimeout wraps a handler with a context timeout
func withTimeout(next http.HandlerFunc, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}
