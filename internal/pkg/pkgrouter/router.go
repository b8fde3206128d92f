package pkgrouter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/gosales/internal/pkg/pkgerror"
)

// Handler is the endpoint signature modules register with the router: return
// a payload to be wrapped in the JSON envelope, or an error to be mapped to
// an HTTP status.
type Handler func(ctx context.Context, r *http.Request) (any, error)

// Responses can shape their envelope by implementing any of these.
type (
	statusCoder interface{ StatusCode() int }
	messenger   interface{ Message() string }
	metaCarrier interface{ Meta() map[string]any }
)

// Router dispatches requests through httprouter with a shared middleware
// stack and a uniform JSON envelope for results and errors.
type Router struct {
	hr  *httprouter.Router
	mws []Middleware
}

// NewRouter builds the application router. The uid generator mints
// correlation IDs for requests that arrive without one.
func NewRouter(uid Generator) *Router {
	hr := &httprouter.Router{
		RedirectTrailingSlash:  true,
		RedirectFixedPath:      true,
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
		SaveMatchedRoutePath:   true,
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Message: "route not found"}, http.StatusNotFound)
		}),
		MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Message: "method not allowed"}, http.StatusMethodNotAllowed)
		}),
	}

	ro := &Router{
		hr: hr,
		mws: []Middleware{
			middlewareRecoverer,
			middlewareCorrelationID(uid),
			middlewareLogging,
		},
	}

	ro.Handle(http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"message": "gosales up"}, http.StatusOK)
	}))
	ro.Handle(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"message": "healthy"}, http.StatusOK)
	}))

	return ro
}

// Use appends middleware applied to every route registered afterwards.
func (r *Router) Use(mws ...Middleware) {
	r.mws = append(r.mws, mws...)
}

// GET registers a GET endpoint with the enveloped Handler signature.
func (r *Router) GET(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodGet, path, h, mws...)
}

// POST registers a POST endpoint with the enveloped Handler signature.
func (r *Router) POST(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPost, path, h, mws...)
}

// PUT registers a PUT endpoint with the enveloped Handler signature.
func (r *Router) PUT(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPut, path, h, mws...)
}

// PATCH registers a PATCH endpoint with the enveloped Handler signature.
func (r *Router) PATCH(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPatch, path, h, mws...)
}

// DELETE registers a DELETE endpoint with the enveloped Handler signature.
func (r *Router) DELETE(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodDelete, path, h, mws...)
}

// Handle registers a raw http.Handler, bypassing the JSON envelope. Routes
// that stream bodies or upgrade the connection use this.
func (r *Router) Handle(method, path string, h http.Handler, mws ...Middleware) {
	r.hr.Handler(method, path, Chain(h, append(r.mws, mws...)...))
}

func (r *Router) endpoint(method, path string, h Handler, mws ...Middleware) {
	fn := func(w http.ResponseWriter, req *http.Request) {
		resp, err := h(req.Context(), req)
		if err != nil {
			respondError(w, err)
			return
		}
		respond(w, resp)
	}

	r.hr.Handler(method, path, Chain(http.HandlerFunc(fn), append(r.mws, mws...)...))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}

type successResponse struct {
	Message string         `json:"message"`
	Data    any            `json:"data"`
	Meta    map[string]any `json:"meta,omitempty"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func respond(w http.ResponseWriter, resp any) {
	code := http.StatusOK
	if sc, ok := resp.(statusCoder); ok {
		code = sc.StatusCode()
	}

	if resp == nil || code == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	body := successResponse{Message: "request processed", Data: resp}
	if m, ok := resp.(messenger); ok {
		body.Message = m.Message()
	}
	if m, ok := resp.(metaCarrier); ok {
		body.Meta = m.Meta()
	}

	writeJSON(w, body, code)
}

func respondError(w http.ResponseWriter, err error) {
	var appErr *pkgerror.Error
	if !errors.As(err, &appErr) {
		writeJSON(w, errorResponse{Message: "internal server error"}, http.StatusInternalServerError)
		return
	}

	writeJSON(w, errorResponse{Message: appErr.Msg()}, appErr.StatusCode())
}

func writeJSON(w http.ResponseWriter, body any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are out; all that is left is recording the failure.
		slog.Error("failed to encode response body", "error", err)
	}
}
