package pkgrouter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julienschmidt/httprouter"
)

// maxLoggedBody caps how much of a request or response body makes it into a
// log record.
const maxLoggedBody = 64 * 1024

//nolint:gochecknoglobals // lookup table shared by every request
var redactedKeys = map[string]struct{}{
	"authorization": {},
	"cookie":        {},
	"set-cookie":    {},
	"x-api-key":     {},
	"password":      {},
	"access_token":  {},
	"refresh_token": {},
}

func redactHeaders(h http.Header) http.Header {
	out := h.Clone()
	for k := range out {
		if _, hit := redactedKeys[strings.ToLower(k)]; hit {
			out.Set(k, "***")
		}
	}
	return out
}

func redactValues(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if _, hit := redactedKeys[strings.ToLower(k)]; hit {
				out[k] = "***"
				continue
			}
			out[k] = redactValues(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = redactValues(inner)
		}
		return out
	default:
		return v
	}
}

func redactForm(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		if _, hit := redactedKeys[strings.ToLower(k)]; hit {
			out[k] = "***"
			continue
		}
		if len(v) == 1 {
			out[k] = v[0]
		} else {
			out[k] = v
		}
	}
	return out
}

// loggableBody turns a buffered body into something safe to log: parsed and
// redacted for JSON and form payloads, a capped string for other text, a
// placeholder for binary.
func loggableBody(contentType string, raw []byte) any {
	if len(raw) == 0 {
		return nil
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err == nil {
		return redactValues(parsed)
	}

	if strings.HasPrefix(strings.ToLower(contentType), "application/x-www-form-urlencoded") {
		if values, err := url.ParseQuery(string(raw)); err == nil {
			return redactForm(values)
		}
	}

	if !utf8.Valid(raw) {
		return "<binary body omitted>"
	}
	if len(raw) > maxLoggedBody {
		return string(raw[:maxLoggedBody]) + "...(truncated)"
	}
	return string(raw)
}

// bufferableBody reports whether the request body is small and discrete
// enough to buffer for logging. Multipart uploads and unknown-length bodies
// stream through their handlers and must not be consumed here.
func bufferableBody(r *http.Request) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if strings.HasPrefix(ct, "multipart/") {
		return false
	}
	return r.ContentLength >= 0 && r.ContentLength <= maxLoggedBody
}

// routePattern prefers the registered route template (":job_id" and friends)
// over the concrete URL so log lines group by endpoint.
func routePattern(r *http.Request) string {
	if p := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); p != "" {
		return p
	}
	return r.URL.Path
}

// responseTap records what the handler wrote so the response can be logged
// after the fact. It forwards Flush and Hijack; streaming downloads and the
// websocket upgrade both pass through this middleware.
type responseTap struct {
	http.ResponseWriter
	status   int
	written  int
	preview  bytes.Buffer
	overflow bool
	hijacked bool
}

func (t *responseTap) WriteHeader(code int) {
	if t.status == 0 {
		t.status = code
	}
	t.ResponseWriter.WriteHeader(code)
}

func (t *responseTap) Write(p []byte) (int, error) {
	if t.status == 0 {
		t.status = http.StatusOK
	}

	if !t.overflow {
		room := maxLoggedBody - t.preview.Len()
		switch {
		case room >= len(p):
			t.preview.Write(p)
		case room > 0:
			t.preview.Write(p[:room])
			t.overflow = true
		default:
			t.overflow = true
		}
	}

	n, err := t.ResponseWriter.Write(p)
	t.written += n
	return n, err
}

func (t *responseTap) Flush() {
	if f, ok := t.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

//nolint:err113 // one-off condition, no caller matches on it
func (t *responseTap) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := t.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying writer does not support hijacking")
	}

	t.hijacked = true
	return hj.Hijack()
}

func (t *responseTap) statusCode() int {
	if t.status == 0 {
		return http.StatusOK
	}
	return t.status
}

func (t *responseTap) loggable() any {
	raw := t.preview.Bytes()
	if len(raw) == 0 {
		return nil
	}

	var body any
	var parsed any
	switch {
	case json.Unmarshal(raw, &parsed) == nil:
		body = redactValues(parsed)
	case utf8.Valid(raw):
		body = string(raw)
	default:
		body = "<binary body omitted>"
	}

	if t.overflow {
		return map[string]any{"body": body, "truncated": true}
	}
	return body
}

// middlewareLogging writes one record when a request arrives and one when
// its response is done, with bodies buffered only when that cannot disturb
// streaming handlers.
func middlewareLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		route := routePattern(r)

		slog.InfoContext(r.Context(), "request received",
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"headers", redactHeaders(r.Header),
			"body", requestBody(r),
		)

		tap := &responseTap{ResponseWriter: w}
		next.ServeHTTP(tap, r)

		if tap.hijacked {
			slog.InfoContext(r.Context(), "connection hijacked",
				"method", r.Method,
				"route", route,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return
		}

		slog.InfoContext(r.Context(), "response sent",
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"status", tap.statusCode(),
			"bytes", tap.written,
			"latency_ms", time.Since(start).Milliseconds(),
			"body", tap.loggable(),
		)
	})
}

func requestBody(r *http.Request) any {
	if r.Body == nil {
		return nil
	}
	if !bufferableBody(r) {
		if r.ContentLength != 0 {
			return "<streaming body omitted>"
		}
		return nil
	}

	//nolint:errcheck // best effort, logging only
	raw, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(raw))

	return loggableBody(r.Header.Get("Content-Type"), raw)
}
