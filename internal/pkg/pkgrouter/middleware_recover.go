package pkgrouter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
)

// middlewareRecoverer turns a handler panic into a 500 response and a log
// record instead of a dead connection. http.ErrAbortHandler is re-raised
// untouched; that is net/http's own way of dropping a connection.
func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			//nolint:errorlint // sentinel is panicked as-is, compare directly
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			slog.ErrorContext(r.Context(), "handler panicked",
				"panic", rvr,
				"stack", moduleFrames(debug.Stack()),
			)

			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			if r.Header.Get("Connection") != "Upgrade" {
				w.WriteHeader(http.StatusInternalServerError)
			}

			//nolint:errcheck // the connection may already be gone
			json.NewEncoder(w).Encode(errorResponse{Message: "internal server error"})
		}()

		next.ServeHTTP(w, r)
	})
}

// moduleFrames trims a debug stack to the file:line frames inside this
// module so the log record stays one screen wide.
func moduleFrames(stack []byte) []string {
	var frames []string

	for _, line := range strings.Split(string(stack), "\n") {
		line = strings.TrimSpace(line)
		idx := strings.Index(line, "/internal/")
		if idx < 0 || !strings.Contains(line, ".go:") {
			continue
		}

		frame := line[idx+1:]
		if cut := strings.IndexByte(frame, ' '); cut >= 0 {
			frame = frame[:cut]
		}
		frames = append(frames, frame)
	}

	return frames
}
