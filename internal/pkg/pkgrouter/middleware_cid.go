package pkgrouter

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/shandysiswandi/gosales/internal/pkg/pkglog"
)

// Generator mints unique strings, used here for correlation IDs.
type Generator interface {
	Generate() string
}

const (
	// HeaderCorrelationID is the canonical end-to-end tracking header.
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is accepted as a fallback; some proxies send it instead.
	HeaderRequestID = "X-Request-ID"

	maxCIDLength = 128
)

// sanitizeCID rejects values that would corrupt log lines or response
// headers, and caps the length so a client cannot bloat every record of its
// own request.
func sanitizeCID(v string) string {
	v = strings.TrimSpace(v)
	if strings.ContainsFunc(v, unicode.IsControl) {
		return ""
	}
	if len(v) > maxCIDLength {
		v = v[:maxCIDLength]
	}
	return v
}

// middlewareCorrelationID makes sure every request carries a correlation ID:
// the client's own (sanitized) when present, a freshly minted one otherwise.
// The ID is echoed in the response and stored in the request context for
// pkglog to pick up.
func middlewareCorrelationID(uid Generator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := sanitizeCID(r.Header.Get(HeaderCorrelationID))
			if cid == "" {
				cid = sanitizeCID(r.Header.Get(HeaderRequestID))
			}
			if cid == "" && uid != nil {
				cid = uid.Generate()
			}
			if cid == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set(HeaderCorrelationID, cid)
			next.ServeHTTP(w, r.WithContext(pkglog.SetCorrelationID(r.Context(), cid)))
		})
	}
}
