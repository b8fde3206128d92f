package pkglog

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// InitLogging installs the process-wide slog default: JSON on stdout with
// "ts"/"severity" keys, source locations trimmed to the repository-relative
// path, and the service name plus any correlation ID attached per record.
func InitLogging(service string) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       slog.LevelInfo,
		AddSource:   true,
		ReplaceAttr: replaceAttr,
	})

	slog.SetDefault(slog.New(&contextHandler{Handler: handler, service: service}))
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "ts"
	case slog.LevelKey:
		a.Key = "severity"
	case slog.SourceKey:
		src, ok := a.Value.Any().(*slog.Source)
		if !ok {
			return a
		}
		// Module prefixes before internal/ are noise in every record.
		idx := strings.Index(src.File, "/internal/")
		if idx < 0 {
			return slog.Attr{}
		}
		return slog.String("file", src.File[idx+1:]+":"+strconv.Itoa(src.Line))
	}

	return a
}

type contextHandler struct {
	slog.Handler
	service string
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if cid := GetCorrelationID(ctx); cid != "" {
		r.AddAttrs(slog.String("_cID", cid))
	}
	r.AddAttrs(slog.String("service", h.service))

	return h.Handler.Handle(ctx, r)
}
