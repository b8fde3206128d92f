package pkgrouter

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSanitizeCID(t *testing.T) {
	t.Parallel()

	if got := sanitizeCID("  abc  "); got != "abc" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := sanitizeCID("evil\r\nheader"); got != "" {
		t.Fatalf("expected control characters rejected, got %q", got)
	}
	if got := sanitizeCID(strings.Repeat("a", 300)); len(got) != maxCIDLength {
		t.Fatalf("expected length capped at %d, got %d", maxCIDLength, len(got))
	}
}

func TestRedactHeaders(t *testing.T) {
	t.Parallel()

	headers := http.Header{}
	headers.Set("Authorization", "secret")
	headers.Set("X-Trace", "ok")

	out := redactHeaders(headers)
	if got := out.Get("Authorization"); got != "***" {
		t.Fatalf("expected authorization redacted, got %q", got)
	}
	if got := out.Get("X-Trace"); got != "ok" {
		t.Fatalf("expected X-Trace untouched, got %q", got)
	}
	if got := headers.Get("Authorization"); got != "secret" {
		t.Fatalf("expected original headers unchanged, got %q", got)
	}
}

func TestRedactValuesNested(t *testing.T) {
	t.Parallel()

	input := map[string]any{
		"password": "secret",
		"profile": map[string]any{
			"access_token": "token",
		},
		"items": []any{
			map[string]any{"refresh_token": "rt"},
		},
	}

	out := redactValues(input).(map[string]any)
	if out["password"] != "***" {
		t.Fatalf("expected password redacted")
	}
	if out["profile"].(map[string]any)["access_token"] != "***" {
		t.Fatalf("expected nested access_token redacted")
	}
	if out["items"].([]any)[0].(map[string]any)["refresh_token"] != "***" {
		t.Fatalf("expected refresh_token inside slice redacted")
	}
}

func TestLoggableBodyJSON(t *testing.T) {
	t.Parallel()

	got := loggableBody("application/json", []byte(`{"password":"secret","name":"bob"}`))

	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", got)
	}
	if m["password"] != "***" {
		t.Fatalf("expected password redacted")
	}
	if m["name"] != "bob" {
		t.Fatalf("expected name kept")
	}
}

func TestLoggableBodyForm(t *testing.T) {
	t.Parallel()

	got := loggableBody("application/x-www-form-urlencoded", []byte("password=secret&name=bob"))

	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", got)
	}
	if m["password"] != "***" {
		t.Fatalf("expected password redacted")
	}
	if m["name"] != "bob" {
		t.Fatalf("expected name kept")
	}
}

func TestLoggableBodyBinary(t *testing.T) {
	t.Parallel()

	if got := loggableBody("text/plain", []byte{0xff, 0xfe, 0xfd}); got != "<binary body omitted>" {
		t.Fatalf("expected binary placeholder, got %v", got)
	}
}

func TestBufferableBody(t *testing.T) {
	t.Parallel()

	small := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("ok"))
	if !bufferableBody(small) {
		t.Fatalf("expected small body bufferable")
	}

	multipart := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("ok"))
	multipart.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	if bufferableBody(multipart) {
		t.Fatalf("expected multipart body skipped")
	}

	chunked := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("ok"))
	chunked.ContentLength = -1
	if bufferableBody(chunked) {
		t.Fatalf("expected unknown-length body skipped")
	}

	big := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("ok"))
	big.ContentLength = maxLoggedBody + 1
	if bufferableBody(big) {
		t.Fatalf("expected oversized body skipped")
	}
}

func TestModuleFrames(t *testing.T) {
	t.Parallel()

	stack := strings.Join([]string{
		"goroutine 12 [running]:",
		"runtime/debug.Stack()",
		"\t/usr/lib/go/src/runtime/debug/stack.go:26 +0x5e",
		"github.com/shandysiswandi/gosales/internal/sales/inbound.handler(...)",
		"\t/home/ci/gosales/internal/sales/inbound/http.go:42 +0x1a",
	}, "\n")

	frames := moduleFrames([]byte(stack))
	if len(frames) != 1 {
		t.Fatalf("expected one in-module frame, got %#v", frames)
	}
	if frames[0] != "internal/sales/inbound/http.go:42" {
		t.Fatalf("unexpected frame %q", frames[0])
	}
}
