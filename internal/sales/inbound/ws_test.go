package inbound

import (
	"encoding/base64"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shandysiswandi/gosales/internal/sales/entity"
)

func dialStream(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sales/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial stream: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) serverFrame {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var frame serverFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}

	return frame
}

func chunkFrame(data string, total uint64) clientFrame {
	return clientFrame{
		Type:               "chunk",
		Data:               base64.StdEncoding.EncodeToString([]byte(data)),
		TotalFileSizeBytes: total,
	}
}

func TestStreamSessionCompletesJob(t *testing.T) {
	stack := newTestStack(t)
	srv := httptest.NewServer(stack.router)
	defer srv.Close()

	conn := dialStream(t, srv)

	accepted := readFrame(t, conn)
	if accepted.Type != "accepted" || accepted.JobID == "" {
		t.Fatalf("unexpected first frame: %+v", accepted)
	}

	cut := strings.Index(salesCSV, "Clothing") + 4
	frames := []clientFrame{
		chunkFrame(salesCSV[:cut], uint64(len(salesCSV))),
		chunkFrame(salesCSV[cut:], 0),
		{Type: "end"},
	}
	for _, f := range frames {
		if err := conn.WriteJSON(f); err != nil {
			t.Fatalf("write frame: %v", err)
		}
	}

	var summary *SummaryPayload
	for summary == nil {
		frame := readFrame(t, conn)
		switch frame.Type {
		case "progress":
		case "summary":
			summary = frame.Summary
		default:
			t.Fatalf("unexpected frame: %+v", frame)
		}
	}

	if summary.RowsProcessed != 3 || summary.MalformedRows != 0 {
		t.Fatalf("unexpected summary counters: %+v", summary)
	}
	if summary.TotalSales != 175 || summary.UniqueDepartments != 2 {
		t.Fatalf("unexpected summary aggregate: %+v", summary)
	}
	if summary.ProcessedPercentage != 100 {
		t.Fatalf("unexpected summary percentage: %v", summary.ProcessedPercentage)
	}
	if !strings.HasSuffix(summary.ResultFileName, ".csv") {
		t.Fatalf("unexpected result file: %q", summary.ResultFileName)
	}

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal close, got %v", err)
	}

	status := waitForTerminal(t, stack.router, accepted.JobID)
	if status.Status != entity.JobStatusComplete {
		t.Fatalf("job not complete: %+v", status)
	}
	if status.ResultFileName != summary.ResultFileName {
		t.Fatalf("status and summary disagree: %q vs %q", status.ResultFileName, summary.ResultFileName)
	}
}

func TestStreamSessionAbortOnDisconnect(t *testing.T) {
	stack := newTestStack(t)
	srv := httptest.NewServer(stack.router)
	defer srv.Close()

	conn := dialStream(t, srv)

	accepted := readFrame(t, conn)
	if accepted.Type != "accepted" || accepted.JobID == "" {
		t.Fatalf("unexpected first frame: %+v", accepted)
	}

	if err := conn.WriteJSON(chunkFrame(salesCSV, uint64(len(salesCSV))*10)); err != nil {
		t.Fatalf("write chunk: %v", err)
	}

	// Drop the connection without an end frame or a close handshake.
	_ = conn.Close()

	status := waitForTerminal(t, stack.router, accepted.JobID)
	if status.Status != entity.JobStatusFailed {
		t.Fatalf("expected failed job, got %+v", status)
	}
	if !strings.Contains(status.Error, "disconnected") {
		t.Fatalf("unexpected job error: %q", status.Error)
	}
	if status.ResultFileName != "" {
		t.Fatalf("aborted job has an artifact: %+v", status)
	}
}

func TestStreamSessionRejectsChunkAfterEnd(t *testing.T) {
	stack := newTestStack(t)
	srv := httptest.NewServer(stack.router)
	defer srv.Close()

	conn := dialStream(t, srv)

	accepted := readFrame(t, conn)
	if accepted.Type != "accepted" {
		t.Fatalf("unexpected first frame: %+v", accepted)
	}

	frames := []clientFrame{
		chunkFrame(salesCSV, uint64(len(salesCSV))),
		{Type: "end"},
		chunkFrame("Electronics,2024-01-03,999\n", 0),
	}
	for _, f := range frames {
		if err := conn.WriteJSON(f); err != nil {
			t.Fatalf("write frame: %v", err)
		}
	}

	var summary *SummaryPayload
	for summary == nil {
		frame := readFrame(t, conn)
		switch frame.Type {
		case "progress", "error":
		case "summary":
			summary = frame.Summary
		default:
			t.Fatalf("unexpected frame: %+v", frame)
		}
	}

	// The late chunk must not have been aggregated.
	if summary.TotalSales != 175 || summary.RowsProcessed != 3 {
		t.Fatalf("late chunk corrupted the job: %+v", summary)
	}

	status := waitForTerminal(t, stack.router, accepted.JobID)
	if status.Status != entity.JobStatusComplete || status.TotalSales != 175 {
		t.Fatalf("unexpected final status: %+v", status)
	}
}

func TestStreamSessionReportsUnknownFrames(t *testing.T) {
	stack := newTestStack(t)
	srv := httptest.NewServer(stack.router)
	defer srv.Close()

	conn := dialStream(t, srv)

	if frame := readFrame(t, conn); frame.Type != "accepted" {
		t.Fatalf("unexpected first frame: %+v", frame)
	}

	if err := conn.WriteJSON(clientFrame{Type: "bogus"}); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	frame := readFrame(t, conn)
	if frame.Type != "error" || frame.Error == nil {
		t.Fatalf("expected error frame, got %+v", frame)
	}
	if !strings.Contains(frame.Error.Message, "bogus") {
		t.Fatalf("unexpected error message: %q", frame.Error.Message)
	}

	// The session survives a bad frame.
	for _, f := range []clientFrame{chunkFrame(salesCSV, uint64(len(salesCSV))), {Type: "end"}} {
		if err := conn.WriteJSON(f); err != nil {
			t.Fatalf("write frame: %v", err)
		}
	}

	for {
		frame := readFrame(t, conn)
		if frame.Type == "summary" {
			break
		}
	}
}
