package inbound

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shandysiswandi/gosales/internal/pkg/pkguid"
	"github.com/shandysiswandi/gosales/internal/sales/entity"
	"github.com/shandysiswandi/gosales/internal/sales/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait).
	pingPeriod = 54 * time.Second

	// Maximum frame size allowed from the peer. Frames carry base64 chunk
	// data, so this bounds chunk size at roughly 3MB of raw bytes.
	maxFrameSize = 4 * 1024 * 1024

	sendBufferSize = 32
)

var errClientGone = errors.New("client disconnected before end of input")

type WSEndpoint struct {
	uc       uc
	events   usecase.Notifier
	sessions pkguid.NumberID
	upgrader websocket.Upgrader
}

func NewWSEndpoint(uc uc, events usecase.Notifier, sessions pkguid.NumberID) *WSEndpoint {
	return &WSEndpoint{
		uc:       uc,
		events:   events,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(*http.Request) bool {
				// Origin policy is enforced by the CORS middleware.
				return true
			},
		},
	}
}

// Stream upgrades the connection and runs one aggregation job over it. The
// client sends chunk frames followed by an end frame; the server answers
// with progress, a final summary, and a close frame.
func (e *WSEndpoint) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := e.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.ErrorContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	sess := &session{
		id:         e.sessions.Generate(),
		conn:       conn,
		send:       make(chan serverFrame, sendBufferSize),
		writerDone: make(chan struct{}),
	}
	sess.run(r.Context(), e.uc, e.events)
}

type session struct {
	id         int64
	conn       *websocket.Conn
	send       chan serverFrame
	writerDone chan struct{}
	finishOnce sync.Once
}

func (s *session) run(ctx context.Context, uc uc, events usecase.Notifier) {
	defer s.conn.Close()

	sctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	jobID, err := uc.CreateStreamJob(sctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create stream job", "session_id", s.id, "error", err)
		_ = s.conn.WriteJSON(serverFrame{Type: "error", Error: &ErrorPayload{Message: "could not create job"}})
		return
	}

	slog.InfoContext(ctx, "stream session started", "session_id", s.id, "job_id", jobID)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writePump(sctx)
	}()

	chunks := make(chan entity.ChunkMessage)
	sink := sessionNotifier{session: s, bus: events}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := uc.ProcessStream(sctx, jobID, chunks, sink); err != nil {
			slog.WarnContext(sctx, "stream job failed", "session_id", s.id, "job_id", jobID, "error", err)
		}
		s.finish()
	}()

	if err := s.queue(sctx, serverFrame{Type: "accepted", JobID: jobID}); err != nil {
		slog.WarnContext(sctx, "failed to send accepted frame", "session_id", s.id, "error", err)
	}

	s.readPump(sctx, cancel, chunks)

	wg.Wait()

	slog.InfoContext(ctx, "stream session ended", "session_id", s.id, "job_id", jobID)
}

// readPump owns the connection's read side. It feeds decoded chunks into the
// stream until the end frame, then keeps reading so a disconnect is noticed.
func (s *session) readPump(ctx context.Context, cancel context.CancelCauseFunc, chunks chan<- entity.ChunkMessage) {
	s.conn.SetReadLimit(maxFrameSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ended := false
	defer func() {
		if !ended {
			cancel(errClientGone)
		}
	}()

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if !ended && websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				slog.Warn("websocket read error", "session_id", s.id, "error", err)
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			s.sendError(ctx, "malformed frame")
			continue
		}

		switch frame.Type {
		case "chunk":
			if ended {
				s.sendError(ctx, "input already ended")
				continue
			}

			data, err := base64.StdEncoding.DecodeString(frame.Data)
			if err != nil {
				s.sendError(ctx, "invalid chunk encoding")
				continue
			}

			msg := entity.ChunkMessage{Data: data, TotalFileSizeBytes: frame.TotalFileSizeBytes}
			select {
			case chunks <- msg:
			case <-ctx.Done():
				return
			}
		case "end":
			ended = true
			close(chunks)
		default:
			s.sendError(ctx, fmt.Sprintf("unknown frame type %q", frame.Type))
		}
	}
}

func (s *session) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(s.writerDone)
		_ = s.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case f := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if f.closing {
				_ = s.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteJSON(f); err != nil {
				slog.Warn("websocket write failed", "session_id", s.id, "error", err)
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *session) queue(ctx context.Context, f serverFrame) error {
	select {
	case s.send <- f:
		return nil
	case <-s.writerDone:
		return errors.New("session writer is gone")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *session) sendError(ctx context.Context, message string) {
	if err := s.queue(ctx, serverFrame{Type: "error", Error: &ErrorPayload{Message: message}}); err != nil {
		slog.Warn("failed to send error frame", "session_id", s.id, "error", err)
	}
}

// finish flushes anything still queued and asks the writer to close the
// connection with a normal close frame.
func (s *session) finish() {
	s.finishOnce.Do(func() {
		select {
		case s.send <- serverFrame{closing: true}:
		case <-s.writerDone:
		}
	})
}

// sessionNotifier delivers job messages to the websocket peer and mirrors
// them onto the shared bus so pollers see the same progression. Session
// delivery failing fails the stream; the bus mirror is best effort.
type sessionNotifier struct {
	session *session
	bus     usecase.Notifier
}

func (n sessionNotifier) Publish(ctx context.Context, msg entity.Notification) error {
	if err := n.session.queue(ctx, toServerFrame(msg)); err != nil {
		return fmt.Errorf("deliver to session: %w", err)
	}

	if n.bus != nil {
		if err := n.bus.Publish(ctx, msg); err != nil {
			slog.WarnContext(ctx, "failed to mirror job status", "job_id", msg.JobID, "error", err)
		}
	}

	return nil
}
