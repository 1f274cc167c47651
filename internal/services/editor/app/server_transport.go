package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	apperrors "github.com/louisbranch/warband-face/internal/platform/errors"
	"github.com/louisbranch/warband-face/internal/platform/otel"
	"github.com/louisbranch/warband-face/internal/platform/telemetry/metrics"
	"github.com/louisbranch/warband-face/internal/platform/timeouts"
	"github.com/louisbranch/warband-face/internal/services/editor/syncengine"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/net/websocket"
)

const (
	maxFramePayloadBytes   = 4 * 1024
	maxFramesPerSecond     = 60
	maxDecodeErrorsPerConn = 3
)

// Inbound operations.
const (
	opSetField = "set_field"
	opImport   = "import"
	opPing     = "ping"
)

// Outbound frame types beyond the engine's notification kinds.
const (
	frameSession = "session"
	framePong    = "pong"
)

// Error kinds that only the transport produces.
const (
	kindInvalidFrame = "INVALID_FRAME"
	kindRateLimited  = "RATE_LIMITED"
)

var tracer = otel.Tracer("editor/transport")

type inboundFrame struct {
	Op    string `json:"op"`
	Field string `json:"field,omitempty"`
	Value *int   `json:"value,omitempty"`
	Code  string `json:"code,omitempty"`
}

type visualUpdateFrame struct {
	Type  string `json:"type"`
	Field string `json:"field"`
	Value int    `json:"value"`
}

type codeUpdateFrame struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Kind    string `json:"kind"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type sessionFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Code      string `json:"code"`
	Layout    string `json:"layout"`
}

type pongFrame struct {
	Type string `json:"type"`
}

// wsPeer writes frames to one connection under a write deadline.
type wsPeer struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	logger *zap.Logger
}

func (p *wsPeer) writeFrame(frame any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(timeouts.FrameWrite))
	if err := websocket.JSON.Send(p.conn, frame); err != nil {
		p.logger.Debug("write frame", zap.Error(err))
		return err
	}
	return nil
}

func newErrorFrame(kind string, field string, message string) errorFrame {
	return errorFrame{
		Type:    string(syncengine.KindError),
		Kind:    kind,
		Field:   field,
		Message: message,
	}
}

// peerSink queues engine notifications as frames. The engine calls it under
// its lock, so it must never wait on the connection.
type peerSink struct {
	out     *outbox
	metrics *metrics.Editor
}

func (s peerSink) Notify(n syncengine.Notification) {
	switch n.Kind {
	case syncengine.KindVisualUpdate:
		s.out.send(visualUpdateFrame{Type: string(n.Kind), Field: n.Field, Value: n.Value})
	case syncengine.KindCodeUpdate:
		s.metrics.CodeUpdate()
		s.out.send(codeUpdateFrame{Type: string(n.Kind), Code: n.Code.String()})
	case syncengine.KindError:
		message := ""
		if n.Err != nil {
			message = n.Err.Error()
		}
		s.out.send(newErrorFrame(string(n.ErrorCode), n.Field, message))
	}
}

func (h *handler) handleFaceUpdates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r, ok := h.authenticate(r)
	if !ok {
		h.metrics.SessionRejected("unauthenticated")
		http.Error(w, ErrUnauthenticated.Error(), http.StatusUnauthorized)
		return
	}
	websocket.Handler(h.serveConn).ServeHTTP(w, r)
}

func (h *handler) serveConn(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()
	conn.MaxPayloadBytes = maxFramePayloadBytes

	ctx := context.Background()
	if req := conn.Request(); req != nil {
		ctx = req.Context()
	}
	peer := &wsPeer{conn: conn, logger: h.logger}
	logger := h.logger.With(zap.String("subject", subjectFromContext(ctx)))
	out := newOutbox(outboxCapacity, peer.writeFrame, func(reason string) {
		logger.Info("dropping connection", zap.String("reason", reason))
		_ = conn.Close()
	})

	sessionID, engine, err := h.hub.Open(peerSink{out: out, metrics: h.metrics})
	if err != nil {
		reason := "closed"
		if errors.Is(err, syncengine.ErrHubFull) {
			reason = "capacity"
		}
		h.metrics.SessionRejected(reason)
		h.logger.Warn("session refused", zap.String("reason", reason), zap.Error(err))
		_ = peer.writeFrame(newErrorFrame(kindUnavailable, "", err.Error()))
		return
	}
	logger = logger.With(zap.String("session_id", sessionID))
	out.start()
	defer out.close()

	h.metrics.SessionOpened()
	logger.Info("session opened")
	defer func() {
		h.hub.Close(sessionID)
		h.metrics.SessionClosed()
		logger.Info("session closed")
	}()

	_, code, err := engine.Snapshot()
	if err != nil {
		logger.Error("session snapshot", zap.Error(err))
		return
	}
	out.send(sessionFrame{
		Type:      frameSession,
		SessionID: sessionID,
		Code:      code.String(),
		Layout:    h.codec.Layout().Version(),
	})

	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var frame inboundFrame
		if err := websocket.JSON.Receive(conn, &frame); err != nil {
			if !isFrameDecodeError(err) {
				return
			}
			decodeErrors++
			out.send(newErrorFrame(kindInvalidFrame, "", "invalid frame payload"))
			if decodeErrors >= maxDecodeErrorsPerConn {
				logger.Info("closing session after repeated invalid frames")
				return
			}
			continue
		}
		decodeErrors = 0

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			out.send(newErrorFrame(kindRateLimited, "", "rate limit exceeded"))
			logger.Info("closing rate limited session")
			return
		}

		switch frame.Op {
		case opSetField:
			h.handleSetField(ctx, sessionID, engine, out, frame)
		case opImport:
			h.handleImport(ctx, sessionID, engine, frame)
		case opPing:
			out.send(pongFrame{Type: framePong})
		default:
			out.send(newErrorFrame(kindInvalidFrame, "", "unsupported op"))
		}
	}
}

func (h *handler) handleSetField(ctx context.Context, sessionID string, engine *syncengine.Engine, out *outbox, frame inboundFrame) {
	if frame.Field == "" || frame.Value == nil {
		out.send(newErrorFrame(kindInvalidFrame, frame.Field, "set_field requires field and value"))
		return
	}
	_, span := tracer.Start(ctx, "editor.set_field")
	defer span.End()
	span.SetAttributes(
		attribute.String("editor.session_id", sessionID),
		attribute.String("editor.field", frame.Field),
		attribute.Int("editor.value", *frame.Value),
	)

	// The engine reports its own errors to the sink.
	err := engine.ApplyEdit(frame.Field, *frame.Value)
	h.metrics.Edit(resultLabel(err))
	recordSpanError(span, err)
}

func (h *handler) handleImport(ctx context.Context, sessionID string, engine *syncengine.Engine, frame inboundFrame) {
	_, span := tracer.Start(ctx, "editor.import")
	defer span.End()
	span.SetAttributes(attribute.String("editor.session_id", sessionID))

	err := engine.ImportCode(frame.Code)
	h.metrics.Import(resultLabel(err))
	recordSpanError(span, err)
}

func recordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
}

func resultLabel(err error) string {
	if err == nil {
		return metrics.ResultOK
	}
	return string(apperrors.CodeOf(err))
}

func isFrameDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.Is(err, websocket.ErrFrameTooLarge)
}
