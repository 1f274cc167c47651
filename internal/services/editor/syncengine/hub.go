package syncengine

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/louisbranch/warband-face/internal/services/editor/facecode"
	"go.uber.org/zap"
)

// ErrHubFull is returned by Open when the hub is at capacity.
var ErrHubFull = errors.New("session capacity reached")

// ErrHubClosed is returned by Open after CloseAll.
var ErrHubClosed = errors.New("session hub is closed")

// Hub maps session IDs to engines. It never reaches into an engine's state;
// each session stays single-owner.
type Hub struct {
	mu       sync.Mutex
	codec    *facecode.Codec
	opts     Options
	limit    int
	closed   bool
	sessions map[string]*Engine
	newID    func() string
}

// HubOptions configures a Hub.
type HubOptions struct {
	// Engine is applied to every engine the hub opens; SessionID is
	// overwritten per session.
	Engine Options
	// MaxSessions caps concurrent sessions; zero means unlimited.
	MaxSessions int
}

// NewHub creates an empty hub whose engines use codec.
func NewHub(codec *facecode.Codec, opts HubOptions) *Hub {
	return &Hub{
		codec:    codec,
		opts:     opts.Engine,
		limit:    opts.MaxSessions,
		sessions: make(map[string]*Engine),
		newID:    uuid.NewString,
	}
}

// Codec returns the codec shared by the hub's engines.
func (h *Hub) Codec() *facecode.Codec {
	return h.codec
}

// Open starts a session over a default face.
func (h *Hub) Open(sink Sink) (string, *Engine, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return "", nil, ErrHubClosed
	}
	if h.limit > 0 && len(h.sessions) >= h.limit {
		return "", nil, ErrHubFull
	}
	id := h.newID()
	opts := h.opts
	opts.SessionID = id
	engine := New(h.codec, sink, opts)
	h.sessions[id] = engine
	Logger().Debug("session opened", zap.String("session_id", id), zap.Int("sessions", len(h.sessions)))
	return id, engine, nil
}

// Close removes and closes one session. The engine cancels its timer before
// releasing its state, so a late firing finds a closed engine and returns.
func (h *Hub) Close(id string) bool {
	h.mu.Lock()
	engine, ok := h.sessions[id]
	if ok {
		delete(h.sessions, id)
	}
	remaining := len(h.sessions)
	h.mu.Unlock()

	if !ok {
		return false
	}
	_ = engine.Close()
	Logger().Debug("session closed", zap.String("session_id", id), zap.Int("sessions", remaining))
	return true
}

// CloseAll ends every session and refuses new ones.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	h.closed = true
	engines := h.sessions
	h.sessions = make(map[string]*Engine)
	h.mu.Unlock()

	for _, engine := range engines {
		_ = engine.Close()
	}
}

// Len returns the number of open sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// IDs returns the open session IDs in sorted order.
func (h *Hub) IDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
