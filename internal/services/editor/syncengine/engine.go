package syncengine

import (
	"fmt"
	"sync"
	"time"

	apperrors "github.com/louisbranch/warband-face/internal/platform/errors"
	"github.com/louisbranch/warband-face/internal/services/editor/facecode"
	"github.com/louisbranch/warband-face/internal/services/editor/facestate"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before an edited face is re-encoded.
const DefaultDebounce = 100 * time.Millisecond

// ErrSessionClosed is returned by operations on a closed engine.
var ErrSessionClosed = apperrors.New(apperrors.CodeSessionClosed, "session is closed")

// Status is the engine's position in the regeneration state machine.
type Status int

const (
	// StatusIdle has no regeneration pending.
	StatusIdle Status = iota
	// StatusPendingRegen has an armed debounce timer.
	StatusPendingRegen
	// StatusClosed is terminal.
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPendingRegen:
		return "pending_regen"
	case StatusClosed:
		return "closed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Options configures an Engine.
type Options struct {
	// Debounce is the regeneration quiet period; zero means DefaultDebounce.
	Debounce time.Duration
	// Scheduler arms debounce timers; nil means RealScheduler.
	Scheduler Scheduler
	// SessionID labels log lines.
	SessionID string
}

// Engine synchronises one session's face state with its sink.
type Engine struct {
	mu        sync.Mutex
	codec     *facecode.Codec
	state     *facestate.State
	sink      Sink
	scheduler Scheduler
	debounce  time.Duration
	sessionID string

	status Status
	timer  Timer
	// generation invalidates timers that were stopped too late to cancel.
	generation uint64
}

// New creates an idle engine over a default face.
func New(codec *facecode.Codec, sink Sink, opts Options) *Engine {
	return newEngine(codec, facestate.WithDefaults(codec), sink, opts)
}

// NewFromCode creates an idle engine over a decoded face.
func NewFromCode(codec *facecode.Codec, code facecode.Code, sink Sink, opts Options) (*Engine, error) {
	state, err := facestate.FromCode(codec, code)
	if err != nil {
		return nil, err
	}
	return newEngine(codec, state, sink, opts), nil
}

func newEngine(codec *facecode.Codec, state *facestate.State, sink Sink, opts Options) *Engine {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler{}
	}
	if sink == nil {
		sink = SinkFunc(func(Notification) {})
	}
	return &Engine{
		codec:     codec,
		state:     state,
		sink:      sink,
		scheduler: opts.Scheduler,
		debounce:  opts.Debounce,
		sessionID: opts.SessionID,
	}
}

// ApplyEdit sets one field. The visual update goes out at once; the code
// update follows after the debounce window, and a later edit inside the
// window restarts it.
func (e *Engine) ApplyEdit(field string, value int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status == StatusClosed {
		return e.reject(ErrSessionClosed)
	}
	if err := e.state.SetField(field, value); err != nil {
		return e.reject(err)
	}
	e.sink.Notify(visualUpdate(field, value))
	e.armLocked()
	return nil
}

// ImportCode replaces the whole face with the decoded s, or changes nothing.
// Changed fields get one visual update each, followed by one code update.
func (e *Engine) ImportCode(s string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status == StatusClosed {
		return e.reject(ErrSessionClosed)
	}
	code, err := e.codec.Validate(s)
	if err != nil {
		return e.reject(err)
	}
	next, err := facestate.FromCode(e.codec, code)
	if err != nil {
		return e.reject(err)
	}

	changed := e.state.Changed(next)
	e.cancelLocked()
	e.state = next
	e.status = StatusIdle
	for _, name := range changed {
		value, _ := next.Field(name)
		e.sink.Notify(visualUpdate(name, value))
	}
	e.sink.Notify(codeUpdate(code))
	return nil
}

// Snapshot returns the current parameters and code.
func (e *Engine) Snapshot() (facecode.Parameters, facecode.Code, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status == StatusClosed {
		return nil, 0, ErrSessionClosed
	}
	code, err := e.state.CurrentCode()
	if err != nil {
		return nil, 0, err
	}
	return e.state.Parameters(), code, nil
}

// Status reports the state machine position.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Close cancels any pending regeneration and releases the state. Closing
// twice is a no-op.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status == StatusClosed {
		return nil
	}
	e.cancelLocked()
	e.status = StatusClosed
	e.state = nil
	return nil
}

func (e *Engine) armLocked() {
	e.cancelLocked()
	gen := e.generation
	e.timer = e.scheduler.AfterFunc(e.debounce, func() {
		e.fire(gen)
	})
	e.status = StatusPendingRegen
}

// cancelLocked stops the pending timer and retires its generation so that a
// callback already waiting on the lock does nothing.
func (e *Engine) cancelLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.generation++
}

func (e *Engine) fire(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusPendingRegen || gen != e.generation {
		return
	}
	e.timer = nil
	e.status = StatusIdle
	code, err := e.state.CurrentCode()
	if err != nil {
		e.reject(err)
		return
	}
	e.sink.Notify(codeUpdate(code))
}

func (e *Engine) reject(err error) error {
	Logger().Debug("session operation rejected",
		zap.String("session_id", e.sessionID),
		zap.String("code", string(apperrors.CodeOf(err))),
		zap.Error(err),
	)
	e.sink.Notify(errorNotification(err))
	return err
}
