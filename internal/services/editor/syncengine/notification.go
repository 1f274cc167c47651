package syncengine

import (
	apperrors "github.com/louisbranch/warband-face/internal/platform/errors"
	"github.com/louisbranch/warband-face/internal/services/editor/facecode"
)

// Kind identifies an outbound notification.
type Kind string

const (
	// KindVisualUpdate carries one raw slider value for the renderer.
	KindVisualUpdate Kind = "visual_update"
	// KindCodeUpdate carries a freshly computed face code.
	KindCodeUpdate Kind = "code_update"
	// KindError reports a rejected operation.
	KindError Kind = "error"
)

// Notification is one outbound event of a session.
type Notification struct {
	Kind Kind

	// Field and Value are set for visual updates; Field is also set for
	// errors about one field.
	Field string
	Value int

	// Code is set for code updates.
	Code facecode.Code

	// ErrorCode and Err are set for errors.
	ErrorCode apperrors.Code
	Err       error
}

// Sink receives a session's notifications in order. Engines call Notify while
// holding their session lock, so a sink must not call back into the engine.
type Sink interface {
	Notify(Notification)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Notification)

// Notify calls f.
func (f SinkFunc) Notify(n Notification) {
	f(n)
}

func visualUpdate(field string, value int) Notification {
	return Notification{Kind: KindVisualUpdate, Field: field, Value: value}
}

func codeUpdate(code facecode.Code) Notification {
	return Notification{Kind: KindCodeUpdate, Code: code}
}

func errorNotification(err error) Notification {
	return Notification{
		Kind:      KindError,
		Field:     apperrors.FieldOf(err),
		ErrorCode: apperrors.CodeOf(err),
		Err:       err,
	}
}
