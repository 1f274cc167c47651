// Package errors provides structured error handling for the face editor.
package errors

// Code is a machine-readable error code.
//
// Codes double as the outbound "kind" of session error notifications, so they
// are part of the wire contract.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Layout errors. A layout error is fatal: the process must not start.
	CodeLayoutInvalid Code = "LAYOUT_INVALID"

	// Codec errors
	CodeOutOfRange    Code = "OUT_OF_RANGE"
	CodeInvalidFormat Code = "INVALID_FORMAT"
	CodeFieldNotFound Code = "FIELD_NOT_FOUND"
	CodeFieldMissing  Code = "FIELD_MISSING"

	// Session errors
	CodeSessionClosed Code = "SESSION_CLOSED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// Recoverable reports whether the code describes a rejected request rather
// than a broken process.
func (c Code) Recoverable() bool {
	switch c {
	case CodeLayoutInvalid, CodeUnknown:
		return false
	default:
		return true
	}
}
