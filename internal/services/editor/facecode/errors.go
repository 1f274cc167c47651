package facecode

import apperrors "github.com/louisbranch/warband-face/internal/platform/errors"

// Sentinels for errors.Is; domain errors match by code.
var (
	ErrLayoutInvalid = apperrors.New(apperrors.CodeLayoutInvalid, "invalid layout")
	ErrOutOfRange    = apperrors.New(apperrors.CodeOutOfRange, "value out of range")
	ErrInvalidFormat = apperrors.New(apperrors.CodeInvalidFormat, "invalid face code format")
	ErrFieldNotFound = apperrors.New(apperrors.CodeFieldNotFound, "unknown field")
	ErrFieldMissing  = apperrors.New(apperrors.CodeFieldMissing, "missing field")
)
