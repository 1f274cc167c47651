package facecode

import (
	"fmt"
	"strconv"

	apperrors "github.com/louisbranch/warband-face/internal/platform/errors"
)

const (
	codePrefix    = "0x"
	codeHexDigits = 16
	codeLength    = len(codePrefix) + codeHexDigits
)

// Code is a packed 64-bit face code.
type Code uint64

// String renders the code as 0x followed by 16 lowercase hex digits.
func (c Code) String() string {
	return fmt.Sprintf("0x%016x", uint64(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with ParseCode rules.
func (c *Code) UnmarshalText(text []byte) error {
	parsed, err := ParseCode(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCode checks the wire format of a face code: an exact "0x" prefix and
// 16 hex digits of either case. Nothing about field ranges is checked here.
func ParseCode(s string) (Code, error) {
	if len(s) != codeLength {
		return 0, invalidFormat(fmt.Sprintf("face code must be %d characters, got %d", codeLength, len(s)))
	}
	if s[:len(codePrefix)] != codePrefix {
		return 0, invalidFormat("face code must start with 0x")
	}
	digits := s[len(codePrefix):]
	for i := 0; i < len(digits); i++ {
		if !isHexDigit(digits[i]) {
			return 0, invalidFormat(fmt.Sprintf("face code has non-hex character %q", digits[i]))
		}
	}
	value, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeInvalidFormat, "face code is not a 64-bit hex number", err)
	}
	return Code(value), nil
}

func isHexDigit(b byte) bool {
	switch {
	case b >= '0' && b <= '9':
		return true
	case b >= 'a' && b <= 'f':
		return true
	case b >= 'A' && b <= 'F':
		return true
	}
	return false
}

func invalidFormat(message string) error {
	return apperrors.New(apperrors.CodeInvalidFormat, message)
}
