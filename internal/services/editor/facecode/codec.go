package facecode

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/louisbranch/warband-face/internal/platform/errors"
)

// Parameters maps every field name of a layout to its value.
type Parameters map[string]int

// Clone returns an independent copy.
func (p Parameters) Clone() Parameters {
	out := make(Parameters, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Equal reports whether both parameter sets hold the same fields and values.
func (p Parameters) Equal(other Parameters) bool {
	if len(p) != len(other) {
		return false
	}
	for k, v := range p {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Codec encodes and decodes face codes under one layout. It holds no state
// besides the layout and is safe for concurrent use.
type Codec struct {
	layout *Layout
}

// NewCodec binds a codec to layout.
func NewCodec(layout *Layout) *Codec {
	return &Codec{layout: layout}
}

// Layout returns the codec's layout.
func (c *Codec) Layout() *Layout {
	return c.layout
}

// Encode packs params into a code. Every layout field must be present and in
// range; values are written as (value - min) at the field offset.
func (c *Codec) Encode(params Parameters) (Code, error) {
	if err := c.checkKeys(params); err != nil {
		return 0, err
	}
	var acc uint64
	for _, f := range c.layout.fields {
		value := params[f.Name]
		if !f.InRange(value) {
			return 0, OutOfRange(f, value)
		}
		acc |= uint64(value-f.Min) << f.Offset
	}
	return Code(acc), nil
}

// Decode unpacks code. A slice whose value exceeds its field's max is
// rejected rather than clamped.
func (c *Codec) Decode(code Code) (Parameters, error) {
	params := make(Parameters, len(c.layout.fields))
	for _, f := range c.layout.fields {
		slice := (uint64(code) >> f.Offset) & f.mask()
		value := f.Min + int(slice)
		if value > f.Max {
			return nil, OutOfRange(f, value)
		}
		params[f.Name] = value
	}
	return params, nil
}

// Validate checks the wire format of s and returns the code it spells.
func (c *Codec) Validate(s string) (Code, error) {
	return ParseCode(s)
}

// DecodeString validates and decodes s.
func (c *Codec) DecodeString(s string) (Code, Parameters, error) {
	code, err := c.Validate(s)
	if err != nil {
		return 0, nil, err
	}
	params, err := c.Decode(code)
	if err != nil {
		return 0, nil, err
	}
	return code, params, nil
}

func (c *Codec) checkKeys(params Parameters) error {
	var unknown []string
	for name := range params {
		if _, ok := c.layout.index[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return apperrors.WithMetadata(
			apperrors.CodeFieldNotFound,
			fmt.Sprintf("layout %s has no field %s", c.layout.version, strings.Join(unknown, ", ")),
			map[string]string{apperrors.MetaField: unknown[0]},
		)
	}
	for _, f := range c.layout.fields {
		if _, ok := params[f.Name]; !ok {
			return apperrors.WithMetadata(
				apperrors.CodeFieldMissing,
				fmt.Sprintf("field %q is missing", f.Name),
				map[string]string{apperrors.MetaField: f.Name},
			)
		}
	}
	return nil
}

// OutOfRange builds the error for a value outside f's range.
func OutOfRange(f FieldSpec, value int) error {
	return apperrors.WithMetadata(
		apperrors.CodeOutOfRange,
		fmt.Sprintf("field %q value %d outside %d..%d", f.Name, value, f.Min, f.Max),
		apperrors.FieldMetadata(f.Name, value),
	)
}
