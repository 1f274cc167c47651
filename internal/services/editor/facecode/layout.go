package facecode

import (
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/warband-face/internal/platform/errors"
)

// TotalBits is the width of a face code.
const TotalBits = 64

// FieldSpec describes one bit range of a face code.
type FieldSpec struct {
	Name    string
	Offset  uint8
	Width   uint8
	Min     int
	Max     int
	Default int
}

// mask returns the unshifted bit mask for the field.
func (f FieldSpec) mask() uint64 {
	if f.Width >= TotalBits {
		return ^uint64(0)
	}
	return (uint64(1) << f.Width) - 1
}

// InRange reports whether value is a legal value for the field.
func (f FieldSpec) InRange(value int) bool {
	return value >= f.Min && value <= f.Max
}

// Layout is an ordered, immutable set of fields covering all 64 bits.
type Layout struct {
	version string
	fields  []FieldSpec
	index   map[string]int
}

// NewLayout validates fields and builds a layout. Fields must not overlap,
// must cover every bit exactly once, and each range must fit its width.
func NewLayout(version string, fields ...FieldSpec) (*Layout, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		return nil, layoutError("layout version is required")
	}
	if len(fields) == 0 {
		return nil, layoutError("layout %s has no fields", version)
	}

	var covered uint64
	total := 0
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" || name != f.Name {
			return nil, layoutError("layout %s: field %d has an invalid name %q", version, i, f.Name)
		}
		if _, dup := index[name]; dup {
			return nil, layoutError("layout %s: duplicate field %q", version, name)
		}
		if f.Width == 0 {
			return nil, layoutError("layout %s: field %q has zero width", version, name)
		}
		if int(f.Offset)+int(f.Width) > TotalBits {
			return nil, layoutError("layout %s: field %q ends past bit %d", version, name, TotalBits)
		}
		if f.Min > f.Max {
			return nil, layoutError("layout %s: field %q min %d exceeds max %d", version, name, f.Min, f.Max)
		}
		if uint64(f.Max-f.Min) > f.mask() {
			return nil, layoutError("layout %s: field %q range %d..%d does not fit %d bits", version, name, f.Min, f.Max, f.Width)
		}
		if !f.InRange(f.Default) {
			return nil, layoutError("layout %s: field %q default %d outside %d..%d", version, name, f.Default, f.Min, f.Max)
		}
		bits := f.mask() << f.Offset
		if covered&bits != 0 {
			return nil, layoutError("layout %s: field %q overlaps another field", version, name)
		}
		covered |= bits
		total += int(f.Width)
		index[name] = i
	}
	if total != TotalBits || covered != ^uint64(0) {
		return nil, layoutError("layout %s covers %d bits, want %d", version, total, TotalBits)
	}

	owned := make([]FieldSpec, len(fields))
	copy(owned, fields)
	return &Layout{version: version, fields: owned, index: index}, nil
}

// MustLayout is NewLayout for package-level layouts; an invalid layout is a
// build-time contract violation and panics.
func MustLayout(version string, fields ...FieldSpec) *Layout {
	layout, err := NewLayout(version, fields...)
	if err != nil {
		panic(err)
	}
	return layout
}

// Version returns the layout's version name.
func (l *Layout) Version() string {
	return l.version
}

// TotalBits returns the width of codes under this layout.
func (l *Layout) TotalBits() int {
	return TotalBits
}

// Fields returns the fields in layout order.
func (l *Layout) Fields() []FieldSpec {
	out := make([]FieldSpec, len(l.fields))
	copy(out, l.fields)
	return out
}

// FieldNames returns the field names in layout order.
func (l *Layout) FieldNames() []string {
	names := make([]string, len(l.fields))
	for i, f := range l.fields {
		names[i] = f.Name
	}
	return names
}

// FieldFor looks up a field by name.
func (l *Layout) FieldFor(name string) (FieldSpec, error) {
	i, ok := l.index[name]
	if !ok {
		return FieldSpec{}, apperrors.WithMetadata(
			apperrors.CodeFieldNotFound,
			fmt.Sprintf("layout %s has no field %q", l.version, name),
			map[string]string{apperrors.MetaField: name},
		)
	}
	return l.fields[i], nil
}

// Defaults returns parameters holding every field's default.
func (l *Layout) Defaults() Parameters {
	params := make(Parameters, len(l.fields))
	for _, f := range l.fields {
		params[f.Name] = f.Default
	}
	return params
}

func layoutError(format string, args ...any) error {
	return apperrors.New(apperrors.CodeLayoutInvalid, fmt.Sprintf(format, args...))
}
