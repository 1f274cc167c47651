// Package facestate holds the authoritative parameters of one editing session.
package facestate

import (
	"github.com/louisbranch/warband-face/internal/services/editor/facecode"
)

// State is one session's face parameters plus the memoised code derived from
// them. It is not safe for concurrent use; its owner serialises access.
type State struct {
	codec    *facecode.Codec
	params   facecode.Parameters
	lastCode facecode.Code
	hasCode  bool
	dirty    bool
}

// WithDefaults returns a state holding the layout's defaults. No code has
// been computed yet.
func WithDefaults(codec *facecode.Codec) *State {
	return &State{
		codec:  codec,
		params: codec.Layout().Defaults(),
		dirty:  true,
	}
}

// FromCode decodes code into a fresh, clean state.
func FromCode(codec *facecode.Codec, code facecode.Code) (*State, error) {
	params, err := codec.Decode(code)
	if err != nil {
		return nil, err
	}
	return &State{
		codec:    codec,
		params:   params,
		lastCode: code,
		hasCode:  true,
	}, nil
}

// SetField validates and stores one value, invalidating the cached code.
func (s *State) SetField(name string, value int) error {
	f, err := s.codec.Layout().FieldFor(name)
	if err != nil {
		return err
	}
	if !f.InRange(value) {
		return facecode.OutOfRange(f, value)
	}
	s.params[name] = value
	s.dirty = true
	s.hasCode = false
	s.lastCode = 0
	return nil
}

// CurrentCode returns the cached code, encoding first when the parameters
// changed since the last call.
func (s *State) CurrentCode() (facecode.Code, error) {
	if !s.dirty && s.hasCode {
		return s.lastCode, nil
	}
	code, err := s.codec.Encode(s.params)
	if err != nil {
		return 0, err
	}
	s.lastCode = code
	s.hasCode = true
	s.dirty = false
	return code, nil
}

// LastCode returns the cached code, if any.
func (s *State) LastCode() (facecode.Code, bool) {
	return s.lastCode, s.hasCode
}

// Dirty reports whether the parameters changed since the last encode.
func (s *State) Dirty() bool {
	return s.dirty
}

// Field returns one parameter value.
func (s *State) Field(name string) (int, bool) {
	value, ok := s.params[name]
	return value, ok
}

// Parameters returns a copy of all parameter values.
func (s *State) Parameters() facecode.Parameters {
	return s.params.Clone()
}

// Changed lists, in layout order, the fields whose values differ in next.
func (s *State) Changed(next *State) []string {
	var changed []string
	for _, name := range s.codec.Layout().FieldNames() {
		if s.params[name] != next.params[name] {
			changed = append(changed, name)
		}
	}
	return changed
}
