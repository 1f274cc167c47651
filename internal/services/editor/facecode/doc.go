// Package facecode packs facial parameters into Warband's 64-bit face code.
//
// A Layout describes which bit range each field occupies and which values it
// may hold. Layouts are data: a later revision of the game format becomes a
// new named Layout next to V1, and a Codec is bound to exactly one of them.
//
// The codec never clamps and never masks. Encode rejects values outside a
// field's range and Decode rejects slices above a field's maximum, so a
// malformed import is always distinguishable from a valid extreme face.
package facecode
