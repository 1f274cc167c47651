// Package profile reads and writes a face code embedded in an external
// character record. The record format itself is owned elsewhere; only the
// eight bytes at the configured offset are touched.
package profile

import (
	"encoding/binary"
	"fmt"

	"github.com/louisbranch/warband-face/internal/services/editor/facecode"
)

// CodeSize is the number of bytes a face code occupies in a record.
const CodeSize = 8

// DefaultOffset is where the face code sits in a Warband character record.
const DefaultOffset = 0x40

// Extract reads the little-endian code at offset.
func Extract(record []byte, offset int) (facecode.Code, error) {
	if err := checkBounds(record, offset); err != nil {
		return 0, err
	}
	return facecode.Code(binary.LittleEndian.Uint64(record[offset : offset+CodeSize])), nil
}

// Embed writes code at offset, leaving every other byte as it was.
func Embed(record []byte, offset int, code facecode.Code) error {
	if err := checkBounds(record, offset); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(record[offset:offset+CodeSize], uint64(code))
	return nil
}

func checkBounds(record []byte, offset int) error {
	if offset < 0 {
		return fmt.Errorf("face code offset %d is negative", offset)
	}
	if offset > len(record)-CodeSize {
		return fmt.Errorf("face code at offset %d needs %d bytes, record has %d", offset, CodeSize, len(record))
	}
	return nil
}
