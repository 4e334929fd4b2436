package vm

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Load reads r fully and decodes it as a stream of big-endian 32-bit
// words. A trailing partial word — total length not a multiple of 4 — is
// a malformed-input error. The returned Segment becomes segment 0 of a
// new machine.
func Load(r io.Reader) (Segment, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("malformed program: length %d is not a multiple of 4", len(raw))
	}

	words := make(Segment, len(raw)/4)
	for i := range words {
		words[i] = binary.BigEndian.Uint32(raw[i*4 : i*4+4])
	}
	return words, nil
}

// Bytes re-encodes a segment as a big-endian byte stream, the inverse of
// Load: Load(Bytes(s)) reproduces s.
func (s Segment) Bytes() []byte {
	out := make([]byte, len(s)*4)
	for i, w := range s {
		binary.BigEndian.PutUint32(out[i*4:i*4+4], w)
	}
	return out
}
