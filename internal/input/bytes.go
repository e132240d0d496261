package input

import (
	"bytes"
	"fmt"
	"os"
)

var _ HasBytes[Bytes] = Bytes{}

// Bytes is a raw byte-buffer input.
type Bytes struct {
	data []byte
}

// NewBytes returns an input holding a copy of b.
func NewBytes(b []byte) Bytes {
	return Bytes{data: bytes.Clone(b)}
}

// Bytes returns the underlying buffer. Callers must not retain it across mutations.
func (in Bytes) Bytes() []byte {
	return in.data
}

// Len returns the number of bytes in the input.
func (in Bytes) Len() int {
	return len(in.data)
}

// WithBytes returns an input backed by b without copying.
func (in Bytes) WithBytes(b []byte) Bytes {
	return Bytes{data: b}
}

// Clone returns an independent copy.
func (in Bytes) Clone() Bytes {
	return Bytes{data: bytes.Clone(in.data)}
}

// Equal reports whether both inputs hold the same bytes.
func (in Bytes) Equal(other Bytes) bool {
	return bytes.Equal(in.data, other.data)
}

// ToFile writes the raw bytes to path.
func (in Bytes) ToFile(path string) error {
	if err := os.WriteFile(path, in.data, 0o644); err != nil {
		return fmt.Errorf("write input: %w", err)
	}
	return nil
}

// FromFile reads raw bytes from path.
func (Bytes) FromFile(path string) (Bytes, error) {
	// #nosec G304 -- path names a corpus entry chosen by the corpus itself
	data, err := os.ReadFile(path)
	if err != nil {
		return Bytes{}, fmt.Errorf("read input: %w", err)
	}
	return Bytes{data: data}, nil
}

// String renders the input for logs, truncated to 32 bytes.
func (in Bytes) String() string {
	const max = 32
	if len(in.data) <= max {
		return fmt.Sprintf("%q", in.data)
	}
	return fmt.Sprintf("%q... (%d bytes)", in.data[:max], len(in.data))
}
