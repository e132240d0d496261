package input

// Input is implemented by every fuzz input type I. FromFile is called on the
// zero value of I and must not depend on its receiver.
type Input[I any] interface {
	// ToFile serializes the input to the file at path, replacing it.
	ToFile(path string) error
	// FromFile deserializes an input from the file at path.
	FromFile(path string) (I, error)
	// Clone returns a deep copy that can be mutated independently.
	Clone() I
}

// HasBytes is implemented by inputs whose content is a flat byte buffer.
// Byte-level mutators and generators are written against it.
type HasBytes[I any] interface {
	Input[I]
	Bytes() []byte
	// WithBytes returns an input holding b. Ownership of b passes to the input.
	WithBytes(b []byte) I
}
