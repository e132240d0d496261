package mutator

import "github.com/seantiz/kiln/internal/random"

// BitFlip flips one random bit.
func BitFlip(r random.Rand, b []byte, _ int) ([]byte, Result) {
	if len(b) == 0 {
		return b, Skipped
	}
	i := r.Below(uint64(len(b)))
	b[i] ^= 1 << r.Below(8)
	return b, Mutated
}

// ByteFlip inverts every bit of one random byte.
func ByteFlip(r random.Rand, b []byte, _ int) ([]byte, Result) {
	if len(b) == 0 {
		return b, Skipped
	}
	b[r.Below(uint64(len(b)))] ^= 0xff
	return b, Mutated
}

// ByteInc adds one to a random byte.
func ByteInc(r random.Rand, b []byte, _ int) ([]byte, Result) {
	if len(b) == 0 {
		return b, Skipped
	}
	b[r.Below(uint64(len(b)))]++
	return b, Mutated
}

// ByteDec subtracts one from a random byte.
func ByteDec(r random.Rand, b []byte, _ int) ([]byte, Result) {
	if len(b) == 0 {
		return b, Skipped
	}
	b[r.Below(uint64(len(b)))]--
	return b, Mutated
}

// ByteNeg replaces a random byte with its two's complement negation.
func ByteNeg(r random.Rand, b []byte, _ int) ([]byte, Result) {
	if len(b) == 0 {
		return b, Skipped
	}
	i := r.Below(uint64(len(b)))
	b[i] = -b[i]
	return b, Mutated
}

// ByteRand replaces a random byte with a random value.
func ByteRand(r random.Rand, b []byte, _ int) ([]byte, Result) {
	if len(b) == 0 {
		return b, Skipped
	}
	b[r.Below(uint64(len(b)))] = byte(r.Next())
	return b, Mutated
}

// ByteDelete removes one random byte. The last byte is never removed.
func ByteDelete(r random.Rand, b []byte, _ int) ([]byte, Result) {
	if len(b) <= 1 {
		return b, Skipped
	}
	i := r.Below(uint64(len(b)))
	return append(b[:i], b[i+1:]...), Mutated
}

// ByteInsert inserts a random byte at a random position.
func ByteInsert(r random.Rand, b []byte, maxLen int) ([]byte, Result) {
	if len(b) >= maxLen {
		return b, Skipped
	}
	i := r.Below(uint64(len(b)) + 1)
	b = append(b, 0)
	copy(b[i+1:], b[i:])
	b[i] = byte(r.Next())
	return b, Mutated
}
