package generator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seantiz/kiln/internal/input"
	"github.com/seantiz/kiln/internal/random"
)

func TestRandBytesLength(t *testing.T) {
	r := random.NewStdRand(1)
	gen := NewRandBytes[input.Bytes](16)
	for i := 0; i < 200; i++ {
		in, err := gen.Generate(r)
		require.NoError(t, err)
		require.GreaterOrEqual(t, in.Len(), 1)
		require.LessOrEqual(t, in.Len(), 16)
	}
}

func TestRandBytesMinimumLength(t *testing.T) {
	gen := NewRandBytes[input.Bytes](0)
	in, err := gen.Generate(random.NewStdRand(3))
	require.NoError(t, err)
	require.Equal(t, 1, in.Len())
}

func TestRandPrintables(t *testing.T) {
	r := random.NewStdRand(2)
	gen := NewRandPrintables[input.Bytes](32)
	for i := 0; i < 200; i++ {
		in, err := gen.Generate(r)
		require.NoError(t, err)
		require.NotZero(t, in.Len())
		for _, c := range in.Bytes() {
			require.GreaterOrEqual(t, c, byte(0x20))
			require.LessOrEqual(t, c, byte(0x7e))
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	gen := NewRandBytes[input.Bytes](64)
	a, err := gen.Generate(random.NewStdRand(42))
	require.NoError(t, err)
	b, err := gen.Generate(random.NewStdRand(42))
	require.NoError(t, err)
	require.True(t, a.Equal(b))
}
