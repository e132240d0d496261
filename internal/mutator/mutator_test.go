package mutator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seantiz/kiln/internal/input"
	"github.com/seantiz/kiln/internal/random"
)

func TestByteMutationsSkipEmpty(t *testing.T) {
	r := random.NewStdRand(1)
	for _, b := range builtin {
		if b.name == "byteinsert" {
			continue
		}
		out, res := b.fn(r, nil, 16)
		require.Equal(t, Skipped, res, b.name)
		require.Empty(t, out, b.name)
	}
}

func TestByteMutationsChangeInput(t *testing.T) {
	tests := []struct {
		name string
		fn   Mutation
	}{
		{"bitflip", BitFlip},
		{"byteflip", ByteFlip},
		{"byteinc", ByteInc},
		{"bytedec", ByteDec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := []byte{0x10, 0x20, 0x30, 0x40}
			buf := append([]byte(nil), orig...)
			out, res := tt.fn(random.NewStdRand(7), buf, 16)
			require.Equal(t, Mutated, res)
			require.Len(t, out, len(orig))
			require.NotEqual(t, orig, out)
		})
	}
}

func TestByteNeg(t *testing.T) {
	out, res := ByteNeg(random.NewStdRand(1), []byte{0x01}, 16)
	require.Equal(t, Mutated, res)
	require.Equal(t, []byte{0xff}, out)
}

func TestByteDelete(t *testing.T) {
	out, res := ByteDelete(random.NewStdRand(1), []byte{1, 2, 3}, 16)
	require.Equal(t, Mutated, res)
	require.Len(t, out, 2)

	out, res = ByteDelete(random.NewStdRand(1), []byte{1}, 16)
	require.Equal(t, Skipped, res)
	require.Equal(t, []byte{1}, out)
}

func TestByteInsert(t *testing.T) {
	out, res := ByteInsert(random.NewStdRand(1), []byte{1, 2}, 16)
	require.Equal(t, Mutated, res)
	require.Len(t, out, 3)

	out, res = ByteInsert(random.NewStdRand(1), nil, 16)
	require.Equal(t, Mutated, res)
	require.Len(t, out, 1)

	_, res = ByteInsert(random.NewStdRand(1), []byte{1, 2}, 2)
	require.Equal(t, Skipped, res)
}

func TestScheduledDoesNotModifyOriginal(t *testing.T) {
	in := input.NewBytes([]byte("hello world"))
	m := NewScheduled[input.Bytes](nil)

	out, res, err := m.Mutate(random.NewStdRand(3), in, 0)
	require.NoError(t, err)
	require.Equal(t, Mutated, res)
	require.Equal(t, []byte("hello world"), in.Bytes())
	require.NotZero(t, out.Len())
}

func TestScheduledDeterministic(t *testing.T) {
	in := input.NewBytes([]byte("seed input"))
	m := NewScheduled[input.Bytes](nil)

	a, _, err := m.Mutate(random.NewStdRand(99), in, 0)
	require.NoError(t, err)
	b, _, err := m.Mutate(random.NewStdRand(99), in, 0)
	require.NoError(t, err)
	require.True(t, a.Equal(b))
}

func TestScheduledRespectsMaxLen(t *testing.T) {
	m := NewScheduled[input.Bytes]([]Mutation{ByteInsert}, WithMaxLen(8))
	r := random.NewStdRand(5)
	in := input.NewBytes([]byte{1})
	for i := 0; i < 50; i++ {
		out, _, err := m.Mutate(r, in, i)
		require.NoError(t, err)
		require.LessOrEqual(t, out.Len(), 8)
		in = out
	}
}

func TestScheduledIterations(t *testing.T) {
	m := NewScheduled[input.Bytes](nil)
	r := random.NewStdRand(11)
	for i := 0; i < 100; i++ {
		n := m.Iterations(r)
		require.Contains(t, []int{2, 4, 8, 16, 32, 64}, n)
	}
}

func TestRegistryResolve(t *testing.T) {
	reg := DefaultRegistry()

	require.Equal(t, []string{
		"bitflip", "bytedec", "bytedelete", "byteflip",
		"byteinc", "byteinsert", "byteneg", "byterand",
	}, reg.List())

	ms, err := reg.Resolve([]string{"bitflip", "byteinsert"})
	require.NoError(t, err)
	require.Len(t, ms, 2)

	all, err := reg.Resolve(nil)
	require.NoError(t, err)
	require.Len(t, all, len(builtin))

	_, err = reg.Resolve([]string{"bitflip", "havoc"})
	require.ErrorIs(t, err, ErrUnknownMutation)
}

func TestRegistryRegisterReplaces(t *testing.T) {
	reg := NewRegistry()
	reg.Register("noop", func(_ random.Rand, b []byte, _ int) ([]byte, Result) { return b, Skipped })
	reg.Register("noop", ByteInc)

	ms, err := reg.Resolve([]string{"noop"})
	require.NoError(t, err)
	out, res := ms[0](random.NewStdRand(1), []byte{1}, 16)
	require.Equal(t, Mutated, res)
	require.Equal(t, []byte{2}, out)
}
