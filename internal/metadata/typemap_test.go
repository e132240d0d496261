package metadata_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/seantiz/kiln/internal/metadata"
)

type edges struct {
	Indexes []int
}

type note struct {
	Text string
}

type scratch struct {
	Hits int
}

func init() {
	metadata.Register[edges]("test.edges")
	metadata.Register[note]("test.note")
}

func TestTypeMapDistinctTypesCoexist(t *testing.T) {
	m := metadata.NewTypeMap()
	m.Insert(edges{Indexes: []int{1, 2}})
	m.Insert(note{Text: "hello"})
	m.Insert(note{Text: "replaced"})

	require.Equal(t, 2, m.Len())

	e, ok := metadata.Get[edges](m)
	require.True(t, ok)
	require.Equal(t, []int{1, 2}, e.Indexes)

	n, ok := metadata.Get[note](m)
	require.True(t, ok)
	require.Equal(t, "replaced", n.Text)

	require.False(t, metadata.Has[scratch](m))
}

func TestTypeMapPointerAndValueAreDistinct(t *testing.T) {
	m := metadata.NewTypeMap()
	m.Insert(&note{Text: "ptr"})

	require.False(t, metadata.Has[note](m))
	p, ok := metadata.Get[*note](m)
	require.True(t, ok)
	require.Equal(t, "ptr", p.Text)
}

func TestTypeMapIgnoresNil(t *testing.T) {
	m := metadata.NewTypeMap()
	m.Insert(nil)
	require.Equal(t, 0, m.Len())
}

func TestTypeMapMsgpackRoundTrip(t *testing.T) {
	m := metadata.NewTypeMap()
	m.Insert(edges{Indexes: []int{7, 9}})
	m.Insert(note{Text: "kept"})
	m.Insert(scratch{Hits: 3}) // not registered

	b, err := msgpack.Marshal(m)
	require.NoError(t, err)

	got := metadata.NewTypeMap()
	require.NoError(t, msgpack.Unmarshal(b, got))

	require.Equal(t, 2, got.Len())
	e, ok := metadata.Get[edges](got)
	require.True(t, ok)
	require.Equal(t, []int{7, 9}, e.Indexes)
	n, ok := metadata.Get[note](got)
	require.True(t, ok)
	require.Equal(t, "kept", n.Text)
	require.False(t, metadata.Has[scratch](got))
}

func TestRegisterConflictPanics(t *testing.T) {
	require.Panics(t, func() { metadata.Register[scratch]("test.edges") })
	require.Panics(t, func() { metadata.Register[edges]("test.other") })
	require.NotPanics(t, func() { metadata.Register[edges]("test.edges") })
}
