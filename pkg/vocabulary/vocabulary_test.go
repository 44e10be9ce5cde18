package vocabulary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/sys2/pkg/hdvector"
)

func TestGetOrCreateIsStableAndDeterministic(t *testing.T) {
	v := New(hdvector.Exact, hdvector.Geom512, hdvector.NewHdcContext())
	vec1, err := v.GetOrCreate("Rex")
	require.NoError(t, err)
	vec2, err := v.GetOrCreate("Rex")
	require.NoError(t, err)
	require.True(t, vec1.Equal(vec2))
	require.Equal(t, 1, v.Size())
}

func TestGetOrCreateDistinctNamesDistinctVectors(t *testing.T) {
	v := New(hdvector.Exact, hdvector.Geom512, hdvector.NewHdcContext())
	rex, err := v.GetOrCreate("Rex")
	require.NoError(t, err)
	fido, err := v.GetOrCreate("Fido")
	require.NoError(t, err)
	require.False(t, rex.Equal(fido))
}

func TestLookupAndHas(t *testing.T) {
	v := New(hdvector.Exact, hdvector.Geom512, hdvector.NewHdcContext())
	require.False(t, v.Has("Rex"))
	_, ok := v.Lookup("Rex")
	require.False(t, ok)

	vec, err := v.GetOrCreate("Rex")
	require.NoError(t, err)
	require.True(t, v.Has("Rex"))
	looked, ok := v.Lookup("Rex")
	require.True(t, ok)
	require.True(t, vec.Equal(looked))
}

func TestDecodeReversesVector(t *testing.T) {
	v := New(hdvector.Exact, hdvector.Geom512, hdvector.NewHdcContext())
	vec, err := v.GetOrCreate("Rex")
	require.NoError(t, err)
	name, ok := v.Decode(vec)
	require.True(t, ok)
	require.Equal(t, "Rex", name)
}

func TestNamesPreservesRegistrationOrder(t *testing.T) {
	v := New(hdvector.Exact, hdvector.Geom512, hdvector.NewHdcContext())
	_, err := v.GetOrCreate("b")
	require.NoError(t, err)
	_, err = v.GetOrCreate("a")
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a"}, v.Names())
}
