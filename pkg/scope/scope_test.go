package scope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefineAndGet(t *testing.T) {
	s := New()
	require.NoError(t, s.Define("x", 42))
	v, err := s.Get("x")
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestDefineFailsOnRedefinitionInSameFrame(t *testing.T) {
	s := New()
	require.NoError(t, s.Define("x", 1))
	require.Error(t, s.Define("x", 2))
}

func TestSetUpserts(t *testing.T) {
	s := New()
	s.Set("x", 1)
	s.Set("x", 2)
	v, err := s.Get("x")
	require.NoError(t, err)
	require.Equal(t, 2, v)
}

func TestGetUnbound(t *testing.T) {
	s := New()
	_, err := s.Get("missing")
	require.Error(t, err)
	require.False(t, s.Has("missing"))
}

func TestPushPopLexicalLookup(t *testing.T) {
	s := New()
	require.NoError(t, s.Define("outer", "root"))
	s.Push()
	require.NoError(t, s.Define("inner", "child"))
	v, err := s.Get("outer")
	require.NoError(t, err)
	require.Equal(t, "root", v)
	s.Pop()
	_, err = s.Get("inner")
	require.Error(t, err)
}

func TestChildIsolatesMutations(t *testing.T) {
	s := New()
	require.NoError(t, s.Define("x", "parent-value"))

	child := s.Child()
	child.Set("x", "child-value")

	v, err := s.Get("x")
	require.NoError(t, err)
	require.Equal(t, "parent-value", v)

	cv, err := child.Get("x")
	require.NoError(t, err)
	require.Equal(t, "child-value", cv)
}

func TestNamesReturnsCurrentFrameInDefinitionOrder(t *testing.T) {
	s := New()
	require.NoError(t, s.Define("a", 1))
	require.NoError(t, s.Define("b", 2))
	require.Equal(t, []string{"a", "b"}, s.Names())
}
