package kb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddInsertsAndDedups(t *testing.T) {
	k := New(true)
	e1, err := k.Add("isA", []string{"Rex", "Dog"}, Positive, 1, nil)
	require.NoError(t, err)
	require.Equal(t, 0, e1.Index)

	e2, err := k.Add("isA", []string{"Rex", "Dog"}, Positive, 2, nil)
	require.NoError(t, err)
	require.Same(t, e1, e2)
	require.Equal(t, 1, k.Len())
}

func TestAddRejectsContradiction(t *testing.T) {
	k := New(true)
	_, err := k.Add("isA", []string{"Rex", "Cat"}, Positive, 1, nil)
	require.NoError(t, err)

	_, err = k.Add("isA", []string{"Rex", "Cat"}, Negative, 2, nil)
	require.Error(t, err)
	require.Equal(t, 1, k.Len())
}

func TestAddAllowsContradictionWhenNotRejecting(t *testing.T) {
	k := New(false)
	_, err := k.Add("isA", []string{"Rex", "Cat"}, Positive, 1, nil)
	require.NoError(t, err)

	_, err = k.Add("isA", []string{"Rex", "Cat"}, Negative, 2, nil)
	require.NoError(t, err)
	require.Equal(t, 2, k.Len())
}

func TestLookupAndHas(t *testing.T) {
	k := New(true)
	_, err := k.Add("isA", []string{"Rex", "Dog"}, Positive, 1, nil)
	require.NoError(t, err)

	require.True(t, k.Has("isA", []string{"Rex", "Dog"}, Positive))
	require.False(t, k.Has("isA", []string{"Rex", "Cat"}, Positive))

	entry, ok := k.Lookup("isA", []string{"Rex", "Dog"}, Positive)
	require.True(t, ok)
	require.Equal(t, "isA", entry.Operator)
}

func TestFindAllWildcard(t *testing.T) {
	k := New(true)
	mustAdd(t, k, "isA", []string{"Rex", "Dog"})
	mustAdd(t, k, "isA", []string{"Fido", "Dog"})
	mustAdd(t, k, "isA", []string{"Whiskers", "Cat"})

	dogs := k.FindAll("isA", []string{"", "Dog"})
	require.Len(t, dogs, 2)

	exact := k.FindAll("isA", []string{"Rex", "Dog"})
	require.Len(t, exact, 1)
}

func TestMarkAndRollback(t *testing.T) {
	k := New(true)
	mustAdd(t, k, "isA", []string{"Rex", "Dog"})
	mark := k.Mark()

	mustAdd(t, k, "isA", []string{"Fido", "Dog"})
	require.Equal(t, 2, k.Len())

	k.Rollback(mark)
	require.Equal(t, 1, k.Len())
	require.False(t, k.Has("isA", []string{"Fido", "Dog"}, Positive))
	require.True(t, k.Has("isA", []string{"Rex", "Dog"}, Positive))
}

func TestOperatorsSortedDistinct(t *testing.T) {
	k := New(true)
	mustAdd(t, k, "isA", []string{"Rex", "Dog"})
	mustAdd(t, k, "locatedIn", []string{"Rex", "House"})
	mustAdd(t, k, "isA", []string{"Fido", "Dog"})

	require.Equal(t, []string{"isA", "locatedIn"}, k.Operators())
}

func mustAdd(t *testing.T, k *KB, operator string, args []string) {
	t.Helper()
	_, err := k.Add(operator, args, Positive, 1, nil)
	require.NoError(t, err)
}
