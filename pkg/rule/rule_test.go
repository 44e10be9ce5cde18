package rule

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFreeVarsCollectsDistinctInOrder(t *testing.T) {
	cond := &And{
		A: &Fact{Operator: "isA", Args: []string{"?x", "Bird"}},
		B: &Or{
			A: &Fact{Operator: "hasProperty", Args: []string{"?x", "?y"}},
			B: &Not{Inner: &Fact{Operator: "isA", Args: []string{"?x", "Fish"}}},
		},
	}
	require.Equal(t, []string{"?x", "?y"}, FreeVars(cond))
}

func TestFreeVarsNoneOnGroundFact(t *testing.T) {
	require.Empty(t, FreeVars(&Fact{Operator: "isA", Args: []string{"Rex", "Dog"}}))
}

func TestStoreAddAssignsIndexAndFreeVars(t *testing.T) {
	s := New()
	r := s.Add(&Fact{Operator: "isA", Args: []string{"?x", "Bird"}}, &Fact{Operator: "can", Args: []string{"?x", "Fly"}}, 7)
	require.Equal(t, 0, r.Index)
	require.Equal(t, []string{"?x"}, r.FreeVars)
	require.Equal(t, 7, r.SourceStatementID)
	require.Equal(t, 1, s.Len())
}

func TestStoreMarkAndRollback(t *testing.T) {
	s := New()
	s.Add(&Fact{Operator: "isA", Args: []string{"?x", "Bird"}}, &Fact{Operator: "can", Args: []string{"?x", "Fly"}}, 1)
	mark := s.Mark()

	s.Add(&Fact{Operator: "isA", Args: []string{"?x", "Fish"}}, &Fact{Operator: "can", Args: []string{"?x", "Swim"}}, 2)
	require.Equal(t, 2, s.Len())

	s.Rollback(mark)
	require.Equal(t, 1, s.Len())
}
