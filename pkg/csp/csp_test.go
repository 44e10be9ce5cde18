package csp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/sys2/pkg/hdvector"
	"github.com/gitrdm/sys2/pkg/kb"
	"github.com/gitrdm/sys2/pkg/reasoner"
	"github.com/gitrdm/sys2/pkg/vocabulary"
)

func TestDomainRemoveAndRestore(t *testing.T) {
	dm := NewDomainManager()
	d := dm.Declare("X", []string{"a", "b", "c"})
	require.Equal(t, 3, d.Size())

	mark := dm.Mark()
	d.Remove("b")
	require.Equal(t, 2, d.Size())
	require.False(t, d.Has("b"))

	dm.Rollback(mark)
	require.Equal(t, 3, d.Size())
	require.True(t, d.Has("b"))
}

func TestDeclareFromTypeUsesReasonerFindAll(t *testing.T) {
	store := kb.New(true)
	_, err := store.Add("isA", []string{"Rex", "Dog"}, kb.Positive, 1, nil)
	require.NoError(t, err)
	_, err = store.Add("isA", []string{"Fido", "Dog"}, kb.Positive, 2, nil)
	require.NoError(t, err)

	r := reasoner.New(store, nil, reasoner.DefaultConfig())
	dm := NewDomainManager()
	d := dm.DeclareFromType(r, "Pet", "Dog")
	require.ElementsMatch(t, []string{"Rex", "Fido"}, d.Current)
}

func TestAllDifferentEvaluateAndPropagate(t *testing.T) {
	dm := NewDomainManager()
	dm.Declare("X", []string{"1", "2", "3"})
	dm.Declare("Y", []string{"1", "2", "3"})
	c := &AllDifferent{Vars: []string{"X", "Y"}}

	dm.Get("X").Assign("1")
	conflict := c.Propagate(dm, "X", "1")
	require.False(t, conflict)
	require.False(t, dm.Get("Y").Has("1"))

	dm.Get("Y").Assign("2")
	require.True(t, c.Evaluate(dm, nil))

	dm.Get("Y").Unassign()
	dm.Get("Y").Assign("1")
	require.False(t, c.Evaluate(dm, nil))
}

func TestRelationalHoldsOnKBFact(t *testing.T) {
	store := kb.New(true)
	_, err := store.Add("likes", []string{"Alice", "Cake"}, kb.Positive, 1, nil)
	require.NoError(t, err)

	dm := NewDomainManager()
	dm.Declare("G", []string{"Alice", "Bob"})
	dm.Declare("F", []string{"Cake", "Pie"})
	c := &Relational{Operator: "likes", ArgPattern: []string{"G", "F"}}

	dm.Get("G").Assign("Alice")
	dm.Get("F").Assign("Cake")
	require.True(t, c.Evaluate(dm, store))

	dm.Get("F").Unassign()
	dm.Get("F").Assign("Pie")
	require.False(t, c.Evaluate(dm, store))
}

func TestNoConflictTwoArgForm(t *testing.T) {
	store := kb.New(true)
	_, err := store.Add("conflictsWith", []string{"Alice", "Bob"}, kb.Positive, 1, nil)
	require.NoError(t, err)

	dm := NewDomainManager()
	dm.Declare("Alice", []string{"Table1", "Table2"})
	dm.Declare("Bob", []string{"Table1", "Table2"})
	c := &NoConflict{P1: "Alice", P2: "Bob"}

	dm.Get("Alice").Assign("Table1")
	dm.Get("Bob").Assign("Table1")
	require.False(t, c.Evaluate(dm, store))

	dm.Get("Bob").Unassign()
	dm.Get("Bob").Assign("Table2")
	require.True(t, c.Evaluate(dm, store))
}

func TestCapacityLimitsGuestsPerTable(t *testing.T) {
	dm := NewDomainManager()
	dm.Declare("Table", []string{"T1"})
	dm.Declare("G1", []string{"T1"})
	dm.Declare("G2", []string{"T1"})
	dm.Declare("G3", []string{"T1"})
	c := &Capacity{TableVar: "Table", GuestVars: []string{"G1", "G2", "G3"}, Max: 2}

	dm.Get("Table").Assign("T1")
	dm.Get("G1").Assign("T1")
	dm.Get("G2").Assign("T1")
	require.True(t, c.Evaluate(dm, nil))

	dm.Get("G3").Assign("T1")
	require.False(t, c.Evaluate(dm, nil))
}

func TestSolveAllDifferentFindsAllSolutions(t *testing.T) {
	dm := NewDomainManager()
	dm.Declare("X", []string{"1", "2"})
	dm.Declare("Y", []string{"1", "2"})
	constraints := []Constraint{&AllDifferent{Vars: []string{"X", "Y"}}}

	solver := NewSolver(dm, constraints, kb.New(true), DefaultConfig())
	res, err := solver.Solve(context.Background())
	require.NoError(t, err)
	require.False(t, res.Truncated)
	require.False(t, res.TimedOut)
	require.Len(t, res.Solutions, 2)
	for _, sol := range res.Solutions {
		require.NotEqual(t, sol.Assignment["X"], sol.Assignment["Y"])
	}
}

func TestSolveRespectsMaxSolutions(t *testing.T) {
	dm := NewDomainManager()
	dm.Declare("X", []string{"1", "2", "3"})
	cfg := DefaultConfig()
	cfg.MaxSolutions = 2
	solver := NewSolver(dm, nil, kb.New(true), cfg)
	res, err := solver.Solve(context.Background())
	require.NoError(t, err)
	require.True(t, res.Truncated)
	require.Len(t, res.Solutions, 2)
}

func TestSolveUnsatisfiableReturnsNoSolutions(t *testing.T) {
	dm := NewDomainManager()
	dm.Declare("X", []string{"1"})
	dm.Declare("Y", []string{"1"})
	constraints := []Constraint{&AllDifferent{Vars: []string{"X", "Y"}}}

	solver := NewSolver(dm, constraints, kb.New(true), DefaultConfig())
	res, err := solver.Solve(context.Background())
	require.NoError(t, err)
	require.Empty(t, res.Solutions)
}

func TestMaterializeWritesAssignmentsAndSolutionVector(t *testing.T) {
	store := kb.New(true)
	hctx := hdvector.NewHdcContext()
	vocab := vocabulary.New(hdvector.Exact, hdvector.Geom512, hctx)
	positions := hdvector.NewPositionRegistry(hdvector.Exact, hdvector.Geom512, hctx)
	m := NewMaterializer(store, vocab, positions, hctx)

	sol := Solution{Assignment: map[string]string{"X": "1", "Y": "2"}, Order: []string{"X", "Y"}}
	assignments, solEntry, err := m.Materialize(sol, 1)
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	require.Equal(t, "__solution__", solEntry.Operator)
	require.Equal(t, []string{"1", "2"}, solEntry.Args)

	found := store.FindAll("assignment", []string{"X", ""})
	require.Len(t, found, 1)
	require.Equal(t, []string{"X", "1"}, found[0].Args)
}
