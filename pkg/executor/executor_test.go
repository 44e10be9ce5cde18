package executor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/sys2/pkg/dsl"
	"github.com/gitrdm/sys2/pkg/hdvector"
	"github.com/gitrdm/sys2/pkg/kb"
	"github.com/gitrdm/sys2/pkg/rule"
	"github.com/gitrdm/sys2/pkg/scope"
	"github.com/gitrdm/sys2/pkg/vocabulary"
)

func newExecutor(t *testing.T) *Executor {
	t.Helper()
	strat := hdvector.Exact
	geom := hdvector.Geom512
	hctx := hdvector.NewHdcContext()
	vocab := vocabulary.New(strat, geom, hctx)
	sc := scope.New()
	store := kb.New(true)
	rules := rule.New()
	positions := hdvector.NewPositionRegistry(strat, geom, hctx)
	return New(vocab, sc, store, rules, positions, strat, geom, 3, hctx)
}

func mustParse(t *testing.T, src string) []*dsl.Statement {
	t.Helper()
	prog, errs := dsl.Parse(src)
	require.Empty(t, errs)
	return prog.Statements
}

func TestLearnSimpleFact(t *testing.T) {
	e := newExecutor(t)
	stmts := mustParse(t, "isA Rex Dog\n")
	res, err := e.Learn(stmts)
	require.NoError(t, err)
	require.Equal(t, 1, res.FactsAdded)
	require.Equal(t, 1, e.KB.Len())
	entries := e.KB.ByOperator("isA")
	require.Len(t, entries, 1)
	require.Equal(t, []string{"Rex", "Dog"}, entries[0].Args)
}

func TestLearnNamedFactIsScopedNotKBResident(t *testing.T) {
	e := newExecutor(t)
	stmts := mustParse(t, "@fact isA Rex Dog\n")
	res, err := e.Learn(stmts)
	require.NoError(t, err)
	require.Equal(t, 0, res.FactsAdded)
	require.Equal(t, 0, e.KB.Len())
	require.True(t, e.Scope.Has("fact"))
}

func TestLearnDedupesIdenticalFacts(t *testing.T) {
	e := newExecutor(t)
	stmts := mustParse(t, "isA Rex Dog\nisA Rex Dog\n")
	_, err := e.Learn(stmts)
	require.NoError(t, err)
	require.Equal(t, 1, e.KB.Len())
}

func TestLearnNotNegatesReferencedFact(t *testing.T) {
	e := newExecutor(t)
	stmts := mustParse(t, "@f can Opus Fly\n@n1 Not $f\n")
	_, err := e.Learn(stmts)
	require.NoError(t, err)
	require.True(t, e.KB.Has("can", []string{"Opus", "Fly"}, kb.Negative))
	require.False(t, e.KB.Has("can", []string{"Opus", "Fly"}, kb.Positive))
}

func TestLearnContradictionRejected(t *testing.T) {
	e := newExecutor(t)
	stmts := mustParse(t, "can Opus Fly\n@g can Opus Fly\n@n1 Not $g\n")
	_, err := e.Learn(stmts)
	require.Error(t, err)
}

func TestLearnImpliesRegistersRule(t *testing.T) {
	e := newExecutor(t)
	src := "@c1 hasProperty Bob big\n@c2 hasProperty Bob cold\n@a And $c1 $c2\n@k hasProperty Bob green\n@r Implies $a $k\n"
	stmts := mustParse(t, src)
	res, err := e.Learn(stmts)
	require.NoError(t, err)
	require.Equal(t, 1, res.RulesAdded)
	require.Equal(t, 1, e.Rules.Len())
	r := e.Rules.All()[0]
	require.Equal(t, "hasProperty", r.Consequent.Operator)
	andCond, ok := r.Antecedent.(*rule.And)
	require.True(t, ok)
	_ = andCond
}

func TestLearnRuleTemplateWithHoleIsNotAddedToKB(t *testing.T) {
	e := newExecutor(t)
	stmts := mustParse(t, "@birdFly can ?x Fly\n")
	_, err := e.Learn(stmts)
	require.NoError(t, err)
	require.Equal(t, 0, e.KB.Len())
	require.True(t, e.Scope.Has("birdFly"))
}

func TestLearnUnboundReference(t *testing.T) {
	e := newExecutor(t)
	stmts := mustParse(t, "@a isA $nope Dog\n")
	_, err := e.Learn(stmts)
	require.Error(t, err)
}

func TestGraphInvocationBindsParamsAndWritesToKB(t *testing.T) {
	e := newExecutor(t)
	src := "@g graph x y\n  isA $x $y\n  @rel isA $x $y\n  return $rel\nend\n@result g Rex Dog\n"
	stmts := mustParse(t, src)
	_, err := e.Learn(stmts)
	require.NoError(t, err)
	require.True(t, e.KB.Has("isA", []string{"Rex", "Dog"}, kb.Positive))
}

func TestMacroInvocationDoesNotWriteToSessionKB(t *testing.T) {
	e := newExecutor(t)
	src := "@m macro x\n  @r isA $x Dog\nend\n@out m Rex\n"
	stmts := mustParse(t, src)
	_, err := e.Learn(stmts)
	require.NoError(t, err)
	require.Equal(t, 0, e.KB.Len())
	require.True(t, e.Scope.Has("out"))
}
