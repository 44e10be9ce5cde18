package reasoner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/sys2/pkg/dsl"
	"github.com/gitrdm/sys2/pkg/executor"
	"github.com/gitrdm/sys2/pkg/hdvector"
	"github.com/gitrdm/sys2/pkg/kb"
	"github.com/gitrdm/sys2/pkg/rule"
	"github.com/gitrdm/sys2/pkg/scope"
	"github.com/gitrdm/sys2/pkg/vocabulary"
)

type harness struct {
	exec     *executor.Executor
	KB       *kb.KB
	Rules    *rule.Store
	Reasoner *Reasoner
}

func newHarness(t *testing.T, cwa bool) *harness {
	t.Helper()
	strat := hdvector.Exact
	geom := hdvector.Geom512
	hctx := hdvector.NewHdcContext()
	vocab := vocabulary.New(strat, geom, hctx)
	sc := scope.New()
	store := kb.New(true)
	rules := rule.New()
	positions := hdvector.NewPositionRegistry(strat, geom, hctx)
	exec := executor.New(vocab, sc, store, rules, positions, strat, geom, 3, hctx)
	cfg := DefaultConfig()
	cfg.ClosedWorldAssumption = cwa
	return &harness{exec: exec, KB: store, Rules: rules, Reasoner: New(store, rules, cfg)}
}

func (h *harness) learn(t *testing.T, src string) {
	t.Helper()
	prog, errs := dsl.Parse(src)
	require.Empty(t, errs)
	_, err := h.exec.Learn(prog.Statements)
	require.NoError(t, err)
}

func TestProveDirectMatch(t *testing.T) {
	h := newHarness(t, true)
	h.learn(t, "isA Rex Dog\n")
	res, err := h.Reasoner.Prove(context.Background(), &rule.Fact{Operator: "isA", Args: []string{"Rex", "Dog"}})
	require.NoError(t, err)
	require.True(t, res.Valid)
	require.Equal(t, "direct", res.Method)
}

func TestProveRuleWithAnd(t *testing.T) {
	h := newHarness(t, true)
	h.learn(t, "hasProperty Bob big\nhasProperty Bob cold\n@c1 hasProperty Bob big\n@c2 hasProperty Bob cold\n@a And $c1 $c2\n@k hasProperty Bob green\nImplies $a $k\n")
	res, err := h.Reasoner.Prove(context.Background(), &rule.Fact{Operator: "hasProperty", Args: []string{"Bob", "green"}})
	require.NoError(t, err)
	require.True(t, res.Valid)
	require.Equal(t, "rule", res.Method)
}

func TestProveExplicitNegationBeatsRule(t *testing.T) {
	h := newHarness(t, true)
	h.learn(t, "isA Opus Penguin\nisA Penguin Bird\n@birdFly can ?x Fly\n@birdCond isA ?x Bird\nImplies $birdCond $birdFly\n@neg can Opus Fly\nNot $neg\n")
	res, err := h.Reasoner.Prove(context.Background(), &rule.Fact{Operator: "can", Args: []string{"Opus", "Fly"}})
	require.NoError(t, err)
	require.False(t, res.Valid)
	require.Equal(t, "explicit negation", res.Reason)
}

func TestProveRuleDoesFireWithoutNegation(t *testing.T) {
	h := newHarness(t, true)
	h.learn(t, "isA Opus Penguin\nisA Penguin Bird\n@birdFly can ?x Fly\n@birdCond isA ?x Bird\nImplies $birdCond $birdFly\n")
	res, err := h.Reasoner.Prove(context.Background(), &rule.Fact{Operator: "can", Args: []string{"Opus", "Fly"}})
	require.NoError(t, err)
	require.True(t, res.Valid)
	require.Equal(t, "rule", res.Method)
}

func TestProveCWANegationAsFailure(t *testing.T) {
	h := newHarness(t, true)
	h.learn(t, "isA Rex Dog\n")
	res, err := h.Reasoner.Prove(context.Background(), &rule.Not{Inner: &rule.Fact{Operator: "isA", Args: []string{"Rex", "Cat"}}})
	require.NoError(t, err)
	require.True(t, res.Valid)
	require.Equal(t, "CWA", res.Method)
}

func TestProveNegationDisabledWithoutExplicitFact(t *testing.T) {
	h := newHarness(t, false)
	h.learn(t, "isA Rex Dog\n")
	res, err := h.Reasoner.Prove(context.Background(), &rule.Not{Inner: &rule.Fact{Operator: "isA", Args: []string{"Rex", "Cat"}}})
	require.NoError(t, err)
	require.False(t, res.Valid)
}

func TestProveTransitiveClosure(t *testing.T) {
	h := newHarness(t, true)
	h.learn(t, "isA Rex Dog\nisA Dog Animal\nisA Animal LivingThing\n")
	res, err := h.Reasoner.Prove(context.Background(), &rule.Fact{Operator: "isA", Args: []string{"Rex", "LivingThing"}})
	require.NoError(t, err)
	require.True(t, res.Valid)
	require.Equal(t, "transitive", res.Method)
}

func TestFindAllDirectOnly(t *testing.T) {
	h := newHarness(t, true)
	h.learn(t, "isA Rex Dog\nisA Fido Dog\n")
	entries := h.Reasoner.FindAll(&rule.Fact{Operator: "isA", Args: []string{"?x", "Dog"}})
	require.Len(t, entries, 2)
}

func TestQueryWithHoleReturnsProvenBindings(t *testing.T) {
	h := newHarness(t, true)
	h.learn(t, "isA Rex Dog\nisA Fido Dog\n")
	results, truncated, err := h.Reasoner.Query(context.Background(), &rule.Fact{Operator: "isA", Args: []string{"?x", "Dog"}}, 10)
	require.NoError(t, err)
	require.False(t, truncated)
	require.Len(t, results, 2)
	require.True(t, results[0].Proof.Valid)
}

func TestQueryRespectsMaxResults(t *testing.T) {
	h := newHarness(t, true)
	h.learn(t, "isA Rex Dog\nisA Fido Dog\nisA Milo Dog\n")
	results, truncated, err := h.Reasoner.Query(context.Background(), &rule.Fact{Operator: "isA", Args: []string{"?x", "Dog"}}, 2)
	require.NoError(t, err)
	require.True(t, truncated)
	require.Len(t, results, 2)
}
