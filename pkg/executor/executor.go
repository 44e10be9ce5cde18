// Package executor implements component C6 (spec.md §4.6): it walks
// parsed sys2 statements, resolves identifiers/references/holes into
// hypervectors, maintains the statement-level scope bindings, and
// drives KB/rule-store writes during learn(). Grounded on the
// teacher's dcg.go ("rules describe goals rather than executing them
// directly" — sys2 statements likewise describe facts/conditions that
// are only turned into KB writes or rule entries once the executor
// classifies their operator) and highlevel_api_pldb.go's
// fact-construction helpers.
package executor

import (
	"github.com/gitrdm/sys2/internal/errs"
	"github.com/gitrdm/sys2/pkg/dsl"
	"github.com/gitrdm/sys2/pkg/hdvector"
	"github.com/gitrdm/sys2/pkg/kb"
	"github.com/gitrdm/sys2/pkg/rule"
	"github.com/gitrdm/sys2/pkg/scope"
	"github.com/gitrdm/sys2/pkg/vocabulary"
)

// Control operators never produce a KB fact or a plain vector of their
// own; they manipulate scope/rule-store state instead (spec.md §6
// "reserved operators").
const (
	opNot     = "Not"
	opAnd     = "And"
	opOr      = "Or"
	opImplies = "Implies"
)

// HoleMarker is the resolve() sentinel for an unbound `?name` (spec.md
// §4.6: "Hole → the sentinel HoleMarker(n); only permitted in query
// contexts").
type HoleMarker struct {
	Name string
}

// Binding is what a scope frame holds for one named statement: its raw
// AST (needed so a later Implies can dereference it structurally, per
// spec.md §4.7's "rule conclusion dereferencing"), its computed vector
// when the statement is ground, and the KB entry it produced, if any.
type Binding struct {
	Stmt   *dsl.Statement
	Vector hdvector.Vector
	Entry  *kb.Entry
	// Condition is set for And/Or/Not statements: the symbolic
	// condition tree they constructed, for later Implies antecedents.
	Condition rule.Condition
}

// Executor holds everything needed to turn statements into vectors, KB
// writes, and rule-store entries for one session.
type Executor struct {
	Vocab     *vocabulary.Vocabulary
	Scope     *scope.Scope
	KB        *kb.KB
	Rules     *rule.Store
	Positions *hdvector.PositionRegistry
	Strategy  hdvector.Strategy
	Geometry  hdvector.Geometry
	HDC       *hdvector.HdcContext

	// RecursionHorizon bounds graph/macro call nesting (spec.md §4.6,
	// default 3, configurable 1-5).
	RecursionHorizon int

	nextStatementID int
	callDepth       int
}

// New builds an Executor over session-owned state.
func New(vocab *vocabulary.Vocabulary, sc *scope.Scope, k *kb.KB, rules *rule.Store, positions *hdvector.PositionRegistry, strategy hdvector.Strategy, geom hdvector.Geometry, recursionHorizon int, hctx *hdvector.HdcContext) *Executor {
	return &Executor{
		Vocab:            vocab,
		Scope:            sc,
		KB:               k,
		Rules:            rules,
		Positions:        positions,
		Strategy:         strategy,
		Geometry:         geom,
		HDC:              hctx,
		RecursionHorizon: recursionHorizon,
	}
}

// LearnResult summarizes one learn() call's effects.
type LearnResult struct {
	FactsAdded int
	RulesAdded int
}

// Learn executes every top-level statement in order. On any error the
// caller is expected to roll back the KB and rule-store snapshots taken
// before calling Learn — Learn itself performs no rollback, since the
// session facade (pkg/session) owns the snapshot/rollback transaction
// boundary (spec.md §3: "on failure the whole learn call is rolled
// back").
func (e *Executor) Learn(stmts []*dsl.Statement) (*LearnResult, error) {
	res := &LearnResult{}
	for _, stmt := range stmts {
		added, err := e.execute(stmt)
		if err != nil {
			return res, err
		}
		if added.fact {
			res.FactsAdded++
		}
		if added.rule {
			res.RulesAdded++
		}
	}
	return res, nil
}

type effect struct {
	fact bool
	rule bool
}

func (e *Executor) execute(stmt *dsl.Statement) (effect, error) {
	e.nextStatementID++
	id := e.nextStatementID

	if stmt.Block != nil {
		// A macro/graph/theory definition: bind its AST in scope, no
		// vector or KB write at definition time.
		return e.defineBlock(stmt)
	}

	if binding, invoked, err := e.tryInvoke(stmt, id); invoked {
		if err != nil {
			return effect{}, err
		}
		return e.bind(stmt, binding)
	}

	switch stmt.Operator {
	case opNot:
		return e.executeNot(stmt, id)
	case opAnd, opOr:
		return e.executeAndOr(stmt, id)
	case opImplies:
		return e.executeImplies(stmt, id)
	default:
		return e.executeFact(stmt, id)
	}
}

func (e *Executor) bind(stmt *dsl.Statement, b *Binding) (effect, error) {
	if stmt.Dest != "" {
		if err := e.defineScope(stmt.Dest, b); err != nil {
			return effect{}, err
		}
	}
	return effect{fact: b.Entry != nil}, nil
}

func (e *Executor) defineScope(name string, b *Binding) error {
	return e.Scope.Define(name, b)
}

// defineBlock binds a MacroDef/GraphDef/TheoryDecl's own statement AST
// in scope (for TheoryDecl it additionally executes its body inline,
// since a theory is a namespacing wrapper, not a callable).
func (e *Executor) defineBlock(stmt *dsl.Statement) (effect, error) {
	if stmt.Dest != "" {
		if err := e.Scope.Define(stmt.Dest, &Binding{Stmt: stmt}); err != nil {
			return effect{}, err
		}
	}
	if theory, ok := stmt.Block.(*dsl.TheoryDecl); ok {
		if _, err := e.Learn(theory.Body); err != nil {
			return effect{}, err
		}
	}
	return effect{}, nil
}

// hasHole reports whether any argument of stmt resolves to a bare
// Hole node (a rule template rather than a ground fact).
func hasHole(args []dsl.Node) bool {
	for _, a := range args {
		if _, ok := a.(*dsl.Hole); ok {
			return true
		}
	}
	return false
}

// executeFact builds an ordinary ground fact and, if the statement is
// anonymous, inserts it into the KB immediately. A statement whose args
// contain a Hole is a rule template: if named, executeFact binds its raw
// AST in scope, but it produces neither a vector nor a KB write until a
// rule dereferences it.
//
// A named fact (Dest != "") is only bound in scope, not KB-inserted
// (spec.md §3: "anonymous statements go directly to KB"; a named one is
// "bound in scope" instead) — it only reaches the KB if something later
// dereferences it, e.g. as an Implies consequent (derefFact reads
// Binding.Stmt directly, never Binding.Entry).
func (e *Executor) executeFact(stmt *dsl.Statement, id int) (effect, error) {
	if hasHole(stmt.Args) {
		if stmt.Dest != "" {
			if err := e.Scope.Define(stmt.Dest, &Binding{Stmt: stmt}); err != nil {
				return effect{}, err
			}
		}
		return effect{}, nil
	}

	vec, argNames, err := e.buildStatementVector(stmt, false)
	if err != nil {
		return effect{}, err
	}

	if stmt.Dest != "" {
		b := &Binding{Stmt: stmt, Vector: vec}
		if err := e.Scope.Define(stmt.Dest, b); err != nil {
			return effect{}, err
		}
		return effect{}, nil
	}

	_, err = e.KB.Add(stmt.Operator, argNames, kb.Positive, id, vec)
	if err != nil {
		return effect{}, err
	}
	return effect{fact: true}, nil
}

// executeNot negates the single fact its argument dereferences to.
func (e *Executor) executeNot(stmt *dsl.Statement, id int) (effect, error) {
	if len(stmt.Args) != 1 {
		return effect{}, errs.ArityMismatch(opNot, 1, len(stmt.Args))
	}
	target, err := e.derefFact(stmt.Args[0])
	if err != nil {
		return effect{}, err
	}
	vec, err := e.buildVectorFromTokens(target.Operator, target.Args)
	if err != nil {
		return effect{}, err
	}
	entry, err := e.KB.Add(target.Operator, target.Args, kb.Negative, id, vec)
	if err != nil {
		return effect{}, err
	}
	b := &Binding{Stmt: stmt, Entry: entry}
	if stmt.Dest != "" {
		if err := e.Scope.Define(stmt.Dest, b); err != nil {
			return effect{}, err
		}
	}
	return effect{fact: true}, nil
}

// executeAndOr builds a Condition tree combinator from two dereferenced
// operands and binds it in scope; neither a vector nor a KB write is
// produced.
func (e *Executor) executeAndOr(stmt *dsl.Statement, id int) (effect, error) {
	if len(stmt.Args) != 2 {
		return effect{}, errs.ArityMismatch(stmt.Operator, 2, len(stmt.Args))
	}
	a, err := e.derefCondition(stmt.Args[0])
	if err != nil {
		return effect{}, err
	}
	c, err := e.derefCondition(stmt.Args[1])
	if err != nil {
		return effect{}, err
	}
	var cond rule.Condition
	if stmt.Operator == opAnd {
		cond = &rule.And{A: a, B: c}
	} else {
		cond = &rule.Or{A: a, B: c}
	}
	b := &Binding{Stmt: stmt, Condition: cond}
	if stmt.Dest != "" {
		if err := e.Scope.Define(stmt.Dest, b); err != nil {
			return effect{}, err
		}
	}
	return effect{}, nil
}

// executeImplies registers a rule from a dereferenced antecedent
// condition tree and a dereferenced consequent fact template.
func (e *Executor) executeImplies(stmt *dsl.Statement, id int) (effect, error) {
	if len(stmt.Args) != 2 {
		return effect{}, errs.ArityMismatch(opImplies, 2, len(stmt.Args))
	}
	antecedent, err := e.derefCondition(stmt.Args[0])
	if err != nil {
		return effect{}, err
	}
	consequent, err := e.derefFact(stmt.Args[1])
	if err != nil {
		return effect{}, err
	}
	e.Rules.Add(antecedent, consequent, id)
	b := &Binding{Stmt: stmt}
	if stmt.Dest != "" {
		if err := e.Scope.Define(stmt.Dest, b); err != nil {
			return effect{}, err
		}
	}
	return effect{rule: true}, nil
}

// derefFact resolves a Reference node to the raw Statement it points
// at, and reduces that Statement to a *rule.Fact leaf (operator plus
// string args, preserving "?name" for holes).
func (e *Executor) derefFact(n dsl.Node) (*rule.Fact, error) {
	ref, ok := n.(*dsl.Reference)
	if !ok {
		return nil, errs.UnboundReference("<non-reference operand>")
	}
	raw, err := e.Scope.Get(ref.Name)
	if err != nil {
		return nil, err
	}
	binding, ok := raw.(*Binding)
	if !ok || binding.Stmt == nil {
		return nil, errs.UnboundReference(ref.Name)
	}
	return statementToFact(binding.Stmt), nil
}

// derefCondition resolves a Reference to either a cached Condition
// (from an earlier And/Or/Not statement) or a plain fact leaf.
func (e *Executor) derefCondition(n dsl.Node) (rule.Condition, error) {
	ref, ok := n.(*dsl.Reference)
	if !ok {
		return nil, errs.UnboundReference("<non-reference operand>")
	}
	raw, err := e.Scope.Get(ref.Name)
	if err != nil {
		return nil, err
	}
	binding, ok := raw.(*Binding)
	if !ok {
		return nil, errs.UnboundReference(ref.Name)
	}
	if binding.Condition != nil {
		return binding.Condition, nil
	}
	if binding.Stmt == nil {
		return nil, errs.UnboundReference(ref.Name)
	}
	if binding.Stmt.Operator == opNot {
		inner, err := e.derefCondition(binding.Stmt.Args[0])
		if err != nil {
			return nil, err
		}
		return &rule.Not{Inner: inner}, nil
	}
	return statementToFact(binding.Stmt), nil
}

func statementToFact(stmt *dsl.Statement) *rule.Fact {
	args := make([]string, len(stmt.Args))
	for i, a := range stmt.Args {
		args[i] = argToken(a)
	}
	return &rule.Fact{Operator: stmt.Operator, Args: args}
}

// argToken renders an Expr node's canonical string form for KB/rule
// storage: an Identifier's name, a Hole's "?name", a Reference's
// "$name", or a Literal's canonical text (buildStatementVector replaces
// a Reference's "$name" with the atom name its vector decodes to, when it
// decodes to one). Compound
// arguments are not valid fact arguments and render as their operator
// name — building a vector for them goes through buildStatementVector
// instead.
func argToken(n dsl.Node) string {
	switch v := n.(type) {
	case *dsl.Identifier:
		return v.Name
	case *dsl.Hole:
		return "?" + v.Name
	case *dsl.Reference:
		return "$" + v.Name
	case *dsl.Literal:
		return v.Text
	case *dsl.Compound:
		if op, ok := v.Operator.(*dsl.Identifier); ok {
			return op.Name
		}
		return "<compound>"
	default:
		return "<?>"
	}
}
