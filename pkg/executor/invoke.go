package executor

import (
	"github.com/gitrdm/sys2/internal/errs"
	"github.com/gitrdm/sys2/pkg/dsl"
	"github.com/gitrdm/sys2/pkg/kb"
)

// newScratchKB creates a throwaway KB for macro bodies: their fact
// statements still execute (so later statements in the same body can
// reference earlier ones), but nothing they produce is committed to
// the session KB.
func newScratchKB() *kb.KB {
	return kb.New(false)
}

// tryInvoke checks whether stmt.Operator names a previously defined
// GraphDef or MacroDef and, if so, invokes it. It reports invoked=false
// (not an error) when the operator is not a callable, so the caller
// falls through to ordinary fact/control-operator handling.
func (e *Executor) tryInvoke(stmt *dsl.Statement, id int) (*Binding, bool, error) {
	if stmt.Operator == "" || !e.Scope.Has(stmt.Operator) {
		return nil, false, nil
	}
	raw, err := e.Scope.Get(stmt.Operator)
	if err != nil {
		return nil, false, nil
	}
	target, ok := raw.(*Binding)
	if !ok || target.Stmt == nil || target.Stmt.Block == nil {
		return nil, false, nil
	}

	switch block := target.Stmt.Block.(type) {
	case *dsl.GraphDef:
		b, err := e.invokeGraph(block, stmt, id)
		return b, true, err
	case *dsl.MacroDef:
		b, err := e.invokeMacro(block, stmt, id)
		return b, true, err
	default:
		return nil, false, nil
	}
}

func (e *Executor) enter() error {
	if e.callDepth >= e.RecursionHorizon {
		return errs.RecursionLimit(e.RecursionHorizon)
	}
	e.callDepth++
	return nil
}

func (e *Executor) leave() { e.callDepth-- }

// bindParams resolves call-site args to vectors and defines them in a
// fresh child scope under the callable's parameter names (spec.md §4.6:
// "a fresh child scope binds parameters to argument vectors").
func (e *Executor) bindParams(params []string, args []dsl.Node, child *Executor) error {
	if len(params) != len(args) {
		return errs.ArityMismatch("<call>", len(params), len(args))
	}
	for i, param := range params {
		vec, err := e.resolve(args[i], false)
		if err != nil {
			return err
		}
		if err := child.Scope.Define(param, &Binding{Vector: vec}); err != nil {
			return err
		}
	}
	return nil
}

// childExecutor returns an Executor sharing this one's session-wide
// state (vocabulary, KB, rules, positions) but operating over a fresh
// child Scope, for one graph/macro invocation.
func (e *Executor) childExecutor() *Executor {
	child := &Executor{
		Vocab:            e.Vocab,
		Scope:            e.Scope.Child(),
		KB:               e.KB,
		Rules:            e.Rules,
		Positions:        e.Positions,
		Strategy:         e.Strategy,
		Geometry:         e.Geometry,
		HDC:              e.HDC,
		RecursionHorizon: e.RecursionHorizon,
		nextStatementID:  e.nextStatementID,
		callDepth:        e.callDepth,
	}
	return child
}

func (e *Executor) invokeGraph(g *dsl.GraphDef, call *dsl.Statement, id int) (*Binding, error) {
	if err := e.enter(); err != nil {
		return nil, err
	}
	defer e.leave()

	child := e.childExecutor()
	if err := e.bindParams(g.Params, call.Args, child); err != nil {
		return nil, err
	}
	if _, err := child.Learn(g.Body); err != nil {
		return nil, err
	}
	e.nextStatementID = child.nextStatementID

	retVec, err := child.resolve(g.Return, false)
	if err != nil {
		return nil, err
	}
	return &Binding{Stmt: call, Vector: retVec}, nil
}

// invokeMacro behaves like invokeGraph but never writes to KB: a macro
// produces a vector, not KB insertions, per spec.md §4.6. Its named
// statements are bound in the macro's own child scope (so later
// statements within the same macro body can reference them); its
// anonymous facts go to a scratch KB that is discarded rather than
// committed to the session KB.
func (e *Executor) invokeMacro(m *dsl.MacroDef, call *dsl.Statement, id int) (*Binding, error) {
	if err := e.enter(); err != nil {
		return nil, err
	}
	defer e.leave()

	child := e.childExecutor()
	child.KB = newScratchKB()
	if err := e.bindParams(m.Params, call.Args, child); err != nil {
		return nil, err
	}
	if _, err := child.Learn(m.Body); err != nil {
		return nil, err
	}
	e.nextStatementID = child.nextStatementID

	if len(m.Body) == 0 {
		return &Binding{Stmt: call}, nil
	}
	last := m.Body[len(m.Body)-1]
	lastBinding, err := child.Scope.Get(last.Dest)
	if err != nil || last.Dest == "" {
		return &Binding{Stmt: call}, nil
	}
	b, ok := lastBinding.(*Binding)
	if !ok {
		return &Binding{Stmt: call}, nil
	}
	return &Binding{Stmt: call, Vector: b.Vector}, nil
}
