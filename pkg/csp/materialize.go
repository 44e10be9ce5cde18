package csp

import (
	"github.com/gitrdm/sys2/internal/errs"
	"github.com/gitrdm/sys2/pkg/hdvector"
	"github.com/gitrdm/sys2/pkg/kb"
	"github.com/gitrdm/sys2/pkg/vocabulary"
)

// solutionOperator is the synthetic KB operator a solved CSP
// assignment is bundled under, per SPEC_FULL.md §13: "each CSP
// solution gets a compound statement vector bound into the KB under a
// synthetic operator __solution__, queryable via findAll with a hole
// on the table/assignment position."
const solutionOperator = "__solution__"

// Materializer writes CSP solutions back into the session KB
// (spec.md §4.8: "solutions may be materialized back into the KB as
// assignment(var, value) facts and as a compound solution vector").
// Builds the same "operator bundled with positional binds" shape as the
// executor's buildStatementVector, with its own local copy of that
// algorithm.
type Materializer struct {
	KB        *kb.KB
	Vocab     *vocabulary.Vocabulary
	Positions *hdvector.PositionRegistry
	HDC       *hdvector.HdcContext
}

// NewMaterializer creates a Materializer sharing the session's KB and
// vector substrate. hctx is the same HdcContext threaded through the
// session's Vocabulary/PositionRegistry, so solution materialization
// contributes to the same session-local hdcBindOps/hdcBundleOps
// counters as ordinary learn()/prove() traffic.
func NewMaterializer(store *kb.KB, vocab *vocabulary.Vocabulary, positions *hdvector.PositionRegistry, hctx *hdvector.HdcContext) *Materializer {
	return &Materializer{KB: store, Vocab: vocab, Positions: positions, HDC: hctx}
}

// Materialize writes one solution's per-variable assignment(var,
// value) facts plus a single bundled solution-vector fact, all tagged
// with sourceStatementID. Like ordinary facts, they are undone by a KB
// Rollback to a Mark taken before they were added.
func (m *Materializer) Materialize(sol Solution, sourceStatementID int) ([]*kb.Entry, *kb.Entry, error) {
	var entries []*kb.Entry
	for _, v := range sol.Order {
		value := sol.Assignment[v]
		vec, err := m.assignmentVector(v, value)
		if err != nil {
			return nil, nil, err
		}
		e, err := m.KB.Add("assignment", []string{v, value}, kb.Positive, sourceStatementID, vec)
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, e)
	}

	solVec, solArgs, err := m.solutionVector(sol)
	if err != nil {
		return nil, nil, err
	}
	solEntry, err := m.KB.Add(solutionOperator, solArgs, kb.Positive, sourceStatementID, solVec)
	if err != nil {
		return nil, nil, err
	}
	return entries, solEntry, nil
}

func (m *Materializer) assignmentVector(variable, value string) (hdvector.Vector, error) {
	opVec, err := m.Vocab.GetOrCreate("assignment")
	if err != nil {
		return nil, err
	}
	varVec, err := m.Vocab.GetOrCreate(variable)
	if err != nil {
		return nil, err
	}
	valVec, err := m.Vocab.GetOrCreate(value)
	if err != nil {
		return nil, err
	}
	pos1, err := m.Positions.Position(1)
	if err != nil {
		return nil, err
	}
	pos2, err := m.Positions.Position(2)
	if err != nil {
		return nil, err
	}
	b1, err := m.HDC.Bind(pos1, varVec)
	if err != nil {
		return nil, err
	}
	b2, err := m.HDC.Bind(pos2, valVec)
	if err != nil {
		return nil, err
	}
	return m.HDC.Bundle([]hdvector.Vector{opVec, b1, b2})
}

// solutionVector bundles every variable's assigned value, in
// declaration order, under the synthetic __solution__ operator — the
// "bundle of positional binds" spec.md §4.8 describes, and the
// argument list doubles as the KB args tuple so findAll can later
// query it with a hole at any position.
func (m *Materializer) solutionVector(sol Solution) (hdvector.Vector, []string, error) {
	if len(sol.Order) > hdvector.MaxPositions {
		return nil, nil, errs.ArityMismatch(solutionOperator, hdvector.MaxPositions, len(sol.Order))
	}
	opVec, err := m.Vocab.GetOrCreate(solutionOperator)
	if err != nil {
		return nil, nil, err
	}
	args := make([]string, len(sol.Order))
	for i, v := range sol.Order {
		value := sol.Assignment[v]
		args[i] = value
		valVec, err := m.Vocab.GetOrCreate(value)
		if err != nil {
			return nil, nil, err
		}
		pos, err := m.Positions.Position(i + 1)
		if err != nil {
			return nil, nil, err
		}
		bound, err := m.HDC.Bind(pos, valVec)
		if err != nil {
			return nil, nil, err
		}
		opVec, err = m.HDC.Bundle([]hdvector.Vector{opVec, bound})
		if err != nil {
			return nil, nil, err
		}
	}
	return opVec, args, nil
}
