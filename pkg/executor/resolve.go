package executor

import (
	"fmt"

	"github.com/gitrdm/sys2/internal/errs"
	"github.com/gitrdm/sys2/pkg/dsl"
	"github.com/gitrdm/sys2/pkg/hdvector"
)

// buildStatementVector implements spec.md §4.6's algorithm:
//
//	opVec = resolve(stmt.operator)
//	for i = 1..K: argVec = resolve(stmt.args[i-1]); opVec = bundle(opVec, bind(Pos_i, argVec))
//
// allowHoles permits Hole arguments (the query-with-holes entry point);
// it is false for ordinary learn()-time fact construction. It also
// returns the canonical string token for each argument, for KB storage.
func (e *Executor) buildStatementVector(stmt *dsl.Statement, allowHoles bool) (hdvector.Vector, []string, error) {
	if stmt.Operator == "" {
		return nil, nil, errs.UnknownOperator("<missing operator>")
	}
	if len(stmt.Args) > hdvector.MaxPositions {
		return nil, nil, errs.ArityMismatch(stmt.Operator, hdvector.MaxPositions, len(stmt.Args))
	}

	opVec, err := e.Vocab.GetOrCreate(stmt.Operator)
	if err != nil {
		return nil, nil, err
	}

	argNames := make([]string, len(stmt.Args))
	for i, arg := range stmt.Args {
		argVec, err := e.resolve(arg, allowHoles)
		if err != nil {
			return nil, nil, err
		}
		pos, err := e.Positions.Position(i + 1)
		if err != nil {
			return nil, nil, err
		}
		bound, err := e.HDC.Bind(pos, argVec)
		if err != nil {
			return nil, nil, err
		}
		opVec, err = e.HDC.Bundle([]hdvector.Vector{opVec, bound})
		if err != nil {
			return nil, nil, err
		}
		argNames[i] = argToken(arg)
		if _, isRef := arg.(*dsl.Reference); isRef {
			if name, ok := e.Vocab.Decode(argVec); ok {
				argNames[i] = name
			}
		}
	}
	return opVec, argNames, nil
}

// resolve implements spec.md §4.6's five Expr cases.
func (e *Executor) resolve(n dsl.Node, allowHoles bool) (hdvector.Vector, error) {
	switch v := n.(type) {
	case *dsl.Identifier:
		return e.Vocab.GetOrCreate(v.Name)
	case *dsl.Reference:
		raw, err := e.Scope.Get(v.Name)
		if err != nil {
			return nil, err
		}
		b, ok := raw.(*Binding)
		if !ok || b.Vector == nil {
			return nil, errs.UnboundReference(v.Name)
		}
		return b.Vector, nil
	case *dsl.Hole:
		if !allowHoles {
			return nil, errs.HoleInNonQueryContext(v.Name)
		}
		return hdvector.CreateFromName(holeVectorName(v.Name), e.Geometry, e.Strategy, e.HDC)
	case *dsl.Literal:
		return hdvector.CreateFromName(literalVectorName(v), e.Geometry, e.Strategy, e.HDC)
	case *dsl.Compound:
		return e.resolveCompound(v, allowHoles)
	default:
		return nil, errs.UnknownOperator(fmt.Sprintf("%T", n))
	}
}

func holeVectorName(name string) string {
	return "__HOLE_" + name + "__"
}

func literalVectorName(lit *dsl.Literal) string {
	switch lit.Kind {
	case dsl.LiteralString:
		return "__LIT_string_" + lit.Text + "__"
	case dsl.LiteralNumber:
		return "__LIT_number_" + lit.Text + "__"
	default:
		return "__LIT_unknown_" + lit.Text + "__"
	}
}

// buildVectorFromTokens rebuilds a statement vector from already
// resolved argument tokens (as stored on a *rule.Fact), rather than
// from raw AST nodes — used when a KB entry is derived from a
// dereferenced fact (executeNot) instead of a freshly parsed
// statement. Each token is looked up (or created) as a vocabulary atom,
// so a hole template's "?name" tokens, which derefFact also returns, are
// treated here as ordinary atom names.
func (e *Executor) buildVectorFromTokens(operator string, args []string) (hdvector.Vector, error) {
	if len(args) > hdvector.MaxPositions {
		return nil, errs.ArityMismatch(operator, hdvector.MaxPositions, len(args))
	}
	opVec, err := e.Vocab.GetOrCreate(operator)
	if err != nil {
		return nil, err
	}
	for i, arg := range args {
		argVec, err := e.Vocab.GetOrCreate(arg)
		if err != nil {
			return nil, err
		}
		pos, err := e.Positions.Position(i + 1)
		if err != nil {
			return nil, err
		}
		bound, err := e.HDC.Bind(pos, argVec)
		if err != nil {
			return nil, err
		}
		opVec, err = e.HDC.Bundle([]hdvector.Vector{opVec, bound})
		if err != nil {
			return nil, err
		}
	}
	return opVec, nil
}

// resolveCompound recurses buildStatementVector on a synthetic
// statement built from the Compound's operator/args, per spec.md §4.6
// ("Compound → recurse buildStatementVector on a synthetic statement").
func (e *Executor) resolveCompound(c *dsl.Compound, allowHoles bool) (hdvector.Vector, error) {
	opIdent, ok := c.Operator.(*dsl.Identifier)
	if !ok {
		return nil, errs.UnknownOperator("<non-identifier compound operator>")
	}
	synthetic := &dsl.Statement{Operator: opIdent.Name, Args: c.Args, Line: c.Line, Col: c.Col}
	vec, _, err := e.buildStatementVector(synthetic, allowHoles)
	return vec, err
}
