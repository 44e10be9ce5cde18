package csp

import "github.com/gitrdm/sys2/pkg/kb"

// Constraint is one checkable condition over a set of CSP variables
// (spec.md §4.8). "checkable" in the spec's sense — "a constraint is
// checkable iff all its variables are bound; partially-bound
// constraints return true" — is implemented generically by the search
// loop via Variables()/DomainManager.IsAssigned, not by each
// constraint, so every Evaluate implementation may assume its
// variables are all bound.
type Constraint interface {
	Variables() []string
	Evaluate(dm *DomainManager, store *kb.KB) bool
}

// Propagator is the optional forward-checking half of a Constraint:
// after a variable is committed, Propagate prunes neighbouring
// domains, returning true if a domain was emptied (signalling an
// immediate backtrack). Grounded on fd_solver.go's
// AddAllDifferentRegin-style incremental filtering.
type Propagator interface {
	Propagate(dm *DomainManager, assignedVar, value string) (conflict bool)
}

// checkable reports whether every CSP variable referenced by vars is
// assigned. Tokens in vars that aren't declared domain variables
// (literal constants in a Relational's ArgPattern, for instance) are
// treated as already resolved and never block checkability.
func checkable(vars []string, dm *DomainManager) bool {
	for _, v := range vars {
		if dm.Has(v) && !dm.IsAssigned(v) {
			return false
		}
	}
	return true
}

// Relational holds iff a positive KB fact with the given operator
// exists once every variable in ArgPattern is resolved to its bound
// domain value (literal tokens in ArgPattern that aren't declared
// domain variables pass through unchanged).
type Relational struct {
	Operator   string
	ArgPattern []string
}

func (c *Relational) Variables() []string { return c.ArgPattern }

func (c *Relational) resolvedArgs(dm *DomainManager) []string {
	args := make([]string, len(c.ArgPattern))
	for i, a := range c.ArgPattern {
		if dm.Has(a) {
			args[i] = dm.Value(a)
		} else {
			args[i] = a
		}
	}
	return args
}

func (c *Relational) Evaluate(dm *DomainManager, store *kb.KB) bool {
	_, ok := store.Lookup(c.Operator, c.resolvedArgs(dm), kb.Positive)
	return ok
}

// Not negates Inner once Inner is fully bound.
type Not struct {
	Inner Constraint
}

func (c *Not) Variables() []string { return c.Inner.Variables() }

func (c *Not) Evaluate(dm *DomainManager, store *kb.KB) bool {
	return !c.Inner.Evaluate(dm, store)
}

// And holds iff every inner constraint holds.
type And struct {
	Inners []Constraint
}

func (c *And) Variables() []string { return unionVariables(c.Inners) }

func (c *And) Evaluate(dm *DomainManager, store *kb.KB) bool {
	for _, inner := range c.Inners {
		if !inner.Evaluate(dm, store) {
			return false
		}
	}
	return true
}

// Or holds iff at least one inner constraint holds.
type Or struct {
	Inners []Constraint
}

func (c *Or) Variables() []string { return unionVariables(c.Inners) }

func (c *Or) Evaluate(dm *DomainManager, store *kb.KB) bool {
	for _, inner := range c.Inners {
		if inner.Evaluate(dm, store) {
			return true
		}
	}
	return false
}

func unionVariables(inners []Constraint) []string {
	seen := make(map[string]bool)
	var out []string
	for _, inner := range inners {
		for _, v := range inner.Variables() {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// AllDifferent holds iff every variable in Vars is assigned a
// pairwise-distinct value. Also implements Propagator: once one of
// its variables is committed, the assigned value is pruned from every
// other (still-unassigned) variable's domain — the forward-checking
// analogue of the teacher's Regin-filtered all-different propagator
// (fd_solver.go's applyFDAllDifferent), simplified to plain value
// removal since sys2 domains are unordered string sets, not bounded
// integer ranges that benefit from bounds-consistency filtering.
type AllDifferent struct {
	Vars []string
}

func (c *AllDifferent) Variables() []string { return c.Vars }

func (c *AllDifferent) Evaluate(dm *DomainManager, store *kb.KB) bool {
	seen := make(map[string]bool, len(c.Vars))
	for _, v := range c.Vars {
		val := dm.Value(v)
		if seen[val] {
			return false
		}
		seen[val] = true
	}
	return true
}

func (c *AllDifferent) Propagate(dm *DomainManager, assignedVar, value string) bool {
	member := false
	for _, v := range c.Vars {
		if v == assignedVar {
			member = true
			break
		}
	}
	if !member {
		return false
	}
	for _, v := range c.Vars {
		if v == assignedVar {
			continue
		}
		d := dm.Get(v)
		if d == nil || d.Assigned {
			continue
		}
		d.Remove(value)
		if d.IsEmpty() {
			return true
		}
	}
	return false
}

// Predicate holds iff Fn returns true for the bound values of Vars, in
// Vars order. Grounded on fd_custom.go's user-supplied-callback
// constraint shape (FDCustomConstraintWrapper).
type Predicate struct {
	Vars []string
	Fn   func(values []string) bool
}

func (c *Predicate) Variables() []string { return c.Vars }

func (c *Predicate) Evaluate(dm *DomainManager, store *kb.KB) bool {
	values := make([]string, len(c.Vars))
	for i, v := range c.Vars {
		values[i] = dm.Value(v)
	}
	return c.Fn(values)
}

// NoConflict is false iff `conflictsWith(p1,p2)` is a positive KB fact
// and p1/p2 are currently assigned the same value. The 2-arg form
// compares P1's and P2's own domain values directly; the 3-arg
// `tableVar` form instead checks that both are assigned to TableVar's
// specific value (e.g. "both seated at this table"), per the Open
// Question 4 resolution in DESIGN.md: both forms are kept, with
// identical semantics once every referenced variable is bound.
type NoConflict struct {
	P1, P2   string
	TableVar string
}

func (c *NoConflict) Variables() []string {
	if c.TableVar == "" {
		return []string{c.P1, c.P2}
	}
	return []string{c.P1, c.P2, c.TableVar}
}

func (c *NoConflict) Evaluate(dm *DomainManager, store *kb.KB) bool {
	// conflictsWith is a static KB relation between party identities
	// (the variable names themselves), independent of seating.
	_, conflict := store.Lookup("conflictsWith", []string{c.P1, c.P2}, kb.Positive)
	if !conflict {
		_, conflict = store.Lookup("conflictsWith", []string{c.P2, c.P1}, kb.Positive)
	}
	if !conflict {
		return true
	}
	if c.TableVar == "" {
		return dm.Value(c.P1) != dm.Value(c.P2)
	}
	table := dm.Value(c.TableVar)
	sameTable := dm.Value(c.P1) == table && dm.Value(c.P2) == table
	return !sameTable
}

// Capacity holds iff at most Max of GuestVars are assigned the same
// value as TableVar (i.e. "seated at this table").
type Capacity struct {
	TableVar  string
	GuestVars []string
	Max       int
}

func (c *Capacity) Variables() []string {
	return append([]string{c.TableVar}, c.GuestVars...)
}

func (c *Capacity) Evaluate(dm *DomainManager, store *kb.KB) bool {
	table := dm.Value(c.TableVar)
	count := 0
	for _, g := range c.GuestVars {
		if dm.Value(g) == table {
			count++
		}
	}
	return count <= c.Max
}
