// Package csp implements component C8 (spec.md §4.8): a constraint
// satisfaction solver over KB-derived domains, sharing the session's
// knowledge base and reasoner. Grounded on the teacher's pkg/minikanren
// finite-domain machinery (fd.go, fd_domains.go, fd_solver.go,
// labeling.go, gcc.go/diffn.go), generalized from integer FD domains to
// sys2's string-atom domains.
package csp

import "github.com/gitrdm/sys2/pkg/reasoner"
import "github.com/gitrdm/sys2/pkg/rule"

// Domain is one CSP variable's value set: the originally declared
// values, the currently-live subset (shrunk by forward checking), and
// whether a value has been committed via Assign. Mirrors spec.md
// §4.8's "(variable, originalValues, currentValues, assigned?)" shape;
// grounded on domain.go's BitSetDomain remove/restore contract,
// generalized from bitsets to string slices since sys2 atoms are
// arbitrary names, not small integers.
type Domain struct {
	Variable string
	Original []string
	Current  []string
	Assigned bool
	Value    string
}

func newDomain(variable string, values []string) *Domain {
	cur := make([]string, len(values))
	copy(cur, values)
	return &Domain{Variable: variable, Original: values, Current: cur}
}

// Size returns the number of currently-live values.
func (d *Domain) Size() int { return len(d.Current) }

// IsEmpty reports whether forward checking has pruned every value.
func (d *Domain) IsEmpty() bool { return len(d.Current) == 0 }

// Remove deletes a value from the current domain, preserving order of
// the remaining values (needed for "values tried in declaration
// order", spec.md §4.8).
func (d *Domain) Remove(value string) {
	for i, v := range d.Current {
		if v == value {
			d.Current = append(d.Current[:i], d.Current[i+1:]...)
			return
		}
	}
}

// Has reports whether value is still live in the current domain.
func (d *Domain) Has(value string) bool {
	for _, v := range d.Current {
		if v == value {
			return true
		}
	}
	return false
}

// Assign commits the variable to value by setting Assigned and Value;
// the current set is left untouched.
func (d *Domain) Assign(value string) {
	d.Assigned = true
	d.Value = value
}

// Unassign reverts a commitment made by Assign. Pruned domain state
// from forward checking is restored separately via DomainManager's
// snapshot/rollback, not here — Assign/Unassign only toggle the
// committed value.
func (d *Domain) Unassign() {
	d.Assigned = false
	d.Value = ""
}

// snapshot captures Current/Assigned/Value for DomainManager.Mark.
type snapshot struct {
	current  []string
	assigned bool
	value    string
}

func (d *Domain) snapshot() snapshot {
	cur := make([]string, len(d.Current))
	copy(cur, d.Current)
	return snapshot{current: cur, assigned: d.Assigned, value: d.Value}
}

func (d *Domain) restore(s snapshot) {
	d.Current = s.current
	d.Assigned = s.assigned
	d.Value = s.value
}

// DomainManager owns every CSP variable's Domain, in declaration
// order, so MRV ties can be broken deterministically (spec.md §4.8:
// "ties broken by declaration order"). Grounded on fd_domains.go's
// FDStore variable table, generalized from int-keyed to name-keyed.
type DomainManager struct {
	order   []string
	domains map[string]*Domain
}

// NewDomainManager creates an empty domain manager.
func NewDomainManager() *DomainManager {
	return &DomainManager{domains: make(map[string]*Domain)}
}

// Declare registers an explicit domain for variable with the given
// candidate values, in the order given (this order is both the
// forward-checking pruning order and the value-trial order).
func (dm *DomainManager) Declare(variable string, values []string) *Domain {
	d := newDomain(variable, values)
	dm.domains[variable] = d
	dm.order = append(dm.order, variable)
	return d
}

// DeclareFromType builds a type-derived domain (spec.md §4.8:
// "type-derived domains (enumerating findAllOfType(T) via
// C7.findAll)") by scanning the KB for every positive `isA(x, typeName)`
// fact and using each x as a candidate value, in KB insertion order.
func (dm *DomainManager) DeclareFromType(r *reasoner.Reasoner, variable, typeName string) *Domain {
	entries := r.FindAll(&rule.Fact{Operator: "isA", Args: []string{"?x", typeName}})
	values := make([]string, len(entries))
	for i, e := range entries {
		values[i] = e.Args[0]
	}
	return dm.Declare(variable, values)
}

// Get returns the named domain, or nil if undeclared.
func (dm *DomainManager) Get(variable string) *Domain { return dm.domains[variable] }

// Has reports whether variable has a declared domain.
func (dm *DomainManager) Has(variable string) bool {
	_, ok := dm.domains[variable]
	return ok
}

// Value returns the committed value for an assigned variable, or ""
// if unassigned or undeclared.
func (dm *DomainManager) Value(variable string) string {
	d := dm.domains[variable]
	if d == nil || !d.Assigned {
		return ""
	}
	return d.Value
}

// IsAssigned reports whether variable is both declared and committed.
func (dm *DomainManager) IsAssigned(variable string) bool {
	d := dm.domains[variable]
	return d != nil && d.Assigned
}

// Order returns variable names in declaration order.
func (dm *DomainManager) Order() []string {
	out := make([]string, len(dm.order))
	copy(out, dm.order)
	return out
}

// Unassigned returns the declared-but-uncommitted variables, in
// declaration order.
func (dm *DomainManager) Unassigned() []string {
	var out []string
	for _, name := range dm.order {
		if !dm.domains[name].Assigned {
			out = append(out, name)
		}
	}
	return out
}

// Snapshot is an opaque mark over every domain's current/assigned
// state, taken before a speculative assignment so forward-checking
// pruning and the assignment itself can be undone together on
// backtrack. Mirrors kb.Snapshot/rule.Snapshot's mark-and-rollback
// idiom used elsewhere in this codebase.
type Snapshot struct {
	marks map[string]snapshot
}

// Mark takes a full snapshot of every domain's mutable state.
func (dm *DomainManager) Mark() Snapshot {
	marks := make(map[string]snapshot, len(dm.domains))
	for name, d := range dm.domains {
		marks[name] = d.snapshot()
	}
	return Snapshot{marks: marks}
}

// Rollback restores every domain to its state at Mark.
func (dm *DomainManager) Rollback(s Snapshot) {
	for name, mark := range s.marks {
		dm.domains[name].restore(mark)
	}
}
