// Package kb implements the session-local knowledge base: an ordered,
// append-only list of facts plus indices over them. Grounded on the
// teacher's fact_store.go (Fact/FactIndex, ID-plus-metadata tuples),
// generalized from miniKanren terms to HDC vectors and from a
// goroutine-safe store to the session's single-threaded model (spec.md
// §5: "no intra-session parallelism").
package kb

import (
	"sort"

	"github.com/gitrdm/sys2/internal/errs"
	"github.com/gitrdm/sys2/pkg/hdvector"
)

// Polarity distinguishes an asserted fact from its explicit negation.
type Polarity int

const (
	Positive Polarity = iota
	Negative
)

// Entry is one KB record: {vector, metadata, facetIndex} per spec.md
// §3 ("KB entry"). SourceStatementID ties the entry back to the
// statement that produced it; Rollback works by entry count, not by
// this id.
type Entry struct {
	Index             int
	Vector            hdvector.Vector
	Operator          string
	Args              []string
	Polarity          Polarity
	SourceStatementID int
	// FacetIndex groups entries under a coarse category (currently the
	// operator name) for faster facetted scans; it does not change
	// iteration order.
	FacetIndex string
}

func (e *Entry) key() string {
	return e.Operator + "\x00" + joinArgs(e.Args) + "\x00" + polarityKey(e.Polarity)
}

func polarityKey(p Polarity) string {
	if p == Positive {
		return "+"
	}
	return "-"
}

func joinArgs(args []string) string {
	out := make([]byte, 0, 32)
	for i, a := range args {
		if i > 0 {
			out = append(out, 0)
		}
		out = append(out, a...)
	}
	return string(out)
}

// KB is the ordered append list of facts for one session. Insertion
// order is the canonical iteration order (spec.md §3).
type KB struct {
	entries    []*Entry
	byKey      map[string]*Entry
	byOperator map[string][]*Entry
	rejectContradictions bool
}

// New creates an empty KB. rejectContradictions mirrors the session
// config flag of the same name (spec.md §3 "Negation" invariant).
func New(rejectContradictions bool) *KB {
	return &KB{
		byKey:      make(map[string]*Entry),
		byOperator: make(map[string][]*Entry),
		rejectContradictions: rejectContradictions,
	}
}

// Add inserts a fact, enforcing the dedup and negation invariants from
// spec.md §3. Returns the existing entry, unmodified, if the exact
// (operator, args, polarity) tuple is already present (dedup is
// idempotent, not an error).
func (k *KB) Add(operator string, args []string, polarity Polarity, sourceStatementID int, vector hdvector.Vector) (*Entry, error) {
	e := &Entry{
		Operator:          operator,
		Args:              append([]string{}, args...),
		Polarity:          polarity,
		SourceStatementID: sourceStatementID,
		FacetIndex:        operator,
		Vector:            vector,
	}
	if existing, ok := k.byKey[e.key()]; ok {
		return existing, nil
	}

	oppositeKey := (&Entry{Operator: operator, Args: e.Args, Polarity: opposite(polarity)}).key()
	if _, collide := k.byKey[oppositeKey]; collide {
		if k.rejectContradictions {
			return nil, errs.Contradiction(operator, args)
		}
	}

	e.Index = len(k.entries)
	k.entries = append(k.entries, e)
	k.byKey[e.key()] = e
	k.byOperator[operator] = append(k.byOperator[operator], e)
	return e, nil
}

func opposite(p Polarity) Polarity {
	if p == Positive {
		return Negative
	}
	return Positive
}

// Has reports whether the exact (operator, args, polarity) tuple
// exists.
func (k *KB) Has(operator string, args []string, polarity Polarity) bool {
	key := (&Entry{Operator: operator, Args: args, Polarity: polarity}).key()
	_, ok := k.byKey[key]
	return ok
}

// Lookup returns the entry for the exact tuple, if any.
func (k *KB) Lookup(operator string, args []string, polarity Polarity) (*Entry, bool) {
	key := (&Entry{Operator: operator, Args: args, Polarity: polarity}).key()
	e, ok := k.byKey[key]
	return e, ok
}

// ByOperator returns every entry with the given operator, in
// insertion order.
func (k *KB) ByOperator(operator string) []*Entry {
	src := k.byOperator[operator]
	out := make([]*Entry, len(src))
	copy(out, src)
	return out
}

// All returns every entry in insertion order.
func (k *KB) All() []*Entry {
	out := make([]*Entry, len(k.entries))
	copy(out, k.entries)
	return out
}

// Len returns the number of entries.
func (k *KB) Len() int { return len(k.entries) }

// Snapshot captures the current entry count, for rollback on a failed
// learn() call (spec.md §3: "on failure the whole learn call is
// rolled back").
type Snapshot struct {
	count int
}

// Mark returns a Snapshot of the current KB size.
func (k *KB) Mark() Snapshot { return Snapshot{count: len(k.entries)} }

// Rollback truncates the KB back to a prior Snapshot, undoing every
// Add performed since it was taken. It also repairs the byKey/byOperator
// indices so they never reference the discarded entries.
func (k *KB) Rollback(s Snapshot) {
	if s.count >= len(k.entries) {
		return
	}
	removed := k.entries[s.count:]
	k.entries = k.entries[:s.count]
	for _, e := range removed {
		delete(k.byKey, e.key())
		ops := k.byOperator[e.Operator]
		for i := len(ops) - 1; i >= 0; i-- {
			if ops[i] == e {
				ops = append(ops[:i], ops[i+1:]...)
				break
			}
		}
		k.byOperator[e.Operator] = ops
	}
}

// FindAll returns every Positive entry matching operator with args in
// fixed positions (empty-string entries in pattern are wildcards), in insertion
// order. This is the direct-fact-only scan spec.md §4.7 calls
// "findAll" — no rule application.
func (k *KB) FindAll(operator string, pattern []string) []*Entry {
	var out []*Entry
	for _, e := range k.byOperator[operator] {
		if e.Polarity != Positive {
			continue
		}
		if matches(e.Args, pattern) {
			out = append(out, e)
		}
	}
	return out
}

func matches(args, pattern []string) bool {
	if len(args) != len(pattern) {
		return false
	}
	for i, p := range pattern {
		if p == "" {
			continue
		}
		if args[i] != p {
			return false
		}
	}
	return true
}

// Operators returns every distinct operator name that has at least one
// entry, sorted for deterministic dump/inspect output.
func (k *KB) Operators() []string {
	out := make([]string, 0, len(k.byOperator))
	for op := range k.byOperator {
		if len(k.byOperator[op]) == 0 {
			continue
		}
		out = append(out, op)
	}
	sort.Strings(out)
	return out
}
