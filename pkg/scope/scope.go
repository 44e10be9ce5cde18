// Package scope implements component C4 (spec.md §4.4): a stack of
// string->value frames used by the executor for `@name` destinations and
// `$name` references. Grounded on the teacher's nominal substitution
// frame chains (pkg/minikanren/nominal_subst.go) — a classic linked
// frame stack, per spec.md §9's design note, implemented here as a
// slice-backed chain so child() can clone the current index cheaply
// without sharing mutable state with the parent.
package scope

import "github.com/gitrdm/sys2/internal/errs"

// Value is anything a scope frame can bind a name to: an hdvector.Vector
// for a statement's computed value, or an AST node for a rule's stored
// antecedent/consequent template. The executor and reasoner package this
// as whatever concrete type they need; Scope itself is payload-agnostic.
type Value = interface{}

type frame struct {
	bindings map[string]Value
	// order preserves deterministic iteration for dump/inspect output.
	order []string
}

func newFrame() *frame {
	return &frame{bindings: make(map[string]Value)}
}

// Scope is a chain of frames: frames[0] is the root (outermost), the
// last element is the current (innermost) frame. Lookups walk from the
// innermost frame outward, matching classic lexical scoping.
type Scope struct {
	frames []*frame
}

// New creates a scope with a single root frame.
func New() *Scope {
	return &Scope{frames: []*frame{newFrame()}}
}

// Push opens a new child frame (used when a graph/macro body executes).
func (s *Scope) Push() {
	s.frames = append(s.frames, newFrame())
}

// Pop closes the innermost frame. Popping the root frame is a no-op
// guard, since a Scope must always have at least one frame.
func (s *Scope) Pop() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Child returns a new Scope that shares no mutable state with the
// receiver — a deep-enough clone of the current frame chain — so a
// graph invocation's parameter bindings never leak back into the
// caller's scope, per spec.md §4.6 ("a fresh child scope binds
// parameters").
func (s *Scope) Child() *Scope {
	clone := &Scope{frames: make([]*frame, len(s.frames))}
	for i, f := range s.frames {
		nf := newFrame()
		for _, name := range f.order {
			nf.bindings[name] = f.bindings[name]
			nf.order = append(nf.order, name)
		}
		clone.frames[i] = nf
	}
	clone.Push()
	return clone
}

// Define binds name in the current (innermost) frame. It fails with
// NameAlreadyDefined if name already exists in that frame — spec.md
// §4.4: "define fails if the name already exists in the current frame".
func (s *Scope) Define(name string, v Value) error {
	cur := s.frames[len(s.frames)-1]
	if _, exists := cur.bindings[name]; exists {
		return errs.NameAlreadyDefined(name)
	}
	cur.bindings[name] = v
	cur.order = append(cur.order, name)
	return nil
}

// Set upserts name in the current frame, overwriting any existing
// binding in that frame (spec.md §4.4: "set is upsert").
func (s *Scope) Set(name string, v Value) {
	cur := s.frames[len(s.frames)-1]
	if _, exists := cur.bindings[name]; !exists {
		cur.order = append(cur.order, name)
	}
	cur.bindings[name] = v
}

// Get walks from the innermost frame to the root looking for name,
// returning UnboundReference if it is defined nowhere in the chain.
func (s *Scope) Get(name string) (Value, error) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i].bindings[name]; ok {
			return v, nil
		}
	}
	return nil, errs.UnboundReference(name)
}

// Has reports whether name is visible anywhere in the frame chain.
func (s *Scope) Has(name string) bool {
	_, err := s.Get(name)
	return err == nil
}

// Names returns every name bound in the current (innermost) frame, in
// definition order.
func (s *Scope) Names() []string {
	cur := s.frames[len(s.frames)-1]
	out := make([]string, len(cur.order))
	copy(out, cur.order)
	return out
}

// Depth returns the number of frames currently on the stack.
func (s *Scope) Depth() int {
	return len(s.frames)
}
