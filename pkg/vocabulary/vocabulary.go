// Package vocabulary implements component C3 (spec.md §4.3): the
// session-local name<->HV bijection, plus a reverse hash index used to
// decode vectors back into names. Grounded on the teacher's fact-name
// registries (pkg/minikanren/pldb.go, fact_store.go), which keep a
// forward map plus a reverse lookup for the same reason: answers need to
// come back out in terms of names, not raw vectors.
package vocabulary

import (
	"github.com/gitrdm/sys2/internal/errs"
	"github.com/gitrdm/sys2/pkg/hdvector"
)

// Vocabulary maps atom names to hypervectors within one session. It is
// not safe for concurrent use across goroutines without external
// synchronization — per spec.md §5, a session is a single-threaded unit.
type Vocabulary struct {
	strategy hdvector.Strategy
	geom     hdvector.Geometry
	ctx      *hdvector.HdcContext

	byName map[string]hdvector.Vector
	// byHash is the reverse index: the full Bytes() payload of a vector,
	// not a prefix, maps back to its name (spec.md §4.3 "Hash
	// guarantee").
	byHash map[string]string
	// order records registration order explicitly — Go map iteration
	// order is randomized, and spec.md §5 requires deterministic,
	// insertion-ordered observable sequences.
	order []string
}

// New creates an empty Vocabulary bound to one HDC strategy/geometry,
// drawing ids for stateful strategies from hctx — the session's
// HdcContext, shared with its PositionRegistry so the two never assign
// colliding ids (spec.md §9's session-isolation requirement for Exact).
func New(strategy hdvector.Strategy, geom hdvector.Geometry, hctx *hdvector.HdcContext) *Vocabulary {
	return &Vocabulary{
		strategy: strategy,
		geom:     geom,
		ctx:      hctx,
		byName:   make(map[string]hdvector.Vector),
		byHash:   make(map[string]string),
	}
}

// GetOrCreate returns the existing vector for name, or deterministically
// creates and registers one via the HDC substrate.
func (v *Vocabulary) GetOrCreate(name string) (hdvector.Vector, error) {
	if existing, ok := v.byName[name]; ok {
		return existing, nil
	}
	vec, err := hdvector.CreateFromName(name, v.geom, v.strategy, v.ctx)
	if err != nil {
		return nil, err
	}
	key := string(vec.Bytes())
	if other, collide := v.byHash[key]; collide && other != name {
		return nil, errs.VocabularyHashCollision(name, other)
	}
	v.byName[name] = vec
	v.byHash[key] = name
	v.order = append(v.order, name)
	return vec, nil
}

// Lookup returns the vector already registered for name, if any.
func (v *Vocabulary) Lookup(name string) (hdvector.Vector, bool) {
	vec, ok := v.byName[name]
	return vec, ok
}

// Has reports whether name has been registered.
func (v *Vocabulary) Has(name string) bool {
	_, ok := v.byName[name]
	return ok
}

// Decode reverses a vector back into the name that produced it, using
// the full-payload hash index (no partial-vector decoding ambiguity).
func (v *Vocabulary) Decode(vec hdvector.Vector) (string, bool) {
	name, ok := v.byHash[string(vec.Bytes())]
	return name, ok
}

// Names returns every registered atom name in registration order.
func (v *Vocabulary) Names() []string {
	names := make([]string, len(v.order))
	copy(names, v.order)
	return names
}

// Size returns the number of registered atoms.
func (v *Vocabulary) Size() int {
	return len(v.byName)
}

// Strategy reports the HDC strategy this vocabulary was created with.
func (v *Vocabulary) Strategy() hdvector.Strategy { return v.strategy }

// Geometry reports the HDC geometry this vocabulary was created with.
func (v *Vocabulary) Geometry() hdvector.Geometry { return v.geom }
