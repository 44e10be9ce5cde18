// Package hdvector implements the HDC substrate (spec.md §4.1, component
// C1) and the position registry (§4.2, component C2): hypervector creation,
// bind/bundle/unbind/similarity/topK, and the pluggable strategy mechanism
// that lets those operations be swapped without changing callers.
//
// The design generalizes the teacher's (github.com/gitrdm/gokanlogic)
// Domain interface (pkg/minikanren/domain.go) and its strategy-registry
// pattern (pkg/minikanren/strategy.go): a common operation set behind an
// interface, a concrete bit-packed implementation for the hot path, and a
// typed tag carried by every value so mixing implementations is a checked
// error rather than a silent bug.
package hdvector

import (
	"fmt"

	"github.com/gitrdm/sys2/internal/errs"
)

// Strategy names the concrete HDC representation backing a Vector. Every
// Vector carries its Strategy so StrategyMismatch can be detected at the
// boundary of any binary operation (spec.md §4.1 "Strategy dispatch").
type Strategy string

const (
	DenseBinary     Strategy = "dense-binary"
	Exact           Strategy = "exact"
	SparsePolynomial Strategy = "sparse-polynomial"
	MetricAffine    Strategy = "metric-affine"
)

// Geometry is the dimensionality of a hypervector. spec.md §3 fixes the
// legal set; DenseBinary vectors are exactly Geometry bits wide.
type Geometry int

const (
	Geom512   Geometry = 512
	Geom1024  Geometry = 1024
	Geom2048  Geometry = 2048
	Geom4096  Geometry = 4096
	Geom8192  Geometry = 8192
	Geom16384 Geometry = 16384
	Geom32768 Geometry = 32768
	Geom65536 Geometry = 65536
)

// DefaultGeometry is the spec-mandated default dimensionality.
const DefaultGeometry Geometry = Geom32768

// MaxPositions is MAX_POS from spec.md §3: position markers Pos1..PosN.
const MaxPositions = 20

// Vector is the common operation set every HDC strategy must implement
// (spec.md §4.1). Values are immutable after creation: every operation
// that would mutate state instead returns a new Vector.
type Vector interface {
	// StrategyTag reports which concrete representation produced this
	// vector, so callers and the ops dispatcher can detect mixing.
	StrategyTag() Strategy

	// Geometry reports the dimensionality/scale this vector was created
	// at: the configured geometry value, stored unchanged by every
	// strategy.
	Geometry() Geometry

	// Bytes returns a canonical byte encoding of the vector's payload,
	// used for hashing (C3 reverse index) and equality/decoding. The
	// encoding covers the full payload, never a prefix, so the
	// vocabulary's hash->name index cannot collide on truncated data.
	Bytes() []byte

	// Equal reports bit-exact/value-exact equality, not similarity.
	Equal(other Vector) bool
}

// HdcContext is the per-session handle spec.md §9 calls out for C1 state
// that must not leak across sessions: the Exact strategy's atom-id
// table (so two open sessions never observe each other's ids), and the
// session-local operation counters spec.md §4.1 requires ("each call
// increments session-local counters... when the call carries a session
// handle"). A session owns exactly one HdcContext and threads it through
// its Vocabulary and PositionRegistry, so position markers and
// vocabulary atoms draw ids from the same table — otherwise a position
// marker and an unrelated atom could be assigned the same Exact id and
// collide once bound together.
type HdcContext struct {
	exact *exactIDTable

	BindOps   int
	BundleOps int
}

// NewHdcContext creates a fresh per-session handle.
func NewHdcContext() *HdcContext {
	return &HdcContext{exact: newExactIDTable()}
}

// HdcStats is a snapshot of an HdcContext's session-local counters.
type HdcStats struct {
	BindOps   int
	BundleOps int
}

// Stats snapshots hc's counters. A nil receiver reports zeroes.
func (hc *HdcContext) Stats() HdcStats {
	if hc == nil {
		return HdcStats{}
	}
	return HdcStats{BindOps: hc.BindOps, BundleOps: hc.BundleOps}
}

// ResetStats zeroes hc's counters. A nil receiver is a no-op.
func (hc *HdcContext) ResetStats() {
	if hc == nil {
		return
	}
	hc.BindOps = 0
	hc.BundleOps = 0
}

// Bind dispatches like the package-level Bind, additionally incrementing
// BindOps. A nil receiver behaves like an uncounted Bind.
func (hc *HdcContext) Bind(a, b Vector) (Vector, error) {
	v, err := Bind(a, b)
	if err == nil && hc != nil {
		hc.BindOps++
	}
	return v, err
}

// Bundle dispatches like the package-level Bundle, additionally
// incrementing BundleOps. A nil receiver behaves like an uncounted
// Bundle.
func (hc *HdcContext) Bundle(vs []Vector) (Vector, error) {
	v, err := Bundle(vs)
	if err == nil && hc != nil {
		hc.BundleOps++
	}
	return v, err
}

// Ops is the strategy-specific operations table (spec.md §4.1's op list).
// Each concrete strategy package-level implementation satisfies Ops for
// its own Vector kind; Dispatch routes to the right Ops by Strategy tag.
type Ops interface {
	// CreateFromName deterministically derives a Vector from (name,
	// geometry). Same inputs must yield a bit-identical output. hctx
	// scopes any stateful id assignment (Exact); stateless strategies
	// ignore it.
	CreateFromName(name string, geom Geometry, hctx *HdcContext) Vector

	// Bind combines two vectors associatively/commutatively per
	// spec.md's bind contract (XOR for dense-binary).
	Bind(a, b Vector) (Vector, error)

	// Bundle superposes a set of vectors with a deterministic tie-break
	// rule (majority vote + canonical-form lexicographic tie-break for
	// dense-binary).
	Bundle(vs []Vector) (Vector, error)

	// Unbind inverts Bind with respect to b. For dense-binary this is
	// exact (XOR is self-inverse); for Exact strategy this is Mode A
	// (left-inverse) only — see exact.go.
	Unbind(c, b Vector) (Vector, error)

	// Similarity returns a symmetric score in [0, 1], 1 iff bit/value
	// identical.
	Similarity(a, b Vector) (float64, error)
}

// registry maps each Strategy tag to its Ops implementation. Populated by
// each strategy file's init(), mirroring the teacher's StrategyRegistry
// (pkg/minikanren/strategy.go) for discoverable, pluggable strategies.
var registry = map[Strategy]Ops{}

func register(s Strategy, ops Ops) {
	registry[s] = ops
}

// Dispatch returns the Ops implementation for a Strategy, or an error if
// the strategy is unrecognized.
func Dispatch(s Strategy) (Ops, error) {
	ops, ok := registry[s]
	if !ok {
		return nil, fmt.Errorf("hdvector: unknown strategy %q", s)
	}
	return ops, nil
}

// checkMatch is the guard every binary operation runs first: mixing
// strategies in a single op is a StrategyMismatch error, never a silent
// coercion (spec.md §4.1).
func checkMatch(a, b Vector) error {
	if a.StrategyTag() != b.StrategyTag() {
		return errs.StrategyMismatch(string(a.StrategyTag()), string(b.StrategyTag()))
	}
	return nil
}

// Bind dispatches to the shared strategy of a and b.
func Bind(a, b Vector) (Vector, error) {
	if err := checkMatch(a, b); err != nil {
		return nil, err
	}
	ops, err := Dispatch(a.StrategyTag())
	if err != nil {
		return nil, err
	}
	return ops.Bind(a, b)
}

// Bundle dispatches to the shared strategy of every vector in vs. Bundle
// requires at least one vector; an empty slice is a structural error.
func Bundle(vs []Vector) (Vector, error) {
	if len(vs) == 0 {
		return nil, fmt.Errorf("hdvector: Bundle requires at least one vector")
	}
	strat := vs[0].StrategyTag()
	for _, v := range vs[1:] {
		if v.StrategyTag() != strat {
			return nil, errs.StrategyMismatch(string(strat), string(v.StrategyTag()))
		}
	}
	ops, err := Dispatch(strat)
	if err != nil {
		return nil, err
	}
	return ops.Bundle(vs)
}

// Unbind dispatches to the shared strategy of c and b.
func Unbind(c, b Vector) (Vector, error) {
	if err := checkMatch(c, b); err != nil {
		return nil, err
	}
	ops, err := Dispatch(c.StrategyTag())
	if err != nil {
		return nil, err
	}
	return ops.Unbind(c, b)
}

// Similarity dispatches to the shared strategy of a and b.
func Similarity(a, b Vector) (float64, error) {
	if err := checkMatch(a, b); err != nil {
		return 0, err
	}
	ops, err := Dispatch(a.StrategyTag())
	if err != nil {
		return 0, err
	}
	return ops.Similarity(a, b)
}

// CreateFromName dispatches vector creation to the named strategy's Ops.
// hctx scopes the Exact strategy's id table to one session; pass the
// session's HdcContext so repeated calls (vocabulary atoms, position
// markers) share one id space. A nil hctx is only safe for isolated,
// single-call uses (e.g. ad hoc tests).
func CreateFromName(name string, geom Geometry, strat Strategy, hctx *HdcContext) (Vector, error) {
	ops, err := Dispatch(strat)
	if err != nil {
		return nil, err
	}
	return ops.CreateFromName(name, geom, hctx), nil
}

// Scored pairs a Vector with a similarity score, used by TopK.
type Scored struct {
	Vector     Vector
	Similarity float64
	// index records insertion order in the candidate set, used to break
	// similarity ties deterministically (spec.md §4.1 topK contract).
	index int
}

// TopK returns the k candidates most similar to q, breaking ties by
// insertion order (the order they appear in set), matching spec.md's
// "Stable ties broken by insertion order" guarantee.
func TopK(q Vector, set []Vector, k int) ([]Scored, error) {
	scored := make([]Scored, 0, len(set))
	for i, v := range set {
		sim, err := Similarity(q, v)
		if err != nil {
			return nil, err
		}
		scored = append(scored, Scored{Vector: v, Similarity: sim, index: i})
	}
	// Stable insertion sort keyed on (-similarity, index): simple and
	// deterministic for the modest candidate-set sizes this substrate
	// operates over (session-local vocabularies, not web-scale corpora).
	for i := 1; i < len(scored); i++ {
		j := i
		for j > 0 && less(scored[j], scored[j-1]) {
			scored[j], scored[j-1] = scored[j-1], scored[j]
			j--
		}
	}
	if k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}

func less(a, b Scored) bool {
	if a.Similarity != b.Similarity {
		return a.Similarity > b.Similarity
	}
	return a.index < b.index
}
