package hdvector

import (
	"encoding/binary"
	"math"
	"sort"
)

// exactVector is the "appearance-index" strategy from spec.md §3: a
// mapping from atom-id to a small integer coefficient, giving loss-less
// algebraic reasoning at small scale. Atom-ids are deterministic indices
// assigned the first time a name is seen by this strategy's id table,
// grounded on the teacher's map-based exact-arithmetic style
// (pkg/minikanren/rational.go, term_utils.go).
type exactVector struct {
	geom  Geometry
	coefs map[int]int64 // atom-id -> coefficient, zero entries omitted
}

func (v *exactVector) StrategyTag() Strategy { return Exact }
func (v *exactVector) Geometry() Geometry    { return v.geom }

func (v *exactVector) Bytes() []byte {
	ids := make([]int, 0, len(v.coefs))
	for id := range v.coefs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	buf := make([]byte, 0, len(ids)*16)
	var tmp [8]byte
	for _, id := range ids {
		binary.LittleEndian.PutUint64(tmp[:], uint64(int64(id)))
		buf = append(buf, tmp[:]...)
		binary.LittleEndian.PutUint64(tmp[:], uint64(v.coefs[id]))
		buf = append(buf, tmp[:]...)
	}
	return buf
}

func (v *exactVector) Equal(other Vector) bool {
	o, ok := other.(*exactVector)
	if !ok {
		return false
	}
	if len(v.coefs) != len(o.coefs) {
		return false
	}
	for id, c := range v.coefs {
		if o.coefs[id] != c {
			return false
		}
	}
	return true
}

// exactIDTable assigns deterministic, stable small integer ids to atom
// names within the Exact strategy, one table per HdcContext and shared
// across geometries (a session-local
// cache, since Exact is the stateful strategy spec.md §4.2/§9 calls out
// as requiring per-session caches rather than shared global ones).
type exactIDTable struct {
	nextID int
	ids    map[string]int
}

func newExactIDTable() *exactIDTable {
	return &exactIDTable{ids: make(map[string]int)}
}

func (t *exactIDTable) idFor(name string) int {
	if id, ok := t.ids[name]; ok {
		return id
	}
	id := t.nextID
	t.nextID++
	t.ids[name] = id
	return id
}

// exactTable returns hctx's atom-id table. A nil hctx (or one built
// without NewHdcContext) falls back to a private table scoped to this
// single call only — callers that need id stability across multiple
// CreateFromName calls must share one real HdcContext, per spec.md §9.
func (hctx *HdcContext) exactTable() *exactIDTable {
	if hctx == nil || hctx.exact == nil {
		return newExactIDTable()
	}
	return hctx.exact
}

type exactOps struct{}

func init() {
	register(Exact, exactOps{})
}

func (exactOps) CreateFromName(name string, geom Geometry, hctx *HdcContext) Vector {
	id := hctx.exactTable().idFor(name)
	return &exactVector{geom: geom, coefs: map[int]int64{id: 1}}
}

func (exactOps) Bind(a, b Vector) (Vector, error) {
	av, bv := a.(*exactVector), b.(*exactVector)
	out := make(map[int]int64, len(av.coefs)+len(bv.coefs))
	for id, c := range av.coefs {
		out[id] = c
	}
	for id, c := range bv.coefs {
		out[id] += c
	}
	pruneZeros(out)
	return &exactVector{geom: av.geom, coefs: out}, nil
}

func (exactOps) Bundle(vs []Vector) (Vector, error) {
	first := vs[0].(*exactVector)
	out := make(map[int]int64)
	for _, v := range vs {
		ev := v.(*exactVector)
		for id, c := range ev.coefs {
			out[id] += c
		}
	}
	pruneZeros(out)
	return &exactVector{geom: first.geom, coefs: out}, nil
}

// Unbind implements Mode A only (left-inverse subtraction): per
// spec.md §9 Open Question 1, the source shows two unbind modes for
// Exact with different semantics; this spec requires only Mode A.
// unbind(bind(a,b), b) == a exactly, by construction.
func (exactOps) Unbind(c, b Vector) (Vector, error) {
	cv, bv := c.(*exactVector), b.(*exactVector)
	out := make(map[int]int64, len(cv.coefs))
	for id, coef := range cv.coefs {
		out[id] = coef
	}
	for id, coef := range bv.coefs {
		out[id] -= coef
	}
	pruneZeros(out)
	return &exactVector{geom: cv.geom, coefs: out}, nil
}

func pruneZeros(m map[int]int64) {
	for id, c := range m {
		if c == 0 {
			delete(m, id)
		}
	}
}

// Similarity for Exact is normalized overlap of shared atom-ids weighted
// by coefficient agreement: 1 iff identical, 0 iff disjoint supports.
func (exactOps) Similarity(a, b Vector) (float64, error) {
	av, bv := a.(*exactVector), b.(*exactVector)
	if len(av.coefs) == 0 && len(bv.coefs) == 0 {
		return 1, nil
	}
	var dot, na, nb float64
	for id, c := range av.coefs {
		na += float64(c) * float64(c)
		if oc, ok := bv.coefs[id]; ok {
			dot += float64(c) * float64(oc)
		}
	}
	for _, c := range bv.coefs {
		nb += float64(c) * float64(c)
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if cos < 0 {
		cos = 0
	}
	if cos > 1 {
		cos = 1
	}
	return cos, nil
}
