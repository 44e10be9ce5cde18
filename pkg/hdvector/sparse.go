package hdvector

import (
	"bytes"
	"encoding/binary"
	"hash/fnv"
	"math/big"
	"sort"
)

// sparsePrime is the finite field modulus sparse-polynomial vectors are
// reduced over. A large, fixed Mersenne-like prime keeps exponent
// arithmetic deterministic and collision-resistant without pulling in an
// external big-integer library the pack doesn't otherwise exercise.
var sparsePrime = func() *big.Int {
	p, _ := new(big.Int).SetString("2305843009213693951", 10) // 2^61 - 1
	return p
}()

// sparseVector is the optional "sparse polynomial" strategy from
// spec.md §3: a sorted set of large integer exponents over a finite
// field. Grounded on the teacher's sorted-slice domain representations
// (pkg/minikanren/bin_packing.go, scale.go) adapted from small ints to
// big.Int exponents reduced mod sparsePrime.
type sparseVector struct {
	geom      Geometry
	exponents []*big.Int // sorted ascending, deduplicated
}

func (v *sparseVector) StrategyTag() Strategy { return SparsePolynomial }
func (v *sparseVector) Geometry() Geometry    { return v.geom }

func (v *sparseVector) Bytes() []byte {
	buf := make([]byte, 0, len(v.exponents)*8)
	var tmp [8]byte
	for _, e := range v.exponents {
		b := e.Bytes()
		// length-prefix each big.Int so variable-width encodings never
		// collide with a differently-split neighbour.
		binary.LittleEndian.PutUint64(tmp[:], uint64(len(b)))
		buf = append(buf, tmp[:]...)
		buf = append(buf, b...)
	}
	return buf
}

func (v *sparseVector) Equal(other Vector) bool {
	o, ok := other.(*sparseVector)
	if !ok || len(v.exponents) != len(o.exponents) {
		return false
	}
	for i := range v.exponents {
		if v.exponents[i].Cmp(o.exponents[i]) != 0 {
			return false
		}
	}
	return true
}

type sparseOps struct{}

func init() {
	register(SparsePolynomial, sparseOps{})
}

func (sparseOps) CreateFromName(name string, geom Geometry, _ *HdcContext) Vector {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	seed := h.Sum64()
	state := seed
	exps := make([]*big.Int, 0, 4)
	for i := 0; i < 4; i++ {
		w := splitmix64(&state)
		e := new(big.Int).SetUint64(w)
		e.Mod(e, sparsePrime)
		exps = append(exps, e)
	}
	return &sparseVector{geom: geom, exponents: dedupSorted(exps)}
}

func dedupSorted(exps []*big.Int) []*big.Int {
	sort.Slice(exps, func(i, j int) bool { return exps[i].Cmp(exps[j]) < 0 })
	out := exps[:0]
	for i, e := range exps {
		if i == 0 || e.Cmp(out[len(out)-1]) != 0 {
			out = append(out, e)
		}
	}
	return out
}

// Bind multiplies exponent sets modulo the field (polynomial
// multiplication restricted to the monomial-exponent support): every
// pairwise sum of exponents from a and b becomes a candidate exponent of
// the result, mirroring how dense-binary XOR combines bit positions.
func (sparseOps) Bind(a, b Vector) (Vector, error) {
	av, bv := a.(*sparseVector), b.(*sparseVector)
	out := make([]*big.Int, 0, len(av.exponents)*len(bv.exponents))
	for _, x := range av.exponents {
		for _, y := range bv.exponents {
			sum := new(big.Int).Add(x, y)
			sum.Mod(sum, sparsePrime)
			out = append(out, sum)
		}
	}
	return &sparseVector{geom: av.geom, exponents: dedupSorted(out)}, nil
}

// Bundle takes the sorted union of exponent sets, truncated by majority
// presence: an exponent survives iff it appears in more than half the
// operands, with ties broken toward the operand whose canonical Bytes()
// form is lexicographically first: an exponent held by exactly half the
// operands survives iff that operand holds it (spec.md §4.1).
func (sparseOps) Bundle(vs []Vector) (Vector, error) {
	counts := map[string]int{}
	byKey := map[string]*big.Int{}
	tieHolder := 0
	for vi, v := range vs {
		sv := v.(*sparseVector)
		if bytes.Compare(sv.Bytes(), vs[tieHolder].Bytes()) < 0 {
			tieHolder = vi
		}
		for _, e := range sv.exponents {
			k := e.String()
			counts[k]++
			byKey[k] = e
		}
	}
	tieSet := map[string]bool{}
	for _, e := range vs[tieHolder].(*sparseVector).exponents {
		tieSet[e.String()] = true
	}
	total := len(vs)
	out := make([]*big.Int, 0, len(byKey))
	for k, c := range counts {
		if c*2 > total || (c*2 == total && tieSet[k]) {
			out = append(out, byKey[k])
		}
	}
	first := vs[0].(*sparseVector)
	return &sparseVector{geom: first.geom, exponents: dedupSorted(out)}, nil
}

// Unbind subtracts b's exponents from c's pairwise sums, the field
// inverse of Bind's addition; exact when c was produced by Bind(a, b).
func (sparseOps) Unbind(c, b Vector) (Vector, error) {
	cv, bv := c.(*sparseVector), b.(*sparseVector)
	out := make([]*big.Int, 0, len(cv.exponents)*len(bv.exponents))
	for _, x := range cv.exponents {
		for _, y := range bv.exponents {
			diff := new(big.Int).Sub(x, y)
			diff.Mod(diff, sparsePrime)
			out = append(out, diff)
		}
	}
	return &sparseVector{geom: cv.geom, exponents: dedupSorted(out)}, nil
}

// Similarity is Jaccard overlap of the two exponent sets.
func (sparseOps) Similarity(a, b Vector) (float64, error) {
	av, bv := a.(*sparseVector), b.(*sparseVector)
	if len(av.exponents) == 0 && len(bv.exponents) == 0 {
		return 1, nil
	}
	set := map[string]bool{}
	for _, e := range av.exponents {
		set[e.String()] = true
	}
	shared := 0
	for _, e := range bv.exponents {
		if set[e.String()] {
			shared++
		}
	}
	union := len(av.exponents) + len(bv.exponents) - shared
	if union == 0 {
		return 1, nil
	}
	return float64(shared) / float64(union), nil
}
