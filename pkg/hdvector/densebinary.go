package hdvector

import (
	"encoding/binary"
	"hash/fnv"
	"math/bits"
	"sort"
)

// denseBinary is the dense bit-packed HV representation (spec.md §3
// "Dense binary: D bits packed in 32-bit words"; implemented here as
// 64-bit words, the natural register width, same trade the teacher made
// in pkg/minikanren/domain.go's BitSetDomain — bit i of the logical
// vector lives in words[i/64] at bit i%64). Immutable: every op below
// returns a new denseBinary rather than mutating in place.
type denseBinary struct {
	geom  Geometry
	words []uint64
}

func wordsFor(geom Geometry) int {
	return (int(geom) + 63) / 64
}

func (v *denseBinary) StrategyTag() Strategy { return DenseBinary }
func (v *denseBinary) Geometry() Geometry    { return v.geom }

func (v *denseBinary) Bytes() []byte {
	buf := make([]byte, len(v.words)*8)
	for i, w := range v.words {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	return buf
}

func (v *denseBinary) Equal(other Vector) bool {
	o, ok := other.(*denseBinary)
	if !ok || o.geom != v.geom {
		return false
	}
	for i := range v.words {
		if v.words[i] != o.words[i] {
			return false
		}
	}
	return true
}

func (v *denseBinary) bit(i int) bool {
	return (v.words[i/64]>>(uint(i)%64))&1 == 1
}

func (v *denseBinary) setBit(i int) {
	v.words[i/64] |= 1 << (uint(i) % 64)
}

// denseBinaryOps implements Ops for the dense-binary strategy.
type denseBinaryOps struct{}

func init() {
	register(DenseBinary, denseBinaryOps{})
}

// splitmix64 is a small, fast, fully deterministic PRNG used only to fan
// a 64-bit seed out into many pseudo-random words. It carries no external
// entropy — the seed is derived from the atom name via FNV-1a, so
// CreateFromName stays a pure function of its inputs (spec.md §5
// "Determinism: ... no PRNG without a pinned seed").
func splitmix64(state *uint64) uint64 {
	*state += 0x9E3779B97F4A7C15
	z := *state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func seedFor(name string, geom Geometry) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	_, _ = h.Write([]byte{byte(geom), byte(geom >> 8), byte(geom >> 16)})
	return h.Sum64()
}

func (denseBinaryOps) CreateFromName(name string, geom Geometry, _ *HdcContext) Vector {
	n := wordsFor(geom)
	words := make([]uint64, n)
	state := seedFor(name, geom)
	for i := range words {
		words[i] = splitmix64(&state)
	}
	maskTrailingBits(words, geom)
	return &denseBinary{geom: geom, words: words}
}

// maskTrailingBits clears any bits beyond the logical geometry in the
// final word, so Count/Similarity never see stray high bits from a word
// that only partially represents the vector.
func maskTrailingBits(words []uint64, geom Geometry) {
	total := int(geom)
	if total%64 == 0 {
		return
	}
	lastValid := total % 64
	words[len(words)-1] &= (uint64(1) << uint(lastValid)) - 1
}

func (denseBinaryOps) Bind(a, b Vector) (Vector, error) {
	av, bv := a.(*denseBinary), b.(*denseBinary)
	words := make([]uint64, len(av.words))
	for i := range words {
		words[i] = av.words[i] ^ bv.words[i]
	}
	return &denseBinary{geom: av.geom, words: words}, nil
}

// Bundle superposes vs by per-bit majority vote. Ties (even counts of
// set/unset bits) are broken deterministically by the canonical
// lexicographic order of the operand byte payloads, per spec.md §4.1
// ("ties broken deterministically (lexicographic on strategy-specific
// canonical form)") — equivalent to: the bit is set iff a strict
// majority of operands set it, OR (exactly half set it AND the
// lexicographically smallest operand that disagrees with the running
// majority has the bit set). To keep this simple and fully
// reproducible we instead break ties toward the bit value held by the
// lexicographically smallest operand, computed once per bundle.
func (denseBinaryOps) Bundle(vs []Vector) (Vector, error) {
	first := vs[0].(*denseBinary)
	geom := first.geom
	n := len(first.words)

	ordered := make([]*denseBinary, len(vs))
	for i, v := range vs {
		ordered[i] = v.(*denseBinary)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return lexLess(ordered[i].words, ordered[j].words)
	})
	tieBreaker := ordered[0]

	words := make([]uint64, n)
	total := len(vs)
	for bitIdx := 0; bitIdx < int(geom); bitIdx++ {
		count := 0
		for _, v := range vs {
			if v.(*denseBinary).bit(bitIdx) {
				count++
			}
		}
		setIt := false
		switch {
		case count*2 > total:
			setIt = true
		case count*2 < total:
			setIt = false
		default:
			setIt = tieBreaker.bit(bitIdx)
		}
		if setIt {
			words[bitIdx/64] |= 1 << (uint(bitIdx) % 64)
		}
	}
	return &denseBinary{geom: geom, words: words}, nil
}

func lexLess(a, b []uint64) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// Unbind is bind's exact inverse for dense-binary: XOR is self-inverse,
// so unbind(bind(a,b),b) == a exactly, satisfying spec.md §8 invariant 3
// even for this approximate strategy.
func (denseBinaryOps) Unbind(c, b Vector) (Vector, error) {
	return denseBinaryOps{}.Bind(c, b)
}

// Similarity is normalized Hamming similarity: 1 - hammingDistance/geom.
func (denseBinaryOps) Similarity(a, b Vector) (float64, error) {
	av, bv := a.(*denseBinary), b.(*denseBinary)
	diff := 0
	for i := range av.words {
		diff += bits.OnesCount64(av.words[i] ^ bv.words[i])
	}
	return 1.0 - float64(diff)/float64(av.geom), nil
}
