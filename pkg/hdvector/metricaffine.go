package hdvector

import (
	"encoding/binary"
	"math"
)

// metricAffineVector is the fourth strategy named by spec.md §6's config
// enum (hdcStrategy: metric-affine). It represents an HV as a dense
// []float64 (no rotation is applied), grounded on the continuous
// HDVector representation in
// other_examples/.../hyperdimensional/hd_computing.go.go (float64
// payload, cosine similarity) rather than the teacher (which only deals
// in discrete bitsets) — the pack's own precedent for a metric-space HDC
// strategy.
type metricAffineVector struct {
	geom   Geometry
	values []float64
}

func (v *metricAffineVector) StrategyTag() Strategy { return MetricAffine }
func (v *metricAffineVector) Geometry() Geometry    { return v.geom }

func (v *metricAffineVector) Bytes() []byte {
	buf := make([]byte, len(v.values)*8)
	for i, f := range v.values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func (v *metricAffineVector) Equal(other Vector) bool {
	o, ok := other.(*metricAffineVector)
	if !ok || len(v.values) != len(o.values) {
		return false
	}
	for i := range v.values {
		if v.values[i] != o.values[i] {
			return false
		}
	}
	return true
}

type metricAffineOps struct{}

func init() {
	register(MetricAffine, metricAffineOps{})
}

// CreateFromName draws a deterministic unit-norm vector from the same
// splitmix64 generator the dense-binary strategy uses, seeded from the
// name, so two strategies never collide in seed space by accident.
func (metricAffineOps) CreateFromName(name string, geom Geometry, _ *HdcContext) Vector {
	state := seedFor("affine:"+name, geom)
	values := make([]float64, int(geom))
	var norm float64
	for i := range values {
		w := splitmix64(&state)
		// map to roughly [-1, 1]
		f := (float64(w>>11) / float64(1<<53))*2 - 1
		values[i] = f
		norm += f * f
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range values {
			values[i] /= norm
		}
	}
	return &metricAffineVector{geom: geom, values: values}
}

// Bind is element-wise (Hadamard) multiplication, the standard
// continuous-HDC analogue of XOR binding: it is commutative, and
// self-inverse for unit-magnitude-per-coordinate sign vectors, but only
// approximately for this real-valued variant — consistent with
// spec.md's bind contract requiring only approximate left-inverse
// recovery (similarity >= 1-epsilon) outside the exact strategy.
func (metricAffineOps) Bind(a, b Vector) (Vector, error) {
	av, bv := a.(*metricAffineVector), b.(*metricAffineVector)
	out := make([]float64, len(av.values))
	for i := range out {
		out[i] = av.values[i] * bv.values[i]
	}
	return &metricAffineVector{geom: av.geom, values: out}, nil
}

func (metricAffineOps) Bundle(vs []Vector) (Vector, error) {
	first := vs[0].(*metricAffineVector)
	out := make([]float64, len(first.values))
	for _, v := range vs {
		mv := v.(*metricAffineVector)
		for i, f := range mv.values {
			out[i] += f
		}
	}
	for i := range out {
		out[i] /= float64(len(vs))
	}
	return &metricAffineVector{geom: first.geom, values: out}, nil
}

func (metricAffineOps) Unbind(c, b Vector) (Vector, error) {
	cv, bv := c.(*metricAffineVector), b.(*metricAffineVector)
	out := make([]float64, len(cv.values))
	for i := range out {
		if bv.values[i] == 0 {
			out[i] = 0
			continue
		}
		out[i] = cv.values[i] / bv.values[i]
	}
	return &metricAffineVector{geom: cv.geom, values: out}, nil
}

// Similarity is cosine similarity rescaled from [-1,1] to [0,1], to
// satisfy spec.md's "similarity(a,b) in [0,1]" contract uniformly across
// strategies.
func (metricAffineOps) Similarity(a, b Vector) (float64, error) {
	av, bv := a.(*metricAffineVector), b.(*metricAffineVector)
	var dot, na, nb float64
	for i := range av.values {
		dot += av.values[i] * bv.values[i]
		na += av.values[i] * av.values[i]
		nb += bv.values[i] * bv.values[i]
	}
	if na == 0 || nb == 0 {
		return 0.5, nil
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return (cos + 1) / 2, nil
}
