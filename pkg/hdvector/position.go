package hdvector

import "fmt"

// PositionRegistry implements component C2 (spec.md §4.2): deterministic
// position markers Pos1..PosN, cached per (strategy, geometry, i). It
// carries the same HdcContext as its session's Vocabulary, so a stateful
// strategy (Exact) assigns position-marker ids from the same table as
// ordinary atom ids rather than a second, independent id space.
type PositionRegistry struct {
	strategy Strategy
	geom     Geometry
	ctx      *HdcContext
	cache    map[int]Vector
}

// NewPositionRegistry creates a registry bound to one (strategy,
// geometry, HdcContext) triple, grounded on the teacher's per-context
// cache idiom in pkg/minikanren/context_utils.go.
func NewPositionRegistry(strategy Strategy, geom Geometry, hctx *HdcContext) *PositionRegistry {
	return &PositionRegistry{strategy: strategy, geom: geom, ctx: hctx, cache: make(map[int]Vector)}
}

// Position returns the HV for position i (1-indexed, 1..MaxPositions),
// creating and caching it on first use via
// createFromName("__POS_i__", geom, strategy).
func (r *PositionRegistry) Position(i int) (Vector, error) {
	if i < 1 || i > MaxPositions {
		return nil, fmt.Errorf("hdvector: position index %d out of range [1, %d]", i, MaxPositions)
	}
	if v, ok := r.cache[i]; ok {
		return v, nil
	}
	v, err := CreateFromName(fmt.Sprintf("__POS_%d__", i), r.geom, r.strategy, r.ctx)
	if err != nil {
		return nil, err
	}
	r.cache[i] = v
	return v, nil
}

// WithPosition implements withPosition(i, v) = bind(Pos_i, v).
func (r *PositionRegistry) WithPosition(i int, v Vector) (Vector, error) {
	pos, err := r.Position(i)
	if err != nil {
		return nil, err
	}
	return r.ctx.Bind(pos, v)
}

// RemovePosition implements removePosition(i, c) = unbind(c, Pos_i).
func (r *PositionRegistry) RemovePosition(i int, c Vector) (Vector, error) {
	pos, err := r.Position(i)
	if err != nil {
		return nil, err
	}
	return Unbind(c, pos)
}
