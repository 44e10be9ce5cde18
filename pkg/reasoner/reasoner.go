// Package reasoner implements component C7 (spec.md §4.7): backward
// chaining with negation-as-failure under the closed-world assumption,
// rule application over And/Or/Not condition trees, and transitive
// closure search for the designated transitive operators. Grounded on
// the teacher's slg_wfs.go (NegateEvaluator's "negation succeeds iff
// the inner goal has zero answers" is exactly CWA negation-as-failure)
// and search.go/tabling.go's depth-bounded, cancellable traversal
// style — context.Context threads through every entry point the same
// way the teacher's SLG engine takes one.
package reasoner

import (
	"context"

	"github.com/gitrdm/sys2/pkg/hdvector"
	"github.com/gitrdm/sys2/pkg/kb"
	"github.com/gitrdm/sys2/pkg/rule"
	"github.com/gitrdm/sys2/pkg/vocabulary"
)

// Priority selects which candidate-generation strategy the reasoner
// prefers; both share the same external contract (spec.md §4.7).
type Priority int

const (
	SymbolicPriority Priority = iota
	HolographicPriority
)

// DefaultTransitiveOperators is the spec-named minimum set (spec.md
// §4.7). Extensible via Config.ExtraTransitiveOperators — an Open
// Question resolution (DESIGN.md): `subsetOf` is transitive, `elementOf`
// is deliberately excluded (distinct ZFC-style roles: membership does
// not compose the way subset/isA/partOf do).
var DefaultTransitiveOperators = map[string]bool{
	"isA":       true,
	"locatedIn": true,
	"causes":    true,
	"before":    true,
	"partOf":    true,
	"subsetOf":  true,
}

// Config carries the session-level reasoning knobs from spec.md §6.
type Config struct {
	ClosedWorldAssumption bool
	MaxProofDepth         int
	MaxTransitiveDepth    int
	Priority              Priority
	// ExtraTransitiveOperators extends DefaultTransitiveOperators.
	ExtraTransitiveOperators map[string]bool
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		ClosedWorldAssumption: true,
		MaxProofDepth:         20,
		MaxTransitiveDepth:    10,
		Priority:              SymbolicPriority,
	}
}

func (c Config) isTransitive(operator string) bool {
	if DefaultTransitiveOperators[operator] {
		return true
	}
	return c.ExtraTransitiveOperators[operator]
}

// Stats is the session-local counters record from spec.md §4.7.
type Stats struct {
	Queries          int
	Proofs           int
	KBScans          int
	SimilarityChecks int
	RuleAttempts     int
	TransitiveSteps  int
	MaxProofDepth    int
	MinProofDepth    int
	TotalProofSteps  int
}

// Reset zeroes every counter (spec.md §4.7: "reset on demand").
func (s *Stats) Reset() { *s = Stats{} }

func (s *Stats) recordProof(depth, steps int) {
	s.Proofs++
	s.TotalProofSteps += steps
	if depth > s.MaxProofDepth {
		s.MaxProofDepth = depth
	}
	if s.MinProofDepth == 0 || depth < s.MinProofDepth {
		s.MinProofDepth = depth
	}
}

// ProofStep is one tagged record in a proof trace (spec.md §4.7).
type ProofStep struct {
	Operation    string
	Fact         *kb.Entry
	Rule         *rule.Rule
	Substitution map[string]string
	Detail       string
}

// Result is proveGoal/proveCondition's return shape.
type Result struct {
	Valid  bool
	Method string
	Steps  []ProofStep
	Reason string
}

// Reasoner answers prove/query/findAll over one session's KB and rule
// store. It holds no vector substrate dependency for Prove itself —
// symbolic priority never touches HDC vectors — but HolographicPriority
// candidate generation in query.go needs the vocabulary and strategy,
// so both are carried here for that path.
type Reasoner struct {
	KB     *kb.KB
	Rules  *rule.Store
	Config Config
	Stats  Stats

	// Vocab/Positions/Strategy/Geometry back the HolographicPriority
	// candidate-generation path in query.go (similarity ranking against
	// KB entries' vectors). Left zero-valued when the session never
	// enables holographic priority.
	Vocab     *vocabulary.Vocabulary
	Positions *hdvector.PositionRegistry
	Strategy  hdvector.Strategy
	Geometry  hdvector.Geometry
	HDC       *hdvector.HdcContext
}

// New creates a Reasoner over session-owned KB and rule stores.
func New(k *kb.KB, rules *rule.Store, cfg Config) *Reasoner {
	return &Reasoner{KB: k, Rules: rules, Config: cfg}
}

// WithHolographicSupport attaches the vector substrate needed by the
// HolographicPriority query path. The session facade calls this only
// when Config.Priority == HolographicPriority.
func (r *Reasoner) WithHolographicSupport(vocab *vocabulary.Vocabulary, positions *hdvector.PositionRegistry, strategy hdvector.Strategy, geom hdvector.Geometry, hctx *hdvector.HdcContext) {
	r.Vocab = vocab
	r.Positions = positions
	r.Strategy = strategy
	r.Geometry = geom
	r.HDC = hctx
}

// usedSet tracks which KB entries an AND conjunction has already
// consumed, so the same entry cannot satisfy both conjuncts (spec.md
// §4.7: "AND tracks already-used KB entries to disallow reuse within a
// single AND satisfaction").
type usedSet struct {
	m map[*kb.Entry]bool
}

func newUsedSet() *usedSet { return &usedSet{m: make(map[*kb.Entry]bool)} }

func cloneUsed(u *usedSet) *usedSet {
	if u == nil {
		return newUsedSet()
	}
	m := make(map[*kb.Entry]bool, len(u.m))
	for k, v := range u.m {
		m[k] = v
	}
	return &usedSet{m: m}
}

func mergeUsed(dst, src *usedSet) {
	if dst == nil || src == nil {
		return
	}
	for k, v := range src.m {
		dst.m[k] = v
	}
}

// Prove runs proveGoal on a top-level goal condition (spec.md §4.7's
// "Prove" entry point). The goal may be any Condition — most commonly
// a *rule.Fact, but Not/And/Or are accepted directly too.
func (r *Reasoner) Prove(ctx context.Context, goal rule.Condition) (*Result, error) {
	r.Stats.Queries++
	res, err := r.proveCondition(ctx, goal, 1, nil)
	if err != nil {
		return nil, err
	}
	if res.Valid {
		r.Stats.recordProof(1, len(res.Steps))
	}
	return res, nil
}

func (r *Reasoner) depthExceeded(depth int) bool {
	return depth > r.Config.MaxProofDepth
}

func checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// proveCondition implements spec.md §4.7's proveCondition algorithm.
func (r *Reasoner) proveCondition(ctx context.Context, node rule.Condition, depth int, used *usedSet) (*Result, error) {
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}
	switch n := node.(type) {
	case *rule.And:
		shared := cloneUsed(used)
		ra, err := r.proveCondition(ctx, n.A, depth, shared)
		if err != nil {
			return nil, err
		}
		if !ra.Valid {
			return &Result{Valid: false, Reason: "left conjunct failed: " + ra.Reason}, nil
		}
		rb, err := r.proveCondition(ctx, n.B, depth, shared)
		if err != nil {
			return nil, err
		}
		if !rb.Valid {
			return &Result{Valid: false, Reason: "right conjunct failed: " + rb.Reason}, nil
		}
		mergeUsed(used, shared)
		steps := append(append([]ProofStep{}, ra.Steps...), rb.Steps...)
		return &Result{Valid: true, Method: "and", Steps: steps}, nil

	case *rule.Or:
		aUsed := cloneUsed(used)
		ra, err := r.proveCondition(ctx, n.A, depth, aUsed)
		if err != nil {
			return nil, err
		}
		if ra.Valid {
			mergeUsed(used, aUsed)
			return &Result{Valid: true, Method: "or", Steps: ra.Steps}, nil
		}
		bUsed := cloneUsed(used)
		rb, err := r.proveCondition(ctx, n.B, depth, bUsed)
		if err != nil {
			return nil, err
		}
		if rb.Valid {
			mergeUsed(used, bUsed)
			return &Result{Valid: true, Method: "or", Steps: rb.Steps}, nil
		}
		return &Result{Valid: false, Reason: "neither branch of Or holds"}, nil

	case *rule.Not:
		return r.proveNot(ctx, n.Inner, depth, used)

	case *rule.Fact:
		return r.proveGoal(ctx, n, depth, used)

	default:
		return &Result{Valid: false, Reason: "unrecognized condition node"}, nil
	}
}

// proveNot implements "Not(p) → invert proveGoal(p)", honoring the CWA
// precondition from spec.md §4.7: "CWA is enabled only when the
// session is configured with closedWorldAssumption=true; otherwise
// Not(P) is provable only from an explicit negation fact."
func (r *Reasoner) proveNot(ctx context.Context, inner rule.Condition, depth int, used *usedSet) (*Result, error) {
	if !r.Config.ClosedWorldAssumption {
		fact, ok := inner.(*rule.Fact)
		if !ok {
			return &Result{Valid: false, Reason: "closed-world assumption disabled"}, nil
		}
		if entry, ok := r.KB.Lookup(fact.Operator, fact.Args, kb.Negative); ok {
			return &Result{Valid: true, Method: "explicit negation", Steps: []ProofStep{{Operation: "negated-fact", Fact: entry}}}, nil
		}
		return &Result{Valid: false, Reason: "closed-world assumption disabled"}, nil
	}
	inner1, err := r.proveCondition(ctx, inner, depth+1, used)
	if err != nil {
		return nil, err
	}
	if inner1.Valid {
		return &Result{Valid: false, Reason: "negation of provable"}, nil
	}
	return &Result{Valid: true, Method: "CWA", Steps: []ProofStep{{Operation: "cwa-negation", Detail: inner1.Reason}}}, nil
}

// proveGoal implements spec.md §4.7's proveGoal algorithm for an atomic
// Fact goal (the Not case is handled by proveCondition/proveNot before
// reaching here).
func (r *Reasoner) proveGoal(ctx context.Context, goal *rule.Fact, depth int, used *usedSet) (*Result, error) {
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}
	if r.depthExceeded(depth) {
		return &Result{Valid: false, Reason: "depth"}, nil
	}

	r.Stats.KBScans++
	if entry, ok := r.KB.Lookup(goal.Operator, goal.Args, kb.Positive); ok {
		if used == nil || !used.m[entry] {
			if used != nil {
				used.m[entry] = true
			}
			return &Result{Valid: true, Method: "direct", Steps: []ProofStep{{Operation: "direct-match", Fact: entry}}}, nil
		}
	}
	if _, ok := r.KB.Lookup(goal.Operator, goal.Args, kb.Negative); ok {
		return &Result{Valid: false, Reason: "explicit negation"}, nil
	}

	for _, rl := range r.Rules.All() {
		if rl.Consequent.Operator != goal.Operator {
			continue
		}
		subst, ok := unify(rl.Consequent, goal)
		if !ok {
			continue
		}
		r.Stats.RuleAttempts++
		substituted := applySubstitution(rl.Antecedent, subst)
		rres, err := r.proveCondition(ctx, substituted, depth+1, used)
		if err != nil {
			return nil, err
		}
		if rres.Valid {
			step := ProofStep{Operation: "rule-applied", Rule: rl, Substitution: subst}
			steps := append([]ProofStep{step}, rres.Steps...)
			return &Result{Valid: true, Method: "rule", Steps: steps}, nil
		}
	}

	if r.Config.isTransitive(goal.Operator) && len(goal.Args) == 2 {
		if tres, ok, err := r.proveTransitive(ctx, goal); err != nil {
			return nil, err
		} else if ok {
			return tres, nil
		}
	}

	return &Result{Valid: false, Reason: "no derivation"}, nil
}

// unify matches a rule consequent template against a concrete goal,
// binding the consequent's free variables ("?x") to the goal's
// corresponding argument. Fails if a non-free-variable position
// differs, if arity differs, or if a repeated free variable would bind
// to two different values.
func unify(consequent *rule.Fact, goal *rule.Fact) (map[string]string, bool) {
	if consequent.Operator != goal.Operator || len(consequent.Args) != len(goal.Args) {
		return nil, false
	}
	subst := make(map[string]string)
	for i, cArg := range consequent.Args {
		gArg := goal.Args[i]
		if isFreeVar(cArg) {
			if bound, ok := subst[cArg]; ok {
				if bound != gArg {
					return nil, false
				}
				continue
			}
			subst[cArg] = gArg
			continue
		}
		if cArg != gArg {
			return nil, false
		}
	}
	return subst, true
}

func isFreeVar(arg string) bool { return len(arg) > 0 && arg[0] == '?' }

// applySubstitution replaces every free-variable argument in a
// condition tree with its bound value, leaving unbound free variables
// (not part of this rule's consequent, e.g. existentially quantified
// antecedent-only variables) untouched.
func applySubstitution(c rule.Condition, subst map[string]string) rule.Condition {
	switch n := c.(type) {
	case *rule.Fact:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			if bound, ok := subst[a]; ok {
				args[i] = bound
			} else {
				args[i] = a
			}
		}
		return &rule.Fact{Operator: n.Operator, Args: args}
	case *rule.And:
		return &rule.And{A: applySubstitution(n.A, subst), B: applySubstitution(n.B, subst)}
	case *rule.Or:
		return &rule.Or{A: applySubstitution(n.A, subst), B: applySubstitution(n.B, subst)}
	case *rule.Not:
		return &rule.Not{Inner: applySubstitution(n.Inner, subst)}
	default:
		return c
	}
}
