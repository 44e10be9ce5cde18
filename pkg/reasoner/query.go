package reasoner

import (
	"context"

	"github.com/gitrdm/sys2/pkg/hdvector"
	"github.com/gitrdm/sys2/pkg/kb"
	"github.com/gitrdm/sys2/pkg/rule"
)

// QueryBinding is one element of query()'s result set (spec.md §4.7):
// the hole->value bindings that made the completed goal provable, plus
// the proof that established it.
type QueryBinding struct {
	Bindings map[string]string
	Proof    *Result
}

func isHoleArg(arg string) bool { return isFreeVar(arg) }

// toWildcardPattern converts a *rule.Fact pattern's "?name" holes into
// kb.FindAll's "" wildcard convention, and returns the hole names in
// positional order (empty string at non-hole positions).
func toWildcardPattern(pattern *rule.Fact) ([]string, []string) {
	wildcard := make([]string, len(pattern.Args))
	holeNames := make([]string, len(pattern.Args))
	for i, a := range pattern.Args {
		if isHoleArg(a) {
			holeNames[i] = a[1:]
			wildcard[i] = ""
		} else {
			wildcard[i] = a
		}
	}
	return wildcard, holeNames
}

// FindAll implements spec.md §4.7's findAll: direct KB facts matching a
// pattern, no rule application. Hole ("?name") positions are wildcards.
func (r *Reasoner) FindAll(pattern *rule.Fact) []*kb.Entry {
	wildcard, _ := toWildcardPattern(pattern)
	r.Stats.KBScans++
	return r.KB.FindAll(pattern.Operator, wildcard)
}

// Query implements spec.md §4.7's "Query with holes": candidates for
// each hole position are enumerated (primary: direct KB scan on fixed
// positions; secondary, in HolographicPriority mode with zero direct
// candidates: similarity ranking of the pattern's vector against KB
// entries), each
// candidate's completed goal is proved, and up to maxResults
// successful bindings are returned in KB insertion order.
func (r *Reasoner) Query(ctx context.Context, pattern *rule.Fact, maxResults int) ([]QueryBinding, bool, error) {
	r.Stats.Queries++
	wildcard, holeNames := toWildcardPattern(pattern)
	candidates := r.KB.FindAll(pattern.Operator, wildcard)

	if len(candidates) == 0 && r.Config.Priority == HolographicPriority && r.Vocab != nil {
		hc, err := r.holographicCandidates(pattern)
		if err != nil {
			return nil, false, err
		}
		candidates = hc
	}

	var out []QueryBinding
	truncated := false
	for _, cand := range candidates {
		if err := checkCancelled(ctx); err != nil {
			return nil, false, err
		}
		bindings := make(map[string]string)
		for i, name := range holeNames {
			if name != "" {
				bindings[name] = cand.Args[i]
			}
		}
		goal := &rule.Fact{Operator: pattern.Operator, Args: cand.Args}
		proof, err := r.proveGoal(ctx, goal, 1, nil)
		if err != nil {
			return nil, false, err
		}
		if !proof.Valid {
			continue
		}
		if len(out) >= maxResults {
			truncated = true
			break
		}
		out = append(out, QueryBinding{Bindings: bindings, Proof: proof})
	}
	return out, truncated, nil
}

// holographicCandidates implements the secondary candidate-generation
// path: build the query vector with holes resolved to their sentinel
// hole vectors, then topK against the vector of every KB entry with the
// pattern's operator, returning
// the entries whose similarity clears a fixed acceptance threshold.
// This never runs unless the primary direct-scan path found nothing,
// matching spec.md's "secondary, in holographic mode" wording.
func (r *Reasoner) holographicCandidates(pattern *rule.Fact) ([]*kb.Entry, error) {
	const acceptThreshold = 0.55

	opVec, err := r.Vocab.GetOrCreate(pattern.Operator)
	if err != nil {
		return nil, err
	}
	queryVec := opVec
	for i, arg := range pattern.Args {
		var argVec hdvector.Vector
		if isHoleArg(arg) {
			argVec, err = hdvector.CreateFromName("__HOLE_"+arg[1:]+"__", r.Geometry, r.Strategy, r.HDC)
		} else {
			argVec, err = r.Vocab.GetOrCreate(arg)
		}
		if err != nil {
			return nil, err
		}
		pos, err := r.Positions.Position(i + 1)
		if err != nil {
			return nil, err
		}
		bound, err := r.HDC.Bind(pos, argVec)
		if err != nil {
			return nil, err
		}
		queryVec, err = r.HDC.Bundle([]hdvector.Vector{queryVec, bound})
		if err != nil {
			return nil, err
		}
	}

	entries := r.KB.ByOperator(pattern.Operator)
	vectors := make([]hdvector.Vector, len(entries))
	for i, e := range entries {
		vectors[i] = e.Vector
	}
	scored, err := hdvector.TopK(queryVec, vectors, len(vectors))
	if err != nil {
		return nil, err
	}
	r.Stats.SimilarityChecks += len(vectors)

	var out []*kb.Entry
	for _, s := range scored {
		if s.Similarity < acceptThreshold {
			continue
		}
		out = append(out, entries[indexOfVector(vectors, s.Vector)])
	}
	return out, nil
}

func indexOfVector(vs []hdvector.Vector, target hdvector.Vector) int {
	for i, v := range vs {
		if v.Equal(target) {
			return i
		}
	}
	return -1
}
