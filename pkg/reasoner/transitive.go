package reasoner

import (
	"context"

	"github.com/gitrdm/sys2/pkg/kb"
	"github.com/gitrdm/sys2/pkg/rule"
)

// proveTransitive implements spec.md §4.7's transitive closure search:
// "from the goal's subject, enumerate KB edges with the goal's
// operator, recursing to a bounded depth (default 10), with
// visited-set cycle protection." Grounded on the teacher's
// search.go/tabling.go BFS-with-visited-set traversal shape.
func (r *Reasoner) proveTransitive(ctx context.Context, goal *rule.Fact) (*Result, bool, error) {
	subject, target := goal.Args[0], goal.Args[1]

	type frontierNode struct {
		name string
		path []*kb.Entry
	}
	visited := map[string]bool{subject: true}
	queue := []frontierNode{{name: subject}}

	for depth := 0; len(queue) > 0 && depth < r.Config.MaxTransitiveDepth; depth++ {
		if err := checkCancelled(ctx); err != nil {
			return nil, false, err
		}
		var next []frontierNode
		for _, node := range queue {
			r.Stats.TransitiveSteps++
			edges := r.KB.FindAll(goal.Operator, []string{node.name, ""})
			for _, e := range edges {
				neighbor := e.Args[1]
				path := append(append([]*kb.Entry{}, node.path...), e)
				if neighbor == target {
					steps := make([]ProofStep, len(path))
					for i, pe := range path {
						steps[i] = ProofStep{Operation: "transitive-edge", Fact: pe}
					}
					return &Result{Valid: true, Method: "transitive", Steps: steps}, true, nil
				}
				if !visited[neighbor] {
					visited[neighbor] = true
					next = append(next, frontierNode{name: neighbor, path: path})
				}
			}
		}
		queue = next
	}
	return nil, false, nil
}
