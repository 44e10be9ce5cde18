package csp

import (
	"context"
	"time"

	"github.com/gitrdm/sys2/pkg/kb"
)

// Heuristic selects the variable-ordering rule used at each
// backtracking step (spec.md §4.8).
type Heuristic int

const (
	// MRV picks the unassigned variable with the fewest remaining
	// domain values, ties broken by declaration order.
	MRV Heuristic = iota
	// FirstFail picks by domain-size/degree ratio, the teacher's own
	// labeling.go FirstFailLabeling heuristic, generalized from
	// integer FD vars to string-domain CSP vars.
	FirstFail
)

// Config carries the search knobs from spec.md §4.8.
type Config struct {
	Heuristic       Heuristic
	ForwardChecking bool
	Timeout         time.Duration
	MaxSolutions    int
}

// DefaultConfig returns the spec's documented defaults: MRV ordering,
// forward checking on, a 10-second wall-clock budget, and a 100
// solution cap.
func DefaultConfig() Config {
	return Config{
		Heuristic:       MRV,
		ForwardChecking: true,
		Timeout:         10 * time.Second,
		MaxSolutions:    100,
	}
}

// Solution is one full variable assignment that satisfied every
// constraint. Order preserves declaration order for deterministic
// materialization (spec.md §4.8's solution vector is a positional
// bundle, so it needs a fixed variable order).
type Solution struct {
	Assignment map[string]string
	Order      []string
}

// Result is Solve's return shape (spec.md §4.8's "partial solutions
// with flag" failure semantics).
type Result struct {
	Solutions []Solution
	Truncated bool
	TimedOut  bool
}

// Solver runs backtracking search with MRV/first-fail ordering and
// optional forward checking over a DomainManager and a constraint
// set, grounded on the teacher's fd_solver.go (Solve orchestration)
// and labeling.go (variable-selection heuristics).
type Solver struct {
	DM          *DomainManager
	Constraints []Constraint
	KB          *kb.KB
	Config      Config
}

// NewSolver creates a Solver over an already-populated DomainManager.
func NewSolver(dm *DomainManager, constraints []Constraint, store *kb.KB, cfg Config) *Solver {
	return &Solver{DM: dm, Constraints: constraints, KB: store, Config: cfg}
}

// Solve runs backtracking search to completion, timeout, or the
// solution cap, whichever comes first.
func (s *Solver) Solve(ctx context.Context) (*Result, error) {
	var deadline time.Time
	if s.Config.Timeout > 0 {
		deadline = time.Now().Add(s.Config.Timeout)
	}

	byVar := make(map[string][]Constraint)
	for _, c := range s.Constraints {
		for _, v := range c.Variables() {
			byVar[v] = append(byVar[v], c)
		}
	}

	res := &Result{}
	err := s.backtrack(ctx, deadline, byVar, res)
	return res, err
}

func (s *Solver) timedOut(deadline time.Time) bool {
	return !deadline.IsZero() && time.Now().After(deadline)
}

// backtrack implements the recursive search: select a variable, try
// its domain values in order, propagate (forward check), recurse, and
// undo on failure. Deterministic per spec.md §4.8: "variables selected
// by MRV with ties broken by declaration order; values tried in
// declaration order."
func (s *Solver) backtrack(ctx context.Context, deadline time.Time, byVar map[string][]Constraint, res *Result) error {
	select {
	case <-ctx.Done():
		res.TimedOut = true
		return ctx.Err()
	default:
	}
	if s.timedOut(deadline) {
		res.TimedOut = true
		return nil
	}
	if len(res.Solutions) >= s.Config.MaxSolutions {
		res.Truncated = true
		return nil
	}

	variable := s.selectVariable()
	if variable == "" {
		res.Solutions = append(res.Solutions, s.currentSolution())
		return nil
	}

	d := s.DM.Get(variable)
	values := make([]string, len(d.Current))
	copy(values, d.Current)

	for _, value := range values {
		if s.timedOut(deadline) {
			res.TimedOut = true
			return nil
		}
		if len(res.Solutions) >= s.Config.MaxSolutions {
			res.Truncated = true
			return nil
		}

		mark := s.DM.Mark()
		d.Assign(value)

		conflict := !s.checkAffected(variable, byVar)
		if !conflict && s.Config.ForwardChecking {
			conflict = s.propagate(variable, value)
		}

		if !conflict {
			if err := s.backtrack(ctx, deadline, byVar, res); err != nil {
				s.DM.Rollback(mark)
				return err
			}
		}
		s.DM.Rollback(mark)
	}
	return nil
}

// checkAffected evaluates every checkable constraint that references
// variable, after its assignment.
func (s *Solver) checkAffected(variable string, byVar map[string][]Constraint) bool {
	for _, c := range byVar[variable] {
		if checkable(c.Variables(), s.DM) && !c.Evaluate(s.DM, s.KB) {
			return false
		}
	}
	return true
}

// propagate runs forward checking: every Propagator constraint
// touching variable prunes neighbouring domains, reporting a conflict
// if any domain was emptied (spec.md §4.8: "if any becomes empty,
// backtrack").
func (s *Solver) propagate(variable, value string) bool {
	for _, c := range s.Constraints {
		p, ok := c.(Propagator)
		if !ok {
			continue
		}
		if p.Propagate(s.DM, variable, value) {
			return true
		}
	}
	return false
}

func (s *Solver) currentSolution() Solution {
	order := s.DM.Order()
	assignment := make(map[string]string, len(order))
	for _, v := range order {
		assignment[v] = s.DM.Value(v)
	}
	return Solution{Assignment: assignment, Order: order}
}

// selectVariable applies the configured heuristic over the
// declared-order variable list, returning "" when every variable is
// assigned.
func (s *Solver) selectVariable() string {
	switch s.Config.Heuristic {
	case FirstFail:
		return s.selectFirstFail()
	default:
		return s.selectMRV()
	}
}

func (s *Solver) selectMRV() string {
	best := ""
	bestSize := -1
	for _, v := range s.DM.order {
		d := s.DM.Get(v)
		if d.Assigned {
			continue
		}
		if best == "" || d.Size() < bestSize {
			best = v
			bestSize = d.Size()
		}
	}
	return best
}

// selectFirstFail mirrors the teacher's FirstFailLabeling: domain
// size divided by (1 + constraint degree), smallest ratio wins.
func (s *Solver) selectFirstFail() string {
	degree := make(map[string]int)
	for _, c := range s.Constraints {
		for _, v := range c.Variables() {
			degree[v]++
		}
	}

	best := ""
	bestScore := -1.0
	for _, v := range s.DM.order {
		d := s.DM.Get(v)
		if d.Assigned {
			continue
		}
		score := float64(d.Size()) / float64(1+degree[v])
		if best == "" || score < bestScore {
			best = v
			bestScore = score
		}
	}
	return best
}
