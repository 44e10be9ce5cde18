// Package session implements the Session facade (spec.md §6's Session
// API table): it owns one set of C1-C8 component instances per
// session, wires them together from a config.Config, and exposes
// learn/query/prove/findAll/solve/inspect/stats/dump/close as the
// single entry point external callers use. Grounded on the teacher's
// highlevel_api_pldb.go, which plays the same role for gokando's
// miniKanren engine: a thin façade gluing a store, a unifier, and a
// search strategy behind a handful of verbs.
package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gitrdm/sys2/internal/config"
	"github.com/gitrdm/sys2/internal/errs"
	"github.com/gitrdm/sys2/pkg/csp"
	"github.com/gitrdm/sys2/pkg/dsl"
	"github.com/gitrdm/sys2/pkg/executor"
	"github.com/gitrdm/sys2/pkg/hdvector"
	"github.com/gitrdm/sys2/pkg/kb"
	"github.com/gitrdm/sys2/pkg/reasoner"
	"github.com/gitrdm/sys2/pkg/rule"
	"github.com/gitrdm/sys2/pkg/scope"
	"github.com/gitrdm/sys2/pkg/vocabulary"
)

// Session owns one complete instance of the sys2 reasoning core:
// vocabulary (C1), position registry (C2), scope (C4), knowledge base
// (C3), rule store, executor (C6), reasoner (C7), and the CSP
// components (C8), all sized and configured from a single
// config.Config. Sessions are single-threaded (spec.md §5: "no
// intra-session parallelism") — callers must not invoke Session
// methods concurrently.
type Session struct {
	ID     string
	Config config.Config
	Log    *zap.Logger

	Vocab     *vocabulary.Vocabulary
	Positions *hdvector.PositionRegistry
	Scope     *scope.Scope
	KB        *kb.KB
	Rules     *rule.Store
	Executor  *executor.Executor
	Reasoner  *reasoner.Reasoner
	Domains   *csp.DomainManager
	HDC       *hdvector.HdcContext

	materializer *csp.Materializer
	closed       bool
}

// New builds a Session from a config.Config. A nil logger defaults to
// zap.NewNop(), matching the teacher's pattern of never requiring
// callers in tests to set up a real sink.
func New(cfg config.Config, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}

	// hctx is the one HdcContext shared by this session's Vocabulary,
	// PositionRegistry, Executor, Reasoner (holographic mode) and CSP
	// Materializer, so a stateful strategy (Exact) draws every atom and
	// position-marker id from a single table (no cross-component id
	// collisions) and every Bind/Bundle call the session drives counts
	// against the same hdcBindOps/hdcBundleOps totals (spec.md §4.1).
	hctx := hdvector.NewHdcContext()
	vocab := vocabulary.New(cfg.HDCStrategy, cfg.Dimensions, hctx)
	positions := hdvector.NewPositionRegistry(cfg.HDCStrategy, cfg.Dimensions, hctx)
	sc := scope.New()
	store := kb.New(cfg.RejectContradictions)
	rules := rule.New()

	exec := executor.New(vocab, sc, store, rules, positions, cfg.HDCStrategy, cfg.Dimensions, cfg.RecursionHorizon, hctx)

	rcfg := reasoner.Config{
		ClosedWorldAssumption: cfg.ClosedWorldAssumption,
		MaxProofDepth:         cfg.MaxProofDepth,
		MaxTransitiveDepth:    cfg.MaxTransitiveDepth,
		Priority:              cfg.ReasoningPriority,
	}
	r := reasoner.New(store, rules, rcfg)
	if cfg.ReasoningPriority == reasoner.HolographicPriority {
		r.WithHolographicSupport(vocab, positions, cfg.HDCStrategy, cfg.Dimensions, hctx)
	}

	dm := csp.NewDomainManager()

	s := &Session{
		ID:           uuid.NewString(),
		Config:       cfg,
		Log:          logger,
		Vocab:        vocab,
		Positions:    positions,
		Scope:        sc,
		KB:           store,
		Rules:        rules,
		Executor:     exec,
		Reasoner:     r,
		Domains:      dm,
		HDC:          hctx,
		materializer: csp.NewMaterializer(store, vocab, positions, hctx),
	}
	s.Log.Info("session opened", zap.String("id", s.ID), zap.String("profile", string(cfg.Profile)))
	return s
}

// Open is an alias for New kept for symmetry with Close, matching the
// Session API table's open/close verb pairing.
func Open(cfg config.Config, logger *zap.Logger) *Session {
	return New(cfg, logger)
}

// Close marks the session closed. Further Learn, Prove, Query and Solve
// calls return a resource-kind error; FindAll, Stats, HDCStats,
// ResetStats, Dump and Inspect do not check for a closed session.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.Log.Info("session closed", zap.String("id", s.ID))
	return nil
}

func (s *Session) checkOpen() error {
	if s.closed {
		return errs.New(errs.KindResource, "SessionClosed", "session "+s.ID+" is closed")
	}
	return nil
}

// LearnResult is Learn's return shape, echoing executor.LearnResult
// plus the statement count attempted.
type LearnResult struct {
	StatementsParsed int
	FactsAdded       int
	RulesAdded       int
}

// Learn parses src and executes every statement, rolling the KB and
// rule store back to their pre-call snapshots on any syntax or
// execution error (spec.md §3: "on failure the whole learn call is
// rolled back"). A parse with any syntax error is rejected outright
// without touching the KB.
func (s *Session) Learn(src string) (*LearnResult, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	prog, syntaxErrs := dsl.Parse(src)
	if len(syntaxErrs) > 0 {
		return nil, errs.Wrap(errs.KindSyntax, "ParseFailed", fmt.Sprintf("%d syntax error(s)", len(syntaxErrs)), syntaxErrs[0])
	}

	kbMark := s.KB.Mark()
	ruleMark := s.Rules.Mark()

	res, err := s.Executor.Learn(prog.Statements)
	if err != nil {
		s.KB.Rollback(kbMark)
		s.Rules.Rollback(ruleMark)
		s.Log.Warn("learn rolled back", zap.String("id", s.ID), zap.Error(err))
		return nil, err
	}

	s.Log.Info("learn committed", zap.String("id", s.ID),
		zap.Int("factsAdded", res.FactsAdded), zap.Int("rulesAdded", res.RulesAdded))
	return &LearnResult{StatementsParsed: len(prog.Statements), FactsAdded: res.FactsAdded, RulesAdded: res.RulesAdded}, nil
}

// Prove runs backward-chaining proof search over a ground fact
// pattern, per spec.md §4.7.
func (s *Session) Prove(ctx context.Context, operator string, args []string) (*reasoner.Result, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.Reasoner.Prove(ctx, &rule.Fact{Operator: operator, Args: args})
}

// FindAll is the direct-fact-only KB scan, no rule application.
func (s *Session) FindAll(operator string, pattern []string) []*kb.Entry {
	return s.Reasoner.FindAll(&rule.Fact{Operator: operator, Args: pattern})
}

// Query resolves hole positions in pattern to every provable binding,
// up to maxResults.
func (s *Session) Query(ctx context.Context, operator string, pattern []string, maxResults int) ([]reasoner.QueryBinding, bool, error) {
	if err := s.checkOpen(); err != nil {
		return nil, false, err
	}
	return s.Reasoner.Query(ctx, &rule.Fact{Operator: operator, Args: pattern}, maxResults)
}

// Solve runs the CSP backtracking search described in spec.md §4.8 and
// materializes each solution into the KB as assignment(var, value)
// facts plus a bundled __solution__ fact, tagged with source statement
// id -1. If materialization fails, the KB is rolled back to its state
// before the first solution was written.
func (s *Session) Solve(ctx context.Context, constraints []csp.Constraint, cfg csp.Config) (*csp.Result, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	solver := csp.NewSolver(s.Domains, constraints, s.KB, cfg)
	res, err := solver.Solve(ctx)
	if err != nil {
		return nil, err
	}

	kbMark := s.KB.Mark()
	sourceID := -1
	for _, sol := range res.Solutions {
		if _, _, err := s.materializer.Materialize(sol, sourceID); err != nil {
			s.KB.Rollback(kbMark)
			return nil, err
		}
	}
	s.Log.Info("solve complete", zap.String("id", s.ID),
		zap.Int("solutions", len(res.Solutions)), zap.Bool("truncated", res.Truncated), zap.Bool("timedOut", res.TimedOut))
	return res, nil
}

// Stats returns the reasoner's session-local counters (spec.md §4.7).
func (s *Session) Stats() reasoner.Stats {
	return s.Reasoner.Stats
}

// HDCStats returns the session-local HDC substrate counters (spec.md
// §4.1: hdcBindOps, hdcBundleOps), distinct from the reasoner's
// higher-level proof-search counters returned by Stats.
func (s *Session) HDCStats() hdvector.HdcStats {
	return s.HDC.Stats()
}

// ResetStats zeroes the reasoner's and the HDC substrate's counters on
// demand.
func (s *Session) ResetStats() {
	s.Reasoner.Stats.Reset()
	s.HDC.ResetStats()
}
