// Package config decodes a session's JSON configuration profile
// (spec.md §6) and fills in the documented defaults for any key left
// unset. Grounded on the teacher's strategy.go registry pattern for
// validating enum-like string fields, and on SPEC_FULL.md §10's
// ambient-stack wiring: goccy/go-json replaces encoding/json here
// because every other wire-format boundary in this module (dump/load,
// see pkg/session) already uses it, and a session's only config source
// is this same JSON shape.
package config

import (
	"os"

	"github.com/goccy/go-json"

	"github.com/gitrdm/sys2/internal/errs"
	"github.com/gitrdm/sys2/pkg/hdvector"
	"github.com/gitrdm/sys2/pkg/reasoner"
)

// Profile names the deployment/testing context a session runs under
// (spec.md §6). It has no behavioral effect on its own; it documents
// intent and is echoed back by inspect/dump.
type Profile string

const (
	ProfileAutoTest   Profile = "auto_test"
	ProfileManualTest Profile = "manual_test"
	ProfileProd       Profile = "prod"
)

// IndexStrategy selects the reverse-index (vocabulary hash->name)
// lookup structure (spec.md §6).
type IndexStrategy string

const (
	IndexLSHPStable IndexStrategy = "lsh_pstable"
	IndexSimhash    IndexStrategy = "simhash"
	IndexGrid       IndexStrategy = "grid"
)

// Config is the full decoded session configuration profile, spec.md
// §6's key table in struct form. JSON tags match the spec's key names
// exactly so a profile file round-trips without field renaming.
type Config struct {
	Profile               Profile           `json:"profile"`
	Dimensions            hdvector.Geometry `json:"dimensions"`
	HDCStrategy           hdvector.Strategy `json:"hdcStrategy"`
	ReasoningPriority     reasoner.Priority `json:"-"`
	ReasoningPriorityName string            `json:"reasoningPriority"`
	ClosedWorldAssumption bool              `json:"closedWorldAssumption"`
	RecursionHorizon      int               `json:"recursionHorizon"`
	RejectContradictions  bool              `json:"rejectContradictions"`
	MaxProofDepth         int               `json:"maxProofDepth"`
	MaxTransitiveDepth    int               `json:"maxTransitiveDepth"`
	IndexStrategy         IndexStrategy     `json:"indexStrategy"`
	AutoLoadCore          bool              `json:"autoLoadCore"`
	CorePath              string            `json:"corePath"`
	StorageRoot           string            `json:"storageRoot"`
	RotationSeed          int64             `json:"rotationSeed"`
	RelationSeed          int64             `json:"relationSeed"`
	LSHSeed               int64             `json:"lshSeed"`
}

// Default returns spec.md §6's documented defaults. Dimensions default
// to 32768, with hdcStrategy defaulting to "exact" only when the
// geometry is small (<=1024) and "dense-binary" otherwise, per the
// spec's "default exact for small geometries, dense-binary otherwise"
// rule.
func Default() Config {
	cfg := Config{
		Profile:               ProfileManualTest,
		Dimensions:            hdvector.DefaultGeometry,
		ReasoningPriority:     reasoner.SymbolicPriority,
		ReasoningPriorityName: "symbolicPriority",
		ClosedWorldAssumption: true,
		RecursionHorizon:      3,
		RejectContradictions:  true,
		MaxProofDepth:         20,
		MaxTransitiveDepth:    10,
		IndexStrategy:         IndexLSHPStable,
		AutoLoadCore:          true,
	}
	cfg.HDCStrategy = defaultStrategyFor(cfg.Dimensions)
	return cfg
}

func defaultStrategyFor(dim hdvector.Geometry) hdvector.Strategy {
	if dim <= hdvector.Geom1024 {
		return hdvector.Exact
	}
	return hdvector.DenseBinary
}

// Load reads a JSON profile file, overlaying it onto Default(). A
// missing file is not an error: callers get pure defaults, matching
// the spec's "every key has a documented default" guarantee.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errs.Wrap(errs.KindResource, "ConfigReadFailed", "reading config profile: "+path, err)
	}
	return Parse(data)
}

// Parse decodes a JSON profile document onto Default()'s baseline, so
// any key the document omits keeps its spec-mandated default. The HDC
// strategy is cleared first so that, when omitted, normalize picks it
// from the document's dimensions.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	cfg.HDCStrategy = ""
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errs.Wrap(errs.KindSyntax, "ConfigParseFailed", "decoding config profile", err)
	}
	if err := cfg.normalize(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// normalize validates enum-like fields and resolves the
// reasoningPriority string into reasoner.Priority, applying the
// size-dependent hdcStrategy default if the document left it blank.
func (c *Config) normalize() error {
	if c.Dimensions == 0 {
		c.Dimensions = hdvector.DefaultGeometry
	}
	if !validGeometry(c.Dimensions) {
		return errs.New(errs.KindSemantic, "InvalidDimensions", "dimensions must be one of the spec-fixed geometries")
	}
	if c.HDCStrategy == "" {
		c.HDCStrategy = defaultStrategyFor(c.Dimensions)
	}
	switch c.ReasoningPriorityName {
	case "", "symbolicPriority":
		c.ReasoningPriority = reasoner.SymbolicPriority
		c.ReasoningPriorityName = "symbolicPriority"
	case "holographicPriority":
		c.ReasoningPriority = reasoner.HolographicPriority
	default:
		return errs.New(errs.KindSemantic, "InvalidReasoningPriority", "reasoningPriority must be symbolicPriority or holographicPriority")
	}
	if c.RecursionHorizon == 0 {
		c.RecursionHorizon = 3
	}
	if c.RecursionHorizon < 1 || c.RecursionHorizon > 5 {
		return errs.New(errs.KindSemantic, "InvalidRecursionHorizon", "recursionHorizon must be in 1..5")
	}
	if c.MaxProofDepth == 0 {
		c.MaxProofDepth = 20
	}
	if c.MaxTransitiveDepth == 0 {
		c.MaxTransitiveDepth = 10
	}
	if c.IndexStrategy == "" {
		c.IndexStrategy = IndexLSHPStable
	}
	if c.Profile == "" {
		c.Profile = ProfileManualTest
	}
	return nil
}

func validGeometry(g hdvector.Geometry) bool {
	switch g {
	case hdvector.Geom512, hdvector.Geom1024, hdvector.Geom2048, hdvector.Geom4096,
		hdvector.Geom8192, hdvector.Geom16384, hdvector.Geom32768, hdvector.Geom65536:
		return true
	}
	return false
}

// MarshalJSON keeps ReasoningPriorityName (the wire representation) in
// sync with ReasoningPriority before encoding, so a Config built
// programmatically (not via Parse) still round-trips correctly through
// dump/load.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	switch c.ReasoningPriority {
	case reasoner.HolographicPriority:
		a.ReasoningPriorityName = "holographicPriority"
	default:
		a.ReasoningPriorityName = "symbolicPriority"
	}
	return json.Marshal(a)
}
