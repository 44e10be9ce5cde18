package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/sys2/pkg/hdvector"
	"github.com/gitrdm/sys2/pkg/reasoner"
)

func TestDefaultMatchesSpecDefaults(t *testing.T) {
	cfg := Default()
	require.Equal(t, hdvector.DefaultGeometry, cfg.Dimensions)
	require.Equal(t, hdvector.DenseBinary, cfg.HDCStrategy)
	require.Equal(t, reasoner.SymbolicPriority, cfg.ReasoningPriority)
	require.True(t, cfg.ClosedWorldAssumption)
	require.Equal(t, 3, cfg.RecursionHorizon)
	require.True(t, cfg.RejectContradictions)
	require.Equal(t, 20, cfg.MaxProofDepth)
	require.Equal(t, 10, cfg.MaxTransitiveDepth)
	require.True(t, cfg.AutoLoadCore)
}

func TestDefaultStrategyIsExactForSmallGeometry(t *testing.T) {
	require.Equal(t, hdvector.Exact, defaultStrategyFor(hdvector.Geom512))
	require.Equal(t, hdvector.Exact, defaultStrategyFor(hdvector.Geom1024))
	require.Equal(t, hdvector.DenseBinary, defaultStrategyFor(hdvector.Geom2048))
}

func TestParseOverlaysDocumentOntoDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`{"dimensions": 1024, "closedWorldAssumption": false}`))
	require.NoError(t, err)
	require.Equal(t, hdvector.Geom1024, cfg.Dimensions)
	require.Equal(t, hdvector.Exact, cfg.HDCStrategy)
	require.False(t, cfg.ClosedWorldAssumption)
	require.Equal(t, 3, cfg.RecursionHorizon)
}

func TestParseResolvesReasoningPriority(t *testing.T) {
	cfg, err := Parse([]byte(`{"reasoningPriority": "holographicPriority"}`))
	require.NoError(t, err)
	require.Equal(t, reasoner.HolographicPriority, cfg.ReasoningPriority)
}

func TestParseRejectsInvalidDimensions(t *testing.T) {
	_, err := Parse([]byte(`{"dimensions": 999}`))
	require.Error(t, err)
}

func TestParseRejectsInvalidReasoningPriority(t *testing.T) {
	_, err := Parse([]byte(`{"reasoningPriority": "bogus"}`))
	require.Error(t, err)
}

func TestParseRejectsOutOfRangeRecursionHorizon(t *testing.T) {
	_, err := Parse([]byte(`{"recursionHorizon": 9}`))
	require.Error(t, err)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/path/profile.json")
	require.NoError(t, err)
	require.Equal(t, Default().Dimensions, cfg.Dimensions)
}

func TestMarshalJSONRoundTripsReasoningPriority(t *testing.T) {
	cfg := Default()
	cfg.ReasoningPriority = reasoner.HolographicPriority
	data, err := cfg.MarshalJSON()
	require.NoError(t, err)

	decoded, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, reasoner.HolographicPriority, decoded.ReasoningPriority)
}
