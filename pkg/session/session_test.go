package session

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/sys2/internal/config"
)

func parseDumpForTest(data []byte) (*Dump, error) {
	var d Dump
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	cfg := config.Default()
	cfg.Dimensions = 512
	cfg.HDCStrategy = "exact"
	s := New(cfg, nil)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLearnAddsFactsAndRules(t *testing.T) {
	s := newTestSession(t)
	res, err := s.Learn(`
isA Rex Dog
isA Dog Animal
`)
	require.NoError(t, err)
	require.Equal(t, 2, res.FactsAdded)
	require.Equal(t, 2, s.KB.Len())
}

func TestLearnRollsBackOnContradiction(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Learn("isA Rex Dog\n@a isA Rex Dog\n")
	require.NoError(t, err)
	before := s.KB.Len()

	_, err = s.Learn("isA Fido Cat\nNot $a\n")
	require.Error(t, err)
	require.Equal(t, before, s.KB.Len())
}

func TestLearnRejectsSyntaxErrorWithoutMutatingKB(t *testing.T) {
	s := newTestSession(t)
	before := s.KB.Len()
	_, err := s.Learn(`@@@ not valid`)
	require.Error(t, err)
	require.Equal(t, before, s.KB.Len())
}

func TestProveDirectFact(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Learn(`isA Rex Dog`)
	require.NoError(t, err)

	res, err := s.Prove(context.Background(), "isA", []string{"Rex", "Dog"})
	require.NoError(t, err)
	require.True(t, res.Valid)
}

func TestDumpRoundTripsFactShape(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Learn(`isA Rex Dog`)
	require.NoError(t, err)

	d1 := s.Dump()
	data, err := s.DumpJSON()
	require.NoError(t, err)

	decoded, err := parseDumpForTest(data)
	require.NoError(t, err)

	if diff := cmp.Diff(d1.Facts, decoded.Facts); diff != "" {
		t.Fatalf("facts mismatch after JSON round-trip (-want +got):\n%s", diff)
	}
}

func TestInspectReportsVocabularyMembership(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Learn(`@a isA Rex Dog`)
	require.NoError(t, err)

	out := s.Inspect("Rex")
	require.Contains(t, out, "Rex")
}

func TestStatsResetZeroesCounters(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Learn(`isA Rex Dog`)
	require.NoError(t, err)
	_, err = s.Prove(context.Background(), "isA", []string{"Rex", "Dog"})
	require.NoError(t, err)

	require.Greater(t, s.Stats().Proofs, 0)
	s.ResetStats()
	require.Equal(t, 0, s.Stats().Proofs)
}

func TestHDCStatsCountsBindAndBundle(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Learn(`isA Rex Dog`)
	require.NoError(t, err)

	hs := s.HDCStats()
	require.Greater(t, hs.BindOps, 0)
	require.Greater(t, hs.BundleOps, 0)

	s.ResetStats()
	hs = s.HDCStats()
	require.Equal(t, 0, hs.BindOps)
	require.Equal(t, 0, hs.BundleOps)
}

func TestClosedSessionRejectsLearn(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Close())
	_, err := s.Learn(`@a isA Rex Dog`)
	require.Error(t, err)
}
