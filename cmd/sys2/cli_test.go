package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/sys2/pkg/rule"
)

func TestParseVarSpecSplitsNameAndType(t *testing.T) {
	name, typ, err := parseVarSpec("Table1:Restaurant")
	require.NoError(t, err)
	require.Equal(t, "Table1", name)
	require.Equal(t, "Restaurant", typ)
}

func TestParseVarSpecRejectsMissingColon(t *testing.T) {
	_, _, err := parseVarSpec("Table1")
	require.Error(t, err)
}

func TestOperatorsInCollectsDistinctFactOperators(t *testing.T) {
	cond := &rule.And{
		A: &rule.Fact{Operator: "isA", Args: []string{"?x", "Bird"}},
		B: &rule.Or{
			A: &rule.Fact{Operator: "isA", Args: []string{"?x", "Bird"}},
			B: &rule.Fact{Operator: "canFly", Args: []string{"?x"}},
		},
	}
	require.Equal(t, []string{"isA", "canFly"}, operatorsIn(cond))
}
