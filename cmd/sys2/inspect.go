package main

import (
	"fmt"

	"github.com/emicklei/dot"
	"github.com/spf13/cobra"

	"github.com/gitrdm/sys2/pkg/rule"
	"github.com/gitrdm/sys2/pkg/session"
)

var inspectGraph bool

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <name>",
		Short: "print a vocabulary/kb/rule snapshot for a name, or its rule dependency graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			if inspectGraph {
				fmt.Fprintln(cmd.OutOrStdout(), ruleDependencyDOT(s))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Inspect(args[0]))
			return nil
		},
	}
	cmd.Flags().BoolVar(&inspectGraph, "graph", false, "render the rule dependency graph as Graphviz DOT instead")
	return cmd
}

// ruleDependencyDOT renders one edge per rule: every operator named in
// its antecedent condition tree, pointing at the consequent operator
// it derives. Intended as a debug aid an external translator (spec.md
// §6) can shell `dot` out on, not a proof-trace replay.
func ruleDependencyDOT(s *session.Session) string {
	g := dot.NewGraph(dot.Directed)
	nodes := make(map[string]dot.Node)
	nodeFor := func(name string) dot.Node {
		if n, ok := nodes[name]; ok {
			return n
		}
		n := g.Node(name)
		nodes[name] = n
		return n
	}

	for i, r := range s.Rules.All() {
		consequent := nodeFor(r.Consequent.Operator)
		for _, op := range operatorsIn(r.Antecedent) {
			nodeFor(op).Edge(consequent, fmt.Sprintf("rule#%d", i))
		}
	}
	return g.String()
}

// operatorsIn collects every distinct operator named by a Fact leaf in
// a condition tree, in first-encountered order.
func operatorsIn(c rule.Condition) []string {
	seen := make(map[string]bool)
	var out []string
	var walk func(rule.Condition)
	walk = func(node rule.Condition) {
		switch n := node.(type) {
		case *rule.Fact:
			if !seen[n.Operator] {
				seen[n.Operator] = true
				out = append(out, n.Operator)
			}
		case *rule.And:
			walk(n.A)
			walk(n.B)
		case *rule.Or:
			walk(n.A)
			walk(n.B)
		case *rule.Not:
			walk(n.Inner)
		}
	}
	walk(c)
	return out
}
