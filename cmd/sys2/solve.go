package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gitrdm/sys2/pkg/csp"
)

var (
	solveVars         []string
	solveAllDifferent bool
	solveMaxSolutions int
)

// parseVarSpec parses one --var flag value in "Name:Type" form, where
// Type names a learned isA(_, Type) category the variable's domain is
// declared from (csp.DeclareFromType).
func parseVarSpec(spec string) (name, typ string, err error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid --var %q, expected Name:Type", spec)
	}
	return parts[0], parts[1], nil
}

func newSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "declare CSP variables over learned type domains and search for solutions",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			for _, spec := range solveVars {
				name, typ, err := parseVarSpec(spec)
				if err != nil {
					return err
				}
				s.Domains.DeclareFromType(s.Reasoner, name, typ)
			}

			var constraints []csp.Constraint
			if solveAllDifferent {
				vars := make([]string, len(solveVars))
				for i, spec := range solveVars {
					name, _, _ := parseVarSpec(spec)
					vars[i] = name
				}
				constraints = append(constraints, &csp.AllDifferent{Vars: vars})
			}

			cfg := csp.DefaultConfig()
			if solveMaxSolutions > 0 {
				cfg.MaxSolutions = solveMaxSolutions
			}

			res, err := s.Solve(cmd.Context(), constraints, cfg)
			if err != nil {
				return err
			}
			for _, sol := range res.Solutions {
				fmt.Fprintf(cmd.OutOrStdout(), "%v\n", sol.Assignment)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "solutions=%d truncated=%v timedOut=%v\n",
				len(res.Solutions), res.Truncated, res.TimedOut)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&solveVars, "var", nil, "Name:Type domain declaration, repeatable")
	cmd.Flags().BoolVar(&solveAllDifferent, "all-different", false, "add an AllDifferent constraint over every declared --var")
	cmd.Flags().IntVar(&solveMaxSolutions, "max-solutions", 0, "override the default solution cap (0 = use default)")
	return cmd
}
