package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsReset bool

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "print the reasoner's session-local counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			st := s.Stats()
			hst := s.HDCStats()
			fmt.Fprintf(cmd.OutOrStdout(),
				"queries=%d proofs=%d kbScans=%d similarityChecks=%d ruleAttempts=%d transitiveSteps=%d maxProofDepth=%d minProofDepth=%d totalProofSteps=%d hdcBindOps=%d hdcBundleOps=%d\n",
				st.Queries, st.Proofs, st.KBScans, st.SimilarityChecks, st.RuleAttempts, st.TransitiveSteps, st.MaxProofDepth, st.MinProofDepth, st.TotalProofSteps, hst.BindOps, hst.BundleOps)
			if statsReset {
				s.ResetStats()
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&statsReset, "reset", false, "reset counters to zero after printing")
	return cmd
}
