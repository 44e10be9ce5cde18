package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newLearnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "learn",
		Short: "learn a sys2 DSL source file and print the resulting fact/rule counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sourcePath == "" {
				return fmt.Errorf("learn requires --source")
			}
			s, err := openSessionWithoutAutoLearn()
			if err != nil {
				return err
			}
			defer s.Close()

			src, err := os.ReadFile(sourcePath)
			if err != nil {
				return err
			}
			res, err := s.Learn(string(src))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "parsed %d statement(s): %d fact(s), %d rule(s)\n",
				res.StatementsParsed, res.FactsAdded, res.RulesAdded)
			return nil
		},
	}
}
