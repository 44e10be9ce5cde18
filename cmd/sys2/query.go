package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var queryMaxResults int

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <operator> <arg...>",
		Short: "enumerate provable bindings for a pattern with ?hole arguments",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			operator := args[0]
			pattern := args[1:]
			bindings, truncated, err := s.Query(cmd.Context(), operator, pattern, queryMaxResults)
			if err != nil {
				return err
			}
			for _, b := range bindings {
				fmt.Fprintf(cmd.OutOrStdout(), "%v\n", b.Bindings)
			}
			if truncated {
				fmt.Fprintf(cmd.OutOrStdout(), "(truncated at %d results)\n", queryMaxResults)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&queryMaxResults, "max-results", 100, "maximum bindings to return")
	return cmd
}
