package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prove <operator> <arg...>",
		Short: "prove a ground fact against the learned knowledge base",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			operator := args[0]
			factArgs := args[1:]
			res, err := s.Prove(cmd.Context(), operator, factArgs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "valid=%v method=%q reason=%q steps=%d\n",
				res.Valid, res.Method, res.Reason, len(res.Steps))
			return nil
		},
	}
}
