// Command sys2 is a developer CLI over the Session facade: one
// subcommand per spec.md §6 Session API verb. Grounded on the
// cobra-based CLI layout other pack repos use for their own developer
// tooling (a root command plus flag-bearing leaf subcommands, each
// opening its own session against a config profile and a source file).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gitrdm/sys2/internal/config"
	"github.com/gitrdm/sys2/pkg/session"
)

var (
	profilePath string
	sourcePath  string
	verbose     bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sys2",
		Short: "deterministic neuro-symbolic reasoning core CLI",
	}
	root.PersistentFlags().StringVar(&profilePath, "profile", "", "path to a JSON config profile (defaults applied if omitted)")
	root.PersistentFlags().StringVar(&sourcePath, "source", "", "path to a sys2 DSL source file to learn before running the command")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable structured logging to stderr")

	root.AddCommand(newLearnCmd())
	root.AddCommand(newProveCmd())
	root.AddCommand(newQueryCmd())
	root.AddCommand(newSolveCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newStatsCmd())
	return root
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// openSessionWithoutAutoLearn opens a session from --profile only,
// skipping the --source preload: the learn subcommand treats --source
// as the thing being learned, not ambient context for another verb.
func openSessionWithoutAutoLearn() (*session.Session, error) {
	cfg, err := config.Load(profilePath)
	if err != nil {
		return nil, err
	}
	return session.New(cfg, newLogger()), nil
}

func openSession() (*session.Session, error) {
	cfg, err := config.Load(profilePath)
	if err != nil {
		return nil, err
	}
	s := session.New(cfg, newLogger())
	if sourcePath != "" {
		src, err := os.ReadFile(sourcePath)
		if err != nil {
			return nil, err
		}
		if _, err := s.Learn(string(src)); err != nil {
			return nil, err
		}
	}
	return s, nil
}
