package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/kolkov/threadsync/internal/log"
	"github.com/kolkov/threadsync/internal/stress"
	"github.com/kolkov/threadsync/internal/version"
)

// NewRootCmd returns the syncstress command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "syncstress",
		Short:         "Stress the threadsync primitives",
		Long:          "syncstress runs load scenarios against Condition, RWLock, CyclicBarrier and Thread and verifies their invariants.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	cmd.PersistentFlags().String("log_level", "warn", "Set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log_format", defaultLogFormat(), "Set the log format (text, logfmt, json)")
	cmd.PersistentFlags().String("config", "", "Path to a YAML profile with scenario settings")

	cmd.PersistentPreRunE = func(cc *cobra.Command, _ []string) error {
		flags := cc.Flags()

		var merr error

		logLevel, err := flags.GetString("log_level")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		logFormat, err := flags.GetString("log_format")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		if merr != nil {
			return fmt.Errorf("invalid argument: %w", merr)
		}

		h, err := log.CreateHandler(cc.ErrOrStderr(), logLevel, logFormat)
		if err != nil {
			return fmt.Errorf("failed creating log handler: %w", err)
		}
		slog.SetDefault(slog.New(h))

		return nil
	}

	for _, name := range stress.Names() {
		cmd.AddCommand(NewScenarioCmd(name))
	}
	cmd.AddCommand(NewAllCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// defaultLogFormat is colourised text on a terminal and logfmt otherwise.
func defaultLogFormat() string {
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return log.TextFormat
	}
	return log.LogfmtFormat
}

// NewVersionCmd returns the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version of the syncstress CLI",
		Run: func(cc *cobra.Command, _ []string) {
			cc.Println("syncstress " + version.GetInfo().String())
		},
	}
}
