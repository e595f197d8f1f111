package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/presidium/internal/cli"
	"github.com/example/presidium/internal/version"
	"github.com/example/presidium/internal/wire"
)

func main() {
	os.Exit(run())
}

func run() int {
	var showMetrics bool

	rootCmd := &cobra.Command{
		Use:     "presidium",
		Short:   "Presidium - procedure engine for Model United Nations committees",
		Version: version.String(),
		Long: `Presidium runs the parliamentary procedure of a MUN committee: session
timers, roll call and quorum, speaker lists, debate modes, and simple or
roll-call votings with veto.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if !showMetrics {
				return nil
			}
			return wire.WriteMetrics(cmd.ErrOrStderr())
		},
	}
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "Print operation counters after the command")

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.CommitteeCmd())

	// Procedure
	rootCmd.AddCommand(cli.SessionCmd())
	rootCmd.AddCommand(cli.RollcallCmd())
	rootCmd.AddCommand(cli.SpeakerCmd())
	rootCmd.AddCommand(cli.ModeCmd())
	rootCmd.AddCommand(cli.TimerCmd())
	rootCmd.AddCommand(cli.VotingCmd())

	// Inspection
	rootCmd.AddCommand(cli.EventsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer wire.Shutdown()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err))
		return 1
	}
	return 0
}
