package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/presidium/internal/core/timer"
	"github.com/example/presidium/internal/ports/primary"
	"github.com/example/presidium/internal/wire"
)

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Control session timers",
	Long: `Control session timers.

Timers are addressed by slot name (session, speaker, debate, qa) or by the
ID of an additional timer created with "timer add".`,
}

var timerStartCmd = &cobra.Command{
	Use:   "start [session-id] [timer] [seconds]",
	Short: "Start or restart a timer",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		duration, err := strconv.Atoi(args[2])
		if err != nil {
			return err
		}

		_, err = wire.SessionAdapter().StartTimer(ctx, primary.StartTimerRequest{
			SessionID: args[0],
			Name:      args[1],
			Duration:  duration,
			Meta:      metaFromFlags(cmd),
		})
		return err
	},
}

var timerPauseCmd = &cobra.Command{
	Use:   "pause [session-id] [timer]",
	Short: "Pause a running timer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		_, err = wire.SessionAdapter().PauseTimer(ctx, args[0], args[1])
		return err
	},
}

var timerResumeCmd = &cobra.Command{
	Use:   "resume [session-id] [timer]",
	Short: "Resume a paused timer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		_, err = wire.SessionAdapter().ResumeTimer(ctx, args[0], args[1])
		return err
	},
}

var timerAdjustCmd = &cobra.Command{
	Use:   "adjust [session-id] [timer] [remaining-seconds]",
	Short: "Override a timer's remaining time (audited)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		remaining, err := strconv.Atoi(args[2])
		if err != nil {
			return err
		}
		reason, _ := cmd.Flags().GetString("reason")

		_, err = wire.SessionAdapter().AdjustTimer(ctx, primary.AdjustTimerRequest{
			SessionID:    args[0],
			Name:         args[1],
			NewRemaining: remaining,
			Reason:       reason,
		})
		return err
	},
}

var timerStopCmd = &cobra.Command{
	Use:   "stop [session-id] [timer]",
	Short: "Stop a timer, freezing its remaining time",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		_, err = wire.SessionAdapter().StopTimer(ctx, args[0], args[1])
		return err
	},
}

var timerAddCmd = &cobra.Command{
	Use:   "add [session-id] [seconds]",
	Short: "Add an additional timer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		duration, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}

		_, err = wire.SessionAdapter().AddTimer(ctx, primary.AddTimerRequest{
			SessionID: args[0],
			Duration:  duration,
			Meta:      metaFromFlags(cmd),
		})
		return err
	},
}

var timerRemoveCmd = &cobra.Command{
	Use:   "remove [session-id] [timer-id]",
	Short: "Remove an additional timer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		_, err = wire.SessionAdapter().RemoveTimer(ctx, args[0], args[1])
		return err
	},
}

var timerShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show every timer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.SessionAdapter().Timers(cmd.Context(), args[0])
	},
}

func metaFromFlags(cmd *cobra.Command) timer.Meta {
	purpose, _ := cmd.Flags().GetString("purpose")
	topic, _ := cmd.Flags().GetString("topic")
	country, _ := cmd.Flags().GetString("for-country")
	return timer.Meta{Purpose: purpose, Topic: topic, Country: country}
}

func init() {
	for _, c := range []*cobra.Command{timerStartCmd, timerAddCmd} {
		c.Flags().String("purpose", "", "What the timer is for")
		c.Flags().String("topic", "", "Topic label")
		c.Flags().String("for-country", "", "Country the timer belongs to")
	}
	timerAdjustCmd.Flags().StringP("reason", "r", "", "Reason recorded in the audit log")

	for _, c := range []*cobra.Command{timerStartCmd, timerPauseCmd, timerResumeCmd, timerAdjustCmd, timerStopCmd, timerAddCmd, timerRemoveCmd} {
		addActorFlags(c)
		timerCmd.AddCommand(c)
	}
	timerCmd.AddCommand(timerShowCmd)
}

// TimerCmd returns the timer command
func TimerCmd() *cobra.Command {
	return timerCmd
}
