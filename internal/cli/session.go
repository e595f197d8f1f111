package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/presidium/internal/core/debate"
	"github.com/example/presidium/internal/ports/primary"
	"github.com/example/presidium/internal/wire"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage committee sessions",
	Long:  "Create, start, pause, resume and complete numbered committee sessions",
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an inactive session seeded from the committee roster",
	RunE: func(cmd *cobra.Command, args []string) error {
		committeeID, _ := cmd.Flags().GetString("committee")
		if err := validateEntityID(committeeID, "committee"); err != nil {
			return err
		}
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		modeName, _ := cmd.Flags().GetString("mode")
		var mode debate.Mode
		if modeName != "" {
			if mode, err = debate.ParseMode(modeName); err != nil {
				return err
			}
		}
		settings, err := settingsFromFlags(cmd)
		if err != nil {
			return err
		}

		_, err = wire.SessionAdapter().Create(ctx, primary.CreateSessionRequest{
			CommitteeID: committeeID,
			Mode:        mode,
			Settings:    settings,
		})
		return err
	},
}

var sessionStartCmd = &cobra.Command{
	Use:   "start [session-id]",
	Short: "Start a session and its session timer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "session"); err != nil {
			return err
		}
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		duration, _ := cmd.Flags().GetInt("duration")
		_, err = wire.SessionAdapter().Start(ctx, args[0], duration)
		return err
	},
}

var sessionPauseCmd = &cobra.Command{
	Use:   "pause [session-id]",
	Short: "Pause a session and every running timer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		_, err = wire.SessionAdapter().Pause(ctx, args[0])
		return err
	},
}

var sessionResumeCmd = &cobra.Command{
	Use:   "resume [session-id]",
	Short: "Resume a paused session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		_, err = wire.SessionAdapter().Resume(ctx, args[0])
		return err
	},
}

var sessionCompleteCmd = &cobra.Command{
	Use:   "complete [session-id]",
	Short: "Complete a session permanently",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		_, err = wire.SessionAdapter().Complete(ctx, args[0])
		return err
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show a session with attendance, speakers and timers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "session"); err != nil {
			return err
		}
		_, err := wire.SessionAdapter().Show(cmd.Context(), args[0])
		return err
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		committeeID, _ := cmd.Flags().GetString("committee")
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		_, err := wire.SessionAdapter().List(cmd.Context(), primary.SessionFilters{
			CommitteeID: committeeID,
			Status:      status,
			Limit:       limit,
		})
		return err
	},
}

// settingsFromFlags reads the optional debate-setting overrides. Only flags
// the user actually set override the mode defaults.
func settingsFromFlags(cmd *cobra.Command) (debate.SettingsInput, error) {
	var in debate.SettingsInput
	flags := cmd.Flags()
	if flags.Changed("speech-time") {
		v, err := flags.GetInt("speech-time")
		if err != nil {
			return in, err
		}
		in.SpeechTime = &v
	}
	if flags.Changed("total-time") {
		v, err := flags.GetInt("total-time")
		if err != nil {
			return in, err
		}
		in.TotalTime = &v
	}
	if flags.Changed("topic") {
		v, err := flags.GetString("topic")
		if err != nil {
			return in, err
		}
		in.Topic = &v
	}
	if flags.Changed("questions") {
		v, err := flags.GetBool("questions")
		if err != nil {
			return in, err
		}
		in.QuestionsAllowed = &v
	}
	return in, nil
}

func addSettingsFlags(cmd *cobra.Command) {
	cmd.Flags().Int("speech-time", 0, "Seconds per speech")
	cmd.Flags().Int("total-time", 0, "Total seconds for the debate")
	cmd.Flags().String("topic", "", "Debate topic")
	cmd.Flags().Bool("questions", false, "Allow questions after speeches")
}

func init() {
	sessionCreateCmd.Flags().StringP("committee", "c", "", "Committee ID (required)")
	sessionCreateCmd.Flags().StringP("mode", "m", "", "Initial debate mode (default formal)")
	sessionCreateCmd.MarkFlagRequired("committee")
	addSettingsFlags(sessionCreateCmd)

	sessionStartCmd.Flags().Int("duration", 0, "Session timer length in seconds (default 3h)")

	sessionListCmd.Flags().StringP("committee", "c", "", "Filter by committee")
	sessionListCmd.Flags().StringP("status", "s", "", "Filter by status (inactive, active, paused, completed)")
	sessionListCmd.Flags().Int("limit", 0, "Maximum number of sessions")

	for _, c := range []*cobra.Command{sessionCreateCmd, sessionStartCmd, sessionPauseCmd, sessionResumeCmd, sessionCompleteCmd} {
		addActorFlags(c)
		sessionCmd.AddCommand(c)
	}
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionListCmd)
}

// SessionCmd returns the session command
func SessionCmd() *cobra.Command {
	return sessionCmd
}
