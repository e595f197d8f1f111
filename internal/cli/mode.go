package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/presidium/internal/core/debate"
	"github.com/example/presidium/internal/ports/primary"
	"github.com/example/presidium/internal/wire"
)

var modeCmd = &cobra.Command{
	Use:   "mode",
	Short: "Switch the debate mode",
}

var modeChangeCmd = &cobra.Command{
	Use:   "change [session-id] [formal|moderated|unmoderated|informal]",
	Short: "Change the debate mode, resetting debate timers",
	Long: `Change the debate mode.

Unset settings fall back to the mode defaults:
  formal       90s speeches, questions allowed
  moderated    60s speeches, 10 minutes total
  unmoderated  15 minutes total
  informal     20 minutes total`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		mode, err := debate.ParseMode(args[1])
		if err != nil {
			return err
		}
		settings, err := settingsFromFlags(cmd)
		if err != nil {
			return err
		}

		_, err = wire.SessionAdapter().ChangeMode(ctx, primary.ChangeModeRequest{
			SessionID: args[0],
			Mode:      mode,
			Settings:  settings,
		})
		return err
	},
}

func init() {
	addSettingsFlags(modeChangeCmd)
	addActorFlags(modeChangeCmd)
	modeCmd.AddCommand(modeChangeCmd)
}

// ModeCmd returns the mode command
func ModeCmd() *cobra.Command {
	return modeCmd
}
