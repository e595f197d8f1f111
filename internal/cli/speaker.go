package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/presidium/internal/wire"
)

var speakerCmd = &cobra.Command{
	Use:   "speaker",
	Short: "Manage the speaker list and the floor",
}

var speakerNextCmd = &cobra.Command{
	Use:   "next [session-id]",
	Short: "Give the floor to the next country that has not spoken",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		_, err = wire.SessionAdapter().Next(ctx, args[0])
		return err
	},
}

var speakerSetCmd = &cobra.Command{
	Use:   "set [session-id] [country]",
	Short: "Give the floor to a specific country",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		_, err = wire.SessionAdapter().Set(ctx, args[0], args[1])
		return err
	},
}

var speakerClearCmd = &cobra.Command{
	Use:   "clear [session-id]",
	Short: "Yield the floor and stop the speaker timer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		_, err = wire.SessionAdapter().Clear(ctx, args[0])
		return err
	},
}

var speakerMoveToEndCmd = &cobra.Command{
	Use:   "move-to-end [session-id] [country]",
	Short: "Move a country to the end of the speaker list (once per roll call)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, actor, err := actorContext(cmd)
		if err != nil {
			return err
		}
		if err := requireSelfOrPresidium(actor, args[1]); err != nil {
			return err
		}
		_, err = wire.SessionAdapter().MoveToEnd(ctx, args[0], args[1])
		return err
	},
}

var speakerSpokenCmd = &cobra.Command{
	Use:   "spoken [session-id] [country]",
	Short: "Mark a country as having spoken",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		_, err = wire.SessionAdapter().Spoken(ctx, args[0], args[1])
		return err
	},
}

var speakerListCmd = &cobra.Command{
	Use:   "list [session-id]",
	Short: "Show the speaker lists",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.SessionAdapter().Speakers(cmd.Context(), args[0])
		return err
	},
}

func init() {
	for _, c := range []*cobra.Command{speakerNextCmd, speakerSetCmd, speakerClearCmd, speakerMoveToEndCmd, speakerSpokenCmd} {
		addActorFlags(c)
		speakerCmd.AddCommand(c)
	}
	speakerCmd.AddCommand(speakerListCmd)
}

// SpeakerCmd returns the speaker command
func SpeakerCmd() *cobra.Command {
	return speakerCmd
}
