package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/presidium/internal/core/attendance"
	"github.com/example/presidium/internal/ports/primary"
	"github.com/example/presidium/internal/wire"
)

var rollcallCmd = &cobra.Command{
	Use:   "rollcall",
	Short: "Run roll calls and record attendance",
}

var rollcallStartCmd = &cobra.Command{
	Use:   "start [session-id]",
	Short: "Open a roll call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		timeLimit, _ := cmd.Flags().GetInt("time-limit")
		_, err = wire.SessionAdapter().StartRollCall(ctx, args[0], timeLimit)
		return err
	},
}

var rollcallMarkCmd = &cobra.Command{
	Use:   "mark [session-id] [country] [absent|present|present_and_voting]",
	Short: "Record a country's attendance",
	Long: `Record a country's attendance.

During a roll call the answer is recorded as a response. After the roll call
has ended, a country arriving is appended to the speaker list as late.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, actor, err := actorContext(cmd)
		if err != nil {
			return err
		}
		if err := requireSelfOrPresidium(actor, args[1]); err != nil {
			return err
		}
		status, err := attendance.ParseStatus(args[2])
		if err != nil {
			return err
		}

		_, err = wire.SessionAdapter().Mark(ctx, primary.MarkAttendanceRequest{
			SessionID: args[0],
			Country:   args[1],
			Status:    status,
		})
		return err
	},
}

var rollcallEndCmd = &cobra.Command{
	Use:   "end [session-id]",
	Short: "Close the roll call and rebuild the speaker lists",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		_, err = wire.SessionAdapter().EndRollCall(ctx, args[0])
		return err
	},
}

func init() {
	rollcallStartCmd.Flags().Int("time-limit", 0, "Informational time limit in seconds")

	for _, c := range []*cobra.Command{rollcallStartCmd, rollcallMarkCmd, rollcallEndCmd} {
		addActorFlags(c)
		rollcallCmd.AddCommand(c)
	}
}

// RollcallCmd returns the rollcall command
func RollcallCmd() *cobra.Command {
	return rollcallCmd
}
