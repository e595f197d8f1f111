package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/presidium/internal/core/voting"
	"github.com/example/presidium/internal/ports/primary"
	"github.com/example/presidium/internal/wire"
)

var votingCmd = &cobra.Command{
	Use:   "voting",
	Short: "Run votes on motions and draft resolutions",
}

var votingCreateCmd = &cobra.Command{
	Use:   "create [session-id] [title]",
	Short: "Create a pending voting from the session's present delegates",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "session"); err != nil {
			return err
		}
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		votingType, _ := cmd.Flags().GetString("type")
		majority, _ := cmd.Flags().GetString("majority")
		subjectType, _ := cmd.Flags().GetString("subject-type")
		subjectID, _ := cmd.Flags().GetString("subject")
		timeLimit, _ := cmd.Flags().GetInt("time-limit")

		_, err = wire.VotingAdapter().Create(ctx, primary.CreateVotingRequest{
			SessionID:   args[0],
			Title:       args[1],
			Type:        voting.Type(votingType),
			Majority:    voting.Majority(majority),
			SubjectType: voting.SubjectType(subjectType),
			SubjectID:   subjectID,
			TimeLimit:   timeLimit,
		})
		return err
	},
}

var votingStartCmd = &cobra.Command{
	Use:   "start [voting-id]",
	Short: "Open a pending voting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "voting"); err != nil {
			return err
		}
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		_, err = wire.VotingAdapter().Start(ctx, args[0])
		return err
	},
}

var votingCastCmd = &cobra.Command{
	Use:   "cast [voting-id] [for|against|abstain]",
	Short: "Cast a vote",
	Long: `Cast a vote.

Delegates vote as themselves. The presidium may record a vote on behalf of a
delegate with --voter-email. A vote against with --veto from a country holding
a veto right is a veto.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "voting"); err != nil {
			return err
		}
		ctx, actor, err := actorContext(cmd)
		if err != nil {
			return err
		}
		voterEmail, _ := cmd.Flags().GetString("voter-email")
		if voterEmail != "" && voterEmail != actor.Email {
			if err := requirePresidium(actor, "voting cast --voter-email"); err != nil {
				return err
			}
		}
		veto, _ := cmd.Flags().GetString("veto")

		_, err = wire.VotingAdapter().Cast(ctx, primary.CastVoteRequest{
			VotingID:          args[0],
			Email:             voterEmail,
			Vote:              voting.Choice(args[1]),
			VetoJustification: veto,
		})
		return err
	},
}

var votingSkipCmd = &cobra.Command{
	Use:   "skip [voting-id] [country]",
	Short: "Defer the current roll-call voter to the end",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		country := ""
		if len(args) == 2 {
			country = args[1]
		}
		_, err = wire.VotingAdapter().Skip(ctx, args[0], country)
		return err
	},
}

var votingCompleteCmd = &cobra.Command{
	Use:   "complete [voting-id]",
	Short: "Close a voting and compute results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")
		_, err = wire.VotingAdapter().Complete(ctx, args[0], force)
		return err
	},
}

var votingCancelCmd = &cobra.Command{
	Use:   "cancel [voting-id]",
	Short: "Cancel a voting without results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		reason, _ := cmd.Flags().GetString("reason")
		_, err = wire.VotingAdapter().Cancel(ctx, args[0], reason)
		return err
	},
}

var votingShowCmd = &cobra.Command{
	Use:   "show [voting-id]",
	Short: "Show a voting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "voting"); err != nil {
			return err
		}
		_, err := wire.VotingAdapter().Show(cmd.Context(), args[0])
		return err
	},
}

var votingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List votings",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		_, err := wire.VotingAdapter().List(cmd.Context(), primary.VotingFilters{
			SessionID: sessionID,
			Status:    status,
			Limit:     limit,
		})
		return err
	},
}

func init() {
	votingCreateCmd.Flags().StringP("type", "t", "simple", "Voting type (simple, rollCall)")
	votingCreateCmd.Flags().StringP("majority", "m", "simple", "Majority rule (simple, qualified, consensus)")
	votingCreateCmd.Flags().String("subject-type", "", "What is voted on (motion, resolution, amendment)")
	votingCreateCmd.Flags().String("subject", "", "ID of the motion or document voted on")
	votingCreateCmd.Flags().Int("time-limit", 0, "Informational time limit in seconds")

	votingCastCmd.Flags().String("voter-email", "", "Record the vote for this delegate (presidium only)")
	votingCastCmd.Flags().String("veto", "", "Veto justification (vote against only)")

	votingCompleteCmd.Flags().BoolP("force", "f", false, "Complete before every voter has voted")
	votingCancelCmd.Flags().StringP("reason", "r", "", "Reason recorded in the audit log")

	votingListCmd.Flags().String("session", "", "Filter by session")
	votingListCmd.Flags().StringP("status", "s", "", "Filter by status (pending, active, completed, cancelled)")
	votingListCmd.Flags().Int("limit", 0, "Maximum number of votings")

	for _, c := range []*cobra.Command{votingCreateCmd, votingStartCmd, votingCastCmd, votingSkipCmd, votingCompleteCmd, votingCancelCmd} {
		addActorFlags(c)
		votingCmd.AddCommand(c)
	}
	votingCmd.AddCommand(votingShowCmd)
	votingCmd.AddCommand(votingListCmd)
}

// VotingCmd returns the voting command
func VotingCmd() *cobra.Command {
	return votingCmd
}
