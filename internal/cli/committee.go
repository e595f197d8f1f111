package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/presidium/internal/ports/primary"
	"github.com/example/presidium/internal/wire"
)

var committeeCmd = &cobra.Command{
	Use:   "committee",
	Short: "Manage committees and their country rosters",
}

var committeeCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a committee",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		minCoalition, _ := cmd.Flags().GetInt("min-coalition")

		_, err = wire.CommitteeAdapter().Create(ctx, primary.CreateCommitteeRequest{
			Name:             args[0],
			MinCoalitionSize: minCoalition,
		})
		return err
	},
}

var committeeAddCountryCmd = &cobra.Command{
	Use:   "add-country [committee-id] [country]",
	Short: "Add a country to a committee roster",
	Long: `Add a country to a committee roster.

Countries without a delegate email can attend and speak but cannot vote.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "committee"); err != nil {
			return err
		}
		ctx, err := chairContext(cmd)
		if err != nil {
			return err
		}
		delegateEmail, _ := cmd.Flags().GetString("delegate-email")
		veto, _ := cmd.Flags().GetBool("veto")

		_, err = wire.CommitteeAdapter().AddCountry(ctx, primary.AddCountryRequest{
			CommitteeID:  args[0],
			Name:         args[1],
			Email:        delegateEmail,
			HasVetoRight: veto,
		})
		return err
	},
}

var committeeShowCmd = &cobra.Command{
	Use:   "show [committee-id]",
	Short: "Show a committee and its roster",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "committee"); err != nil {
			return err
		}
		_, err := wire.CommitteeAdapter().Show(cmd.Context(), args[0])
		return err
	},
}

var committeeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List committees",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := wire.CommitteeAdapter().List(cmd.Context())
		return err
	},
}

func init() {
	committeeCreateCmd.Flags().Int("min-coalition", 0, "Minimum number of sponsors for a draft resolution")
	addActorFlags(committeeCreateCmd)

	committeeAddCountryCmd.Flags().String("delegate-email", "", "Email of the country's voting delegate")
	committeeAddCountryCmd.Flags().Bool("veto", false, "Country holds a veto right")
	addActorFlags(committeeAddCountryCmd)

	committeeCmd.AddCommand(committeeCreateCmd)
	committeeCmd.AddCommand(committeeAddCountryCmd)
	committeeCmd.AddCommand(committeeShowCmd)
	committeeCmd.AddCommand(committeeListCmd)
}

// CommitteeCmd returns the committee command
func CommitteeCmd() *cobra.Command {
	return committeeCmd
}
