package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/presidium/internal/core/procerr"
	"github.com/example/presidium/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	var committeeID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show what is happening in each committee",
		Long: `Show the live session of a committee (--committee), or a one-line
summary of every committee's live session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if committeeID != "" {
				if err := validateEntityID(committeeID, "committee"); err != nil {
					return err
				}
				sess, err := wire.SessionService().GetActiveSession(ctx, committeeID)
				if err != nil {
					return err
				}
				_, err = wire.SessionAdapterWithOutput(out).Show(ctx, sess.ID)
				return err
			}

			committees, err := wire.CommitteeService().ListCommittees(ctx)
			if err != nil {
				return err
			}
			if len(committees) == 0 {
				fmt.Fprintln(out, "No committees. Run `presidium init --seed` or `presidium committee create`.")
				return nil
			}

			for _, c := range committees {
				sess, err := wire.SessionService().GetActiveSession(ctx, c.ID)
				switch {
				case procerr.IsCode(err, procerr.CodeNotFound):
					fmt.Fprintf(out, "%s  %s: no live session\n", c.ID, c.Name)
				case err != nil:
					return err
				default:
					fmt.Fprintf(out, "%s  %s: %s #%d [%s] %s debate\n",
						c.ID, c.Name, sess.ID, sess.Number, sess.Status, sess.CurrentMode)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&committeeID, "committee", "c", "", "Show the full live session of this committee")

	return cmd
}
