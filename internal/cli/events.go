package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/presidium/internal/ports/primary"
	"github.com/example/presidium/internal/wire"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect the event and audit logs",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List emitted domain events, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		committeeID, _ := cmd.Flags().GetString("committee")
		aggregateID, _ := cmd.Flags().GetString("aggregate")
		name, _ := cmd.Flags().GetString("name")
		limit, _ := cmd.Flags().GetInt("limit")
		verbose, _ := cmd.Flags().GetBool("verbose")

		_, err := wire.EventLogAdapter().Events(cmd.Context(), primary.EventFilters{
			CommitteeID: committeeID,
			AggregateID: aggregateID,
			Name:        name,
			Limit:       limit,
		}, verbose)
		return err
	},
}

var eventsAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List audited presidium corrections, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		entityType, _ := cmd.Flags().GetString("entity-type")
		entityID, _ := cmd.Flags().GetString("entity")
		actorID, _ := cmd.Flags().GetString("by")
		limit, _ := cmd.Flags().GetInt("limit")

		_, err := wire.EventLogAdapter().Audit(cmd.Context(), primary.AuditFilters{
			EntityType: entityType,
			EntityID:   entityID,
			ActorID:    actorID,
			Limit:      limit,
		})
		return err
	},
}

func init() {
	eventsListCmd.Flags().StringP("committee", "c", "", "Filter by committee")
	eventsListCmd.Flags().StringP("aggregate", "a", "", "Filter by session or voting ID")
	eventsListCmd.Flags().StringP("name", "n", "", "Filter by event name")
	eventsListCmd.Flags().Int("limit", 0, "Maximum number of events")
	eventsListCmd.Flags().BoolP("verbose", "v", false, "Print event payloads")

	eventsAuditCmd.Flags().String("entity-type", "", "Filter by entity type (timer, voting)")
	eventsAuditCmd.Flags().String("entity", "", "Filter by entity ID")
	eventsAuditCmd.Flags().String("by", "", "Filter by actor")
	eventsAuditCmd.Flags().Int("limit", 20, "Maximum number of entries")

	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsAuditCmd)
}

// EventsCmd returns the events command
func EventsCmd() *cobra.Command {
	return eventsCmd
}
