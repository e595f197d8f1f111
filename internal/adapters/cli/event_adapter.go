package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/presidium/internal/ports/primary"
)

// EventLogAdapter renders the persisted event and audit logs.
type EventLogAdapter struct {
	service primary.EventLogService
	out     io.Writer
}

// NewEventLogAdapter creates a new EventLogAdapter with the given service.
func NewEventLogAdapter(service primary.EventLogService, out io.Writer) *EventLogAdapter {
	return &EventLogAdapter{
		service: service,
		out:     out,
	}
}

// Events lists domain events oldest first. Payloads are printed only when
// verbose is set.
func (a *EventLogAdapter) Events(ctx context.Context, filters primary.EventFilters, verbose bool) ([]*primary.Event, error) {
	events, err := a.service.ListEvents(ctx, filters)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		fmt.Fprintln(a.out, "No events found.")
		return events, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tEVENT\tAGGREGATE\tACTOR\tVISIBILITY")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.CreatedAt, e.Name, e.AggregateID, e.ActorID, e.Visibility)
		if verbose {
			fmt.Fprintf(w, "\t%s\t\t\t\n", mutedColor.Sprint(e.Payload))
		}
	}
	w.Flush()
	return events, nil
}

// Audit lists audit entries newest first.
func (a *EventLogAdapter) Audit(ctx context.Context, filters primary.AuditFilters) ([]*primary.AuditEntry, error) {
	entries, err := a.service.ListAudit(ctx, filters)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No audit entries found.")
		return entries, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTOR\tENTITY\tACTION\tCHANGE\tREASON")
	for _, e := range entries {
		change := ""
		if e.FieldName != "" {
			change = fmt.Sprintf("%s: %s → %s", e.FieldName, e.OldValue, e.NewValue)
		}
		fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\t%s\t%s\n",
			e.CreatedAt, e.ActorID, e.EntityType, e.EntityID, e.Action, change, e.Reason)
	}
	w.Flush()
	return entries, nil
}
