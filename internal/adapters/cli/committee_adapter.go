package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/presidium/internal/ports/primary"
)

// CommitteeAdapter is a thin adapter that translates CLI operations to CommitteeService calls.
type CommitteeAdapter struct {
	service primary.CommitteeService
	out     io.Writer
}

// NewCommitteeAdapter creates a new CommitteeAdapter with the given service.
func NewCommitteeAdapter(service primary.CommitteeService, out io.Writer) *CommitteeAdapter {
	return &CommitteeAdapter{
		service: service,
		out:     out,
	}
}

// Create creates a committee.
func (a *CommitteeAdapter) Create(ctx context.Context, req primary.CreateCommitteeRequest) (*primary.Committee, error) {
	committee, err := a.service.CreateCommittee(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Created committee %s: %s\n", committee.ID, committee.Name)
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Next steps:")
	fmt.Fprintf(a.out, "  presidium committee add-country %s \"Country\" --email delegate@example.org\n", committee.ID)
	return committee, nil
}

// AddCountry adds a roster entry.
func (a *CommitteeAdapter) AddCountry(ctx context.Context, req primary.AddCountryRequest) (*primary.Committee, error) {
	committee, err := a.service.AddCountry(ctx, req)
	if err != nil {
		return nil, err
	}
	veto := ""
	if req.HasVetoRight {
		veto = " with veto right"
	}
	fmt.Fprintf(a.out, "✓ Added %s to %s%s (%d countries)\n", req.Name, committee.ID, veto, len(committee.Countries))
	return committee, nil
}

// Show displays a committee and its roster.
func (a *CommitteeAdapter) Show(ctx context.Context, committeeID string) (*primary.Committee, error) {
	committee, err := a.service.GetCommittee(ctx, committeeID)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "\nCommittee: %s\n", committee.ID)
	fmt.Fprintf(a.out, "Name:    %s\n", committee.Name)
	if committee.MinCoalitionSize > 0 {
		fmt.Fprintf(a.out, "Minimum coalition: %d\n", committee.MinCoalitionSize)
	}
	fmt.Fprintf(a.out, "Created: %s\n", committee.CreatedAt)
	fmt.Fprintln(a.out)

	if len(committee.Countries) == 0 {
		fmt.Fprintln(a.out, "No countries on the roster.")
		return committee, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "COUNTRY\tEMAIL\tVETO")
	fmt.Fprintln(w, "-------\t-----\t----")
	for _, c := range committee.Countries {
		veto := ""
		if c.HasVetoRight {
			veto = "yes"
		}
		email := c.Email
		if email == "" {
			email = mutedColor.Sprint("(none, cannot vote)")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, email, veto)
	}
	w.Flush()
	return committee, nil
}

// List lists committees.
func (a *CommitteeAdapter) List(ctx context.Context) ([]*primary.Committee, error) {
	committees, err := a.service.ListCommittees(ctx)
	if err != nil {
		return nil, err
	}
	if len(committees) == 0 {
		fmt.Fprintln(a.out, "No committees found.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Create your first committee:")
		fmt.Fprintln(a.out, "  presidium committee create \"Security Council\"")
		return committees, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	fmt.Fprintln(w, "--\t----")
	for _, c := range committees {
		fmt.Fprintf(w, "%s\t%s\n", c.ID, c.Name)
	}
	w.Flush()
	return committees, nil
}
