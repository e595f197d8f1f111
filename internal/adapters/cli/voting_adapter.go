package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/example/presidium/internal/core/voting"
	"github.com/example/presidium/internal/ports/primary"
)

// VotingAdapter is a thin adapter that translates CLI operations to VotingService calls.
type VotingAdapter struct {
	service primary.VotingService
	out     io.Writer
}

// NewVotingAdapter creates a new VotingAdapter with the given service.
func NewVotingAdapter(service primary.VotingService, out io.Writer) *VotingAdapter {
	return &VotingAdapter{
		service: service,
		out:     out,
	}
}

// Create creates a pending voting.
func (a *VotingAdapter) Create(ctx context.Context, req primary.CreateVotingRequest) (*voting.Voting, error) {
	v, err := a.service.CreateVoting(ctx, req)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "✓ Created voting %s: %s\n", v.ID, v.Title)
	fmt.Fprintf(a.out, "  Type:      %s\n", v.VotingType)
	fmt.Fprintf(a.out, "  Majority:  %s (%d needed)\n", v.MajorityRequired, v.MajorityThreshold)
	fmt.Fprintf(a.out, "  Eligible:  %d\n", v.EligibleCount())
	if len(v.RollCallOrder) > 0 {
		fmt.Fprintf(a.out, "  Order:     %s\n", strings.Join(v.RollCallOrder, ", "))
	}
	return v, nil
}

// Start opens a voting.
func (a *VotingAdapter) Start(ctx context.Context, votingID string) (*voting.Voting, error) {
	v, err := a.service.StartVoting(ctx, votingID)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Voting %s started\n", v.ID)
	a.printTurn(v)
	return v, nil
}

// Cast records a vote.
func (a *VotingAdapter) Cast(ctx context.Context, req primary.CastVoteRequest) (*voting.Voting, error) {
	v, err := a.service.CastVote(ctx, req)
	if err != nil {
		return nil, err
	}
	last := v.Votes[len(v.Votes)-1]
	if v.VotingType == voting.TypeSimple {
		fmt.Fprintf(a.out, "✓ Vote recorded for %s (%d/%d)\n", last.Country, len(v.Votes), v.EligibleCount())
		return v, nil
	}

	fmt.Fprintf(a.out, "✓ %s votes %s", last.Country, choice(last.Vote))
	if last.IsVeto {
		fmt.Fprint(a.out, failColor.Sprint(" (VETO)"))
	}
	fmt.Fprintf(a.out, " (%d/%d)\n", len(v.Votes), v.EligibleCount())
	a.printTurn(v)
	return v, nil
}

// Skip defers the current roll-call voter.
func (a *VotingAdapter) Skip(ctx context.Context, votingID, country string) (*voting.Voting, error) {
	v, err := a.service.SkipVoter(ctx, votingID, country)
	if err != nil {
		return nil, err
	}
	skipped := v.SkippedCountries[len(v.SkippedCountries)-1]
	fmt.Fprintf(a.out, "✓ %s skipped\n", skipped)
	a.printTurn(v)
	return v, nil
}

// Complete closes a voting and prints its results.
func (a *VotingAdapter) Complete(ctx context.Context, votingID string, force bool) (*voting.Voting, error) {
	v, err := a.service.CompleteVoting(ctx, votingID, force)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Voting %s completed\n", v.ID)
	a.printResults(v.Results)
	return v, nil
}

// Cancel cancels a voting.
func (a *VotingAdapter) Cancel(ctx context.Context, votingID, reason string) (*voting.Voting, error) {
	v, err := a.service.CancelVoting(ctx, votingID, reason)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Voting %s cancelled\n", v.ID)
	return v, nil
}

// Show displays a voting. Simple-voting ballots stay hidden until completion.
func (a *VotingAdapter) Show(ctx context.Context, votingID string) (*voting.Voting, error) {
	v, err := a.service.GetVoting(ctx, votingID)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "\nVoting: %s\n", v.ID)
	fmt.Fprintf(a.out, "Title:    %s\n", v.Title)
	fmt.Fprintf(a.out, "Session:  %s\n", v.SessionID)
	fmt.Fprintf(a.out, "Status:   %s\n", votingStatus(v.Status))
	fmt.Fprintf(a.out, "Type:     %s, %s majority (%d needed)\n", v.VotingType, v.MajorityRequired, v.MajorityThreshold)
	fmt.Fprintf(a.out, "Progress: %d/%d voted\n", len(v.Votes), v.EligibleCount())
	if v.CancelReason != "" {
		fmt.Fprintf(a.out, "Reason:   %s\n", v.CancelReason)
	}
	fmt.Fprintln(a.out)

	if v.VotingType == voting.TypeRollCall || v.Status == voting.StatusCompleted {
		w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "COUNTRY\tVOTE\tNOTE")
		for _, vote := range v.Votes {
			note := ""
			if vote.IsVeto {
				note = "veto: " + vote.VetoJustification
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", vote.Country, choice(vote.Vote), note)
		}
		w.Flush()
		fmt.Fprintln(a.out)
	}

	a.printTurn(v)
	if v.Results != nil {
		a.printResults(v.Results)
	}
	return v, nil
}

// List lists votings.
func (a *VotingAdapter) List(ctx context.Context, filters primary.VotingFilters) ([]*voting.Voting, error) {
	votings, err := a.service.ListVotings(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list votings: %w", err)
	}

	if len(votings) == 0 {
		fmt.Fprintln(a.out, "No votings found.")
		return votings, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tSESSION\tTYPE\tSTATUS\tVOTES\tTITLE")
	fmt.Fprintln(w, "--\t-------\t----\t------\t-----\t-----")
	for _, v := range votings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%s\n",
			v.ID, v.SessionID, v.VotingType, votingStatus(v.Status), len(v.Votes), v.EligibleCount(), v.Title)
	}
	w.Flush()
	return votings, nil
}

func (a *VotingAdapter) printTurn(v *voting.Voting) {
	if v.VotingType != voting.TypeRollCall || v.Status != voting.StatusActive {
		return
	}
	if v.CurrentlyVoting == "" {
		fmt.Fprintln(a.out, "  All countries have voted.")
		return
	}
	fmt.Fprintf(a.out, "  Now voting: %s\n", focusColor.Sprint(v.CurrentlyVoting))
}

func (a *VotingAdapter) printResults(r *voting.Results) {
	if r == nil {
		return
	}
	outcome := okColor.Sprint("PASSED")
	if !r.Passed {
		outcome = failColor.Sprint("FAILED")
	}
	fmt.Fprintf(a.out, "Result: %s\n", outcome)
	fmt.Fprintf(a.out, "  For: %d  Against: %d  Abstain: %d  (%d of %d voted)\n",
		r.VotesFor, r.VotesAgainst, r.Abstentions, r.TotalVotes, r.EligibleCount)
	if r.VetoUsed {
		fmt.Fprintf(a.out, "  Vetoed by %s\n", r.VetoCountry)
	}
	if r.ForcedCompletion {
		fmt.Fprintln(a.out, warnColor.Sprint("  Completed before every voter had voted"))
	}
}

func choice(c voting.Choice) string {
	switch c {
	case voting.ChoiceFor:
		return okColor.Sprint(c)
	case voting.ChoiceAgainst:
		return failColor.Sprint(c)
	default:
		return mutedColor.Sprint(c)
	}
}
