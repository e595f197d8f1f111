package voting

import (
	"time"

	"github.com/example/presidium/internal/core/effects"
)

// Results is computed once at completion and never recomputed.
type Results struct {
	VotesFor         int    `json:"votesFor"`
	VotesAgainst     int    `json:"votesAgainst"`
	Abstentions      int    `json:"abstentions"`
	TotalVotes       int    `json:"totalVotes"`
	EligibleCount    int    `json:"eligibleCount"`
	Passed           bool   `json:"passed"`
	VetoUsed         bool   `json:"vetoUsed"`
	VetoCountry      string `json:"vetoCountry,omitempty"`
	ActualMajority   int    `json:"actualMajority"`
	RequiredMajority int    `json:"requiredMajority"`
	ForcedCompletion bool   `json:"forcedCompletion"`
}

// Tally computes results for votes under the given pass rule. Any veto
// fails the motion outright.
func Tally(votes []Vote, majority Majority, threshold, eligible int) Results {
	r := Results{
		TotalVotes:       len(votes),
		EligibleCount:    eligible,
		RequiredMajority: threshold,
	}
	for _, v := range votes {
		switch v.Vote {
		case ChoiceFor:
			r.VotesFor++
		case ChoiceAgainst:
			r.VotesAgainst++
		case ChoiceAbstain:
			r.Abstentions++
		}
		if v.IsVeto && !r.VetoUsed {
			r.VetoUsed = true
			r.VetoCountry = v.Country
		}
	}
	r.ActualMajority = r.VotesFor

	if r.VetoUsed {
		return r
	}
	switch majority {
	case MajorityQualified:
		r.Passed = r.VotesFor >= threshold
	case MajorityConsensus:
		r.Passed = r.VotesAgainst == 0
	default:
		r.Passed = r.VotesFor > r.VotesAgainst
	}
	return r
}

// Complete closes the voting and freezes its results. Without force every
// eligible voter must have voted.
func (v *Voting) Complete(force bool, actor string, now time.Time) ([]effects.Effect, error) {
	eligible := v.EligibleCount()
	if err := CanCompleteVoting(StatusContext{VotingID: v.ID, Status: v.Status}, len(v.Votes), eligible, force).Error(); err != nil {
		return nil, err
	}

	r := Tally(v.Votes, v.MajorityRequired, v.MajorityThreshold, eligible)
	r.ForcedCompletion = force && len(v.Votes) < eligible

	completed := now
	v.Results = &r
	v.Status = StatusCompleted
	v.CompletedAt = &completed
	v.CurrentlyVoting = ""

	return []effects.Effect{
		v.event(EventCompleted, effects.VisibilityPublic, map[string]any{
			"results":     r,
			"votes":       v.Votes,
			"completedBy": actor,
		}),
		effects.LogEffect{Level: "info", Message: "voting completed", Fields: map[string]any{
			"voting_id": v.ID, "passed": r.Passed, "veto_used": r.VetoUsed, "forced": r.ForcedCompletion,
		}},
	}, nil
}

// Cancel terminates the voting without results.
func (v *Voting) Cancel(reason, actor string, now time.Time) ([]effects.Effect, error) {
	if err := CanCancelVoting(StatusContext{VotingID: v.ID, Status: v.Status}).Error(); err != nil {
		return nil, err
	}
	prev := v.Status
	completed := now
	v.Status = StatusCancelled
	v.CancelReason = reason
	v.CancelledBy = actor
	v.CompletedAt = &completed
	v.CurrentlyVoting = ""

	return []effects.Effect{
		v.event(EventCancelled, effects.VisibilityPublic, map[string]any{
			"reason":      reason,
			"cancelledBy": actor,
		}),
		effects.AuditEffect{
			EntityType: aggregateType,
			EntityID:   v.ID,
			Action:     "cancel",
			FieldName:  "status",
			OldValue:   string(prev),
			NewValue:   string(StatusCancelled),
			Reason:     reason,
		},
	}, nil
}
