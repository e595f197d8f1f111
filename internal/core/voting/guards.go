// Package voting contains the pure business logic for procedural votes.
// This is part of the Functional Core - no I/O, only pure functions.
package voting

import (
	"fmt"
	"strconv"

	"github.com/example/presidium/internal/core/procerr"
)

// CreateContext provides context for voting creation guards.
type CreateContext struct {
	SessionID      string
	SessionStatus  string
	QuorumHasMet   bool
	QuorumPresent  int
	QuorumRequired int
	EligibleCount  int
}

// CanCreateVoting evaluates whether a voting can be created.
// Rules: session must be active, quorum must be met, at least one voter.
func CanCreateVoting(ctx CreateContext) procerr.GuardResult {
	if ctx.SessionStatus != "active" {
		return procerr.Deny(procerr.CodeInvalidState,
			fmt.Sprintf("can only create votings in active sessions (session %s is %s)", ctx.SessionID, ctx.SessionStatus),
			map[string]string{"current_state": ctx.SessionStatus, "required_state": "active"})
	}
	if !ctx.QuorumHasMet {
		return procerr.Deny(procerr.CodeQuorumNotMet,
			fmt.Sprintf("quorum not met: %d present, %d required", ctx.QuorumPresent, ctx.QuorumRequired),
			map[string]string{
				"present":  strconv.Itoa(ctx.QuorumPresent),
				"required": strconv.Itoa(ctx.QuorumRequired),
			})
	}
	if ctx.EligibleCount == 0 {
		return procerr.Deny(procerr.CodeInvalidState,
			"no countries are present and voting",
			map[string]string{"current_state": "no_eligible_voters"})
	}
	return procerr.Allow()
}

// StatusContext provides context for lifecycle guards.
type StatusContext struct {
	VotingID string
	Status   Status
}

// CanStartVoting evaluates whether a voting can be opened.
// Rule: only pending votings start.
func CanStartVoting(ctx StatusContext) procerr.GuardResult {
	if ctx.Status != StatusPending {
		return procerr.Deny(procerr.CodeInvalidState,
			fmt.Sprintf("can only start pending votings (current status: %s)", ctx.Status),
			map[string]string{"current_state": string(ctx.Status), "required_state": string(StatusPending)})
	}
	return procerr.Allow()
}

// CanCompleteVoting evaluates whether a voting can be closed.
// Rules: voting must be active; every voter must have voted unless forced.
func CanCompleteVoting(ctx StatusContext, votesCast, eligible int, force bool) procerr.GuardResult {
	if ctx.Status != StatusActive {
		return procerr.Deny(procerr.CodeInvalidState,
			fmt.Sprintf("can only complete active votings (current status: %s)", ctx.Status),
			map[string]string{"current_state": string(ctx.Status), "required_state": string(StatusActive)})
	}
	if !force && votesCast < eligible {
		return procerr.Deny(procerr.CodeInvalidState,
			fmt.Sprintf("%d of %d voters have not voted (use force to complete anyway)", eligible-votesCast, eligible),
			map[string]string{"votes_cast": strconv.Itoa(votesCast), "eligible": strconv.Itoa(eligible)})
	}
	return procerr.Allow()
}

// CanCancelVoting evaluates whether a voting can be cancelled.
// Rule: completed and cancelled votings are immutable.
func CanCancelVoting(ctx StatusContext) procerr.GuardResult {
	if ctx.Status.IsTerminal() {
		return procerr.Deny(procerr.CodeInvalidState,
			fmt.Sprintf("voting %s is already %s", ctx.VotingID, ctx.Status),
			map[string]string{"current_state": string(ctx.Status), "required_state": "pending|active"})
	}
	return procerr.Allow()
}

// CastContext provides context for vote guards.
type CastContext struct {
	Status          Status
	RollCall        bool
	Email           string
	Known           bool
	CanVote         bool
	AlreadyVoted    bool
	Country         string
	CurrentlyVoting string
	WasSkipped      bool
	Choice          Choice
}

// CanCastVote evaluates whether a vote may be recorded.
// Rules:
//   - voting must be active
//   - voter must be eligible and must not have voted
//   - roll-call voters vote only on their turn
//   - a voter who was skipped may only vote for or against
func CanCastVote(ctx CastContext) procerr.GuardResult {
	if ctx.Status != StatusActive {
		return procerr.Deny(procerr.CodeInvalidState,
			fmt.Sprintf("can only vote in active votings (current status: %s)", ctx.Status),
			map[string]string{"current_state": string(ctx.Status), "required_state": string(StatusActive)})
	}
	if !ctx.Known || !ctx.CanVote {
		return procerr.Deny(procerr.CodeNotEligible,
			fmt.Sprintf("%s is not an eligible voter", ctx.Email),
			map[string]string{"email": ctx.Email})
	}
	if ctx.AlreadyVoted {
		return procerr.Deny(procerr.CodeNotEligible,
			fmt.Sprintf("%s has already voted", ctx.Country),
			map[string]string{"email": ctx.Email, "country": ctx.Country})
	}
	if ctx.RollCall && ctx.Country != ctx.CurrentlyVoting {
		return procerr.Deny(procerr.CodeOutOfTurn,
			fmt.Sprintf("it is %s's turn, not %s's", ctx.CurrentlyVoting, ctx.Country),
			map[string]string{"country": ctx.Country, "blocking": ctx.CurrentlyVoting})
	}
	if ctx.WasSkipped && ctx.Choice == ChoiceAbstain {
		return procerr.Deny(procerr.CodeNotEligible,
			fmt.Sprintf("%s was skipped and may only vote for or against", ctx.Country),
			map[string]string{"country": ctx.Country, "vote": string(ctx.Choice)})
	}
	return procerr.Allow()
}

// SkipContext provides context for the roll-call skip guard.
type SkipContext struct {
	Status          Status
	RollCall        bool
	Country         string
	CurrentlyVoting string
	AlreadySkipped  bool
}

// CanSkip evaluates whether the current roll-call voter may defer their turn.
// Rules: roll-call only, current voter only, once per voter.
func CanSkip(ctx SkipContext) procerr.GuardResult {
	if ctx.Status != StatusActive {
		return procerr.Deny(procerr.CodeInvalidState,
			fmt.Sprintf("can only skip in active votings (current status: %s)", ctx.Status),
			map[string]string{"current_state": string(ctx.Status), "required_state": string(StatusActive)})
	}
	if !ctx.RollCall {
		return procerr.Deny(procerr.CodeInvalidState,
			"skip is only available in roll-call votings",
			map[string]string{"current_state": string(TypeSimple), "required_state": string(TypeRollCall)})
	}
	if ctx.CurrentlyVoting == "" {
		return procerr.Deny(procerr.CodeInvalidState,
			"no country is currently voting",
			map[string]string{"current_state": "roll_call_exhausted"})
	}
	if ctx.Country != ctx.CurrentlyVoting {
		return procerr.Deny(procerr.CodeOutOfTurn,
			fmt.Sprintf("it is %s's turn, not %s's", ctx.CurrentlyVoting, ctx.Country),
			map[string]string{"country": ctx.Country, "blocking": ctx.CurrentlyVoting})
	}
	if ctx.AlreadySkipped {
		return procerr.Deny(procerr.CodeInvalidState,
			fmt.Sprintf("%s has already been skipped once", ctx.Country),
			map[string]string{"country": ctx.Country, "current_state": "skipped"})
	}
	return procerr.Allow()
}
