package primary

import (
	"context"

	"github.com/example/presidium/internal/core/voting"
)

// VotingService defines the primary port for voting operations.
type VotingService interface {
	// CreateVoting snapshots the session's eligible voters into a pending voting.
	CreateVoting(ctx context.Context, req CreateVotingRequest) (*voting.Voting, error)

	// StartVoting opens a pending voting.
	StartVoting(ctx context.Context, votingID string) (*voting.Voting, error)

	// CastVote records a vote for the voter identified by email.
	CastVote(ctx context.Context, req CastVoteRequest) (*voting.Voting, error)

	// SkipVoter defers the current roll-call voter's turn.
	SkipVoter(ctx context.Context, votingID, country string) (*voting.Voting, error)

	// CompleteVoting closes a voting and freezes its results.
	CompleteVoting(ctx context.Context, votingID string, force bool) (*voting.Voting, error)

	// CancelVoting terminates a voting without results.
	CancelVoting(ctx context.Context, votingID, reason string) (*voting.Voting, error)

	// GetVoting retrieves a voting by ID.
	GetVoting(ctx context.Context, votingID string) (*voting.Voting, error)

	// ListVotings lists votings with optional filters.
	ListVotings(ctx context.Context, filters VotingFilters) ([]*voting.Voting, error)

	// GetNextRollCallVoter returns whose turn it is, or nil once everyone voted.
	GetNextRollCallVoter(ctx context.Context, votingID string) (*voting.Voter, error)
}

// CreateVotingRequest contains parameters for creating a voting.
type CreateVotingRequest struct {
	SessionID   string
	Title       string
	SubjectType voting.SubjectType
	SubjectID   string
	Majority    voting.Majority
	Type        voting.Type
	TimeLimit   int
}

// CastVoteRequest contains parameters for casting a vote.
// Email defaults to the actor's email when empty.
type CastVoteRequest struct {
	VotingID          string
	Email             string
	Vote              voting.Choice
	VetoJustification string
}

// VotingFilters contains filter options for listing votings.
type VotingFilters struct {
	SessionID string
	Status    string
	Limit     int
}
