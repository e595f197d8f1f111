package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/presidium/internal/core/effects"
	"github.com/example/presidium/internal/core/voting"
	"github.com/example/presidium/internal/ports/primary"
	"github.com/example/presidium/internal/ports/secondary"
)

// VotingServiceImpl implements the VotingService interface.
type VotingServiceImpl struct {
	votingRepo    secondary.VotingRepository
	sessionRepo   secondary.SessionRepository
	committeeRepo secondary.CommitteeRepository
	executor      EffectExecutor
	logger        *slog.Logger
	metrics       *Metrics
	clock         Clock
	retries       int
}

// NewVotingService creates a new VotingService with injected dependencies.
func NewVotingService(
	votingRepo secondary.VotingRepository,
	sessionRepo secondary.SessionRepository,
	committeeRepo secondary.CommitteeRepository,
	executor EffectExecutor,
	cfg ServiceConfig,
) *VotingServiceImpl {
	return &VotingServiceImpl{
		votingRepo:    votingRepo,
		sessionRepo:   sessionRepo,
		committeeRepo: committeeRepo,
		executor:      executor,
		logger:        orDiscard(cfg.Logger).With("service", "voting"),
		metrics:       cfg.Metrics,
		clock:         orSystemClock(cfg.Clock),
		retries:       cfg.SaveRetries,
	}
}

type votingOp func(v *voting.Voting, actor string, now time.Time) ([]effects.Effect, error)

// CreateVoting snapshots the session's eligible voters into a pending voting.
func (s *VotingServiceImpl) CreateVoting(ctx context.Context, req primary.CreateVotingRequest) (v *voting.Voting, err error) {
	defer func() { s.metrics.observe("voting", "create", err) }()

	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	sessionRecord, err := s.sessionRepo.GetByID(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	sess, err := decodeSession(sessionRecord)
	if err != nil {
		return nil, err
	}

	countries, err := s.committeeRepo.ListCountries(ctx, sess.CommitteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load committee roster: %w", err)
	}
	roster := make([]voting.Member, len(countries))
	for i, c := range countries {
		roster[i] = voting.Member{Country: c.Name, Email: c.Email, HasVetoRight: c.HasVetoRight}
	}

	nextID, err := s.votingRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate voting ID: %w", err)
	}

	v, effs, err := voting.Create(voting.CreateParams{
		ID: nextID,
		Session: voting.SessionSnapshot{
			ID:          sess.ID,
			CommitteeID: sess.CommitteeID,
			Status:      string(sess.Status),
			Quorum:      sess.Quorum,
			Attendance:  sess.Attendance,
		},
		Roster:      roster,
		Title:       req.Title,
		SubjectType: req.SubjectType,
		SubjectID:   req.SubjectID,
		Majority:    req.Majority,
		Type:        req.Type,
		TimeLimit:   req.TimeLimit,
		CreatedBy:   actor.Name(),
	}, s.clock())
	if err != nil {
		return nil, err
	}

	doc, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode voting: %w", err)
	}
	record := &secondary.VotingRecord{
		ID:          v.ID,
		SessionID:   v.SessionID,
		CommitteeID: v.CommitteeID,
		Status:      string(v.Status),
		Document:    doc,
	}
	if err := s.votingRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create voting: %w", err)
	}
	v.Version = record.Version

	if err := s.executor.Execute(ctx, effs); err != nil {
		return nil, err
	}
	return v, nil
}

// StartVoting opens a pending voting.
func (s *VotingServiceImpl) StartVoting(ctx context.Context, votingID string) (*voting.Voting, error) {
	return s.mutate(ctx, "start", votingID, func(v *voting.Voting, actor string, now time.Time) ([]effects.Effect, error) {
		return v.Start(actor, now)
	})
}

// CastVote records a vote for the voter identified by email.
func (s *VotingServiceImpl) CastVote(ctx context.Context, req primary.CastVoteRequest) (*voting.Voting, error) {
	email := req.Email
	if email == "" {
		if actor, err := requireActor(ctx); err == nil {
			email = actor.Email
		}
	}

	v, err := s.mutate(ctx, "cast", req.VotingID, func(v *voting.Voting, _ string, now time.Time) ([]effects.Effect, error) {
		return v.CastVote(email, req.Vote, req.VetoJustification, now)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.voteCast(string(v.VotingType), string(req.Vote))
	return v, nil
}

// SkipVoter defers the current roll-call voter's turn.
func (s *VotingServiceImpl) SkipVoter(ctx context.Context, votingID, country string) (*voting.Voting, error) {
	return s.mutate(ctx, "skip", votingID, func(v *voting.Voting, actor string, now time.Time) ([]effects.Effect, error) {
		return v.Skip(country, actor, now)
	})
}

// CompleteVoting closes a voting and freezes its results.
func (s *VotingServiceImpl) CompleteVoting(ctx context.Context, votingID string, force bool) (*voting.Voting, error) {
	v, err := s.mutate(ctx, "complete", votingID, func(v *voting.Voting, actor string, now time.Time) ([]effects.Effect, error) {
		return v.Complete(force, actor, now)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "voting completed",
		"voting_id", v.ID, "passed", v.Results.Passed, "veto_used", v.Results.VetoUsed, "forced", v.Results.ForcedCompletion)
	return v, nil
}

// CancelVoting terminates a voting without results.
func (s *VotingServiceImpl) CancelVoting(ctx context.Context, votingID, reason string) (*voting.Voting, error) {
	return s.mutate(ctx, "cancel", votingID, func(v *voting.Voting, actor string, now time.Time) ([]effects.Effect, error) {
		return v.Cancel(reason, actor, now)
	})
}

// GetVoting retrieves a voting by ID.
func (s *VotingServiceImpl) GetVoting(ctx context.Context, votingID string) (*voting.Voting, error) {
	record, err := s.votingRepo.GetByID(ctx, votingID)
	if err != nil {
		return nil, err
	}
	return decodeVoting(record)
}

// ListVotings lists votings with optional filters.
func (s *VotingServiceImpl) ListVotings(ctx context.Context, filters primary.VotingFilters) ([]*voting.Voting, error) {
	records, err := s.votingRepo.List(ctx, secondary.VotingFilters{
		SessionID: filters.SessionID,
		Status:    filters.Status,
		Limit:     filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list votings: %w", err)
	}

	votings := make([]*voting.Voting, 0, len(records))
	for _, r := range records {
		v, err := decodeVoting(r)
		if err != nil {
			return nil, err
		}
		votings = append(votings, v)
	}
	return votings, nil
}

// GetNextRollCallVoter returns whose turn it is, or nil once everyone voted.
func (s *VotingServiceImpl) GetNextRollCallVoter(ctx context.Context, votingID string) (*voting.Voter, error) {
	v, err := s.GetVoting(ctx, votingID)
	if err != nil {
		return nil, err
	}
	return v.NextRollCallVoter(), nil
}

func (s *VotingServiceImpl) mutate(ctx context.Context, operation, votingID string, op votingOp) (result *voting.Voting, err error) {
	defer func() { s.metrics.observe("voting", operation, err) }()

	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	onConflict := func(attempt int, err error) {
		s.metrics.conflict("voting")
		s.logger.DebugContext(ctx, "retrying after concurrent modification",
			"voting_id", votingID, "operation", operation, "attempt", attempt, "error", err)
	}

	return retryOnConflict(ctx, s.retries, onConflict, func() (*voting.Voting, error) {
		record, err := s.votingRepo.GetByID(ctx, votingID)
		if err != nil {
			return nil, err
		}
		v, err := decodeVoting(record)
		if err != nil {
			return nil, err
		}

		effs, err := op(v, actor.Name(), s.clock())
		if err != nil {
			return nil, err
		}

		doc, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode voting: %w", err)
		}
		record.Status = string(v.Status)
		record.Document = doc
		if err := s.votingRepo.Save(ctx, record, v.Version); err != nil {
			return nil, err
		}
		v.Version = record.Version

		if err := s.executor.Execute(ctx, effs); err != nil {
			return nil, err
		}
		return v, nil
	})
}

func decodeVoting(record *secondary.VotingRecord) (*voting.Voting, error) {
	var v voting.Voting
	if err := json.Unmarshal(record.Document, &v); err != nil {
		return nil, fmt.Errorf("failed to decode voting %s: %w", record.ID, err)
	}
	v.Version = record.Version
	return &v, nil
}

// Ensure VotingServiceImpl implements the interface
var _ primary.VotingService = (*VotingServiceImpl)(nil)
