package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/presidium/internal/core/effects"
	"github.com/example/presidium/internal/core/procerr"
	"github.com/example/presidium/internal/core/session"
	"github.com/example/presidium/internal/core/speakers"
	"github.com/example/presidium/internal/core/timer"
	"github.com/example/presidium/internal/ports/primary"
	"github.com/example/presidium/internal/ports/secondary"
)

// SessionServiceImpl implements the SessionService interface.
type SessionServiceImpl struct {
	sessionRepo   secondary.SessionRepository
	committeeRepo secondary.CommitteeRepository
	executor      EffectExecutor
	logger        *slog.Logger
	metrics       *Metrics
	clock         Clock
	retries       int
}

// ServiceConfig carries the optional collaborators of the aggregate services.
type ServiceConfig struct {
	Logger      *slog.Logger
	Metrics     *Metrics
	Clock       Clock
	SaveRetries int
}

// NewSessionService creates a new SessionService with injected dependencies.
func NewSessionService(
	sessionRepo secondary.SessionRepository,
	committeeRepo secondary.CommitteeRepository,
	executor EffectExecutor,
	cfg ServiceConfig,
) *SessionServiceImpl {
	return &SessionServiceImpl{
		sessionRepo:   sessionRepo,
		committeeRepo: committeeRepo,
		executor:      executor,
		logger:        orDiscard(cfg.Logger).With("service", "session"),
		metrics:       cfg.Metrics,
		clock:         orSystemClock(cfg.Clock),
		retries:       cfg.SaveRetries,
	}
}

// sessionOp mutates a loaded session in memory and reports the effects to run.
type sessionOp func(sess *session.Session, actor string, now time.Time) ([]effects.Effect, error)

// CreateSession creates an inactive session seeded from the committee roster.
func (s *SessionServiceImpl) CreateSession(ctx context.Context, req primary.CreateSessionRequest) (sess *session.Session, err error) {
	defer func() { s.metrics.observe("session", "create", err) }()

	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.committeeRepo.GetByID(ctx, req.CommitteeID); err != nil {
		return nil, err
	}
	countries, err := s.committeeRepo.ListCountries(ctx, req.CommitteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load committee roster: %w", err)
	}
	names := make([]string, len(countries))
	for i, c := range countries {
		names[i] = c.Name
	}

	nextID, err := s.sessionRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}
	number, err := s.sessionRepo.GetNextNumber(ctx, req.CommitteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to number session: %w", err)
	}

	sess, effs, err := session.New(session.NewParams{
		ID:          nextID,
		CommitteeID: req.CommitteeID,
		Number:      number,
		Countries:   names,
		Mode:        req.Mode,
		Settings:    req.Settings,
		CreatedBy:   actor.Name(),
	}, s.clock())
	if err != nil {
		return nil, err
	}

	doc, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	record := &secondary.SessionRecord{
		ID:          sess.ID,
		CommitteeID: sess.CommitteeID,
		Number:      sess.Number,
		Status:      string(sess.Status),
		Document:    doc,
	}
	if err := s.sessionRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.Version = record.Version

	if err := s.executor.Execute(ctx, effs); err != nil {
		return nil, err
	}
	return sess, nil
}

// StartSession activates a session and starts its session timer.
func (s *SessionServiceImpl) StartSession(ctx context.Context, sessionID string, duration int) (*session.Session, error) {
	return s.mutate(ctx, "start", sessionID, func(sess *session.Session, actor string, now time.Time) ([]effects.Effect, error) {
		live, err := s.sessionRepo.GetLive(ctx, sess.CommitteeID)
		if err != nil {
			return nil, err
		}
		liveID := ""
		if live != nil {
			liveID = live.ID
		}
		return sess.Start(liveID, duration, actor, now)
	})
}

// PauseSession pauses an active session and every running timer.
func (s *SessionServiceImpl) PauseSession(ctx context.Context, sessionID string) (*session.Session, error) {
	return s.mutate(ctx, "pause", sessionID, func(sess *session.Session, actor string, now time.Time) ([]effects.Effect, error) {
		return sess.Pause(actor, now)
	})
}

// ResumeSession resumes a paused session.
func (s *SessionServiceImpl) ResumeSession(ctx context.Context, sessionID string) (*session.Session, error) {
	return s.mutate(ctx, "resume", sessionID, func(sess *session.Session, actor string, now time.Time) ([]effects.Effect, error) {
		return sess.Resume(actor, now)
	})
}

// CompleteSession ends a session permanently.
func (s *SessionServiceImpl) CompleteSession(ctx context.Context, sessionID string) (*session.Session, error) {
	return s.mutate(ctx, "complete", sessionID, func(sess *session.Session, actor string, now time.Time) ([]effects.Effect, error) {
		return sess.Complete(actor, now)
	})
}

// GetSession retrieves a session by ID.
func (s *SessionServiceImpl) GetSession(ctx context.Context, sessionID string) (*session.Session, error) {
	record, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return decodeSession(record)
}

// ListSessions lists sessions with optional filters.
func (s *SessionServiceImpl) ListSessions(ctx context.Context, filters primary.SessionFilters) ([]*session.Session, error) {
	records, err := s.sessionRepo.List(ctx, secondary.SessionFilters{
		CommitteeID: filters.CommitteeID,
		Status:      filters.Status,
		Limit:       filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]*session.Session, 0, len(records))
	for _, r := range records {
		sess, err := decodeSession(r)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// GetActiveSession returns the committee's live session.
func (s *SessionServiceImpl) GetActiveSession(ctx context.Context, committeeID string) (*session.Session, error) {
	record, err := s.sessionRepo.GetLive(ctx, committeeID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, procerr.WithMetadata(procerr.CodeNotFound,
			fmt.Sprintf("committee %s has no active session", committeeID),
			map[string]string{"entity": "session", "committee_id": committeeID})
	}
	return decodeSession(record)
}

// StartRollCall opens a roll call.
func (s *SessionServiceImpl) StartRollCall(ctx context.Context, sessionID string, timeLimit int) (*session.Session, error) {
	return s.mutate(ctx, "start_roll_call", sessionID, func(sess *session.Session, actor string, now time.Time) ([]effects.Effect, error) {
		return sess.StartRollCall(actor, timeLimit, now)
	})
}

// MarkAttendance reclassifies a country.
func (s *SessionServiceImpl) MarkAttendance(ctx context.Context, req primary.MarkAttendanceRequest) (*session.Session, error) {
	return s.mutate(ctx, "mark_attendance", req.SessionID, func(sess *session.Session, actor string, now time.Time) ([]effects.Effect, error) {
		return sess.MarkAttendance(req.Country, req.Status, actor, now)
	})
}

// EndRollCall closes the roll call and rebuilds the speaker lists.
func (s *SessionServiceImpl) EndRollCall(ctx context.Context, sessionID string) (*session.Session, error) {
	return s.mutate(ctx, "end_roll_call", sessionID, func(sess *session.Session, actor string, now time.Time) ([]effects.Effect, error) {
		return sess.EndRollCall(actor, now)
	})
}

// ChangeMode switches the debate mode.
func (s *SessionServiceImpl) ChangeMode(ctx context.Context, req primary.ChangeModeRequest) (*session.Session, error) {
	return s.mutate(ctx, "change_mode", req.SessionID, func(sess *session.Session, actor string, now time.Time) ([]effects.Effect, error) {
		return sess.ChangeMode(req.Mode, req.Settings, actor, now)
	})
}

// MoveToEnd sends a country to the end of the speaker list.
func (s *SessionServiceImpl) MoveToEnd(ctx context.Context, sessionID, country string) (*session.Session, error) {
	return s.mutate(ctx, "move_to_end", sessionID, func(sess *session.Session, actor string, _ time.Time) ([]effects.Effect, error) {
		return sess.MoveToEnd(country, actor)
	})
}

// MarkSpoken flags a country as having spoken.
func (s *SessionServiceImpl) MarkSpoken(ctx context.Context, sessionID, country string) (*session.Session, error) {
	return s.mutate(ctx, "mark_spoken", sessionID, func(sess *session.Session, _ string, _ time.Time) ([]effects.Effect, error) {
		return sess.MarkSpoken(country)
	})
}

// SetCurrentSpeaker gives the floor to a country.
func (s *SessionServiceImpl) SetCurrentSpeaker(ctx context.Context, sessionID, country string) (*session.Session, error) {
	return s.mutate(ctx, "set_speaker", sessionID, func(sess *session.Session, actor string, now time.Time) ([]effects.Effect, error) {
		return sess.SetCurrentSpeaker(country, actor, now)
	})
}

// NextSpeaker gives the floor to the next country that has not spoken.
func (s *SessionServiceImpl) NextSpeaker(ctx context.Context, sessionID string) (*primary.NextSpeakerResponse, error) {
	var next *speakers.Entry
	sess, err := s.mutate(ctx, "next_speaker", sessionID, func(sess *session.Session, actor string, now time.Time) ([]effects.Effect, error) {
		entry, effs, err := sess.AdvanceSpeaker(actor, now)
		next = entry
		return effs, err
	})
	if err != nil {
		return nil, err
	}
	return &primary.NextSpeakerResponse{Speaker: next, Session: sess}, nil
}

// ClearCurrentSpeaker yields the floor.
func (s *SessionServiceImpl) ClearCurrentSpeaker(ctx context.Context, sessionID string) (*session.Session, error) {
	return s.mutate(ctx, "clear_speaker", sessionID, func(sess *session.Session, actor string, now time.Time) ([]effects.Effect, error) {
		return sess.ClearCurrentSpeaker(actor, now)
	})
}

// StartTimer (re)starts a timer.
func (s *SessionServiceImpl) StartTimer(ctx context.Context, req primary.StartTimerRequest) (*session.Session, error) {
	return s.mutate(ctx, "start_timer", req.SessionID, func(sess *session.Session, actor string, now time.Time) ([]effects.Effect, error) {
		return sess.StartTimer(req.Name, req.Duration, req.Meta, actor, now)
	})
}

// PauseTimer pauses a running timer.
func (s *SessionServiceImpl) PauseTimer(ctx context.Context, sessionID, name string) (*session.Session, error) {
	return s.mutate(ctx, "pause_timer", sessionID, func(sess *session.Session, actor string, now time.Time) ([]effects.Effect, error) {
		return sess.PauseTimer(name, actor, now)
	})
}

// ResumeTimer resumes a paused timer.
func (s *SessionServiceImpl) ResumeTimer(ctx context.Context, sessionID, name string) (*session.Session, error) {
	return s.mutate(ctx, "resume_timer", sessionID, func(sess *session.Session, actor string, now time.Time) ([]effects.Effect, error) {
		return sess.ResumeTimer(name, actor, now)
	})
}

// AdjustTimer overrides a timer's remaining time; the change is audited.
func (s *SessionServiceImpl) AdjustTimer(ctx context.Context, req primary.AdjustTimerRequest) (*session.Session, error) {
	return s.mutate(ctx, "adjust_timer", req.SessionID, func(sess *session.Session, actor string, now time.Time) ([]effects.Effect, error) {
		return sess.AdjustTimer(req.Name, req.NewRemaining, req.Reason, actor, now)
	})
}

// StopTimer deactivates a timer.
func (s *SessionServiceImpl) StopTimer(ctx context.Context, sessionID, name string) (*session.Session, error) {
	return s.mutate(ctx, "stop_timer", sessionID, func(sess *session.Session, actor string, now time.Time) ([]effects.Effect, error) {
		return sess.StopTimer(name, actor, now)
	})
}

// AddTimer registers an additional timer and returns its generated ID.
func (s *SessionServiceImpl) AddTimer(ctx context.Context, req primary.AddTimerRequest) (*primary.AddTimerResponse, error) {
	timerID := "timer-" + uuid.NewString()[:8]
	sess, err := s.mutate(ctx, "add_timer", req.SessionID, func(sess *session.Session, actor string, now time.Time) ([]effects.Effect, error) {
		return sess.AddTimer(timerID, req.Duration, req.Meta, actor, now)
	})
	if err != nil {
		return nil, err
	}
	return &primary.AddTimerResponse{TimerID: timerID, Session: sess}, nil
}

// RemoveTimer deletes an additional timer.
func (s *SessionServiceImpl) RemoveTimer(ctx context.Context, sessionID, timerID string) (*session.Session, error) {
	return s.mutate(ctx, "remove_timer", sessionID, func(sess *session.Session, actor string, now time.Time) ([]effects.Effect, error) {
		return sess.RemoveTimer(timerID, actor, now)
	})
}

// ReadTimers returns a reading of every timer.
func (s *SessionServiceImpl) ReadTimers(ctx context.Context, sessionID string) ([]timer.NamedReading, error) {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.ReadTimers(s.clock()), nil
}

// mutate runs load, op, versioned save and effect execution, retrying the
// whole cycle on a concurrent modification.
func (s *SessionServiceImpl) mutate(ctx context.Context, operation, sessionID string, op sessionOp) (result *session.Session, err error) {
	defer func() { s.metrics.observe("session", operation, err) }()

	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	onConflict := func(attempt int, err error) {
		s.metrics.conflict("session")
		s.logger.DebugContext(ctx, "retrying after concurrent modification",
			"session_id", sessionID, "operation", operation, "attempt", attempt, "error", err)
	}

	return retryOnConflict(ctx, s.retries, onConflict, func() (*session.Session, error) {
		record, err := s.sessionRepo.GetByID(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		sess, err := decodeSession(record)
		if err != nil {
			return nil, err
		}

		effs, err := op(sess, actor.Name(), s.clock())
		if err != nil {
			return nil, err
		}

		doc, err := json.Marshal(sess)
		if err != nil {
			return nil, fmt.Errorf("failed to encode session: %w", err)
		}
		record.Status = string(sess.Status)
		record.Document = doc
		if err := s.sessionRepo.Save(ctx, record, sess.Version); err != nil {
			return nil, err
		}
		sess.Version = record.Version

		if err := s.executor.Execute(ctx, effs); err != nil {
			return nil, err
		}
		return sess, nil
	})
}

func decodeSession(record *secondary.SessionRecord) (*session.Session, error) {
	var sess session.Session
	if err := json.Unmarshal(record.Document, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", record.ID, err)
	}
	sess.Version = record.Version
	return &sess, nil
}

// Ensure SessionServiceImpl implements the interface
var _ primary.SessionService = (*SessionServiceImpl)(nil)
