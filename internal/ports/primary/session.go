package primary

import (
	"context"

	"github.com/example/presidium/internal/core/attendance"
	"github.com/example/presidium/internal/core/debate"
	"github.com/example/presidium/internal/core/session"
	"github.com/example/presidium/internal/core/speakers"
	"github.com/example/presidium/internal/core/timer"
)

// SessionService defines the primary port for session operations.
// Every mutating call returns the session as committed.
type SessionService interface {
	// CreateSession creates an inactive session seeded from the committee roster.
	CreateSession(ctx context.Context, req CreateSessionRequest) (*session.Session, error)

	// StartSession activates a session and starts its session timer.
	StartSession(ctx context.Context, sessionID string, duration int) (*session.Session, error)

	// PauseSession pauses an active session and every running timer.
	PauseSession(ctx context.Context, sessionID string) (*session.Session, error)

	// ResumeSession resumes a paused session.
	ResumeSession(ctx context.Context, sessionID string) (*session.Session, error)

	// CompleteSession ends a session permanently.
	CompleteSession(ctx context.Context, sessionID string) (*session.Session, error)

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, sessionID string) (*session.Session, error)

	// ListSessions lists sessions with optional filters.
	ListSessions(ctx context.Context, filters SessionFilters) ([]*session.Session, error)

	// GetActiveSession returns the committee's live session.
	GetActiveSession(ctx context.Context, committeeID string) (*session.Session, error)

	// StartRollCall opens a roll call.
	StartRollCall(ctx context.Context, sessionID string, timeLimit int) (*session.Session, error)

	// MarkAttendance reclassifies a country.
	MarkAttendance(ctx context.Context, req MarkAttendanceRequest) (*session.Session, error)

	// EndRollCall closes the roll call and rebuilds the speaker lists.
	EndRollCall(ctx context.Context, sessionID string) (*session.Session, error)

	// ChangeMode switches the debate mode.
	ChangeMode(ctx context.Context, req ChangeModeRequest) (*session.Session, error)

	// MoveToEnd sends a country to the end of the speaker list.
	MoveToEnd(ctx context.Context, sessionID, country string) (*session.Session, error)

	// MarkSpoken flags a country as having spoken.
	MarkSpoken(ctx context.Context, sessionID, country string) (*session.Session, error)

	// SetCurrentSpeaker gives the floor to a country.
	SetCurrentSpeaker(ctx context.Context, sessionID, country string) (*session.Session, error)

	// NextSpeaker gives the floor to the next country that has not spoken.
	NextSpeaker(ctx context.Context, sessionID string) (*NextSpeakerResponse, error)

	// ClearCurrentSpeaker yields the floor.
	ClearCurrentSpeaker(ctx context.Context, sessionID string) (*session.Session, error)

	// StartTimer (re)starts a timer.
	StartTimer(ctx context.Context, req StartTimerRequest) (*session.Session, error)

	// PauseTimer pauses a running timer.
	PauseTimer(ctx context.Context, sessionID, name string) (*session.Session, error)

	// ResumeTimer resumes a paused timer.
	ResumeTimer(ctx context.Context, sessionID, name string) (*session.Session, error)

	// AdjustTimer overrides a timer's remaining time; the change is audited.
	AdjustTimer(ctx context.Context, req AdjustTimerRequest) (*session.Session, error)

	// StopTimer deactivates a timer.
	StopTimer(ctx context.Context, sessionID, name string) (*session.Session, error)

	// AddTimer registers an additional timer and returns its generated ID.
	AddTimer(ctx context.Context, req AddTimerRequest) (*AddTimerResponse, error)

	// RemoveTimer deletes an additional timer.
	RemoveTimer(ctx context.Context, sessionID, timerID string) (*session.Session, error)

	// ReadTimers returns a reading of every timer.
	ReadTimers(ctx context.Context, sessionID string) ([]timer.NamedReading, error)
}

// CreateSessionRequest contains parameters for creating a session.
type CreateSessionRequest struct {
	CommitteeID string
	Mode        debate.Mode
	Settings    debate.SettingsInput
}

// SessionFilters contains filter options for listing sessions.
type SessionFilters struct {
	CommitteeID string
	Status      string
	Limit       int
}

// MarkAttendanceRequest contains parameters for marking attendance.
type MarkAttendanceRequest struct {
	SessionID string
	Country   string
	Status    attendance.Status
}

// ChangeModeRequest contains parameters for a debate mode change.
type ChangeModeRequest struct {
	SessionID string
	Mode      debate.Mode
	Settings  debate.SettingsInput
}

// NextSpeakerResponse contains the result of advancing the speaker list.
type NextSpeakerResponse struct {
	Speaker *speakers.Entry
	Session *session.Session
}

// StartTimerRequest contains parameters for starting a timer.
type StartTimerRequest struct {
	SessionID string
	Name      string
	Duration  int
	Meta      timer.Meta
}

// AdjustTimerRequest contains parameters for a timer correction.
type AdjustTimerRequest struct {
	SessionID    string
	Name         string
	NewRemaining int
	Reason       string
}

// AddTimerRequest contains parameters for adding an additional timer.
type AddTimerRequest struct {
	SessionID string
	Duration  int
	Meta      timer.Meta
}

// AddTimerResponse contains the result of adding a timer.
type AddTimerResponse struct {
	TimerID string
	Session *session.Session
}
