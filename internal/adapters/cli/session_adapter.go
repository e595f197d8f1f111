package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/presidium/internal/core/session"
	"github.com/example/presidium/internal/ports/primary"
)

// SessionAdapter is a thin adapter that translates CLI operations to SessionService calls.
// It depends only on the SessionService interface, enabling easy testing with mocks.
type SessionAdapter struct {
	service primary.SessionService
	out     io.Writer
}

// NewSessionAdapter creates a new SessionAdapter with the given service.
func NewSessionAdapter(service primary.SessionService, out io.Writer) *SessionAdapter {
	return &SessionAdapter{
		service: service,
		out:     out,
	}
}

// Create creates a session and prints its number and roster size.
func (a *SessionAdapter) Create(ctx context.Context, req primary.CreateSessionRequest) (*session.Session, error) {
	sess, err := a.service.CreateSession(ctx, req)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "✓ Created session %s (#%d) for %s\n", sess.ID, sess.Number, sess.CommitteeID)
	fmt.Fprintf(a.out, "  Mode:   %s\n", sess.CurrentMode)
	fmt.Fprintf(a.out, "  Roster: %d countries\n", sess.Quorum.Total)
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Next steps:")
	fmt.Fprintf(a.out, "  presidium session start %s\n", sess.ID)
	return sess, nil
}

// Start activates a session.
func (a *SessionAdapter) Start(ctx context.Context, sessionID string, duration int) (*session.Session, error) {
	sess, err := a.service.StartSession(ctx, sessionID, duration)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Session %s started\n", sess.ID)
	if t, ok := sess.Timers.Get("session"); ok {
		fmt.Fprintf(a.out, "  Session timer: %s\n", FormatSeconds(t.TotalDuration))
	}
	return sess, nil
}

// Pause pauses a session and its running timers.
func (a *SessionAdapter) Pause(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, err := a.service.PauseSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Session %s paused\n", sess.ID)
	if len(sess.PausedTimers) > 0 {
		fmt.Fprintf(a.out, "  Paused timers: %v\n", sess.PausedTimers)
	}
	return sess, nil
}

// Resume resumes a paused session.
func (a *SessionAdapter) Resume(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, err := a.service.ResumeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Session %s resumed\n", sess.ID)
	return sess, nil
}

// Complete ends a session.
func (a *SessionAdapter) Complete(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, err := a.service.CompleteSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Session %s completed\n", sess.ID)
	return sess, nil
}

// Show displays a session with attendance, speakers and timers.
func (a *SessionAdapter) Show(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, err := a.service.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	readings, err := a.service.ReadTimers(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "\nSession: %s (#%d)\n", sess.ID, sess.Number)
	fmt.Fprintf(a.out, "Committee: %s\n", sess.CommitteeID)
	fmt.Fprintf(a.out, "Status:    %s\n", sessionStatus(sess.Status))
	fmt.Fprintf(a.out, "Mode:      %s", sess.CurrentMode)
	if sess.ModeSettings.Topic != "" {
		fmt.Fprintf(a.out, " (%s)", sess.ModeSettings.Topic)
	}
	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "Quorum:    %s\n", quorumLine(sess.Quorum))
	if sess.RollCall.IsActive {
		fmt.Fprintf(a.out, "Roll call: %s (%d responses)\n", warnColor.Sprint("in progress"), len(sess.RollCall.Responses))
	}
	fmt.Fprintln(a.out)

	writeSpeakers(a.out, sess.SpeakerLists, sess.CurrentSpeaker)
	fmt.Fprintln(a.out)
	writeTimers(a.out, readings)
	fmt.Fprintln(a.out)
	return sess, nil
}

// List lists sessions.
func (a *SessionAdapter) List(ctx context.Context, filters primary.SessionFilters) ([]*session.Session, error) {
	sessions, err := a.service.ListSessions(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(a.out, "No sessions found.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Create one:")
		fmt.Fprintln(a.out, "  presidium session create --committee COM-001")
		return sessions, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMMITTEE\t#\tSTATUS\tMODE\tQUORUM")
	fmt.Fprintln(w, "--\t---------\t-\t------\t----\t------")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%d/%d\n",
			s.ID, s.CommitteeID, s.Number, sessionStatus(s.Status), s.CurrentMode, s.Quorum.Present, s.Quorum.Required)
	}
	w.Flush()
	return sessions, nil
}

// StartRollCall opens a roll call.
func (a *SessionAdapter) StartRollCall(ctx context.Context, sessionID string, timeLimit int) (*session.Session, error) {
	sess, err := a.service.StartRollCall(ctx, sessionID, timeLimit)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Roll call started in %s\n", sess.ID)
	if timeLimit > 0 {
		fmt.Fprintf(a.out, "  Time limit: %s\n", FormatSeconds(timeLimit))
	}
	return sess, nil
}

// Mark records a country's attendance.
func (a *SessionAdapter) Mark(ctx context.Context, req primary.MarkAttendanceRequest) (*session.Session, error) {
	sess, err := a.service.MarkAttendance(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ %s marked %s\n", req.Country, attendanceStatus(req.Status))
	fmt.Fprintf(a.out, "  Quorum: %s\n", quorumLine(sess.Quorum))
	return sess, nil
}

// EndRollCall closes the roll call and prints the resulting attendance.
func (a *SessionAdapter) EndRollCall(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, err := a.service.EndRollCall(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "✓ Roll call ended in %s\n", sess.ID)
	fmt.Fprintf(a.out, "  Quorum: %s\n", quorumLine(sess.Quorum))
	fmt.Fprintln(a.out)

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "COUNTRY\tSTATUS")
	for _, r := range sess.Attendance {
		fmt.Fprintf(w, "%s\t%s\n", r.Country, attendanceStatus(r.Status))
	}
	w.Flush()
	return sess, nil
}

// ChangeMode switches the debate mode.
func (a *SessionAdapter) ChangeMode(ctx context.Context, req primary.ChangeModeRequest) (*session.Session, error) {
	sess, err := a.service.ChangeMode(ctx, req)
	if err != nil {
		return nil, err
	}
	s := sess.ModeSettings
	fmt.Fprintf(a.out, "✓ Mode changed to %s\n", sess.CurrentMode)
	if s.SpeechTime > 0 {
		fmt.Fprintf(a.out, "  Speech time: %s\n", FormatSeconds(s.SpeechTime))
	}
	if s.TotalTime > 0 {
		fmt.Fprintf(a.out, "  Total time:  %s\n", FormatSeconds(s.TotalTime))
	}
	if s.Topic != "" {
		fmt.Fprintf(a.out, "  Topic:       %s\n", s.Topic)
	}
	return sess, nil
}

// Speakers prints the speaker lists.
func (a *SessionAdapter) Speakers(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, err := a.service.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	writeSpeakers(a.out, sess.SpeakerLists, sess.CurrentSpeaker)
	return sess, nil
}

// Next gives the floor to the next speaker.
func (a *SessionAdapter) Next(ctx context.Context, sessionID string) (*primary.NextSpeakerResponse, error) {
	resp, err := a.service.NextSpeaker(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	a.printFloor(resp.Session)
	return resp, nil
}

// Set gives the floor to a specific country.
func (a *SessionAdapter) Set(ctx context.Context, sessionID, country string) (*session.Session, error) {
	sess, err := a.service.SetCurrentSpeaker(ctx, sessionID, country)
	if err != nil {
		return nil, err
	}
	a.printFloor(sess)
	return sess, nil
}

// Clear yields the floor.
func (a *SessionAdapter) Clear(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, err := a.service.ClearCurrentSpeaker(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(a.out, "✓ Floor cleared")
	return sess, nil
}

// MoveToEnd sends a country to the end of the list.
func (a *SessionAdapter) MoveToEnd(ctx context.Context, sessionID, country string) (*session.Session, error) {
	sess, err := a.service.MoveToEnd(ctx, sessionID, country)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ %s moved to the end of the speaker list\n", country)
	return sess, nil
}

// Spoken flags a country as having spoken.
func (a *SessionAdapter) Spoken(ctx context.Context, sessionID, country string) (*session.Session, error) {
	sess, err := a.service.MarkSpoken(ctx, sessionID, country)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ %s marked as spoken\n", country)
	return sess, nil
}

func (a *SessionAdapter) printFloor(sess *session.Session) {
	if sess.CurrentSpeaker == nil {
		return
	}
	fmt.Fprintf(a.out, "✓ %s has the floor\n", focusColor.Sprint(sess.CurrentSpeaker.Country))
	if t, ok := sess.Timers.Get("speaker"); ok {
		fmt.Fprintf(a.out, "  Speaker timer: %s\n", FormatSeconds(t.TotalDuration))
	}
}

