package cli

import (
	"context"
	"fmt"

	"github.com/example/presidium/internal/core/session"
	"github.com/example/presidium/internal/ports/primary"
)

// StartTimer (re)starts a named timer.
func (a *SessionAdapter) StartTimer(ctx context.Context, req primary.StartTimerRequest) (*session.Session, error) {
	sess, err := a.service.StartTimer(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Timer %s started: %s\n", req.Name, FormatSeconds(req.Duration))
	return sess, nil
}

// PauseTimer pauses a named timer.
func (a *SessionAdapter) PauseTimer(ctx context.Context, sessionID, name string) (*session.Session, error) {
	sess, err := a.service.PauseTimer(ctx, sessionID, name)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Timer %s paused\n", name)
	return sess, nil
}

// ResumeTimer resumes a named timer.
func (a *SessionAdapter) ResumeTimer(ctx context.Context, sessionID, name string) (*session.Session, error) {
	sess, err := a.service.ResumeTimer(ctx, sessionID, name)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Timer %s resumed\n", name)
	return sess, nil
}

// AdjustTimer overrides a timer's remaining time.
func (a *SessionAdapter) AdjustTimer(ctx context.Context, req primary.AdjustTimerRequest) (*session.Session, error) {
	sess, err := a.service.AdjustTimer(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Timer %s set to %s\n", req.Name, FormatSeconds(req.NewRemaining))
	if req.Reason != "" {
		fmt.Fprintf(a.out, "  Reason: %s\n", req.Reason)
	}
	return sess, nil
}

// StopTimer deactivates a named timer.
func (a *SessionAdapter) StopTimer(ctx context.Context, sessionID, name string) (*session.Session, error) {
	sess, err := a.service.StopTimer(ctx, sessionID, name)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Timer %s stopped\n", name)
	return sess, nil
}

// AddTimer registers an additional timer.
func (a *SessionAdapter) AddTimer(ctx context.Context, req primary.AddTimerRequest) (*primary.AddTimerResponse, error) {
	resp, err := a.service.AddTimer(ctx, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Added timer %s (%s)\n", resp.TimerID, FormatSeconds(req.Duration))
	fmt.Fprintf(a.out, "  Start it with: presidium timer start %s %s %d\n", req.SessionID, resp.TimerID, req.Duration)
	return resp, nil
}

// RemoveTimer deletes an additional timer.
func (a *SessionAdapter) RemoveTimer(ctx context.Context, sessionID, timerID string) (*session.Session, error) {
	sess, err := a.service.RemoveTimer(ctx, sessionID, timerID)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Removed timer %s\n", timerID)
	return sess, nil
}

// Timers prints a reading of every timer.
func (a *SessionAdapter) Timers(ctx context.Context, sessionID string) error {
	readings, err := a.service.ReadTimers(ctx, sessionID)
	if err != nil {
		return err
	}
	writeTimers(a.out, readings)
	return nil
}
