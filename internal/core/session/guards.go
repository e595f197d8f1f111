// Package session contains the pure business logic for committee sessions.
// This is part of the Functional Core - no I/O, only pure functions.
package session

import (
	"fmt"

	"github.com/example/presidium/internal/core/procerr"
)

// Status represents the possible states of a session.
type Status string

const (
	StatusInactive  Status = "inactive"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// IsLive reports whether the status blocks another session from starting.
func (s Status) IsLive() bool {
	return s == StatusActive || s == StatusPaused
}

// StartContext provides context for session start guards.
// LiveSessionID is the committee's current active/paused session, if any.
type StartContext struct {
	SessionID     string
	Status        Status
	LiveSessionID string
}

// StatusTransitionContext provides context for pause/resume/complete guards.
type StatusTransitionContext struct {
	SessionID string
	Status    Status
}

// CanStartSession evaluates whether a session can start.
// Rules: only inactive sessions start; at most one live session per committee.
func CanStartSession(ctx StartContext) procerr.GuardResult {
	if ctx.Status != StatusInactive {
		return procerr.Deny(procerr.CodeInvalidState,
			fmt.Sprintf("can only start inactive sessions (current status: %s)", ctx.Status),
			map[string]string{"current_state": string(ctx.Status), "required_state": string(StatusInactive)})
	}
	if ctx.LiveSessionID != "" && ctx.LiveSessionID != ctx.SessionID {
		return procerr.Deny(procerr.CodeInvalidState,
			fmt.Sprintf("committee already has a live session %s", ctx.LiveSessionID),
			map[string]string{"current_state": string(ctx.Status), "blocking": ctx.LiveSessionID})
	}
	return procerr.Allow()
}

// CanPauseSession evaluates whether a session can be paused.
// Rule: only active sessions can be paused.
func CanPauseSession(ctx StatusTransitionContext) procerr.GuardResult {
	if ctx.Status != StatusActive {
		return procerr.Deny(procerr.CodeInvalidState,
			fmt.Sprintf("can only pause active sessions (current status: %s)", ctx.Status),
			map[string]string{"current_state": string(ctx.Status), "required_state": string(StatusActive)})
	}
	return procerr.Allow()
}

// CanResumeSession evaluates whether a session can be resumed.
// Rule: only paused sessions can be resumed.
func CanResumeSession(ctx StatusTransitionContext) procerr.GuardResult {
	if ctx.Status != StatusPaused {
		return procerr.Deny(procerr.CodeInvalidState,
			fmt.Sprintf("can only resume paused sessions (current status: %s)", ctx.Status),
			map[string]string{"current_state": string(ctx.Status), "required_state": string(StatusPaused)})
	}
	return procerr.Allow()
}

// CanCompleteSession evaluates whether a session can be completed.
// Rule: only live (active or paused) sessions can be completed.
func CanCompleteSession(ctx StatusTransitionContext) procerr.GuardResult {
	if !ctx.Status.IsLive() {
		return procerr.Deny(procerr.CodeInvalidState,
			fmt.Sprintf("can only complete active or paused sessions (current status: %s)", ctx.Status),
			map[string]string{"current_state": string(ctx.Status), "required_state": "active|paused"})
	}
	return procerr.Allow()
}

// CanMutateSession evaluates whether procedural state may still change.
// Rule: completed sessions are immutable.
func CanMutateSession(ctx StatusTransitionContext) procerr.GuardResult {
	if ctx.Status == StatusCompleted {
		return procerr.Deny(procerr.CodeInvalidState,
			fmt.Sprintf("session %s is completed", ctx.SessionID),
			map[string]string{"current_state": string(ctx.Status)})
	}
	return procerr.Allow()
}
