// Package timer contains the pure business logic for procedural countdowns.
// This is part of the Functional Core - no I/O, only pure functions.
//
// Remaining time is never ticked down by a background loop. A running timer
// stores the countdown baseline (RemainingTime) and the wall-clock instant
// that baseline was taken (StartedAt); every read derives the live value from
// those fields and the caller-supplied now. Missed ticks and process restarts
// therefore cannot introduce drift.
package timer

import (
	"math"
	"time"

	"github.com/example/presidium/internal/core/procerr"
)

// Meta holds the descriptive fields attached to a timer at start.
type Meta struct {
	Country    string
	Topic      string
	Purpose    string
	DebateType string
}

// Timer is a countdown record. Durations are in seconds.
type Timer struct {
	ID            string  `json:"id,omitempty"`
	TotalDuration int     `json:"totalDuration"`
	RemainingTime float64 `json:"remainingTime"`
	IsActive      bool    `json:"isActive"`
	IsPaused      bool    `json:"isPaused"`
	// StartedAt is the wall-clock instant of the last start or resume.
	StartedAt *time.Time `json:"startedAt,omitempty"`
	PausedAt  *time.Time `json:"pausedAt,omitempty"`
	// AccumulatedPause is the total number of seconds spent paused.
	AccumulatedPause float64 `json:"accumulatedPause"`

	Country    string `json:"country,omitempty"`
	Topic      string `json:"topic,omitempty"`
	Purpose    string `json:"purpose,omitempty"`
	DebateType string `json:"debateType,omitempty"`
}

// Reading is the derived, read-time view of a timer.
type Reading struct {
	ID               string     `json:"id,omitempty"`
	TotalDuration    int        `json:"totalDuration"`
	RemainingTime    int        `json:"remainingTime"`
	Elapsed          int        `json:"elapsed"`
	IsActive         bool       `json:"isActive"`
	IsPaused         bool       `json:"isPaused"`
	Expired          bool       `json:"expired"`
	StartedAt        *time.Time `json:"startedAt,omitempty"`
	AccumulatedPause int        `json:"accumulatedPause"`
	Country          string     `json:"country,omitempty"`
	Topic            string     `json:"topic,omitempty"`
	Purpose          string     `json:"purpose,omitempty"`
	DebateType       string     `json:"debateType,omitempty"`
}

// New returns an initialized but not running timer.
func New(duration int, meta Meta) Timer {
	return Timer{
		TotalDuration: duration,
		RemainingTime: float64(duration),
		Country:       meta.Country,
		Topic:         meta.Topic,
		Purpose:       meta.Purpose,
		DebateType:    meta.DebateType,
	}
}

// Start returns a running timer counting down from duration.
func Start(duration int, meta Meta, now time.Time) (Timer, error) {
	if duration <= 0 {
		return Timer{}, procerr.WithMetadata(procerr.CodeInvalidArgument,
			"timer duration must be positive",
			map[string]string{"duration": itoa(duration)})
	}
	t := New(duration, meta)
	started := now
	t.IsActive = true
	t.StartedAt = &started
	return t, nil
}

// Pause freezes the derived remaining time into the stored field.
// The timer stays active so a paused timer is distinguishable from one
// that was never started.
func Pause(t Timer, now time.Time) (Timer, error) {
	if !t.IsActive {
		return t, procerr.InvalidState("cannot pause a timer that is not running", stateOf(t), "running")
	}
	if t.IsPaused {
		return t, procerr.InvalidState("timer is already paused", stateOf(t), "running")
	}
	t.RemainingTime = remaining(t, now)
	paused := now
	t.IsPaused = true
	t.PausedAt = &paused
	return t, nil
}

// Resume restarts the countdown from the frozen remaining time. The pause
// interval is added to AccumulatedPause and the elapsed-time origin moves to
// now, so time spent paused never reduces the countdown.
func Resume(t Timer, now time.Time) (Timer, error) {
	if !t.IsActive || !t.IsPaused {
		return t, procerr.InvalidState("can only resume a paused timer", stateOf(t), "paused")
	}
	if t.PausedAt != nil {
		if gap := now.Sub(*t.PausedAt).Seconds(); gap > 0 {
			t.AccumulatedPause += gap
		}
	}
	started := now
	t.IsPaused = false
	t.PausedAt = nil
	t.StartedAt = &started
	return t, nil
}

// Adjust overrides the remaining time. Permitted in any state; a running
// timer continues counting down from the new value.
func Adjust(t Timer, newRemaining int, now time.Time) (Timer, error) {
	if newRemaining < 0 {
		return t, procerr.WithMetadata(procerr.CodeInvalidArgument,
			"remaining time cannot be negative",
			map[string]string{"remaining": itoa(newRemaining)})
	}
	t.RemainingTime = float64(newRemaining)
	if t.IsActive && !t.IsPaused {
		started := now
		t.StartedAt = &started
	}
	return t, nil
}

// Stop deactivates a timer, keeping its remaining time.
func Stop(t Timer, now time.Time) Timer {
	if t.IsActive && !t.IsPaused {
		t.RemainingTime = remaining(t, now)
	}
	t.IsActive = false
	t.IsPaused = false
	t.PausedAt = nil
	return t
}

// Read derives the current view of t. It never mutates t and returns nil
// for a nil timer.
func Read(t *Timer, now time.Time) *Reading {
	if t == nil {
		return nil
	}
	rem := remaining(*t, now)
	secs := int(math.Ceil(rem - 1e-9))
	if secs < 0 {
		secs = 0
	}
	elapsed := t.TotalDuration - secs
	if elapsed < 0 {
		elapsed = 0
	}
	return &Reading{
		ID:               t.ID,
		TotalDuration:    t.TotalDuration,
		RemainingTime:    secs,
		Elapsed:          elapsed,
		IsActive:         t.IsActive,
		IsPaused:         t.IsPaused,
		Expired:          t.IsActive && secs == 0,
		StartedAt:        t.StartedAt,
		AccumulatedPause: int(math.Round(t.AccumulatedPause)),
		Country:          t.Country,
		Topic:            t.Topic,
		Purpose:          t.Purpose,
		DebateType:       t.DebateType,
	}
}

// IsRunning reports whether the timer is active and not paused.
func (t Timer) IsRunning() bool {
	return t.IsActive && !t.IsPaused
}

// remaining is authoritative from stored fields when paused or inactive and
// derived from the clock only while running.
func remaining(t Timer, now time.Time) float64 {
	if !t.IsRunning() || t.StartedAt == nil {
		return math.Max(0, t.RemainingTime)
	}
	elapsed := now.Sub(*t.StartedAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	return math.Max(0, t.RemainingTime-elapsed)
}

func stateOf(t Timer) string {
	switch {
	case t.IsPaused:
		return "paused"
	case t.IsActive:
		return "running"
	default:
		return "inactive"
	}
}
