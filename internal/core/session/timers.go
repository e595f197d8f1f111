package session

import (
	"strconv"
	"time"

	"github.com/example/presidium/internal/core/effects"
	"github.com/example/presidium/internal/core/procerr"
	"github.com/example/presidium/internal/core/timer"
)

// StartTimer (re)starts the named timer with duration seconds.
func (s *Session) StartTimer(name string, duration int, meta timer.Meta, actor string, now time.Time) ([]effects.Effect, error) {
	if err := s.ensureMutable(); err != nil {
		return nil, err
	}
	if _, isSlot := timer.ParseSlot(name); !isSlot {
		if _, ok := s.Timers.Get(name); !ok {
			return nil, procerr.NotFound("timer", name)
		}
	}
	t, err := timer.Start(duration, meta, now)
	if err != nil {
		return nil, err
	}
	return s.putTimer(name, t, "start", actor, now)
}

// PauseTimer freezes the named timer.
func (s *Session) PauseTimer(name, actor string, now time.Time) ([]effects.Effect, error) {
	t, err := s.mutableTimer(name)
	if err != nil {
		return nil, err
	}
	t, err = timer.Pause(t, now)
	if err != nil {
		return nil, err
	}
	return s.putTimer(name, t, "pause", actor, now)
}

// ResumeTimer restarts the countdown of a paused timer.
func (s *Session) ResumeTimer(name, actor string, now time.Time) ([]effects.Effect, error) {
	t, err := s.mutableTimer(name)
	if err != nil {
		return nil, err
	}
	t, err = timer.Resume(t, now)
	if err != nil {
		return nil, err
	}
	effs, err := s.putTimer(name, t, "resume", actor, now)
	if err != nil {
		return nil, err
	}
	s.PausedTimers = without(s.PausedTimers, name)
	return effs, nil
}

// AdjustTimer overrides the remaining time of the named timer. The change is
// audited with actor and reason.
func (s *Session) AdjustTimer(name string, newRemaining int, reason, actor string, now time.Time) ([]effects.Effect, error) {
	t, err := s.mutableTimer(name)
	if err != nil {
		return nil, err
	}
	before := timer.Read(&t, now).RemainingTime
	t, err = timer.Adjust(t, newRemaining, now)
	if err != nil {
		return nil, err
	}
	effs, err := s.putTimer(name, t, "adjust", actor, now)
	if err != nil {
		return nil, err
	}
	return append(effs, effects.AuditEffect{
		EntityType: "timer",
		EntityID:   s.ID + "/" + name,
		Action:     "adjust",
		FieldName:  "remainingTime",
		OldValue:   strconv.Itoa(before),
		NewValue:   strconv.Itoa(newRemaining),
		Reason:     reason,
	}), nil
}

// StopTimer deactivates the named timer, freezing its remaining time.
func (s *Session) StopTimer(name, actor string, now time.Time) ([]effects.Effect, error) {
	t, err := s.mutableTimer(name)
	if err != nil {
		return nil, err
	}
	effs, err := s.putTimer(name, timer.Stop(t, now), "stop", actor, now)
	if err != nil {
		return nil, err
	}
	s.PausedTimers = without(s.PausedTimers, name)
	return effs, nil
}

// AddTimer registers an additional, not yet running timer under id.
func (s *Session) AddTimer(id string, duration int, meta timer.Meta, actor string, now time.Time) ([]effects.Effect, error) {
	if err := s.ensureMutable(); err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, procerr.New(procerr.CodeInvalidArgument, "timer duration must be positive (got %d)", duration)
	}
	timers := s.Timers.Clone()
	if err := timers.Add(id, timer.New(duration, meta)); err != nil {
		return nil, err
	}
	s.Timers = timers
	return []effects.Effect{s.timerEvent(id, "add", actor, now)}, nil
}

// RemoveTimer deletes an additional timer.
func (s *Session) RemoveTimer(id, actor string, now time.Time) ([]effects.Effect, error) {
	if err := s.ensureMutable(); err != nil {
		return nil, err
	}
	if _, isSlot := timer.ParseSlot(id); isSlot {
		return nil, procerr.New(procerr.CodeInvalidArgument, "cannot remove fixed timer %s", id)
	}
	timers := s.Timers.Clone()
	if err := timers.Remove(id); err != nil {
		return nil, err
	}
	s.Timers = timers
	s.PausedTimers = without(s.PausedTimers, id)
	return []effects.Effect{s.timerEvent(id, "remove", actor, now)}, nil
}

func (s *Session) mutableTimer(name string) (timer.Timer, error) {
	if err := s.ensureMutable(); err != nil {
		return timer.Timer{}, err
	}
	t, ok := s.Timers.Get(name)
	if !ok {
		return timer.Timer{}, procerr.NotFound("timer", name)
	}
	return t, nil
}

func (s *Session) putTimer(name string, t timer.Timer, action, actor string, now time.Time) ([]effects.Effect, error) {
	timers := s.Timers.Clone()
	if err := timers.Put(name, t); err != nil {
		return nil, err
	}
	s.Timers = timers
	return []effects.Effect{s.timerEvent(name, action, actor, now)}, nil
}

func (s *Session) timerEvent(name, action, actor string, now time.Time) effects.EventEffect {
	return s.event(EventTimerUpdated, map[string]any{
		"timer":     name,
		"action":    action,
		"reading":   s.Timers.Read(name, now),
		"updatedBy": actor,
	})
}

func without(names []string, name string) []string {
	var out []string
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
