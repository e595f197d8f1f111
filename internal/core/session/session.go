package session

import (
	"time"

	"github.com/example/presidium/internal/core/attendance"
	"github.com/example/presidium/internal/core/debate"
	"github.com/example/presidium/internal/core/effects"
	"github.com/example/presidium/internal/core/procerr"
	"github.com/example/presidium/internal/core/speakers"
	"github.com/example/presidium/internal/core/timer"
)

// DefaultDuration is the session timer length when none is given (3h).
const DefaultDuration = 3 * 60 * 60

// Event names emitted by session operations.
const (
	EventCreated            = "session-created"
	EventStarted            = "session-started"
	EventPaused             = "session-paused"
	EventResumed            = "session-resumed"
	EventCompleted          = "session-completed"
	EventRollCallStarted    = "roll-call-started"
	EventAttendanceUpdated  = "attendance-updated"
	EventRollCallEnded      = "roll-call-ended"
	EventSpeakerListUpdated = "speaker-list-updated"
	EventSpeakerChanged     = "speaker-changed"
	EventModeChanged        = "mode-changed"
	EventTimerUpdated       = "timer-updated"
)

const aggregateType = "session"

// Session is the per-committee procedural aggregate. Every method validates
// before it mutates: on error the receiver is left exactly as it was.
type Session struct {
	ID          string `json:"id"`
	CommitteeID string `json:"committeeId"`
	Number      int    `json:"number"`
	Status      Status `json:"status"`

	CurrentMode  debate.Mode           `json:"currentMode"`
	ModeSettings debate.Settings       `json:"modeSettings"`
	ModeHistory  []debate.HistoryEntry `json:"modeHistory"`

	Timers timer.Set `json:"timers"`
	// PausedTimers names the timers frozen by a session pause.
	PausedTimers []string `json:"pausedTimers,omitempty"`

	RollCall   attendance.RollCall `json:"rollCall"`
	Attendance []attendance.Record `json:"attendance"`
	Quorum     attendance.Quorum   `json:"quorum"`

	SpeakerLists   speakers.Lists           `json:"speakerLists"`
	CurrentSpeaker *speakers.CurrentSpeaker `json:"currentSpeaker,omitempty"`

	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// Version is the persisted revision used for optimistic concurrency.
	Version int `json:"-"`
}

// NewParams carries the inputs for creating a session.
type NewParams struct {
	ID          string
	CommitteeID string
	Number      int
	Countries   []string
	Mode        debate.Mode
	Settings    debate.SettingsInput
	CreatedBy   string
}

// New creates an inactive session with an all-absent roster.
func New(p NewParams, now time.Time) (*Session, []effects.Effect, error) {
	if p.ID == "" || p.CommitteeID == "" {
		return nil, nil, procerr.New(procerr.CodeInvalidArgument, "session id and committee id are required")
	}
	if p.Number <= 0 {
		return nil, nil, procerr.New(procerr.CodeInvalidArgument, "session number must be positive")
	}
	mode := p.Mode
	if mode == "" {
		mode = debate.ModeFormal
	}
	tr, err := debate.Change(mode, mode, p.Settings, p.CreatedBy, now)
	if err != nil {
		return nil, nil, err
	}

	roster := attendance.NewRoster(p.Countries)
	s := &Session{
		ID:           p.ID,
		CommitteeID:  p.CommitteeID,
		Number:       p.Number,
		Status:       StatusInactive,
		CurrentMode:  mode,
		ModeSettings: tr.Settings,
		ModeHistory:  []debate.HistoryEntry{tr.Entry},
		Timers:       timer.NewSet(),
		RollCall:     attendance.RollCall{Responses: []attendance.Response{}},
		Attendance:   roster,
		Quorum:       attendance.ComputeQuorum(roster),
		SpeakerLists: speakers.Initialize(nil, attendance.Countries(roster, attendance.StatusAbsent)),
		CreatedBy:    p.CreatedBy,
		CreatedAt:    now,
	}
	s.applyModeTimers(tr)

	return s, []effects.Effect{
		s.event(EventCreated, map[string]any{
			"number": s.Number,
			"mode":   string(s.CurrentMode),
			"total":  s.Quorum.Total,
		}),
	}, nil
}

// Start moves an inactive session to active and starts the session timer.
func (s *Session) Start(liveSessionID string, duration int, actor string, now time.Time) ([]effects.Effect, error) {
	if err := CanStartSession(StartContext{
		SessionID:     s.ID,
		Status:        s.Status,
		LiveSessionID: liveSessionID,
	}).Error(); err != nil {
		return nil, err
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	t, err := timer.Start(duration, timer.Meta{Purpose: "session"}, now)
	if err != nil {
		return nil, err
	}

	started := now
	s.Status = StatusActive
	s.StartedAt = &started
	s.Timers.Slots[timer.SlotSession] = t

	return []effects.Effect{
		s.event(EventStarted, map[string]any{
			"startedBy": actor,
			"duration":  duration,
			"quorum":    s.Quorum,
		}),
		effects.LogEffect{Level: "info", Message: "session started", Fields: map[string]any{
			"session_id": s.ID, "committee_id": s.CommitteeID, "actor": actor,
		}},
	}, nil
}

// Pause freezes the session and every running timer.
func (s *Session) Pause(actor string, now time.Time) ([]effects.Effect, error) {
	if err := CanPauseSession(StatusTransitionContext{SessionID: s.ID, Status: s.Status}).Error(); err != nil {
		return nil, err
	}

	var paused []string
	timers := s.Timers.Clone()
	for _, name := range timers.Names() {
		t, _ := timers.Get(name)
		if !t.IsRunning() {
			continue
		}
		t, err := timer.Pause(t, now)
		if err != nil {
			return nil, err
		}
		if err := timers.Put(name, t); err != nil {
			return nil, err
		}
		paused = append(paused, name)
	}

	s.Timers = timers
	s.PausedTimers = paused
	s.Status = StatusPaused

	return []effects.Effect{
		s.event(EventPaused, map[string]any{"pausedBy": actor, "pausedTimers": paused}),
	}, nil
}

// Resume reactivates a paused session and resumes the timers it froze.
func (s *Session) Resume(actor string, now time.Time) ([]effects.Effect, error) {
	if err := CanResumeSession(StatusTransitionContext{SessionID: s.ID, Status: s.Status}).Error(); err != nil {
		return nil, err
	}

	timers := s.Timers.Clone()
	var resumed []string
	for _, name := range s.PausedTimers {
		t, ok := timers.Get(name)
		// Timers removed or restarted while paused are left alone.
		if !ok || !t.IsActive || !t.IsPaused {
			continue
		}
		t, err := timer.Resume(t, now)
		if err != nil {
			return nil, err
		}
		if err := timers.Put(name, t); err != nil {
			return nil, err
		}
		resumed = append(resumed, name)
	}

	s.Timers = timers
	s.PausedTimers = nil
	s.Status = StatusActive

	return []effects.Effect{
		s.event(EventResumed, map[string]any{"resumedBy": actor, "resumedTimers": resumed}),
	}, nil
}

// Complete ends the session. Completed sessions are immutable.
func (s *Session) Complete(actor string, now time.Time) ([]effects.Effect, error) {
	if err := CanCompleteSession(StatusTransitionContext{SessionID: s.ID, Status: s.Status}).Error(); err != nil {
		return nil, err
	}

	timers := s.Timers.Clone()
	timers.StopAll(now)
	rc := s.RollCall
	if rc.IsActive {
		ended := now
		rc.IsActive = false
		rc.EndedAt = &ended
	}

	completed := now
	s.Timers = timers
	s.PausedTimers = nil
	s.RollCall = rc
	s.CurrentSpeaker = nil
	s.Status = StatusCompleted
	s.CompletedAt = &completed

	return []effects.Effect{
		s.event(EventCompleted, map[string]any{"completedBy": actor, "quorum": s.Quorum}),
		effects.LogEffect{Level: "info", Message: "session completed", Fields: map[string]any{
			"session_id": s.ID, "committee_id": s.CommitteeID, "actor": actor,
		}},
	}, nil
}

// StartRollCall opens a roll call.
func (s *Session) StartRollCall(actor string, timeLimit int, now time.Time) ([]effects.Effect, error) {
	if err := attendance.CanStartRollCall(attendance.StartRollCallContext{
		SessionID:     s.ID,
		SessionStatus: string(s.Status),
		AlreadyActive: s.RollCall.IsActive,
	}).Error(); err != nil {
		return nil, err
	}
	rc, err := attendance.StartRollCall(s.RollCall, actor, timeLimit, now)
	if err != nil {
		return nil, err
	}
	s.RollCall = rc

	return []effects.Effect{
		s.event(EventRollCallStarted, map[string]any{"startedBy": actor, "timeLimit": timeLimit}),
	}, nil
}

// MarkAttendance reclassifies a country and recomputes quorum. Outside a roll
// call the speaker lists follow the change immediately; a country arriving
// after a roll call has ended is appended as a late arrival.
func (s *Session) MarkAttendance(country string, status attendance.Status, actor string, now time.Time) ([]effects.Effect, error) {
	if err := s.ensureMutable(); err != nil {
		return nil, err
	}
	records, prev, err := attendance.Mark(s.Attendance, country, status, actor, now)
	if err != nil {
		return nil, err
	}

	lists := s.SpeakerLists
	listsChanged := false
	if s.RollCall.IsActive {
		s.RollCall = attendance.RecordResponse(s.RollCall, country, status, actor, now)
	} else if prev.IsPresent() != status.IsPresent() {
		if status.IsPresent() {
			lists = lists.Arrive(country, s.RollCall.EndedAt != nil)
		} else {
			lists = lists.Depart(country)
		}
		listsChanged = true
	}

	s.Attendance = records
	s.Quorum = attendance.ComputeQuorum(records)
	s.SpeakerLists = lists

	effs := []effects.Effect{
		s.event(EventAttendanceUpdated, map[string]any{
			"country":  country,
			"status":   string(status),
			"previous": string(prev),
			"markedBy": actor,
			"quorum":   s.Quorum,
		}),
	}
	if listsChanged {
		effs = append(effs, s.speakerListEvent())
	}
	return effs, nil
}

// EndRollCall closes the roll call, snapshots quorum and rebuilds the
// speaker lists from final attendance.
func (s *Session) EndRollCall(actor string, now time.Time) ([]effects.Effect, error) {
	if err := s.ensureMutable(); err != nil {
		return nil, err
	}
	rc, err := attendance.EndRollCall(s.RollCall, now)
	if err != nil {
		return nil, err
	}

	s.RollCall = rc
	s.Quorum = attendance.ComputeQuorum(s.Attendance)
	s.SpeakerLists = speakers.Initialize(
		attendance.Countries(s.Attendance, attendance.StatusPresent, attendance.StatusPresentAndVoting),
		attendance.Countries(s.Attendance, attendance.StatusAbsent),
	)
	s.CurrentSpeaker = nil

	return []effects.Effect{
		s.event(EventRollCallEnded, map[string]any{
			"endedBy":   actor,
			"responses": len(rc.Responses),
			"quorum":    s.Quorum,
		}),
		s.speakerListEvent(),
	}, nil
}

// ChangeMode switches the debate mode, re-initializing the debate and qa
// timers. Session and speaker timers are left untouched.
func (s *Session) ChangeMode(mode debate.Mode, in debate.SettingsInput, actor string, now time.Time) ([]effects.Effect, error) {
	if err := s.ensureMutable(); err != nil {
		return nil, err
	}
	tr, err := debate.Change(s.CurrentMode, mode, in, actor, now)
	if err != nil {
		return nil, err
	}

	s.CurrentMode = tr.To
	s.ModeSettings = tr.Settings
	s.ModeHistory = append(s.ModeHistory, tr.Entry)
	s.applyModeTimers(tr)

	return []effects.Effect{
		s.event(EventModeChanged, map[string]any{
			"from":      string(tr.From),
			"to":        string(tr.To),
			"settings":  tr.Settings,
			"changedBy": actor,
		}),
		effects.AuditEffect{
			EntityType: aggregateType,
			EntityID:   s.ID,
			Action:     "mode_change",
			FieldName:  "currentMode",
			OldValue:   string(tr.From),
			NewValue:   string(tr.To),
		},
	}, nil
}

// MoveToEnd sends country to the back of the present speaker list, once per
// roll-call cycle.
func (s *Session) MoveToEnd(country, actor string) ([]effects.Effect, error) {
	if err := s.ensureMutable(); err != nil {
		return nil, err
	}
	lists, err := s.SpeakerLists.MoveToEnd(country, s.currentSpeakerCountry())
	if err != nil {
		return nil, err
	}
	s.SpeakerLists = lists
	return []effects.Effect{s.speakerListEvent()}, nil
}

// MarkSpoken flags country as having spoken.
func (s *Session) MarkSpoken(country string) ([]effects.Effect, error) {
	if err := s.ensureMutable(); err != nil {
		return nil, err
	}
	s.SpeakerLists = s.SpeakerLists.MarkSpoken(country)
	return []effects.Effect{s.speakerListEvent()}, nil
}

// NextSpeaker returns the next entry that has not spoken, or nil.
func (s *Session) NextSpeaker() *speakers.Entry {
	return s.SpeakerLists.Next()
}

// SetCurrentSpeaker gives the floor to country and starts the speaker timer
// with the mode's speech time.
func (s *Session) SetCurrentSpeaker(country, actor string, now time.Time) ([]effects.Effect, error) {
	if err := s.ensureMutable(); err != nil {
		return nil, err
	}
	if !s.SpeakerLists.Contains(country) {
		return nil, procerr.NotFound("speaker", country)
	}

	timers := s.Timers.Clone()
	if s.ModeSettings.SpeechTime > 0 {
		t, err := timer.Start(s.ModeSettings.SpeechTime, timer.Meta{
			Country: country,
			Topic:   s.ModeSettings.Topic,
			Purpose: "speech",
		}, now)
		if err != nil {
			return nil, err
		}
		timers.Slots[timer.SlotSpeaker] = t
	} else {
		timers.Clear(timer.SlotSpeaker)
	}

	previous := s.currentSpeakerCountry()
	s.Timers = timers
	s.CurrentSpeaker = &speakers.CurrentSpeaker{Country: country, StartedAt: now}
	s.SpeakerLists = s.SpeakerLists.MarkSpoken(country)

	return []effects.Effect{
		s.event(EventSpeakerChanged, map[string]any{
			"country":    country,
			"previous":   previous,
			"speechTime": s.ModeSettings.SpeechTime,
			"setBy":      actor,
		}),
	}, nil
}

// AdvanceSpeaker gives the floor to the next speaker in the present list.
func (s *Session) AdvanceSpeaker(actor string, now time.Time) (*speakers.Entry, []effects.Effect, error) {
	if err := s.ensureMutable(); err != nil {
		return nil, nil, err
	}
	next := s.SpeakerLists.Next()
	if next == nil {
		return nil, nil, procerr.InvalidState("speaker list exhausted", "exhausted", "")
	}
	effs, err := s.SetCurrentSpeaker(next.Country, actor, now)
	if err != nil {
		return nil, nil, err
	}
	return next, effs, nil
}

// ClearCurrentSpeaker yields the floor and stops the speaker timer.
func (s *Session) ClearCurrentSpeaker(actor string, now time.Time) ([]effects.Effect, error) {
	if err := s.ensureMutable(); err != nil {
		return nil, err
	}
	if s.CurrentSpeaker == nil {
		return nil, procerr.InvalidState("no current speaker", "no_speaker", "speaking")
	}

	timers := s.Timers.Clone()
	if t, ok := timers.Slots[timer.SlotSpeaker]; ok {
		timers.Slots[timer.SlotSpeaker] = timer.Stop(t, now)
	}
	previous := s.CurrentSpeaker.Country
	s.Timers = timers
	s.CurrentSpeaker = nil

	return []effects.Effect{
		s.event(EventSpeakerChanged, map[string]any{"country": "", "previous": previous, "setBy": actor}),
	}, nil
}

// ReadTimer returns the reading for a named timer, or nil.
func (s *Session) ReadTimer(name string, now time.Time) *timer.Reading {
	return s.Timers.Read(name, now)
}

// ReadTimers returns readings for every timer.
func (s *Session) ReadTimers(now time.Time) []timer.NamedReading {
	return s.Timers.ReadAll(now)
}

func (s *Session) ensureMutable() error {
	return CanMutateSession(StatusTransitionContext{SessionID: s.ID, Status: s.Status}).Error()
}

func (s *Session) currentSpeakerCountry() string {
	if s.CurrentSpeaker == nil {
		return ""
	}
	return s.CurrentSpeaker.Country
}

func (s *Session) applyModeTimers(tr debate.Transition) {
	if tr.Debate != nil {
		s.Timers.Slots[timer.SlotDebate] = *tr.Debate
	} else {
		s.Timers.Clear(timer.SlotDebate)
	}
	if tr.QA != nil {
		s.Timers.Slots[timer.SlotQA] = *tr.QA
	} else {
		s.Timers.Clear(timer.SlotQA)
	}
}

func (s *Session) event(name string, payload map[string]any) effects.EventEffect {
	if payload == nil {
		payload = map[string]any{}
	}
	payload["sessionId"] = s.ID
	payload["committeeId"] = s.CommitteeID
	payload["status"] = string(s.Status)
	return effects.Event(name, aggregateType, s.ID, s.CommitteeID, payload)
}

func (s *Session) speakerListEvent() effects.EventEffect {
	return s.event(EventSpeakerListUpdated, map[string]any{
		"present": s.SpeakerLists.Present,
		"absent":  s.SpeakerLists.Absent,
	})
}
