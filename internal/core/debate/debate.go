// Package debate contains the pure business logic for debate modes.
// This is part of the Functional Core - no I/O, only pure functions.
//
// Every mode can be entered from every other mode; a transition only
// re-derives the mode settings and the debate/qa timer slots.
package debate

import (
	"time"

	"github.com/example/presidium/internal/core/procerr"
	"github.com/example/presidium/internal/core/timer"
)

// Mode is a procedural debate regime.
type Mode string

const (
	ModeFormal      Mode = "formal"
	ModeModerated   Mode = "moderated"
	ModeUnmoderated Mode = "unmoderated"
	ModeInformal    Mode = "informal"
)

// Modes lists every mode.
var Modes = []Mode{ModeFormal, ModeModerated, ModeUnmoderated, ModeInformal}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", procerr.New(procerr.CodeInvalidArgument,
		"invalid debate mode %q (want formal, moderated, unmoderated or informal)", s)
}

// Settings are the active mode parameters. Times are in seconds; zero means
// no limit.
type Settings struct {
	SpeechTime       int    `json:"speechTime"`
	TotalTime        int    `json:"totalTime"`
	Topic            string `json:"topic,omitempty"`
	QuestionsAllowed bool   `json:"questionsAllowed"`
}

// SettingsInput carries caller overrides; nil fields fall back to defaults.
type SettingsInput struct {
	SpeechTime       *int
	TotalTime        *int
	Topic            *string
	QuestionsAllowed *bool
}

// HistoryEntry is one append-only record of a mode change.
type HistoryEntry struct {
	Mode      Mode      `json:"mode"`
	Settings  Settings  `json:"settings"`
	StartedBy string    `json:"startedBy"`
	StartedAt time.Time `json:"startedAt"`
}

// Defaults returns the mode-specific default settings.
func Defaults(mode Mode) Settings {
	switch mode {
	case ModeModerated:
		return Settings{SpeechTime: 60, TotalTime: 600}
	case ModeUnmoderated:
		return Settings{TotalTime: 900}
	case ModeInformal:
		return Settings{TotalTime: 1200}
	default:
		return Settings{SpeechTime: 90, QuestionsAllowed: true}
	}
}

// Merge overlays in onto the defaults for mode.
func Merge(mode Mode, in SettingsInput) (Settings, error) {
	s := Defaults(mode)
	if in.SpeechTime != nil {
		if *in.SpeechTime < 0 {
			return Settings{}, procerr.New(procerr.CodeInvalidArgument, "speech time cannot be negative")
		}
		s.SpeechTime = *in.SpeechTime
	}
	if in.TotalTime != nil {
		if *in.TotalTime < 0 {
			return Settings{}, procerr.New(procerr.CodeInvalidArgument, "total time cannot be negative")
		}
		s.TotalTime = *in.TotalTime
	}
	if in.Topic != nil {
		s.Topic = *in.Topic
	}
	if in.QuestionsAllowed != nil {
		s.QuestionsAllowed = *in.QuestionsAllowed
	}
	return s, nil
}

// Transition is the outcome of a mode change.
type Transition struct {
	From     Mode
	To       Mode
	Settings Settings
	// Debate is the re-initialized debate timer, nil when the mode has no
	// total time.
	Debate *timer.Timer
	// QA is the re-initialized question timer, nil when questions are off.
	QA    *timer.Timer
	Entry HistoryEntry
}

// Change computes the transition from the current mode to newMode.
// The returned timers are initialized but not running.
func Change(from, newMode Mode, in SettingsInput, actor string, now time.Time) (Transition, error) {
	if _, err := ParseMode(string(newMode)); err != nil {
		return Transition{}, err
	}
	settings, err := Merge(newMode, in)
	if err != nil {
		return Transition{}, err
	}

	tr := Transition{
		From:     from,
		To:       newMode,
		Settings: settings,
		Entry: HistoryEntry{
			Mode:      newMode,
			Settings:  settings,
			StartedBy: actor,
			StartedAt: now,
		},
	}
	if settings.TotalTime > 0 {
		t := timer.New(settings.TotalTime, timer.Meta{
			Topic:      settings.Topic,
			Purpose:    "debate",
			DebateType: string(newMode),
		})
		tr.Debate = &t
	}
	if settings.QuestionsAllowed && settings.SpeechTime > 0 {
		t := timer.New(settings.SpeechTime, timer.Meta{
			Topic:   settings.Topic,
			Purpose: "questions",
		})
		tr.QA = &t
	}
	return tr, nil
}
