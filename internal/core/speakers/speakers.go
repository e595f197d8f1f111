// Package speakers contains the pure business logic for speaker queues.
// This is part of the Functional Core - no I/O, only pure functions.
package speakers

import (
	"time"

	"github.com/example/presidium/internal/core/procerr"
)

// Entry is one country's place in a speaker list.
type Entry struct {
	Country       string `json:"country"`
	Position      int    `json:"position"`
	HasSpoken     bool   `json:"hasSpoken"`
	HasMovedToEnd bool   `json:"hasMovedToEnd"`
	ArrivedLate   bool   `json:"arrivedLate"`
}

// Lists holds the ordered present and absent speaker lists.
// Positions in each list are always a dense 1..N sequence.
type Lists struct {
	Present []Entry `json:"present"`
	Absent  []Entry `json:"absent"`
}

// CurrentSpeaker is the country holding the floor.
type CurrentSpeaker struct {
	Country   string    `json:"country"`
	StartedAt time.Time `json:"startedAt"`
}

// Initialize builds fresh lists from an attendance snapshot.
func Initialize(present, absent []string) Lists {
	l := Lists{
		Present: make([]Entry, 0, len(present)),
		Absent:  make([]Entry, 0, len(absent)),
	}
	for _, c := range present {
		l.Present = append(l.Present, Entry{Country: c})
	}
	for _, c := range absent {
		l.Absent = append(l.Absent, Entry{Country: c})
	}
	renumber(l.Present)
	renumber(l.Absent)
	return l
}

// Clone returns a deep copy of the lists.
func (l Lists) Clone() Lists {
	return Lists{
		Present: cloneEntries(l.Present),
		Absent:  cloneEntries(l.Absent),
	}
}

// MoveToEndContext provides context for the move-to-end guard.
type MoveToEndContext struct {
	Country        string
	InPresentList  bool
	AlreadyMoved   bool
	CurrentSpeaker string
}

// CanMoveToEnd evaluates whether a country may move itself to the end.
// Rule: present-list members only, once per roll-call cycle, never while speaking.
func CanMoveToEnd(ctx MoveToEndContext) procerr.GuardResult {
	if !ctx.InPresentList {
		return procerr.Deny(procerr.CodeNotFound,
			ctx.Country+" is not in the present speaker list",
			map[string]string{"entity": "speaker", "id": ctx.Country})
	}
	if ctx.AlreadyMoved {
		return procerr.Deny(procerr.CodeInvalidState,
			ctx.Country+" already moved to end",
			map[string]string{"current_state": "moved_to_end", "blocking": ctx.Country})
	}
	if ctx.CurrentSpeaker != "" && ctx.CurrentSpeaker == ctx.Country {
		return procerr.Deny(procerr.CodeInvalidState,
			ctx.Country+" is speaking now",
			map[string]string{"current_state": "speaking", "blocking": ctx.Country})
	}
	return procerr.Allow()
}

// MoveToEnd moves country to the end of the present list, once.
func (l Lists) MoveToEnd(country, currentSpeaker string) (Lists, error) {
	idx := indexOf(l.Present, country)
	guardCtx := MoveToEndContext{
		Country:        country,
		InPresentList:  idx >= 0,
		CurrentSpeaker: currentSpeaker,
	}
	if idx >= 0 {
		guardCtx.AlreadyMoved = l.Present[idx].HasMovedToEnd
	}
	if err := CanMoveToEnd(guardCtx).Error(); err != nil {
		return l, err
	}

	out := l.Clone()
	entry := out.Present[idx]
	entry.HasMovedToEnd = true
	out.Present = append(out.Present[:idx], out.Present[idx+1:]...)
	out.Present = append(out.Present, entry)
	renumber(out.Present)
	return out, nil
}

// Next returns the first present entry that has not spoken, or nil when the
// list is exhausted.
func (l Lists) Next() *Entry {
	for i := range l.Present {
		if !l.Present[i].HasSpoken {
			e := l.Present[i]
			return &e
		}
	}
	return nil
}

// MarkSpoken flags country as having spoken. No-op when absent from the list.
func (l Lists) MarkSpoken(country string) Lists {
	idx := indexOf(l.Present, country)
	if idx < 0 {
		return l
	}
	out := l.Clone()
	out.Present[idx].HasSpoken = true
	return out
}

// Arrive moves country to the end of the present list. When late is true the
// entry is flagged as a late arrival. Existing present entries are unchanged.
func (l Lists) Arrive(country string, late bool) Lists {
	if indexOf(l.Present, country) >= 0 {
		return l
	}
	out := l.Clone()
	entry := Entry{Country: country, ArrivedLate: late}
	if idx := indexOf(out.Absent, country); idx >= 0 {
		out.Absent = append(out.Absent[:idx], out.Absent[idx+1:]...)
		renumber(out.Absent)
	}
	out.Present = append(out.Present, entry)
	renumber(out.Present)
	return out
}

// Depart moves country from the present list to the end of the absent list.
func (l Lists) Depart(country string) Lists {
	if indexOf(l.Absent, country) >= 0 {
		return l
	}
	out := l.Clone()
	if idx := indexOf(out.Present, country); idx >= 0 {
		out.Present = append(out.Present[:idx], out.Present[idx+1:]...)
		renumber(out.Present)
	}
	out.Absent = append(out.Absent, Entry{Country: country})
	renumber(out.Absent)
	return out
}

// Contains reports whether country is in the present list.
func (l Lists) Contains(country string) bool {
	return indexOf(l.Present, country) >= 0
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

func renumber(entries []Entry) {
	for i := range entries {
		entries[i].Position = i + 1
	}
}

func indexOf(entries []Entry, country string) int {
	for i, e := range entries {
		if e.Country == country {
			return i
		}
	}
	return -1
}
