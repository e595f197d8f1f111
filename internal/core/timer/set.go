package timer

import (
	"strconv"
	"time"

	"github.com/example/presidium/internal/core/procerr"
)

// Slot names one of the fixed session timers.
type Slot string

const (
	SlotSession Slot = "session"
	SlotSpeaker Slot = "speaker"
	SlotDebate  Slot = "debate"
	SlotQA      Slot = "qa"
)

// Slots lists the fixed slots in display order.
var Slots = []Slot{SlotSession, SlotSpeaker, SlotDebate, SlotQA}

// ParseSlot reports whether name is one of the fixed slots.
func ParseSlot(name string) (Slot, bool) {
	for _, s := range Slots {
		if string(s) == name {
			return s, true
		}
	}
	return "", false
}

// Set holds the named slots plus an open-ended list of additional timers.
type Set struct {
	Slots      map[Slot]Timer `json:"slots"`
	Additional []Timer        `json:"additional"`
}

// NamedReading pairs a reading with the name it is addressed by.
type NamedReading struct {
	Name    string   `json:"name"`
	Reading *Reading `json:"reading"`
}

// NewSet returns an empty timer set.
func NewSet() Set {
	return Set{Slots: make(map[Slot]Timer)}
}

// Clone returns a deep copy of the set.
func (s Set) Clone() Set {
	out := Set{Slots: make(map[Slot]Timer, len(s.Slots))}
	for k, v := range s.Slots {
		out.Slots[k] = v
	}
	out.Additional = append([]Timer(nil), s.Additional...)
	return out
}

// Get returns the timer addressed by name: a slot name or an additional id.
func (s Set) Get(name string) (Timer, bool) {
	if slot, ok := ParseSlot(name); ok {
		t, found := s.Slots[slot]
		return t, found
	}
	for _, t := range s.Additional {
		if t.ID == name {
			return t, true
		}
	}
	return Timer{}, false
}

// Read returns the reading for name, or nil when no such timer exists.
func (s Set) Read(name string, now time.Time) *Reading {
	t, ok := s.Get(name)
	if !ok {
		return nil
	}
	return Read(&t, now)
}

// Put stores t under name. Slots are always addressable; additional timers
// must already exist.
func (s *Set) Put(name string, t Timer) error {
	if slot, ok := ParseSlot(name); ok {
		if s.Slots == nil {
			s.Slots = make(map[Slot]Timer)
		}
		s.Slots[slot] = t
		return nil
	}
	for i := range s.Additional {
		if s.Additional[i].ID == name {
			t.ID = name
			s.Additional[i] = t
			return nil
		}
	}
	return procerr.NotFound("timer", name)
}

// Clear removes a fixed slot.
func (s *Set) Clear(slot Slot) {
	delete(s.Slots, slot)
}

// Add appends an additional timer under id.
func (s *Set) Add(id string, t Timer) error {
	if _, ok := ParseSlot(id); ok {
		return procerr.New(procerr.CodeInvalidArgument, "timer id %q is reserved", id)
	}
	if _, exists := s.Get(id); exists {
		return procerr.New(procerr.CodeInvalidArgument, "timer %s already exists", id)
	}
	t.ID = id
	s.Additional = append(s.Additional, t)
	return nil
}

// Remove deletes an additional timer.
func (s *Set) Remove(id string) error {
	for i := range s.Additional {
		if s.Additional[i].ID == id {
			s.Additional = append(s.Additional[:i], s.Additional[i+1:]...)
			return nil
		}
	}
	return procerr.NotFound("timer", id)
}

// Names returns every addressable timer name in display order.
func (s Set) Names() []string {
	var names []string
	for _, slot := range Slots {
		if _, ok := s.Slots[slot]; ok {
			names = append(names, string(slot))
		}
	}
	for _, t := range s.Additional {
		names = append(names, t.ID)
	}
	return names
}

// ReadAll returns a reading for every timer in display order.
func (s Set) ReadAll(now time.Time) []NamedReading {
	names := s.Names()
	out := make([]NamedReading, 0, len(names))
	for _, name := range names {
		out = append(out, NamedReading{Name: name, Reading: s.Read(name, now)})
	}
	return out
}

// StopAll stops every running or paused timer.
func (s *Set) StopAll(now time.Time) {
	for slot, t := range s.Slots {
		s.Slots[slot] = Stop(t, now)
	}
	for i := range s.Additional {
		s.Additional[i] = Stop(s.Additional[i], now)
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
