package timer

import (
	"errors"
	"testing"

	"github.com/example/presidium/internal/core/procerr"
)

func TestSetGetAndRead(t *testing.T) {
	s := NewSet()
	speaker, _ := Start(60, Meta{Country: "Kenya"}, t0)
	if err := s.Put("speaker", speaker); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if r := s.Read("speaker", at(10)); r == nil || r.RemainingTime != 50 {
		t.Errorf("Read(speaker) = %+v, want 50 remaining", r)
	}
	if r := s.Read("qa", at(10)); r != nil {
		t.Errorf("Read(qa) = %+v, want nil for unset slot", r)
	}
	if r := s.Read("no-such-timer", at(10)); r != nil {
		t.Errorf("Read(unknown) = %+v, want nil", r)
	}
}

func TestSetAdditionalTimers(t *testing.T) {
	s := NewSet()
	if err := s.Add("caucus-1", New(300, Meta{Purpose: "drafting"})); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add("caucus-1", New(10, Meta{})); !errors.Is(err, procerr.ErrInvalidArgument) {
		t.Errorf("duplicate Add err = %v, want INVALID_ARGUMENT", err)
	}
	if err := s.Add("debate", New(10, Meta{})); !errors.Is(err, procerr.ErrInvalidArgument) {
		t.Errorf("reserved Add err = %v, want INVALID_ARGUMENT", err)
	}

	started, _ := Start(300, Meta{Purpose: "drafting"}, t0)
	if err := s.Put("caucus-1", started); err != nil {
		t.Fatalf("Put additional: %v", err)
	}
	if err := s.Put("caucus-2", started); !errors.Is(err, procerr.ErrNotFound) {
		t.Errorf("Put unknown err = %v, want NOT_FOUND", err)
	}

	got, ok := s.Get("caucus-1")
	if !ok || !got.IsActive || got.ID != "caucus-1" {
		t.Errorf("Get(caucus-1) = %+v, %v", got, ok)
	}

	if err := s.Remove("caucus-1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Remove("caucus-1"); !errors.Is(err, procerr.ErrNotFound) {
		t.Errorf("second Remove err = %v, want NOT_FOUND", err)
	}
}

func TestSetReadAllOrder(t *testing.T) {
	s := NewSet()
	_ = s.Put("qa", New(30, Meta{}))
	_ = s.Put("session", New(3600, Meta{}))
	_ = s.Add("extra", New(5, Meta{}))

	readings := s.ReadAll(t0)
	var names []string
	for _, r := range readings {
		names = append(names, r.Name)
	}
	want := []string{"session", "qa", "extra"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestSetCloneIsDeep(t *testing.T) {
	s := NewSet()
	_ = s.Put("session", New(60, Meta{}))
	_ = s.Add("x", New(5, Meta{}))

	c := s.Clone()
	_ = c.Put("session", New(1, Meta{}))
	c.Additional[0].TotalDuration = 99

	if got, _ := s.Get("session"); got.TotalDuration != 60 {
		t.Errorf("original slot mutated: %d", got.TotalDuration)
	}
	if s.Additional[0].TotalDuration != 5 {
		t.Errorf("original additional mutated: %d", s.Additional[0].TotalDuration)
	}
}

func TestStopAll(t *testing.T) {
	s := NewSet()
	a, _ := Start(60, Meta{}, t0)
	b, _ := Start(60, Meta{}, t0)
	_ = s.Put("session", a)
	_ = s.Add("x", b)

	s.StopAll(at(10))
	for _, nr := range s.ReadAll(at(100)) {
		if nr.Reading.IsActive {
			t.Errorf("%s still active", nr.Name)
		}
		if nr.Reading.RemainingTime != 50 {
			t.Errorf("%s remaining = %d, want 50", nr.Name, nr.Reading.RemainingTime)
		}
	}
}
