package timer

import (
	"errors"
	"testing"
	"time"

	"github.com/example/presidium/internal/core/procerr"
)

var t0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func at(sec int) time.Time {
	return t0.Add(time.Duration(sec) * time.Second)
}

func mustStart(t *testing.T, d int) Timer {
	t.Helper()
	tm, err := Start(d, Meta{Country: "Chile"}, t0)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return tm
}

func TestStart(t *testing.T) {
	tm := mustStart(t, 90)
	if tm.TotalDuration != 90 || tm.RemainingTime != 90 {
		t.Errorf("durations = %d/%v, want 90/90", tm.TotalDuration, tm.RemainingTime)
	}
	if !tm.IsActive || tm.IsPaused {
		t.Errorf("flags = active:%v paused:%v", tm.IsActive, tm.IsPaused)
	}
	if tm.AccumulatedPause != 0 {
		t.Errorf("AccumulatedPause = %v, want 0", tm.AccumulatedPause)
	}
	if tm.Country != "Chile" {
		t.Errorf("Country = %q", tm.Country)
	}

	if _, err := Start(0, Meta{}, t0); !errors.Is(err, procerr.ErrInvalidArgument) {
		t.Errorf("Start(0) err = %v, want INVALID_ARGUMENT", err)
	}
}

func TestReadMonotonic(t *testing.T) {
	tm := mustStart(t, 90)
	for k := 0; k <= 120; k++ {
		// Extra reads in between must not change anything.
		_ = Read(&tm, at(k))
		got := Read(&tm, at(k)).RemainingTime
		want := 90 - k
		if want < 0 {
			want = 0
		}
		if got != want {
			t.Fatalf("k=%d: remaining = %d, want %d", k, got, want)
		}
	}
	if tm.RemainingTime != 90 {
		t.Errorf("Read mutated stored remaining time: %v", tm.RemainingTime)
	}
}

func TestReadExpired(t *testing.T) {
	tm := mustStart(t, 10)
	r := Read(&tm, at(15))
	if !r.Expired || r.RemainingTime != 0 {
		t.Errorf("reading = %+v, want expired with 0 remaining", r)
	}
	if r.Elapsed != 10 {
		t.Errorf("Elapsed = %d, want 10", r.Elapsed)
	}
}

func TestReadNil(t *testing.T) {
	if r := Read(nil, t0); r != nil {
		t.Errorf("Read(nil) = %+v, want nil", r)
	}
}

func TestPauseResumeAcrossGap(t *testing.T) {
	tm := mustStart(t, 90)
	if got := Read(&tm, at(30)).RemainingTime; got != 60 {
		t.Fatalf("remaining at 30s = %d, want 60", got)
	}

	tm, err := Pause(tm, at(30))
	if err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if !tm.IsActive || !tm.IsPaused {
		t.Fatalf("paused timer flags = active:%v paused:%v", tm.IsActive, tm.IsPaused)
	}
	if got := Read(&tm, at(300)).RemainingTime; got != 60 {
		t.Errorf("remaining while paused = %d, want 60", got)
	}

	tm, err = Resume(tm, at(530))
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if got := Read(&tm, at(530)).RemainingTime; got != 60 {
		t.Errorf("remaining right after resume = %d, want 60", got)
	}
	if got := Read(&tm, at(540)).RemainingTime; got != 50 {
		t.Errorf("remaining 10s after resume = %d, want 50", got)
	}
	if tm.AccumulatedPause != 500 {
		t.Errorf("AccumulatedPause = %v, want 500", tm.AccumulatedPause)
	}
}

func TestPauseResumeConservation(t *testing.T) {
	// Alternate running and paused intervals; only running time counts.
	tm := mustStart(t, 300)
	now := 0
	active := 0
	intervals := []struct{ run, pause int }{{7, 100}, {13, 1}, {40, 999}, {1, 3}, {29, 60}}
	for _, iv := range intervals {
		now += iv.run
		active += iv.run
		var err error
		if tm, err = Pause(tm, at(now)); err != nil {
			t.Fatalf("Pause: %v", err)
		}
		now += iv.pause
		if tm, err = Resume(tm, at(now)); err != nil {
			t.Fatalf("Resume: %v", err)
		}
	}
	if got, want := Read(&tm, at(now)).RemainingTime, 300-active; got != want {
		t.Errorf("remaining = %d, want %d", got, want)
	}
}

func TestPauseSubSecondDoesNotDrift(t *testing.T) {
	tm := mustStart(t, 60)
	now := t0
	for i := 0; i < 20; i++ {
		now = now.Add(1500 * time.Millisecond)
		tm, _ = Pause(tm, now)
		now = now.Add(time.Hour)
		tm, _ = Resume(tm, now)
	}
	// 20 * 1.5s = 30s of running time.
	if got := Read(&tm, now).RemainingTime; got != 30 {
		t.Errorf("remaining = %d, want 30", got)
	}
}

func TestPauseGuards(t *testing.T) {
	idle := New(60, Meta{})
	if _, err := Pause(idle, t0); !errors.Is(err, procerr.ErrInvalidState) {
		t.Errorf("Pause(idle) err = %v, want INVALID_STATE", err)
	}
	tm := mustStart(t, 60)
	tm, _ = Pause(tm, at(1))
	if _, err := Pause(tm, at(2)); !errors.Is(err, procerr.ErrInvalidState) {
		t.Errorf("Pause(paused) err = %v, want INVALID_STATE", err)
	}
	running := mustStart(t, 60)
	if _, err := Resume(running, at(1)); !errors.Is(err, procerr.ErrInvalidState) {
		t.Errorf("Resume(running) err = %v, want INVALID_STATE", err)
	}
}

func TestAdjust(t *testing.T) {
	tests := []struct {
		name    string
		setup   func() Timer
		value   int
		readAt  int
		want    int
		wantErr bool
	}{
		{
			name:   "running timer continues from new value",
			setup:  func() Timer { tm, _ := Start(90, Meta{}, t0); return tm },
			value:  45,
			readAt: 10,
			want:   35,
		},
		{
			name: "paused timer keeps new value",
			setup: func() Timer {
				tm, _ := Start(90, Meta{}, t0)
				tm, _ = Pause(tm, t0)
				return tm
			},
			value:  120,
			readAt: 500,
			want:   120,
		},
		{
			name:   "inactive timer",
			setup:  func() Timer { return New(30, Meta{}) },
			value:  15,
			readAt: 100,
			want:   15,
		},
		{
			name:    "negative rejected",
			setup:   func() Timer { return New(30, Meta{}) },
			value:   -1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm, err := Adjust(tt.setup(), tt.value, t0)
			if tt.wantErr {
				if !errors.Is(err, procerr.ErrInvalidArgument) {
					t.Fatalf("err = %v, want INVALID_ARGUMENT", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Adjust: %v", err)
			}
			if got := Read(&tm, at(tt.readAt)).RemainingTime; got != tt.want {
				t.Errorf("remaining = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAdjustPausedThenResume(t *testing.T) {
	tm := mustStart(t, 90)
	tm, _ = Pause(tm, at(30))
	tm, _ = Adjust(tm, 20, at(40))
	tm, _ = Resume(tm, at(100))
	if got := Read(&tm, at(105)).RemainingTime; got != 15 {
		t.Errorf("remaining = %d, want 15", got)
	}
}

func TestStopFreezes(t *testing.T) {
	tm := mustStart(t, 90)
	tm = Stop(tm, at(20))
	if tm.IsActive || tm.IsPaused {
		t.Fatalf("stopped flags = active:%v paused:%v", tm.IsActive, tm.IsPaused)
	}
	if got := Read(&tm, at(500)).RemainingTime; got != 70 {
		t.Errorf("remaining after stop = %d, want 70", got)
	}
}
