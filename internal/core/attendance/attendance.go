// Package attendance contains the pure business logic for roll call and
// quorum. This is part of the Functional Core - no I/O, only pure functions.
package attendance

import (
	"fmt"
	"time"

	"github.com/example/presidium/internal/core/procerr"
)

// Status is a country's attendance classification.
type Status string

const (
	StatusAbsent           Status = "absent"
	StatusPresent          Status = "present"
	StatusPresentAndVoting Status = "present_and_voting"
)

// ParseStatus validates an attendance status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusAbsent, StatusPresent, StatusPresentAndVoting:
		return Status(s), nil
	}
	return "", procerr.New(procerr.CodeInvalidArgument,
		"invalid attendance status %q (want absent, present or present_and_voting)", s)
}

// IsPresent reports whether the status counts toward quorum.
func (s Status) IsPresent() bool {
	return s == StatusPresent || s == StatusPresentAndVoting
}

// Record is one country's current attendance.
type Record struct {
	Country  string     `json:"country"`
	Status   Status     `json:"status"`
	MarkedBy string     `json:"markedBy,omitempty"`
	MarkedAt *time.Time `json:"markedAt,omitempty"`
}

// Response is one roll-call answer.
type Response struct {
	Country     string    `json:"country"`
	Status      Status    `json:"status"`
	RespondedBy string    `json:"respondedBy"`
	RespondedAt time.Time `json:"respondedAt"`
}

// RollCall is the transient roll-call state of a session.
type RollCall struct {
	IsActive  bool       `json:"isActive"`
	StartedBy string     `json:"startedBy,omitempty"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	TimeLimit int        `json:"timeLimit,omitempty"`
	Responses []Response `json:"responses"`
}

// Quorum is derived from the attendance roster.
type Quorum struct {
	Total    int  `json:"total"`
	Present  int  `json:"present"`
	Required int  `json:"required"`
	HasMet   bool `json:"hasMet"`
}

// RequiredFor returns the quorum threshold for a roster of total countries.
func RequiredFor(total int) int {
	return total/2 + 1
}

// ComputeQuorum derives quorum from the roster in a single pass.
func ComputeQuorum(records []Record) Quorum {
	q := Quorum{Total: len(records), Required: RequiredFor(len(records))}
	for _, r := range records {
		if r.Status.IsPresent() {
			q.Present++
		}
	}
	q.HasMet = q.Present >= q.Required
	return q
}

// NewRoster returns an all-absent roster for the given countries.
// Duplicate names are collapsed.
func NewRoster(countries []string) []Record {
	seen := make(map[string]bool, len(countries))
	out := make([]Record, 0, len(countries))
	for _, c := range countries {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, Record{Country: c, Status: StatusAbsent})
	}
	return out
}

// Find returns the index of country in records, or -1.
func Find(records []Record, country string) int {
	for i, r := range records {
		if r.Country == country {
			return i
		}
	}
	return -1
}

// Countries returns the countries whose status matches any of statuses,
// preserving roster order.
func Countries(records []Record, statuses ...Status) []string {
	var out []string
	for _, r := range records {
		for _, s := range statuses {
			if r.Status == s {
				out = append(out, r.Country)
				break
			}
		}
	}
	return out
}

// StartRollCallContext provides context for roll-call start guards.
type StartRollCallContext struct {
	SessionID     string
	SessionStatus string
	AlreadyActive bool
}

// CanStartRollCall evaluates whether a roll call can begin.
// Rule: only one roll call at a time, and never on a completed session.
func CanStartRollCall(ctx StartRollCallContext) procerr.GuardResult {
	if ctx.SessionStatus == "completed" {
		return procerr.Deny(procerr.CodeInvalidState,
			fmt.Sprintf("session %s is completed", ctx.SessionID),
			map[string]string{"current_state": ctx.SessionStatus})
	}
	if ctx.AlreadyActive {
		return procerr.Deny(procerr.CodeInvalidState,
			fmt.Sprintf("roll call already active for session %s", ctx.SessionID),
			map[string]string{"current_state": "roll_call_active", "required_state": "roll_call_inactive"})
	}
	return procerr.Allow()
}

// StartRollCall opens a roll call with empty responses.
func StartRollCall(rc RollCall, startedBy string, timeLimit int, now time.Time) (RollCall, error) {
	if rc.IsActive {
		return rc, procerr.InvalidState("roll call already active", "roll_call_active", "roll_call_inactive")
	}
	if timeLimit < 0 {
		return rc, procerr.New(procerr.CodeInvalidArgument, "roll call time limit cannot be negative")
	}
	started := now
	return RollCall{
		IsActive:  true,
		StartedBy: startedBy,
		StartedAt: &started,
		TimeLimit: timeLimit,
		Responses: []Response{},
	}, nil
}

// EndRollCall closes an active roll call.
func EndRollCall(rc RollCall, now time.Time) (RollCall, error) {
	if !rc.IsActive {
		return rc, procerr.InvalidState("no active roll call", "roll_call_inactive", "roll_call_active")
	}
	ended := now
	rc.IsActive = false
	rc.EndedAt = &ended
	return rc, nil
}

// Mark reclassifies country in place of its existing record and returns the
// updated roster and the previous status. A country is never duplicated.
func Mark(records []Record, country string, status Status, actor string, now time.Time) ([]Record, Status, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return records, "", err
	}
	idx := Find(records, country)
	if idx < 0 {
		return records, "", procerr.NotFound("country", country)
	}
	out := append([]Record(nil), records...)
	prev := out[idx].Status
	marked := now
	out[idx] = Record{Country: country, Status: status, MarkedBy: actor, MarkedAt: &marked}
	return out, prev, nil
}

// RecordResponse upserts the roll-call response for country.
func RecordResponse(rc RollCall, country string, status Status, actor string, now time.Time) RollCall {
	resp := Response{Country: country, Status: status, RespondedBy: actor, RespondedAt: now}
	out := append([]Response(nil), rc.Responses...)
	for i := range out {
		if out[i].Country == country {
			out[i] = resp
			rc.Responses = out
			return rc
		}
	}
	rc.Responses = append(out, resp)
	return rc
}

// RemainingSeconds reports the roll call's informational countdown.
// ok is false when the roll call is not active or has no time limit.
func (rc RollCall) RemainingSeconds(now time.Time) (int, bool) {
	if !rc.IsActive || rc.TimeLimit <= 0 || rc.StartedAt == nil {
		return 0, false
	}
	deadline := rc.StartedAt.Add(time.Duration(rc.TimeLimit) * time.Second)
	rem := deadline.Sub(now)
	if rem < 0 {
		return 0, true
	}
	return int(rem.Seconds()), true
}
