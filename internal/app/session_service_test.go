package app

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/presidium/internal/core/attendance"
	"github.com/example/presidium/internal/core/debate"
	"github.com/example/presidium/internal/core/procerr"
	"github.com/example/presidium/internal/core/session"
	"github.com/example/presidium/internal/core/timer"
	"github.com/example/presidium/internal/ports/primary"
)

var tenCountries = []string{"Argentina", "Brazil", "Canada", "Denmark", "Egypt", "France", "Ghana", "India", "Japan", "Kenya"}

func createSession(t *testing.T, env *testEnv, committeeID string) *session.Session {
	t.Helper()
	sess, err := env.sessionSvc.CreateSession(chairCtx(), primary.CreateSessionRequest{CommitteeID: committeeID})
	require.NoError(t, err)
	return sess
}

// liveSession creates and starts a session with the first n countries
// present and voting after a completed roll call.
func liveSession(t *testing.T, env *testEnv, n int) *session.Session {
	t.Helper()
	ctx := chairCtx()
	sess := createSession(t, env, "COM-001")

	_, err := env.sessionSvc.StartSession(ctx, sess.ID, 0)
	require.NoError(t, err)
	_, err = env.sessionSvc.StartRollCall(ctx, sess.ID, 0)
	require.NoError(t, err)
	for _, c := range tenCountries[:n] {
		_, err = env.sessionSvc.MarkAttendance(ctx, primary.MarkAttendanceRequest{
			SessionID: sess.ID, Country: c, Status: attendance.StatusPresentAndVoting,
		})
		require.NoError(t, err)
	}
	sess, err = env.sessionSvc.EndRollCall(ctx, sess.ID)
	require.NoError(t, err)
	return sess
}

func TestSessionService_CreateSession(t *testing.T) {
	env := newTestEnv(nil)
	env.committees.seed("COM-001", tenCountries)

	sess := createSession(t, env, "COM-001")

	assert.Equal(t, "SES-001", sess.ID)
	assert.Equal(t, 1, sess.Number)
	assert.Equal(t, 1, sess.Version)
	assert.Equal(t, session.StatusInactive, sess.Status)
	assert.Equal(t, debate.ModeFormal, sess.CurrentMode)
	assert.Equal(t, 10, sess.Quorum.Total)
	assert.Len(t, sess.SpeakerLists.Absent, 10)

	require.Equal(t, []string{session.EventCreated}, env.events.names())
	assert.Equal(t, "chair@un.test", env.events.events[0].ActorID)
	require.Len(t, env.publisher.published, 1)

	second := createSession(t, env, "COM-001")
	assert.Equal(t, 2, second.Number)
}

func TestSessionService_CreateSession_Errors(t *testing.T) {
	env := newTestEnv(nil)
	env.committees.seed("COM-001", tenCountries)

	_, err := env.sessionSvc.CreateSession(context.Background(), primary.CreateSessionRequest{CommitteeID: "COM-001"})
	assert.ErrorIs(t, err, procerr.ErrInvalidArgument, "actor is required")

	_, err = env.sessionSvc.CreateSession(chairCtx(), primary.CreateSessionRequest{CommitteeID: "COM-404"})
	assert.ErrorIs(t, err, procerr.ErrNotFound)

	_, err = env.sessionSvc.CreateSession(chairCtx(), primary.CreateSessionRequest{CommitteeID: "COM-001", Mode: "filibuster"})
	assert.ErrorIs(t, err, procerr.ErrInvalidArgument)

	assert.Empty(t, env.events.events)
}

func TestSessionService_OneLiveSessionPerCommittee(t *testing.T) {
	env := newTestEnv(nil)
	env.committees.seed("COM-001", tenCountries)
	ctx := chairCtx()

	first := createSession(t, env, "COM-001")
	second := createSession(t, env, "COM-001")

	_, err := env.sessionSvc.StartSession(ctx, first.ID, 0)
	require.NoError(t, err)

	_, err = env.sessionSvc.StartSession(ctx, second.ID, 0)
	require.ErrorIs(t, err, procerr.ErrInvalidState)

	active, err := env.sessionSvc.GetActiveSession(ctx, "COM-001")
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)

	_, err = env.sessionSvc.CompleteSession(ctx, first.ID)
	require.NoError(t, err)
	_, err = env.sessionSvc.GetActiveSession(ctx, "COM-001")
	assert.ErrorIs(t, err, procerr.ErrNotFound)

	_, err = env.sessionSvc.StartSession(ctx, second.ID, 0)
	assert.NoError(t, err)
}

func TestSessionService_RollCallAndSpeakers(t *testing.T) {
	env := newTestEnv(nil)
	env.committees.seed("COM-001", tenCountries)
	ctx := chairCtx()

	sess := liveSession(t, env, 6)
	assert.Equal(t, attendance.Quorum{Total: 10, Present: 6, Required: 6, HasMet: true}, sess.Quorum)
	assert.Len(t, sess.SpeakerLists.Present, 6)

	resp, err := env.sessionSvc.NextSpeaker(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Argentina", resp.Speaker.Country)
	require.NotNil(t, resp.Session.CurrentSpeaker)
	assert.Equal(t, "Argentina", resp.Session.CurrentSpeaker.Country)

	env.clock.Advance(30 * time.Second)
	readings, err := env.sessionSvc.ReadTimers(ctx, sess.ID)
	require.NoError(t, err)
	speaker := findReading(readings, "speaker")
	require.NotNil(t, speaker)
	assert.Equal(t, 60, speaker.RemainingTime)

	sess, err = env.sessionSvc.MoveToEnd(ctx, sess.ID, "Brazil")
	require.NoError(t, err)
	assert.Equal(t, "Brazil", sess.SpeakerLists.Present[5].Country)

	_, err = env.sessionSvc.MoveToEnd(ctx, sess.ID, "Brazil")
	assert.ErrorIs(t, err, procerr.ErrInvalidState)

	sess, err = env.sessionSvc.ClearCurrentSpeaker(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, sess.CurrentSpeaker)

	assert.Contains(t, env.events.names(), session.EventRollCallEnded)
	assert.Contains(t, env.events.names(), session.EventSpeakerChanged)
}

func TestSessionService_AdjustTimerIsAudited(t *testing.T) {
	env := newTestEnv(nil)
	env.committees.seed("COM-001", tenCountries)
	ctx := chairCtx()
	sess := liveSession(t, env, 6)

	_, err := env.sessionSvc.StartTimer(ctx, primary.StartTimerRequest{
		SessionID: sess.ID, Name: "speaker", Duration: 90, Meta: timer.Meta{Country: "France"},
	})
	require.NoError(t, err)

	env.clock.Advance(40 * time.Second)
	_, err = env.sessionSvc.AdjustTimer(ctx, primary.AdjustTimerRequest{
		SessionID: sess.ID, Name: "speaker", NewRemaining: 15, Reason: "delegate overran",
	})
	require.NoError(t, err)

	require.Len(t, env.audit.entries, 1)
	entry := env.audit.entries[0]
	assert.Equal(t, "chair@un.test", entry.actor)
	assert.Equal(t, "timer", entry.entityType)
	assert.Equal(t, sess.ID+"/speaker", entry.entityID)
	assert.Equal(t, "50", entry.oldValue)
	assert.Equal(t, "15", entry.newValue)
	assert.Equal(t, "delegate overran", entry.reason)
}

func TestSessionService_PauseResumeAcrossLoads(t *testing.T) {
	env := newTestEnv(nil)
	env.committees.seed("COM-001", tenCountries)
	ctx := chairCtx()
	sess := createSession(t, env, "COM-001")

	_, err := env.sessionSvc.StartSession(ctx, sess.ID, 600)
	require.NoError(t, err)

	env.clock.Advance(100 * time.Second)
	_, err = env.sessionSvc.PauseSession(ctx, sess.ID)
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	sess, err = env.sessionSvc.ResumeSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusActive, sess.Status)

	env.clock.Advance(50 * time.Second)
	readings, err := env.sessionSvc.ReadTimers(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 450, findReading(readings, "session").RemainingTime)
}

func TestSessionService_AdditionalTimers(t *testing.T) {
	env := newTestEnv(nil)
	env.committees.seed("COM-001", tenCountries)
	ctx := chairCtx()
	sess := liveSession(t, env, 6)

	added, err := env.sessionSvc.AddTimer(ctx, primary.AddTimerRequest{
		SessionID: sess.ID, Duration: 300, Meta: timer.Meta{Purpose: "caucus"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, added.TimerID)
	require.Len(t, added.Session.Timers.Additional, 1)

	_, err = env.sessionSvc.StartTimer(ctx, primary.StartTimerRequest{SessionID: sess.ID, Name: added.TimerID, Duration: 300})
	require.NoError(t, err)

	sess, err = env.sessionSvc.RemoveTimer(ctx, sess.ID, added.TimerID)
	require.NoError(t, err)
	assert.Empty(t, sess.Timers.Additional)

	_, err = env.sessionSvc.RemoveTimer(ctx, sess.ID, "session")
	assert.ErrorIs(t, err, procerr.ErrInvalidArgument)
}

func TestSessionService_RetriesOnConflict(t *testing.T) {
	registry := prometheus.NewRegistry()
	env := newTestEnv(NewMetrics(registry))
	env.committees.seed("COM-001", tenCountries)
	ctx := chairCtx()
	sess := createSession(t, env, "COM-001")

	env.sessions.conflicts = 2
	started, err := env.sessionSvc.StartSession(ctx, sess.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, started.Version)
	assert.Equal(t, float64(2), testutil.ToFloat64(env.metrics.conflicts.WithLabelValues("session")))
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.operations.WithLabelValues("session", "start", "ok")))

	// Only one set of events is emitted for the successful attempt.
	assert.Equal(t, []string{session.EventCreated, session.EventStarted}, env.events.names())
}

func TestSessionService_GivesUpAfterRetries(t *testing.T) {
	registry := prometheus.NewRegistry()
	env := newTestEnv(NewMetrics(registry))
	env.committees.seed("COM-001", tenCountries)
	sess := createSession(t, env, "COM-001")

	env.sessions.conflicts = 10
	_, err := env.sessionSvc.StartSession(chairCtx(), sess.ID, 0)
	require.ErrorIs(t, err, procerr.ErrConcurrentModification)
	assert.Equal(t, 4, env.sessions.saves, "one attempt plus three retries")
	assert.Equal(t, float64(1), testutil.ToFloat64(
		env.metrics.operations.WithLabelValues("session", "start", "concurrent_modification")))

	loaded, err := env.sessionSvc.GetSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusInactive, loaded.Status)
}

func TestSessionService_ListSessions(t *testing.T) {
	env := newTestEnv(nil)
	env.committees.seed("COM-001", tenCountries)
	env.committees.seed("COM-002", []string{"Norway", "Peru", "Qatar"})

	createSession(t, env, "COM-001")
	createSession(t, env, "COM-001")
	createSession(t, env, "COM-002")

	all, err := env.sessionSvc.ListSessions(context.Background(), primary.SessionFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byCommittee, err := env.sessionSvc.ListSessions(context.Background(), primary.SessionFilters{CommitteeID: "COM-002"})
	require.NoError(t, err)
	require.Len(t, byCommittee, 1)
	assert.Equal(t, 3, byCommittee[0].Quorum.Total)
}

func findReading(readings []timer.NamedReading, name string) *timer.Reading {
	for _, r := range readings {
		if r.Name == name {
			return r.Reading
		}
	}
	return nil
}
