package app

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/presidium/internal/core/procerr"
	"github.com/example/presidium/internal/core/voting"
	"github.com/example/presidium/internal/ports/primary"
)

func TestVotingService_RollCallWithVeto(t *testing.T) {
	registry := prometheus.NewRegistry()
	env := newTestEnv(NewMetrics(registry))
	env.committees.seed("COM-001", tenCountries, "France")
	sess := liveSession(t, env, 6)
	chair := chairCtx()

	v, err := env.votingSvc.CreateVoting(chair, primary.CreateVotingRequest{
		SessionID: sess.ID,
		Title:     "Draft resolution 1.1",
		Type:      voting.TypeRollCall,
		Majority:  voting.MajorityQualified,
	})
	require.NoError(t, err)
	assert.Equal(t, voting.StatusPending, v.Status)
	assert.Equal(t, 4, v.MajorityThreshold)
	assert.Equal(t, tenCountries[:6], v.RollCallOrder)

	_, err = env.votingSvc.StartVoting(chair, v.ID)
	require.NoError(t, err)

	_, err = env.votingSvc.CastVote(delegateCtx("Brazil"), primary.CastVoteRequest{VotingID: v.ID, Vote: voting.ChoiceFor})
	require.ErrorIs(t, err, procerr.ErrOutOfTurn)

	for _, c := range tenCountries[:6] {
		req := primary.CastVoteRequest{VotingID: v.ID, Vote: voting.ChoiceFor}
		if c == "France" {
			req.Vote = voting.ChoiceAgainst
			req.VetoJustification = "Undermines the mandate"
		}
		env.clock.Advance(time.Second)
		_, err := env.votingSvc.CastVote(delegateCtx(c), req)
		require.NoError(t, err, c)
	}

	next, err := env.votingSvc.GetNextRollCallVoter(chair, v.ID)
	require.NoError(t, err)
	assert.Nil(t, next)

	v, err = env.votingSvc.CompleteVoting(chair, v.ID, false)
	require.NoError(t, err)
	require.NotNil(t, v.Results)
	assert.Equal(t, 5, v.Results.VotesFor)
	assert.True(t, v.Results.VetoUsed)
	assert.Equal(t, "France", v.Results.VetoCountry)
	assert.False(t, v.Results.Passed)

	cast := env.events.last(voting.EventVoteCast)
	require.NotNil(t, cast)
	assert.Equal(t, "public", cast.Visibility)
	assert.Equal(t, "France@un.test", cast.ActorID)

	assert.Equal(t, float64(5), testutil.ToFloat64(env.metrics.votesCast.WithLabelValues("rollCall", "for")))
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.votesCast.WithLabelValues("rollCall", "against")))
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.operations.WithLabelValues("voting", "cast", "out_of_turn")))
}

func TestVotingService_SimpleVotingHidesVotesUntilCompletion(t *testing.T) {
	env := newTestEnv(nil)
	env.committees.seed("COM-001", tenCountries)
	sess := liveSession(t, env, 6)
	chair := chairCtx()

	v, err := env.votingSvc.CreateVoting(chair, primary.CreateVotingRequest{SessionID: sess.ID, Title: "Adjourn"})
	require.NoError(t, err)
	assert.Equal(t, voting.TypeSimple, v.VotingType)
	assert.Equal(t, voting.MajoritySimple, v.MajorityRequired)
	assert.Equal(t, 4, v.MajorityThreshold)

	_, err = env.votingSvc.StartVoting(chair, v.ID)
	require.NoError(t, err)
	_, err = env.votingSvc.CastVote(delegateCtx("Kenya"), primary.CastVoteRequest{VotingID: v.ID, Vote: voting.ChoiceFor})
	assert.ErrorIs(t, err, procerr.ErrNotEligible, "absent country cannot vote")

	_, err = env.votingSvc.CastVote(chair, primary.CastVoteRequest{VotingID: v.ID, Email: emailOf("Egypt"), Vote: voting.ChoiceAbstain})
	require.NoError(t, err)

	cast := env.events.last(voting.EventVoteCast)
	require.NotNil(t, cast)
	assert.Equal(t, "after-completion", cast.Visibility)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(cast.Payload, &payload))
	assert.Equal(t, "simple", payload["votingType"])

	_, err = env.votingSvc.CompleteVoting(chair, v.ID, false)
	assert.ErrorIs(t, err, procerr.ErrInvalidState)

	v, err = env.votingSvc.CompleteVoting(chair, v.ID, true)
	require.NoError(t, err)
	assert.True(t, v.Results.ForcedCompletion)
	assert.False(t, v.Results.Passed)
}

func TestVotingService_CreateRequiresQuorum(t *testing.T) {
	env := newTestEnv(nil)
	env.committees.seed("COM-001", tenCountries)
	sess := liveSession(t, env, 3)

	_, err := env.votingSvc.CreateVoting(chairCtx(), primary.CreateVotingRequest{SessionID: sess.ID, Title: "Motion"})
	require.ErrorIs(t, err, procerr.ErrQuorumNotMet)

	var pe *procerr.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "3", pe.Metadata["present"])
	assert.Equal(t, "6", pe.Metadata["required"])
	assert.Empty(t, env.votings.votings)
}

func TestVotingService_SkipAndCancel(t *testing.T) {
	env := newTestEnv(nil)
	env.committees.seed("COM-001", tenCountries)
	sess := liveSession(t, env, 6)
	chair := chairCtx()

	v, err := env.votingSvc.CreateVoting(chair, primary.CreateVotingRequest{SessionID: sess.ID, Type: voting.TypeRollCall})
	require.NoError(t, err)
	_, err = env.votingSvc.StartVoting(chair, v.ID)
	require.NoError(t, err)

	v, err = env.votingSvc.SkipVoter(chair, v.ID, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Argentina"}, v.SkippedCountries)
	assert.Equal(t, "Brazil", v.CurrentlyVoting)

	v, err = env.votingSvc.CancelVoting(chair, v.ID, "tabled")
	require.NoError(t, err)
	assert.Equal(t, voting.StatusCancelled, v.Status)
	require.Len(t, env.audit.entries, 1)
	assert.Equal(t, "cancel", env.audit.entries[0].action)

	_, err = env.votingSvc.StartVoting(chair, v.ID)
	assert.ErrorIs(t, err, procerr.ErrInvalidState)

	listed, err := env.votingSvc.ListVotings(chair, primary.VotingFilters{SessionID: sess.ID, Status: "cancelled"})
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestVotingService_RetriesOnConflict(t *testing.T) {
	env := newTestEnv(nil)
	env.committees.seed("COM-001", tenCountries)
	sess := liveSession(t, env, 6)
	chair := chairCtx()

	v, err := env.votingSvc.CreateVoting(chair, primary.CreateVotingRequest{SessionID: sess.ID})
	require.NoError(t, err)

	env.votings.conflicts = 1
	v, err = env.votingSvc.StartVoting(chair, v.ID)
	require.NoError(t, err)
	assert.Equal(t, voting.StatusActive, v.Status)
	assert.Equal(t, 2, v.Version)
}
