package voting

import (
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/example/presidium/internal/core/attendance"
	"github.com/example/presidium/internal/core/effects"
	"github.com/example/presidium/internal/core/procerr"
)

// Type is the voting protocol.
type Type string

const (
	TypeSimple   Type = "simple"
	TypeRollCall Type = "rollCall"
)

// Majority is the pass rule.
type Majority string

const (
	MajoritySimple    Majority = "simple"
	MajorityQualified Majority = "qualified"
	MajorityConsensus Majority = "consensus"
)

// Choice is a single vote.
type Choice string

const (
	ChoiceFor     Choice = "for"
	ChoiceAgainst Choice = "against"
	ChoiceAbstain Choice = "abstain"
)

// Status represents the possible states of a voting.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further change is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// SubjectType is what is being voted on.
type SubjectType string

const (
	SubjectResolution SubjectType = "resolution"
	SubjectAmendment  SubjectType = "amendment"
	SubjectMotion     SubjectType = "motion"
	SubjectQuestion   SubjectType = "question"
)

// Event names emitted by voting operations.
const (
	EventCreated      = "voting-created"
	EventStarted      = "voting-started"
	EventVoteCast     = "vote-cast"
	EventRollCallNext = "roll-call-next"
	EventCompleted    = "voting-completed"
	EventCancelled    = "voting-cancelled"
)

const aggregateType = "voting"

// Member is one committee roster entry as seen by the voting engine.
type Member struct {
	Country      string
	Email        string
	HasVetoRight bool
}

// Voter is one entry of the eligibility snapshot taken at creation.
type Voter struct {
	Country          string            `json:"country"`
	Email            string            `json:"email"`
	HasVetoRight     bool              `json:"hasVetoRight"`
	CanVote          bool              `json:"canVote"`
	AttendanceStatus attendance.Status `json:"attendanceStatus"`
}

// Vote is one recorded vote.
type Vote struct {
	Country           string    `json:"country"`
	Email             string    `json:"email"`
	Vote              Choice    `json:"vote"`
	IsVeto            bool      `json:"isVeto"`
	VetoJustification string    `json:"vetoJustification,omitempty"`
	RollCallPosition  int       `json:"rollCallPosition,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// Voting is the aggregate for one procedural question.
type Voting struct {
	ID          string `json:"id"`
	SessionID   string `json:"sessionId"`
	CommitteeID string `json:"committeeId"`
	Title       string `json:"title"`

	SubjectType       SubjectType `json:"subjectType"`
	SubjectID         string      `json:"subjectId,omitempty"`
	VotingType        Type        `json:"votingType"`
	MajorityRequired  Majority    `json:"majorityRequired"`
	MajorityThreshold int         `json:"majorityThreshold"`

	EligibleVoters   []Voter  `json:"eligibleVoters"`
	Votes            []Vote   `json:"votes"`
	RollCallOrder    []string `json:"rollCallOrder,omitempty"`
	CurrentlyVoting  string   `json:"currentlyVoting,omitempty"`
	SkippedCountries []string `json:"skippedCountries,omitempty"`

	Status    Status   `json:"status"`
	Results   *Results `json:"results,omitempty"`
	TimeLimit int      `json:"timeLimit,omitempty"`

	CreatedBy    string     `json:"createdBy"`
	CreatedAt    time.Time  `json:"createdAt"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	CancelledBy  string     `json:"cancelledBy,omitempty"`
	CancelReason string     `json:"cancelReason,omitempty"`

	Version int `json:"-"`
}

// SessionSnapshot is the slice of session state a voting is created from.
type SessionSnapshot struct {
	ID          string
	CommitteeID string
	Status      string
	Quorum      attendance.Quorum
	Attendance  []attendance.Record
}

// CreateParams carries the inputs for creating a voting.
type CreateParams struct {
	ID          string
	Session     SessionSnapshot
	Roster      []Member
	Title       string
	SubjectType SubjectType
	SubjectID   string
	Majority    Majority
	Type        Type
	TimeLimit   int
	CreatedBy   string
}

// Threshold returns the votes-for threshold for n present voters.
func Threshold(m Majority, n int) int {
	switch m {
	case MajorityQualified:
		return (2*n + 2) / 3
	case MajorityConsensus:
		return n
	default:
		return n/2 + 1
	}
}

// SortCountries orders names alphabetically with English collation, so
// accented names sort with their base letters.
func SortCountries(names []string) []string {
	out := append([]string(nil), names...)
	collate.New(language.English, collate.Loose).SortStrings(out)
	return out
}

// Create snapshots the eligible voters of a session into a pending voting.
func Create(p CreateParams, now time.Time) (*Voting, []effects.Effect, error) {
	if p.ID == "" {
		return nil, nil, procerr.New(procerr.CodeInvalidArgument, "voting id is required")
	}
	vt, err := ParseType(p.Type)
	if err != nil {
		return nil, nil, err
	}
	majority, err := ParseMajority(p.Majority)
	if err != nil {
		return nil, nil, err
	}
	if p.TimeLimit < 0 {
		return nil, nil, procerr.New(procerr.CodeInvalidArgument, "time limit cannot be negative")
	}
	subject := p.SubjectType
	if subject == "" {
		subject = SubjectMotion
	}

	voters := snapshotVoters(p.Session.Attendance, p.Roster)
	var voting []string
	for _, v := range voters {
		if v.CanVote {
			voting = append(voting, v.Country)
		}
	}

	if err := CanCreateVoting(CreateContext{
		SessionID:      p.Session.ID,
		SessionStatus:  p.Session.Status,
		QuorumHasMet:   p.Session.Quorum.HasMet,
		QuorumPresent:  p.Session.Quorum.Present,
		QuorumRequired: p.Session.Quorum.Required,
		EligibleCount:  len(voting),
	}).Error(); err != nil {
		return nil, nil, err
	}

	v := &Voting{
		ID:                p.ID,
		SessionID:         p.Session.ID,
		CommitteeID:       p.Session.CommitteeID,
		Title:             p.Title,
		SubjectType:       subject,
		SubjectID:         p.SubjectID,
		VotingType:        vt,
		MajorityRequired:  majority,
		MajorityThreshold: Threshold(majority, len(voting)),
		EligibleVoters:    voters,
		Votes:             []Vote{},
		Status:            StatusPending,
		TimeLimit:         p.TimeLimit,
		CreatedBy:         p.CreatedBy,
		CreatedAt:         now,
	}
	if vt == TypeRollCall {
		v.RollCallOrder = SortCountries(voting)
	}

	return v, []effects.Effect{
		v.event(EventCreated, effects.VisibilityPublic, map[string]any{
			"title":             v.Title,
			"subjectType":       string(v.SubjectType),
			"majorityRequired":  string(v.MajorityRequired),
			"majorityThreshold": v.MajorityThreshold,
			"eligibleCount":     len(voting),
			"rollCallOrder":     v.RollCallOrder,
		}),
	}, nil
}

// Start opens the voting. Roll-call votings call their first voter.
func (v *Voting) Start(actor string, now time.Time) ([]effects.Effect, error) {
	if err := CanStartVoting(StatusContext{VotingID: v.ID, Status: v.Status}).Error(); err != nil {
		return nil, err
	}
	started := now
	v.Status = StatusActive
	v.StartedAt = &started

	effs := []effects.Effect{
		v.event(EventStarted, effects.VisibilityPublic, map[string]any{"startedBy": actor, "timeLimit": v.TimeLimit}),
	}
	if v.VotingType == TypeRollCall {
		if next := v.NextRollCallVoter(); next != nil {
			v.CurrentlyVoting = next.Country
		}
		effs = append(effs, v.rollCallNextEvent())
	}
	return effs, nil
}

// CastVote records email's vote. A vote against with a justification from a
// veto holder is a veto.
func (v *Voting) CastVote(email string, choice Choice, vetoJustification string, now time.Time) ([]effects.Effect, error) {
	if _, err := ParseChoice(choice); err != nil {
		return nil, err
	}
	voter, known := v.voterByEmail(email)
	ctx := CastContext{
		Status:          v.Status,
		RollCall:        v.VotingType == TypeRollCall,
		Email:           email,
		Known:           known,
		Choice:          choice,
		CurrentlyVoting: v.CurrentlyVoting,
	}
	if known {
		ctx.CanVote = voter.CanVote
		ctx.Country = voter.Country
		ctx.AlreadyVoted = v.HasVoted(voter.Country)
		ctx.WasSkipped = contains(v.SkippedCountries, voter.Country)
	}
	if err := CanCastVote(ctx).Error(); err != nil {
		return nil, err
	}

	vote := Vote{
		Country:   voter.Country,
		Email:     voter.Email,
		Vote:      choice,
		IsVeto:    choice == ChoiceAgainst && voter.HasVetoRight && strings.TrimSpace(vetoJustification) != "",
		Timestamp: now,
	}
	if vote.IsVeto {
		vote.VetoJustification = strings.TrimSpace(vetoJustification)
	}
	if ctx.RollCall {
		vote.RollCallPosition = len(v.Votes) + 1
	}

	v.Votes = append(append([]Vote(nil), v.Votes...), vote)

	visibility := effects.VisibilityAfterCompletion
	if ctx.RollCall {
		visibility = effects.VisibilityPublic
	}
	effs := []effects.Effect{
		v.event(EventVoteCast, visibility, map[string]any{
			"country":    vote.Country,
			"vote":       string(vote.Vote),
			"isVeto":     vote.IsVeto,
			"votesCast":  len(v.Votes),
			"eligible":   v.EligibleCount(),
			"visibility": string(visibility),
		}),
	}
	if ctx.RollCall {
		v.advance()
		effs = append(effs, v.rollCallNextEvent())
	}
	return effs, nil
}

// Skip defers country's roll-call turn until the main order is exhausted.
// An empty country means whoever is currently voting.
func (v *Voting) Skip(country, actor string, now time.Time) ([]effects.Effect, error) {
	if country == "" {
		country = v.CurrentlyVoting
	}
	if err := CanSkip(SkipContext{
		Status:          v.Status,
		RollCall:        v.VotingType == TypeRollCall,
		Country:         country,
		CurrentlyVoting: v.CurrentlyVoting,
		AlreadySkipped:  contains(v.SkippedCountries, country),
	}).Error(); err != nil {
		return nil, err
	}

	v.SkippedCountries = append(append([]string(nil), v.SkippedCountries...), country)
	v.advance()

	return []effects.Effect{
		effects.LogEffect{Level: "info", Message: "roll-call voter skipped", Fields: map[string]any{
			"voting_id": v.ID, "country": country, "actor": actor,
		}},
		v.rollCallNextEvent(),
	}, nil
}

// NextRollCallVoter returns whose turn it is: the first unvoted, unskipped
// country in roll-call order, then skipped countries in the order they were
// skipped. Nil once every voter has voted.
func (v *Voting) NextRollCallVoter() *Voter {
	if v.VotingType != TypeRollCall {
		return nil
	}
	for _, c := range v.RollCallOrder {
		if !v.HasVoted(c) && !contains(v.SkippedCountries, c) {
			return v.voterByCountry(c)
		}
	}
	for _, c := range v.SkippedCountries {
		if !v.HasVoted(c) {
			return v.voterByCountry(c)
		}
	}
	return nil
}

// HasVoted reports whether country has a recorded vote.
func (v *Voting) HasVoted(country string) bool {
	for _, vote := range v.Votes {
		if vote.Country == country {
			return true
		}
	}
	return false
}

// EligibleCount is the number of voters who may cast a vote.
func (v *Voting) EligibleCount() int {
	n := 0
	for _, voter := range v.EligibleVoters {
		if voter.CanVote {
			n++
		}
	}
	return n
}

// RemainingSeconds reports the informational countdown of a timed voting.
// ok is false for untimed or inactive votings.
func (v *Voting) RemainingSeconds(now time.Time) (int, bool) {
	if v.Status != StatusActive || v.TimeLimit <= 0 || v.StartedAt == nil {
		return 0, false
	}
	rem := v.StartedAt.Add(time.Duration(v.TimeLimit) * time.Second).Sub(now)
	if rem < 0 {
		return 0, true
	}
	return int(rem.Seconds()), true
}

func (v *Voting) advance() {
	v.CurrentlyVoting = ""
	if next := v.NextRollCallVoter(); next != nil {
		v.CurrentlyVoting = next.Country
	}
}

func (v *Voting) voterByEmail(email string) (Voter, bool) {
	for _, voter := range v.EligibleVoters {
		if voter.Email != "" && strings.EqualFold(voter.Email, email) {
			return voter, true
		}
	}
	return Voter{}, false
}

func (v *Voting) voterByCountry(country string) *Voter {
	for i := range v.EligibleVoters {
		if v.EligibleVoters[i].Country == country {
			voter := v.EligibleVoters[i]
			return &voter
		}
	}
	return nil
}

func (v *Voting) event(name string, visibility effects.Visibility, payload map[string]any) effects.EventEffect {
	payload["votingId"] = v.ID
	payload["sessionId"] = v.SessionID
	payload["votingType"] = string(v.VotingType)
	payload["status"] = string(v.Status)
	e := effects.Event(name, aggregateType, v.ID, v.CommitteeID, payload)
	e.Visibility = visibility
	return e
}

func (v *Voting) rollCallNextEvent() effects.EventEffect {
	return v.event(EventRollCallNext, effects.VisibilityPublic, map[string]any{
		"currentlyVoting":  v.CurrentlyVoting,
		"skippedCountries": v.SkippedCountries,
		"votesCast":        len(v.Votes),
	})
}

func snapshotVoters(records []attendance.Record, roster []Member) []Voter {
	byCountry := make(map[string]Member, len(roster))
	for _, m := range roster {
		byCountry[m.Country] = m
	}
	var voters []Voter
	for _, r := range records {
		if !r.Status.IsPresent() {
			continue
		}
		m := byCountry[r.Country]
		voters = append(voters, Voter{
			Country:          r.Country,
			Email:            m.Email,
			HasVetoRight:     m.HasVetoRight,
			CanVote:          r.Status == attendance.StatusPresentAndVoting && m.Email != "",
			AttendanceStatus: r.Status,
		})
	}
	return voters
}

func ParseType(t Type) (Type, error) {
	switch t {
	case "":
		return TypeSimple, nil
	case TypeSimple, TypeRollCall:
		return t, nil
	}
	return "", procerr.New(procerr.CodeInvalidArgument, "invalid voting type %q (want simple or rollCall)", t)
}

func ParseMajority(m Majority) (Majority, error) {
	switch m {
	case "":
		return MajoritySimple, nil
	case MajoritySimple, MajorityQualified, MajorityConsensus:
		return m, nil
	}
	return "", procerr.New(procerr.CodeInvalidArgument, "invalid majority %q (want simple, qualified or consensus)", m)
}

func ParseChoice(c Choice) (Choice, error) {
	switch c {
	case ChoiceFor, ChoiceAgainst, ChoiceAbstain:
		return c, nil
	}
	return "", procerr.New(procerr.CodeInvalidArgument, "invalid vote %q (want for, against or abstain)", c)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
