package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/presidium/internal/core/procerr"
	"github.com/example/presidium/internal/ctxutil"
	"github.com/example/presidium/internal/ports/secondary"
)

var testT0 = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// fakeClock is a settable Clock for deterministic service tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: testT0} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func chairCtx() context.Context {
	return ctxutil.WithActor(context.Background(), ctxutil.Actor{ID: "U-1", Email: "chair@un.test", Role: "presidium"})
}

func delegateCtx(country string) context.Context {
	return ctxutil.WithActor(context.Background(), ctxutil.Actor{
		ID: "U-" + country, Email: emailOf(country), Country: country, Role: "delegate",
	})
}

func emailOf(country string) string { return country + "@un.test" }

// Ensure mocks implement the interfaces
var (
	_ secondary.SessionRepository   = (*mockSessionRepository)(nil)
	_ secondary.VotingRepository    = (*mockVotingRepository)(nil)
	_ secondary.CommitteeRepository = (*mockCommitteeRepository)(nil)
	_ secondary.EventRepository     = (*mockEventRepository)(nil)
	_ secondary.AuditWriter         = (*mockAuditWriter)(nil)
	_ secondary.EventPublisher      = (*mockPublisher)(nil)
)

// mockSessionRepository implements secondary.SessionRepository for testing.
type mockSessionRepository struct {
	sessions map[string]*secondary.SessionRecord
	order    []string
	// conflicts makes the next N saves fail with CONCURRENT_MODIFICATION.
	conflicts int
	saves     int
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{sessions: make(map[string]*secondary.SessionRecord)}
}

func (m *mockSessionRepository) Create(ctx context.Context, session *secondary.SessionRecord) error {
	if _, ok := m.sessions[session.ID]; ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	session.Version = 1
	stored := *session
	m.sessions[session.ID] = &stored
	m.order = append(m.order, session.ID)
	return nil
}

func (m *mockSessionRepository) GetByID(ctx context.Context, id string) (*secondary.SessionRecord, error) {
	r, ok := m.sessions[id]
	if !ok {
		return nil, procerr.NotFound("session", id)
	}
	out := *r
	return &out, nil
}

func (m *mockSessionRepository) Save(ctx context.Context, session *secondary.SessionRecord, expectedVersion int) error {
	m.saves++
	stored, ok := m.sessions[session.ID]
	if !ok {
		return procerr.NotFound("session", session.ID)
	}
	if m.conflicts > 0 {
		m.conflicts--
		return procerr.New(procerr.CodeConcurrentModification, "session %s was modified concurrently", session.ID)
	}
	if stored.Version != expectedVersion {
		return procerr.New(procerr.CodeConcurrentModification, "session %s version mismatch", session.ID)
	}
	session.Version = expectedVersion + 1
	out := *session
	m.sessions[session.ID] = &out
	return nil
}

func (m *mockSessionRepository) List(ctx context.Context, filters secondary.SessionFilters) ([]*secondary.SessionRecord, error) {
	var out []*secondary.SessionRecord
	for _, id := range m.order {
		r := m.sessions[id]
		if filters.CommitteeID != "" && r.CommitteeID != filters.CommitteeID {
			continue
		}
		if filters.Status != "" && r.Status != filters.Status {
			continue
		}
		c := *r
		out = append(out, &c)
	}
	return out, nil
}

func (m *mockSessionRepository) GetLive(ctx context.Context, committeeID string) (*secondary.SessionRecord, error) {
	for _, id := range m.order {
		r := m.sessions[id]
		if r.CommitteeID == committeeID && (r.Status == "active" || r.Status == "paused") {
			c := *r
			return &c, nil
		}
	}
	return nil, nil
}

func (m *mockSessionRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("SES-%03d", len(m.sessions)+1), nil
}

func (m *mockSessionRepository) GetNextNumber(ctx context.Context, committeeID string) (int, error) {
	n := 0
	for _, r := range m.sessions {
		if r.CommitteeID == committeeID && r.Number > n {
			n = r.Number
		}
	}
	return n + 1, nil
}

// mockVotingRepository implements secondary.VotingRepository for testing.
type mockVotingRepository struct {
	votings   map[string]*secondary.VotingRecord
	order     []string
	conflicts int
}

func newMockVotingRepository() *mockVotingRepository {
	return &mockVotingRepository{votings: make(map[string]*secondary.VotingRecord)}
}

func (m *mockVotingRepository) Create(ctx context.Context, voting *secondary.VotingRecord) error {
	voting.Version = 1
	stored := *voting
	m.votings[voting.ID] = &stored
	m.order = append(m.order, voting.ID)
	return nil
}

func (m *mockVotingRepository) GetByID(ctx context.Context, id string) (*secondary.VotingRecord, error) {
	r, ok := m.votings[id]
	if !ok {
		return nil, procerr.NotFound("voting", id)
	}
	out := *r
	return &out, nil
}

func (m *mockVotingRepository) Save(ctx context.Context, voting *secondary.VotingRecord, expectedVersion int) error {
	stored, ok := m.votings[voting.ID]
	if !ok {
		return procerr.NotFound("voting", voting.ID)
	}
	if m.conflicts > 0 {
		m.conflicts--
		return procerr.New(procerr.CodeConcurrentModification, "voting %s was modified concurrently", voting.ID)
	}
	if stored.Version != expectedVersion {
		return procerr.New(procerr.CodeConcurrentModification, "voting %s version mismatch", voting.ID)
	}
	voting.Version = expectedVersion + 1
	out := *voting
	m.votings[voting.ID] = &out
	return nil
}

func (m *mockVotingRepository) List(ctx context.Context, filters secondary.VotingFilters) ([]*secondary.VotingRecord, error) {
	var out []*secondary.VotingRecord
	for _, id := range m.order {
		r := m.votings[id]
		if filters.SessionID != "" && r.SessionID != filters.SessionID {
			continue
		}
		if filters.Status != "" && r.Status != filters.Status {
			continue
		}
		c := *r
		out = append(out, &c)
	}
	return out, nil
}

func (m *mockVotingRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("VOT-%03d", len(m.votings)+1), nil
}

// mockCommitteeRepository implements secondary.CommitteeRepository for testing.
type mockCommitteeRepository struct {
	committees map[string]*secondary.CommitteeRecord
	countries  map[string][]*secondary.CommitteeCountryRecord
}

func newMockCommitteeRepository() *mockCommitteeRepository {
	return &mockCommitteeRepository{
		committees: make(map[string]*secondary.CommitteeRecord),
		countries:  make(map[string][]*secondary.CommitteeCountryRecord),
	}
}

// seed adds a committee whose countries all have emails; veto lists the
// permanent members.
func (m *mockCommitteeRepository) seed(id string, countries []string, veto ...string) {
	m.committees[id] = &secondary.CommitteeRecord{ID: id, Name: "Committee " + id, CreatedAt: testT0.Format(time.RFC3339)}
	hasVeto := make(map[string]bool)
	for _, v := range veto {
		hasVeto[v] = true
	}
	for _, c := range countries {
		m.countries[id] = append(m.countries[id], &secondary.CommitteeCountryRecord{
			CommitteeID: id, Name: c, Email: emailOf(c), HasVetoRight: hasVeto[c],
		})
	}
}

func (m *mockCommitteeRepository) Create(ctx context.Context, committee *secondary.CommitteeRecord) error {
	for _, c := range m.committees {
		if c.Name == committee.Name {
			return procerr.New(procerr.CodeInvalidArgument, "committee %q already exists", committee.Name)
		}
	}
	stored := *committee
	m.committees[committee.ID] = &stored
	return nil
}

func (m *mockCommitteeRepository) GetByID(ctx context.Context, id string) (*secondary.CommitteeRecord, error) {
	c, ok := m.committees[id]
	if !ok {
		return nil, procerr.NotFound("committee", id)
	}
	out := *c
	return &out, nil
}

func (m *mockCommitteeRepository) List(ctx context.Context) ([]*secondary.CommitteeRecord, error) {
	var out []*secondary.CommitteeRecord
	for _, c := range m.committees {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCommitteeRepository) AddCountry(ctx context.Context, country *secondary.CommitteeCountryRecord) error {
	for _, c := range m.countries[country.CommitteeID] {
		if c.Name == country.Name || (country.Email != "" && c.Email == country.Email) {
			return procerr.New(procerr.CodeInvalidArgument, "%s is already on the roster", country.Name)
		}
	}
	stored := *country
	m.countries[country.CommitteeID] = append(m.countries[country.CommitteeID], &stored)
	return nil
}

func (m *mockCommitteeRepository) ListCountries(ctx context.Context, committeeID string) ([]*secondary.CommitteeCountryRecord, error) {
	return m.countries[committeeID], nil
}

func (m *mockCommitteeRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("COM-%03d", len(m.committees)+1), nil
}

// mockEventRepository implements secondary.EventRepository for testing.
type mockEventRepository struct {
	events    []*secondary.EventRecord
	appendErr error
}

func (m *mockEventRepository) Append(ctx context.Context, event *secondary.EventRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	stored := *event
	m.events = append(m.events, &stored)
	return nil
}

func (m *mockEventRepository) List(ctx context.Context, filters secondary.EventFilters) ([]*secondary.EventRecord, error) {
	var out []*secondary.EventRecord
	for _, e := range m.events {
		if filters.AggregateID != "" && e.AggregateID != filters.AggregateID {
			continue
		}
		if filters.Name != "" && e.Name != filters.Name {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockEventRepository) names() []string {
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Name
	}
	return out
}

func (m *mockEventRepository) last(name string) *secondary.EventRecord {
	for i := len(m.events) - 1; i >= 0; i-- {
		if m.events[i].Name == name {
			return m.events[i]
		}
	}
	return nil
}

type auditEntry struct {
	actor, entityType, entityID, action, field, oldValue, newValue, reason string
}

// mockAuditWriter implements secondary.AuditWriter for testing.
type mockAuditWriter struct {
	entries []auditEntry
}

func (m *mockAuditWriter) LogChange(ctx context.Context, entityType, entityID, action, fieldName, oldValue, newValue, reason string) error {
	m.entries = append(m.entries, auditEntry{
		actor:      ctxutil.ActorIDFromContext(ctx),
		entityType: entityType,
		entityID:   entityID,
		action:     action,
		field:      fieldName,
		oldValue:   oldValue,
		newValue:   newValue,
		reason:     reason,
	})
	return nil
}

// mockPublisher implements secondary.EventPublisher for testing.
type mockPublisher struct {
	published  []secondary.PublishedEvent
	publishErr error
}

func (m *mockPublisher) Publish(ctx context.Context, event secondary.PublishedEvent) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, event)
	return nil
}

// testEnv wires every service against in-memory mocks.
type testEnv struct {
	clock      *fakeClock
	sessions   *mockSessionRepository
	votings    *mockVotingRepository
	committees *mockCommitteeRepository
	events     *mockEventRepository
	audit      *mockAuditWriter
	publisher  *mockPublisher
	metrics    *Metrics

	sessionSvc *SessionServiceImpl
	votingSvc  *VotingServiceImpl
}

func newTestEnv(metrics *Metrics) *testEnv {
	env := &testEnv{
		clock:      newFakeClock(),
		sessions:   newMockSessionRepository(),
		votings:    newMockVotingRepository(),
		committees: newMockCommitteeRepository(),
		events:     &mockEventRepository{},
		audit:      &mockAuditWriter{},
		publisher:  &mockPublisher{},
		metrics:    metrics,
	}
	executor := NewEffectExecutor(env.events, env.publisher, env.audit, nil, env.clock.Now)
	cfg := ServiceConfig{Metrics: metrics, Clock: env.clock.Now, SaveRetries: 3}
	env.sessionSvc = NewSessionService(env.sessions, env.committees, executor, cfg)
	env.votingSvc = NewVotingService(env.votings, env.sessions, env.committees, executor, cfg)
	return env
}
