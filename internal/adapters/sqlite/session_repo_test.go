package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/example/presidium/internal/adapters/sqlite"
	"github.com/example/presidium/internal/core/procerr"
	"github.com/example/presidium/internal/ports/secondary"
)

func setupSessionTestDB(t *testing.T) *sql.DB {
	t.Helper()
	testDB := setupTestDB(t)
	seedCommittee(t, testDB, "COM-001", "Security Council")
	return testDB
}

// createTestSession is a helper that creates a session with generated ID and number.
func createTestSession(t *testing.T, repo *sqlite.SessionRepository, ctx context.Context, committeeID string) *secondary.SessionRecord {
	t.Helper()

	nextID, err := repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	number, err := repo.GetNextNumber(ctx, committeeID)
	if err != nil {
		t.Fatalf("GetNextNumber failed: %v", err)
	}

	record := &secondary.SessionRecord{
		ID:          nextID,
		CommitteeID: committeeID,
		Number:      number,
		Status:      "inactive",
		Document:    []byte(`{"status":"inactive"}`),
	}
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return record
}

func TestSessionRepository_Create(t *testing.T) {
	db := setupSessionTestDB(t)
	repo := sqlite.NewSessionRepository(db)
	ctx := context.Background()

	record := createTestSession(t, repo, ctx, "COM-001")
	if record.ID != "SES-001" {
		t.Errorf("expected ID 'SES-001', got '%s'", record.ID)
	}
	if record.Version != 1 {
		t.Errorf("expected version 1, got %d", record.Version)
	}

	retrieved, err := repo.GetByID(ctx, "SES-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if string(retrieved.Document) != `{"status":"inactive"}` {
		t.Errorf("unexpected document %s", retrieved.Document)
	}
	if retrieved.Number != 1 {
		t.Errorf("expected number 1, got %d", retrieved.Number)
	}
	if retrieved.CreatedAt == "" {
		t.Error("expected CreatedAt to be set")
	}
}

func TestSessionRepository_GetByID_NotFound(t *testing.T) {
	db := setupSessionTestDB(t)
	repo := sqlite.NewSessionRepository(db)

	_, err := repo.GetByID(context.Background(), "SES-999")
	if !procerr.IsCode(err, procerr.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestSessionRepository_Save_BumpsVersion(t *testing.T) {
	db := setupSessionTestDB(t)
	repo := sqlite.NewSessionRepository(db)
	ctx := context.Background()

	record := createTestSession(t, repo, ctx, "COM-001")
	record.Status = "active"
	record.Document = []byte(`{"status":"active"}`)

	if err := repo.Save(ctx, record, 1); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if record.Version != 2 {
		t.Errorf("expected version 2, got %d", record.Version)
	}

	retrieved, _ := repo.GetByID(ctx, record.ID)
	if retrieved.Status != "active" {
		t.Errorf("expected status 'active', got '%s'", retrieved.Status)
	}
	if retrieved.Version != 2 {
		t.Errorf("expected stored version 2, got %d", retrieved.Version)
	}
}

func TestSessionRepository_Save_StaleVersion(t *testing.T) {
	db := setupSessionTestDB(t)
	repo := sqlite.NewSessionRepository(db)
	ctx := context.Background()

	record := createTestSession(t, repo, ctx, "COM-001")
	if err := repo.Save(ctx, record, 1); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	stale := &secondary.SessionRecord{ID: record.ID, Status: "paused", Document: []byte(`{}`)}
	err := repo.Save(ctx, stale, 1)
	if !procerr.IsCode(err, procerr.CodeConcurrentModification) {
		t.Fatalf("expected CONCURRENT_MODIFICATION, got %v", err)
	}

	retrieved, _ := repo.GetByID(ctx, record.ID)
	if retrieved.Status != "inactive" {
		t.Errorf("stale save must not apply, got status '%s'", retrieved.Status)
	}
}

func TestSessionRepository_Save_Missing(t *testing.T) {
	db := setupSessionTestDB(t)
	repo := sqlite.NewSessionRepository(db)

	err := repo.Save(context.Background(), &secondary.SessionRecord{ID: "SES-404", Status: "active", Document: []byte(`{}`)}, 1)
	if !procerr.IsCode(err, procerr.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestSessionRepository_SecondLiveSessionRejected(t *testing.T) {
	db := setupSessionTestDB(t)
	repo := sqlite.NewSessionRepository(db)
	ctx := context.Background()

	first := createTestSession(t, repo, ctx, "COM-001")
	first.Status = "active"
	if err := repo.Save(ctx, first, first.Version); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second := createTestSession(t, repo, ctx, "COM-001")
	second.Status = "active"
	err := repo.Save(ctx, second, second.Version)
	if !procerr.IsCode(err, procerr.CodeInvalidState) {
		t.Errorf("expected INVALID_STATE for a second live session, got %v", err)
	}
}

func TestSessionRepository_GetLive(t *testing.T) {
	db := setupSessionTestDB(t)
	repo := sqlite.NewSessionRepository(db)
	ctx := context.Background()

	live, err := repo.GetLive(ctx, "COM-001")
	if err != nil {
		t.Fatalf("GetLive failed: %v", err)
	}
	if live != nil {
		t.Fatalf("expected no live session, got %s", live.ID)
	}

	seedSession(t, db, "SES-001", "COM-001", 1, "completed")
	seedSession(t, db, "SES-002", "COM-001", 2, "paused")

	live, err = repo.GetLive(ctx, "COM-001")
	if err != nil {
		t.Fatalf("GetLive failed: %v", err)
	}
	if live == nil || live.ID != "SES-002" {
		t.Errorf("expected SES-002 to be live, got %+v", live)
	}
}

func TestSessionRepository_List_Filters(t *testing.T) {
	db := setupSessionTestDB(t)
	repo := sqlite.NewSessionRepository(db)
	ctx := context.Background()

	seedCommittee(t, db, "COM-002", "Assembly")
	seedSession(t, db, "SES-001", "COM-001", 1, "completed")
	seedSession(t, db, "SES-002", "COM-001", 2, "active")
	seedSession(t, db, "SES-003", "COM-002", 1, "inactive")

	all, err := repo.List(ctx, secondary.SessionFilters{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 sessions, got %d", len(all))
	}

	byCommittee, _ := repo.List(ctx, secondary.SessionFilters{CommitteeID: "COM-001"})
	if len(byCommittee) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(byCommittee))
	}
	if byCommittee[0].Number != 2 {
		t.Errorf("expected newest session first, got number %d", byCommittee[0].Number)
	}

	byStatus, _ := repo.List(ctx, secondary.SessionFilters{Status: "inactive"})
	if len(byStatus) != 1 || byStatus[0].ID != "SES-003" {
		t.Errorf("expected only SES-003, got %d sessions", len(byStatus))
	}
}

func TestSessionRepository_GetNextNumber_PerCommittee(t *testing.T) {
	db := setupSessionTestDB(t)
	repo := sqlite.NewSessionRepository(db)
	ctx := context.Background()

	seedCommittee(t, db, "COM-002", "Assembly")
	seedSession(t, db, "SES-001", "COM-001", 1, "completed")
	seedSession(t, db, "SES-002", "COM-001", 2, "completed")

	n1, _ := repo.GetNextNumber(ctx, "COM-001")
	n2, _ := repo.GetNextNumber(ctx, "COM-002")
	if n1 != 3 {
		t.Errorf("expected next number 3 for COM-001, got %d", n1)
	}
	if n2 != 1 {
		t.Errorf("expected next number 1 for COM-002, got %d", n2)
	}

	id, _ := repo.GetNextID(ctx)
	if id != "SES-003" {
		t.Errorf("expected next ID 'SES-003', got '%s'", id)
	}
}
