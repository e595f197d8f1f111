package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/presidium/internal/adapters/sqlite"
	"github.com/example/presidium/internal/core/procerr"
	"github.com/example/presidium/internal/ports/secondary"
)

func TestVotingRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	seedCommittee(t, db, "COM-001", "")
	seedSession(t, db, "SES-001", "COM-001", 1, "active")
	repo := sqlite.NewVotingRepository(db)
	ctx := context.Background()

	id, err := repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "VOT-001" {
		t.Errorf("expected 'VOT-001', got '%s'", id)
	}

	record := &secondary.VotingRecord{
		ID:          id,
		SessionID:   "SES-001",
		CommitteeID: "COM-001",
		Status:      "pending",
		Document:    []byte(`{"title":"Resolution 1"}`),
	}
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if retrieved.SessionID != "SES-001" {
		t.Errorf("expected session 'SES-001', got '%s'", retrieved.SessionID)
	}
	if retrieved.Version != 1 {
		t.Errorf("expected version 1, got %d", retrieved.Version)
	}

	next, _ := repo.GetNextID(ctx)
	if next != "VOT-002" {
		t.Errorf("expected 'VOT-002', got '%s'", next)
	}
}

func TestVotingRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewVotingRepository(db)

	_, err := repo.GetByID(context.Background(), "VOT-404")
	if !procerr.IsCode(err, procerr.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestVotingRepository_Save_OptimisticVersion(t *testing.T) {
	db := setupTestDB(t)
	seedCommittee(t, db, "COM-001", "")
	seedSession(t, db, "SES-001", "COM-001", 1, "active")
	repo := sqlite.NewVotingRepository(db)
	ctx := context.Background()

	record := &secondary.VotingRecord{ID: "VOT-001", SessionID: "SES-001", CommitteeID: "COM-001", Status: "pending", Document: []byte(`{}`)}
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Two writers load version 1; only the first save wins.
	a := &secondary.VotingRecord{ID: "VOT-001", Status: "active", Document: []byte(`{"votes":["France"]}`)}
	b := &secondary.VotingRecord{ID: "VOT-001", Status: "active", Document: []byte(`{"votes":["Japan"]}`)}

	if err := repo.Save(ctx, a, 1); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	err := repo.Save(ctx, b, 1)
	if !procerr.IsCode(err, procerr.CodeConcurrentModification) {
		t.Fatalf("expected CONCURRENT_MODIFICATION, got %v", err)
	}

	retrieved, _ := repo.GetByID(ctx, "VOT-001")
	if string(retrieved.Document) != `{"votes":["France"]}` {
		t.Errorf("expected first writer's document, got %s", retrieved.Document)
	}
}

func TestVotingRepository_List(t *testing.T) {
	db := setupTestDB(t)
	seedCommittee(t, db, "COM-001", "")
	seedSession(t, db, "SES-001", "COM-001", 1, "completed")
	seedSession(t, db, "SES-002", "COM-001", 2, "active")
	repo := sqlite.NewVotingRepository(db)
	ctx := context.Background()

	for _, r := range []*secondary.VotingRecord{
		{ID: "VOT-001", SessionID: "SES-001", CommitteeID: "COM-001", Status: "completed", Document: []byte(`{}`)},
		{ID: "VOT-002", SessionID: "SES-002", CommitteeID: "COM-001", Status: "active", Document: []byte(`{}`)},
		{ID: "VOT-003", SessionID: "SES-002", CommitteeID: "COM-001", Status: "pending", Document: []byte(`{}`)},
	} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	bySession, err := repo.List(ctx, secondary.VotingFilters{SessionID: "SES-002"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(bySession) != 2 {
		t.Errorf("expected 2 votings, got %d", len(bySession))
	}

	active, _ := repo.List(ctx, secondary.VotingFilters{Status: "active"})
	if len(active) != 1 || active[0].ID != "VOT-002" {
		t.Errorf("expected only VOT-002 active, got %d", len(active))
	}

	limited, _ := repo.List(ctx, secondary.VotingFilters{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("expected limit to apply, got %d", len(limited))
	}
}
