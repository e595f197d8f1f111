package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/presidium/internal/adapters/sqlite"
	"github.com/example/presidium/internal/ctxutil"
	"github.com/example/presidium/internal/ports/secondary"
)

func TestAuditWriterAdapter_LogChange(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAuditLogRepository(db)
	writer := sqlite.NewAuditWriterAdapter(repo)
	ctx := ctxutil.WithActor(context.Background(), ctxutil.Actor{ID: "chair", Email: "chair@un.test"})

	err := writer.LogChange(ctx, "timer", "SES-001/speaker", "adjust", "remaining", "50", "15", "speaker yielded")
	if err != nil {
		t.Fatalf("LogChange failed: %v", err)
	}

	entries, err := repo.List(context.Background(), secondary.AuditLogFilters{EntityType: "timer"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.ActorID != "chair@un.test" {
		t.Errorf("expected actor 'chair@un.test', got '%s'", e.ActorID)
	}
	if e.OldValue != "50" || e.NewValue != "15" {
		t.Errorf("expected 50 -> 15, got %s -> %s", e.OldValue, e.NewValue)
	}
	if e.Reason != "speaker yielded" {
		t.Errorf("expected reason, got '%s'", e.Reason)
	}
	if e.ID == "" {
		t.Error("expected generated ID")
	}
}

func TestAuditLogRepository_List_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAuditLogRepository(db)
	ctx := context.Background()

	for _, id := range []string{"AUD-1", "AUD-2", "AUD-3"} {
		err := repo.Create(ctx, &secondary.AuditLogRecord{
			ID: id, ActorID: "chair", EntityType: "session", EntityID: "SES-001", Action: "mode_change",
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	_ = repo.Create(ctx, &secondary.AuditLogRecord{ID: "AUD-4", ActorID: "vice", EntityType: "voting", EntityID: "VOT-001", Action: "cancel"})

	entries, _ := repo.List(ctx, secondary.AuditLogFilters{EntityID: "SES-001"})
	if len(entries) != 3 || entries[0].ID != "AUD-3" {
		t.Errorf("expected 3 entries newest first, got %d", len(entries))
	}

	byActor, _ := repo.List(ctx, secondary.AuditLogFilters{ActorID: "vice"})
	if len(byActor) != 1 || byActor[0].Action != "cancel" {
		t.Errorf("expected vice's cancel entry, got %+v", byActor)
	}
}
