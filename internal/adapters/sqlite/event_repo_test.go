package sqlite_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/example/presidium/internal/adapters/sqlite"
	"github.com/example/presidium/internal/ports/secondary"
)

func TestEventRepository_AppendAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewEventRepository(db)
	ctx := context.Background()

	names := []string{"session-created", "session-started", "roll-call-started"}
	for i, name := range names {
		err := repo.Append(ctx, &secondary.EventRecord{
			ID:            fmt.Sprintf("EVT-%d", i),
			Name:          name,
			AggregateType: "session",
			AggregateID:   "SES-001",
			CommitteeID:   "COM-001",
			Visibility:    "public",
			ActorID:       "chair@un.test",
			Payload:       []byte(`{"sessionId":"SES-001"}`),
			CreatedAt:     "2026-03-01T10:00:00Z",
		})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	_ = repo.Append(ctx, &secondary.EventRecord{
		ID: "EVT-X", Name: "voting-created", AggregateType: "voting", AggregateID: "VOT-001",
		CommitteeID: "COM-002", Visibility: "public", Payload: []byte(`{}`),
	})

	events, err := repo.List(ctx, secondary.EventFilters{AggregateID: "SES-001"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, name := range names {
		if events[i].Name != name {
			t.Errorf("event %d: expected '%s', got '%s'", i, name, events[i].Name)
		}
	}
	if events[0].CreatedAt != "2026-03-01T10:00:00Z" {
		t.Errorf("expected supplied timestamp, got '%s'", events[0].CreatedAt)
	}

	byName, _ := repo.List(ctx, secondary.EventFilters{Name: "voting-created"})
	if len(byName) != 1 || byName[0].ActorID != "" {
		t.Errorf("expected one voting event without actor, got %+v", byName)
	}

	byCommittee, _ := repo.List(ctx, secondary.EventFilters{CommitteeID: "COM-001", Limit: 2})
	if len(byCommittee) != 2 {
		t.Errorf("expected limit of 2, got %d", len(byCommittee))
	}
}
