package app

import (
	"context"
	"fmt"

	"github.com/example/presidium/internal/ports/primary"
	"github.com/example/presidium/internal/ports/secondary"
)

// EventLogServiceImpl implements the EventLogService interface.
type EventLogServiceImpl struct {
	eventRepo secondary.EventRepository
	auditRepo secondary.AuditLogRepository
}

// NewEventLogService creates a new EventLogService with injected dependencies.
func NewEventLogService(eventRepo secondary.EventRepository, auditRepo secondary.AuditLogRepository) *EventLogServiceImpl {
	return &EventLogServiceImpl{
		eventRepo: eventRepo,
		auditRepo: auditRepo,
	}
}

// ListEvents retrieves emitted domain events, oldest first.
func (s *EventLogServiceImpl) ListEvents(ctx context.Context, filters primary.EventFilters) ([]*primary.Event, error) {
	records, err := s.eventRepo.List(ctx, secondary.EventFilters{
		CommitteeID: filters.CommitteeID,
		AggregateID: filters.AggregateID,
		Name:        filters.Name,
		Limit:       filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]*primary.Event, len(records))
	for i, r := range records {
		events[i] = s.recordToEvent(r)
	}
	return events, nil
}

// ListAudit retrieves audit entries, newest first.
func (s *EventLogServiceImpl) ListAudit(ctx context.Context, filters primary.AuditFilters) ([]*primary.AuditEntry, error) {
	records, err := s.auditRepo.List(ctx, secondary.AuditLogFilters{
		EntityType: filters.EntityType,
		EntityID:   filters.EntityID,
		ActorID:    filters.ActorID,
		Limit:      filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log: %w", err)
	}

	entries := make([]*primary.AuditEntry, len(records))
	for i, r := range records {
		entries[i] = s.recordToAuditEntry(r)
	}
	return entries, nil
}

// Helper methods

func (s *EventLogServiceImpl) recordToEvent(r *secondary.EventRecord) *primary.Event {
	return &primary.Event{
		ID:            r.ID,
		Name:          r.Name,
		AggregateType: r.AggregateType,
		AggregateID:   r.AggregateID,
		CommitteeID:   r.CommitteeID,
		Visibility:    r.Visibility,
		ActorID:       r.ActorID,
		Payload:       string(r.Payload),
		CreatedAt:     r.CreatedAt,
	}
}

func (s *EventLogServiceImpl) recordToAuditEntry(r *secondary.AuditLogRecord) *primary.AuditEntry {
	return &primary.AuditEntry{
		ID:         r.ID,
		ActorID:    r.ActorID,
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		Action:     r.Action,
		FieldName:  r.FieldName,
		OldValue:   r.OldValue,
		NewValue:   r.NewValue,
		Reason:     r.Reason,
		CreatedAt:  r.CreatedAt,
	}
}

// Ensure EventLogServiceImpl implements the interface
var _ primary.EventLogService = (*EventLogServiceImpl)(nil)
