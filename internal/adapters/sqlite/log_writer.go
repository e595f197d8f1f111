package sqlite

import (
	"context"

	"github.com/google/uuid"

	"github.com/example/presidium/internal/ctxutil"
	"github.com/example/presidium/internal/ports/secondary"
)

// AuditWriterAdapter implements secondary.AuditWriter using AuditLogRepository.
type AuditWriterAdapter struct {
	auditRepo secondary.AuditLogRepository
}

// NewAuditWriterAdapter creates a new AuditWriterAdapter.
func NewAuditWriterAdapter(auditRepo secondary.AuditLogRepository) *AuditWriterAdapter {
	return &AuditWriterAdapter{auditRepo: auditRepo}
}

// LogChange records a change to one field of an entity on behalf of the
// actor carried in ctx.
func (w *AuditWriterAdapter) LogChange(ctx context.Context, entityType, entityID, action, fieldName, oldValue, newValue, reason string) error {
	record := &secondary.AuditLogRecord{
		ID:         "AUD-" + uuid.NewString(),
		ActorID:    ctxutil.ActorIDFromContext(ctx),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		FieldName:  fieldName,
		OldValue:   oldValue,
		NewValue:   newValue,
		Reason:     reason,
	}

	return w.auditRepo.Create(ctx, record)
}

// Ensure AuditWriterAdapter implements the interface
var _ secondary.AuditWriter = (*AuditWriterAdapter)(nil)
