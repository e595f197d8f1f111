// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/presidium/internal/core/effects"
	"github.com/example/presidium/internal/ctxutil"
	"github.com/example/presidium/internal/ports/secondary"
)

// EffectExecutor interprets and executes effects.
// This is the "Imperative Shell" - the only place I/O happens.
type EffectExecutor interface {
	Execute(ctx context.Context, effs []effects.Effect) error
}

// DefaultEffectExecutor persists events to the outbox, publishes them on the
// bus, writes audit entries and emits log lines.
type DefaultEffectExecutor struct {
	eventRepo secondary.EventRepository
	publisher secondary.EventPublisher
	audit     secondary.AuditWriter
	logger    *slog.Logger
	clock     Clock
}

// NewEffectExecutor creates a new DefaultEffectExecutor. publisher may be nil.
func NewEffectExecutor(
	eventRepo secondary.EventRepository,
	publisher secondary.EventPublisher,
	audit secondary.AuditWriter,
	logger *slog.Logger,
	clock Clock,
) *DefaultEffectExecutor {
	return &DefaultEffectExecutor{
		eventRepo: eventRepo,
		publisher: publisher,
		audit:     audit,
		logger:    orDiscard(logger),
		clock:     orSystemClock(clock),
	}
}

// Execute processes a slice of effects, executing each in sequence.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) error {
	for _, eff := range effs {
		if err := e.executeOne(ctx, eff); err != nil {
			return fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
		}
	}
	return nil
}

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, eff effects.Effect) error {
	switch typed := eff.(type) {
	case effects.EventEffect:
		return e.executeEvent(ctx, typed)
	case effects.AuditEffect:
		return e.audit.LogChange(ctx, typed.EntityType, typed.EntityID, typed.Action, typed.FieldName, typed.OldValue, typed.NewValue, typed.Reason)
	case effects.LogEffect:
		e.executeLog(ctx, typed)
		return nil
	case effects.CompositeEffect:
		return e.Execute(ctx, typed.Effects)
	case effects.NoEffect:
		return nil
	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) executeEvent(ctx context.Context, eff effects.EventEffect) error {
	payload, err := json.Marshal(eff.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", eff.Name, err)
	}

	visibility := eff.Visibility
	if visibility == "" {
		visibility = effects.VisibilityPublic
	}
	createdAt := e.clock().UTC().Format(time.RFC3339)

	record := &secondary.EventRecord{
		ID:            "EVT-" + uuid.NewString(),
		Name:          eff.Name,
		AggregateType: eff.AggregateType,
		AggregateID:   eff.AggregateID,
		CommitteeID:   eff.CommitteeID,
		Visibility:    string(visibility),
		ActorID:       ctxutil.ActorIDFromContext(ctx),
		Payload:       payload,
		CreatedAt:     createdAt,
	}
	if err := e.eventRepo.Append(ctx, record); err != nil {
		return err
	}

	if e.publisher == nil {
		return nil
	}
	// The event is already durable; a failed broadcast is not the caller's error.
	if err := e.publisher.Publish(ctx, secondary.PublishedEvent{
		ID:            record.ID,
		Name:          record.Name,
		AggregateType: record.AggregateType,
		AggregateID:   record.AggregateID,
		CommitteeID:   record.CommitteeID,
		Visibility:    record.Visibility,
		Payload:       eff.Payload,
		CreatedAt:     createdAt,
	}); err != nil {
		e.logger.WarnContext(ctx, "event not broadcast", "event", record.Name, "event_id", record.ID, "error", err)
	}
	return nil
}

func (e *DefaultEffectExecutor) executeLog(ctx context.Context, eff effects.LogEffect) {
	attrs := make([]any, 0, 2*len(eff.Fields))
	for k, v := range eff.Fields {
		attrs = append(attrs, k, v)
	}
	e.logger.Log(ctx, logLevel(eff.Level), eff.Message, attrs...)
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
