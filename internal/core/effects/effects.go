// Package effects defines effect types as data structures representing I/O operations.
// This is the foundation of the Functional Core / Imperative Shell pattern.
// Effects are pure data - they describe what should happen, not how.
package effects

// Effect is the base interface for all effects.
// Effects represent I/O operations as data that can be interpreted by the shell.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// Visibility tells the broadcaster who may see an event payload.
type Visibility string

const (
	// VisibilityPublic payloads may be fanned out to every participant.
	VisibilityPublic Visibility = "public"
	// VisibilityPresidium payloads carry details only the presidium may see
	// until the subject is completed.
	VisibilityPresidium Visibility = "presidium"
	// VisibilityAfterCompletion payload details may be released to everyone
	// once the voting is completed.
	VisibilityAfterCompletion Visibility = "after-completion"
)

// EventEffect represents a named domain event to persist and publish.
type EventEffect struct {
	Name          string // e.g., "session-started", "vote-cast"
	AggregateType string // "session" or "voting"
	AggregateID   string
	CommitteeID   string
	Visibility    Visibility
	Payload       map[string]any
}

func (e EventEffect) EffectType() string { return "event" }

// LogEffect represents a logging operation.
type LogEffect struct {
	Level   string
	Message string
	Fields  map[string]any
}

func (e LogEffect) EffectType() string { return "log" }

// AuditEffect represents an audit-log entry for a presidium correction or
// procedural change.
type AuditEffect struct {
	EntityType string // e.g., "session", "timer", "voting"
	EntityID   string
	Action     string // e.g., "adjust", "mode_change", "cancel"
	FieldName  string
	OldValue   string
	NewValue   string
	Reason     string
}

func (e AuditEffect) EffectType() string { return "audit" }

// CompositeEffect holds multiple effects to be executed in sequence.
type CompositeEffect struct {
	Effects []Effect
}

func (e CompositeEffect) EffectType() string { return "composite" }

// NoEffect represents an operation that produces no side effects.
type NoEffect struct{}

func (e NoEffect) EffectType() string { return "none" }

// Event is a convenience constructor for a public EventEffect.
func Event(name, aggregateType, aggregateID, committeeID string, payload map[string]any) EventEffect {
	return EventEffect{
		Name:          name,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		CommitteeID:   committeeID,
		Visibility:    VisibilityPublic,
		Payload:       payload,
	}
}

// Events returns every EventEffect in effs, flattening composites.
func Events(effs []Effect) []EventEffect {
	var out []EventEffect
	for _, e := range effs {
		switch typed := e.(type) {
		case EventEffect:
			out = append(out, typed)
		case CompositeEffect:
			out = append(out, Events(typed.Effects)...)
		}
	}
	return out
}

// Names returns the event names in effs, in order.
func Names(effs []Effect) []string {
	events := Events(effs)
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Name
	}
	return out
}
