// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// ActorKey is the context key for the acting identity.
// Exported so it can be used consistently across packages.
type ActorKey struct{}

// Actor is the caller identity every mutating operation requires.
type Actor struct {
	ID      string
	Email   string
	Country string
	Role    string
}

// Name returns the identity recorded in audit fields: email, else ID.
func (a Actor) Name() string {
	if a.Email != "" {
		return a.Email
	}
	return a.ID
}

// WithActor returns a context with the actor embedded.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ActorKey{}, actor)
}

// WithActorID returns a context carrying an actor known only by ID.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return WithActor(ctx, Actor{ID: actorID})
}

// ActorFromContext returns the actor from context, and whether one was set.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ActorKey{}).(Actor)
	return a, ok
}

// ActorIDFromContext returns the actor's audit name, or empty string if not set.
func ActorIDFromContext(ctx context.Context) string {
	a, _ := ActorFromContext(ctx)
	return a.Name()
}
