// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets the values; services read them
// without importing net/http.
//
// Usage in services (read values):
//
//	actor := requestcontext.Actor(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithActor(ctx, "owner-7", requestcontext.RoleOwner)
package requestcontext

import (
	"context"
	"time"
)

// Role labels which party an HTTP caller claims to act as. There is no
// authentication behind it; the demo trusts the header at the boundary.
type Role string

const (
	RoleOwner      Role = "owner"
	RoleDomain     Role = "domain"
	RoleResearcher Role = "researcher"
)

// Context key types (unexported for encapsulation).
type (
	actorKey       struct{}
	actorRoleKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Actor retrieves the acting party identifier from the context.
func Actor(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok {
		return actor
	}
	return ""
}

// ActorRole retrieves the claimed role from the context.
func ActorRole(ctx context.Context) Role {
	if role, ok := ctx.Value(actorRoleKey{}).(Role); ok {
		return role
	}
	return ""
}

// WithActor injects the acting party and its claimed role into the context.
func WithActor(ctx context.Context, actor string, role Role) context.Context {
	ctx = context.WithValue(ctx, actorKey{}, actor)
	return context.WithValue(ctx, actorRoleKey{}, role)
}

// RequestID retrieves the correlation ID set by middleware.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// Now returns the request-scoped time when one was injected, falling back to
// the wall clock. Tests inject a fixed time to make expiry logic
// deterministic.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a fixed request time into the context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
