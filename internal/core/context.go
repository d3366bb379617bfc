package core

import "context"

type contextKey string

const ctxKeyActor contextKey = "actor"

// Actor identifies who is calling and for which tenant.
type Actor struct {
	Tenant string
	UserID string
	Role   Role
}

// ContextWithActor attaches the calling actor to ctx.
func ContextWithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKeyActor, a)
}

// ActorFromContext returns the actor stored by ContextWithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKeyActor).(Actor)
	return a, ok
}
