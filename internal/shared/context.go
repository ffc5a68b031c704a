package shared

import "context"

type actorContextKey struct{}

// ContextWithActor stores the acting user's identifier in context. The
// identifier is resolved by the identity collaborator in front of this
// service; nothing here authenticates.
func ContextWithActor(ctx context.Context, actorID int64) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actorID)
}

// ActorFromContext extracts the acting user's identifier. The second return
// is false when no actor was resolved for this request.
func ActorFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(actorContextKey{}).(int64)
	return id, ok && id > 0
}
