package service

import "context"

type actorKey struct{}

// WithActor кладет в ctx пользователя, от имени которого выполняется действие
func WithActor(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFrom - пользователь из WithActor, 0 если не задан
func ActorFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(actorKey{}).(int64)
	return id
}
