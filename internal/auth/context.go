package auth

import (
	"context"

	"github.com/dukerupert/movienight/internal/model"
)

type contextKey struct{}

func WithSession(ctx context.Context, sess model.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

func FromContext(ctx context.Context) (model.Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(model.Session)
	return sess, ok
}

// UserID returns the signed-in user's id, or 0.
func UserID(ctx context.Context) int64 {
	sess, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return sess.User.ID
}
