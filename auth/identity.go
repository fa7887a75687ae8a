package auth

import (
	"context"
	"errors"

	"github.com/andrebq/pressbox/blog"
)

type (
	ctxKey byte
)

var (
	identityKey = ctxKey(1)
	tokenKey    = ctxKey(2)
)

// ResolveIdentity reconstructs the request identity from the user id
// stored in the session. A user that no longer exists resolves to
// anonymous, never to a stale identity.
func ResolveIdentity(ctx context.Context, store *blog.Store, userID int64) (*blog.User, error) {
	if userID == 0 {
		return nil, nil
	}
	user, err := store.GetUser(ctx, userID)
	var notFound blog.UserNotFound
	if errors.As(err, &notFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &user, nil
}

// WithIdentity threads the resolved identity through the request
// context, handlers and the authorization gate read it back with
// IdentityFrom.
func WithIdentity(ctx context.Context, user *blog.User) context.Context {
	return context.WithValue(ctx, identityKey, user)
}

func IdentityFrom(ctx context.Context) *blog.User {
	v := ctx.Value(identityKey)
	if v == nil {
		return nil
	}
	return v.(*blog.User)
}

func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

func TokenFrom(ctx context.Context) string {
	v := ctx.Value(tokenKey)
	if v == nil {
		return ""
	}
	return v.(string)
}
