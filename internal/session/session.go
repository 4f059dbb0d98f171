// Package session is the key-value store the sign-up flow writes its token to.
// A Store starts empty; the only writer in the portal is a successful sign-up.
package session

import (
	"context"
	"errors"
)

// TokenKey is where the sign-up token lives. Writes overwrite.
const TokenKey = "token"

var ErrNotFound = errors.New("session value not found")

type Store interface {
	Set(ctx context.Context, key, value string) error
	// Get returns ErrNotFound when key was never set or was deleted.
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Scoped returns a view of store whose keys are prefixed with scope.
// The portal uses one scope per visitor.
func Scoped(store Store, scope string) Store {
	return &scoped{store: store, prefix: scope + ":"}
}

type scoped struct {
	store  Store
	prefix string
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.prefix+key, value)
}

func (s *scoped) Get(ctx context.Context, key string) (string, error) {
	return s.store.Get(ctx, s.prefix+key)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, s.prefix+key)
}
