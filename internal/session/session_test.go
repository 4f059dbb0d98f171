package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	t.Run("starts empty", func(t *testing.T) {
		_, err := store.Get(ctx, TokenKey)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("set overwrites", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, TokenKey, "abc"))
		require.NoError(t, store.Set(ctx, TokenKey, "def"))

		v, err := store.Get(ctx, TokenKey)
		require.NoError(t, err)
		assert.Equal(t, "def", v)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, TokenKey))
		_, err := store.Get(ctx, TokenKey)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, store.Delete(ctx, "missing"))
	})
}

func TestMemoryConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Set(ctx, fmt.Sprintf("k%d", i), "v")
			_, _ = store.Get(ctx, TokenKey)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, store.Len())
}

func TestScoped(t *testing.T) {
	ctx := context.Background()
	base := NewMemory()
	alice := Scoped(base, "alice")
	bob := Scoped(base, "bob")

	require.NoError(t, alice.Set(ctx, TokenKey, "a-token"))

	v, err := alice.Get(ctx, TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "a-token", v)

	_, err = bob.Get(ctx, TokenKey)
	assert.ErrorIs(t, err, ErrNotFound)

	raw, err := base.Get(ctx, "alice:"+TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "a-token", raw)

	require.NoError(t, alice.Delete(ctx, TokenKey))
	assert.Equal(t, 0, base.Len())
}
