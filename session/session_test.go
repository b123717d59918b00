package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	t.Run("starts unauthenticated", func(t *testing.T) {
		token, err := store.Token(ctx)
		require.NoError(t, err)
		assert.Empty(t, token)

		user, err := store.User(ctx)
		require.NoError(t, err)
		assert.Nil(t, user)

		ok, err := store.Authenticated(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("login captures credentials", func(t *testing.T) {
		err := store.SetCredentials(ctx, "token-abc", &User{ID: "u1", Name: "Ana", Email: "ana@example.com"})
		require.NoError(t, err)

		token, err := store.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, "token-abc", token)

		user, err := store.User(ctx)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "Ana", user.Name)

		ok, err := store.Authenticated(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("clear wipes everything", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx))

		token, err := store.Token(ctx)
		require.NoError(t, err)
		assert.Empty(t, token)

		user, err := store.User(ctx)
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}

// Mutating what SetCredentials received or what User returned must not
// leak into the store.
func TestMemoryStoreCopiesUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	original := &User{ID: "u1", Name: "Ana", Email: "ana@example.com"}
	require.NoError(t, store.SetCredentials(ctx, "token", original))
	original.Name = "mutated"

	got, err := store.User(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)

	got.Name = "also mutated"
	again, err := store.User(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana", again.Name)
}

func TestMemoryStoreNilUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.SetCredentials(ctx, "token-only", nil))

	token, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-only", token)

	user, err := store.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.SetCredentials(ctx, "token", &User{ID: "u1"})
		}()
		go func() {
			defer wg.Done()
			_, _ = store.Token(ctx)
			_, _ = store.User(ctx)
		}()
	}
	wg.Wait()

	token, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token", token)
}
