package pg

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/stegportal/portal/internal/config"
	"github.com/stegportal/portal/internal/session"
)

func mustSetup(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	dbName := "portal"
	dbUser := "user"
	dbPassword := "password"
	container, err := postgres.Run(ctx,
		"postgres:15.3-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			// postgres restarts once after initdb, so wait for the second readiness line
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	containerPort, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	port, err := strconv.Atoi(containerPort.Port())
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	storage, err := New(ctx, config.Pg{Host: host, Port: port, User: dbUser, Password: dbPassword, Dbname: dbName})
	require.NoError(t, err, "failed to connect to postgres container")
	t.Cleanup(func() { _ = storage.Cleanup() })
	return storage
}

func TestSessionStore(t *testing.T) {
	storage := mustSetup(t)
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := storage.Get(ctx, session.TokenKey)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("set overwrites", func(t *testing.T) {
		require.NoError(t, storage.Set(ctx, session.TokenKey, "abc"))
		require.NoError(t, storage.Set(ctx, session.TokenKey, "tok1"))

		v, err := storage.Get(ctx, session.TokenKey)
		require.NoError(t, err)
		assert.Equal(t, "tok1", v)
	})

	t.Run("scoped views share the table", func(t *testing.T) {
		visitor := session.Scoped(storage, "visitor-1")
		require.NoError(t, visitor.Set(ctx, session.TokenKey, "v1"))

		v, err := storage.Get(ctx, "visitor-1:"+session.TokenKey)
		require.NoError(t, err)
		assert.Equal(t, "v1", v)

		other, err := storage.Get(ctx, session.TokenKey)
		require.NoError(t, err)
		assert.Equal(t, "tok1", other)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, storage.Delete(ctx, session.TokenKey))
		_, err := storage.Get(ctx, session.TokenKey)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("schema init is idempotent", func(t *testing.T) {
		_, err := storage.db.ExecContext(ctx, initSQL)
		assert.NoError(t, err)
	})
}
