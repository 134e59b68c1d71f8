//go:build integration

package easytag

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// setupPostgresContainer starts an ephemeral PostgreSQL and returns its DSN
func setupPostgresContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15",
		postgres.WithDatabase("easytag_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")
	return connStr
}

func TestPostgres_E2E_Contract(t *testing.T) {
	connStr := setupPostgresContainer(t)

	// each subtest gets its own tables through a fresh prefix
	n := 0
	runStorageContract(t, func(t *testing.T) TemplateStorage {
		n++
		storage, err := NewPostgresStorage(PostgresConfig{
			ConnectionString: connStr,
			TablePrefix:      "contract" + string(rune('a'+n)) + "_",
			AutoMigrate:      true,
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = storage.Close() })
		return storage
	})
}

func TestPostgres_E2E_Migrations(t *testing.T) {
	connStr := setupPostgresContainer(t)
	ctx := context.Background()

	core, logs := observer.New(zap.InfoLevel)
	storage, err := NewPostgresStorage(PostgresConfig{
		ConnectionString: connStr,
		AutoMigrate:      true,
		Logger:           zap.New(core),
	})
	require.NoError(t, err)
	defer storage.Close()

	assert.Equal(t, 1, logs.FilterMessage(LogMsgStorageMigrated).Len())

	version, err := storage.CurrentSchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	// a second run applies nothing
	require.NoError(t, storage.RunMigrations(ctx))
	assert.Equal(t, 1, logs.FilterMessage(LogMsgStorageMigrated).Len())
}

func TestPostgres_E2E_StorageEngine(t *testing.T) {
	connStr := setupPostgresContainer(t)
	ctx := context.Background()

	storage, err := OpenStorage(StorageDriverPostgres, connStr)
	require.NoError(t, err)

	se, err := NewStorageEngine(StorageEngineConfig{Storage: storage})
	require.NoError(t, err)
	defer se.Close()

	require.NoError(t, se.Save(ctx, &StoredTemplate{Name: "hello", Source: "{% repeat 2 %}{{ w }}{% endrepeat %}"}))
	out, err := se.Execute(ctx, "hello", map[string]any{"w": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hihi", out)
}
