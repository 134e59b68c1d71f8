package easytag

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPostgresConfig(t *testing.T) {
	cfg := DefaultPostgresConfig()
	assert.Equal(t, DefaultMaxOpenConns, cfg.MaxOpenConns)
	assert.Equal(t, DefaultMaxIdleConns, cfg.MaxIdleConns)
	assert.Equal(t, DefaultConnMaxLifetime, cfg.ConnMaxLifetime)
	assert.Equal(t, DefaultPostgresPrefix, cfg.TablePrefix)
	assert.Equal(t, DefaultQueryTimeout, cfg.QueryTimeout)
	assert.False(t, cfg.AutoMigrate)
	assert.Nil(t, cfg.Logger)
}

func TestPostgresConfig_ApplyDefaults(t *testing.T) {
	cfg := PostgresConfig{TablePrefix: "custom_", QueryTimeout: time.Second}
	cfg.applyDefaults()
	assert.Equal(t, "custom_", cfg.TablePrefix)
	assert.Equal(t, time.Second, cfg.QueryTimeout)
	assert.Equal(t, DefaultMaxOpenConns, cfg.MaxOpenConns)
	assert.NotNil(t, cfg.Logger)
}

func TestNewPostgresStorage_Errors(t *testing.T) {
	_, err := NewPostgresStorage(PostgresConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgPostgresEmptyConn)

	_, err = OpenStorage(StorageDriverPostgres, "")
	require.Error(t, err)
	assert.True(t, IsStorageError(err))

	_, err = NewPostgresStorage(PostgresConfig{
		ConnectionString: "invalid://not-a-valid-connection-string",
		QueryTimeout:     2 * time.Second,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgPostgresConnect)
}

func TestPostgresStorage_TableNames(t *testing.T) {
	storage := &PostgresStorage{config: PostgresConfig{TablePrefix: "custom_"}}
	assert.Equal(t, "custom_templates", storage.tableName())
	assert.Equal(t, "custom_schema_migrations", storage.migrationsTableName())

	migrations := storage.migrations()
	require.NotEmpty(t, migrations)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Contains(t, migrations[0].SQL, "CREATE TABLE IF NOT EXISTS custom_templates")
}

func TestPostgresStorage_ListQuery(t *testing.T) {
	storage := &PostgresStorage{config: PostgresConfig{TablePrefix: "t_"}}

	tests := []struct {
		name     string
		query    *TemplateQuery
		expected string
		args     []any
	}{
		{
			name:     "latest only",
			query:    &TemplateQuery{},
			expected: "SELECT DISTINCT ON (name) " + postgresTemplateColumns + " FROM t_templates ORDER BY name ASC, version DESC",
		},
		{
			name:  "filters and paging",
			query: &TemplateQuery{NamePrefix: "mail", Tags: []string{"a", "b"}, IncludeAllVersions: true, Limit: 5, Offset: 10},
			expected: "SELECT " + postgresTemplateColumns + " FROM t_templates" +
				" WHERE name LIKE $1 AND tags @> $2::jsonb AND tags @> $3::jsonb" +
				" ORDER BY name ASC, version DESC LIMIT 5 OFFSET 10",
			args: []any{"mail%", `["a"]`, `["b"]`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := storage.listQuery(tt.query)
			assert.Equal(t, tt.expected, sql)
			assert.Equal(t, tt.args, args)
		})
	}
}

// fakeRow feeds fixed column values to scanStoredTemplate
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *int:
			*p = r.values[i].(int)
		case *[]byte:
			if r.values[i] != nil {
				*p = r.values[i].([]byte)
			}
		case *time.Time:
			*p = r.values[i].(time.Time)
		}
	}
	return nil
}

func TestScanStoredTemplate(t *testing.T) {
	now := time.Now()
	tmpl, err := scanStoredTemplate(fakeRow{values: []any{
		"tmpl_1", "greeting", "src", 3, []byte(`{"author":"ann"}`), []byte(`["a","b"]`), now, now,
	}})
	require.NoError(t, err)
	assert.Equal(t, TemplateID("tmpl_1"), tmpl.ID)
	assert.Equal(t, 3, tmpl.Version)
	assert.Equal(t, "ann", tmpl.Metadata["author"])
	assert.Equal(t, []string{"a", "b"}, tmpl.Tags)

	tmpl, err = scanStoredTemplate(fakeRow{values: []any{
		"tmpl_2", "bare", "src", 1, []byte("null"), nil, now, now,
	}})
	require.NoError(t, err)
	assert.Nil(t, tmpl.Metadata)
	assert.Nil(t, tmpl.Tags)

	_, err = scanStoredTemplate(fakeRow{values: []any{
		"tmpl_3", "bad", "src", 1, []byte("{"), nil, now, now,
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgStorageEncoding)

	scanErr := errors.New("scan failed")
	_, err = scanStoredTemplate(fakeRow{err: scanErr})
	assert.ErrorIs(t, err, scanErr)
}
