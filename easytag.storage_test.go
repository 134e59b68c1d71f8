package easytag

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStorageContract exercises the behaviour every backend shares
func runStorageContract(t *testing.T, open func(t *testing.T) TemplateStorage) {
	ctx := context.Background()

	t.Run("SaveAssignsVersions", func(t *testing.T) {
		storage := open(t)
		first := &StoredTemplate{Name: "greeting", Source: "v1", Tags: []string{"a"}}
		require.NoError(t, storage.Save(ctx, first))
		assert.Equal(t, 1, first.Version)
		assert.True(t, strings.HasPrefix(string(first.ID), TemplateIDPrefix))
		assert.False(t, first.CreatedAt.IsZero())

		second := &StoredTemplate{Name: "greeting", Source: "v2"}
		require.NoError(t, storage.Save(ctx, second))
		assert.Equal(t, 2, second.Version)
		assert.NotEqual(t, first.ID, second.ID)

		latest, err := storage.Get(ctx, "greeting")
		require.NoError(t, err)
		assert.Equal(t, "v2", latest.Source)
		assert.Equal(t, second.ID, latest.ID)

		old, err := storage.GetVersion(ctx, "greeting", 1)
		require.NoError(t, err)
		assert.Equal(t, "v1", old.Source)
		assert.Equal(t, []string{"a"}, old.Tags)

		byID, err := storage.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "v1", byID.Source)

		versions, err := storage.ListVersions(ctx, "greeting")
		require.NoError(t, err)
		assert.Equal(t, []int{2, 1}, versions)
	})

	t.Run("NotFound", func(t *testing.T) {
		storage := open(t)
		_, err := storage.Get(ctx, "missing")
		assert.True(t, IsNotFoundError(err), "got %v", err)

		_, err = storage.GetByID(ctx, "tmpl_missing")
		assert.True(t, IsNotFoundError(err), "got %v", err)

		require.NoError(t, storage.Save(ctx, &StoredTemplate{Name: "x", Source: "x"}))
		_, err = storage.GetVersion(ctx, "x", 9)
		assert.True(t, IsNotFoundError(err), "got %v", err)
		assert.Equal(t, "9", metadata(t, err, MetaKeyVersion))

		_, err = storage.ListVersions(ctx, "missing")
		assert.True(t, IsNotFoundError(err), "got %v", err)

		err = storage.Delete(ctx, "missing")
		assert.True(t, IsNotFoundError(err), "got %v", err)
	})

	t.Run("Metadata", func(t *testing.T) {
		storage := open(t)
		tmpl := &StoredTemplate{Name: "meta", Source: "s", Metadata: map[string]string{"author": "ann"}}
		require.NoError(t, storage.Save(ctx, tmpl))

		// caller-side changes after save do not leak into storage
		tmpl.Metadata["author"] = "bob"
		got, err := storage.Get(ctx, "meta")
		require.NoError(t, err)
		assert.Equal(t, "ann", got.Metadata["author"])
	})

	t.Run("DeleteAndExists", func(t *testing.T) {
		storage := open(t)
		require.NoError(t, storage.Save(ctx, &StoredTemplate{Name: "gone", Source: "1"}))
		require.NoError(t, storage.Save(ctx, &StoredTemplate{Name: "gone", Source: "2"}))

		exists, err := storage.Exists(ctx, "gone")
		require.NoError(t, err)
		assert.True(t, exists)

		require.NoError(t, storage.Delete(ctx, "gone"))
		exists, err = storage.Exists(ctx, "gone")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("List", func(t *testing.T) {
		storage := open(t)
		for _, tmpl := range []*StoredTemplate{
			{Name: "mail-welcome", Source: "1", Tags: []string{"mail", "public"}},
			{Name: "mail-welcome", Source: "2", Tags: []string{"mail", "public"}},
			{Name: "mail-reset", Source: "1", Tags: []string{"mail"}},
			{Name: "page-home", Source: "1", Tags: []string{"public"}},
		} {
			require.NoError(t, storage.Save(ctx, tmpl))
		}

		tests := []struct {
			name     string
			query    *TemplateQuery
			expected []string
		}{
			{name: "latest only", query: nil, expected: []string{"mail-reset:1", "mail-welcome:2", "page-home:1"}},
			{name: "all versions", query: &TemplateQuery{IncludeAllVersions: true},
				expected: []string{"mail-reset:1", "mail-welcome:2", "mail-welcome:1", "page-home:1"}},
			{name: "prefix", query: &TemplateQuery{NamePrefix: "mail-"}, expected: []string{"mail-reset:1", "mail-welcome:2"}},
			{name: "all tags must match", query: &TemplateQuery{Tags: []string{"mail", "public"}}, expected: []string{"mail-welcome:2"}},
			{name: "limit", query: &TemplateQuery{Limit: 2}, expected: []string{"mail-reset:1", "mail-welcome:2"}},
			{name: "offset", query: &TemplateQuery{Offset: 2}, expected: []string{"page-home:1"}},
			{name: "offset past end", query: &TemplateQuery{Offset: 10}, expected: []string{}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				results, err := storage.List(ctx, tt.query)
				require.NoError(t, err)
				got := make([]string, 0, len(results))
				for _, tmpl := range results {
					got = append(got, tmpl.Name+":"+tmpl.Source)
				}
				assert.Equal(t, tt.expected, got)
			})
		}
	})

	t.Run("ConcurrentSaves", func(t *testing.T) {
		storage := open(t)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, storage.Save(ctx, &StoredTemplate{Name: "busy", Source: "x"}))
			}()
		}
		wg.Wait()

		versions, err := storage.ListVersions(ctx, "busy")
		require.NoError(t, err)
		assert.Len(t, versions, 10)
		assert.Equal(t, 10, versions[0])
	})

	t.Run("CancelledContext", func(t *testing.T) {
		storage := open(t)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := storage.Get(cancelled, "x")
		assert.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, storage.Save(cancelled, &StoredTemplate{Name: "x"}), context.Canceled)
	})

	t.Run("Close", func(t *testing.T) {
		storage := open(t)
		require.NoError(t, storage.Close())

		_, err := storage.Get(ctx, "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgStorageClosed)
		assert.True(t, IsStorageError(err))

		err = storage.Close()
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgStorageAlreadyClosed)
	})
}

type stubStorageDriver struct {
	err error
}

func (d stubStorageDriver) Open(string) (TemplateStorage, error) {
	if d.err != nil {
		return nil, d.err
	}
	return NewMemoryStorage(), nil
}

func TestRegisterStorageDriver(t *testing.T) {
	RegisterStorageDriver("stub-ok", stubStorageDriver{})
	RegisterStorageDriver("stub-fail", stubStorageDriver{err: errors.New("boom")})

	storage, err := OpenStorage("stub-ok", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, storage)

	_, err = OpenStorage("stub-fail", "")
	assert.EqualError(t, err, "boom")

	assert.Panics(t, func() { RegisterStorageDriver("stub-ok", stubStorageDriver{}) })
	assert.Panics(t, func() { RegisterStorageDriver("stub-nil", nil) })
}

func TestOpenStorage_DriverNotFound(t *testing.T) {
	_, err := OpenStorage("nope", "")
	require.Error(t, err)
	assert.True(t, IsStorageError(err))
	assert.Contains(t, err.Error(), ErrMsgStorageDriverNotFound)
	assert.Equal(t, "nope", metadata(t, err, MetaKeyDriver))
}

func TestListStorageDrivers(t *testing.T) {
	drivers := ListStorageDrivers()
	assert.Contains(t, drivers, StorageDriverMemory)
	assert.Contains(t, drivers, StorageDriverFilesystem)
	assert.Contains(t, drivers, StorageDriverPostgres)
	assert.IsNonDecreasing(t, drivers)
}

func TestValidateTemplateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{name: "valid", input: "mail-welcome_v2"},
		{name: "empty", input: "", message: ErrMsgInvalidTemplateName},
		{name: "traversal", input: "../etc", message: ErrMsgPathTraversal},
		{name: "separator", input: "a/b", message: ErrMsgInvalidTemplateName},
		{name: "wildcard", input: "a*", message: ErrMsgInvalidTemplateName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTemplateName(tt.input)
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
			assert.True(t, IsStorageError(err))
		})
	}
}

func TestStorageErrors(t *testing.T) {
	err := NewTemplateNotFoundError("greeting")
	assert.True(t, IsNotFoundError(err))
	assert.True(t, IsStorageError(err))
	assert.Equal(t, "greeting", metadata(t, err, MetaKeyName))

	cause := errors.New("disk full")
	err = NewStorageError(ErrMsgStorageIO, "greeting", cause)
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsNotFoundError(err))

	assert.False(t, IsNotFoundError(errors.New("plain")))
}
