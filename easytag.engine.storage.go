package easytag

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// ErrMsgNilStorage is returned by NewStorageEngine without a storage
const ErrMsgNilStorage = "storage engine requires a storage"

// StorageEngine executes templates kept in a TemplateStorage. Compiled
// templates are cached by stored ID, so each version is parsed once.
type StorageEngine struct {
	engine  *Engine
	storage TemplateStorage
	logger  *zap.Logger

	mu    sync.RWMutex
	cache map[TemplateID]*Template
}

// StorageEngineConfig configures a StorageEngine
type StorageEngineConfig struct {
	// Storage is the backend (required).
	Storage TemplateStorage

	// Engine parses stored sources. Default: New().
	Engine *Engine
}

// NewStorageEngine creates a StorageEngine
func NewStorageEngine(config StorageEngineConfig) (*StorageEngine, error) {
	if config.Storage == nil {
		return nil, NewStorageError(ErrMsgNilStorage, "", nil)
	}

	engine := config.Engine
	if engine == nil {
		var err error
		if engine, err = New(); err != nil {
			return nil, err
		}
	}

	return &StorageEngine{
		engine:  engine,
		storage: config.Storage,
		logger:  engine.logger,
		cache:   make(map[TemplateID]*Template),
	}, nil
}

// MustNewStorageEngine creates a StorageEngine and panics on error
func MustNewStorageEngine(config StorageEngineConfig) *StorageEngine {
	se, err := NewStorageEngine(config)
	if err != nil {
		panic(err)
	}
	return se
}

// Engine returns the underlying engine, e.g. to register tags.
func (se *StorageEngine) Engine() *Engine { return se.engine }

// Storage returns the underlying storage.
func (se *StorageEngine) Storage() TemplateStorage { return se.storage }

// Save validates tmpl.Source against the engine's tags and stores it as a new version.
func (se *StorageEngine) Save(ctx context.Context, tmpl *StoredTemplate) error {
	if tmpl == nil {
		return NewStorageError(ErrMsgInvalidTemplateName, "", nil)
	}
	if err := se.engine.Validate(tmpl.Source); err != nil {
		return err
	}
	if err := se.storage.Save(ctx, tmpl); err != nil {
		return err
	}

	se.logger.Debug(LogMsgStorageSaved,
		zap.String(LogFieldName, tmpl.Name),
		zap.Int(LogFieldVersion, tmpl.Version),
		zap.String(LogFieldID, string(tmpl.ID)))
	return nil
}

// Execute renders the latest version of a stored template.
func (se *StorageEngine) Execute(ctx context.Context, name string, data map[string]any) (string, error) {
	stored, err := se.storage.Get(ctx, name)
	if err != nil {
		return "", err
	}
	return se.execute(ctx, stored, data)
}

// ExecuteVersion renders a specific version of a stored template.
func (se *StorageEngine) ExecuteVersion(ctx context.Context, name string, version int, data map[string]any) (string, error) {
	stored, err := se.storage.GetVersion(ctx, name, version)
	if err != nil {
		return "", err
	}
	return se.execute(ctx, stored, data)
}

// Validate parses a source without storing it.
func (se *StorageEngine) Validate(source string) error {
	return se.engine.Validate(source)
}

// Delete removes all versions of a template and drops their compiled forms.
func (se *StorageEngine) Delete(ctx context.Context, name string) error {
	versions, err := se.storage.ListVersions(ctx, name)
	if err != nil {
		return err
	}
	ids := make([]TemplateID, 0, len(versions))
	for _, v := range versions {
		if stored, err := se.storage.GetVersion(ctx, name, v); err == nil {
			ids = append(ids, stored.ID)
		}
	}

	if err := se.storage.Delete(ctx, name); err != nil {
		return err
	}

	se.mu.Lock()
	for _, id := range ids {
		delete(se.cache, id)
	}
	se.mu.Unlock()
	return nil
}

// InvalidateCache drops every compiled template.
func (se *StorageEngine) InvalidateCache() {
	se.mu.Lock()
	se.cache = make(map[TemplateID]*Template)
	se.mu.Unlock()
	se.logger.Debug(LogMsgStorageCacheClear)
}

// CacheSize returns the number of compiled templates held.
func (se *StorageEngine) CacheSize() int {
	se.mu.RLock()
	defer se.mu.RUnlock()
	return len(se.cache)
}

// Close closes the storage.
func (se *StorageEngine) Close() error {
	se.InvalidateCache()
	return se.storage.Close()
}

func (se *StorageEngine) execute(ctx context.Context, stored *StoredTemplate, data map[string]any) (string, error) {
	tmpl, err := se.compiled(stored)
	if err != nil {
		return "", err
	}
	return tmpl.Execute(ctx, data)
}

// compiled returns the cached Template for a stored version, parsing on a miss.
// Parse failures are not cached.
func (se *StorageEngine) compiled(stored *StoredTemplate) (*Template, error) {
	se.mu.RLock()
	tmpl, ok := se.cache[stored.ID]
	se.mu.RUnlock()
	if ok {
		se.logger.Debug(LogMsgStorageCacheHit, zap.String(LogFieldID, string(stored.ID)))
		return tmpl, nil
	}

	se.logger.Debug(LogMsgStorageCacheMiss,
		zap.String(LogFieldName, stored.Name),
		zap.Int(LogFieldVersion, stored.Version))

	tmpl, err := se.engine.Parse(stored.Source)
	if err != nil {
		return nil, withStoredTemplate(err, stored)
	}

	se.mu.Lock()
	if cached, ok := se.cache[stored.ID]; ok {
		tmpl = cached
	} else {
		se.cache[stored.ID] = tmpl
	}
	se.mu.Unlock()
	return tmpl, nil
}
