package easytag

import (
	"context"
	"sync"
)

func init() {
	RegisterStorageDriver(StorageDriverMemory, memoryDriver{})
}

type memoryDriver struct{}

func (memoryDriver) Open(string) (TemplateStorage, error) {
	return NewMemoryStorage(), nil
}

// MemoryStorage keeps templates in process memory. Useful for tests and
// short-lived tools; nothing survives the process.
type MemoryStorage struct {
	mu        sync.RWMutex
	templates map[string][]*StoredTemplate // newest version first
	byID      map[TemplateID]*StoredTemplate
	closed    bool
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		templates: make(map[string][]*StoredTemplate),
		byID:      make(map[TemplateID]*StoredTemplate),
	}
}

func (s *MemoryStorage) Get(ctx context.Context, name string) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, NewStorageClosedError()
	}

	versions := s.templates[name]
	if len(versions) == 0 {
		return nil, NewTemplateNotFoundError(name)
	}
	return copyStoredTemplate(versions[0]), nil
}

func (s *MemoryStorage) GetByID(ctx context.Context, id TemplateID) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, NewStorageClosedError()
	}

	tmpl, ok := s.byID[id]
	if !ok {
		return nil, NewTemplateNotFoundError(string(id))
	}
	return copyStoredTemplate(tmpl), nil
}

func (s *MemoryStorage) GetVersion(ctx context.Context, name string, version int) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, NewStorageClosedError()
	}

	for _, tmpl := range s.templates[name] {
		if tmpl.Version == version {
			return copyStoredTemplate(tmpl), nil
		}
	}
	return nil, NewVersionNotFoundError(name, version)
}

func (s *MemoryStorage) Save(ctx context.Context, tmpl *StoredTemplate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tmpl == nil {
		return NewStorageError(ErrMsgInvalidTemplateName, "", nil)
	}
	if err := validateTemplateName(tmpl.Name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return NewStorageClosedError()
	}

	versions := s.templates[tmpl.Name]
	next := 1
	if len(versions) > 0 {
		next = versions[0].Version + 1
	}

	stored := newStoredVersion(tmpl, next)
	s.templates[tmpl.Name] = append([]*StoredTemplate{stored}, versions...)
	s.byID[stored.ID] = stored
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return NewStorageClosedError()
	}

	versions, ok := s.templates[name]
	if !ok {
		return NewTemplateNotFoundError(name)
	}
	for _, tmpl := range versions {
		delete(s.byID, tmpl.ID)
	}
	delete(s.templates, name)
	return nil
}

func (s *MemoryStorage) List(ctx context.Context, query *TemplateQuery) ([]*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if query == nil {
		query = &TemplateQuery{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, NewStorageClosedError()
	}

	var results []*StoredTemplate
	for _, versions := range s.templates {
		candidates := versions[:1]
		if query.IncludeAllVersions {
			candidates = versions
		}
		for _, tmpl := range candidates {
			if matchesQuery(tmpl, query) {
				results = append(results, copyStoredTemplate(tmpl))
			}
		}
	}
	return sortAndPage(results, query), nil
}

func (s *MemoryStorage) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, NewStorageClosedError()
	}
	return len(s.templates[name]) > 0, nil
}

func (s *MemoryStorage) ListVersions(ctx context.Context, name string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, NewStorageClosedError()
	}

	versions := s.templates[name]
	if len(versions) == 0 {
		return nil, NewTemplateNotFoundError(name)
	}
	out := make([]int, len(versions))
	for i, tmpl := range versions {
		out[i] = tmpl.Version
	}
	return out, nil
}

// Close drops all templates. Further calls fail with a storage closed error.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return NewStorageError(ErrMsgStorageAlreadyClosed, "", nil)
	}
	s.closed = true
	s.templates = nil
	s.byID = nil
	return nil
}
