package easytag

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

func init() {
	RegisterStorageDriver(StorageDriverFilesystem, filesystemDriver{})
}

type filesystemDriver struct{}

// Open treats the connection string as the root directory.
func (filesystemDriver) Open(connectionString string) (TemplateStorage, error) {
	return NewFilesystemStorage(connectionString)
}

// FilesystemStorage stores one JSON file per template version:
//
//	<root>/
//	  <template-name>/
//	    v1.json
//	    v2.json
type FilesystemStorage struct {
	mu     sync.RWMutex
	root   string
	closed bool
}

// NewFilesystemStorage creates a filesystem storage, creating root if needed
func NewFilesystemStorage(root string) (*FilesystemStorage, error) {
	if root == "" {
		return nil, NewStorageError(ErrMsgInvalidStorageRoot, "", nil)
	}
	if err := os.MkdirAll(root, FilesystemDirPermissions); err != nil {
		return nil, NewStorageError(ErrMsgStorageIO, root, err)
	}
	return &FilesystemStorage{root: root}, nil
}

func (s *FilesystemStorage) Get(ctx context.Context, name string) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateTemplateName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, NewStorageClosedError()
	}

	versions, err := s.versions(name)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, NewTemplateNotFoundError(name)
	}
	return s.load(name, versions[0])
}

// GetByID scans every stored version.
func (s *FilesystemStorage) GetByID(ctx context.Context, id TemplateID) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, NewStorageClosedError()
	}

	all, err := s.loadAll(true)
	if err != nil {
		return nil, err
	}
	for _, tmpl := range all {
		if tmpl.ID == id {
			return tmpl, nil
		}
	}
	return nil, NewTemplateNotFoundError(string(id))
}

func (s *FilesystemStorage) GetVersion(ctx context.Context, name string, version int) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateTemplateName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, NewStorageClosedError()
	}

	tmpl, err := s.load(name, version)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil, NewVersionNotFoundError(name, version)
	}
	return tmpl, err
}

func (s *FilesystemStorage) Save(ctx context.Context, tmpl *StoredTemplate) error {
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

	dir := filepath.Join(s.root, tmpl.Name)
	if err := os.MkdirAll(dir, FilesystemDirPermissions); err != nil {
		return NewStorageError(ErrMsgStorageIO, tmpl.Name, err)
	}

	versions, err := s.versions(tmpl.Name)
	if err != nil {
		return err
	}
	next := 1
	if len(versions) > 0 {
		next = versions[0] + 1
	}

	stored := newStoredVersion(tmpl, next)
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return NewStorageError(ErrMsgStorageEncoding, tmpl.Name, err)
	}
	if err := os.WriteFile(s.versionPath(tmpl.Name, next), data, FilesystemFilePermissions); err != nil {
		return NewStorageError(ErrMsgStorageIO, tmpl.Name, err)
	}
	return nil
}

func (s *FilesystemStorage) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateTemplateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return NewStorageClosedError()
	}

	dir := filepath.Join(s.root, name)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return NewTemplateNotFoundError(name)
	}
	if err := os.RemoveAll(dir); err != nil {
		return NewStorageError(ErrMsgStorageIO, name, err)
	}
	return nil
}

func (s *FilesystemStorage) List(ctx context.Context, query *TemplateQuery) ([]*StoredTemplate, error) {
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

	all, err := s.loadAll(query.IncludeAllVersions)
	if err != nil {
		return nil, err
	}
	results := make([]*StoredTemplate, 0, len(all))
	for _, tmpl := range all {
		if matchesQuery(tmpl, query) {
			results = append(results, tmpl)
		}
	}
	return sortAndPage(results, query), nil
}

func (s *FilesystemStorage) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := validateTemplateName(name); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, NewStorageClosedError()
	}

	versions, err := s.versions(name)
	if err != nil {
		return false, err
	}
	return len(versions) > 0, nil
}

func (s *FilesystemStorage) ListVersions(ctx context.Context, name string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateTemplateName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, NewStorageClosedError()
	}

	versions, err := s.versions(name)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, NewTemplateNotFoundError(name)
	}
	return versions, nil
}

// Close marks the storage closed. Files stay on disk.
func (s *FilesystemStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return NewStorageError(ErrMsgStorageAlreadyClosed, "", nil)
	}
	s.closed = true
	return nil
}

func (s *FilesystemStorage) versionPath(name string, version int) string {
	return filepath.Join(s.root, name, FilesystemVersionPrefix+strconv.Itoa(version)+FilesystemVersionSuffix)
}

// versions returns the version numbers on disk for name, newest first.
// A missing directory yields no versions.
func (s *FilesystemStorage) versions(name string) ([]int, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, NewStorageError(ErrMsgStorageIO, name, err)
	}

	var versions []int
	for _, entry := range entries {
		fileName := entry.Name()
		if entry.IsDir() ||
			!strings.HasPrefix(fileName, FilesystemVersionPrefix) ||
			!strings.HasSuffix(fileName, FilesystemVersionSuffix) {
			continue
		}
		num := strings.TrimSuffix(strings.TrimPrefix(fileName, FilesystemVersionPrefix), FilesystemVersionSuffix)
		version, err := strconv.Atoi(num)
		if err != nil || version < 1 {
			continue
		}
		versions = append(versions, version)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	return versions, nil
}

// load reads one version file. A missing file keeps os.ErrNotExist in the chain.
func (s *FilesystemStorage) load(name string, version int) (*StoredTemplate, error) {
	data, err := os.ReadFile(s.versionPath(name, version))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewStorageError(ErrMsgVersionNotFound, name, err)
		}
		return nil, NewStorageError(ErrMsgStorageIO, name, err)
	}

	var tmpl StoredTemplate
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return nil, NewStorageError(ErrMsgStorageEncoding, name, err)
	}
	return &tmpl, nil
}

// loadAll reads the latest version of every template, or all versions.
// Unreadable entries are skipped.
func (s *FilesystemStorage) loadAll(allVersions bool) ([]*StoredTemplate, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, NewStorageError(ErrMsgStorageIO, "", err)
	}

	var out []*StoredTemplate
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		versions, err := s.versions(entry.Name())
		if err != nil || len(versions) == 0 {
			continue
		}
		if !allVersions {
			versions = versions[:1]
		}
		for _, version := range versions {
			tmpl, err := s.load(entry.Name(), version)
			if err != nil {
				continue
			}
			out = append(out, tmpl)
		}
	}
	return out, nil
}
