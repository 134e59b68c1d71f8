package internal

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// TagCompiler turns the tokens of one tag occurrence into a renderer.
// Compile is called with the start marker already consumed.
type TagCompiler interface {
	TagName() string
	Compile(p *Parser, start Token) (TagRenderer, error)
}

// CompilerLookup is the read side of the registry used by the parser
type CompilerLookup interface {
	Get(tagName string) (TagCompiler, bool)
}

// Registry manages tag compiler registration with first-come-wins semantics.
// It is thread-safe for concurrent read/write access.
type Registry struct {
	compilers map[string]TagCompiler
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewRegistry creates a new compiler registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgRegistryCreated)
	return &Registry{
		compilers: make(map[string]TagCompiler),
		logger:    logger,
	}
}

// Register adds a compiler to the registry.
// If a compiler for the same tag name already exists, returns an error
// and keeps the existing one.
func (r *Registry) Register(compiler TagCompiler) error {
	if compiler == nil {
		return NewRegistryError(ErrMsgNilCompiler, "")
	}

	tagName := compiler.TagName()
	if tagName == "" {
		return NewRegistryError(ErrMsgEmptyTagName, "")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.compilers[tagName]; exists {
		r.logger.Warn(LogMsgCompilerCollision,
			zap.String(LogFieldTagName, tagName),
			zap.String(LogFieldExisting, existing.TagName()),
		)
		return NewRegistryError(ErrMsgCompilerAlreadyExists, tagName)
	}

	r.compilers[tagName] = compiler
	r.logger.Debug(LogMsgCompilerRegistered, zap.String(LogFieldTagName, tagName))
	return nil
}

// MustRegister adds a compiler and panics if registration fails.
func (r *Registry) MustRegister(compiler TagCompiler) {
	if err := r.Register(compiler); err != nil {
		panic(err)
	}
}

// Get retrieves a compiler by tag name.
func (r *Registry) Get(tagName string) (TagCompiler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	compiler, exists := r.compilers[tagName]
	return compiler, exists
}

// Has checks if a compiler is registered for the given tag name.
func (r *Registry) Has(tagName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.compilers[tagName]
	return exists
}

// List returns all registered tag names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.compilers))
	for name := range r.compilers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered compilers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.compilers)
}

// RegistryError represents a registry operation error
type RegistryError struct {
	Message string
	TagName string
}

// NewRegistryError creates a new registry error
func NewRegistryError(message, tagName string) *RegistryError {
	return &RegistryError{
		Message: message,
		TagName: tagName,
	}
}

// Error implements the error interface
func (e *RegistryError) Error() string {
	if e.TagName != StringValueEmpty {
		return fmt.Sprintf(ErrFmtTagMessage, e.Message, e.TagName)
	}
	return e.Message
}

// Registry error message constants
const (
	ErrMsgNilCompiler           = "compiler cannot be nil"
	ErrMsgEmptyTagName          = "compiler tag name cannot be empty"
	ErrMsgCompilerAlreadyExists = "compiler already registered for tag"
)
