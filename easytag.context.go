package easytag

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/itsatony/go-easytag/internal"
)

// Context is the standard render scope. It resolves dot-notation paths
// (e.g., "user.profile.name", "items.0") and falls back to a parent scope
// for paths it cannot resolve.
type Context struct {
	data   map[string]any
	parent Scope
	mu     sync.RWMutex
}

// NewContext creates a new render scope with the given data.
// If data is nil, an empty map is used.
func NewContext(data map[string]any) *Context {
	if data == nil {
		data = make(map[string]any)
	}
	return &Context{data: data}
}

// NewChildContext creates a scope whose unresolved paths fall back to parent
func NewChildContext(parent Scope, data map[string]any) *Context {
	ctx := NewContext(data)
	ctx.parent = parent
	return ctx
}

// Get retrieves a value by dot-notation path.
// Returns the value and true if found, or nil and false if not found.
func (c *Context) Get(path string) (any, bool) {
	c.mu.RLock()
	val, ok := lookupPath(c.data, path)
	c.mu.RUnlock()

	if !ok && c.parent != nil {
		return c.parent.Get(path)
	}
	return val, ok
}

// GetString retrieves a value by path as output text.
// Returns empty string if not found.
func (c *Context) GetString(path string) string {
	val, _ := c.Get(path)
	return Stringify(val)
}

// GetDefault retrieves a value by path with a fallback default.
func (c *Context) GetDefault(path string, defaultVal any) any {
	val, ok := c.Get(path)
	if !ok {
		return defaultVal
	}
	return val
}

// Set sets a top-level value.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = value
}

// Has checks if a value exists at the given path.
func (c *Context) Has(path string) bool {
	_, ok := c.Get(path)
	return ok
}

// Child creates a child scope with additional data.
// The child inherits from the parent and can override values.
func (c *Context) Child(data map[string]any) *Context {
	return NewChildContext(c, data)
}

// Parent returns the parent scope, or nil if this is a root context.
func (c *Context) Parent() Scope {
	return c.parent
}

// Data returns a copy of the context's direct data (not including parent).
func (c *Context) Data() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]any, len(c.data))
	for k, v := range c.data {
		result[k] = v
	}
	return result
}

// lookupPath walks a dotted path through maps, slices and struct fields
func lookupPath(root map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	var current any = root
	for _, part := range strings.Split(path, internal.PathSeparator) {
		next, ok := step(current, part)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// step resolves one path segment against a value
func step(current any, part string) (any, bool) {
	switch v := current.(type) {
	case map[string]any:
		val, ok := v[part]
		return val, ok
	case map[string]string:
		val, ok := v[part]
		return val, ok
	case []any:
		i, err := strconv.Atoi(part)
		if err != nil || i < 0 || i >= len(v) {
			return nil, false
		}
		return v[i], true
	case Scope:
		return v.Get(part)
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(current)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		val := rv.MapIndex(reflect.ValueOf(part).Convert(rv.Type().Key()))
		if !val.IsValid() {
			return nil, false
		}
		return val.Interface(), true
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(part)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	case reflect.Struct:
		field, ok := rv.Type().FieldByName(part)
		if !ok {
			field, ok = rv.Type().FieldByName(MethodName(part))
		}
		if !ok || !field.IsExported() {
			return nil, false
		}
		val, err := rv.FieldByIndexErr(field.Index)
		if err != nil {
			return nil, false
		}
		return val.Interface(), true
	}
	return nil, false
}
