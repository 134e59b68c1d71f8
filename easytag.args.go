package easytag

import (
	"reflect"

	"github.com/itsatony/go-easytag/internal"
)

// Scope resolves dotted variable paths during a render pass. *Context is the
// standard implementation.
type Scope = internal.ContextAccessor

// Value is a call-site argument: a literal or a late-bound reference resolved
// against the render scope immediately before binding.
type Value = internal.Value

// CallArgs holds the unresolved arguments attached to one marker occurrence
type CallArgs = internal.CallArgs

// KeywordArg is a named call-site argument
type KeywordArg = internal.KeywordArg

// ResolvedArgs holds call-site arguments after resolution against a scope
type ResolvedArgs = internal.ResolvedArgs

// NamedValue is a resolved keyword argument
type NamedValue = internal.NamedValue

// Position represents a location in the source template
type Position = internal.Position

// Literal returns a call-site value fixed at parse time
func Literal(v any) Value {
	return internal.Literal{Val: v}
}

// Var returns a call-site value resolved from the render scope by dotted path
func Var(path string) Value {
	return internal.VarRef{Path: path}
}

// Stringify renders a value the way variable output does
func Stringify(v any) string {
	return internal.Stringify(v)
}

// Truthy reports whether a value counts as true in a tag condition.
// nil, false, zero numbers and empty strings, slices and maps are false.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// ValuesEqual compares two resolved values, treating numbers of different
// Go types as equal when their values are.
func ValuesEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
