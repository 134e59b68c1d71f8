package internal

import (
	"fmt"
	"strconv"
	"strings"
)

// ContextAccessor resolves dotted variable paths against render data.
// It mirrors the public scope type so this package stays free of import cycles.
type ContextAccessor interface {
	Get(path string) (any, bool)
}

// Value is a call-site argument value. Literals resolve to themselves; variable
// references are resolved against the scope at render time.
type Value interface {
	Resolve(scope ContextAccessor) (any, error)
	String() string
}

// Literal is a value fixed at parse time
type Literal struct {
	Val any
}

// Resolve returns the literal value
func (l Literal) Resolve(ContextAccessor) (any, error) {
	return l.Val, nil
}

// String returns a debug representation of the literal
func (l Literal) String() string {
	if s, ok := l.Val.(string); ok {
		return strconv.Quote(s)
	}
	if l.Val == nil {
		return KeywordNone
	}
	return fmt.Sprint(l.Val)
}

// VarRef is a late-bound reference to a dotted path in the render scope
type VarRef struct {
	Path   string
	Strict bool // Missing variables are an error instead of nil
}

// Resolve looks the path up in the scope
func (v VarRef) Resolve(scope ContextAccessor) (any, error) {
	if scope != nil {
		if val, ok := scope.Get(v.Path); ok {
			return val, nil
		}
	}
	if v.Strict {
		return nil, &ArgError{Message: ErrMsgVariableNotFound, Bit: v.Path}
	}
	return nil, nil
}

// String returns the referenced path
func (v VarRef) String() string {
	return v.Path
}

// KeywordArg is a named call-site argument
type KeywordArg struct {
	Name  string
	Value Value
}

// CallArgs holds the unresolved arguments attached to one tag marker.
// Keyword order follows the source; names are unique.
type CallArgs struct {
	Positional []Value
	Keyword    []KeywordArg
}

// IsEmpty reports whether no arguments were supplied
func (a CallArgs) IsEmpty() bool {
	return len(a.Positional) == 0 && len(a.Keyword) == 0
}

// String returns a debug representation of the arguments
func (a CallArgs) String() string {
	parts := make([]string, 0, len(a.Positional)+len(a.Keyword))
	for _, v := range a.Positional {
		parts = append(parts, v.String())
	}
	for _, kw := range a.Keyword {
		parts = append(parts, kw.Name+string(CharEquals)+kw.Value.String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// NamedValue is a resolved keyword argument
type NamedValue struct {
	Name  string
	Value any
}

// ResolvedArgs holds call-site arguments after resolution against a scope
type ResolvedArgs struct {
	Positional []any
	Keyword    []NamedValue
}

// Resolve evaluates every argument against the scope, preserving order
func (a CallArgs) Resolve(scope ContextAccessor) (ResolvedArgs, error) {
	resolved := ResolvedArgs{
		Positional: make([]any, 0, len(a.Positional)),
		Keyword:    make([]NamedValue, 0, len(a.Keyword)),
	}
	for _, v := range a.Positional {
		val, err := v.Resolve(scope)
		if err != nil {
			return ResolvedArgs{}, err
		}
		resolved.Positional = append(resolved.Positional, val)
	}
	for _, kw := range a.Keyword {
		val, err := kw.Value.Resolve(scope)
		if err != nil {
			return ResolvedArgs{}, err
		}
		resolved.Keyword = append(resolved.Keyword, NamedValue{Name: kw.Name, Value: val})
	}
	return resolved, nil
}

// ParseCallArgs parses the argument bits of a tag marker.
// Bits are whitespace separated; name=value is a keyword argument and anything
// else is positional. Positional arguments may not follow keyword arguments.
func ParseCallArgs(bits string, strict bool) (CallArgs, error) {
	var args CallArgs

	parts, err := SplitBits(bits)
	if err != nil {
		return CallArgs{}, err
	}

	seen := make(map[string]struct{})
	for _, part := range parts {
		if name, raw, ok := splitKeyword(part); ok {
			if _, dup := seen[name]; dup {
				return CallArgs{}, &ArgError{Message: ErrMsgDuplicateKeyword, Bit: name}
			}
			seen[name] = struct{}{}
			val, err := ParseValue(raw, strict)
			if err != nil {
				return CallArgs{}, err
			}
			args.Keyword = append(args.Keyword, KeywordArg{Name: name, Value: val})
			continue
		}

		if len(args.Keyword) > 0 {
			return CallArgs{}, &ArgError{Message: ErrMsgPositionalAfterKeyword, Bit: part}
		}
		val, err := ParseValue(part, strict)
		if err != nil {
			return CallArgs{}, err
		}
		args.Positional = append(args.Positional, val)
	}

	return args, nil
}

// SplitBits splits on whitespace that is not inside a quoted literal
func SplitBits(s string) ([]string, error) {
	var parts []string
	var sb strings.Builder
	var quote byte

	flush := func() {
		if sb.Len() > 0 {
			parts = append(parts, sb.String())
			sb.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			sb.WriteByte(ch)
			if ch == CharBackslash && i+1 < len(s) {
				i++
				sb.WriteByte(s[i])
			} else if ch == quote {
				quote = 0
			}
		case ch == CharDoubleQuote || ch == CharSingleQuote:
			quote = ch
			sb.WriteByte(ch)
		case isSpace(ch):
			flush()
		default:
			sb.WriteByte(ch)
		}
	}

	if quote != 0 {
		return nil, &ArgError{Message: ErrMsgUnterminatedStr, Bit: sb.String()}
	}
	flush()
	return parts, nil
}

// splitKeyword detects name=value bits
func splitKeyword(bit string) (string, string, bool) {
	idx := strings.IndexByte(bit, CharEquals)
	if idx <= 0 {
		return "", "", false
	}
	name := bit[:idx]
	if !isIdentifier(name) {
		return "", "", false
	}
	return name, bit[idx+1:], true
}

// ParseValue converts a single argument bit into a literal or variable reference
func ParseValue(raw string, strict bool) (Value, error) {
	if raw == "" {
		return nil, &ArgError{Message: ErrMsgInvalidArgument, Bit: raw}
	}

	if q := raw[0]; q == CharDoubleQuote || q == CharSingleQuote {
		if len(raw) < 2 || raw[len(raw)-1] != q {
			return nil, &ArgError{Message: ErrMsgUnterminatedStr, Bit: raw}
		}
		return Literal{Val: unescapeString(raw[1 : len(raw)-1])}, nil
	}

	switch raw {
	case KeywordTrue, KeywordTrueLower:
		return Literal{Val: true}, nil
	case KeywordFalse, KeywordFalseLower:
		return Literal{Val: false}, nil
	case KeywordNone, KeywordNil:
		return Literal{Val: nil}, nil
	}

	if looksNumeric(raw) {
		if i, err := strconv.Atoi(raw); err == nil {
			return Literal{Val: i}, nil
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return Literal{Val: f}, nil
		}
		return nil, &ArgError{Message: ErrMsgInvalidArgument, Bit: raw}
	}

	if isPath(raw) {
		return VarRef{Path: raw, Strict: strict}, nil
	}
	return nil, &ArgError{Message: ErrMsgInvalidArgument, Bit: raw}
}

// unescapeString handles backslash escapes inside string literals
func unescapeString(s string) string {
	if !strings.Contains(s, string(CharBackslash)) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != CharBackslash || i+1 == len(s) {
			sb.WriteByte(ch)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte(CharNewline)
		case 't':
			sb.WriteByte(CharTab)
		case 'r':
			sb.WriteByte(CharCarriageRet)
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// looksNumeric keeps names like inf or nan from being read as floats
func looksNumeric(s string) bool {
	ch := s[0]
	return isDigit(ch) || ch == CharMinus || ch == '+' || ch == CharDot
}

// isIdentifier reports whether s is a plain identifier
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if isLetter(ch) || ch == CharUnderscore || (i > 0 && isDigit(ch)) {
			continue
		}
		return false
	}
	return true
}

// isPath reports whether s is a dotted variable path such as user.items.0
func isPath(s string) bool {
	segments := strings.Split(s, PathSeparator)
	if !isIdentifier(segments[0]) {
		return false
	}
	for _, seg := range segments[1:] {
		if seg == "" {
			return false
		}
		if isIdentifier(seg) {
			continue
		}
		if _, err := strconv.Atoi(seg); err != nil {
			return false
		}
	}
	return true
}

// Stringify renders a resolved value as output text
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// ArgError reports a malformed call-site argument
type ArgError struct {
	Message string
	Bit     string
}

func (e *ArgError) Error() string {
	return fmt.Sprintf(ErrFmtTagMessage, e.Message, e.Bit)
}

// Argument error message constants
const (
	ErrMsgInvalidArgument        = "invalid argument"
	ErrMsgDuplicateKeyword       = "duplicate keyword argument"
	ErrMsgPositionalAfterKeyword = "positional argument follows keyword argument"
	ErrMsgVariableNotFound       = "variable not found"
)
