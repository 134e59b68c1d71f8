package easytag

// Param is an optional handler parameter with its default value
type Param struct {
	Name    string
	Default any
}

// Signature is the shape of a handler's bindable parameters. The render
// context and content segment every handler receives are not part of it.
type Signature struct {
	Required        []string
	Optional        []Param
	ExtraPositional bool // Surplus positional values are collected into Frame.Extra
	ExtraKeyword    bool // Unknown keyword values are collected into Frame.ExtraKeywords
}

// Names returns the declared parameter names, required first
func (s Signature) Names() []string {
	names := make([]string, 0, len(s.Required)+len(s.Optional))
	names = append(names, s.Required...)
	for _, p := range s.Optional {
		names = append(names, p.Name)
	}
	return names
}

// validate rejects empty and repeated parameter names
func (s Signature) validate(tagName string) error {
	seen := make(map[string]struct{})
	for _, name := range s.Names() {
		if name == "" {
			return newDefinitionError(ErrMsgEmptyMarkerName, tagName)
		}
		if _, dup := seen[name]; dup {
			return newDefinitionError(ErrMsgDuplicateParam, tagName).WithMetadata(MetaKeyArgument, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Frame is the result of binding call-site arguments to a signature
type Frame struct {
	Names         []string       // Declared parameter names, required first
	Values        []any          // Values aligned with Names
	Extra         []any          // Surplus positional values, in order
	ExtraKeywords map[string]any // Unmatched keyword values; non-nil when the signature accepts them
}

// Get returns the bound value of a declared parameter
func (f *Frame) Get(name string) (any, bool) {
	for i, n := range f.Names {
		if n == name {
			return f.Values[i], true
		}
	}
	return nil, false
}

// Value returns the bound value of a declared parameter, or nil
func (f *Frame) Value(name string) any {
	v, _ := f.Get(name)
	return v
}

// String returns the bound value of a declared parameter as output text
func (f *Frame) String(name string) string {
	return Stringify(f.Value(name))
}

// Bool returns the truthiness of a declared parameter
func (f *Frame) Bool(name string) bool {
	return Truthy(f.Value(name))
}

// Bind maps resolved call-site arguments onto a signature.
// Positional values fill required then optional parameters in order; keyword
// values fill the matching parameter; leftovers go to the extra slots when the
// signature accepts them. It returns either a frame or a binding error.
func Bind(sig Signature, args ResolvedArgs) (*Frame, error) {
	names := sig.Names()
	frame := &Frame{
		Names:  names,
		Values: make([]any, len(names)),
	}
	if sig.ExtraKeyword {
		frame.ExtraKeywords = make(map[string]any)
	}

	filled := make([]bool, len(names))
	for i, v := range args.Positional {
		if i < len(names) {
			frame.Values[i] = v
			filled[i] = true
			continue
		}
		if !sig.ExtraPositional {
			return nil, NewTooManyPositionalError()
		}
		frame.Extra = append(frame.Extra, v)
	}

	for _, kw := range args.Keyword {
		if i := indexOf(names, kw.Name); i >= 0 {
			if filled[i] {
				return nil, NewDuplicateValueError(kw.Name)
			}
			frame.Values[i] = kw.Value
			filled[i] = true
			continue
		}
		if !sig.ExtraKeyword {
			return nil, NewUnexpectedKeywordError(kw.Name)
		}
		if _, dup := frame.ExtraKeywords[kw.Name]; dup {
			return nil, NewDuplicateValueError(kw.Name)
		}
		frame.ExtraKeywords[kw.Name] = kw.Value
	}

	for i, name := range sig.Required {
		if !filled[i] {
			return nil, NewMissingArgumentError(name)
		}
	}
	offset := len(sig.Required)
	for j, p := range sig.Optional {
		if !filled[offset+j] {
			frame.Values[offset+j] = p.Default
		}
	}

	return frame, nil
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
