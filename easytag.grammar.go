package easytag

// endMode selects how a tag's end marker name is obtained
type endMode int

const (
	endNone endMode = iota
	endDerived
	endNamed
)

// EndTag describes the end marker of a tag. The zero value means the tag has
// no end marker: a single unclosed marker with empty content.
type EndTag struct {
	mode endMode
	name string
}

// NoEndTag declares a tag without an end marker
func NoEndTag() EndTag {
	return EndTag{mode: endNone}
}

// DerivedEndTag declares an end marker named "end" + the start name
func DerivedEndTag() EndTag {
	return EndTag{mode: endDerived}
}

// NamedEndTag declares an end marker with exactly the given name. No prefix
// is applied.
func NamedEndTag(name string) EndTag {
	return EndTag{mode: endNamed, name: name}
}

// Grammar is the validated marker layout of one tag. It is immutable once built.
type Grammar struct {
	start         string
	end           string
	intermediates []string
}

// NewGrammar validates a start name, end tag and intermediate marker names.
func NewGrammar(start string, end EndTag, intermediates []string) (*Grammar, error) {
	if start == "" {
		return nil, newDefinitionError(ErrMsgMissingTagName, "")
	}

	g := &Grammar{start: start}

	switch end.mode {
	case endDerived:
		g.end = EndTagPrefix + start
	case endNamed:
		if end.name == "" {
			return nil, newDefinitionError(ErrMsgEmptyEndName, start)
		}
		if end.name == start {
			return nil, newDefinitionError(ErrMsgEndIsStart, start)
		}
		g.end = end.name
	}

	if len(intermediates) > 0 && g.end == "" {
		return nil, newDefinitionError(ErrMsgIntermediatesNeedEnd, start)
	}

	seen := make(map[string]struct{}, len(intermediates))
	for _, name := range intermediates {
		switch {
		case name == "":
			return nil, newDefinitionError(ErrMsgEmptyMarkerName, start)
		case name == g.end:
			return nil, newDefinitionError(ErrMsgIntermediateIsEnd, start).WithMetadata(MetaKeyMarker, name)
		case name == start:
			return nil, newDefinitionError(ErrMsgIntermediateIsStart, start).WithMetadata(MetaKeyMarker, name)
		}
		if _, dup := seen[name]; dup {
			return nil, newDefinitionError(ErrMsgDuplicateIntermediate, start).WithMetadata(MetaKeyMarker, name)
		}
		seen[name] = struct{}{}
		g.intermediates = append(g.intermediates, name)
	}

	return g, nil
}

// Start returns the start marker name
func (g *Grammar) Start() string {
	return g.start
}

// End returns the end marker name, or "" when the tag has none
func (g *Grammar) End() string {
	return g.end
}

// HasEnd reports whether the tag is a block with an end marker
func (g *Grammar) HasEnd() bool {
	return g.end != ""
}

// Intermediates returns the declared intermediate marker names in declaration order
func (g *Grammar) Intermediates() []string {
	if len(g.intermediates) == 0 {
		return nil
	}
	out := make([]string, len(g.intermediates))
	copy(out, g.intermediates)
	return out
}

// IsIntermediate reports whether name is a declared intermediate marker
func (g *Grammar) IsIntermediate(name string) bool {
	for _, n := range g.intermediates {
		if n == name {
			return true
		}
	}
	return false
}

// OpensSegment reports whether a marker of this name opens a segment,
// meaning it needs a handler.
func (g *Grammar) OpensSegment(name string) bool {
	return name == g.start || g.IsIntermediate(name)
}

// Markers returns the start marker followed by the intermediates
func (g *Grammar) Markers() []string {
	return append([]string{g.start}, g.intermediates...)
}

// StopNames returns the marker names the block parser stops at
func (g *Grammar) StopNames() []string {
	if !g.HasEnd() {
		return nil
	}
	return append(g.Intermediates(), g.end)
}
