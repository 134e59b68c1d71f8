package easytag

import (
	"reflect"
	"sort"
	"strings"
	"unicode"
)

// Definition declares a tag: its markers and one handler per segment-opening
// marker. Handlers come from the Handlers map or, for markers without an
// entry there, from methods on the receiver returned by New. The method for a
// marker is its name in CamelCase: "iftag" -> Iftag, "end_section" -> EndSection.
type Definition struct {
	Name          string
	EndTag        EndTag
	Intermediates []string
	Handlers      map[string]Handler

	// New creates the receiver shared by all handlers of one render pass.
	// It is called once per pass, so receiver state never outlives the pass.
	// Handler methods with pointer receivers need New to return a pointer.
	New func() any

	// Render optionally wraps the default render. A receiver implementing
	// Renderer is used when this is nil.
	Render RenderOverride

	// SkipBody discards everything between the start and end markers
	// unparsed, so markers inside it are never checked. The tag then has a
	// single start segment with empty content. It needs an end marker and no
	// intermediates.
	SkipBody bool
}

// Tag is a validated definition with its handler table built
type Tag struct {
	grammar     *Grammar
	handlers    map[string]Handler
	newReceiver func() any
	override    RenderOverride
	skipBody    bool
}

// NewTag validates a definition and resolves its handlers.
// Receiver methods are introspected here, once.
func NewTag(def Definition) (*Tag, error) {
	g, err := NewGrammar(def.Name, def.EndTag, def.Intermediates)
	if err != nil {
		return nil, err
	}

	if def.SkipBody && (!g.HasEnd() || len(g.intermediates) > 0) {
		return nil, newDefinitionError(ErrMsgSkipBodyLayout, def.Name)
	}

	tag := &Tag{
		grammar:     g,
		handlers:    make(map[string]Handler, len(def.Handlers)),
		newReceiver: def.New,
		override:    def.Render,
		skipBody:    def.SkipBody,
	}

	for marker, h := range def.Handlers {
		if !g.OpensSegment(marker) {
			return nil, newDefinitionError(ErrMsgHandlerUndeclared, def.Name).WithMetadata(MetaKeyMarker, marker)
		}
		if h.Fn == nil {
			return nil, newDefinitionError(ErrMsgNilHandler, def.Name).WithMetadata(MetaKeyMarker, marker)
		}
		if err := h.Signature.validate(def.Name); err != nil {
			return nil, err
		}
		tag.handlers[marker] = h
	}

	if def.New != nil {
		sample := def.New()
		if sample == nil {
			return nil, newDefinitionError(ErrMsgNilReceiver, def.Name)
		}
		recvType := reflect.TypeOf(sample)
		for _, marker := range g.Markers() {
			if _, explicit := tag.handlers[marker]; explicit {
				continue
			}
			method, ok := recvType.MethodByName(MethodName(marker))
			if !ok {
				if recvType.Kind() != reflect.Pointer {
					if _, onPtr := reflect.PointerTo(recvType).MethodByName(MethodName(marker)); onPtr {
						return nil, newDefinitionError(ErrMsgPointerReceiver, def.Name).WithMetadata(MetaKeyMarker, marker)
					}
				}
				continue
			}
			h, err := methodHandler(recvType, method)
			if err != nil {
				return nil, withMarker(err, def.Name, marker)
			}
			tag.handlers[marker] = h
		}
	}

	return tag, nil
}

// MustNewTag creates a tag and panics if the definition is invalid
func MustNewTag(def Definition) *Tag {
	tag, err := NewTag(def)
	if err != nil {
		panic(err)
	}
	return tag
}

// Name returns the start marker name
func (t *Tag) Name() string {
	return t.grammar.start
}

// Grammar returns the tag's marker layout
func (t *Tag) Grammar() *Grammar {
	return t.grammar
}

// Describe returns the start and end marker names the host wires the tag with
func (t *Tag) Describe() (start, end string, hasEnd bool) {
	return t.grammar.start, t.grammar.end, t.grammar.HasEnd()
}

// Handler returns the handler bound to a marker
func (t *Tag) Handler(marker string) (Handler, bool) {
	h, ok := t.handlers[marker]
	return h, ok
}

// HandledMarkers returns the marker names with a handler, sorted
func (t *Tag) HandledMarkers() []string {
	names := make([]string, 0, len(t.handlers))
	for name := range t.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MethodName returns the receiver method name that handles a marker
func MethodName(marker string) string {
	parts := strings.FieldsFunc(marker, func(r rune) bool {
		return strings.ContainsRune(markerNameSeparators, r)
	})
	var sb strings.Builder
	for _, part := range parts {
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		sb.WriteString(string(runes))
	}
	return sb.String()
}
