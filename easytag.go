// Package easytag is an engine for compound block tags: tags that open with a
// start marker, may be divided by named intermediate markers, and close with
// an end marker. Each segment between two markers is rendered by the handler
// named after the marker that opens it.
//
//	{% iftag cond=flag %}
//	    shown when flag is true
//	{% else %}
//	    shown otherwise
//	{% enditag %}
//
// # Basic Usage
//
// Create an engine, register a tag and execute templates:
//
//	type ifTag struct{ cond bool }
//
//	type ifArgs struct {
//	    Cond bool `arg:"cond"`
//	}
//
//	func (t *ifTag) Iftag(rc *easytag.RenderContext, body easytag.Content, args ifArgs) (string, error) {
//	    t.cond = args.Cond
//	    if !t.cond {
//	        return "", nil
//	    }
//	    return rc.Render(body)
//	}
//
//	func (t *ifTag) Else(rc *easytag.RenderContext, body easytag.Content) (string, error) {
//	    if t.cond {
//	        return "", nil
//	    }
//	    return rc.Render(body)
//	}
//
//	engine := easytag.MustNew()
//	engine.MustRegister(easytag.Definition{
//	    Name:          "iftag",
//	    EndTag:        easytag.NamedEndTag("enditag"),
//	    Intermediates: []string{"else"},
//	    New:           func() any { return &ifTag{} },
//	})
//	out, err := engine.Execute(ctx, "{% iftag cond=flag %}Y{% else %}N{% enditag %}", map[string]any{"flag": true})
//	// out: "Y"
//
// # Markers
//
// EndTag selects the end marker: DerivedEndTag gives "end" + name,
// NamedEndTag uses a name verbatim, and the zero value declares a tag without
// an end marker whose single segment has empty content. Intermediate markers
// may appear any number of times in any order; segments keep document order.
//
// # Handlers
//
// A handler receives the render context, the segment's content and the
// marker's arguments. Arguments are bound Python-style: positional values fill
// required then optional parameters, keywords fill by name, and surplus values
// go to the catch-all slots when declared. Handlers are given explicitly as
// Handler{Signature, Fn}, built from typed functions with Func, or found as
// methods on the receiver created by Definition.New. A new receiver is created
// for every render pass, so state set by the start handler is visible to the
// later markers of the same pass and never leaks into the next one.
//
// # Error Handling
//
// All errors are *cuserr.CustomError values carrying a kind: definition,
// parse, binding, dispatch or render. Use IsParseError, IsBindingError and the
// other helpers to classify them. Parse and render errors carry line and
// column metadata of the tag they arose in.
//
// # Configuration
//
// Customize the engine with functional options or a YAML file:
//
//	engine, _ := easytag.New(
//	    easytag.WithTagDelimiters("<%", "%>"),
//	    easytag.WithMaxDepth(32),
//	    easytag.WithLogger(logger),
//	)
package easytag
