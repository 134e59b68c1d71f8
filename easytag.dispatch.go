package easytag

import (
	"context"
	"strings"
)

// Content is a parsed region of the host template, rendered on demand.
// Handlers receive the content of their own segment.
type Content interface {
	Render(ctx context.Context, scope Scope) (string, error)
	IsEmpty() bool
}

// emptyContent is the content of a tag without an end marker
type emptyContent struct{}

func (emptyContent) Render(context.Context, Scope) (string, error) { return "", nil }

func (emptyContent) IsEmpty() bool { return true }

// RenderOverride wraps the default render of a tag occurrence. next produces
// the concatenated handler output; an override may call it, transform its
// result, or skip it.
type RenderOverride func(rc *RenderContext, next func() (string, error)) (string, error)

// Renderer may be implemented by a tag's per-pass receiver to wrap the
// default render, as RenderOverride does.
type Renderer interface {
	RenderTag(rc *RenderContext, next func() (string, error)) (string, error)
}

// RenderContext carries one render pass of one tag occurrence. It is created
// fresh for every pass and shared by all handlers of that pass.
type RenderContext struct {
	ctx      context.Context
	scope    Scope
	instance *Instance
	receiver any
	state    map[string]any
	marker   string
	index    int
}

// Context returns the context.Context of the render call
func (rc *RenderContext) Context() context.Context {
	return rc.ctx
}

// Scope returns the render scope
func (rc *RenderContext) Scope() Scope {
	return rc.scope
}

// Instance returns the tag occurrence being rendered
func (rc *RenderContext) Instance() *Instance {
	return rc.instance
}

// Marker returns the marker name of the segment being dispatched
func (rc *RenderContext) Marker() string {
	return rc.marker
}

// Index returns the position of the segment being dispatched, or -1 outside dispatch
func (rc *RenderContext) Index() int {
	return rc.index
}

// Receiver returns the per-pass receiver created by Definition.New, or nil
func (rc *RenderContext) Receiver() any {
	return rc.receiver
}

// Get returns per-pass state stored by an earlier handler
func (rc *RenderContext) Get(key string) (any, bool) {
	v, ok := rc.state[key]
	return v, ok
}

// Set stores per-pass state for later handlers of the same pass
func (rc *RenderContext) Set(key string, value any) {
	if rc.state == nil {
		rc.state = make(map[string]any)
	}
	rc.state[key] = value
}

// Render renders content against the pass's scope
func (rc *RenderContext) Render(content Content) (string, error) {
	return content.Render(rc.ctx, rc.scope)
}

// RenderWith renders content against another scope
func (rc *RenderContext) RenderWith(content Content, scope Scope) (string, error) {
	return content.Render(rc.ctx, scope)
}

// Render produces the output of the tag occurrence for one render pass.
// Every call resolves all arguments and runs all handlers again.
func (i *Instance) Render(ctx context.Context, scope Scope) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rc := &RenderContext{
		ctx:      ctx,
		scope:    scope,
		instance: i,
		index:    -1,
	}
	if i.tag.newReceiver != nil {
		rc.receiver = i.tag.newReceiver()
	}

	next := func() (string, error) {
		return i.renderSegments(rc)
	}

	var out string
	var err error
	if i.tag.override != nil {
		out, err = i.tag.override(rc, next)
	} else if r, ok := rc.receiver.(Renderer); ok {
		out, err = r.RenderTag(rc, next)
	} else {
		out, err = next()
	}
	if err != nil {
		return "", wrapHandlerError(err, i.tag.Name(), rc.marker)
	}
	return out, nil
}

// renderSegments dispatches every segment in document order and concatenates the results
func (i *Instance) renderSegments(rc *RenderContext) (string, error) {
	var sb strings.Builder
	for idx, seg := range i.segments {
		if err := rc.ctx.Err(); err != nil {
			return "", NewRenderError(ErrMsgRenderCancelled, i.tag.Name(), seg.Marker, err)
		}
		rc.marker = seg.Marker
		rc.index = idx

		handler, ok := i.tag.handlers[seg.Marker]
		if !ok {
			return "", NewDispatchError(seg.Marker, i.tag.Name())
		}

		resolved, err := seg.Args.Resolve(rc.scope)
		if err != nil {
			return "", NewArgumentResolveError(seg.Marker, err)
		}
		frame, err := Bind(handler.Signature, resolved)
		if err != nil {
			return "", withMarker(err, i.tag.Name(), seg.Marker)
		}

		out, err := handler.Fn(rc, seg.Content, frame)
		if err != nil {
			return "", wrapHandlerError(err, i.tag.Name(), seg.Marker)
		}
		sb.WriteString(out)
	}
	rc.index = -1
	return sb.String(), nil
}

// wrapHandlerError propagates engine errors unchanged and wraps anything else
// as a render error
func wrapHandlerError(err error, tagName, marker string) error {
	if isEngineError(err) {
		return err
	}
	return NewRenderError(ErrMsgHandlerFailed, tagName, marker, err)
}
