package easytag

// TokenStream is the host parser positioned just after a tag's start marker.
type TokenStream interface {
	// ParseUntil parses content until a marker named in stop, or a marker the
	// host cannot compile itself, appears at the current nesting depth. The
	// marker is left unconsumed and its name returned; "" means the stream
	// ended first.
	ParseUntil(stop []string) (Content, string, error)

	// SkipUntil discards everything up to the next marker named end, without
	// parsing it. The marker is left unconsumed. It reports false when the
	// stream ends first.
	SkipUntil(end string) bool

	// ParseMarkerArgs consumes the marker ParseUntil or SkipUntil stopped at
	// and parses its call-site arguments.
	ParseMarkerArgs() (CallArgs, error)
}

// Compile runs the block parser for one occurrence of tag. startArgs are the
// arguments attached to the start marker, which the host has already consumed.
func Compile(tag *Tag, stream TokenStream, startArgs CallArgs) (*Instance, error) {
	g := tag.grammar
	inst := &Instance{tag: tag}

	if !g.HasEnd() {
		inst.segments = []Segment{{Marker: g.start, Args: startArgs, Content: emptyContent{}}}
		return inst, nil
	}

	if tag.skipBody {
		if !stream.SkipUntil(g.end) {
			return nil, NewUnterminatedBlockError(g.start, g.end)
		}
		if err := consumeEndMarker(stream, g); err != nil {
			return nil, err
		}
		inst.segments = []Segment{{Marker: g.start, Args: startArgs, Content: emptyContent{}}}
		return inst, nil
	}

	stop := g.StopNames()
	pending := Segment{Marker: g.start, Args: startArgs}
	for {
		content, name, err := stream.ParseUntil(stop)
		if err != nil {
			return nil, err
		}
		if name == "" {
			return nil, NewUnterminatedBlockError(g.start, g.end)
		}

		pending.Content = content
		inst.segments = append(inst.segments, pending)

		if name == g.end {
			if err := consumeEndMarker(stream, g); err != nil {
				return nil, err
			}
			return inst, nil
		}

		if !g.IsIntermediate(name) {
			return nil, NewUnexpectedMarkerError(name, g.start)
		}
		args, err := stream.ParseMarkerArgs()
		if err != nil {
			return nil, err
		}
		pending = Segment{Marker: name, Args: args}
	}
}

// consumeEndMarker consumes the end marker, which takes no arguments
func consumeEndMarker(stream TokenStream, g *Grammar) error {
	args, err := stream.ParseMarkerArgs()
	if err != nil {
		return err
	}
	if !args.IsEmpty() {
		return NewEndMarkerArgumentsError(g.end, g.start)
	}
	return nil
}
