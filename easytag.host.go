package easytag

import (
	"context"

	"github.com/itsatony/go-easytag/internal"
	"go.uber.org/zap"
)

// tagCompiler wires a tag's start marker into the host parser
type tagCompiler struct {
	tag    *Tag
	logger *zap.Logger
}

// TagName implements internal.TagCompiler
func (c *tagCompiler) TagName() string {
	return c.tag.Name()
}

// Compile implements internal.TagCompiler
func (c *tagCompiler) Compile(p *internal.Parser, start internal.Token) (internal.TagRenderer, error) {
	startArgs, err := p.ParseArgs(start)
	if err != nil {
		return nil, err
	}

	stream := &parserStream{parser: p}
	inst, err := Compile(c.tag, stream, startArgs)
	if err != nil {
		pos := start.Position
		if stream.stopped && !stream.eof {
			pos = stream.last.Position
		}
		return nil, withPosition(err, pos)
	}

	c.logger.Debug(LogMsgBlockCompiled,
		zap.String(LogFieldTag, c.tag.Name()),
		zap.Int(LogFieldSegments, inst.Len()),
	)
	return &instanceRenderer{instance: inst, pos: start.Position}, nil
}

// parserStream adapts the host parser to TokenStream
type parserStream struct {
	parser  *internal.Parser
	last    internal.Token
	stopped bool
	eof     bool
}

// ParseUntil implements TokenStream
func (s *parserStream) ParseUntil(stop []string) (Content, string, error) {
	nodes, name, err := s.parser.ParseUntil(stop)
	if err != nil {
		return nil, "", err
	}
	s.stopped = true
	s.eof = name == ""
	if !s.eof {
		s.last = s.parser.Current()
	}
	return nodes, name, nil
}

// SkipUntil implements TokenStream
func (s *parserStream) SkipUntil(end string) bool {
	found := s.parser.SkipUntil(end)
	s.stopped = true
	s.eof = !found
	if found {
		s.last = s.parser.Current()
	}
	return found
}

// ParseMarkerArgs implements TokenStream
func (s *parserStream) ParseMarkerArgs() (CallArgs, error) {
	tok := s.parser.NextToken()
	return s.parser.ParseArgs(tok)
}

// instanceRenderer is the host node payload for one compiled tag occurrence
type instanceRenderer struct {
	instance *Instance
	pos      Position
}

// Render implements internal.TagRenderer
func (r *instanceRenderer) Render(ctx context.Context, scope internal.ContextAccessor) (string, error) {
	out, err := r.instance.Render(ctx, scope)
	if err != nil {
		return "", withPosition(err, r.pos)
	}
	return out, nil
}
