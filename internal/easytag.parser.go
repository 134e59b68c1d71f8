package internal

import (
	"fmt"

	"go.uber.org/zap"
)

// ParserConfig holds parser configuration
type ParserConfig struct {
	MaxDepth        int  // Maximum tag nesting depth (0 = unlimited)
	StrictVariables bool // Missing variables fail resolution instead of yielding nil
}

// DefaultParserConfig returns the default parser configuration
func DefaultParserConfig() ParserConfig {
	return ParserConfig{MaxDepth: DefaultMaxDepth}
}

// Parser produces an AST from a token stream. Tag compilers drive it
// re-entrantly through ParseUntil, NextToken and ParseArgs.
type Parser struct {
	tokens    []Token
	pos       int
	compilers CompilerLookup
	config    ParserConfig
	depth     int
	logger    *zap.Logger
}

// NewParser creates a new parser for the given token stream
func NewParser(tokens []Token, compilers CompilerLookup, logger *zap.Logger) *Parser {
	return NewParserWithConfig(tokens, compilers, DefaultParserConfig(), logger)
}

// NewParserWithConfig creates a parser with custom configuration
func NewParserWithConfig(tokens []Token, compilers CompilerLookup, config ParserConfig, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgParserCreated, zap.Int(LogFieldTokens, len(tokens)))
	return &Parser{
		tokens:    tokens,
		compilers: compilers,
		config:    config,
		logger:    logger,
	}
}

// Parse produces the AST root node from the token stream
func (p *Parser) Parse() (*RootNode, error) {
	p.logger.Debug(LogMsgParserStart)

	nodes, stop, err := p.ParseUntil(nil)
	if err != nil {
		return nil, err
	}
	if stop != "" {
		tok := p.Current()
		return nil, &ParserError{Message: ErrMsgUnknownTag, Position: tok.Position, TagName: stop}
	}

	p.logger.Debug(LogMsgParserEnd, zap.Int(LogFieldNodes, len(nodes)))
	return &RootNode{Children: nodes}, nil
}

// ParseUntil parses nodes until it reaches a tag marker whose name is in stop,
// or a tag marker no compiler is registered for. The marker is left unconsumed
// and its name returned. An exhausted stream returns an empty name.
func (p *Parser) ParseUntil(stop []string) (NodeList, string, error) {
	nodes := NodeList{}

	for {
		tok := p.Current()

		switch tok.Type {
		case TokenTypeEOF:
			return nodes, "", nil

		case TokenTypeText:
			p.NextToken()
			nodes = append(nodes, NewTextNode(tok.Value, tok.Position))

		case TokenTypeVar:
			p.NextToken()
			val, err := ParseValue(tok.Value, p.config.StrictVariables)
			if err != nil {
				return nil, "", &ParserError{Message: ErrMsgInvalidVariable, Position: tok.Position, Cause: err}
			}
			nodes = append(nodes, NewVarNode(val, tok.Position))

		case TokenTypeTag:
			if containsName(stop, tok.Name) {
				p.logger.Debug(LogMsgParseUntilStop, zap.String(LogFieldMarker, tok.Name))
				return nodes, tok.Name, nil
			}
			compiler, ok := p.lookup(tok.Name)
			if !ok {
				p.logger.Debug(LogMsgParseUntilStop, zap.String(LogFieldMarker, tok.Name))
				return nodes, tok.Name, nil
			}
			node, err := p.compileTag(compiler, tok)
			if err != nil {
				return nil, "", err
			}
			nodes = append(nodes, node)

		default:
			return nil, "", &ParserError{Message: ErrMsgUnexpectedToken, Position: tok.Position}
		}
	}
}

// SkipUntil advances past every token up to the next tag marker named end,
// whatever its nesting, and leaves that marker unconsumed. It reports false
// when the stream ends first.
func (p *Parser) SkipUntil(end string) bool {
	for {
		tok := p.Current()
		switch {
		case tok.Type == TokenTypeEOF:
			return false
		case tok.Type == TokenTypeTag && tok.Name == end:
			p.logger.Debug(LogMsgParseUntilStop, zap.String(LogFieldMarker, tok.Name))
			return true
		}
		p.NextToken()
	}
}

// compileTag consumes the start marker and hands the stream to the tag's compiler
func (p *Parser) compileTag(compiler TagCompiler, start Token) (Node, error) {
	if p.config.MaxDepth > 0 && p.depth >= p.config.MaxDepth {
		return nil, &ParserError{Message: ErrMsgMaxDepthExceeded, Position: start.Position, TagName: start.Name}
	}

	p.logger.Debug(LogMsgTagCompile, zap.String(LogFieldTag, start.Name), zap.Int(LogFieldDepth, p.depth))
	p.NextToken()
	p.depth++
	defer func() { p.depth-- }()

	renderer, err := compiler.Compile(p, start)
	if err != nil {
		return nil, err
	}
	return NewTagNode(start.Name, renderer, start.Position), nil
}

// ParseArgs parses the argument bits of a tag marker token
func (p *Parser) ParseArgs(tok Token) (CallArgs, error) {
	args, err := ParseCallArgs(tok.Value, p.config.StrictVariables)
	if err != nil {
		return CallArgs{}, &ParserError{Message: ErrMsgInvalidArguments, Position: tok.Position, TagName: tok.Name, Cause: err}
	}
	return args, nil
}

// Current returns the current token without consuming it
func (p *Parser) Current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenTypeEOF}
	}
	return p.tokens[p.pos]
}

// NextToken consumes and returns the current token
func (p *Parser) NextToken() Token {
	tok := p.Current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// Depth returns the current tag nesting depth
func (p *Parser) Depth() int {
	return p.depth
}

func (p *Parser) lookup(name string) (TagCompiler, bool) {
	if p.compilers == nil {
		return nil, false
	}
	return p.compilers.Get(name)
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// ParserError represents a parser error with context
type ParserError struct {
	Message  string
	Position Position
	TagName  string
	Cause    error
}

func (e *ParserError) Error() string {
	msg := e.Message
	if e.TagName != "" {
		msg = fmt.Sprintf(ErrFmtTagMessage, e.Message, e.TagName)
	}
	result := fmt.Sprintf(ErrFmtWithPosition, msg, e.Position.String())
	if e.Cause != nil {
		result = fmt.Sprintf(ErrFmtWithCause, result, e.Cause)
	}
	return result
}

// Unwrap returns the underlying cause
func (e *ParserError) Unwrap() error {
	return e.Cause
}

// Parser error message constants
const (
	ErrMsgUnexpectedToken  = "unexpected token"
	ErrMsgUnknownTag       = "unknown tag"
	ErrMsgInvalidVariable  = "invalid variable expression"
	ErrMsgInvalidArguments = "invalid tag arguments"
	ErrMsgMaxDepthExceeded = "maximum nesting depth exceeded"
)
