package internal

import (
	"strings"

	"go.uber.org/zap"
)

// LexerConfig holds lexer configuration
type LexerConfig struct {
	TagOpen      string // Opening delimiter for tag markers (default: "{%")
	TagClose     string // Closing delimiter for tag markers (default: "%}")
	VarOpen      string // Opening delimiter for variable output (default: "{{")
	VarClose     string // Closing delimiter for variable output (default: "}}")
	CommentOpen  string // Opening delimiter for comments (default: "{#")
	CommentClose string // Closing delimiter for comments (default: "#}")
}

// DefaultLexerConfig returns the default lexer configuration
func DefaultLexerConfig() LexerConfig {
	return LexerConfig{
		TagOpen:      StrTagOpen,
		TagClose:     StrTagClose,
		VarOpen:      StrVarOpen,
		VarClose:     StrVarClose,
		CommentOpen:  StrCommentOpen,
		CommentClose: StrCommentClose,
	}
}

// withDefaults fills empty delimiters from the default configuration
func (c LexerConfig) withDefaults() LexerConfig {
	def := DefaultLexerConfig()
	if c.TagOpen == "" {
		c.TagOpen = def.TagOpen
	}
	if c.TagClose == "" {
		c.TagClose = def.TagClose
	}
	if c.VarOpen == "" {
		c.VarOpen = def.VarOpen
	}
	if c.VarClose == "" {
		c.VarClose = def.VarClose
	}
	if c.CommentOpen == "" {
		c.CommentOpen = def.CommentOpen
	}
	if c.CommentClose == "" {
		c.CommentClose = def.CommentClose
	}
	return c
}

// Lexer tokenizes template source into a token stream
type Lexer struct {
	source string
	config LexerConfig
	pos    int // Current byte position
	line   int // Current line (1-indexed)
	column int // Current column (1-indexed)
	logger *zap.Logger
}

// NewLexer creates a new lexer with default configuration
func NewLexer(source string, logger *zap.Logger) *Lexer {
	return NewLexerWithConfig(source, DefaultLexerConfig(), logger)
}

// NewLexerWithConfig creates a lexer with custom configuration
func NewLexerWithConfig(source string, config LexerConfig, logger *zap.Logger) *Lexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug(LogMsgLexerCreated, zap.Int(LogFieldSource, len(source)))
	return &Lexer{
		source: source,
		config: config.withDefaults(),
		line:   1,
		column: 1,
		logger: logger,
	}
}

// Tokenize processes the source and returns a token stream
func (l *Lexer) Tokenize() ([]Token, error) {
	l.logger.Debug(LogMsgTokenizerStart)
	var tokens []Token

	for !l.isAtEnd() {
		if delim, ok := l.escapedDelim(); ok {
			pos := l.currentPosition()
			l.advanceN(len(StrEscape) + len(delim))
			tokens = append(tokens, NewTextToken(delim, pos))
			continue
		}

		switch {
		case l.matchStr(l.config.CommentOpen):
			if err := l.skipComment(); err != nil {
				return nil, err
			}
		case l.matchStr(l.config.TagOpen):
			tok, err := l.scanTag()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		case l.matchStr(l.config.VarOpen):
			tok, err := l.scanVar()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		default:
			if tok := l.scanText(); tok.Value != "" {
				tokens = append(tokens, tok)
			}
		}
	}

	tokens = append(tokens, NewEOFToken(l.currentPosition()))
	l.logger.Debug(LogMsgTokenizerEnd, zap.Int(LogFieldTokens, len(tokens)))
	return tokens, nil
}

// scanText scans text content until the next delimiter or escape sequence
func (l *Lexer) scanText() Token {
	startPos := l.currentPosition()
	var sb strings.Builder

	for !l.isAtEnd() {
		if _, ok := l.escapedDelim(); ok {
			break
		}
		if l.matchStr(l.config.TagOpen) || l.matchStr(l.config.VarOpen) || l.matchStr(l.config.CommentOpen) {
			break
		}
		sb.WriteByte(l.advance())
	}

	return NewTextToken(sb.String(), startPos)
}

// scanTag scans a tag marker: open delimiter, name, argument bits, close delimiter
func (l *Lexer) scanTag() (Token, error) {
	startPos := l.currentPosition()
	l.advanceN(len(l.config.TagOpen))

	content, err := l.scanUntilClose(l.config.TagClose)
	if err != nil {
		return Token{}, err
	}

	content = strings.TrimSpace(content)
	nameEnd := 0
	for nameEnd < len(content) && isTagNameChar(content[nameEnd], nameEnd == 0) {
		nameEnd++
	}
	if nameEnd == 0 {
		return Token{}, &LexerError{Message: ErrMsgInvalidTagName, Position: startPos}
	}
	if nameEnd < len(content) && !isSpace(content[nameEnd]) {
		return Token{}, &LexerError{Message: ErrMsgInvalidTagName, Position: startPos}
	}

	name := content[:nameEnd]
	bits := strings.TrimSpace(content[nameEnd:])
	return NewTagToken(name, bits, startPos), nil
}

// scanVar scans a variable output expression
func (l *Lexer) scanVar() (Token, error) {
	startPos := l.currentPosition()
	l.advanceN(len(l.config.VarOpen))

	content, err := l.scanUntilClose(l.config.VarClose)
	if err != nil {
		return Token{}, err
	}

	expr := strings.TrimSpace(content)
	if expr == "" {
		return Token{}, &LexerError{Message: ErrMsgEmptyVariable, Position: startPos}
	}
	return NewVarToken(expr, startPos), nil
}

// skipComment discards everything up to and including the comment close delimiter
func (l *Lexer) skipComment() error {
	startPos := l.currentPosition()
	l.advanceN(len(l.config.CommentOpen))
	for !l.isAtEnd() {
		if l.matchStr(l.config.CommentClose) {
			l.advanceN(len(l.config.CommentClose))
			return nil
		}
		l.advance()
	}
	return &LexerError{Message: ErrMsgUnterminatedComment, Position: startPos}
}

// scanUntilClose collects raw content up to the close delimiter, skipping over
// quoted strings so a delimiter inside a literal does not end the tag.
func (l *Lexer) scanUntilClose(closeDelim string) (string, error) {
	var sb strings.Builder
	for !l.isAtEnd() {
		if l.matchStr(closeDelim) {
			l.advanceN(len(closeDelim))
			return sb.String(), nil
		}

		ch := l.peek()
		if ch == CharDoubleQuote || ch == CharSingleQuote {
			literal, err := l.scanQuoted(ch)
			if err != nil {
				return "", err
			}
			sb.WriteString(literal)
			continue
		}
		sb.WriteByte(l.advance())
	}
	return "", &LexerError{Message: ErrMsgUnterminatedTag, Position: l.currentPosition()}
}

// scanQuoted consumes a quoted literal verbatim (quotes and escapes included)
func (l *Lexer) scanQuoted(quote byte) (string, error) {
	startPos := l.currentPosition()
	var sb strings.Builder
	sb.WriteByte(l.advance())

	for !l.isAtEnd() {
		ch := l.advance()
		sb.WriteByte(ch)
		if ch == CharBackslash && !l.isAtEnd() {
			sb.WriteByte(l.advance())
			continue
		}
		if ch == quote {
			return sb.String(), nil
		}
	}
	return "", &LexerError{Message: ErrMsgUnterminatedStr, Position: startPos}
}

// Helper methods

// currentPosition returns the current position
func (l *Lexer) currentPosition() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

// isAtEnd returns true if we've reached the end of source
func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

// peek returns the current character without advancing
func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

// advance consumes and returns the current character
func (l *Lexer) advance() byte {
	if l.isAtEnd() {
		return 0
	}
	ch := l.source[l.pos]
	l.pos++
	if ch == CharNewline {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

// advanceN advances by n characters
func (l *Lexer) advanceN(n int) {
	for i := 0; i < n && !l.isAtEnd(); i++ {
		l.advance()
	}
}

// matchStr returns true if the remaining source starts with s
func (l *Lexer) matchStr(s string) bool {
	return strings.HasPrefix(l.source[l.pos:], s)
}

// escapedDelim reports whether an escaped open delimiter starts here and which one
func (l *Lexer) escapedDelim() (string, bool) {
	if !l.matchStr(StrEscape) {
		return "", false
	}
	rest := l.source[l.pos+len(StrEscape):]
	for _, delim := range []string{l.config.TagOpen, l.config.VarOpen, l.config.CommentOpen} {
		if strings.HasPrefix(rest, delim) {
			return delim, true
		}
	}
	return "", false
}

// Character classification helpers

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isSpace(ch byte) bool {
	return ch == CharSpace || ch == CharTab || ch == CharNewline || ch == CharCarriageRet
}

// isTagNameChar allows letters and underscore first, then digits, hyphen and dot
func isTagNameChar(ch byte, first bool) bool {
	if isLetter(ch) || ch == CharUnderscore {
		return true
	}
	if first {
		return false
	}
	return isDigit(ch) || ch == CharMinus || ch == CharDot
}

// LexerError represents a lexer error with position
type LexerError struct {
	Message  string
	Position Position
}

func (e *LexerError) Error() string {
	return e.Message + " at " + e.Position.String()
}

// Error message constants for lexer
const (
	ErrMsgUnterminatedTag     = "unterminated tag"
	ErrMsgUnterminatedStr     = "unterminated string literal"
	ErrMsgUnterminatedComment = "unterminated comment"
	ErrMsgInvalidTagName      = "invalid tag name"
	ErrMsgEmptyVariable       = "empty variable expression"
)
