package internal

import "fmt"

// Position represents a location in the source template
type Position struct {
	Offset int // Byte offset from start
	Line   int // 1-indexed line number
	Column int // 1-indexed column number
}

// String returns a human-readable position string
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Token represents a lexical token produced by the lexer.
// For TAG tokens Name holds the marker name and Value the remaining argument bits;
// for VAR tokens Value holds the trimmed expression.
type Token struct {
	Type     TokenType
	Name     string
	Value    string
	Position Position
}

// String returns a human-readable representation of the token
func (t Token) String() string {
	switch t.Type {
	case TokenTypeTag:
		if t.Value == "" {
			return fmt.Sprintf("Token{%s: %s @ %s}", t.Type, t.Name, t.Position)
		}
		return fmt.Sprintf("Token{%s: %s %q @ %s}", t.Type, t.Name, t.Value, t.Position)
	case TokenTypeEOF:
		return fmt.Sprintf("Token{%s @ %s}", t.Type, t.Position)
	default:
		return fmt.Sprintf("Token{%s: %q @ %s}", t.Type, t.Value, t.Position)
	}
}

// IsEOF returns true if this is an end-of-file token
func (t Token) IsEOF() bool {
	return t.Type == TokenTypeEOF
}

// IsTag returns true if this is a tag marker token
func (t Token) IsTag() bool {
	return t.Type == TokenTypeTag
}

// NewEOFToken creates an EOF token at the given position
func NewEOFToken(pos Position) Token {
	return Token{Type: TokenTypeEOF, Position: pos}
}

// NewTextToken creates a text token with the given content
func NewTextToken(content string, pos Position) Token {
	return Token{Type: TokenTypeText, Value: content, Position: pos}
}

// NewVarToken creates a variable output token
func NewVarToken(expr string, pos Position) Token {
	return Token{Type: TokenTypeVar, Value: expr, Position: pos}
}

// NewTagToken creates a tag marker token
func NewTagToken(name, bits string, pos Position) Token {
	return Token{Type: TokenTypeTag, Name: name, Value: bits, Position: pos}
}
