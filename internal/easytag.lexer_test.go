package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTypes(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func TestLexer_Tokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "plain text",
			input: "Hello, World!",
			expected: []Token{
				{Type: TokenTypeText, Value: "Hello, World!"},
				{Type: TokenTypeEOF},
			},
		},
		{
			name:  "block tag",
			input: "{% box %}A{% endbox %}",
			expected: []Token{
				{Type: TokenTypeTag, Name: "box"},
				{Type: TokenTypeText, Value: "A"},
				{Type: TokenTypeTag, Name: "endbox"},
				{Type: TokenTypeEOF},
			},
		},
		{
			name:  "tag with arguments",
			input: "{%iftag cond=True%}",
			expected: []Token{
				{Type: TokenTypeTag, Name: "iftag", Value: "cond=True"},
				{Type: TokenTypeEOF},
			},
		},
		{
			name:  "variable",
			input: "Hi {{ user.name }}!",
			expected: []Token{
				{Type: TokenTypeText, Value: "Hi "},
				{Type: TokenTypeVar, Value: "user.name"},
				{Type: TokenTypeText, Value: "!"},
				{Type: TokenTypeEOF},
			},
		},
		{
			name:  "comment dropped",
			input: "a{# ignored {% box %} #}b",
			expected: []Token{
				{Type: TokenTypeText, Value: "a"},
				{Type: TokenTypeText, Value: "b"},
				{Type: TokenTypeEOF},
			},
		},
		{
			name:  "escaped tag open",
			input: `\{% box`,
			expected: []Token{
				{Type: TokenTypeText, Value: "{%"},
				{Type: TokenTypeText, Value: " box"},
				{Type: TokenTypeEOF},
			},
		},
		{
			name:  "close delimiter inside quoted argument",
			input: `{% section header="50 %} off" %}`,
			expected: []Token{
				{Type: TokenTypeTag, Name: "section", Value: `header="50 %} off"`},
				{Type: TokenTypeEOF},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewLexer(tt.input, nil).Tokenize()
			require.NoError(t, err)
			require.Len(t, tokens, len(tt.expected), "tokens: %v", tokens)

			for i, want := range tt.expected {
				assert.Equal(t, want.Type, tokens[i].Type, "token %d", i)
				assert.Equal(t, want.Name, tokens[i].Name, "token %d", i)
				assert.Equal(t, want.Value, tokens[i].Value, "token %d", i)
			}
		})
	}
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{name: "unterminated tag", input: "{% box", message: ErrMsgUnterminatedTag},
		{name: "invalid tag name", input: "{% 9box %}", message: ErrMsgInvalidTagName},
		{name: "invalid tag name character", input: "{% bo!x %}", message: ErrMsgInvalidTagName},
		{name: "empty tag", input: "{%  %}", message: ErrMsgInvalidTagName},
		{name: "empty variable", input: "{{ }}", message: ErrMsgEmptyVariable},
		{name: "unterminated comment", input: "{# open", message: ErrMsgUnterminatedComment},
		{name: "unterminated string", input: `{% box "open %}`, message: ErrMsgUnterminatedStr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLexer(tt.input, nil).Tokenize()
			require.Error(t, err)

			var lexErr *LexerError
			require.ErrorAs(t, err, &lexErr)
			assert.Equal(t, tt.message, lexErr.Message)
		})
	}
}

func TestLexer_CustomDelimiters(t *testing.T) {
	config := LexerConfig{TagOpen: "<%", TagClose: "%>", VarOpen: "<<", VarClose: ">>"}
	tokens, err := NewLexerWithConfig("<% box %><< name >>{% not a tag %}<% endbox %>", config, nil).Tokenize()
	require.NoError(t, err)

	assert.Equal(t, []TokenType{TokenTypeTag, TokenTypeVar, TokenTypeText, TokenTypeTag, TokenTypeEOF}, tokenTypes(tokens))
	assert.Equal(t, "box", tokens[0].Name)
	assert.Equal(t, "name", tokens[1].Value)
	assert.Equal(t, "{% not a tag %}", tokens[2].Value)
	assert.Equal(t, "endbox", tokens[3].Name)
}

func TestLexer_Positions(t *testing.T) {
	tokens, err := NewLexer("line one\n  {% box %}", nil).Tokenize()
	require.NoError(t, err)
	require.Len(t, tokens, 3)

	assert.Equal(t, 2, tokens[1].Position.Line)
	assert.Equal(t, 3, tokens[1].Position.Column)
	assert.Equal(t, 11, tokens[1].Position.Offset)
}
