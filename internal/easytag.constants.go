package internal

// TokenType represents the type of a lexical token
type TokenType string

// Token type constants
const (
	TokenTypeText TokenType = "TEXT"
	TokenTypeVar  TokenType = "VAR"
	TokenTypeTag  TokenType = "TAG"
	TokenTypeEOF  TokenType = "EOF"
)

// NodeType identifies AST node types
type NodeType int

// Node type constants
const (
	NodeTypeRoot NodeType = iota
	NodeTypeText
	NodeTypeVar
	NodeTypeTag
)

// Node type string names for debugging
const (
	NodeTypeNameRoot = "ROOT"
	NodeTypeNameText = "TEXT"
	NodeTypeNameVar  = "VAR"
	NodeTypeNameTag  = "TAG"
)

// String returns the string representation of the node type
func (n NodeType) String() string {
	switch n {
	case NodeTypeText:
		return NodeTypeNameText
	case NodeTypeVar:
		return NodeTypeNameVar
	case NodeTypeTag:
		return NodeTypeNameTag
	default:
		return NodeTypeNameRoot
	}
}

// Character constants
const (
	CharEquals      = '='
	CharDoubleQuote = '"'
	CharSingleQuote = '\''
	CharBackslash   = '\\'
	CharNewline     = '\n'
	CharSpace       = ' '
	CharTab         = '\t'
	CharCarriageRet = '\r'
	CharDot         = '.'
	CharUnderscore  = '_'
	CharMinus       = '-'
)

// Default delimiters
const (
	StrTagOpen      = "{%"
	StrTagClose     = "%}"
	StrVarOpen      = "{{"
	StrVarClose     = "}}"
	StrCommentOpen  = "{#"
	StrCommentClose = "#}"
	StrEscape       = "\\"
)

// Literal keywords accepted in call-site arguments
const (
	KeywordTrue       = "True"
	KeywordFalse      = "False"
	KeywordNone       = "None"
	KeywordTrueLower  = "true"
	KeywordFalseLower = "false"
	KeywordNil        = "nil"
)

// Path separator for dotted variable lookup
const PathSeparator = "."

// Display constants
const (
	MaxStringDisplayLength = 40
	TruncatedStringLength  = 37
	TruncationSuffix       = "..."
	StringValueEmpty       = ""
)

// Log message constants
const (
	LogMsgLexerCreated       = "lexer created"
	LogMsgTokenizerStart     = "starting tokenization"
	LogMsgTokenizerEnd       = "tokenization complete"
	LogMsgParserCreated      = "parser created"
	LogMsgParserStart        = "starting parse"
	LogMsgParserEnd          = "parse complete"
	LogMsgParseUntilStop     = "parse stopped at marker"
	LogMsgTagCompile         = "compiling tag"
	LogMsgRegistryCreated    = "registry created"
	LogMsgCompilerRegistered = "compiler registered"
	LogMsgCompilerCollision  = "compiler collision"
)

// Log field constants
const (
	LogFieldSource   = "source_length"
	LogFieldTokens   = "token_count"
	LogFieldNodes    = "node_count"
	LogFieldTag      = "tag"
	LogFieldMarker   = "marker"
	LogFieldDepth    = "depth"
	LogFieldTagName  = "tag_name"
	LogFieldExisting = "existing"
)

// Error format strings
const (
	ErrFmtWithPosition = "%s at %s"
	ErrFmtTagMessage   = "%s: %s"
	ErrFmtWithCause    = "%s: %v"
)

// Defaults
const (
	DefaultMaxDepth = 64
)
