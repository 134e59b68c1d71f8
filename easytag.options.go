package easytag

import (
	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	tagOpen         string
	tagClose        string
	varOpen         string
	varClose        string
	commentOpen     string
	commentClose    string
	maxDepth        int
	strictVariables bool
	builtins        bool
	logger          *zap.Logger
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		tagOpen:      DefaultTagOpen,
		tagClose:     DefaultTagClose,
		varOpen:      DefaultVarOpen,
		varClose:     DefaultVarClose,
		commentOpen:  DefaultCommentOpen,
		commentClose: DefaultCommentClose,
		maxDepth:     DefaultMaxDepth,
		builtins:     true,
	}
}

// WithTagDelimiters sets custom delimiters for tag markers.
// Default: "{%" and "%}"
func WithTagDelimiters(open, close string) Option {
	return func(c *engineConfig) {
		if open != "" {
			c.tagOpen = open
		}
		if close != "" {
			c.tagClose = close
		}
	}
}

// WithVarDelimiters sets custom delimiters for variable output.
// Default: "{{" and "}}"
func WithVarDelimiters(open, close string) Option {
	return func(c *engineConfig) {
		if open != "" {
			c.varOpen = open
		}
		if close != "" {
			c.varClose = close
		}
	}
}

// WithCommentDelimiters sets custom delimiters for comments.
// Default: "{#" and "#}"
func WithCommentDelimiters(open, close string) Option {
	return func(c *engineConfig) {
		if open != "" {
			c.commentOpen = open
		}
		if close != "" {
			c.commentClose = close
		}
	}
}

// WithMaxDepth sets the maximum tag nesting depth.
// Use 0 for unlimited depth.
// Default: 64
func WithMaxDepth(depth int) Option {
	return func(c *engineConfig) {
		c.maxDepth = depth
	}
}

// WithStrictVariables makes unresolvable variable paths a render error
// instead of rendering as empty.
func WithStrictVariables() Option {
	return func(c *engineConfig) {
		c.strictVariables = true
	}
}

// WithoutBuiltins creates the engine without the built-in tags.
func WithoutBuiltins() Option {
	return func(c *engineConfig) {
		c.builtins = false
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}
