package easytag

import (
	"context"

	"github.com/itsatony/go-easytag/internal"
	"go.uber.org/zap"
)

// Engine is the main entry point: it owns the registered tags and turns
// template sources into executable templates.
type Engine struct {
	registry *internal.Registry
	config   *engineConfig
	logger   *zap.Logger
}

// TagInfo describes a registered tag
type TagInfo struct {
	Name          string   `json:"name"`
	End           string   `json:"end,omitempty"`
	Intermediates []string `json:"intermediates,omitempty"`
	Handlers      []string `json:"handlers"`
}

// New creates a new Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		registry: internal.NewRegistry(logger),
		config:   config,
		logger:   logger,
	}

	if config.builtins {
		for _, def := range Builtins() {
			if err := e.Register(def); err != nil {
				return nil, err
			}
		}
	}

	logger.Debug(LogMsgEngineCreated, zap.Int(LogFieldTagCount, e.registry.Count()))
	return e, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// Register validates a definition and adds the tag to the engine.
// Returns an error if a tag with the same name is already registered.
func (e *Engine) Register(def Definition) error {
	tag, err := NewTag(def)
	if err != nil {
		return err
	}
	return e.RegisterTag(tag)
}

// MustRegister adds a tag and panics if registration fails.
func (e *Engine) MustRegister(def Definition) {
	if err := e.Register(def); err != nil {
		panic(err)
	}
}

// RegisterTag adds an already built tag to the engine.
func (e *Engine) RegisterTag(tag *Tag) error {
	if tag == nil {
		return NewDefinitionError(ErrMsgNilTag, "")
	}
	if err := e.registry.Register(&tagCompiler{tag: tag, logger: e.logger}); err != nil {
		return NewTagExistsError(tag.Name())
	}

	_, end, _ := tag.Describe()
	e.logger.Debug(LogMsgTagRegistered,
		zap.String(LogFieldTag, tag.Name()),
		zap.String(LogFieldEnd, end),
	)
	return nil
}

// Tag returns a registered tag by name.
func (e *Engine) Tag(name string) (*Tag, bool) {
	compiler, ok := e.registry.Get(name)
	if !ok {
		return nil, false
	}
	tc, ok := compiler.(*tagCompiler)
	if !ok {
		return nil, false
	}
	return tc.tag, true
}

// HasTag checks if a tag is registered under the given name.
func (e *Engine) HasTag(name string) bool {
	return e.registry.Has(name)
}

// Tags describes all registered tags in name order.
func (e *Engine) Tags() []TagInfo {
	names := e.registry.List()
	infos := make([]TagInfo, 0, len(names))
	for _, name := range names {
		tag, ok := e.Tag(name)
		if !ok {
			continue
		}
		start, end, _ := tag.Describe()
		infos = append(infos, TagInfo{
			Name:          start,
			End:           end,
			Intermediates: tag.Grammar().Intermediates(),
			Handlers:      tag.HandledMarkers(),
		})
	}
	return infos
}

// Parse parses a template source string and returns a Template.
// The returned Template can be executed multiple times with different data.
func (e *Engine) Parse(source string) (*Template, error) {
	lexer := internal.NewLexerWithConfig(source, internal.LexerConfig{
		TagOpen:      e.config.tagOpen,
		TagClose:     e.config.tagClose,
		VarOpen:      e.config.varOpen,
		VarClose:     e.config.varClose,
		CommentOpen:  e.config.commentOpen,
		CommentClose: e.config.commentClose,
	}, e.logger)

	tokens, err := lexer.Tokenize()
	if err != nil {
		return nil, toParseError(err)
	}

	parser := internal.NewParserWithConfig(tokens, e.registry, internal.ParserConfig{
		MaxDepth:        e.config.maxDepth,
		StrictVariables: e.config.strictVariables,
	}, e.logger)

	root, err := parser.Parse()
	if err != nil {
		return nil, toParseError(err)
	}

	e.logger.Debug(LogMsgTemplateParsed, zap.Int(LogFieldSourceLen, len(source)))
	return newTemplate(source, root, e.logger), nil
}

// Validate parses a template source and reports the first error, if any.
func (e *Engine) Validate(source string) error {
	_, err := e.Parse(source)
	return err
}

// Execute is a convenience method that parses and executes in one step.
// For templates that will be executed multiple times, use Parse() instead.
func (e *Engine) Execute(ctx context.Context, source string, data map[string]any) (string, error) {
	tmpl, err := e.Parse(source)
	if err != nil {
		return "", err
	}
	return tmpl.Execute(ctx, data)
}
