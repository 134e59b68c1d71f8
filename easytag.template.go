package easytag

import (
	"context"

	"github.com/itsatony/go-easytag/internal"
	"go.uber.org/zap"
)

// Template represents a parsed template that can be executed multiple times,
// concurrently. Each execution is an independent render pass.
type Template struct {
	source string
	root   *internal.RootNode
	logger *zap.Logger
}

func newTemplate(source string, root *internal.RootNode, logger *zap.Logger) *Template {
	return &Template{source: source, root: root, logger: logger}
}

// Source returns the original template source string.
func (t *Template) Source() string {
	return t.source
}

// Execute renders the template with the given data.
// This is a convenience method that creates a Context from the data map.
func (t *Template) Execute(ctx context.Context, data map[string]any) (string, error) {
	return t.ExecuteWithScope(ctx, NewContext(data))
}

// ExecuteWithScope renders the template against any scope.
func (t *Template) ExecuteWithScope(ctx context.Context, scope Scope) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	t.logger.Debug(LogMsgTemplateExecute, zap.Int(LogFieldSourceLen, len(t.source)))

	out, err := t.root.Render(ctx, scope)
	if err != nil {
		return "", toRenderError(err)
	}

	t.logger.Debug(LogMsgTemplateExecuted, zap.Int(LogFieldOutputLen, len(out)))
	return out, nil
}
