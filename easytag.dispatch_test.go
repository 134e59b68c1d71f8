package easytag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsatony/go-easytag/internal"
)

func strictVar(path string) Value {
	return internal.VarRef{Path: path, Strict: true}
}

func compileScript(t *testing.T, def Definition, startArgs CallArgs, steps ...streamStep) *Instance {
	t.Helper()
	tag, err := NewTag(def)
	require.NoError(t, err)
	inst, err := Compile(tag, &fakeStream{steps: steps}, startArgs)
	require.NoError(t, err)
	return inst
}

type condTag struct {
	cond  bool
	calls int
}

type condArgs struct {
	Cond bool `arg:"cond"`
}

func (c *condTag) Iftag(rc *RenderContext, body Content, args condArgs) (string, error) {
	c.calls++
	c.cond = args.Cond
	if !c.cond {
		return "", nil
	}
	return rc.Render(body)
}

func (c *condTag) Else(rc *RenderContext, body Content) (string, error) {
	c.calls++
	if c.cond {
		return "", nil
	}
	return rc.Render(body)
}

func condDefinition() Definition {
	return Definition{
		Name:          "iftag",
		EndTag:        NamedEndTag("enditag"),
		Intermediates: []string{"else"},
		New:           func() any { return &condTag{} },
	}
}

// TestRender_SharedStateAcrossMarkers tests the start handler informing a later marker
func TestRender_SharedStateAcrossMarkers(t *testing.T) {
	inst := compileScript(t, condDefinition(),
		CallArgs{Keyword: []KeywordArg{{Name: "cond", Value: Var("flag")}}},
		streamStep{content: "Y", stop: "else"},
		streamStep{content: "N", stop: "enditag"},
	)

	tests := []struct {
		flag     any
		expected string
	}{
		{flag: true, expected: "Y"},
		{flag: false, expected: "N"},
		{flag: true, expected: "Y"},
	}
	for _, tt := range tests {
		out, err := inst.Render(context.Background(), NewContext(map[string]any{"flag": tt.flag}))
		require.NoError(t, err)
		assert.Equal(t, tt.expected, out, "flag=%v", tt.flag)
	}
}

// TestRender_FreshReceiverPerPass tests that receiver state never outlives a pass
func TestRender_FreshReceiverPerPass(t *testing.T) {
	var receivers []*condTag
	def := condDefinition()
	def.New = func() any {
		r := &condTag{}
		receivers = append(receivers, r)
		return r
	}
	inst := compileScript(t, def,
		CallArgs{Positional: []Value{Literal(true)}},
		streamStep{content: "Y", stop: "else"},
		streamStep{content: "N", stop: "enditag"},
	)
	receivers = nil

	for i := 0; i < 3; i++ {
		_, err := inst.Render(context.Background(), NewContext(nil))
		require.NoError(t, err)
	}

	require.Len(t, receivers, 3)
	for _, r := range receivers {
		assert.Equal(t, 2, r.calls)
	}
}

// TestRender_Concatenation tests that output is the handler results joined in order
func TestRender_Concatenation(t *testing.T) {
	def := Definition{
		Name:          "mytag",
		EndTag:        DerivedEndTag(),
		Intermediates: []string{"section"},
		Handlers: map[string]Handler{
			"mytag": {Fn: func(*RenderContext, Content, *Frame) (string, error) { return "s1", nil }},
			"section": {
				Signature: Signature{Required: []string{"header"}},
				Fn: func(rc *RenderContext, body Content, f *Frame) (string, error) {
					text, err := rc.Render(body)
					return fmt.Sprintf("<%d:%s:%s>", rc.Index(), f.String("header"), text), err
				},
			},
		},
	}
	inst := compileScript(t, def, CallArgs{},
		streamStep{content: "ignored", stop: "section", args: CallArgs{Positional: []Value{Literal("a")}}},
		streamStep{content: "x", stop: "section", args: CallArgs{Positional: []Value{Literal("b")}}},
		streamStep{content: "y", stop: "section", args: CallArgs{Positional: []Value{Literal("c")}}},
		streamStep{content: "z", stop: "endmytag"},
	)

	out, err := inst.Render(context.Background(), NewContext(nil))
	require.NoError(t, err)
	assert.Equal(t, "s1<1:a:x><2:b:y><3:c:z>", out)
}

// TestRender_DispatchError tests a marker without a handler
func TestRender_DispatchError(t *testing.T) {
	def := Definition{
		Name:          "box",
		EndTag:        DerivedEndTag(),
		Intermediates: []string{"lid"},
		Handlers:      map[string]Handler{"box": echoHandler()},
	}
	inst := compileScript(t, def, CallArgs{},
		streamStep{content: "a", stop: "lid"},
		streamStep{content: "b", stop: "endbox"},
	)

	out, err := inst.Render(context.Background(), NewContext(nil))
	require.Error(t, err)
	assert.Empty(t, out)
	assert.True(t, IsDispatchError(err))
	assert.Contains(t, err.Error(), "no handler defined for marker `lid`")
}

// TestRender_BindingErrorAtRenderTime tests late-bound binding failures
func TestRender_BindingErrorAtRenderTime(t *testing.T) {
	def := Definition{
		Name:   "box",
		EndTag: DerivedEndTag(),
		Handlers: map[string]Handler{
			"box": {Signature: Signature{Required: []string{"name"}}, Fn: echoHandler().Fn},
		},
	}
	inst := compileScript(t, def, CallArgs{}, streamStep{content: "a", stop: "endbox"})

	_, err := inst.Render(context.Background(), NewContext(nil))
	require.Error(t, err)
	assert.True(t, IsBindingError(err))
	assert.Contains(t, err.Error(), "missing required argument `name`")
}

// TestRender_StrictResolutionFailure tests a late-bound value that cannot resolve
func TestRender_StrictResolutionFailure(t *testing.T) {
	def := Definition{
		Name:     "box",
		EndTag:   DerivedEndTag(),
		Handlers: map[string]Handler{"box": {Signature: Signature{Required: []string{"v"}}, Fn: echoHandler().Fn}},
	}
	strictRef := CallArgs{Positional: []Value{strictVar("missing")}}
	inst := compileScript(t, def, strictRef, streamStep{content: "a", stop: "endbox"})

	_, err := inst.Render(context.Background(), NewContext(nil))
	require.Error(t, err)
	assert.True(t, IsBindingError(err))
}

// TestRender_HandlerErrors tests how handler failures surface
func TestRender_HandlerErrors(t *testing.T) {
	t.Run("foreign error wrapped as render error", func(t *testing.T) {
		cause := errors.New("boom")
		def := Definition{
			Name:   "box",
			EndTag: DerivedEndTag(),
			Handlers: map[string]Handler{"box": {Fn: func(*RenderContext, Content, *Frame) (string, error) {
				return "partial", cause
			}}},
		}
		inst := compileScript(t, def, CallArgs{}, streamStep{content: "a", stop: "endbox"})

		out, err := inst.Render(context.Background(), NewContext(nil))
		require.Error(t, err)
		assert.Empty(t, out)
		assert.True(t, IsRenderError(err))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("engine error propagated unchanged", func(t *testing.T) {
		inner := NewMissingArgumentError("nested")
		def := Definition{
			Name:   "box",
			EndTag: DerivedEndTag(),
			Handlers: map[string]Handler{"box": {Fn: func(*RenderContext, Content, *Frame) (string, error) {
				return "", inner
			}}},
		}
		inst := compileScript(t, def, CallArgs{}, streamStep{content: "a", stop: "endbox"})

		_, err := inst.Render(context.Background(), NewContext(nil))
		assert.Same(t, inner, err)
		assert.True(t, IsBindingError(err))
	})

	t.Run("non-string result", func(t *testing.T) {
		def := Definition{
			Name:   "box",
			EndTag: DerivedEndTag(),
			Handlers: map[string]Handler{"box": MustFunc(func(*RenderContext, Content) (any, error) {
				return 42, nil
			})},
		}
		inst := compileScript(t, def, CallArgs{}, streamStep{content: "a", stop: "endbox"})

		_, err := inst.Render(context.Background(), NewContext(nil))
		require.Error(t, err)
		assert.True(t, IsRenderError(err))
		assert.Contains(t, err.Error(), ErrMsgNonStringResult)
	})

	t.Run("failing segment aborts later segments", func(t *testing.T) {
		laterCalled := false
		def := Definition{
			Name:          "box",
			EndTag:        DerivedEndTag(),
			Intermediates: []string{"lid"},
			Handlers: map[string]Handler{
				"box": {Fn: func(*RenderContext, Content, *Frame) (string, error) { return "", errors.New("fail") }},
				"lid": {Fn: func(*RenderContext, Content, *Frame) (string, error) {
					laterCalled = true
					return "", nil
				}},
			},
		}
		inst := compileScript(t, def, CallArgs{},
			streamStep{content: "a", stop: "lid"},
			streamStep{content: "b", stop: "endbox"},
		)

		_, err := inst.Render(context.Background(), NewContext(nil))
		require.Error(t, err)
		assert.False(t, laterCalled)
	})
}

// TestRender_Override tests wrapping the default render
func TestRender_Override(t *testing.T) {
	def := Definition{
		Name:     "box",
		EndTag:   DerivedEndTag(),
		Handlers: map[string]Handler{"box": echoHandler()},
		Render: func(_ *RenderContext, next func() (string, error)) (string, error) {
			out, err := next()
			if err != nil {
				return "", err
			}
			return "[" + strings.ToUpper(out) + "]", nil
		},
	}
	inst := compileScript(t, def, CallArgs{}, streamStep{content: "abc", stop: "endbox"})

	out, err := inst.Render(context.Background(), NewContext(nil))
	require.NoError(t, err)
	assert.Equal(t, "[ABC]", out)
}

type wrappingReceiver struct {
	seen []string
}

func (w *wrappingReceiver) Box(rc *RenderContext, body Content) (string, error) {
	w.seen = append(w.seen, rc.Marker())
	return rc.Render(body)
}

func (w *wrappingReceiver) RenderTag(_ *RenderContext, next func() (string, error)) (string, error) {
	out, err := next()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%d)", out, len(w.seen)), nil
}

// TestRender_ReceiverRenderer tests a receiver wrapping the default render
func TestRender_ReceiverRenderer(t *testing.T) {
	def := Definition{Name: "box", EndTag: DerivedEndTag(), New: func() any { return &wrappingReceiver{} }}
	inst := compileScript(t, def, CallArgs{}, streamStep{content: "abc", stop: "endbox"})

	out, err := inst.Render(context.Background(), NewContext(nil))
	require.NoError(t, err)
	assert.Equal(t, "abc(1)", out)
}

// TestRender_PassState tests per-pass state on the render context
func TestRender_PassState(t *testing.T) {
	def := Definition{
		Name:          "count",
		EndTag:        DerivedEndTag(),
		Intermediates: []string{"step"},
		Handlers: map[string]Handler{
			"count": {Fn: func(rc *RenderContext, _ Content, _ *Frame) (string, error) {
				_, existed := rc.Get("n")
				if existed {
					return "", errors.New("state leaked from an earlier pass")
				}
				rc.Set("n", 0)
				return "", nil
			}},
			"step": {Fn: func(rc *RenderContext, _ Content, _ *Frame) (string, error) {
				n, _ := rc.Get("n")
				rc.Set("n", n.(int)+1)
				return fmt.Sprint(n.(int) + 1), nil
			}},
		},
	}
	inst := compileScript(t, def, CallArgs{},
		streamStep{stop: "step"},
		streamStep{stop: "step"},
		streamStep{stop: "endcount"},
	)

	for i := 0; i < 2; i++ {
		out, err := inst.Render(context.Background(), NewContext(nil))
		require.NoError(t, err)
		assert.Equal(t, "12", out)
	}
}

// TestRender_Concurrent tests concurrent passes over one instance
func TestRender_Concurrent(t *testing.T) {
	inst := compileScript(t, condDefinition(),
		CallArgs{Keyword: []KeywordArg{{Name: "cond", Value: Var("flag")}}},
		streamStep{content: "Y", stop: "else"},
		streamStep{content: "N", stop: "enditag"},
	)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(flag bool) {
			defer wg.Done()
			out, err := inst.Render(context.Background(), NewContext(map[string]any{"flag": flag}))
			if err != nil {
				errs <- err
				return
			}
			if (flag && out != "Y") || (!flag && out != "N") {
				errs <- fmt.Errorf("flag=%v rendered %q", flag, out)
			}
		}(i%2 == 0)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

// TestRender_Cancelled tests that a cancelled context stops dispatch
func TestRender_Cancelled(t *testing.T) {
	inst := compileScript(t, Definition{
		Name:     "box",
		EndTag:   DerivedEndTag(),
		Handlers: map[string]Handler{"box": echoHandler()},
	}, CallArgs{}, streamStep{content: "a", stop: "endbox"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := inst.Render(ctx, NewContext(nil))
	require.Error(t, err)
	assert.True(t, IsRenderError(err))
	assert.ErrorIs(t, err, context.Canceled)
}
