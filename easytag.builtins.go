package easytag

import (
	"regexp"
	"strings"
)

// Per-pass state keys used by the choose tag
const (
	stateChooseSubject = "choose.subject"
	stateChooseMatched = "choose.matched"
)

var spaceBetweenTags = regexp.MustCompile(`>\s+<`)

// Builtins returns the definitions of the built-in tags, registered by New
// unless WithoutBuiltins is given.
func Builtins() []Definition {
	return []Definition{
		commentDefinition(),
		ifEqualDefinition(),
		chooseDefinition(),
		withDefinition(),
		firstOfDefinition(),
		repeatDefinition(),
		spacelessDefinition(),
	}
}

// {% comment %}...{% endcomment %} renders nothing. Its body is not parsed, so
// it may hold unknown or unbalanced markers.
func commentDefinition() Definition {
	return Definition{
		Name:     TagNameComment,
		EndTag:   DerivedEndTag(),
		SkipBody: true,
		Handlers: map[string]Handler{
			TagNameComment: {
				Signature: Signature{ExtraPositional: true, ExtraKeyword: true},
				Fn: func(*RenderContext, Content, *Frame) (string, error) {
					return "", nil
				},
			},
		},
	}
}

// ifEqualTag is the per-pass receiver of {% ifequal a b %}...{% else %}...{% endifequal %}
type ifEqualTag struct {
	matched bool
}

type ifEqualArgs struct {
	Left  any `arg:"left"`
	Right any `arg:"right"`
}

// Ifequal renders its body when both arguments are equal
func (t *ifEqualTag) Ifequal(rc *RenderContext, body Content, args ifEqualArgs) (string, error) {
	t.matched = ValuesEqual(args.Left, args.Right)
	if !t.matched {
		return "", nil
	}
	return rc.Render(body)
}

// Else renders its body when the start marker did not match
func (t *ifEqualTag) Else(rc *RenderContext, body Content) (string, error) {
	if t.matched {
		return "", nil
	}
	return rc.Render(body)
}

func ifEqualDefinition() Definition {
	return Definition{
		Name:          TagNameIfEqual,
		EndTag:        DerivedEndTag(),
		Intermediates: []string{MarkerElse},
		New:           func() any { return &ifEqualTag{} },
	}
}

type chooseArgs struct {
	Subject any `arg:"subject"`
}

type whenArgs struct {
	Value any   `arg:"value"`
	More  []any `arg:",args"`
}

// {% choose x %}{% when "a" %}..{% when "b" "c" %}..{% otherwise %}..{% endchoose %}
// renders the first matching branch. Content before the first when is dropped.
func chooseDefinition() Definition {
	return Definition{
		Name:          TagNameChoose,
		EndTag:        DerivedEndTag(),
		Intermediates: []string{MarkerWhen, MarkerOtherwise},
		Handlers: map[string]Handler{
			TagNameChoose: MustFunc(func(rc *RenderContext, _ Content, args chooseArgs) (string, error) {
				rc.Set(stateChooseSubject, args.Subject)
				rc.Set(stateChooseMatched, false)
				return "", nil
			}),
			MarkerWhen: MustFunc(func(rc *RenderContext, body Content, args whenArgs) (string, error) {
				if matched, _ := rc.Get(stateChooseMatched); matched == true {
					return "", nil
				}
				subject, _ := rc.Get(stateChooseSubject)
				for _, candidate := range append([]any{args.Value}, args.More...) {
					if ValuesEqual(subject, candidate) {
						rc.Set(stateChooseMatched, true)
						return rc.Render(body)
					}
				}
				return "", nil
			}),
			MarkerOtherwise: MustFunc(func(rc *RenderContext, body Content) (string, error) {
				if matched, _ := rc.Get(stateChooseMatched); matched == true {
					return "", nil
				}
				return rc.Render(body)
			}),
		},
	}
}

// {% with name=value ... %}...{% endwith %} renders its body with extra names in scope
func withDefinition() Definition {
	return Definition{
		Name:   TagNameWith,
		EndTag: DerivedEndTag(),
		Handlers: map[string]Handler{
			TagNameWith: {
				Signature: Signature{ExtraKeyword: true},
				Fn: func(rc *RenderContext, body Content, f *Frame) (string, error) {
					return rc.RenderWith(body, NewChildContext(rc.Scope(), f.ExtraKeywords))
				},
			},
		},
	}
}

type firstOfArgs struct {
	Values []any `arg:",args"`
}

// {% firstof a b "fallback" %} outputs the first truthy argument
func firstOfDefinition() Definition {
	return Definition{
		Name: TagNameFirstOf,
		Handlers: map[string]Handler{
			TagNameFirstOf: MustFunc(func(_ *RenderContext, _ Content, args firstOfArgs) (string, error) {
				for _, v := range args.Values {
					if Truthy(v) {
						return Stringify(v), nil
					}
				}
				return "", nil
			}),
		},
	}
}

type repeatArgs struct {
	Times     int    `arg:"times"`
	Separator string `arg:"sep" default:"''"`
}

// {% repeat 3 sep=", " %}...{% endrepeat %} renders its body several times
func repeatDefinition() Definition {
	return Definition{
		Name:   TagNameRepeat,
		EndTag: DerivedEndTag(),
		Handlers: map[string]Handler{
			TagNameRepeat: MustFunc(func(rc *RenderContext, body Content, args repeatArgs) (string, error) {
				if args.Times > MaxRepeat {
					return "", NewRenderError(ErrMsgRepeatLimit, TagNameRepeat, TagNameRepeat, nil)
				}
				parts := make([]string, 0, max(args.Times, 0))
				for i := 0; i < args.Times; i++ {
					out, err := rc.Render(body)
					if err != nil {
						return "", err
					}
					parts = append(parts, out)
				}
				return strings.Join(parts, args.Separator), nil
			}),
		},
	}
}

// {% spaceless %}...{% endspaceless %} removes whitespace between markup tags
func spacelessDefinition() Definition {
	return Definition{
		Name:   TagNameSpaceless,
		EndTag: DerivedEndTag(),
		Handlers: map[string]Handler{
			TagNameSpaceless: MustFunc(func(rc *RenderContext, body Content) (string, error) {
				return rc.Render(body)
			}),
		},
		Render: func(_ *RenderContext, next func() (string, error)) (string, error) {
			out, err := next()
			if err != nil {
				return "", err
			}
			return spaceBetweenTags.ReplaceAllString(strings.TrimSpace(out), "><"), nil
		},
	}
}
