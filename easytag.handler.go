package easytag

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode"

	"github.com/itsatony/go-cuserr"
	"gopkg.in/yaml.v3"
)

// HandlerFunc renders one segment. body is the segment's content and f holds
// the marker's arguments bound to the handler's signature.
type HandlerFunc func(rc *RenderContext, body Content, f *Frame) (string, error)

// Handler pairs a handler function with the signature its arguments are bound to
type Handler struct {
	Signature Signature
	Fn        HandlerFunc
}

var (
	renderContextType = reflect.TypeOf((*RenderContext)(nil))
	contentType       = reflect.TypeOf((*Content)(nil)).Elem()
	errorType         = reflect.TypeOf((*error)(nil)).Elem()
)

// Func builds a handler from a typed function of the form
//
//	func(rc *RenderContext, body Content) (R, error)
//	func(rc *RenderContext, body Content, args A) (R, error)
//
// where A is a struct (or pointer to struct) describing the parameters and R
// is string-like. The error result is optional. Fields of A bind by name:
//
//	type sectionArgs struct {
//		Header   string `arg:"header"`
//		Required bool   `arg:"is_required" default:"false"`
//		Rest     []any  `arg:",args"`
//		Options  map[string]any `arg:",kwargs"`
//	}
//
// Fields without an arg name use their snake_case field name. A field is
// optional when tagged "opt" or given a default, which is decoded as YAML into
// the field's type. Required fields must precede optional ones.
func Func(fn any) (Handler, error) {
	if fn == nil {
		return Handler{}, newDefinitionError(ErrMsgNilHandler, "")
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return Handler{}, newDefinitionError(ErrMsgInvalidHandler, "").WithMetadata(MetaKeyReason, v.Type().String())
	}

	plan, err := analyzeFunc(v.Type(), 0)
	if err != nil {
		return Handler{}, err
	}
	plan.fn = v
	return plan.handler(), nil
}

// MustFunc builds a handler and panics if fn is not a valid typed handler
func MustFunc(fn any) Handler {
	h, err := Func(fn)
	if err != nil {
		panic(err)
	}
	return h
}

// methodHandler builds a handler that calls a method on the per-pass receiver
func methodHandler(recvType reflect.Type, method reflect.Method) (Handler, error) {
	plan, err := analyzeFunc(method.Type, 1)
	if err != nil {
		return Handler{}, err
	}
	plan.fn = method.Func
	plan.recvType = recvType
	return plan.handler(), nil
}

// handlerPlan is the introspected shape of a typed handler
type handlerPlan struct {
	fn       reflect.Value
	recvType reflect.Type
	args     *argSpec
	hasErr   bool
}

// analyzeFunc checks a handler function type. skip is the number of leading
// parameters (the method receiver) that are not part of the handler shape.
func analyzeFunc(ft reflect.Type, skip int) (*handlerPlan, error) {
	in := ft.NumIn() - skip
	if ft.IsVariadic() || in < 2 || in > 3 {
		return nil, invalidHandler(ft)
	}
	if ft.In(skip) != renderContextType || ft.In(skip+1) != contentType {
		return nil, invalidHandler(ft)
	}

	plan := &handlerPlan{}
	switch ft.NumOut() {
	case 1:
	case 2:
		if ft.Out(1) != errorType {
			return nil, invalidHandler(ft)
		}
		plan.hasErr = true
	default:
		return nil, invalidHandler(ft)
	}

	if in == 3 {
		spec, err := analyzeArgStruct(ft.In(skip + 2))
		if err != nil {
			return nil, err
		}
		plan.args = spec
	}
	return plan, nil
}

func invalidHandler(ft reflect.Type) error {
	return newDefinitionError(ErrMsgInvalidHandler, "").WithMetadata(MetaKeyReason, ft.String())
}

func (p *handlerPlan) handler() Handler {
	var sig Signature
	if p.args != nil {
		sig = p.args.sig
	}
	return Handler{Signature: sig, Fn: p.call}
}

func (p *handlerPlan) call(rc *RenderContext, body Content, f *Frame) (string, error) {
	in := make([]reflect.Value, 0, 4)
	if p.recvType != nil {
		recv := rc.Receiver()
		if recv == nil || reflect.TypeOf(recv) != p.recvType {
			return "", NewRenderError(ErrMsgReceiverMismatch, "", rc.Marker(), nil)
		}
		in = append(in, reflect.ValueOf(recv))
	}
	in = append(in, reflect.ValueOf(rc), reflect.ValueOf(&body).Elem())

	if p.args != nil {
		av, err := p.args.build(f)
		if err != nil {
			return "", err
		}
		in = append(in, av)
	}

	out := p.fn.Call(in)
	if p.hasErr {
		if errVal := out[1].Interface(); errVal != nil {
			return "", errVal.(error)
		}
	}

	result := out[0].Interface()
	s, ok := stringLike(result)
	if !ok {
		return "", NewNonStringResultError(rc.Marker(), result)
	}
	return s, nil
}

// stringLike converts string-like handler results to a string
func stringLike(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case []byte:
		return string(val), true
	case fmt.Stringer:
		if rv := reflect.ValueOf(val); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return "", false
		}
		return val.String(), true
	case nil:
		return "", false
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

// argSpec maps an argument struct onto a signature
type argSpec struct {
	typ         reflect.Type
	ptr         bool
	sig         Signature
	fields      []int // struct field index per declared parameter, aligned with sig.Names()
	extraField  int
	kwargsField int
}

func analyzeArgStruct(t reflect.Type) (*argSpec, error) {
	spec := &argSpec{extraField: -1, kwargsField: -1}
	if t.Kind() == reflect.Pointer {
		spec.ptr = true
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, newDefinitionError(ErrMsgInvalidArgStruct, "").WithMetadata(MetaKeyReason, t.String())
	}
	spec.typ = t

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, opts := parseArgTag(field.Tag.Get(StructTagArg))
		if name == ArgNameIgnore {
			continue
		}

		switch {
		case opts[ArgOptionArgs]:
			if field.Type.Kind() != reflect.Slice || spec.extraField >= 0 {
				return nil, newDefinitionError(ErrMsgInvalidCatchAll, "").WithMetadata(MetaKeyField, field.Name)
			}
			spec.extraField = i
			spec.sig.ExtraPositional = true
			continue
		case opts[ArgOptionKwargs]:
			if field.Type.Kind() != reflect.Map || field.Type.Key().Kind() != reflect.String || spec.kwargsField >= 0 {
				return nil, newDefinitionError(ErrMsgInvalidCatchAll, "").WithMetadata(MetaKeyField, field.Name)
			}
			spec.kwargsField = i
			spec.sig.ExtraKeyword = true
			continue
		}

		if name == "" {
			name = snakeCase(field.Name)
		}
		def, hasDefault := field.Tag.Lookup(StructTagDefault)
		if !opts[ArgOptionOptional] && !hasDefault {
			if len(spec.sig.Optional) > 0 {
				return nil, newDefinitionError(ErrMsgRequiredAfterOptional, "").WithMetadata(MetaKeyArgument, name)
			}
			spec.sig.Required = append(spec.sig.Required, name)
			spec.fields = append(spec.fields, i)
			continue
		}

		var defVal any
		if hasDefault {
			ptr := reflect.New(field.Type)
			if err := yaml.Unmarshal([]byte(def), ptr.Interface()); err != nil {
				return nil, cuserr.WrapStdError(err, ErrCodeDefinition, ErrMsgInvalidDefault).
					WithMetadata(MetaKeyKind, KindDefinition).
					WithMetadata(MetaKeyArgument, name)
			}
			defVal = ptr.Elem().Interface()
		}
		spec.sig.Optional = append(spec.sig.Optional, Param{Name: name, Default: defVal})
		spec.fields = append(spec.fields, i)
	}

	if err := spec.sig.validate(""); err != nil {
		return nil, err
	}
	return spec, nil
}

// parseArgTag splits `arg:"name,opt"` into the name and its options
func parseArgTag(tag string) (string, map[string]bool) {
	parts := strings.Split(tag, ArgTagSeparator)
	opts := make(map[string]bool, len(parts)-1)
	for _, opt := range parts[1:] {
		opts[strings.TrimSpace(opt)] = true
	}
	return strings.TrimSpace(parts[0]), opts
}

// build fills a fresh argument struct from a bound frame
func (s *argSpec) build(f *Frame) (reflect.Value, error) {
	v := reflect.New(s.typ).Elem()

	for i, idx := range s.fields {
		if err := assignValue(v.Field(idx), f.Values[i], f.Names[i]); err != nil {
			return reflect.Value{}, err
		}
	}

	if s.extraField >= 0 && len(f.Extra) > 0 {
		field := v.Field(s.extraField)
		slice := reflect.MakeSlice(field.Type(), len(f.Extra), len(f.Extra))
		for i, x := range f.Extra {
			if err := assignValue(slice.Index(i), x, ArgOptionArgs); err != nil {
				return reflect.Value{}, err
			}
		}
		field.Set(slice)
	}

	if s.kwargsField >= 0 {
		field := v.Field(s.kwargsField)
		m := reflect.MakeMapWithSize(field.Type(), len(f.ExtraKeywords))
		for k, x := range f.ExtraKeywords {
			elem := reflect.New(field.Type().Elem()).Elem()
			if err := assignValue(elem, x, k); err != nil {
				return reflect.Value{}, err
			}
			m.SetMapIndex(reflect.ValueOf(k).Convert(field.Type().Key()), elem)
		}
		field.Set(m)
	}

	if s.ptr {
		return v.Addr(), nil
	}
	return v, nil
}

// assignValue stores a resolved argument into a typed field
func assignValue(dst reflect.Value, val any, name string) error {
	if val == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	src := reflect.ValueOf(val)
	dt := dst.Type()

	switch {
	case src.Type().AssignableTo(dt):
		dst.Set(src)
		return nil
	case isNumberKind(src.Kind()) && isNumberKind(dt.Kind()):
		if !numberFits(src, dt) {
			break
		}
		dst.Set(src.Convert(dt))
		return nil
	case dt.Kind() == reflect.String:
		switch v := val.(type) {
		case fmt.Stringer:
			dst.SetString(v.String())
			return nil
		case []byte:
			dst.SetString(string(v))
			return nil
		}
		if src.Kind() == reflect.String {
			dst.SetString(src.String())
			return nil
		}
	}

	return NewArgumentTypeError(name, src.Type().String(), dt.String())
}

// numberFits reports whether src converts to dt without truncation, overflow
// or a sign change
func numberFits(src reflect.Value, dt reflect.Type) bool {
	target := reflect.Zero(dt)
	switch {
	case isIntKind(src.Kind()):
		n := src.Int()
		switch {
		case isIntKind(dt.Kind()):
			return !target.OverflowInt(n)
		case isFloatKind(dt.Kind()):
			return !target.OverflowFloat(float64(n))
		}
		return n >= 0 && !target.OverflowUint(uint64(n))
	case isFloatKind(src.Kind()):
		f := src.Float()
		if isFloatKind(dt.Kind()) {
			return !target.OverflowFloat(f)
		}
		if f != math.Trunc(f) {
			return false
		}
		if isIntKind(dt.Kind()) {
			return f >= math.MinInt64 && f < math.MaxInt64 && !target.OverflowInt(int64(f))
		}
		return f >= 0 && f < math.MaxUint64 && !target.OverflowUint(uint64(f))
	default:
		u := src.Uint()
		switch {
		case isIntKind(dt.Kind()):
			return u <= math.MaxInt64 && !target.OverflowInt(int64(u))
		case isFloatKind(dt.Kind()):
			return !target.OverflowFloat(float64(u))
		}
		return !target.OverflowUint(u)
	}
}

func isIntKind(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isNumberKind(k reflect.Kind) bool {
	return (k >= reflect.Int && k <= reflect.Uint64) || isFloatKind(k)
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// snakeCase converts a Go field name to its default argument name: IsRequired -> is_required
func snakeCase(name string) string {
	runes := []rune(name)
	var sb strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				sb.WriteByte('_')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
