package easytag

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-easytag/internal"
)

// Error message constants - ALL error messages must be constants (NO MAGIC STRINGS)
const (
	// Definition errors
	ErrMsgMissingTagName        = "tag definition should define a name"
	ErrMsgEmptyEndName          = "explicit end marker name cannot be empty"
	ErrMsgEmptyMarkerName       = "marker name cannot be empty"
	ErrMsgEndIsStart            = "end marker cannot equal the start marker"
	ErrMsgIntermediateIsEnd     = "intermediate marker cannot be the end marker"
	ErrMsgIntermediateIsStart   = "intermediate marker cannot be the start marker"
	ErrMsgDuplicateIntermediate = "duplicate intermediate marker"
	ErrMsgIntermediatesNeedEnd  = "intermediate markers require an end marker"
	ErrMsgHandlerUndeclared     = "handler defined for undeclared marker"
	ErrMsgNilHandler            = "handler function cannot be nil"
	ErrMsgDuplicateParam        = "duplicate handler parameter"
	ErrMsgInvalidHandler        = "invalid handler function"
	ErrMsgInvalidArgStruct      = "invalid handler argument struct"
	ErrMsgRequiredAfterOptional = "required argument declared after optional argument"
	ErrMsgInvalidDefault        = "invalid default value"
	ErrMsgInvalidCatchAll       = "invalid catch-all argument field"
	ErrMsgNilReceiver           = "receiver factory returned nil"
	ErrMsgPointerReceiver       = "handler method has a pointer receiver but New returns a value"
	ErrMsgSkipBodyLayout        = "a tag skipping its body needs an end marker and no intermediates"
	ErrMsgNilTag                = "tag cannot be nil"
	ErrMsgTagExists             = "tag already registered"
	ErrFmtUnexpectedMarker      = "unexpected marker `%s` inside `%s`"
	ErrFmtEndMarkerArguments    = "end marker `%s` takes no arguments"
	ErrFmtNoHandler             = "no handler defined for marker `%s`"
	ErrFmtDuplicateValue        = "duplicate value for argument `%s`"
	ErrFmtUnexpectedKeyword     = "unexpected keyword argument `%s`"
	ErrFmtMissingArgument       = "missing required argument `%s`"
	ErrMsgUnterminatedBlock     = "unterminated block"
	ErrMsgParseFailed           = "template parsing failed"
	ErrMsgTooManyPositional     = "too many positional arguments"
	ErrMsgArgumentType          = "argument type mismatch"
	ErrMsgArgumentResolve       = "argument resolution failed"
	ErrMsgHandlerFailed         = "handler failed"
	ErrMsgNonStringResult       = "handler returned a non-string value"
	ErrMsgReceiverMismatch      = "render pass receiver does not match handler"
	ErrMsgRenderFailed          = "template rendering failed"
	ErrMsgRenderCancelled       = "rendering cancelled"
	ErrMsgRepeatLimit           = "repeat count exceeds limit"
	ErrMsgConfigRead            = "failed to read configuration file"
	ErrMsgConfigInvalid         = "invalid configuration"
	ErrMsgConfigDelimiterPair   = "delimiters must be given in open/close pairs"
	ErrMsgConfigNegativeDepth   = "max_depth cannot be negative"
)

// NewDefinitionError creates an error for a malformed tag definition
func NewDefinitionError(msg, tagName string) error {
	return newDefinitionError(msg, tagName)
}

func newDefinitionError(msg, tagName string) *cuserr.CustomError {
	err := cuserr.NewValidationError(ErrCodeDefinition, msg).
		WithMetadata(MetaKeyKind, KindDefinition)
	if tagName != "" {
		err = err.WithMetadata(MetaKeyTag, tagName)
	}
	return err
}

// NewUnexpectedMarkerError creates a parse error for a marker that is
// neither a declared intermediate nor the end marker of the enclosing tag
func NewUnexpectedMarkerError(marker, tagName string) error {
	return cuserr.NewValidationError(ErrCodeParse, fmt.Sprintf(ErrFmtUnexpectedMarker, marker, tagName)).
		WithMetadata(MetaKeyKind, KindParse).
		WithMetadata(MetaKeyMarker, marker).
		WithMetadata(MetaKeyTag, tagName)
}

// NewUnterminatedBlockError creates a parse error for a block whose end marker never appears
func NewUnterminatedBlockError(tagName, endName string) error {
	return cuserr.NewValidationError(ErrCodeParse, ErrMsgUnterminatedBlock).
		WithMetadata(MetaKeyKind, KindParse).
		WithMetadata(MetaKeyTag, tagName).
		WithMetadata(MetaKeyMarker, endName)
}

// NewEndMarkerArgumentsError creates a parse error for arguments attached to an end marker
func NewEndMarkerArgumentsError(endName, tagName string) error {
	return cuserr.NewValidationError(ErrCodeParse, fmt.Sprintf(ErrFmtEndMarkerArguments, endName)).
		WithMetadata(MetaKeyKind, KindParse).
		WithMetadata(MetaKeyMarker, endName).
		WithMetadata(MetaKeyTag, tagName)
}

// NewParseError creates a parse error with position context
func NewParseError(msg string, pos Position, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeParse, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeParse, msg)
	}
	return withPositionMeta(err.WithMetadata(MetaKeyKind, KindParse), pos)
}

func newBindingError(msg string) *cuserr.CustomError {
	return cuserr.NewValidationError(ErrCodeBinding, msg).
		WithMetadata(MetaKeyKind, KindBinding)
}

// NewTooManyPositionalError creates a binding error for surplus positional arguments
func NewTooManyPositionalError() error {
	return newBindingError(ErrMsgTooManyPositional)
}

// NewDuplicateValueError creates a binding error for an argument supplied twice
func NewDuplicateValueError(name string) error {
	return newBindingError(fmt.Sprintf(ErrFmtDuplicateValue, name)).
		WithMetadata(MetaKeyArgument, name)
}

// NewUnexpectedKeywordError creates a binding error for an unknown keyword argument
func NewUnexpectedKeywordError(name string) error {
	return newBindingError(fmt.Sprintf(ErrFmtUnexpectedKeyword, name)).
		WithMetadata(MetaKeyArgument, name)
}

// NewMissingArgumentError creates a binding error for an unfilled required argument
func NewMissingArgumentError(name string) error {
	return newBindingError(fmt.Sprintf(ErrFmtMissingArgument, name)).
		WithMetadata(MetaKeyArgument, name)
}

// NewArgumentTypeError creates a binding error for a value that cannot be
// assigned to a typed handler argument
func NewArgumentTypeError(name string, from, to string) error {
	return newBindingError(ErrMsgArgumentType).
		WithMetadata(MetaKeyArgument, name).
		WithMetadata(MetaKeyFromType, from).
		WithMetadata(MetaKeyToType, to)
}

// NewArgumentResolveError creates a binding error for a late-bound value
// that failed to resolve against the render scope
func NewArgumentResolveError(marker string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeBinding, ErrMsgArgumentResolve).
		WithMetadata(MetaKeyKind, KindBinding).
		WithMetadata(MetaKeyMarker, marker)
}

// NewDispatchError creates an error for a marker with no handler
func NewDispatchError(marker, tagName string) error {
	return cuserr.NewValidationError(ErrCodeDispatch, fmt.Sprintf(ErrFmtNoHandler, marker)).
		WithMetadata(MetaKeyKind, KindDispatch).
		WithMetadata(MetaKeyMarker, marker).
		WithMetadata(MetaKeyTag, tagName)
}

// NewRenderError creates a render error, wrapping the cause when present
func NewRenderError(msg, tagName, marker string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeRender, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeRender, msg)
	}
	err = err.WithMetadata(MetaKeyKind, KindRender)
	if tagName != "" {
		err = err.WithMetadata(MetaKeyTag, tagName)
	}
	if marker != "" {
		err = err.WithMetadata(MetaKeyMarker, marker)
	}
	return err
}

// NewNonStringResultError creates a render error for a handler whose result is not string-like
func NewNonStringResultError(marker string, result any) error {
	return cuserr.NewValidationError(ErrCodeRender, ErrMsgNonStringResult).
		WithMetadata(MetaKeyKind, KindRender).
		WithMetadata(MetaKeyMarker, marker).
		WithMetadata(MetaKeyResultType, fmt.Sprintf("%T", result))
}

// NewConfigError creates a configuration error
func NewConfigError(msg, path string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeConfig, msg)
	} else {
		err = cuserr.NewValidationError(ErrCodeConfig, msg)
	}
	err = err.WithMetadata(MetaKeyKind, KindConfig)
	if path != "" {
		err = err.WithMetadata(MetaKeyPath, path)
	}
	return err
}

// withConfigPath records the configuration file a config error came from
func withConfigPath(err error, path string) error {
	customErr, ok := err.(*cuserr.CustomError)
	if !ok {
		return err
	}
	return customErr.WithMetadata(MetaKeyPath, path)
}

// ErrorKind returns the engine error kind of err, or "" for foreign errors
func ErrorKind(err error) string {
	var customErr *cuserr.CustomError
	if !errors.As(err, &customErr) {
		return ""
	}
	kind, _ := customErr.GetMetadata(MetaKeyKind)
	return kind
}

// IsDefinitionError reports whether err is a malformed tag definition
func IsDefinitionError(err error) bool { return ErrorKind(err) == KindDefinition }

// IsParseError reports whether err is a template parse failure
func IsParseError(err error) bool { return ErrorKind(err) == KindParse }

// IsBindingError reports whether err is a call-site argument mismatch
func IsBindingError(err error) bool { return ErrorKind(err) == KindBinding }

// IsDispatchError reports whether err is a missing marker handler
func IsDispatchError(err error) bool { return ErrorKind(err) == KindDispatch }

// IsRenderError reports whether err is a handler failure
func IsRenderError(err error) bool { return ErrorKind(err) == KindRender }

// isEngineError reports whether err already carries an engine error kind
func isEngineError(err error) bool {
	return ErrorKind(err) != ""
}

// withPosition attaches source position metadata to an engine error unless
// an inner tag already did so
func withPosition(err error, pos Position) error {
	customErr, ok := err.(*cuserr.CustomError)
	if !ok {
		return err
	}
	if _, has := customErr.GetMetadata(MetaKeyLine); has {
		return err
	}
	return withPositionMeta(customErr, pos)
}

// withMarker attaches tag and marker metadata to an engine error
func withMarker(err error, tagName, marker string) error {
	customErr, ok := err.(*cuserr.CustomError)
	if !ok {
		return err
	}
	return customErr.
		WithMetadata(MetaKeyTag, tagName).
		WithMetadata(MetaKeyMarker, marker)
}

// withStoredTemplate attaches the stored name and version to an engine error
func withStoredTemplate(err error, stored *StoredTemplate) error {
	customErr, ok := err.(*cuserr.CustomError)
	if !ok {
		return err
	}
	return customErr.
		WithMetadata(MetaKeyName, stored.Name).
		WithMetadata(MetaKeyVersion, strconv.Itoa(stored.Version))
}

func withPositionMeta(err *cuserr.CustomError, pos Position) *cuserr.CustomError {
	return err.
		WithMetadata(MetaKeyLine, strconv.Itoa(pos.Line)).
		WithMetadata(MetaKeyColumn, strconv.Itoa(pos.Column)).
		WithMetadata(MetaKeyOffset, strconv.Itoa(pos.Offset))
}

// toParseError converts host lexer and parser failures into engine parse errors
func toParseError(err error) error {
	if isEngineError(err) {
		return err
	}

	var lexErr *internal.LexerError
	if errors.As(err, &lexErr) {
		return NewParseError(lexErr.Message, lexErr.Position, err)
	}

	var parseErr *internal.ParserError
	if errors.As(err, &parseErr) {
		customErr := cuserr.WrapStdError(err, ErrCodeParse, parseErr.Message).
			WithMetadata(MetaKeyKind, KindParse)
		if parseErr.TagName != "" {
			customErr = customErr.WithMetadata(MetaKeyMarker, parseErr.TagName)
		}
		return withPositionMeta(customErr, parseErr.Position)
	}

	return NewParseError(ErrMsgParseFailed, Position{}, err)
}

// toRenderError converts host render failures into engine render errors
func toRenderError(err error) error {
	if isEngineError(err) {
		return err
	}

	var renderErr *internal.RenderError
	if errors.As(err, &renderErr) {
		customErr := cuserr.WrapStdError(err, ErrCodeRender, renderErr.Message).
			WithMetadata(MetaKeyKind, KindRender)
		return withPositionMeta(customErr, renderErr.Position)
	}

	return NewRenderError(ErrMsgRenderFailed, "", "", err)
}

// NewTagExistsError creates a registration error for a tag name already in use
func NewTagExistsError(tagName string) error {
	return newDefinitionError(ErrMsgTagExists, tagName)
}
