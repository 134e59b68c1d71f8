package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-easytag"
)

// validateConfig holds parsed validate command configuration
type validateConfig struct {
	templatePath string
	format       string
	configPath   string
}

// validationOutput is the JSON report
type validationOutput struct {
	Valid bool                   `json:"valid"`
	Error *validationErrorOutput `json:"error,omitempty"`
}

type validationErrorOutput struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Tag     string `json:"tag,omitempty"`
	Marker  string `json:"marker,omitempty"`
}

func runValidate(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseValidateFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	source, err := readInput(cfg.templatePath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadFileFailed, err)
		return ExitCodeInputError
	}

	engine, err := newEngine(cfg.configPath, newLogger(false, stderr))
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgConfigFailed, err)
		return ExitCodeInputError
	}

	output := validationOutput{Valid: true}
	if err := engine.Validate(string(source)); err != nil {
		output.Valid = false
		output.Error = describeError(err)
	}

	if cfg.format == OutputFormatJSON {
		jsonBytes, _ := json.MarshalIndent(output, "", JSONIndent)
		fmt.Fprintln(stdout, string(jsonBytes))
	} else if output.Valid {
		fmt.Fprintln(stdout, ValidationTextSuccess)
	} else {
		fmt.Fprintf(stdout, ValidationTextFailure+FmtNewline,
			output.Error.Kind, output.Error.Line, output.Error.Column, output.Error.Message)
	}

	if !output.Valid {
		return ExitCodeValidationError
	}
	return ExitCodeSuccess
}

func parseValidateFlags(args []string) (*validateConfig, error) {
	fs := flag.NewFlagSet(CmdNameValidate, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := &validateConfig{}
	fs.StringVar(&cfg.templatePath, FlagTemplate, "", "")
	fs.StringVar(&cfg.templatePath, FlagTemplateShort, "", "")
	fs.StringVar(&cfg.format, FlagFormat, FlagDefaultFormat, "")
	fs.StringVar(&cfg.format, FlagFormatShort, FlagDefaultFormat, "")
	fs.StringVar(&cfg.configPath, FlagConfig, "", "")
	fs.StringVar(&cfg.configPath, FlagConfigShort, "", "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.templatePath == "" {
		return nil, errors.New(ErrMsgMissingTemplate)
	}
	if err := checkFormat(cfg.format); err != nil {
		return nil, err
	}
	return cfg, nil
}

// describeError flattens an engine error and its position metadata
func describeError(err error) *validationErrorOutput {
	out := &validationErrorOutput{
		Kind:    easytag.ErrorKind(err),
		Message: err.Error(),
	}

	var customErr *cuserr.CustomError
	if !errors.As(err, &customErr) {
		return out
	}
	if line, ok := customErr.GetMetadata(easytag.MetaKeyLine); ok {
		out.Line, _ = strconv.Atoi(line)
	}
	if col, ok := customErr.GetMetadata(easytag.MetaKeyColumn); ok {
		out.Column, _ = strconv.Atoi(col)
	}
	out.Tag, _ = customErr.GetMetadata(easytag.MetaKeyTag)
	out.Marker, _ = customErr.GetMetadata(easytag.MetaKeyMarker)
	return out
}

func checkFormat(format string) error {
	if format != OutputFormatText && format != OutputFormatJSON {
		return errors.New(ErrMsgInvalidFormat)
	}
	return nil
}
