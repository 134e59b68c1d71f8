package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

type tagsConfig struct {
	format     string
	configPath string
}

func runTags(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(CmdNameTags, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := &tagsConfig{}
	fs.StringVar(&cfg.format, FlagFormat, FlagDefaultFormat, "")
	fs.StringVar(&cfg.format, FlagFormatShort, FlagDefaultFormat, "")
	fs.StringVar(&cfg.configPath, FlagConfig, "", "")
	fs.StringVar(&cfg.configPath, FlagConfigShort, "", "")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}
	if err := checkFormat(cfg.format); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	engine, err := newEngine(cfg.configPath, newLogger(false, stderr))
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgConfigFailed, err)
		return ExitCodeInputError
	}

	infos := engine.Tags()
	if cfg.format == OutputFormatJSON {
		jsonBytes, _ := json.MarshalIndent(infos, "", JSONIndent)
		fmt.Fprintln(stdout, string(jsonBytes))
		return ExitCodeSuccess
	}

	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, TagsTextHeader)
	for _, info := range infos {
		end := info.End
		if end == "" {
			end = TagsTextNone
		}
		intermediates := strings.Join(info.Intermediates, TagsTextListSeparator)
		if intermediates == "" {
			intermediates = TagsTextNone
		}
		fmt.Fprintf(w, TagsTextRow+FmtNewline, info.Name, end, intermediates)
	}
	_ = w.Flush()
	return ExitCodeSuccess
}
