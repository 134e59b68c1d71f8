package main

// Command names
const (
	CmdNameRender   = "render"
	CmdNameValidate = "validate"
	CmdNameTags     = "tags"
	CmdNameVersion  = "version"
	CmdNameHelp     = "help"
)

// Flag names - long form
const (
	FlagTemplate = "template"
	FlagData     = "data"
	FlagDataFile = "data-file"
	FlagOutput   = "output"
	FlagFormat   = "format"
	FlagConfig   = "config"
	FlagVerbose  = "verbose"
)

// Flag names - short form
const (
	FlagTemplateShort = "t"
	FlagDataShort     = "d"
	FlagDataFileShort = "f"
	FlagOutputShort   = "o"
	FlagFormatShort   = "F"
	FlagConfigShort   = "c"
	FlagVerboseShort  = "v"
)

// Flag default values
const (
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = "text"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
)

// Input sources
const (
	InputSourceStdin = "-"
	DataExtYAML      = ".yaml"
	DataExtYML       = ".yml"
)

// Error messages
const (
	ErrMsgUnknownCommand      = "unknown command"
	ErrMsgInvalidFlags        = "invalid arguments"
	ErrMsgMissingTemplate     = "template source required"
	ErrMsgInvalidData         = "invalid data"
	ErrMsgReadFileFailed      = "failed to read file"
	ErrMsgWriteOutputFailed   = "failed to write output"
	ErrMsgConfigFailed        = "failed to load config"
	ErrMsgEngineFailed        = "failed to create engine"
	ErrMsgExecuteFailed       = "template execution failed"
	ErrMsgInvalidFormat       = "invalid output format"
	ErrMsgDataNotObject       = "data must be an object"
	ErrMsgConflictingDataArgs = "use either --data or --data-file, not both"
)

// Help texts
const (
	HelpMainUsage = `easytag - compound block tag template CLI

Usage:
    easytag <command> [options]

Commands:
    render      Render a template with data
    validate    Parse a template without executing it
    tags        List the registered tags and their markers
    version     Show version information
    help        Show help for a command

Use "easytag help <command>" for more information about a command.`

	HelpRenderUsage = `Render a template with data

Usage:
    easytag render [options]

Options:
    -t, --template <file>   Template file (use "-" for stdin)
    -d, --data <json>       JSON data object
    -f, --data-file <file>  JSON or YAML data file (.yaml, .yml)
    -o, --output <file>     Output file (default: stdout)
    -c, --config <file>     YAML engine config
    -v, --verbose           Log engine activity to stderr

Examples:
    easytag render -t page.tmpl -d '{"name": "Alice"}'
    easytag render -t page.tmpl -f data.yaml -o page.html
    cat page.tmpl | easytag render -t - -c easytag.yaml`

	HelpValidateUsage = `Parse a template without executing it

Usage:
    easytag validate [options]

Options:
    -t, --template <file>   Template file (use "-" for stdin)
    -F, --format <format>   Output format: text, json (default: text)
    -c, --config <file>     YAML engine config

Examples:
    easytag validate -t page.tmpl
    cat page.tmpl | easytag validate -t - -F json`

	HelpTagsUsage = `List the registered tags and their markers

Usage:
    easytag tags [options]

Options:
    -F, --format <format>   Output format: text, json (default: text)
    -c, --config <file>     YAML engine config`

	HelpVersionUsage = `Show version information

Usage:
    easytag version [options]

Options:
    -F, --format <format>   Output format: text, json (default: text)`

	HelpHelpUsage = `Show help for a command

Usage:
    easytag help [command]`
)

// Output templates
const (
	VersionTextTemplate   = "easytag version %s\nCommit: %s\nGo: %s"
	VersionUnknown        = "unknown"
	ValidationTextSuccess = "Template is valid"
	ValidationTextFailure = "%s error at line %d, column %d: %s"
	TagsTextHeader        = "TAG\tEND\tINTERMEDIATES"
	TagsTextRow           = "%s\t%s\t%s"
	TagsTextNone          = "-"
	TagsTextListSeparator = ","
)

// CLI metadata
const (
	CLIName = "easytag"
)

// File permission constant
const (
	FilePermissions = 0644
)

// Format string constants
const (
	FmtErrorWithDetail = "%s: %s\n"
	FmtErrorWithCause  = "%s: %v\n"
	FmtNewline         = "\n"
	JSONIndent         = "  "
)
