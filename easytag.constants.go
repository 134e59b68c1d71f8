package easytag

import "time"

// Default host delimiters
const (
	DefaultTagOpen      = "{%"
	DefaultTagClose     = "%}"
	DefaultVarOpen      = "{{"
	DefaultVarClose     = "}}"
	DefaultCommentOpen  = "{#"
	DefaultCommentClose = "#}"
)

// DefaultMaxDepth is the default maximum tag nesting depth
const DefaultMaxDepth = 64

// MaxRepeat caps the count of the repeat tag
const MaxRepeat = 10000

// EndTagPrefix is prepended to the start name to derive an end marker name
const EndTagPrefix = "end"

// Built-in tag and marker names
const (
	TagNameComment   = "comment"
	TagNameIfEqual   = "ifequal"
	TagNameChoose    = "choose"
	TagNameWith      = "with"
	TagNameFirstOf   = "firstof"
	TagNameRepeat    = "repeat"
	TagNameSpaceless = "spaceless"

	MarkerElse      = "else"
	MarkerWhen      = "when"
	MarkerOtherwise = "otherwise"
)

// Struct tag keys and options understood by typed handler argument structs
const (
	StructTagArg      = "arg"
	StructTagDefault  = "default"
	ArgOptionOptional = "opt"
	ArgOptionArgs     = "args"
	ArgOptionKwargs   = "kwargs"
	ArgNameIgnore     = "-"
	ArgTagSeparator   = ","
)

// Marker name separators folded away when deriving receiver method names
const markerNameSeparators = "_-."

// Error kinds, stored under MetaKeyKind
const (
	KindDefinition = "definition"
	KindParse      = "parse"
	KindBinding    = "binding"
	KindDispatch   = "dispatch"
	KindRender     = "render"
	KindConfig     = "config"
	KindStorage    = "storage"
)

// Error code constants for categorization
const (
	ErrCodeDefinition = "EASYTAG_DEFINITION"
	ErrCodeParse      = "EASYTAG_PARSE"
	ErrCodeBinding    = "EASYTAG_BINDING"
	ErrCodeDispatch   = "EASYTAG_DISPATCH"
	ErrCodeRender     = "EASYTAG_RENDER"
	ErrCodeConfig     = "EASYTAG_CONFIG"
	ErrCodeStorage    = "EASYTAG_STORAGE"
)

// Metadata keys for cuserr.WithMetadata
const (
	MetaKeyKind       = "kind"
	MetaKeyLine       = "line"
	MetaKeyColumn     = "column"
	MetaKeyOffset     = "offset"
	MetaKeyTag        = "tag"
	MetaKeyMarker     = "marker"
	MetaKeyArgument   = "argument"
	MetaKeyFromType   = "from_type"
	MetaKeyToType     = "to_type"
	MetaKeyField      = "field"
	MetaKeyReason     = "reason"
	MetaKeyPath       = "path"
	MetaKeyName       = "name"
	MetaKeyVersion    = "version"
	MetaKeyDriver     = "driver"
	MetaKeyResultType = "result_type"
)

// Storage constants
const (
	TemplateIDPrefix          = "tmpl_"
	FilesystemDirPermissions  = 0755
	FilesystemFilePermissions = 0644
	FilesystemVersionPrefix   = "v"
	FilesystemVersionSuffix   = ".json"
	StorageDriverMemory       = "memory"
	StorageDriverFilesystem   = "filesystem"
	StorageDriverPostgres     = "postgres"
	DefaultPostgresPrefix     = "easytag_"
	DefaultQueryTimeout       = 30 * time.Second
	DefaultMaxOpenConns       = 10
	DefaultMaxIdleConns       = 5
	DefaultConnMaxLifetime    = time.Hour
)

// Log message constants
const (
	LogMsgEngineCreated     = "easytag engine created"
	LogMsgTagRegistered     = "tag registered"
	LogMsgTemplateParsed    = "template parsed"
	LogMsgTemplateExecute   = "template execution started"
	LogMsgTemplateExecuted  = "template execution finished"
	LogMsgBlockCompiled     = "block tag compiled"
	LogMsgStorageSaved      = "template saved"
	LogMsgStorageCacheHit   = "compiled template cache hit"
	LogMsgStorageCacheMiss  = "compiled template cache miss"
	LogMsgStorageCacheClear = "compiled template cache cleared"
	LogMsgStorageMigrated   = "storage schema migrated"
)

// Log field name constants
const (
	LogFieldTag       = "tag"
	LogFieldEnd       = "end"
	LogFieldSegments  = "segments"
	LogFieldSourceLen = "source_length"
	LogFieldOutputLen = "output_length"
	LogFieldName      = "name"
	LogFieldVersion   = "version"
	LogFieldID        = "id"
	LogFieldTagCount  = "tag_count"
)
