package easytag

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the file form of the engine options
type Config struct {
	Delimiters      DelimiterConfig `yaml:"delimiters"`
	MaxDepth        *int            `yaml:"max_depth"`
	StrictVariables bool            `yaml:"strict_variables"`
	DisableBuiltins bool            `yaml:"disable_builtins"`
}

// DelimiterConfig holds optional delimiter overrides. Each pair is set together.
type DelimiterConfig struct {
	TagOpen      string `yaml:"tag_open"`
	TagClose     string `yaml:"tag_close"`
	VarOpen      string `yaml:"var_open"`
	VarClose     string `yaml:"var_close"`
	CommentOpen  string `yaml:"comment_open"`
	CommentClose string `yaml:"comment_close"`
}

// LoadConfig reads and parses a YAML configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError(ErrMsgConfigRead, path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, withConfigPath(err, path)
	}
	return cfg, nil
}

// ParseConfig parses YAML configuration
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, NewConfigError(ErrMsgConfigInvalid, "", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that delimiters come in pairs and the depth is not negative
func (c *Config) Validate() error {
	d := c.Delimiters
	pairs := [][2]string{
		{d.TagOpen, d.TagClose},
		{d.VarOpen, d.VarClose},
		{d.CommentOpen, d.CommentClose},
	}
	for _, p := range pairs {
		if (p[0] == "") != (p[1] == "") {
			return NewConfigError(ErrMsgConfigDelimiterPair, "", nil)
		}
	}
	if c.MaxDepth != nil && *c.MaxDepth < 0 {
		return NewConfigError(ErrMsgConfigNegativeDepth, "", nil)
	}
	return nil
}

// Options converts the configuration into engine options
func (c *Config) Options() []Option {
	var opts []Option
	d := c.Delimiters
	if d.TagOpen != "" {
		opts = append(opts, WithTagDelimiters(d.TagOpen, d.TagClose))
	}
	if d.VarOpen != "" {
		opts = append(opts, WithVarDelimiters(d.VarOpen, d.VarClose))
	}
	if d.CommentOpen != "" {
		opts = append(opts, WithCommentDelimiters(d.CommentOpen, d.CommentClose))
	}
	if c.MaxDepth != nil {
		opts = append(opts, WithMaxDepth(*c.MaxDepth))
	}
	if c.StrictVariables {
		opts = append(opts, WithStrictVariables())
	}
	if c.DisableBuiltins {
		opts = append(opts, WithoutBuiltins())
	}
	return opts
}
