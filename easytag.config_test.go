package easytag

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	data := []byte(`
delimiters:
  tag_open: "<%"
  tag_close: "%>"
  var_open: "[["
  var_close: "]]"
max_depth: 3
strict_variables: true
disable_builtins: true
`)

	cfg, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, "<%", cfg.Delimiters.TagOpen)
	assert.Equal(t, "]]", cfg.Delimiters.VarClose)
	assert.Empty(t, cfg.Delimiters.CommentOpen)
	require.NotNil(t, cfg.MaxDepth)
	assert.Equal(t, 3, *cfg.MaxDepth)
	assert.True(t, cfg.StrictVariables)
	assert.True(t, cfg.DisableBuiltins)
	assert.Len(t, cfg.Options(), 5)

	engine, err := New(cfg.Options()...)
	require.NoError(t, err)
	assert.False(t, engine.HasTag(TagNameIfEqual))
	engine.MustRegister(boxDefinition())

	out, err := engine.Execute(context.Background(), "<% box %>[[ v ]]<% endbox %>", map[string]any{"v": "ok"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	_, err = engine.Execute(context.Background(), "[[ nope ]]", nil)
	assert.Error(t, err, "strict variables from config")
}

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Nil(t, cfg.MaxDepth)
	assert.Empty(t, cfg.Options())
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		message string
	}{
		{name: "invalid yaml", data: "delimiters: [", message: ErrMsgConfigInvalid},
		{name: "unpaired tag delimiter", data: "delimiters:\n  tag_open: \"<%\"\n", message: ErrMsgConfigDelimiterPair},
		{name: "unpaired comment delimiter", data: "delimiters:\n  comment_close: \"#>\"\n", message: ErrMsgConfigDelimiterPair},
		{name: "negative depth", data: "max_depth: -1\n", message: ErrMsgConfigNegativeDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.data))
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Equal(t, KindConfig, ErrorKind(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "easytag.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_depth: 8\n"), 0o600))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, *cfg.MaxDepth)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgConfigRead)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("max_depth: -4\n"), 0o600))
	_, err = LoadConfig(bad)
	require.Error(t, err)
	var customErr *cuserr.CustomError
	require.True(t, errors.As(err, &customErr))
	p, ok := customErr.GetMetadata(MetaKeyPath)
	assert.True(t, ok)
	assert.Equal(t, bad, p)
}
