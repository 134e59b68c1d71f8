package main

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/itsatony/go-easytag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// readInput reads content from a file or stdin
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == InputSourceStdin {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// writeOutput writes content to a file or stdout
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == FlagDefaultOutput {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, FilePermissions)
}

// loadData decodes the render data from a JSON string or a JSON/YAML file.
// No data yields an empty map.
func loadData(jsonStr, filePath string) (map[string]any, error) {
	if jsonStr != "" && filePath != "" {
		return nil, errors.New(ErrMsgConflictingDataArgs)
	}

	result := make(map[string]any)
	switch {
	case filePath != "":
		raw, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		ext := strings.ToLower(filepath.Ext(filePath))
		if ext == DataExtYAML || ext == DataExtYML {
			err = yaml.Unmarshal(raw, &result)
		} else {
			err = json.Unmarshal(raw, &result)
		}
		if err != nil {
			return nil, err
		}
	case jsonStr != "":
		if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
			return nil, err
		}
	}

	// a top-level "null" decodes to a nil map
	if result == nil {
		return nil, errors.New(ErrMsgDataNotObject)
	}
	return result, nil
}

// newLogger returns a development console logger on stderr when verbose, else a no-op logger
func newLogger(verbose bool, stderr io.Writer) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(stderr),
		zapcore.DebugLevel,
	)
	return zap.New(core, zap.Development())
}

// newEngine builds an engine from an optional YAML config file
func newEngine(configPath string, logger *zap.Logger) (*easytag.Engine, error) {
	var opts []easytag.Option
	if configPath != "" {
		cfg, err := easytag.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		opts = cfg.Options()
	}
	opts = append(opts, easytag.WithLogger(logger))
	return easytag.New(opts...)
}
