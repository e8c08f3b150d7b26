package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json5 "github.com/KevinWang15/go-json5"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables read by Load, e.g. OCCULT_MAG=10.
// OCCULT_CONFIG names a parameter file when Load is given no path.
const EnvPrefix = "OCCULT_"

// Load builds a Config by layering, lowest precedence first:
//  1. defaults (New)
//  2. the parameter file at path, JSON5 (.json, .json5) or YAML (.yaml, .yml)
//  3. environment variables with EnvPrefix
//  4. overrides, keyed like the koanf tags (typically flags set on the command line)
func Load(ctx context.Context, path string, overrides map[string]any) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: environment: %v", ErrLoadConfig, err)
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("%w: overrides: %v", ErrLoadConfig, err)
		}
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".json5":
		return JSON5(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: %s: unsupported parameter file type", ErrLoadConfig, path)
	}
}

// JSON5Parser reads the relaxed JSON used for parameter files: comments,
// trailing commas and unquoted keys are accepted.
type JSON5Parser struct{}

// JSON5 returns a koanf parser for JSON5 parameter files.
func JSON5() *JSON5Parser { return &JSON5Parser{} }

func (p *JSON5Parser) Unmarshal(b []byte) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := json5.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Marshal writes plain JSON, which is valid JSON5.
func (p *JSON5Parser) Marshal(o map[string]interface{}) ([]byte, error) {
	return json.MarshalIndent(o, "", "  ")
}
