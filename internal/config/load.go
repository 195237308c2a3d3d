// Package config loads the tool's configuration from a YAML or JSON file
// plus environment overrides.
//
// Both formats go through the same strict JSON decoder: YAML documents are
// converted to JSON bytes first, so unknown keys are rejected uniformly.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

// Environment variables recognized as overrides. Empty values are ignored.
const (
	EnvPackage    = "PIP_PACKAGE"
	EnvWebhookURL = "SLACK_WEBHOOK_URL"
	EnvChannels   = "SLACK_CHANNELS" // comma-separated
	EnvUsername   = "SLACK_USERNAME"
	EnvIconEmoji  = "SLACK_ICON"
	EnvLogLevel   = "LOG_LEVEL"
)

// Load reads the configuration file at path, applies environment overrides
// and defaults, and validates the result.
//
// A missing file is not an error: the tool can be driven by environment
// variables alone, and validation catches anything genuinely absent.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		cfg, err = parse(path, b)
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// env-only run
	default:
		return nil, err
	}

	applyEnv(cfg)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// parse decodes one config document strictly: unknown keys and trailing
// content are errors.
func parse(path string, b []byte) (*Config, error) {
	jb, err := toJSONBytes(path, b)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, errors.New("trailing data after config document")
		}
		return nil, err
	}
	return &cfg, nil
}

// toJSONBytes converts a YAML config document to JSON bytes so both formats
// share the strict decoder above. Files without a .yaml/.yml extension are
// assumed to already be JSON.
func toJSONBytes(path string, data []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
	default:
		return data, nil
	}

	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	j, err := json.Marshal(stringifyKeys(v))
	if err != nil {
		return nil, fmt.Errorf("yaml->json marshal: %w", err)
	}
	return j, nil
}

// stringifyKeys rewrites YAML map keys to strings so the value can be
// JSON-marshaled.
func stringifyKeys(in any) any {
	switch x := in.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = stringifyKeys(v)
		}
		return m
	case map[string]any:
		for k, v := range x {
			x[k] = stringifyKeys(v)
		}
		return x
	case []any:
		for i := range x {
			x[i] = stringifyKeys(x[i])
		}
		return x
	default:
		return in
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvPackage); v != "" {
		cfg.Package = v
	}
	if v := os.Getenv(EnvWebhookURL); v != "" {
		cfg.Slack.WebhookURL = v
	}
	if v := os.Getenv(EnvChannels); v != "" {
		cfg.Slack.Channels = splitList(v)
	}
	if v := os.Getenv(EnvUsername); v != "" {
		cfg.Slack.Username = v
	}
	if v := os.Getenv(EnvIconEmoji); v != "" {
		cfg.Slack.IconEmoji = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
}

// splitList splits a comma-separated list, trimming entries and dropping
// empty ones.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
