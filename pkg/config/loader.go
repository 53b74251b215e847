package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromFile reads an orchestrator config file, picking the parser from the
// file extension. YAML (.yaml, .yml) is the primary format; JSON is
// accepted for generated configs.
func FromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return Config{}, fmt.Errorf("config %s: unsupported format, want .yaml, .yml or .json", path)
	}
}

// FromYAML parses a YAML document into a Config. Section keys (server,
// llm, redis, workflow) become nested maps reachable via Sub.
func FromYAML(data []byte) (Config, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse yaml config: %w", err)
	}
	return New(m), nil
}

// FromJSON parses a JSON document into a Config.
func FromJSON(data []byte) (Config, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse json config: %w", err)
	}
	return New(m), nil
}
