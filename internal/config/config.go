// Package config loads the optional cssmini batch config file. The file
// is YAML by default, JSON when the extension says so; decoded values are
// defaulted and then checked against an embedded JSON Schema.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type File struct {
	Version int `json:"version" yaml:"version"`

	Output struct {
		Dir    string `json:"dir" yaml:"dir"`
		Suffix string `json:"suffix" yaml:"suffix"`
	} `json:"output" yaml:"output"`

	Batch struct {
		Include []string `json:"include" yaml:"include"`
	} `json:"batch" yaml:"batch"`

	Report struct {
		Path string `json:"path" yaml:"path"`
	} `json:"report" yaml:"report"`
}

func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg File
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *File) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if cfg.Output.Suffix == "" {
		cfg.Output.Suffix = ".min.css"
	}
}
