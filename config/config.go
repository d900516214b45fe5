// Package config loads the command line tools' yaml configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/pattyshack/elfhdr/elf"
	"github.com/pattyshack/elfhdr/report"
)

// Example:
//
//	class_policy: strict
//	color: false
//	workers: 4
//	resource_names:
//	  0x7f010000: app_name
type Config struct {
	// "lenient" (default) or "strict"
	ClassPolicy string `yaml:"class_policy"`

	// Defaults to true.
	Color *bool `yaml:"color"`

	// Maximum number of files parsed concurrently.  Defaults to GOMAXPROCS.
	Workers int `yaml:"workers"`

	ResourceNames map[uint32]string `yaml:"resource_names"`
}

func Default() *Config {
	return &Config{}
}

func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

func Parse(content []byte) (*Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)

	err := decoder.Decode(cfg)
	if err != nil && !errors.Is(err, io.EOF) { // io.EOF for empty documents
		return nil, fmt.Errorf("failed to decode yaml: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) Validate() error {
	_, err := elf.ParseClassPolicy(cfg.ClassPolicy)
	if err != nil {
		return err
	}

	if cfg.Workers < 0 {
		return fmt.Errorf("invalid workers (%d)", cfg.Workers)
	}

	return nil
}

func (cfg *Config) Policy() elf.ClassPolicy {
	policy, err := elf.ParseClassPolicy(cfg.ClassPolicy)
	if err != nil {
		panic(err) // should never happen after Validate
	}
	return policy
}

func (cfg *Config) ColorEnabled() bool {
	return cfg.Color == nil || *cfg.Color
}

func (cfg *Config) NumWorkers() int {
	if cfg.Workers == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return cfg.Workers
}

func (cfg *Config) NewParser() *report.Parser {
	return &report.Parser{
		ClassPolicy: cfg.Policy(),
		Names:       report.ResourceNames(cfg.ResourceNames),
	}
}
