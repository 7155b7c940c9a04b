// Package config loads the run configuration of the pcss command: the list
// of plugins to apply, in order, with their options.
//
//	plugins:
//	  - name: remove-decls
//	    options:
//	      prop: color
//	  - name: strip-comments
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/eykd/postcss-go/internal/plugins"
	"github.com/eykd/postcss-go/processor"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = ".pcssrc.yml"

// Config is a run configuration.
type Config struct {
	Plugins []PluginConfig `yaml:"plugins"`
}

// PluginConfig selects one built-in plugin.
type PluginConfig struct {
	Name    string         `yaml:"name"`
	Options map[string]any `yaml:"options,omitempty"`
}

// Load decodes a YAML configuration. Unknown fields are rejected so that a
// misspelled key does not silently disable a plugin. Empty input yields an
// empty configuration.
func Load(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for i, p := range cfg.Plugins {
		if p.Name == "" {
			return nil, fmt.Errorf("parse config: plugin %d has no name", i+1)
		}
	}
	return &cfg, nil
}

// Build instantiates the configured plugins, in order, followed by extra.
func (c *Config) Build(extra ...PluginConfig) (*processor.Processor, error) {
	var list processor.Plugins
	for _, pc := range append(append([]PluginConfig(nil), c.Plugins...), extra...) {
		factory, ok := plugins.Lookup(pc.Name)
		if !ok {
			return nil, fmt.Errorf("unknown plugin %q (available: %v)", pc.Name, plugins.Names())
		}
		p, err := factory(pc.Options)
		if err != nil {
			return nil, fmt.Errorf("plugin %s: %w", pc.Name, err)
		}
		list = append(list, p)
	}
	return processor.New(list...), nil
}
