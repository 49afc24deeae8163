// Package config loads the optional rootcut configuration file
// (SPEC_FULL.md §10): an additive YAML/TOML layer providing defaults for
// Excluded/Included/PluginConfig/Mode that CLI flags always override:
// flags > file > defaults. No environment variables are read.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// File is the on-disk shape of a rootcut config file.
type File struct {
	Excluded     []string          `mapstructure:"excluded" yaml:"excluded" toml:"excluded"`
	Included     []string          `mapstructure:"included" yaml:"included" toml:"included"`
	Mode         string            `mapstructure:"mode" yaml:"mode" toml:"mode"`
	LoaderConfig string            `mapstructure:"loader_config" yaml:"loader_config" toml:"loader_config"`
	Plugins      map[string]string `mapstructure:"plugins" yaml:"plugins" toml:"plugins"`
}

// Default returns the built-in defaults applied when no config file is
// present, mirroring spec.md §3/§6's documented defaults.
func Default() File {
	return File{
		Mode:         "skinny",
		LoaderConfig: "etc/ld.so.conf",
	}
}

// Load reads path (YAML or TOML, detected by extension, matching the
// teacher's multi-format config loader) via viper, layering it over
// Default(). An empty path or a nonexistent file is not an error — it
// simply yields the defaults (file > defaults precedence collapses to
// just defaults).
func Load(path string) (File, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if isNotFound(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

func isNotFound(err error) bool {
	_, ok := err.(viper.ConfigFileNotFoundError)
	if ok {
		return true
	}
	return strings.Contains(err.Error(), "no such file")
}

// PluginSpecs renders the file's plugin map back into the `--plugin`
// activation-grammar form (`name:k=v`) so a single parser
// (internal/pluginspec) handles both flag and file input.
func (f File) PluginSpecs() []string {
	var specs []string
	for name, params := range f.Plugins {
		if params == "" {
			specs = append(specs, name)
			continue
		}
		specs = append(specs, name+":"+params)
	}
	return specs
}
