package config

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Strategy marshals/unmarshals a File in one on-disk format, mirroring the
// teacher's format-strategy pattern (internal/config/marshal_yaml.go).
type Strategy interface {
	Name() string
	Marshal(f File) ([]byte, error)
	Unmarshal(data []byte) (File, error)
}

// GetStrategy resolves a strategy by format name ("yaml" or "toml").
func GetStrategy(format string) (Strategy, error) {
	switch format {
	case "yaml", "yml", "":
		return yamlStrategy{}, nil
	case "toml":
		return tomlStrategy{}, nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}

type yamlStrategy struct{}

func (yamlStrategy) Name() string { return "yaml" }

func (yamlStrategy) Marshal(f File) ([]byte, error) {
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return data, nil
}

func (yamlStrategy) Unmarshal(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("unmarshal yaml: %w", err)
	}
	return f, nil
}

type tomlStrategy struct{}

func (tomlStrategy) Name() string { return "toml" }

func (tomlStrategy) Marshal(f File) ([]byte, error) {
	data, err := toml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal toml: %w", err)
	}
	return data, nil
}

func (tomlStrategy) Unmarshal(data []byte) (File, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("unmarshal toml: %w", err)
	}
	return f, nil
}

// WriteExample renders f using the named format, for `rootcut config init`
// style onboarding (WriteExample is called by the `config init` subcommand
// in internal/cli/config.go).
func WriteExample(f File, format string) ([]byte, error) {
	strategy, err := GetStrategy(format)
	if err != nil {
		return nil, err
	}
	return strategy.Marshal(f)
}
