package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var defaultEnvLoaded sync.Once

// LoadEnv applies the given .env files to the process environment. Variables
// already set in the environment are not overridden.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// Load parses environment variables into v based on its field tags.
// The default .env file is applied once per process before the first parse.
func Load[T any](v *T) error {
	defaultEnvLoaded.Do(func() {
		// The default .env file is optional.
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
}

// LoadOptionsFile reads a YAML mapping from path. An empty file yields an
// empty map.
func LoadOptionsFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrReadingOptions, err)
	}
	return ParseOptions(data)
}

// ParseOptions decodes a YAML mapping.
func ParseOptions(data []byte) (map[string]any, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, errors.Join(ErrInvalidOptionFile, err)
	}
	opts := make(map[string]any)
	if node.Kind == 0 {
		return opts, nil
	}
	if node.Kind != yaml.DocumentNode || len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return nil, ErrInvalidOptionFile
	}
	if err := node.Content[0].Decode(&opts); err != nil {
		return nil, errors.Join(ErrInvalidOptionFile, err)
	}
	return opts, nil
}
