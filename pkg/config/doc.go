// Package config loads session store configuration from the process
// environment, from .env files and from YAML option files.
//
// Struct configuration is parsed with github.com/caarlos0/env/v11 using the
// `env` and `envDefault` field tags; .env files are applied beforehand with
// github.com/joho/godotenv. The default .env file in the working directory is
// loaded once, on first use, and its absence is not an error.
//
//	var cfg sqlitestore.Config
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatalf("parsing env: %v", err)
//	}
//
// Option files are plain YAML mappings decoded with gopkg.in/yaml.v3 into a
// map[string]any, ready to be merged with defaults by package options:
//
//	fileOpts, err := config.LoadOptionsFile("sessions.yaml")
//	store, err := sqlitestore.NewFromOptions(ctx, fileOpts, overrides)
//
// # Error Handling
//
//   - ErrParsingConfig     – env vars could not be parsed into the struct.
//   - ErrNilPointer        – nil pointer passed to Load/MustLoad.
//   - ErrLoadingEnvFile    – an explicitly named .env file could not be read.
//   - ErrReadingOptions    – an option file could not be read.
//   - ErrInvalidOptionFile – an option file is not a YAML mapping.
package config
