package config

import "errors"

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrNilPointer is returned when a nil pointer is provided to Load
	ErrNilPointer = errors.New("nil pointer provided to config loader")

	// ErrLoadingEnvFile is returned when an explicitly requested .env file cannot be loaded
	ErrLoadingEnvFile = errors.New("failed to load env file")

	// ErrReadingOptions is returned when an option file cannot be read
	ErrReadingOptions = errors.New("failed to read options file")

	// ErrInvalidOptionFile is returned when an option file is not a YAML mapping
	ErrInvalidOptionFile = errors.New("options file must contain a mapping")
)
