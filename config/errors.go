package config

import "errors"

var (
	// ErrNoConfig indicates no configuration file could be located.
	ErrNoConfig = errors.New("config: no configuration file found")

	// ErrInvalidConfig indicates the configuration file could not be parsed.
	ErrInvalidConfig = errors.New("config: invalid configuration")

	// ErrMissingEnv indicates a ${VAR} reference names an unset variable.
	ErrMissingEnv = errors.New("config: missing required environment variables")

	// ErrInvalidOption indicates a run option is out of range.
	ErrInvalidOption = errors.New("config: invalid option")
)
