package config

import "errors"

// Errors returned by Load; callers match them with errors.Is.
var (
	// ErrInvalidConfig wraps values rejected by Validate.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig wraps failures reading the YAML file or the environment.
	ErrLoadConfig = errors.New("load config failed")
)
