package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 for no limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidWorkerMemory is returned when the per-worker memory budget is
	// not positive.
	ErrInvalidWorkerMemory = errors.New("invalid worker memory: must be positive")

	// ErrInvalidMemoryLimit is returned when the memory limit is negative.
	// Use 0 to take the runtime's limit.
	ErrInvalidMemoryLimit = errors.New("invalid memory limit: must be non-negative")
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")
