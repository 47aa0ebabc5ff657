package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/ironsheep/top3colors/internal/imaging"
	"github.com/ironsheep/top3colors/internal/pipeline"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "top3colors"

	// DefaultTimeout bounds one image download, body included.
	DefaultTimeout = imaging.DefaultTimeout

	// DefaultUserAgent identifies the tool in HTTP requests.
	DefaultUserAgent = imaging.DefaultUserAgent

	// DefaultWorkerMemoryBytes is the memory budgeted for one worker: one
	// decoded image plus its histogram.
	DefaultWorkerMemoryBytes = pipeline.DefaultWorkerMemory

	// DefaultConfigFileName is looked up under the XDG config directory.
	DefaultConfigFileName = "config.yaml"
)

// Config holds the settings of one run.
type Config struct {
	// Timeout bounds each HTTP request.
	Timeout time.Duration `yaml:"timeout"`

	// UserAgent is sent with every request.
	UserAgent string `yaml:"user_agent"`

	// Proxy is an optional proxy URL, e.g. "socks5://127.0.0.1:9050".
	Proxy string `yaml:"proxy"`

	// MaxBodyBytes caps each response body. 0 means no cap.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// WorkerMemoryBytes is the per-worker memory budget used to size the pool.
	WorkerMemoryBytes int64 `yaml:"worker_memory_bytes"`

	// MemoryLimitBytes overrides the memory available to the whole run when
	// sizing the pool. 0 uses GOMEMLIMIT or a quarter of the detected
	// container or host memory.
	MemoryLimitBytes int64 `yaml:"memory_limit_bytes"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Timeout:           DefaultTimeout,
		UserAgent:         DefaultUserAgent,
		WorkerMemoryBytes: DefaultWorkerMemoryBytes,
	}
}

// XDGConfigDir returns the XDG config directory for top3colors.
// On Linux: ~/.config/top3colors
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultConfigPath returns the config file consulted when none is given.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigDir(), DefaultConfigFileName)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodyBytes < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.WorkerMemoryBytes <= 0 {
		return ErrInvalidWorkerMemory
	}
	if c.MemoryLimitBytes < 0 {
		return ErrInvalidMemoryLimit
	}
	return nil
}
