package toolbox

import (
	"time"

	"github.com/rs/zerolog"
)

// exporterConfig holds internal configuration for an Exporter.
type exporterConfig struct {
	chromePath   string
	timeout      time.Duration
	noSandbox    bool
	headless     string
	autoDownload bool
	deviceScale  float64
	allowTaint   bool
	logger       zerolog.Logger
}

func defaultConfig() exporterConfig {
	return exporterConfig{
		timeout:     30 * time.Second,
		headless:    "new",
		deviceScale: 2,
		logger:      zerolog.Nop(),
	}
}

// Option configures an [Exporter].
type Option func(*exporterConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default the library searches standard locations automatically.
func WithChromePath(path string) Option {
	return func(c *exporterConfig) {
		c.chromePath = path
	}
}

// WithTimeout sets the maximum duration for a single export.
// Defaults to 30 seconds. A zero or negative value disables the timeout,
// in which case a hung image load blocks until the caller's context ends.
func WithTimeout(d time.Duration) Option {
	return func(c *exporterConfig) {
		c.timeout = d
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() Option {
	return func(c *exporterConfig) {
		c.noSandbox = true
	}
}

// WithAutoDownload fetches a compatible Chromium build when no executable
// path is configured. The download is cached between runs.
func WithAutoDownload() Option {
	return func(c *exporterConfig) {
		c.autoDownload = true
	}
}

// WithDeviceScale sets the rasterization device scale factor.
// Defaults to 2. Values <= 0 are ignored.
func WithDeviceScale(scale float64) Option {
	return func(c *exporterConfig) {
		if scale > 0 {
			c.deviceScale = scale
		}
	}
}

// WithAllowTaint keeps cross-origin images that were loaded without CORS.
// By default they are removed before rasterization and reported in
// [Result.Excluded].
func WithAllowTaint() Option {
	return func(c *exporterConfig) {
		c.allowTaint = true
	}
}

// WithLogger attaches a logger. The default logger discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *exporterConfig) {
		c.logger = l
	}
}
