package executor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jzx17/goexecutor/pkg/types"
)

const (
	defaultCoreSize      = 10
	defaultMaxSize       = 50
	defaultQueueCapacity = 100
	defaultKeepAlive     = 60 * time.Second
	defaultTimeout       = 30 * time.Second
	defaultNamePrefix    = "async-"
	gatewayNamePrefix    = "web-async-"
)

// Config contains configuration for a bounded executor
type Config struct {
	// CoreSize is the number of workers kept warm even when idle
	CoreSize int `yaml:"core_size"`

	// MaxSize is the hard cap on concurrent workers
	MaxSize int `yaml:"max_size"`

	// QueueCapacity is the maximum number of queued tasks; zero means direct hand-off only
	QueueCapacity int `yaml:"queue_capacity"`

	// KeepAlive is how long a worker above CoreSize may stay idle before it retires
	KeepAlive time.Duration `yaml:"keep_alive"`

	// NamePrefix names workers for logs and goroutine profiles
	NamePrefix string `yaml:"name_prefix"`

	// DefaultTimeout is the await deadline used by gateways built on this executor
	DefaultTimeout time.Duration `yaml:"default_timeout"`

	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock `yaml:"-"`

	// Logger receives executor events (optional, defaults to a no-op logger)
	Logger *zap.Logger `yaml:"-"`

	// Metrics records Prometheus metrics (optional)
	Metrics *Metrics `yaml:"-"`

	// OnFailure is called after a task failure is attached to its handle
	OnFailure func(*types.TaskFailure) `yaml:"-"`
}

// DefaultConfig returns the configuration of the general purpose async executor
func DefaultConfig() *Config {
	return &Config{
		CoreSize:       defaultCoreSize,
		MaxSize:        defaultMaxSize,
		QueueCapacity:  defaultQueueCapacity,
		KeepAlive:      defaultKeepAlive,
		NamePrefix:     defaultNamePrefix,
		DefaultTimeout: defaultTimeout,
		Clock:          types.NewRealClock(),
	}
}

// GatewayConfig returns the configuration of the executor backing async request handling
func GatewayConfig() *Config {
	cfg := DefaultConfig()
	cfg.NamePrefix = gatewayNamePrefix
	return cfg
}

// Validate checks the configuration invariants
func (c *Config) Validate() error {
	if c.CoreSize < 0 {
		return fmt.Errorf("%w: core size must not be negative, got %d", types.ErrInvalidConfig, c.CoreSize)
	}
	if c.MaxSize <= 0 {
		return fmt.Errorf("%w: max size must be positive, got %d", types.ErrInvalidConfig, c.MaxSize)
	}
	if c.MaxSize < c.CoreSize {
		return fmt.Errorf("%w: max size (%d) must be >= core size (%d)",
			types.ErrInvalidConfig, c.MaxSize, c.CoreSize)
	}
	if c.QueueCapacity < 0 {
		return fmt.Errorf("%w: queue capacity must not be negative, got %d", types.ErrInvalidConfig, c.QueueCapacity)
	}
	if c.KeepAlive < 0 {
		return fmt.Errorf("%w: keep alive must not be negative, got %s", types.ErrInvalidConfig, c.KeepAlive)
	}
	if c.DefaultTimeout < 0 {
		return fmt.Errorf("%w: default timeout must not be negative, got %s", types.ErrInvalidConfig, c.DefaultTimeout)
	}
	return nil
}

// LoadConfig reads a YAML document on top of DefaultConfig and validates the result.
// Durations use Go syntax, e.g. "60s".
func LoadConfig(r io.Reader) (*Config, error) {
	return LoadConfigFrom(DefaultConfig(), r)
}

// LoadConfigFrom is LoadConfig on top of base, e.g. GatewayConfig. Keys
// missing from the document keep their base values; base is not modified.
func LoadConfigFrom(base *Config, r io.Reader) (*Config, error) {
	if base == nil {
		base = DefaultConfig()
	}
	cfg := *base

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode executor config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides fields from <PREFIX>_CORE_SIZE, <PREFIX>_MAX_SIZE,
// <PREFIX>_QUEUE_CAPACITY, <PREFIX>_KEEP_ALIVE, <PREFIX>_NAME_PREFIX and
// <PREFIX>_DEFAULT_TIMEOUT.
func (c *Config) ApplyEnv(prefix string) error {
	key := func(name string) string {
		return strings.ToUpper(prefix) + "_" + name
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"CORE_SIZE", &c.CoreSize},
		{"MAX_SIZE", &c.MaxSize},
		{"QUEUE_CAPACITY", &c.QueueCapacity},
	}
	for _, f := range ints {
		if v := os.Getenv(key(f.name)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", types.ErrInvalidConfig, key(f.name), err)
			}
			*f.dst = n
		}
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"KEEP_ALIVE", &c.KeepAlive},
		{"DEFAULT_TIMEOUT", &c.DefaultTimeout},
	}
	for _, f := range durations {
		if v := os.Getenv(key(f.name)); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", types.ErrInvalidConfig, key(f.name), err)
			}
			*f.dst = d
		}
	}

	if v := os.Getenv(key("NAME_PREFIX")); v != "" {
		c.NamePrefix = v
	}

	return c.Validate()
}
