package executor

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/goexecutor/pkg/types"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 10, cfg.CoreSize)
	assert.Equal(t, 50, cfg.MaxSize)
	assert.Equal(t, 100, cfg.QueueCapacity)
	assert.Equal(t, 60*time.Second, cfg.KeepAlive)
	assert.Equal(t, 30*time.Second, cfg.DefaultTimeout)
	assert.Equal(t, "async-", cfg.NamePrefix)
	assert.NotNil(t, cfg.Clock)
	assert.NoError(t, cfg.Validate())
}

func TestGatewayConfig(t *testing.T) {
	cfg := GatewayConfig()

	assert.Equal(t, "web-async-", cfg.NamePrefix)
	assert.Equal(t, DefaultConfig().CoreSize, cfg.CoreSize)
	assert.Equal(t, DefaultConfig().MaxSize, cfg.MaxSize)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"core equals max", func(c *Config) { c.CoreSize, c.MaxSize = 5, 5 }, false},
		{"zero queue", func(c *Config) { c.QueueCapacity = 0 }, false},
		{"zero keep alive", func(c *Config) { c.KeepAlive = 0 }, false},
		{"negative core", func(c *Config) { c.CoreSize = -1 }, true},
		{"zero max", func(c *Config) { c.CoreSize, c.MaxSize = 0, 0 }, true},
		{"max below core", func(c *Config) { c.CoreSize, c.MaxSize = 8, 4 }, true},
		{"negative queue", func(c *Config) { c.QueueCapacity = -1 }, true},
		{"negative keep alive", func(c *Config) { c.KeepAlive = -time.Second }, true},
		{"negative timeout", func(c *Config) { c.DefaultTimeout = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("overrides defaults", func(t *testing.T) {
		cfg, err := LoadConfig(strings.NewReader(`
core_size: 4
max_size: 8
queue_capacity: 16
keep_alive: 90s
name_prefix: batch-
`))
		require.NoError(t, err)

		assert.Equal(t, 4, cfg.CoreSize)
		assert.Equal(t, 8, cfg.MaxSize)
		assert.Equal(t, 16, cfg.QueueCapacity)
		assert.Equal(t, 90*time.Second, cfg.KeepAlive)
		assert.Equal(t, "batch-", cfg.NamePrefix)
		assert.Equal(t, 30*time.Second, cfg.DefaultTimeout)
	})

	t.Run("empty document", func(t *testing.T) {
		cfg, err := LoadConfig(strings.NewReader(""))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig().MaxSize, cfg.MaxSize)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := LoadConfig(strings.NewReader("threads: 4\n"))
		assert.Error(t, err)
	})

	t.Run("invalid result", func(t *testing.T) {
		_, err := LoadConfig(strings.NewReader("core_size: 20\nmax_size: 10\n"))
		assert.ErrorIs(t, err, types.ErrInvalidConfig)
	})
}

func TestLoadConfigFrom(t *testing.T) {
	t.Run("keeps preset values", func(t *testing.T) {
		base := GatewayConfig()
		cfg, err := LoadConfigFrom(base, strings.NewReader("core_size: 4\n"))
		require.NoError(t, err)

		assert.Equal(t, 4, cfg.CoreSize)
		assert.Equal(t, base.NamePrefix, cfg.NamePrefix)
		assert.Equal(t, base.DefaultTimeout, cfg.DefaultTimeout)
		assert.Equal(t, base.MaxSize, cfg.MaxSize)
		assert.Equal(t, GatewayConfig().CoreSize, base.CoreSize, "base must not be modified")
	})

	t.Run("nil base", func(t *testing.T) {
		cfg, err := LoadConfigFrom(nil, strings.NewReader(""))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig().NamePrefix, cfg.NamePrefix)
	})

	t.Run("invalid result", func(t *testing.T) {
		_, err := LoadConfigFrom(GatewayConfig(), strings.NewReader("max_size: 1\n"))
		assert.ErrorIs(t, err, types.ErrInvalidConfig)
	})
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Run("overrides", func(t *testing.T) {
		t.Setenv("EXEC_CORE_SIZE", "3")
		t.Setenv("EXEC_MAX_SIZE", "6")
		t.Setenv("EXEC_QUEUE_CAPACITY", "12")
		t.Setenv("EXEC_KEEP_ALIVE", "5s")
		t.Setenv("EXEC_DEFAULT_TIMEOUT", "2s")
		t.Setenv("EXEC_NAME_PREFIX", "env-")

		cfg := DefaultConfig()
		require.NoError(t, cfg.ApplyEnv("exec"))

		assert.Equal(t, 3, cfg.CoreSize)
		assert.Equal(t, 6, cfg.MaxSize)
		assert.Equal(t, 12, cfg.QueueCapacity)
		assert.Equal(t, 5*time.Second, cfg.KeepAlive)
		assert.Equal(t, 2*time.Second, cfg.DefaultTimeout)
		assert.Equal(t, "env-", cfg.NamePrefix)
	})

	t.Run("malformed int", func(t *testing.T) {
		t.Setenv("EXEC_CORE_SIZE", "many")

		err := DefaultConfig().ApplyEnv("EXEC")
		assert.ErrorIs(t, err, types.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "EXEC_CORE_SIZE")
	})

	t.Run("malformed duration", func(t *testing.T) {
		t.Setenv("EXEC_KEEP_ALIVE", "forever")

		err := DefaultConfig().ApplyEnv("EXEC")
		assert.ErrorIs(t, err, types.ErrInvalidConfig)
	})

	t.Run("unset leaves defaults", func(t *testing.T) {
		cfg := DefaultConfig()
		require.NoError(t, cfg.ApplyEnv("UNUSED_PREFIX"))
		assert.Equal(t, DefaultConfig().CoreSize, cfg.CoreSize)
	})
}
