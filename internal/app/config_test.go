package app

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigBind(t *testing.T) {
	cfg := NewConfig()
	fs := flag.NewFlagSet("life", flag.ContinueOnError)
	cfg.Bind(fs)

	err := fs.Parse([]string{"-w", "20", "-h", "10", "-rate", "5", "-generations", "100", "-random", "-seed", "7", "-log-level", "debug"})
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Width)
	assert.Equal(t, 10, cfg.Height)
	assert.Equal(t, 5, cfg.Rate)
	assert.Equal(t, uint64(100), cfg.Generations)
	assert.True(t, cfg.Random)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.NoError(t, cfg.Validate())
}

func TestConfigDefaultsValidate(t *testing.T) {
	assert.NoError(t, NewConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "1x1 board", mutate: func(c *Config) { c.Width, c.Height = 1, 1 }, ok: true},
		{name: "zero width", mutate: func(c *Config) { c.Width = 0 }},
		{name: "negative height", mutate: func(c *Config) { c.Height = -2 }},
		{name: "inferred size", mutate: func(c *Config) { c.In, c.Width, c.Height = "board.txt", 0, 0 }, ok: true},
		{name: "rate above tps", mutate: func(c *Config) { c.Rate = c.TPS + 1 }},
		{name: "zero tps", mutate: func(c *Config) { c.TPS = 0 }},
		{name: "in and random", mutate: func(c *Config) { c.In, c.Random = "board.txt", true }},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
