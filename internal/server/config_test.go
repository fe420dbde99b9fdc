package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokertable/internal/game"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, "localhost:8080", config.ListenAddress())
	require.Len(t, config.Tables, 1)
	main := config.Tables[0]
	assert.Equal(t, "main", main.Name)
	assert.True(t, main.AutoStart)
	assert.Equal(t, game.DefaultRules(), main.Rules())

	timeout, err := main.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
}

func TestParseConfig(t *testing.T) {
	t.Parallel()
	src := `
server {
  port      = 9000
  log_level = "debug"
  data_dir  = "/var/lib/pokertable"
}

table "high" {
  max_players    = 6
  ante           = 0
  raise_minimum  = true
  action_timeout = "10s"
  auto_start     = true
  buy_in         = 5000

  blind "Small" { value = 50 }
  blind "Big" { value = 100 }
  blind "Straddle" { value = 200 }
}

table "low" {}
`
	config, err := ParseConfig([]byte(src), "test.hcl")
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, "localhost", config.Server.Address)
	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, "debug", config.Server.LogLevel)
	assert.Equal(t, "/var/lib/pokertable", config.Server.DataDir)

	high, ok := config.Table("high")
	require.True(t, ok)
	assert.Equal(t, 6, high.MaxPlayers)
	assert.Equal(t, 5000, high.BuyIn)
	assert.True(t, high.AutoStart)
	assert.Equal(t, game.Rules{
		Ante:         0,
		RaiseMinimum: true,
		Blinds: []game.Blind{
			{Name: "Small", Value: 50},
			{Name: "Big", Value: 100},
			{Name: "Straddle", Value: 200},
		},
	}, high.Rules())
	timeout, err := high.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, timeout)

	low, ok := config.Table("low")
	require.True(t, ok)
	assert.False(t, low.AutoStart)
	assert.Equal(t, game.MaxPlayers, low.MaxPlayers)
	assert.Equal(t, game.DefaultRules(), low.Rules())

	_, ok = config.Table("missing")
	assert.False(t, ok)
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte("server {}\ntable \"main\" {}\n"), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Len(t, config.Tables, 1)
}

func TestParseConfigErrors(t *testing.T) {
	t.Parallel()
	_, err := ParseConfig([]byte(`server {`), "broken.hcl")
	assert.ErrorContains(t, err, "failed to parse")

	_, err = ParseConfig([]byte(`server { port = "high" }`), "typed.hcl")
	assert.ErrorContains(t, err, "failed to decode")
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "invalid port"},
		{"no tables", func(c *Config) { c.Tables = nil }, "at least one table"},
		{"duplicate table", func(c *Config) { c.Tables = append(c.Tables, c.Tables[0]) }, "more than once"},
		{"too many seats", func(c *Config) { c.Tables[0].MaxPlayers = 9 }, "max players"},
		{"no buy-in", func(c *Config) { c.Tables[0].BuyIn = 0 }, "buy-in"},
		{"bad timeout", func(c *Config) { c.Tables[0].ActionTimeout = "soon" }, "action timeout"},
		{"limit", func(c *Config) { c.Tables[0].Limit = 2 }, "no-limit"},
		{"zero blind", func(c *Config) { c.Tables[0].Blinds[0].Value = 0 }, "must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			assert.ErrorContains(t, config.Validate(), tt.want)
		})
	}
}
