package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/pokertable/internal/game"
)

// Config is the complete server configuration.
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Tables []TableConfig  `hcl:"table,block"`
}

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	DataDir  string `hcl:"data_dir,optional"`
}

// TableConfig defines one table. The label is the table name clients join by.
type TableConfig struct {
	Name          string        `hcl:"name,label"`
	MaxPlayers    int           `hcl:"max_players,optional"`
	Ante          *int          `hcl:"ante,optional"`
	Limit         int           `hcl:"limit,optional"`
	RaiseMinimum  bool          `hcl:"raise_minimum,optional"`
	ActionTimeout string        `hcl:"action_timeout,optional"`
	AutoStart     bool          `hcl:"auto_start,optional"`
	BuyIn         int           `hcl:"buy_in,optional"`
	Blinds        []BlindConfig `hcl:"blind,block"`
}

// BlindConfig is one rung of a table's blind ladder, posted in file order.
type BlindConfig struct {
	Name  string `hcl:"name,label"`
	Value int    `hcl:"value"`
}

const (
	defaultAddress       = "localhost"
	defaultPort          = 8080
	defaultLogLevel      = "info"
	defaultDataDir       = "data"
	defaultAnte          = 10
	defaultBuyIn         = 1000
	defaultActionTimeout = "30s"
)

func defaultBlinds() []BlindConfig {
	return []BlindConfig{{Name: "Small", Value: 20}, {Name: "Big", Value: 40}}
}

// DefaultConfig returns the configuration used when no file exists: one
// auto-starting table named "main".
func DefaultConfig() *Config {
	ante := defaultAnte
	return &Config{
		Server: ServerSettings{
			Address:  defaultAddress,
			Port:     defaultPort,
			LogLevel: defaultLogLevel,
			DataDir:  defaultDataDir,
		},
		Tables: []TableConfig{{
			Name:          "main",
			MaxPlayers:    game.MaxPlayers,
			Ante:          &ante,
			ActionTimeout: defaultActionTimeout,
			AutoStart:     true,
			BuyIn:         defaultBuyIn,
			Blinds:        defaultBlinds(),
		}},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields
// DefaultConfig.
func LoadConfig(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(src, filename)
}

// ParseConfig decodes HCL source and applies defaults for missing values.
func ParseConfig(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if config.Server.Address == "" {
		config.Server.Address = defaultAddress
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaultPort
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaultLogLevel
	}
	if config.Server.DataDir == "" {
		config.Server.DataDir = defaultDataDir
	}

	for i := range config.Tables {
		t := &config.Tables[i]
		if t.MaxPlayers == 0 {
			t.MaxPlayers = game.MaxPlayers
		}
		if t.Ante == nil {
			ante := defaultAnte
			t.Ante = &ante
		}
		if t.ActionTimeout == "" {
			t.ActionTimeout = defaultActionTimeout
		}
		if t.BuyIn == 0 {
			t.BuyIn = defaultBuyIn
		}
		if len(t.Blinds) == 0 {
			t.Blinds = defaultBlinds()
		}
	}

	return &config, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}

	names := make(map[string]bool, len(c.Tables))
	for _, t := range c.Tables {
		if names[t.Name] {
			return fmt.Errorf("table %s: defined more than once", t.Name)
		}
		names[t.Name] = true

		if t.MaxPlayers < 2 || t.MaxPlayers > game.MaxPlayers {
			return fmt.Errorf("table %s: max players must be between 2 and %d", t.Name, game.MaxPlayers)
		}
		if t.BuyIn <= 0 {
			return fmt.Errorf("table %s: buy-in must be positive", t.Name)
		}
		if _, err := t.Timeout(); err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
		if err := t.Rules().Validate(); err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
	}
	return nil
}

// ListenAddress returns the host:port the server listens on.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Table returns a table configuration by name.
func (c *Config) Table(name string) (TableConfig, bool) {
	for _, t := range c.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableConfig{}, false
}

// Rules converts the table configuration to round rules.
func (t TableConfig) Rules() game.Rules {
	rules := game.Rules{
		Limit:        t.Limit,
		RaiseMinimum: t.RaiseMinimum,
	}
	if t.Ante != nil {
		rules.Ante = *t.Ante
	}
	for _, b := range t.Blinds {
		rules.Blinds = append(rules.Blinds, game.Blind{Name: b.Name, Value: b.Value})
	}
	return rules
}

// Timeout parses the action timeout. Zero disables the turn clock.
func (t TableConfig) Timeout() (time.Duration, error) {
	if t.ActionTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(t.ActionTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid action timeout %q: %w", t.ActionTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("action timeout must not be negative")
	}
	return d, nil
}
