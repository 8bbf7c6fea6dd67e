// Package config loads cricdash configuration from defaults, cricdash.yaml,
// CRICDASH_ environment variables and command-line flags.
package config

import (
	"time"

	"github.com/leapstack-labs/cricdash/pkg/core"
)

// Config holds all CLI configuration options.
type Config struct {
	AnalyticsDB  string         `koanf:"analytics_db"`
	SeedsDir     string         `koanf:"seeds_dir"`
	Verbose      bool           `koanf:"verbose"`
	OutputFormat string         `koanf:"output"`
	QueryTimeout time.Duration  `koanf:"query_timeout"`
	CRUD         CRUDConfig     `koanf:"crud"`
	Cricbuzz     CricbuzzConfig `koanf:"cricbuzz"`
	UI           UIConfig       `koanf:"ui"`

	// ConfigDir is the directory of the config file used, or the working
	// directory when there is none.
	ConfigDir string `koanf:"-"`
}

// CRUDConfig describes the relational CRUD target.
type CRUDConfig struct {
	Type            string            `koanf:"type"`
	Host            string            `koanf:"host"`
	Port            int               `koanf:"port"`
	User            string            `koanf:"user"`
	Password        string            `koanf:"password"`
	Options         map[string]string `koanf:"options"`
	DefaultDatabase string            `koanf:"default_database"`
	DefaultLimit    int               `koanf:"default_limit"`
	CacheSchema     bool              `koanf:"cache_schema"`
	CacheTTL        time.Duration     `koanf:"cache_ttl"`
}

// Credentials returns the connection credentials for the CRUD target.
func (c CRUDConfig) Credentials() core.Credentials {
	return core.Credentials{
		Type:     c.Type,
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Options:  c.Options,
	}
}

// CricbuzzConfig configures the Cricbuzz RapidAPI client.
type CricbuzzConfig struct {
	APIKey  string        `koanf:"api_key"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
}

// UIConfig holds configuration for the UI server.
type UIConfig struct {
	Host          string `koanf:"host"`
	Port          int    `koanf:"port"`
	AutoOpen      bool   `koanf:"auto_open"`
	Watch         bool   `koanf:"watch"`
	SessionSecret string `koanf:"session_secret"`
}

// Default configuration values.
const (
	DefaultAnalyticsDB  = "cricket_info.db"
	DefaultSeedsDir     = "seeds"
	DefaultOutput       = "table"
	DefaultQueryTimeout = 30 * time.Second
	DefaultCRUDType     = "mysql"
	DefaultCRUDDatabase = "cricbuzz"
	DefaultLimit        = 200
	DefaultCricbuzzHost = "cricbuzz-cricket.p.rapidapi.com"
	DefaultAPITimeout   = 10 * time.Second
	DefaultUIPort       = 8765
)

func defaults() map[string]any {
	return map[string]any{
		"analytics_db":          DefaultAnalyticsDB,
		"seeds_dir":             DefaultSeedsDir,
		"verbose":               false,
		"output":                DefaultOutput,
		"query_timeout":         DefaultQueryTimeout.String(),
		"crud.type":             DefaultCRUDType,
		"crud.host":             "localhost",
		"crud.port":             0,
		"crud.user":             "root",
		"crud.password":         "",
		"crud.default_database": DefaultCRUDDatabase,
		"crud.default_limit":    DefaultLimit,
		"crud.cache_schema":     true,
		"crud.cache_ttl":        "0s",
		"cricbuzz.api_key":      "",
		"cricbuzz.host":         DefaultCricbuzzHost,
		"cricbuzz.timeout":      DefaultAPITimeout.String(),
		"ui.host":               "localhost",
		"ui.port":               DefaultUIPort,
		"ui.auto_open":          false,
		"ui.watch":              true,
		"ui.session_secret":     "",
	}
}

// Default returns a configuration built from the default values alone.
func Default() *Config {
	c := &Config{
		AnalyticsDB:  DefaultAnalyticsDB,
		SeedsDir:     DefaultSeedsDir,
		OutputFormat: DefaultOutput,
		CRUD: CRUDConfig{
			Type:            DefaultCRUDType,
			Host:            "localhost",
			User:            "root",
			DefaultDatabase: DefaultCRUDDatabase,
			CacheSchema:     true,
		},
		UI: UIConfig{Host: "localhost", Watch: true},
	}
	c.ApplyDefaults()
	return c
}
