package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/leapstack-labs/cricdash/pkg/adapter"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of configuration environment variables.
// A double underscore separates nesting levels: CRICDASH_CRUD__HOST.
const EnvPrefix = "CRICDASH_"

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

var configNames = []string{"cricdash.yaml", "cricdash.yml"}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// findConfigFile returns explicit if set, otherwise the nearest
// cricdash.yaml or cricdash.yml in startDir or its parents.
func findConfigFile(explicit, startDir string) string {
	if explicit != "" {
		return explicit
	}
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		for _, name := range configNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty, absolute or ":memory:".
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	cwd, err := os.Getwd()
	if err != nil || cwd == "" {
		cwd = "."
	}

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	configFileUsed = findConfigFile(cfgFile, cwd)
	baseDir := cwd
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
		if abs, err := filepath.Abs(configFileUsed); err == nil {
			baseDir = filepath.Dir(abs)
		}
	}

	// 3. Environment: CRICDASH_CRUD__HOST -> crud.host
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were explicitly set
	var flagAnalyticsDB string
	if flags != nil {
		if f := flags.Lookup("analytics-db"); f != nil && f.Changed {
			flagAnalyticsDB = f.Value.String()
		}
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if key == "crud_type" {
				key = "crud.type"
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Decode
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Paths from flags are relative to the working directory; others
	// to the config file.
	cfg.ConfigDir = baseDir
	if flagAnalyticsDB != "" {
		cfg.AnalyticsDB = resolvePathRelativeTo(flagAnalyticsDB, cwd)
	} else {
		cfg.AnalyticsDB = resolvePathRelativeTo(expandEnvVars(cfg.AnalyticsDB), baseDir)
	}
	cfg.SeedsDir = resolvePathRelativeTo(expandEnvVars(cfg.SeedsDir), baseDir)

	expandSecrets(&cfg)
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	currentConfig = &cfg
	return &cfg, nil
}

// ApplyDefaults fills values that depend on other settings: the CRUD
// port defaults to the adapter's standard port, and a missing API key
// falls back to RAPIDAPI_KEY.
func (c *Config) ApplyDefaults() {
	c.CRUD.Type = strings.ToLower(strings.TrimSpace(c.CRUD.Type))
	if c.CRUD.Port == 0 {
		if a, err := adapter.NewAdapter(c.CRUD.Type, nil); err == nil {
			c.CRUD.Port = a.Dialect().DefaultPort
		}
	}
	if c.CRUD.DefaultLimit <= 0 {
		c.CRUD.DefaultLimit = DefaultLimit
	}
	if c.Cricbuzz.APIKey == "" {
		c.Cricbuzz.APIKey = os.Getenv("RAPIDAPI_KEY")
	}
	if c.Cricbuzz.Host == "" {
		c.Cricbuzz.Host = DefaultCricbuzzHost
	}
	if c.Cricbuzz.Timeout <= 0 {
		c.Cricbuzz.Timeout = DefaultAPITimeout
	}
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = DefaultQueryTimeout
	}
	if c.UI.Port == 0 {
		c.UI.Port = DefaultUIPort
	}
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the configuration loaded by the last LoadConfig.
func GetCurrentConfig() *Config {
	return currentConfig
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}

// expandSecrets expands ${VAR} in credentials and keys. Unresolved
// references are cleared so they are never sent to a server.
func expandSecrets(c *Config) {
	clean := func(s string) string {
		s = expandEnvVars(s)
		if envPattern.MatchString(s) {
			return envPattern.ReplaceAllString(s, "")
		}
		return s
	}
	c.CRUD.Host = clean(c.CRUD.Host)
	c.CRUD.User = clean(c.CRUD.User)
	c.CRUD.Password = clean(c.CRUD.Password)
	c.CRUD.DefaultDatabase = clean(c.CRUD.DefaultDatabase)
	c.Cricbuzz.APIKey = clean(c.Cricbuzz.APIKey)
	c.UI.SessionSecret = clean(c.UI.SessionSecret)
}
