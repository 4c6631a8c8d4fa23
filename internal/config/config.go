// Package config loads farmdesk settings from defaults, an optional YAML
// file, FARMDESK_ environment variables and command-line flags, in that order
// of precedence (flags win).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment overrides. FARMDESK_API_BASE_URL
// maps to api.base_url.
const EnvPrefix = "FARMDESK_"

// Defaults.
const (
	DefaultBaseURL   = "http://localhost:3000"
	DefaultTimeout   = 10 * time.Second
	DefaultAddr      = ":8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

// ErrInvalid reports a configuration that failed validation.
var ErrInvalid = errors.New("config: invalid")

// Config is the resolved configuration.
type Config struct {
	API    APIConfig    `koanf:"api"`
	Server ServerConfig `koanf:"server"`
	Pages  PagesConfig  `koanf:"pages"`
	UI     UIConfig     `koanf:"ui"`
	Log    LogConfig    `koanf:"log"`
}

// APIConfig addresses the REST API.
type APIConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// ServerConfig configures the HTML host.
type ServerConfig struct {
	Addr          string `koanf:"addr"`
	SessionSecret string `koanf:"session_secret"`
}

// PagesConfig selects page definitions. An empty Dir uses the embedded set.
type PagesConfig struct {
	Dir   string `koanf:"dir"`
	Watch bool   `koanf:"watch"`
}

// UIConfig selects the renderer theme.
type UIConfig struct {
	Theme   string `koanf:"theme"`
	Variant string `koanf:"variant"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaults() map[string]any {
	return map[string]any{
		"api.base_url":          DefaultBaseURL,
		"api.timeout":           DefaultTimeout.String(),
		"server.addr":           DefaultAddr,
		"server.session_secret": "",
		"pages.dir":             "",
		"pages.watch":           false,
		"ui.theme":              "",
		"ui.variant":            "",
		"log.level":             DefaultLogLevel,
		"log.format":            DefaultLogFormat,
	}
}

// Default returns the configuration without any file, env or flag layer.
func Default() Config {
	return Config{
		API:    APIConfig{BaseURL: DefaultBaseURL, Timeout: DefaultTimeout},
		Server: ServerConfig{Addr: DefaultAddr},
		Log:    LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// Load resolves the configuration. path may be empty; flags may be nil. Only
// flags the user changed override lower layers. Flag names use dashes for
// underscores and dots for nesting, e.g. --api.base-url.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("config: load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("config: load env: %w", err)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, fmt.Errorf("config: load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKey maps FARMDESK_SERVER_SESSION_SECRET to server.session_secret: the
// first underscore separates the section, the rest belong to the key.
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	section, rest, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	return section + "." + rest
}

// Validate checks the resolved values.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.API.BaseURL) == "" {
		problems = append(problems, "api.base_url is required")
	}
	if c.API.Timeout < 0 {
		problems = append(problems, "api.timeout must not be negative")
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		problems = append(problems, "server.addr is required")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q must be json or console", c.Log.Format))
	}
	if c.Pages.Watch && c.Pages.Dir == "" {
		problems = append(problems, "pages.watch needs pages.dir")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
