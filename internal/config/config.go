package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	apperrors "osintscan/pkg/errors"
	"osintscan/pkg/tools"
)

const EnvPrefix = "OSINTSCAN"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Scan     ScanConfig     `mapstructure:"scan"`
	Tools    ToolsConfig    `mapstructure:"tools"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

type ServerConfig struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "memory".
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// DSN renders the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type ScanConfig struct {
	MaxConcurrent int `mapstructure:"max_concurrent"`
	// LogDir enables per-scan log files when non-empty.
	LogDir string `mapstructure:"log_dir"`
}

type ToolsConfig struct {
	Timeout   time.Duration      `mapstructure:"timeout"`
	DNS       DNSConfig          `mapstructure:"dns"`
	Commands  []tools.ToolConfig `mapstructure:"commands"`
	UserAgent string             `mapstructure:"user_agent"`
}

type DNSConfig struct {
	Server      string        `mapstructure:"server"`
	Timeout     time.Duration `mapstructure:"timeout"`
	QPS         float64       `mapstructure:"qps"`
	Concurrency int           `mapstructure:"concurrency"`
	Prefixes    []string      `mapstructure:"prefixes"`
}

type NotifyConfig struct {
	DiscordToken     string `mapstructure:"discord_token"`
	DiscordChannelID string `mapstructure:"discord_channel_id"`
}

// ToolFactoryConfig maps the tools section onto the factory settings.
func (c *Config) ToolFactoryConfig() tools.Config {
	return tools.Config{
		Timeout:         c.Tools.Timeout,
		DNSServer:       c.Tools.DNS.Server,
		DNSTimeout:      c.Tools.DNS.Timeout,
		DNSQPS:          c.Tools.DNS.QPS,
		DNSConcurrency:  c.Tools.DNS.Concurrency,
		Prefixes:        c.Tools.DNS.Prefixes,
		Commands:        c.Tools.Commands,
		SocialUserAgent: c.Tools.UserAgent,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "osintscan")
	v.SetDefault("database.password", "osintscan")
	v.SetDefault("database.name", "osintscan")
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	v.SetDefault("scan.max_concurrent", 4)
	v.SetDefault("scan.log_dir", "")

	v.SetDefault("tools.timeout", tools.DefaultTimeout)
	v.SetDefault("tools.user_agent", "osintscan/1.0")
	v.SetDefault("tools.dns.server", "")
	v.SetDefault("tools.dns.timeout", 5*time.Second)
	v.SetDefault("tools.dns.qps", 50.0)
	v.SetDefault("tools.dns.concurrency", 10)
	v.SetDefault("tools.dns.prefixes", tools.DefaultPrefixes)

	v.SetDefault("notify.discord_token", "")
	v.SetDefault("notify.discord_channel_id", "")
}

// New returns a viper instance with defaults, env binding and, when path is
// set, that file. Without a path the standard locations are searched and a
// missing file is not an error.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("osintscan")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/osintscan")
		v.AddConfigPath("$HOME/.osintscan")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return v, nil
}

// Load reads the configuration and validates it.
func Load(path string) (*Config, *viper.Viper, error) {
	v, err := New(path)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := Decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// Decode unmarshals and validates v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks fields that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return apperrors.NewConfigError("database.driver", c.Database.Driver, "must be postgres or memory")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return apperrors.NewConfigError("server.port", c.Server.Port, "must be between 1 and 65535")
	}
	if c.Scan.MaxConcurrent < 1 {
		return apperrors.NewConfigError("scan.max_concurrent", c.Scan.MaxConcurrent, "must be at least 1")
	}
	if c.Tools.Timeout <= 0 {
		return apperrors.NewConfigError("tools.timeout", c.Tools.Timeout, "must be positive")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return apperrors.NewConfigError("log.format", c.Log.Format, "must be text or json")
	}
	return nil
}

// Watch re-decodes the config file on every change and hands the result to
// onChange. Invalid edits are reported through onError and otherwise ignored.
func Watch(v *viper.Viper, onChange func(*Config), onError func(error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Decode(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}
