package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

// ProfileConfig controls the signed token that identifies a browser profile.
type ProfileConfig struct {
	Secret       string `mapstructure:"secret"`
	Issuer       string `mapstructure:"issuer"`
	TTLDays      int    `mapstructure:"ttl_days"`
	CookieName   string `mapstructure:"cookie_name"`
	CookieSecure bool   `mapstructure:"cookie_secure"`
}

type SecurityConfig struct {
	EncryptionKey string `mapstructure:"encryption_key"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

type BackupConfig struct {
	Dir string `mapstructure:"dir"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path"` // empty means the built-in catalog
}

type WebConfig struct {
	IndexFile string `mapstructure:"index_file"`
}

type AppSubConfig struct {
	PageSize     int `mapstructure:"page_size"`
	EarningsGoal int `mapstructure:"earnings_goal"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Profile  ProfileConfig  `mapstructure:"profile"`
	Security SecurityConfig `mapstructure:"security"`
	Log      LogConfig      `mapstructure:"log"`
	Backup   BackupConfig   `mapstructure:"backup"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Web      WebConfig      `mapstructure:"web"`
	App      AppSubConfig   `mapstructure:"app"`
}

var (
	appConfig *Config
	once      sync.Once
	loadErr   error
)

// setDefaults registers every key so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.path", "data/p4d.db")
	v.SetDefault("database.log_mode", false)
	v.SetDefault("profile.secret", "")
	v.SetDefault("profile.cookie_secure", false)
	v.SetDefault("security.encryption_key", "")
	v.SetDefault("log.file", "")
	v.SetDefault("catalog.path", "")
	v.SetDefault("profile.issuer", "p4d")
	v.SetDefault("profile.ttl_days", 365)
	v.SetDefault("profile.cookie_name", "p4d_profile")
	v.SetDefault("log.level", "info")
	v.SetDefault("backup.dir", "data/backups")
	v.SetDefault("web.index_file", "web/index.html")
	v.SetDefault("app.page_size", 20)
	v.SetDefault("app.earnings_goal", 50000)
}

// Read builds a Config from the given file without touching the process-wide copy.
// A missing file is not an error: defaults and P4D_* environment variables still apply.
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. P4D_SERVER_PORT=9000
	v.SetEnvPrefix("P4D")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Profile.Secret == "" {
		return nil, fmt.Errorf("profile.secret is required")
	}
	return &c, nil
}

// Load reads the configuration once per process. Later calls return the first result.
func Load(path string) (*Config, error) {
	once.Do(func() {
		appConfig, loadErr = Read(path)
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return appConfig, nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}
