// Package config loads show-manager settings from ~/.show-manager/config.json
// with SHOW_MANAGER_* environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Digital-Shane/show-manager/internal/cache"
	"github.com/Digital-Shane/show-manager/internal/repository"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. SHOW_MANAGER_OMDB_API_KEY.
	EnvPrefix = "SHOW_MANAGER"

	appDir = ".show-manager"
)

// CacheConfig selects and sizes the response cache backend.
type CacheConfig struct {
	Provider      string `json:"provider" mapstructure:"provider"`
	Size          int    `json:"size" mapstructure:"size"`
	TTL           string `json:"ttl" mapstructure:"ttl"` // Go duration string like "30m"
	RedisAddress  string `json:"redis_address" mapstructure:"redis_address"`
	RedisPassword string `json:"redis_password" mapstructure:"redis_password"`
	RedisDB       int    `json:"redis_db" mapstructure:"redis_db"`
}

// Config holds every user setting
type Config struct {
	DatabasePath     string `json:"database_path" mapstructure:"database_path"`
	DestructiveReset bool   `json:"destructive_reset" mapstructure:"destructive_reset"`

	// Catalog integration settings
	Catalog        string `json:"catalog" mapstructure:"catalog"`
	OMDBAPIKey     string `json:"omdb_api_key" mapstructure:"omdb_api_key"`
	OMDBURL        string `json:"omdb_url" mapstructure:"omdb_url"`
	TMDBAPIKey     string `json:"tmdb_api_key" mapstructure:"tmdb_api_key"`
	TMDBLanguage   string `json:"tmdb_language" mapstructure:"tmdb_language"`
	RequestTimeout string `json:"request_timeout" mapstructure:"request_timeout"`

	Cache CacheConfig `json:"cache" mapstructure:"cache"`

	LogLevel         string `json:"log_level" mapstructure:"log_level"`
	LogFile          string `json:"log_file" mapstructure:"log_file"`
	EnableLogging    bool   `json:"enable_logging" mapstructure:"enable_logging"`
	LogRetentionDays int    `json:"log_retention_days" mapstructure:"log_retention_days"`

	MetricsAddress string `json:"metrics_address" mapstructure:"metrics_address"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	dir := DataDir()
	return &Config{
		DatabasePath:   filepath.Join(dir, "shows.db"),
		Catalog:        "omdb",
		TMDBLanguage:   "en-US",
		RequestTimeout: "10s",
		Cache: CacheConfig{
			Provider: "memory",
			Size:     512,
			TTL:      "30m",
		},
		LogLevel:         "info",
		LogFile:          filepath.Join(dir, "show-manager.log"),
		EnableLogging:    true,
		LogRetentionDays: 30,
	}
}

// DataDir returns ~/.show-manager, or a relative directory when the home
// directory is unknown.
func DataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return appDir
	}
	return filepath.Join(homeDir, appDir)
}

// ConfigPath returns the path to the config file
func ConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, appDir, "config.json"), nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return ConfigPath()
}

// newViper builds a viper instance seeded with defaults so every key can be
// overridden from the environment.
func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var defaults map[string]interface{}
	data, _ := json.Marshal(DefaultConfig())
	_ = json.Unmarshal(data, &defaults)
	setDefaults(v, "", defaults)
	return v
}

func setDefaults(v *viper.Viper, prefix string, values map[string]interface{}) {
	for key, value := range values {
		if nested, ok := value.(map[string]interface{}); ok {
			setDefaults(v, prefix+key+".", nested)
			continue
		}
		v.SetDefault(prefix+key, value)
	}
}

func readFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			// Defaults and environment only
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Load reads the configuration at path, or the default location when path
// is empty. Missing files yield the defaults.
func Load(path string) (*Config, error) {
	path, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	v := newViper(path)
	if err := readFile(v, path); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Keys lists every settable key in dotted form.
func Keys() []string {
	keys := newViper("").AllKeys()
	sort.Strings(keys)
	return keys
}

// Set updates one key in the file at path and saves it. Values are parsed
// into the key's type, so "30" sets an int and "true" a bool.
func Set(path, key, value string) (*Config, error) {
	path, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	key = strings.ToLower(strings.TrimSpace(key))
	v := newViper(path)
	if !isKnownKey(v, key) {
		return nil, fmt.Errorf("unknown config key %q", key)
	}
	if err := readFile(v, path); err != nil {
		return nil, err
	}

	v.Set(key, value)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isKnownKey(v *viper.Viper, key string) bool {
	for _, k := range v.AllKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// Validate reports settings that cannot be used.
func (cfg *Config) Validate() error {
	if _, err := cfg.Timeout(); err != nil {
		return err
	}
	if _, err := cfg.CacheTTL(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
	}
	if cfg.Cache.Size < 0 {
		return fmt.Errorf("cache.size must not be negative")
	}
	return nil
}

// Save writes the configuration to path, or the default location when path
// is empty.
func (cfg *Config) Save(path string) error {
	path, err := resolvePath(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Redacted returns a copy with secrets masked for display.
func (cfg *Config) Redacted() *Config {
	out := *cfg
	out.OMDBAPIKey = mask(out.OMDBAPIKey)
	out.TMDBAPIKey = mask(out.TMDBAPIKey)
	out.Cache.RedisPassword = mask(out.Cache.RedisPassword)
	return &out
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

// Timeout parses RequestTimeout. Empty means the catalog default.
func (cfg *Config) Timeout() (time.Duration, error) {
	return parseDuration("request_timeout", cfg.RequestTimeout)
}

// CacheTTL parses Cache.TTL. Empty means entries never expire.
func (cfg *Config) CacheTTL() (time.Duration, error) {
	return parseDuration("cache.ttl", cfg.Cache.TTL)
}

func parseDuration(key, value string) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

// CatalogSettings returns per-catalog settings for the catalogs that have
// credentials.
func (cfg *Config) CatalogSettings() map[string]map[string]interface{} {
	settings := make(map[string]map[string]interface{})
	timeout, _ := cfg.Timeout()

	if key := strings.TrimSpace(cfg.OMDBAPIKey); key != "" {
		omdb := map[string]interface{}{"api_key": key}
		if timeout > 0 {
			omdb["timeout_seconds"] = timeout.Seconds()
		}
		if url := strings.TrimSpace(cfg.OMDBURL); url != "" {
			omdb["base_url"] = url
		}
		settings["omdb"] = omdb
	}
	if key := strings.TrimSpace(cfg.TMDBAPIKey); key != "" {
		settings["tmdb"] = map[string]interface{}{
			"api_key":  key,
			"language": cfg.TMDBLanguage,
		}
	}
	return settings
}

// Repository maps the settings onto the repository configuration.
func (cfg *Config) Repository(logger *zerolog.Logger) (repository.Config, error) {
	if err := cfg.Validate(); err != nil {
		return repository.Config{}, err
	}
	timeout, _ := cfg.Timeout()
	ttl, _ := cfg.CacheTTL()

	return repository.Config{
		DatabasePath:     cfg.DatabasePath,
		DestructiveReset: cfg.DestructiveReset,
		Catalog:          cfg.Catalog,
		Catalogs:         cfg.CatalogSettings(),
		Timeout:          timeout,
		CacheProvider:    cfg.Cache.Provider,
		Cache: cache.ProviderConfig{
			Size:          cfg.Cache.Size,
			TTL:           ttl,
			Logger:        logger,
			RedisAddress:  cfg.Cache.RedisAddress,
			RedisPassword: cfg.Cache.RedisPassword,
			RedisDB:       cfg.Cache.RedisDB,
			Group:         "responses",
		},
		Logger: logger,
	}, nil
}
