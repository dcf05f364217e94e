// ABOUTME: Runtime configuration for the collector and the research dashboard.
// ABOUTME: Viper-backed with env bindings, an optional config file, and XDG paths.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix = "STEPFORWARD"

	defaultLogLevel      = "info"
	defaultSyncInterval  = time.Hour
	defaultRemoteTimeout = 30 * time.Second
	defaultSensorSource  = "simulated"

	defaultHTTPAddress = "0.0.0.0:8090"
	defaultSessionTTL  = 12 * time.Hour
)

// SensorSimulated and SensorFile are the recognized sensor source kinds.
const (
	SensorSimulated = "simulated"
	SensorFile      = "file"
)

// AppConfig captures runtime configuration for the collector.
type AppConfig struct {
	RemoteURL     string
	RemoteAPIKey  string
	RemoteTimeout time.Duration
	DataDir       string
	LogLevel      string
	SyncInterval  time.Duration
	SensorSource  string
	SensorFile    string
}

// DashboardConfig captures runtime configuration for the dashboard server.
type DashboardConfig struct {
	HTTPAddress   string
	SessionSecret string
	SessionTTL    time.Duration
	RemoteURL     string
	RemoteAPIKey  string
	LogLevel      string
}

// NewViper returns a viper instance with defaults, env bindings, and the
// optional config file applied. A missing config file is not an error.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)

	configViper.SetConfigName("config")
	configViper.SetConfigType("yaml")
	configViper.AddConfigPath(ConfigDir())
	_ = configViper.ReadInConfig()

	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper
// instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("sync.interval", defaultSyncInterval)
	configViper.SetDefault("remote.timeout", defaultRemoteTimeout)
	configViper.SetDefault("sensor.source", defaultSensorSource)
	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("session.ttl", defaultSessionTTL)
}

// Load parses collector configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		RemoteURL:     configViper.GetString("remote.url"),
		RemoteAPIKey:  configViper.GetString("remote.api_key"),
		RemoteTimeout: configViper.GetDuration("remote.timeout"),
		DataDir:       configViper.GetString("data.dir"),
		LogLevel:      configViper.GetString("log.level"),
		SyncInterval:  configViper.GetDuration("sync.interval"),
		SensorSource:  configViper.GetString("sensor.source"),
		SensorFile:    configViper.GetString("sensor.file"),
	}

	if cfg.DataDir == "" {
		cfg.DataDir = DataDir()
	} else {
		cfg.DataDir = ExpandPath(cfg.DataDir)
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c AppConfig) validate() error {
	switch c.SensorSource {
	case SensorSimulated:
	case SensorFile:
		if strings.TrimSpace(c.SensorFile) == "" {
			return fmt.Errorf("sensor.file is required when sensor.source is %q", SensorFile)
		}
	default:
		return fmt.Errorf("unknown sensor.source: %q", c.SensorSource)
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("sync.interval must be positive")
	}
	return nil
}

// RequireRemote checks the settings that only matter once a command talks
// to the remote store. Cache-only commands work without them.
func (c AppConfig) RequireRemote() error {
	if strings.TrimSpace(c.RemoteURL) == "" {
		return fmt.Errorf("remote.url is required")
	}
	if strings.TrimSpace(c.RemoteAPIKey) == "" {
		return fmt.Errorf("remote.api_key is required")
	}
	return nil
}

// LoadDashboard parses dashboard configuration from viper.
func LoadDashboard(configViper *viper.Viper) (DashboardConfig, error) {
	cfg := DashboardConfig{
		HTTPAddress:   configViper.GetString("http.address"),
		SessionSecret: configViper.GetString("session.secret"),
		SessionTTL:    configViper.GetDuration("session.ttl"),
		RemoteURL:     configViper.GetString("remote.url"),
		RemoteAPIKey:  configViper.GetString("remote.api_key"),
		LogLevel:      configViper.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return DashboardConfig{}, err
	}
	return cfg, nil
}

func (c DashboardConfig) validate() error {
	if strings.TrimSpace(c.SessionSecret) == "" {
		return fmt.Errorf("session.secret is required")
	}
	if strings.TrimSpace(c.RemoteURL) == "" {
		return fmt.Errorf("remote.url is required")
	}
	if strings.TrimSpace(c.RemoteAPIKey) == "" {
		return fmt.Errorf("remote.api_key is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	return nil
}

// DataDir returns the default data directory, honoring XDG_DATA_HOME.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, _ := os.UserHomeDir()
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "stepforward")
}

// ConfigDir returns the config directory, honoring XDG_CONFIG_HOME.
func ConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, _ := os.UserHomeDir()
		configHome = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configHome, "stepforward")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
