package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ServerConfig holds the endpoints of the school platform API.
type ServerConfig struct {
	// BaseURL is the root URL of the REST API.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// SocketURL is the WebSocket endpoint for the notification feed.
	SocketURL string `mapstructure:"socket_url" yaml:"socket_url"`
}

// PortalConfig holds the signed-in identity settings.
type PortalConfig struct {
	// Role selects the student or teacher portal.
	Role string `mapstructure:"role" yaml:"role"`

	// UserID is the identifier used for unread computations.
	UserID string `mapstructure:"user_id" yaml:"user_id"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`

	// DesktopNotifications enables mirroring pushes to the OS
	// notification daemon when permission is granted.
	DesktopNotifications bool `mapstructure:"desktop_notifications" yaml:"desktop_notifications"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Portal  PortalConfig  `mapstructure:"portal" yaml:"portal"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`

	// CachePath is where the local notification cache database lives.
	CachePath string `mapstructure:"cache_path" yaml:"cache_path"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/school-dashboard/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "school-dashboard", "config.yaml")
}

// DefaultCachePath returns the default location of the local cache database.
func DefaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "cache.db")
	}
	return filepath.Join(home, ".config", "school-dashboard", "cache.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			BaseURL:   "http://localhost:5000/api",
			SocketURL: "ws://localhost:5000/ws",
		},
		Portal: PortalConfig{
			Role: string(RoleStudent),
		},
		Display: DisplayConfig{
			Theme:                "default",
			DesktopNotifications: true,
		},
		CachePath: DefaultCachePath(),
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("server.base_url", "http://localhost:5000/api")
	v.SetDefault("server.socket_url", "ws://localhost:5000/ws")
	v.SetDefault("portal.role", string(RoleStudent))
	v.SetDefault("display.theme", "default")
	v.SetDefault("display.desktop_notifications", true)
	v.SetDefault("cache_path", DefaultCachePath())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if !UserRole(cfg.Portal.Role).Valid() {
		cfg.Portal.Role = string(RoleStudent)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("portal", cfg.Portal)
	v.Set("display", cfg.Display)
	v.Set("cache_path", cfg.CachePath)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
