package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds constellation configuration.
type Config struct {
	Render  RenderConfig  `toml:"render"`
	Courses CoursesConfig `toml:"courses"`
	Clips   ClipsConfig   `toml:"clips"`
	Server  ServerConfig  `toml:"server"`
	Mongo   MongoConfig   `toml:"mongo"`
	Redis   RedisConfig   `toml:"redis"`
}

// RenderConfig controls frame rendering defaults.
type RenderConfig struct {
	Width          float64 `toml:"width"`
	Height         float64 `toml:"height"`
	PixelRatio     float64 `toml:"pixel_ratio"`
	GhostOpacity   float64 `toml:"ghost_opacity"`
	HideUnrevealed bool    `toml:"hide_unrevealed"`
}

// CoursesConfig points at the local course script directory.
type CoursesConfig struct {
	Dir string `toml:"dir"`
}

// ClipsConfig configures the audio clip service client.
type ClipsConfig struct {
	BaseURL string `toml:"base_url"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// MongoConfig selects the MongoDB script source. An empty URI means
// course scripts are read from the local courses directory instead.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// RedisConfig selects the Redis cache backend. An empty Addr means the
// file cache is used instead.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	return &Config{
		Render: RenderConfig{
			Width:      800,
			Height:     600,
			PixelRatio: 1,
		},
		Courses: CoursesConfig{Dir: "courses"},
		Server:  ServerConfig{Addr: ":8480"},
		Mongo:   MongoConfig{Database: "constellation", Collection: "scripts"},
	}
}

// configDir returns the constellation config directory path.
func configDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

// loadConfig reads the config file at path, falling back to the default
// location and then to built-in defaults. A missing or unreadable file is
// not an error; the defaults simply apply.
func loadConfig(path string) *Config {
	cfg := defaultConfig()
	if path == "" {
		path = filepath.Join(configDir(), "config.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = toml.Unmarshal(data, cfg)
	return cfg
}

// configKey is the context key for storing the loaded config.
const configKey ctxKey = 1

// withConfig returns a new context with the config attached.
func withConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// configFromContext retrieves the config from ctx, falling back to defaults.
func configFromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
