package cli

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mcoot/racesync/internal/api"
	"github.com/mcoot/racesync/internal/factory"
	redisstorage "github.com/mcoot/racesync/internal/storage/redis"
	"github.com/mcoot/racesync/internal/transport/modsocket"
)

// DefaultServerURL is the racing server's websocket endpoint
const DefaultServerURL = "wss://isaacracing.net/ws"

// Config holds CLI configuration
type Config struct {
	ServerURL  string
	Cookie     string
	ModAddr    string
	StatusAddr string
	Storage    string
	RedisURL   string
	DevMode    bool
	Username   string
	Output     string
	LogFormat  string
	LogLevel   string
}

// DefaultConfig returns a Config with default values. A .env file in the
// working directory is loaded first; real environment variables win.
func DefaultConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not load .env", slog.String("error", err.Error()))
	}

	return &Config{
		ServerURL:  getEnvOrDefault("RACESYNC_SERVER", DefaultServerURL),
		Cookie:     os.Getenv("RACESYNC_COOKIE"),
		ModAddr:    getEnvOrDefault("RACESYNC_MOD_ADDR", modsocket.DefaultAddr),
		StatusAddr: getEnvOrDefault("RACESYNC_STATUS_ADDR", api.DefaultAddr),
		Storage:    getEnvOrDefault("RACESYNC_STORAGE", factory.StorageTypeMemory),
		RedisURL:   os.Getenv("REDIS_URL"),
		DevMode:    getEnvBool("RACESYNC_DEV"),
		Username:   os.Getenv("RACESYNC_USERNAME"),
		Output:     "text",
		LogFormat:  "json",
		LogLevel:   "info",
	}
}

// FactoryConfig translates the CLI settings for the application factory
func (c *Config) FactoryConfig(logger *slog.Logger) (factory.Config, error) {
	fc := factory.Config{
		Logger:      logger,
		StorageType: c.Storage,
		ServerURL:   c.ServerURL,
		Cookie:      c.Cookie,
		ModAddr:     c.ModAddr,
		StatusAddr:  c.StatusAddr,
		DevMode:     c.DevMode,
	}

	if c.Storage == factory.StorageTypeRedis {
		if c.RedisURL == "" {
			return fc, errors.New("REDIS_URL required when storage is redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		fc.RedisConfig = &redisCfg
	}

	return fc, nil
}

// StatusURL is the base URL of the status API
func (c *Config) StatusURL() string {
	if strings.HasPrefix(c.StatusAddr, "http://") || strings.HasPrefix(c.StatusAddr, "https://") {
		return c.StatusAddr
	}
	return "http://" + c.StatusAddr
}

// NewLogger builds the process logger on stderr
func (c *Config) NewLogger() *slog.Logger {
	level := slog.LevelInfo
	_ = level.UnmarshalText([]byte(c.LogLevel))

	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && b
}
