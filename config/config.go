// Package config loads the CLI settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// Config holds the settings resolved once at startup.
type Config struct {
	// Store
	StoreBackend string
	SQLitePath   string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	// Logging
	LogLevel  string
	LogFormat string
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		StoreBackend: "sqlite",
		SQLitePath:   "library.db",
		RedisAddr:    "localhost:6379",
		RedisPrefix:  "library:",
		LogLevel:     "warn",
		LogFormat:    "text",
	}
}

// Load starts from Defaults, applies the INI file at path when path is not
// empty, then applies LIBRARY_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	f, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	store := f.Section("store")
	c.StoreBackend = store.Key("backend").MustString(c.StoreBackend)
	c.SQLitePath = store.Key("sqlite_path").MustString(c.SQLitePath)

	redis := f.Section("redis")
	c.RedisAddr = redis.Key("addr").MustString(c.RedisAddr)
	c.RedisPassword = redis.Key("password").MustString(c.RedisPassword)
	c.RedisDB = redis.Key("db").MustInt(c.RedisDB)
	c.RedisPrefix = redis.Key("prefix").MustString(c.RedisPrefix)

	log := f.Section("log")
	c.LogLevel = log.Key("level").MustString(c.LogLevel)
	c.LogFormat = log.Key("format").MustString(c.LogFormat)
	return nil
}

func (c *Config) applyEnv() {
	c.StoreBackend = getEnvString("LIBRARY_STORE", c.StoreBackend)
	c.SQLitePath = getEnvString("LIBRARY_SQLITE_PATH", c.SQLitePath)
	c.RedisAddr = getEnvString("LIBRARY_REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnvString("LIBRARY_REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvInt("LIBRARY_REDIS_DB", c.RedisDB)
	c.RedisPrefix = getEnvString("LIBRARY_REDIS_PREFIX", c.RedisPrefix)
	c.LogLevel = getEnvString("LIBRARY_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnvString("LIBRARY_LOG_FORMAT", c.LogFormat)
}

// Validate rejects unknown backend, level and format names.
func (c *Config) Validate() error {
	c.StoreBackend = strings.ToLower(c.StoreBackend)
	switch c.StoreBackend {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("unknown store backend %q (want memory, sqlite or redis)", c.StoreBackend)
	}
	if c.StoreBackend == "sqlite" && c.SQLitePath == "" {
		return fmt.Errorf("sqlite store needs a database path")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}
