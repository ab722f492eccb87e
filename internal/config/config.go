package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alan-mat/brave"
	"github.com/goccy/go-yaml"
	"github.com/redis/go-redis/v9"
)

var (
	ErrInvalidPort        = errors.New("invalid listen port")
	ErrInvalidConcurrency = errors.New("worker concurrency must be positive")
)

const (
	EnvApiHost   = "BRAVE_API_HOST"
	EnvRedisAddr = "BRAVE_REDIS_ADDR"
	EnvLogLevel  = "BRAVE_LOG_LEVEL"
)

type ClientConfig struct {
	ApiKey                string `yaml:"api_key"`
	ApiHost               string `yaml:"api_host"`
	MaxConcurrentRequests int    `yaml:"max_concurrent_requests"`
	RequestsPerSecond     int    `yaml:"requests_per_second"`
	TimeoutSeconds        int    `yaml:"timeout_seconds"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ServerConfig struct {
	ListenHost string `yaml:"listen_host"`
	ListenPort int    `yaml:"listen_port"`
}

type WorkerConfig struct {
	Concurrency int    `yaml:"concurrency"`
	MetricsAddr string `yaml:"metrics_addr"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

type Config struct {
	Client ClientConfig `yaml:"client"`
	Server ServerConfig `yaml:"server"`
	Worker WorkerConfig `yaml:"worker"`
	Redis  RedisConfig  `yaml:"redis"`
	Log    LogConfig    `yaml:"log"`
}

func Default() *Config {
	return &Config{
		Client: ClientConfig{
			ApiHost:               brave.DefaultApiHost,
			MaxConcurrentRequests: brave.DefaultMaxConcurrentRequests,
			RequestsPerSecond:     brave.DefaultRequestsPerSecond,
			TimeoutSeconds:        int(brave.DefaultTimeout / time.Second),
		},
		Server: ServerConfig{
			ListenPort: 8080,
		},
		Worker: WorkerConfig{
			Concurrency: 10,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
	}
}

// Read loads the YAML file at path over the defaults and applies environment
// overrides. An empty path only uses defaults and environment.
func Read(path string) (*Config, error) {
	conf := Default()

	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(file, conf); err != nil {
			return nil, fmt.Errorf("failed to parse config '%s': %w", path, err)
		}
	}

	conf.ApplyEnv()

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// ApplyEnv overrides file values with non-empty environment variables.
func (c *Config) ApplyEnv() {
	c.Client.ApiKey = envOrDefault(brave.ApiKeyEnv, c.Client.ApiKey)
	c.Client.ApiHost = envOrDefault(EnvApiHost, c.Client.ApiHost)
	c.Redis.Addr = envOrDefault(EnvRedisAddr, c.Redis.Addr)
	c.Log.Level = strings.ToLower(envOrDefault(EnvLogLevel, c.Log.Level))
}

func (c *Config) Validate() error {
	if c.Server.ListenPort < 0 || c.Server.ListenPort > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.ListenPort)
	}
	if c.Worker.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	return nil
}

// ClientOptions converts the client section to options for brave.New. Zero
// values are left to the client defaults.
func (c ClientConfig) ClientOptions() []brave.Option {
	var opts []brave.Option
	if c.ApiKey != "" {
		opts = append(opts, brave.WithApiKey(c.ApiKey))
	}
	if c.ApiHost != "" {
		opts = append(opts, brave.WithApiHost(c.ApiHost))
	}
	if c.MaxConcurrentRequests != 0 {
		opts = append(opts, brave.WithMaxConcurrentRequests(c.MaxConcurrentRequests))
	}
	if c.RequestsPerSecond != 0 {
		opts = append(opts, brave.WithRequestsPerSecond(c.RequestsPerSecond))
	}
	if c.TimeoutSeconds != 0 {
		opts = append(opts, brave.WithTimeout(time.Duration(c.TimeoutSeconds)*time.Second))
	}
	return opts
}

func (r RedisConfig) Options() *redis.Options {
	return &redis.Options{
		Addr:     r.Addr,
		Username: r.Username,
		Password: r.Password,
		DB:       r.DB,
	}
}

func (s ServerConfig) Addr() string {
	return s.ListenHost + ":" + strconv.Itoa(s.ListenPort)
}

func envOrDefault(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}
