package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Binance  BinanceConfig  `yaml:"binance"`
	Cache    CacheConfig    `yaml:"cache"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	API      APIConfig      `yaml:"api"`
	Log      LogConfig      `yaml:"log"`
	UseMock  bool           `yaml:"use_mock"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"min=1,max=65535"`
	Mode string `yaml:"mode" validate:"oneof=debug release test"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"min=1,max=65535"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname" validate:"required"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"min=1,max=65535"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"min=0"`
}

type BinanceConfig struct {
	BaseURL            string   `yaml:"base_url" validate:"required,url"`
	WSURL              string   `yaml:"ws_url" validate:"required,url"`
	APIKey             string   `yaml:"api_key"`
	APISecret          string   `yaml:"api_secret"`
	RecvWindow         int64    `yaml:"recv_window" validate:"min=0,max=60000"`
	TimeoutSeconds     int      `yaml:"timeout_seconds" validate:"min=1"`
	Symbols            []string `yaml:"symbols"`
	PriceSymbols       []string `yaml:"price_symbols"`
	IncomeLookbackDays int      `yaml:"income_lookback_days" validate:"min=1,max=90"`
}

type CacheConfig struct {
	DurationMinutes int `yaml:"duration_minutes" validate:"min=1"`
}

type RefreshConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalMinutes int  `yaml:"interval_minutes" validate:"min=1"`
}

type APIConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds" validate:"min=1"`
}

type LogConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns the configuration used when a field is absent from both
// the YAML file and the environment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080, Mode: "debug"},
		Database: DatabaseConfig{
			Host: "localhost", Port: 5432, User: "postgres", DBName: "dashboard", SSLMode: "disable",
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Binance: BinanceConfig{
			BaseURL:            "https://fapi.binance.com",
			WSURL:              "wss://fstream.binance.com/ws",
			RecvWindow:         5000,
			TimeoutSeconds:     10,
			PriceSymbols:       []string{"BNBUSDT"},
			IncomeLookbackDays: 7,
		},
		Cache:   CacheConfig{DurationMinutes: 5},
		Refresh: RefreshConfig{Enabled: true, IntervalMinutes: 5},
		API:     APIConfig{TimeoutSeconds: 30},
		Log:     LogConfig{Dir: "logs"},
	}
}

// Load loads configuration from file and environment variables. A .env file
// in the working directory is read first if present. A missing YAML file
// leaves the defaults in place.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	// Override with environment variables if present
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and credentials needed by the live client
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !c.UseMock && (c.Binance.APIKey == "" || c.Binance.APISecret == "") {
		return fmt.Errorf("invalid config: binance api_key and api_secret are required unless use_mock is set")
	}
	return nil
}

func (c *Config) loadFromEnv() {
	// Server
	if v := os.Getenv("SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	setInt("SERVER_PORT", &c.Server.Port)
	if v := os.Getenv("SERVER_MODE"); v != "" {
		c.Server.Mode = v
	}

	// Database
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	setInt("DB_PORT", &c.Database.Port)
	if v := os.Getenv("DB_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.Database.DBName = v
	}

	// Redis
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	setInt("REDIS_PORT", &c.Redis.Port)
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}

	// Binance
	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		c.Binance.APIKey = v
	}
	if v := os.Getenv("BINANCE_API_SECRET"); v != "" {
		c.Binance.APISecret = v
	}
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		c.Binance.BaseURL = v
	}
	if v := os.Getenv("BINANCE_SYMBOLS"); v != "" {
		c.Binance.Symbols = splitList(v)
	}

	// Scheduling
	setInt("CACHE_DURATION_MINUTES", &c.Cache.DurationMinutes)
	setInt("REFRESH_INTERVAL_MINUTES", &c.Refresh.IntervalMinutes)
	setInt("API_TIMEOUT_SECONDS", &c.API.TimeoutSeconds)

	if v := os.Getenv("USE_MOCK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.UseMock = b
		}
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		c.Log.Dir = v
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToUpper(s))
		}
	}
	return out
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Addr returns the Redis host:port
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.DurationMinutes) * time.Minute
}

func (c *RefreshConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

func (c *APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c *BinanceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
