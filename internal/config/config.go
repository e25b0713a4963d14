package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultUserAgent is the default User-Agent string sent with all catalog requests.
const DefaultUserAgent = "ShowFinder/1.0 (+https://github.com/Belphemur/ShowFinder)"

// DefaultBaseURL is the TVMaze API root. Endpoint paths are appended to it verbatim.
const DefaultBaseURL = "https://api.tvmaze.com/"

// DefaultImageURL replaces the artwork of shows the catalog has no medium image for.
const DefaultImageURL = "https://tinyurl.com/tv-missing"

type Config struct {
	ProxyConnectionString string `mapstructure:"proxy_connection_string"`
	TVMazeBaseURL         string `mapstructure:"tvmaze_base_url"`
	DefaultImageURL       string `mapstructure:"default_image_url"`
	ClientTimeout         string `mapstructure:"client_timeout"` // Go duration string like "30s", "1h", etc.
	UserAgent             string `mapstructure:"user_agent"`
	Client                struct {
		MaxRetries int    `mapstructure:"max_retries"` // 0 disables retries
		RetryDelay string `mapstructure:"retry_delay"`
	} `mapstructure:"client"`
	Server struct {
		Port        int    `mapstructure:"port"`
		Address     string `mapstructure:"address"`
		MaxSessions int    `mapstructure:"max_sessions"`
		SessionTTL  string `mapstructure:"session_ttl"`
	} `mapstructure:"server"`
	LogLevel string `mapstructure:"log_level"`
	Log      struct {
		File       string `mapstructure:"file"`
		MaxSize    int    `mapstructure:"max_size"` // megabytes
		MaxBackups int    `mapstructure:"max_backups"`
		MaxAge     int    `mapstructure:"max_age"` // days
		Compress   bool   `mapstructure:"compress"`
	} `mapstructure:"log"`
	Cache struct {
		Provider string `mapstructure:"provider"` // "memory", "redis" or "none"
		Size     int    `mapstructure:"size"`     // Maximum number of entries in the LRU cache
		TTL      string `mapstructure:"ttl"`      // Go duration string like "1h", "24h", etc.
		Redis    struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"cache"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	Sentry struct {
		DSN         string `mapstructure:"dsn"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"sentry"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	// Initialize zerolog with console writer for human-readable output
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: false,
	}).With().Timestamp().Logger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	if config.Log.File != "" {
		logger = zerolog.New(newLogWriter(config)).With().Timestamp().Logger()
	}

	level := zerolog.InfoLevel
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Info().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
	logger.Info().Msg("Configuration loaded successfully")
}

// newLogWriter fans log output to the console and a rotating file.
func newLogWriter(cfg *Config) io.Writer {
	file := &lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}
	return zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: os.Stdout}, file)
}

func setDefaults() {
	viper.SetDefault("tvmaze_base_url", DefaultBaseURL)
	viper.SetDefault("default_image_url", DefaultImageURL)
	viper.SetDefault("client_timeout", "30s")
	viper.SetDefault("proxy_connection_string", "")
	viper.SetDefault("client.max_retries", 0)
	viper.SetDefault("client.retry_delay", "500ms")

	viper.SetDefault("server.address", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.max_sessions", 1000)
	viper.SetDefault("server.session_ttl", "30m")

	viper.SetDefault("log.max_size", 50)
	viper.SetDefault("log.max_backups", 3)
	viper.SetDefault("log.max_age", 28)

	viper.SetDefault("cache.provider", "none")
	viper.SetDefault("cache.size", 500)
	viper.SetDefault("cache.ttl", "10m")
	viper.SetDefault("cache.redis.address", "localhost:6379")

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.port", 9090)
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	// Environment variable support
	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = viper.BindEnv("log_level", "LOG_LEVEL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.TVMazeBaseURL == "" {
		config.TVMazeBaseURL = DefaultBaseURL
	}
	if config.DefaultImageURL == "" {
		config.DefaultImageURL = DefaultImageURL
	}

	return &config, nil
}

// ParseDuration parses a Go duration string, falling back to def when the value is
// empty or invalid. Invalid values are logged.
func ParseDuration(field, value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn().Err(err).Str("field", field).Str("value", value).Dur("default", def).Msg("Invalid duration, using default")
		return def
	}
	return d
}

func GetConfig() *Config {
	return globalConfig
}

func GetLogger() zerolog.Logger {
	return logger
}
