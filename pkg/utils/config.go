package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultAniListEndpoint = "https://graphql.anilist.co"

type Config struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration

	Log     LogConfig
	AniList AniListConfig
	Cache   CacheConfig
	Tracing TracingConfig
}

type LogConfig struct {
	Level  string
	Format string // "text" or "json"
}

type AniListConfig struct {
	Endpoint string
	Timeout  time.Duration
}

type CacheConfig struct {
	TTL         time.Duration
	CheckPeriod time.Duration
	MaxEntries  int // 0 = unbounded
}

type TracingConfig struct {
	Exporter     string // "none", "stdout" or "otlp"
	OTLPEndpoint string
}

// SetDefaults registers every configuration key with its default value.
// Keys map 1:1 to upper-cased environment variables (cache.ttl -> CACHE_TTL).
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("shutdown_timeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("anilist.endpoint", DefaultAniListEndpoint)
	v.SetDefault("anilist.timeout", "30s")

	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.check_period", "10m")
	v.SetDefault("cache.max_entries", 0)

	v.SetDefault("tracing.exporter", "none")
	v.SetDefault("tracing.otlp_endpoint", "localhost:4317")
}

// NewViper returns a viper instance with defaults and environment binding.
// A .env file in the working directory is loaded first when present.
func NewViper() *viper.Viper {
	// missing .env is the normal case outside local dev
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// tracing.otlp_endpoint reads OTLP_ENDPOINT, not TRACING_OTLP_ENDPOINT
	_ = v.BindEnv("tracing.otlp_endpoint", "OTLP_ENDPOINT")
	return v
}

// LoadConfig reads the resolved settings out of v.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:            strings.TrimSpace(v.GetString("port")),
		GinMode:         v.GetString("gin_mode"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
		AniList: AniListConfig{
			Endpoint: v.GetString("anilist.endpoint"),
			Timeout:  v.GetDuration("anilist.timeout"),
		},
		Cache: CacheConfig{
			TTL:         v.GetDuration("cache.ttl"),
			CheckPeriod: v.GetDuration("cache.check_period"),
			MaxEntries:  v.GetInt("cache.max_entries"),
		},
		Tracing: TracingConfig{
			Exporter:     strings.ToLower(v.GetString("tracing.exporter")),
			OTLPEndpoint: v.GetString("tracing.otlp_endpoint"),
		},
	}

	if cfg.Port == "" {
		cfg.Port = "3000"
	}
	if cfg.Cache.TTL <= 0 {
		return Config{}, fmt.Errorf("cache ttl must be positive, got %s", cfg.Cache.TTL)
	}
	if cfg.Cache.MaxEntries < 0 {
		return Config{}, fmt.Errorf("cache max entries must be >= 0, got %d", cfg.Cache.MaxEntries)
	}
	switch cfg.Tracing.Exporter {
	case "", "none", "stdout", "otlp":
	default:
		return Config{}, fmt.Errorf("unknown tracing exporter %q", cfg.Tracing.Exporter)
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}
