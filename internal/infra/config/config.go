package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Model   ModelConfig   `yaml:"model"`
	Weather WeatherConfig `yaml:"weather"`
	Capture CaptureConfig `yaml:"capture"`
	Catalog CatalogConfig `yaml:"catalog"`
	Assets  AssetsConfig  `yaml:"assets"`
	Cache   CacheConfig   `yaml:"cache"`
}

// HTTPConfig controls server level behavior. A zero WriteTimeout keeps the event stream open.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	MaxUploadBytes int64           `yaml:"maxUploadBytes"`
	CORSOrigins    []string        `yaml:"corsOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// ModelConfig points at the hosted image classifier.
type ModelConfig struct {
	BaseURL       string        `yaml:"baseUrl"`
	PredictPath   string        `yaml:"predictPath"`
	TopK          int           `yaml:"topK"`
	LowConfidence float64       `yaml:"lowConfidence"`
	FrameSize     int           `yaml:"frameSize"`
	LoadTimeout   time.Duration `yaml:"loadTimeout"`
	InferTimeout  time.Duration `yaml:"inferTimeout"`
}

// WeatherConfig controls the weather and air quality lookups.
type WeatherConfig struct {
	ForecastURL      string        `yaml:"forecastUrl"`
	AirQualityURL    string        `yaml:"airQualityUrl"`
	Timeout          time.Duration `yaml:"timeout"`
	CacheTTL         time.Duration `yaml:"cacheTtl"`
	LateResultPolicy string        `yaml:"lateResultPolicy"`
	Retry            RetryConfig   `yaml:"retry"`
}

// RetryConfig configures retries for outbound idempotent requests.
type RetryConfig struct {
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
}

// CaptureConfig tunes the capture countdown and the accepted frame size.
type CaptureConfig struct {
	CountdownTicks int           `yaml:"countdownTicks"`
	TickInterval   time.Duration `yaml:"tickInterval"`
	MaxFrameSide   int           `yaml:"maxFrameSide"`
}

// CatalogConfig selects where recommendation records come from.
type CatalogConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// AssetsConfig decides how hero image references become URLs.
type AssetsConfig struct {
	BaseURL     string            `yaml:"baseUrl"`
	ObjectStore ObjectStoreConfig `yaml:"objectStore"`
}

// ObjectStoreConfig holds S3-compatible credentials for presigned hero URLs.
type ObjectStoreConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Endpoint   string        `yaml:"endpoint"`
	AccessKey  string        `yaml:"accessKey"`
	SecretKey  string        `yaml:"secretKey"`
	Bucket     string        `yaml:"bucket"`
	Region     string        `yaml:"region"`
	PresignTTL time.Duration `yaml:"presignTtl"`
}

// CacheConfig contains connection information for the weather cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_MAX_UPLOAD_BYTES"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.HTTP.MaxUploadBytes = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("MODEL_BASE_URL"); v != "" {
		cfg.Model.BaseURL = v
	}
	if v := os.Getenv("MODEL_PREDICT_PATH"); v != "" {
		cfg.Model.PredictPath = v
	}
	if v := os.Getenv("MODEL_TOP_K"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Model.TopK = parsed
		}
	}
	if v := os.Getenv("MODEL_LOW_CONFIDENCE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Model.LowConfidence = parsed
		}
	}
	if v := os.Getenv("WEATHER_FORECAST_URL"); v != "" {
		cfg.Weather.ForecastURL = v
	}
	if v := os.Getenv("WEATHER_AIR_QUALITY_URL"); v != "" {
		cfg.Weather.AirQualityURL = v
	}
	if v := os.Getenv("WEATHER_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Weather.Timeout = parsed
		}
	}
	if v := os.Getenv("WEATHER_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Weather.CacheTTL = parsed
		}
	}
	if v := os.Getenv("WEATHER_LATE_RESULT_POLICY"); v != "" {
		cfg.Weather.LateResultPolicy = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("WEATHER_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Weather.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("WEATHER_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Weather.Retry.BaseBackoff = parsed
		}
	}
	if v := os.Getenv("CAPTURE_COUNTDOWN_TICKS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Capture.CountdownTicks = parsed
		}
	}
	if v := os.Getenv("CAPTURE_MAX_FRAME_SIDE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Capture.MaxFrameSide = parsed
		}
	}
	if v := os.Getenv("CATALOG_POSTGRES_DSN"); v != "" {
		cfg.Catalog.Postgres.DSN = v
	}
	if v := os.Getenv("CATALOG_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Catalog.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("ASSETS_BASE_URL"); v != "" {
		cfg.Assets.BaseURL = v
	}
	if v := os.Getenv("ASSETS_OBJECT_STORE_ENABLED"); v != "" {
		cfg.Assets.ObjectStore.Enabled = parseBool(v)
	}
	if v := os.Getenv("ASSETS_OBJECT_STORE_ENDPOINT"); v != "" {
		cfg.Assets.ObjectStore.Endpoint = v
	}
	if v := os.Getenv("ASSETS_OBJECT_STORE_ACCESS_KEY"); v != "" {
		cfg.Assets.ObjectStore.AccessKey = v
	}
	if v := os.Getenv("ASSETS_OBJECT_STORE_SECRET_KEY"); v != "" {
		cfg.Assets.ObjectStore.SecretKey = v
	}
	if v := os.Getenv("ASSETS_OBJECT_STORE_BUCKET"); v != "" {
		cfg.Assets.ObjectStore.Bucket = v
	}
	if v := os.Getenv("ASSETS_OBJECT_STORE_REGION"); v != "" {
		cfg.Assets.ObjectStore.Region = v
	}
	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = parseBool(v)
	}
	if v := os.Getenv("CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":8080",
			ReadTimeout:    10 * time.Second,
			MaxUploadBytes: 8 << 20,
			CORSOrigins:    []string{"http://localhost:5173"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 600,
				Burst:             60,
			},
		},
		Model: ModelConfig{
			BaseURL:       "https://teachablemachine.withgoogle.com/models/4nP7aQpCm/",
			PredictPath:   "predict",
			TopK:          3,
			LowConfidence: 0.6,
			FrameSize:     224,
			LoadTimeout:   30 * time.Second,
			InferTimeout:  10 * time.Second,
		},
		Weather: WeatherConfig{
			ForecastURL:      "https://api.open-meteo.com/v1/forecast",
			AirQualityURL:    "https://air-quality-api.open-meteo.com/v1/air-quality",
			Timeout:          10 * time.Second,
			CacheTTL:         10 * time.Minute,
			LateResultPolicy: "ignore",
			Retry: RetryConfig{
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
			},
		},
		Capture: CaptureConfig{
			CountdownTicks: 3,
			TickInterval:   time.Second,
			MaxFrameSide:   4096,
		},
		Catalog: CatalogConfig{
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Assets: AssetsConfig{
			ObjectStore: ObjectStoreConfig{
				PresignTTL: 15 * time.Minute,
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		return errors.New("http.maxUploadBytes must be positive")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if strings.TrimSpace(c.Model.BaseURL) == "" {
		return errors.New("model.baseUrl cannot be empty")
	}
	if c.Model.TopK <= 0 {
		return errors.New("model.topK must be positive")
	}
	if c.Model.LowConfidence < 0 || c.Model.LowConfidence > 1 {
		return errors.New("model.lowConfidence must be between 0 and 1")
	}
	if c.Model.FrameSize <= 0 {
		return errors.New("model.frameSize must be positive")
	}
	if c.Weather.CacheTTL < 0 {
		return errors.New("weather.cacheTtl cannot be negative")
	}
	switch c.Weather.LateResultPolicy {
	case "ignore", "overwrite":
	default:
		return fmt.Errorf("weather.lateResultPolicy must be ignore or overwrite, got %q", c.Weather.LateResultPolicy)
	}
	if c.Weather.Retry.MaxAttempts < 0 {
		return errors.New("weather.retry.maxAttempts cannot be negative")
	}
	if c.Capture.CountdownTicks <= 0 {
		return errors.New("capture.countdownTicks must be positive")
	}
	if c.Capture.TickInterval <= 0 {
		return errors.New("capture.tickInterval must be positive")
	}
	if c.Capture.MaxFrameSide < c.Model.FrameSize {
		return fmt.Errorf("capture.maxFrameSide must be at least model.frameSize (%d)", c.Model.FrameSize)
	}
	if c.Assets.ObjectStore.Enabled {
		if strings.TrimSpace(c.Assets.ObjectStore.Endpoint) == "" {
			return errors.New("assets.objectStore.endpoint cannot be empty when enabled")
		}
		if strings.TrimSpace(c.Assets.ObjectStore.Bucket) == "" {
			return errors.New("assets.objectStore.bucket cannot be empty when enabled")
		}
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Addr) == "" {
		return errors.New("cache.addr cannot be empty when cache is enabled")
	}
	return nil
}
