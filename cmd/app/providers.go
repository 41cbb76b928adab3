package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/moodfit/internal/domain/capture"
	"github.com/yanqian/moodfit/internal/domain/inference"
	"github.com/yanqian/moodfit/internal/domain/recommendation"
	"github.com/yanqian/moodfit/internal/domain/weather"
	"github.com/yanqian/moodfit/internal/domain/wizard"
	"github.com/yanqian/moodfit/internal/infra/assets"
	"github.com/yanqian/moodfit/internal/infra/catalogrepo"
	"github.com/yanqian/moodfit/internal/infra/classifier"
	"github.com/yanqian/moodfit/internal/infra/config"
	"github.com/yanqian/moodfit/internal/infra/httpx"
	"github.com/yanqian/moodfit/internal/infra/openmeteo"
	"github.com/yanqian/moodfit/internal/infra/weathercache"
)

func provideOutboundClient(cfg *config.Config, logger *slog.Logger) *http.Client {
	timeout := cfg.Weather.Timeout
	if cfg.Model.LoadTimeout > timeout {
		timeout = cfg.Model.LoadTimeout
	}
	return httpx.NewClient(timeout, httpx.RetryConfig{
		MaxAttempts: cfg.Weather.Retry.MaxAttempts,
		BaseBackoff: cfg.Weather.Retry.BaseBackoff,
	}, logger)
}

func provideInferenceConfig(cfg *config.Config) inference.Config {
	return inference.Config{
		BaseURL:       cfg.Model.BaseURL,
		TopK:          cfg.Model.TopK,
		LowConfidence: cfg.Model.LowConfidence,
		FrameSize:     cfg.Model.FrameSize,
		LoadTimeout:   cfg.Model.LoadTimeout,
		InferTimeout:  cfg.Model.InferTimeout,
	}
}

func provideClassifier(cfg *config.Config, client *http.Client) *classifier.Client {
	return classifier.NewClient(cfg.Model.PredictPath, client)
}

func provideCaptureManager(cfg *config.Config, logger *slog.Logger) *capture.Manager {
	return capture.NewManager(capture.Config{
		CountdownTicks: cfg.Capture.CountdownTicks,
		TickInterval:   cfg.Capture.TickInterval,
		MaxSide:        cfg.Capture.MaxFrameSide,
	}, capture.NewFeedDevice(), logger)
}

func provideWeatherConfig(cfg *config.Config) weather.Config {
	return weather.Config{
		Timeout:  cfg.Weather.Timeout,
		CacheTTL: cfg.Weather.CacheTTL,
	}
}

func provideForecastClient(cfg *config.Config, client *http.Client) weather.ForecastClient {
	return openmeteo.NewForecastClient(cfg.Weather.ForecastURL, client)
}

func provideAirQualityClient(cfg *config.Config, client *http.Client) weather.AirQualityClient {
	return openmeteo.NewAirQualityClient(cfg.Weather.AirQualityURL, client)
}

func provideWeatherCache(cfg *config.Config, logger *slog.Logger) weather.Cache {
	if cfg.Cache.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return weathercache.NewMemoryCache()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return weathercache.NewMemoryCache()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
			client.Close()
		} else {
			logger.Info("weather valkey cache enabled", "addr", cfg.Cache.Addr)
			return weathercache.NewValkeyCache(client, "moodfit:weather")
		}
	}
	return weathercache.NewMemoryCache()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.Cache.Addr, "://") {
		return valkey.ParseURL(cfg.Cache.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{cfg.Cache.Addr}}, nil
}

func provideCatalog(cfg *config.Config, logger *slog.Logger) recommendation.Catalog {
	fallback := recommendation.NewStaticCatalog(nil)
	dsn := strings.TrimSpace(cfg.Catalog.Postgres.DSN)
	if dsn == "" {
		logger.Info("catalog postgres dsn not set, using embedded table")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using embedded table", "error", err)
		return fallback
	}
	if cfg.Catalog.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Catalog.Postgres.MaxConns
	}
	if cfg.Catalog.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Catalog.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using embedded table", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using embedded table", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("catalog postgres repository enabled")
	return catalogrepo.NewPostgresRepository(pool)
}

// provideResolver loads the table once; an empty or failing catalog falls back to the embedded one.
func provideResolver(catalog recommendation.Catalog, logger *slog.Logger) *recommendation.Resolver {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resolver, err := recommendation.LoadResolver(ctx, catalog)
	if err != nil || resolver.Len() == 0 {
		logger.Error("catalog load failed, using embedded table", "error", err)
		return recommendation.NewResolver(recommendation.DefaultRecords())
	}
	logger.Info("recommendation catalog loaded", "records", resolver.Len())
	return resolver
}

func provideAssetLinker(cfg *config.Config, logger *slog.Logger) wizard.AssetLinker {
	static := assets.NewStaticLinker(cfg.Assets.BaseURL)
	store := cfg.Assets.ObjectStore
	if !store.Enabled {
		return static
	}
	linker, err := assets.NewObjectStoreLinker(assets.ObjectStoreConfig{
		Endpoint:   store.Endpoint,
		AccessKey:  store.AccessKey,
		SecretKey:  store.SecretKey,
		Bucket:     store.Bucket,
		Region:     store.Region,
		PresignTTL: store.PresignTTL,
	}, logger)
	if err != nil {
		logger.Error("object store unavailable, using static asset links", "error", err)
		return static
	}
	logger.Info("hero images served from object store", "bucket", store.Bucket)
	return linker
}

func provideBroadcaster() *wizard.Broadcaster {
	return wizard.NewBroadcaster(32)
}

func provideWizardConfig(cfg *config.Config) wizard.Config {
	return wizard.Config{
		LatePolicy:    wizard.LatePolicy(cfg.Weather.LateResultPolicy),
		DetectTimeout: cfg.Weather.Timeout,
	}
}
