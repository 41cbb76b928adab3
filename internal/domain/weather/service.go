package weather

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/yanqian/moodfit/pkg/errors"
)

// Service detects the weather for a geolocation fix.
type Service interface {
	Detect(ctx context.Context, fix GeoFix) (Report, error)
}

type ForecastClient interface {
	Current(ctx context.Context, pos Position) (Current, error)
}

type AirQualityClient interface {
	Current(ctx context.Context, pos Position) (Dust, error)
}

// Cache stores complete reports per rounded position.
type Cache interface {
	Get(ctx context.Context, key string) (Report, bool, error)
	Save(ctx context.Context, key string, report Report, ttl time.Duration) error
}

// Config tunes detection.
type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

const detectionFailed = "Weather detection failed."

type service struct {
	cfg      Config
	forecast ForecastClient
	air      AirQualityClient
	cache    Cache
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the weather detection domain.
func NewService(cfg Config, forecast ForecastClient, air AirQualityClient, cache Cache, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg,
		forecast: forecast,
		air:      air,
		cache:    cache,
		logger:   logger.With("component", "weather.service"),
		now:      time.Now,
	}
}

func (s *service) Detect(ctx context.Context, fix GeoFix) (Report, error) {
	switch fix.Status {
	case GeoUnsupported, "":
		return Report{}, apperrors.Wrap(apperrors.CodeGeolocationUnsupported, "Geolocation not supported.", nil)
	case GeoDenied:
		return Report{}, apperrors.Wrap(apperrors.CodeGeolocationDenied, "Weather detection blocked.", nil)
	case GeoAvailable:
	default:
		return Report{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown geolocation status %q", fix.Status), nil)
	}
	pos := fix.Position
	if pos.Latitude < -90 || pos.Latitude > 90 || pos.Longitude < -180 || pos.Longitude > 180 {
		return Report{}, apperrors.Wrap(apperrors.CodeInvalidInput, "coordinates out of range", nil)
	}

	key := cacheKey(pos)
	if s.cache != nil && s.cfg.CacheTTL > 0 {
		if cached, ok, err := s.cache.Get(ctx, key); err != nil {
			s.logger.Warn("weather cache read failed", "key", key, "error", err)
		} else if ok {
			s.logger.Info("weather cache hit", "key", key)
			return cached, nil
		}
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	var (
		current Current
		dust    Dust
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.forecast.Current(gctx, pos)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeWeatherFetch, detectionFailed, err)
		}
		current = c
		return nil
	})
	g.Go(func() error {
		d, err := s.air.Current(gctx, pos)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeAirQualityFetch, detectionFailed, err)
		}
		dust = d
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("weather detection failed", "code", apperrors.CodeOf(err), "error", err)
		return Report{}, err
	}

	report := BuildReport(pos, current, dust, s.now())
	s.logger.Info("weather detected", "condition", report.Weather.Condition, "temperature", report.Weather.TemperatureC, "severity", report.AirQuality.Severity)

	if s.cache != nil && s.cfg.CacheTTL > 0 {
		if err := s.cache.Save(ctx, key, report, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("weather cache write failed", "key", key, "error", err)
		}
	}
	return report, nil
}

// BuildReport derives every report field from the two raw upstream payloads.
func BuildReport(pos Position, current Current, dust Dust, at time.Time) Report {
	reading := Reading{
		Code:         current.Code,
		Condition:    ConditionForCode(current.Code),
		TemperatureC: current.TemperatureC,
	}
	aq := AssessAirQuality(dust)
	return Report{
		Position:   pos,
		Weather:    reading,
		AirQuality: aq,
		Advisory:   MaskAdvisory(aq.Severity),
		Narration:  Narrate(reading, aq),
		Alert:      AlertFor(aq.Severity),
		FetchedAt:  at.UTC(),
	}
}

func cacheKey(pos Position) string {
	return fmt.Sprintf("%.2f,%.2f", pos.Latitude, pos.Longitude)
}
