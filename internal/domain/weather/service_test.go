package weather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/moodfit/pkg/errors"
)

var seoul = GeoFix{Status: GeoAvailable, Position: Position{Latitude: 37.5665, Longitude: 126.978}}

func TestDetectSuccess(t *testing.T) {
	forecast := &stubForecast{current: Current{Code: 1, TemperatureC: 22}}
	air := &stubAir{dust: Dust{PM10: 100, PM25: 40}}
	svc := newServiceUnderTest(forecast, air, nil, Config{})

	report, err := svc.Detect(context.Background(), seoul)
	require.NoError(t, err)
	require.Equal(t, Sunny, report.Weather.Condition)
	require.Equal(t, 22.0, report.Weather.TemperatureC)
	require.Equal(t, 2, report.AirQuality.Severity)
	require.Equal(t, "A KF80 or higher mask is recommended.", report.Advisory)
	require.Equal(t, AlertSoft, report.Alert)
	require.Equal(t, seoul.Position, forecast.lastPos)
	require.Equal(t, seoul.Position, air.lastPos)
}

func TestDetectWeatherFailureIsAllOrNothing(t *testing.T) {
	svc := newServiceUnderTest(&stubForecast{err: errors.New("Weather API error 503")}, &stubAir{dust: Dust{PM10: 10, PM25: 5}}, nil, Config{})

	report, err := svc.Detect(context.Background(), seoul)
	require.True(t, apperrors.IsCode(err, apperrors.CodeWeatherFetch))
	require.Equal(t, "Weather detection failed.", apperrors.MessageOf(err))
	require.Equal(t, Report{}, report)
}

func TestDetectAirQualityFailure(t *testing.T) {
	svc := newServiceUnderTest(&stubForecast{current: Current{Code: 0, TemperatureC: 10}}, &stubAir{err: errors.New("Invalid air quality values")}, nil, Config{})

	report, err := svc.Detect(context.Background(), seoul)
	require.True(t, apperrors.IsCode(err, apperrors.CodeAirQualityFetch))
	require.Equal(t, Report{}, report)
}

func TestDetectGeolocationOutcomes(t *testing.T) {
	forecast := &stubForecast{}
	svc := newServiceUnderTest(forecast, &stubAir{}, nil, Config{})

	_, err := svc.Detect(context.Background(), GeoFix{Status: GeoDenied})
	require.True(t, apperrors.IsCode(err, apperrors.CodeGeolocationDenied))
	require.Equal(t, "Weather detection blocked.", apperrors.MessageOf(err))

	_, err = svc.Detect(context.Background(), GeoFix{Status: GeoUnsupported})
	require.True(t, apperrors.IsCode(err, apperrors.CodeGeolocationUnsupported))

	_, err = svc.Detect(context.Background(), GeoFix{Status: GeoAvailable, Position: Position{Latitude: 120}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Zero(t, forecast.calls)
}

func TestDetectUsesCache(t *testing.T) {
	forecast := &stubForecast{current: Current{Code: 61, TemperatureC: 12}}
	cache := newMapCache()
	svc := newServiceUnderTest(forecast, &stubAir{dust: Dust{PM10: 5, PM25: 5}}, cache, Config{CacheTTL: time.Minute})

	first, err := svc.Detect(context.Background(), seoul)
	require.NoError(t, err)
	second, err := svc.Detect(context.Background(), seoul)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, Rainy, second.Weather.Condition)
	require.Equal(t, 1, forecast.calls)
	require.Contains(t, cache.items, "37.57,126.98")
}

func newServiceUnderTest(forecast ForecastClient, air AirQualityClient, cache Cache, cfg Config) *service {
	return &service{
		cfg:      cfg,
		forecast: forecast,
		air:      air,
		cache:    cache,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now: func() time.Time {
			return time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
		},
	}
}

type stubForecast struct {
	mu      sync.Mutex
	current Current
	err     error
	lastPos Position
	calls   int
}

func (s *stubForecast) Current(ctx context.Context, pos Position) (Current, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastPos = pos
	return s.current, s.err
}

type stubAir struct {
	dust    Dust
	err     error
	lastPos Position
}

func (s *stubAir) Current(ctx context.Context, pos Position) (Dust, error) {
	s.lastPos = pos
	return s.dust, s.err
}

type mapCache struct {
	mu    sync.Mutex
	items map[string]Report
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string]Report)}
}

func (c *mapCache) Get(_ context.Context, key string) (Report, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.items[key]
	return r, ok, nil
}

func (c *mapCache) Save(_ context.Context, key string, report Report, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = report
	return nil
}
