package openmeteo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/moodfit/internal/domain/weather"
)

var seoul = weather.Position{Latitude: 37.57, Longitude: 126.98}

func TestForecastCurrent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "37.57", r.URL.Query().Get("latitude"))
		require.Equal(t, "126.98", r.URL.Query().Get("longitude"))
		require.Equal(t, "weather_code,temperature_2m", r.URL.Query().Get("current"))
		_, _ = w.Write([]byte(`{"current":{"time":"2024-05-01T09:00","weather_code":61,"temperature_2m":14.2}}`))
	}))
	defer server.Close()

	current, err := NewForecastClient(server.URL, server.Client()).Current(context.Background(), seoul)
	require.NoError(t, err)
	require.Equal(t, weather.Current{Code: 61, TemperatureC: 14.2}, current)
}

func TestForecastMissingCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":14.2}}`))
	}))
	defer server.Close()

	_, err := NewForecastClient(server.URL, server.Client()).Current(context.Background(), seoul)
	require.Error(t, err)
}

func TestAirQualityAcceptsScalarsAndArrays(t *testing.T) {
	cases := map[string]string{
		"scalar": `{"current":{"pm10":42.6,"pm2_5":18.1}}`,
		"array":  `{"current":{"pm10":[42.6],"pm2_5":[18.1]}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "pm10,pm2_5", r.URL.Query().Get("current"))
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			dust, err := NewAirQualityClient(server.URL, server.Client()).Current(context.Background(), seoul)
			require.NoError(t, err)
			require.Equal(t, weather.Dust{PM10: 42.6, PM25: 18.1}, dust)
		})
	}
}

func TestAirQualityUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewAirQualityClient(server.URL, server.Client()).Current(context.Background(), seoul)
	require.ErrorContains(t, err, "status=502")
}
