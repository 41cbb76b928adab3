package openmeteo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/yanqian/moodfit/internal/domain/weather"
)

const (
	defaultForecastURL   = "https://api.open-meteo.com/v1/forecast"
	defaultAirQualityURL = "https://air-quality-api.open-meteo.com/v1/air-quality"
)

// ForecastClient reads the current weather code and temperature.
type ForecastClient struct {
	baseURL    string
	httpClient *http.Client
}

// AirQualityClient reads the current PM10 and PM2.5 concentrations.
type AirQualityClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewForecastClient builds a forecast client. An empty baseURL uses the public endpoint.
func NewForecastClient(baseURL string, httpClient *http.Client) *ForecastClient {
	return &ForecastClient{baseURL: endpoint(baseURL, defaultForecastURL), httpClient: orDefault(httpClient)}
}

// NewAirQualityClient builds an air quality client. An empty baseURL uses the public endpoint.
func NewAirQualityClient(baseURL string, httpClient *http.Client) *AirQualityClient {
	return &AirQualityClient{baseURL: endpoint(baseURL, defaultAirQualityURL), httpClient: orDefault(httpClient)}
}

// Current fetches weather_code and temperature_2m.
func (c *ForecastClient) Current(ctx context.Context, pos weather.Position) (weather.Current, error) {
	var raw forecastResponse
	if err := getJSON(ctx, c.httpClient, buildURL(c.baseURL, pos, "weather_code,temperature_2m"), "weather", &raw); err != nil {
		return weather.Current{}, err
	}
	if raw.Current.WeatherCode == nil {
		return weather.Current{}, fmt.Errorf("decode weather response: missing weather_code")
	}
	code, err := raw.Current.WeatherCode.value()
	if err != nil {
		return weather.Current{}, fmt.Errorf("decode weather_code: %w", err)
	}
	temp, err := raw.Current.Temperature.value()
	if err != nil {
		return weather.Current{}, fmt.Errorf("decode temperature_2m: %w", err)
	}
	return weather.Current{Code: int(code), TemperatureC: temp}, nil
}

// Current fetches pm10 and pm2_5.
func (c *AirQualityClient) Current(ctx context.Context, pos weather.Position) (weather.Dust, error) {
	var raw airQualityResponse
	if err := getJSON(ctx, c.httpClient, buildURL(c.baseURL, pos, "pm10,pm2_5"), "air quality", &raw); err != nil {
		return weather.Dust{}, err
	}
	pm10, err := raw.Current.PM10.value()
	if err != nil {
		return weather.Dust{}, fmt.Errorf("decode pm10: %w", err)
	}
	pm25, err := raw.Current.PM25.value()
	if err != nil {
		return weather.Dust{}, fmt.Errorf("decode pm2_5: %w", err)
	}
	return weather.Dust{PM10: pm10, PM25: pm25}, nil
}

type forecastResponse struct {
	Current struct {
		WeatherCode *number `json:"weather_code"`
		Temperature *number `json:"temperature_2m"`
	} `json:"current"`
}

type airQualityResponse struct {
	Current struct {
		PM10 *number `json:"pm10"`
		PM25 *number `json:"pm2_5"`
	} `json:"current"`
}

// number accepts a scalar or a single element array; the air quality API returns either.
type number struct {
	v float64
}

func (n *number) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var values []float64
		if err := json.Unmarshal(trimmed, &values); err != nil {
			return err
		}
		if len(values) == 0 {
			return fmt.Errorf("empty array")
		}
		n.v = values[0]
		return nil
	}
	return json.Unmarshal(trimmed, &n.v)
}

func (n *number) value() (float64, error) {
	if n == nil {
		return 0, fmt.Errorf("missing value")
	}
	return n.v, nil
}

func getJSON(ctx context.Context, client *http.Client, endpoint, kind string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", kind, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("%s request error: status=%d body=%s", kind, resp.StatusCode, string(payload))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", kind, err)
	}
	return nil
}

func buildURL(base string, pos weather.Position, fields string) string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(pos.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(pos.Longitude, 'f', -1, 64))
	q.Set("current", fields)
	return base + "?" + q.Encode()
}

func endpoint(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return strings.TrimRight(trimmed, "/")
}

func orDefault(client *http.Client) *http.Client {
	if client == nil {
		return http.DefaultClient
	}
	return client
}

var (
	_ weather.ForecastClient   = (*ForecastClient)(nil)
	_ weather.AirQualityClient = (*AirQualityClient)(nil)
)
