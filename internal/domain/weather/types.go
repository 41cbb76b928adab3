package weather

import (
	"strings"
	"time"
)

// Condition is the coarse weather class recommendations are keyed on.
type Condition string

const (
	Sunny  Condition = "Sunny"
	Cloudy Condition = "Cloudy"
	Rainy  Condition = "Rainy"
)

// ParseCondition accepts a condition name, ignoring case.
func ParseCondition(raw string) (Condition, bool) {
	clean := strings.TrimSpace(raw)
	for _, c := range []Condition{Sunny, Cloudy, Rainy} {
		if strings.EqualFold(string(c), clean) {
			return c, true
		}
	}
	return "", false
}

// Position is a device location in decimal degrees.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GeoStatus is the outcome of a one-shot geolocation request.
type GeoStatus string

const (
	GeoAvailable   GeoStatus = "available"
	GeoDenied      GeoStatus = "denied"
	GeoUnsupported GeoStatus = "unsupported"
)

// GeoFix is what the device reported for the single position request.
type GeoFix struct {
	Status   GeoStatus `json:"status"`
	Position Position  `json:"position"`
}

// Current is the raw weather code and temperature returned upstream.
type Current struct {
	Code         int
	TemperatureC float64
}

// Dust is the raw particulate matter returned upstream, in µg/m³.
type Dust struct {
	PM10 float64
	PM25 float64
}

// Grade is an ordinal dust level 0..3 with its label.
type Grade struct {
	Label string `json:"label"`
	Level int    `json:"level"`
}

// Reading is the derived weather condition.
type Reading struct {
	Code         int       `json:"code"`
	Condition    Condition `json:"condition"`
	TemperatureC float64   `json:"temperatureC"`
}

// AirQuality holds rounded dust values and their grades.
type AirQuality struct {
	PM10      float64 `json:"pm10"`
	PM25      float64 `json:"pm25"`
	PM10Grade Grade   `json:"pm10Grade"`
	PM25Grade Grade   `json:"pm25Grade"`
	Severity  int     `json:"severity"`
}

// Alert is the audible cue tier for a dust severity.
type Alert string

const (
	AlertNone Alert = "none"
	AlertSoft Alert = "soft"
	AlertHigh Alert = "alert"
)

// Report is a complete, all-or-nothing weather detection result.
type Report struct {
	Position   Position   `json:"position"`
	Weather    Reading    `json:"weather"`
	AirQuality AirQuality `json:"airQuality"`
	Advisory   string     `json:"advisory"`
	Narration  string     `json:"narration"`
	Alert      Alert      `json:"alert"`
	FetchedAt  time.Time  `json:"fetchedAt"`
}
