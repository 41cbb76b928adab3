package weather

import (
	"math"
	"strconv"
)

// ConditionForCode partitions upstream weather codes into the three conditions.
func ConditionForCode(code int) Condition {
	switch code {
	case 0, 1:
		return Sunny
	case 2, 3, 45, 48:
		return Cloudy
	default:
		return Rainy
	}
}

var levelLabels = [...]string{"Good", "Moderate", "Unhealthy", "Very Unhealthy"}

// GradePM10 grades coarse dust with bounds 30/80/150.
func GradePM10(v float64) Grade {
	return gradeWith(v, 30, 80, 150)
}

// GradePM25 grades fine dust with bounds 15/35/75.
func GradePM25(v float64) Grade {
	return gradeWith(v, 15, 35, 75)
}

func gradeWith(v float64, bounds ...float64) Grade {
	for level, bound := range bounds {
		if v <= bound {
			return Grade{Label: levelLabels[level], Level: level}
		}
	}
	return Grade{Label: levelLabels[len(bounds)], Level: len(bounds)}
}

// Severity is the worse of the two grades.
func Severity(pm10, pm25 Grade) int {
	if pm10.Level > pm25.Level {
		return pm10.Level
	}
	return pm25.Level
}

// MaskAdvisory is the one line mask recommendation for a severity tier.
func MaskAdvisory(level int) string {
	switch {
	case level <= 0:
		return "No mask needed. The air quality is clean today."
	case level == 1:
		return "A light KF-AD mask is recommended if you are sensitive."
	case level == 2:
		return "A KF80 or higher mask is recommended."
	default:
		return "A KF94 mask is strongly recommended; limit outdoor activities."
	}
}

// AlertFor maps a severity to its audible cue tier.
func AlertFor(level int) Alert {
	switch {
	case level == 2:
		return AlertSoft
	case level >= 3:
		return AlertHigh
	default:
		return AlertNone
	}
}

// AssessAirQuality rounds the raw values and grades them.
func AssessAirQuality(d Dust) AirQuality {
	pm10 := math.Round(d.PM10)
	pm25 := math.Round(d.PM25)
	g10 := GradePM10(pm10)
	g25 := GradePM25(pm25)
	return AirQuality{
		PM10:      pm10,
		PM25:      pm25,
		PM10Grade: g10,
		PM25Grade: g25,
		Severity:  Severity(g10, g25),
	}
}

// Narrate builds the spoken summary for a reading.
func Narrate(r Reading, aq AirQuality) string {
	text := "Today's weather is " + string(r.Condition) + ", and the temperature is " +
		strconv.FormatFloat(r.TemperatureC, 'f', -1, 64) + " degrees. " +
		"Fine dust level is " + aq.PM25Grade.Label + ". "
	switch aq.Severity {
	case 2:
		text += "A KF80 mask is recommended."
	case 3:
		text += "The air quality is very unhealthy. Please wear a KF94 mask."
	}
	return text
}
