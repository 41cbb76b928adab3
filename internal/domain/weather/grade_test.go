package weather

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConditionForCodePartition(t *testing.T) {
	require.Equal(t, Sunny, ConditionForCode(0))
	require.Equal(t, Sunny, ConditionForCode(1))
	for _, code := range []int{2, 3, 45, 48} {
		require.Equal(t, Cloudy, ConditionForCode(code), code)
	}
	for _, code := range []int{-1, 4, 44, 46, 47, 49, 51, 61, 95, 99, 1000} {
		require.Equal(t, Rainy, ConditionForCode(code), code)
	}
}

func TestConditionForCodeTotal(t *testing.T) {
	for code := -50; code <= 200; code++ {
		c := ConditionForCode(code)
		require.Contains(t, []Condition{Sunny, Cloudy, Rainy}, c)
	}
}

func TestGradeThresholds(t *testing.T) {
	cases := []struct {
		name  string
		grade func(float64) Grade
		value float64
		level int
	}{
		{"pm10 good bound", GradePM10, 30, 0},
		{"pm10 moderate", GradePM10, 31, 1},
		{"pm10 moderate bound", GradePM10, 80, 1},
		{"pm10 unhealthy", GradePM10, 100, 2},
		{"pm10 very unhealthy", GradePM10, 151, 3},
		{"pm25 good bound", GradePM25, 15, 0},
		{"pm25 moderate", GradePM25, 35, 1},
		{"pm25 unhealthy", GradePM25, 40, 2},
		{"pm25 very unhealthy", GradePM25, 76, 3},
	}
	for _, tc := range cases {
		require.Equal(t, tc.level, tc.grade(tc.value).Level, tc.name)
	}
	require.Equal(t, "Very Unhealthy", GradePM10(500).Label)
}

func TestGradeMonotonic(t *testing.T) {
	for _, grade := range []func(float64) Grade{GradePM10, GradePM25} {
		prev := grade(0)
		for v := 0.0; v <= 300; v += 0.5 {
			cur := grade(v)
			require.GreaterOrEqual(t, cur.Level, prev.Level, v)
			prev = cur
		}
	}
}

func TestAssessAirQualityMediumMask(t *testing.T) {
	aq := AssessAirQuality(Dust{PM10: 100, PM25: 40})
	require.Equal(t, 2, aq.PM10Grade.Level)
	require.Equal(t, 2, aq.PM25Grade.Level)
	require.Equal(t, 2, aq.Severity)
	require.Equal(t, "A KF80 or higher mask is recommended.", MaskAdvisory(aq.Severity))
	require.Equal(t, AlertSoft, AlertFor(aq.Severity))
}

func TestAssessAirQualityRoundsBeforeGrading(t *testing.T) {
	aq := AssessAirQuality(Dust{PM10: 30.4, PM25: 15.6})
	require.Equal(t, 30.0, aq.PM10)
	require.Equal(t, 0, aq.PM10Grade.Level)
	require.Equal(t, 16.0, aq.PM25)
	require.Equal(t, 1, aq.PM25Grade.Level)
	require.Equal(t, 1, aq.Severity)
}

func TestMaskAdvisoryTiers(t *testing.T) {
	require.Equal(t, "No mask needed. The air quality is clean today.", MaskAdvisory(0))
	require.Equal(t, "A light KF-AD mask is recommended if you are sensitive.", MaskAdvisory(1))
	require.Equal(t, "A KF94 mask is strongly recommended; limit outdoor activities.", MaskAdvisory(3))
	require.Equal(t, AlertNone, AlertFor(1))
	require.Equal(t, AlertHigh, AlertFor(3))
}

func TestNarrate(t *testing.T) {
	reading := Reading{Condition: Sunny, TemperatureC: 22}
	aq := AssessAirQuality(Dust{PM10: 10, PM25: 5})
	require.Equal(t, "Today's weather is Sunny, and the temperature is 22 degrees. Fine dust level is Good. ", Narrate(reading, aq))

	aq = AssessAirQuality(Dust{PM10: 200, PM25: 90})
	require.Contains(t, Narrate(Reading{Condition: Rainy, TemperatureC: 8.5}, aq), "8.5 degrees")
	require.Contains(t, Narrate(Reading{Condition: Rainy}, aq), "Please wear a KF94 mask.")
}
