package wizard

import (
	"github.com/yanqian/moodfit/internal/domain/inference"
	"github.com/yanqian/moodfit/internal/domain/mood"
	"github.com/yanqian/moodfit/internal/domain/recommendation"
	"github.com/yanqian/moodfit/internal/domain/weather"
)

// Step is a wizard screen. Steps only move forward, except for Restart.
type Step string

const (
	StepPredict Step = "predict"
	StepWeather Step = "weather"
	StepGender  Step = "gender"
	StepFinal   Step = "final"
)

// Banner is the ok/error pair; only one is visible at a time.
type Banner struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

const (
	BannerOK    = "ok"
	BannerError = "error"
)

// Session is the single mutable wizard record. Only Machine.Apply produces new values.
type Session struct {
	Step    Step                  `json:"step"`
	Emotion mood.Emotion          `json:"emotion,omitempty"`
	Style   mood.Style            `json:"style,omitempty"`
	Weather weather.Condition     `json:"weather,omitempty"`
	Gender  recommendation.Gender `json:"gender,omitempty"`

	Inference      *inference.Result    `json:"inference,omitempty"`
	Guidance       string               `json:"guidance,omitempty"`
	WeatherReport  *weather.Report      `json:"weatherReport,omitempty"`
	WeatherNotice  string               `json:"weatherNotice,omitempty"`
	Recommendation *recommendation.View `json:"recommendation,omitempty"`
	Notice         string               `json:"notice,omitempty"`
	Banner         Banner               `json:"banner"`

	// WeatherEpoch identifies the current Weather step visit; detections carry it back.
	WeatherEpoch uint64 `json:"-"`
}

// NewSession is the initial state.
func NewSession() Session {
	return Session{Step: StepPredict}
}

// CanAdvance reports whether the Predict to Weather guard holds.
func (s Session) CanAdvance() bool {
	return s.Step == StepPredict && s.Style != ""
}
