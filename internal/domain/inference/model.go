package inference

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/yanqian/moodfit/internal/domain/mood"
)

// Prediction is one (label, probability) pair produced by the classifier.
type Prediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Model scores a normalized square frame.
type Model interface {
	Predict(ctx context.Context, frame image.Image) ([]Prediction, error)
	TotalClasses() int
}

// Loader fetches a hosted model from its base URL.
type Loader interface {
	Load(ctx context.Context, baseURL string) (Model, error)
}

// Config controls frame normalization and result policies.
type Config struct {
	BaseURL       string
	TopK          int
	LowConfidence float64
	FrameSize     int
	LoadTimeout   time.Duration
	InferTimeout  time.Duration
}

const (
	defaultTopK          = 3
	defaultLowConfidence = 0.6
	defaultFrameSize     = 224

	lowConfidenceGuidance = "Low confidence. Improve lighting, reduce background noise, and retry."
)

func (c Config) withDefaults() Config {
	if c.TopK <= 0 {
		c.TopK = defaultTopK
	}
	if c.LowConfidence <= 0 {
		c.LowConfidence = defaultLowConfidence
	}
	if c.FrameSize <= 0 {
		c.FrameSize = defaultFrameSize
	}
	return c
}

// Result is an immutable ranked classification plus the derived emotion.
type Result struct {
	Predictions   []Prediction `json:"predictions"`
	TotalClasses  int          `json:"totalClasses"`
	Emotion       mood.Emotion `json:"emotion,omitempty"`
	Recognized    bool         `json:"recognized"`
	LowConfidence bool         `json:"lowConfidence"`
	Guidance      string       `json:"guidance,omitempty"`
}

// Best returns the top ranked prediction.
func (r Result) Best() (Prediction, bool) {
	if len(r.Predictions) == 0 {
		return Prediction{}, false
	}
	return r.Predictions[0], true
}

// Lines renders the ranked predictions as fixed width text rows.
func (r Result) Lines() []string {
	out := make([]string, 0, len(r.Predictions))
	for _, p := range r.Predictions {
		out = append(out, fmt.Sprintf("%-12s %.1f%%", p.Label, p.Probability*100))
	}
	return out
}

// Bar is a display row for the probability chart.
type Bar struct {
	Label   string `json:"label"`
	Percent int    `json:"percent"`
	Top     bool   `json:"top"`
}

// Bars maps the ranked predictions to chart rows, flagging the first one.
func (r Result) Bars() []Bar {
	out := make([]Bar, 0, len(r.Predictions))
	for i, p := range r.Predictions {
		label := mood.DisplayLabel(p.Label)
		if i == 0 {
			label = "🔥 " + label
		}
		out = append(out, Bar{
			Label:   label,
			Percent: int(p.Probability*100 + 0.5),
			Top:     i == 0,
		})
	}
	return out
}

func (r Result) String() string {
	return strings.Join(r.Lines(), "\n")
}
