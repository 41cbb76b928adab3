package inference

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/yanqian/moodfit/internal/domain/mood"
	apperrors "github.com/yanqian/moodfit/pkg/errors"
)

// Status is the lifecycle of the hosted model inside this process.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusStopped Status = "stopped"
)

// ModelState is what the presentation layer shows for the model.
type ModelState struct {
	Status  Status `json:"status"`
	Classes int    `json:"classes,omitempty"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Stage runs captured frames through the hosted model.
type Stage struct {
	cfg    Config
	loader Loader
	logger *slog.Logger

	mu    sync.RWMutex
	model Model
	state ModelState
}

// NewStage wires the inference stage. Load must be called before Infer succeeds.
func NewStage(cfg Config, loader Loader, logger *slog.Logger) *Stage {
	return &Stage{
		cfg:    cfg.withDefaults(),
		loader: loader,
		logger: logger.With("component", "inference.stage"),
		state:  ModelState{Status: StatusIdle, Message: "Model not loaded."},
	}
}

// Load fetches the model. A failure leaves the stage stopped; capture actions are refused
// until a later Load succeeds.
func (s *Stage) Load(ctx context.Context) error {
	s.setState(nil, ModelState{Status: StatusLoading, Message: "Loading model…"})
	if s.cfg.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.LoadTimeout)
		defer cancel()
	}

	model, err := s.loader.Load(ctx, s.cfg.BaseURL)
	if err != nil {
		s.setState(nil, ModelState{Status: StatusStopped, Message: "Stopped due to error.", Error: "Failed to load model: " + err.Error()})
		s.logger.Error("model load failed", "base_url", s.cfg.BaseURL, "error", err)
		return apperrors.Wrap(apperrors.CodeModelLoad, "Failed to load model", err)
	}

	classes := model.TotalClasses()
	s.setState(model, ModelState{Status: StatusReady, Classes: classes, Message: fmt.Sprintf("Model loaded (%d classes).", classes)})
	s.logger.Info("model loaded", "base_url", s.cfg.BaseURL, "classes", classes)
	return nil
}

func (s *Stage) setState(model Model, st ModelState) {
	s.mu.Lock()
	s.model = model
	s.state = st
	s.mu.Unlock()
}

// State reports the current model lifecycle.
func (s *Stage) State() ModelState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Ready reports whether frames can be scored.
func (s *Stage) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model != nil
}

// Infer normalizes the frame, scores it and derives the emotion from the top label.
func (s *Stage) Infer(ctx context.Context, frame image.Image) (Result, error) {
	s.mu.RLock()
	model := s.model
	s.mu.RUnlock()
	if model == nil {
		return Result{}, apperrors.Wrap(apperrors.CodeModelUnavailable, "Please load model first.", nil)
	}
	if frame == nil {
		return Result{}, apperrors.Wrap(apperrors.CodeInvalidInput, "no frame to classify", nil)
	}

	if s.cfg.InferTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.InferTimeout)
		defer cancel()
	}

	normalized := Normalize(frame, s.cfg.FrameSize)
	preds, err := model.Predict(ctx, normalized)
	if err != nil {
		s.logger.Warn("model prediction failed", "error", err)
		return Result{}, apperrors.Wrap(apperrors.CodeModelInference, "Error predicting image", err)
	}

	res := s.interpret(preds, model.TotalClasses())
	s.logger.Info("frame classified", "emotion", res.Emotion, "recognized", res.Recognized, "low_confidence", res.LowConfidence)
	return res, nil
}

func (s *Stage) interpret(preds []Prediction, total int) Result {
	res := Result{
		Predictions:  Rank(preds, s.cfg.TopK),
		TotalClasses: total,
	}
	best, ok := res.Best()
	if !ok {
		return res
	}
	if best.Probability < s.cfg.LowConfidence {
		res.LowConfidence = true
		res.Guidance = lowConfidenceGuidance
	}
	if e, ok := mood.FromLabel(best.Label); ok {
		res.Emotion = e
		res.Recognized = true
	}
	return res
}
