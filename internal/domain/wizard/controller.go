package wizard

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/yanqian/moodfit/internal/domain/capture"
	"github.com/yanqian/moodfit/internal/domain/inference"
	"github.com/yanqian/moodfit/internal/domain/mood"
	"github.com/yanqian/moodfit/internal/domain/recommendation"
	"github.com/yanqian/moodfit/internal/domain/weather"
	apperrors "github.com/yanqian/moodfit/pkg/errors"
	"github.com/yanqian/moodfit/pkg/util"
)

// Service is the wizard surface used by the transport layer.
type Service interface {
	Snapshot() Snapshot
	PickEmotion(ctx context.Context, emotion mood.Emotion) (Snapshot, error)
	SubmitFile(ctx context.Context, contentType string, data []byte) (Snapshot, error)
	StartCamera(ctx context.Context, permission capture.Permission) (Snapshot, error)
	StopCamera(ctx context.Context) Snapshot
	PushFrame(ctx context.Context, frame image.Image) error
	Capture(ctx context.Context) (Snapshot, error)
	AdvanceToWeather(ctx context.Context, fix weather.GeoFix) (Snapshot, error)
	PickWeather(ctx context.Context, cond weather.Condition) (Snapshot, error)
	ConfirmWeather(ctx context.Context) (Snapshot, error)
	PickGender(ctx context.Context, gender recommendation.Gender) (Snapshot, error)
	Restart(ctx context.Context) Snapshot
	ResetCapture(ctx context.Context) Snapshot
	Subscribe() (<-chan Notification, func())
}

// Inferencer classifies frames.
type Inferencer interface {
	Infer(ctx context.Context, frame image.Image) (inference.Result, error)
	State() inference.ModelState
}

// Capturer owns the camera stream and the uploaded file.
type Capturer interface {
	StartCamera(ctx context.Context, permission capture.Permission) error
	StopCamera()
	Reset()
	LoadFile(contentType string, data []byte) (capture.Frame, error)
	PushFrame(img image.Image) error
	StartCountdown(ctx context.Context, hooks capture.CountdownHooks) error
	State() capture.State
}

// AssetLinker turns a hero image reference into a URL the page can load.
type AssetLinker interface {
	Link(ctx context.Context, ref string) (string, error)
}

// Config tunes the controller.
type Config struct {
	LatePolicy    LatePolicy
	DetectTimeout time.Duration
}

// Snapshot is the session plus the derived presentation state.
type Snapshot struct {
	Session
	Status      string               `json:"status"`
	CanAdvance  bool                 `json:"canAdvance"`
	Model       inference.ModelState `json:"model"`
	Capture     capture.State        `json:"capture"`
	Predictions []string             `json:"predictions,omitempty"`
	Bars        []inference.Bar      `json:"bars,omitempty"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

const (
	statusLoading = "Loading model…"
	statusReady   = "Ready. Choose an input to start."
	statusCamera  = "Camera input active…"
	statusStopped = "Stopped due to error."
)

// Controller owns the single session and performs the effects the machine asks for.
type Controller struct {
	cfg     Config
	machine Machine
	stage   Inferencer
	capture Capturer
	weather weather.Service
	linker  AssetLinker
	events  *Broadcaster
	logger  *slog.Logger
	now     func() time.Time

	baseCtx context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup

	mu           sync.Mutex
	session      Session
	cancelDetect context.CancelFunc
}

// NewController wires the wizard.
func NewController(
	cfg Config,
	resolver Resolver,
	stage Inferencer,
	capturer Capturer,
	weatherSvc weather.Service,
	linker AssetLinker,
	events *Broadcaster,
	logger *slog.Logger,
) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		cfg:     cfg,
		machine: NewMachine(resolver, cfg.LatePolicy),
		stage:   stage,
		capture: capturer,
		weather: weatherSvc,
		linker:  linker,
		events:  events,
		logger:  logger.With("component", "wizard.controller"),
		now:     util.NowUTC,
		baseCtx: ctx,
		stop:    cancel,
		session: NewSession(),
	}
}

// Close cancels background detection and capture work and waits for detections to finish.
func (c *Controller) Close() {
	c.stop()
	c.wg.Wait()
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) Subscribe() (<-chan Notification, func()) {
	return c.events.Subscribe()
}

func (c *Controller) PickEmotion(_ context.Context, emotion mood.Emotion) (Snapshot, error) {
	return c.dispatch(PickEmotion{Emotion: emotion})
}

// SubmitFile loads an uploaded image and classifies it right away.
func (c *Controller) SubmitFile(ctx context.Context, contentType string, data []byte) (Snapshot, error) {
	if err := c.requireCaptureStep(); err != nil {
		return c.fail(err)
	}
	frame, err := c.capture.LoadFile(contentType, data)
	if err != nil {
		return c.fail(err)
	}
	return c.classify(ctx, frame)
}

func (c *Controller) StartCamera(ctx context.Context, permission capture.Permission) (Snapshot, error) {
	if err := c.requireCaptureStep(); err != nil {
		return c.fail(err)
	}
	if err := c.capture.StartCamera(ctx, permission); err != nil {
		return c.fail(err)
	}
	c.mu.Lock()
	c.session.Banner = Banner{Kind: BannerOK, Text: okRunning}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publishState(snap)
	return snap, nil
}

func (c *Controller) StopCamera(_ context.Context) Snapshot {
	c.capture.StopCamera()
	snap := c.Snapshot()
	c.publishState(snap)
	return snap
}

// PushFrame replaces the latest camera frame. It does not publish state.
func (c *Controller) PushFrame(_ context.Context, frame image.Image) error {
	return c.capture.PushFrame(frame)
}

// Capture starts the countdown; the captured frame is classified when it completes.
func (c *Controller) Capture(_ context.Context) (Snapshot, error) {
	if err := c.requireCaptureStep(); err != nil {
		return c.fail(err)
	}
	hooks := capture.CountdownHooks{
		Tick: func(remaining int) {
			c.events.Publish(EventCountdown, Countdown{Remaining: remaining})
		},
		Done: c.captured,
	}
	if err := c.capture.StartCountdown(c.baseCtx, hooks); err != nil {
		return c.fail(err)
	}
	snap := c.Snapshot()
	c.publishState(snap)
	return snap, nil
}

func (c *Controller) captured(frame capture.Frame, err error) {
	if errors.Is(err, capture.ErrCountdownAborted) {
		c.logger.Debug("capture countdown aborted")
		c.publishState(c.Snapshot())
		return
	}
	if err != nil {
		_, _ = c.fail(err)
		return
	}
	if _, err := c.classify(c.baseCtx, frame); err != nil {
		c.logger.Warn("camera prediction failed", "frame_id", frame.ID, "error", err)
	}
}

func (c *Controller) classify(ctx context.Context, frame capture.Frame) (Snapshot, error) {
	result, err := c.stage.Infer(ctx, frame.Image)
	if err != nil {
		return c.fail(err)
	}
	c.logger.Info("frame classified", "frame_id", frame.ID, "source", frame.Source, "top", result.Emotion, "recognized", result.Recognized)
	return c.dispatch(InferenceCompleted{Result: result})
}

func (c *Controller) AdvanceToWeather(_ context.Context, fix weather.GeoFix) (Snapshot, error) {
	return c.dispatch(AdvanceToWeather{Fix: fix})
}

func (c *Controller) PickWeather(_ context.Context, cond weather.Condition) (Snapshot, error) {
	return c.dispatch(PickWeather{Condition: cond})
}

func (c *Controller) ConfirmWeather(_ context.Context) (Snapshot, error) {
	return c.dispatch(ConfirmWeather{})
}

func (c *Controller) PickGender(_ context.Context, gender recommendation.Gender) (Snapshot, error) {
	return c.dispatch(PickGender{Gender: gender})
}

func (c *Controller) Restart(_ context.Context) Snapshot {
	snap, _ := c.dispatch(Restart{})
	return snap
}

func (c *Controller) ResetCapture(_ context.Context) Snapshot {
	snap, _ := c.dispatch(ResetCapture{})
	return snap
}

// requireCaptureStep refuses capture actions outside Predict or without a loaded model.
func (c *Controller) requireCaptureStep() error {
	c.mu.Lock()
	step := c.session.Step
	c.mu.Unlock()
	if step != StepPredict {
		return apperrors.Wrap(apperrors.CodeTransitionRefused, "Capture is only available in the first step.", nil)
	}
	if c.stage.State().Status != inference.StatusReady {
		return apperrors.Wrap(apperrors.CodeModelUnavailable, "Please load model first.", nil)
	}
	return nil
}

func (c *Controller) dispatch(ev Event) (Snapshot, error) {
	c.mu.Lock()
	next, effects, err := c.machine.Apply(c.session, ev)
	if err != nil {
		c.adviseLocked(err)
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.publishState(snap)
		return snap, err
	}
	c.session = next
	link := c.runEffectsLocked(effects)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if link {
		snap = c.linkHero(snap)
	}
	c.publishState(snap)
	return snap, nil
}

func (c *Controller) fail(err error) (Snapshot, error) {
	c.mu.Lock()
	c.adviseLocked(err)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publishState(snap)
	return snap, err
}

// adviseLocked shows refusals as a notice and every other failure on the error banner.
func (c *Controller) adviseLocked(err error) {
	msg := apperrors.MessageOf(err)
	switch apperrors.CodeOf(err) {
	case apperrors.CodeTransitionRefused, apperrors.CodeInvalidInput:
		c.session.Notice = msg
	default:
		c.session.Banner = Banner{Kind: BannerError, Text: msg}
	}
}

func (c *Controller) runEffectsLocked(effects []Effect) (linkHero bool) {
	for _, effect := range effects {
		switch e := effect.(type) {
		case StopCamera:
			c.capture.StopCamera()
		case ClearCapture:
			c.capture.Reset()
		case StartWeatherDetection:
			c.startDetectionLocked(e)
		case CancelWeatherDetection:
			c.cancelDetectionLocked()
		case LinkHero:
			linkHero = true
		}
	}
	return linkHero
}

func (c *Controller) startDetectionLocked(e StartWeatherDetection) {
	c.cancelDetectionLocked()
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if c.cfg.DetectTimeout > 0 {
		ctx, cancel = context.WithTimeout(c.baseCtx, c.cfg.DetectTimeout)
	} else {
		ctx, cancel = context.WithCancel(c.baseCtx)
	}
	c.cancelDetect = cancel
	c.wg.Add(1)
	go c.detect(ctx, cancel, e)
}

func (c *Controller) cancelDetectionLocked() {
	if c.cancelDetect != nil {
		c.cancelDetect()
		c.cancelDetect = nil
	}
}

func (c *Controller) detect(ctx context.Context, cancel context.CancelFunc, e StartWeatherDetection) {
	defer c.wg.Done()
	defer cancel()

	report, err := c.weather.Detect(ctx, e.Fix)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			c.logger.Info("weather detection cancelled", "epoch", e.Epoch)
			return
		}
		c.logger.Warn("weather detection failed", "epoch", e.Epoch, "error", err)
		_, _ = c.dispatch(WeatherFailed{Epoch: e.Epoch, Notice: apperrors.MessageOf(err)})
		return
	}
	c.events.Publish(EventWeather, report)
	_, _ = c.dispatch(WeatherDetected{Epoch: e.Epoch, Report: report})
}

func (c *Controller) linkHero(snap Snapshot) Snapshot {
	view := snap.Recommendation
	if view == nil || c.linker == nil {
		return snap
	}
	url, err := c.linker.Link(c.baseCtx, view.Hero)
	if err != nil {
		c.logger.Warn("hero link failed", "hero", view.Hero, "error", err)
		return snap
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	current := c.session.Recommendation
	if current == nil || current.ID != view.ID || current.Hero != view.Hero {
		return c.snapshotLocked()
	}
	linked := *current
	linked.HeroURL = url
	c.session.Recommendation = &linked
	return c.snapshotLocked()
}

func (c *Controller) publishState(snap Snapshot) {
	c.events.Publish(EventState, snap)
}

func (c *Controller) snapshotLocked() Snapshot {
	model := c.stage.State()
	capt := c.capture.State()
	snap := Snapshot{
		Session:    c.session,
		Status:     statusLine(model, capt),
		CanAdvance: c.session.CanAdvance(),
		Model:      model,
		Capture:    capt,
		UpdatedAt:  c.now(),
	}
	if model.Status == inference.StatusStopped && snap.Banner.Kind != BannerError {
		snap.Banner = Banner{Kind: BannerError, Text: model.Error}
	}
	if c.session.Inference != nil {
		snap.Predictions = c.session.Inference.Lines()
		snap.Bars = c.session.Inference.Bars()
	}
	return snap
}

func statusLine(model inference.ModelState, capt capture.State) string {
	switch model.Status {
	case inference.StatusStopped:
		return statusStopped
	case inference.StatusReady:
		if capt.Active == capture.KindCamera {
			return statusCamera
		}
		return statusReady
	default:
		return statusLoading
	}
}
