package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/moodfit/internal/domain/inference"
	apperrors "github.com/yanqian/moodfit/pkg/errors"
)

// ErrCountdownAborted is reported to Done when the camera was released or the context
// ended before the frame was grabbed.
var ErrCountdownAborted = errors.New("capture countdown aborted")

// State is the observable capture status.
type State struct {
	Active       Kind `json:"active"`
	CountingDown bool `json:"countingDown"`
	Remaining    int  `json:"remaining,omitempty"`
	HasFrame     bool `json:"hasFrame"`
}

// CountdownHooks receive countdown progress. Both run outside the manager lock.
type CountdownHooks struct {
	Tick func(remaining int)
	Done func(frame Frame, err error)
}

// Manager enforces the single active source rule and the capture countdown.
type Manager struct {
	cfg    Config
	device Device
	logger *slog.Logger
	after  func(time.Duration) <-chan time.Time

	mu        sync.Mutex
	stream    Stream
	file      *Frame
	gen       uint64
	counting  bool
	remaining int
}

// NewManager wires the capture manager around a camera device.
func NewManager(cfg Config, device Device, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:    cfg.withDefaults(),
		device: device,
		logger: logger.With("component", "capture.manager"),
		after:  time.After,
	}
}

// StartCamera releases any previous stream and the displayed file, then opens a new stream.
func (m *Manager) StartCamera(ctx context.Context, permission Permission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseLocked()
	m.file = nil

	if permission != PermissionGranted {
		m.logger.Warn("camera permission not granted", "permission", permission)
		return apperrors.Wrap(apperrors.CodeCameraPermission, "Unable to start camera: permission denied", nil)
	}
	stream, err := m.device.Open(ctx)
	if err != nil {
		m.logger.Warn("camera open failed", "error", err)
		return apperrors.Wrap(apperrors.CodeCameraPermission, "Unable to start camera", err)
	}
	m.stream = stream
	m.gen++
	m.logger.Info("camera started")
	return nil
}

// StopCamera releases the active stream, if any, and cancels a pending countdown.
func (m *Manager) StopCamera() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseLocked()
}

// Reset releases every source.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseLocked()
	m.file = nil
}

// CameraActive reports whether a stream is open.
func (m *Manager) CameraActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stream != nil
}

// LoadFile validates and decodes an uploaded image. It stops the camera first.
func (m *Manager) LoadFile(contentType string, data []byte) (Frame, error) {
	if len(data) == 0 {
		return Frame{}, apperrors.Wrap(apperrors.CodeInvalidInput, "No file selected.", nil)
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/") {
		return Frame{}, apperrors.Wrap(apperrors.CodeFileType, "This is not a valid image file.", nil)
	}
	img, format, err := inference.Decode(bytes.NewReader(data), m.cfg.MaxSide)
	if errors.Is(err, inference.ErrFrameTooLarge) {
		return Frame{}, apperrors.Wrap(apperrors.CodeFileType, fmt.Sprintf("Image is too large (max %d px per side).", m.cfg.MaxSide), err)
	}
	if err != nil {
		return Frame{}, apperrors.Wrap(apperrors.CodeFileType, "This is not a valid image file.", err)
	}

	frame := Frame{ID: uuid.NewString(), Source: KindFile, Image: img}
	m.mu.Lock()
	m.releaseLocked()
	m.file = &frame
	m.mu.Unlock()
	m.logger.Info("file frame loaded", "frame_id", frame.ID, "format", format, "bytes", len(data))
	return frame, nil
}

// PushFrame feeds the active camera stream.
func (m *Manager) PushFrame(img image.Image) error {
	m.mu.Lock()
	stream := m.stream
	m.mu.Unlock()
	feed, ok := stream.(interface{ Push(image.Image) bool })
	if stream == nil || !ok || !feed.Push(img) {
		return apperrors.Wrap(apperrors.CodeCameraInactive, "Please turn on the camera first.", nil)
	}
	return nil
}

// StartCountdown begins the capture countdown. It returns immediately; hooks report
// progress. Only one countdown may run, and only while the camera is on.
func (m *Manager) StartCountdown(ctx context.Context, hooks CountdownHooks) error {
	m.mu.Lock()
	if m.stream == nil {
		m.mu.Unlock()
		return apperrors.Wrap(apperrors.CodeCameraInactive, "Please turn on the camera first.", nil)
	}
	if m.counting {
		m.mu.Unlock()
		return apperrors.Wrap(apperrors.CodeCountdownActive, "Capture countdown already running.", nil)
	}
	m.counting = true
	m.remaining = m.cfg.CountdownTicks
	gen := m.gen
	m.mu.Unlock()

	go m.runCountdown(ctx, gen, hooks)
	return nil
}

func (m *Manager) runCountdown(ctx context.Context, gen uint64, hooks CountdownHooks) {
	remaining := m.cfg.CountdownTicks
	tick(hooks, remaining)
	for remaining > 0 {
		select {
		case <-ctx.Done():
			m.finishCountdown(gen)
			done(hooks, Frame{}, ErrCountdownAborted)
			return
		case <-m.after(m.cfg.TickInterval):
		}
		remaining--
		m.mu.Lock()
		if m.gen != gen || !m.counting {
			m.mu.Unlock()
			done(hooks, Frame{}, ErrCountdownAborted)
			return
		}
		m.remaining = remaining
		m.mu.Unlock()
		if remaining > 0 {
			tick(hooks, remaining)
		}
	}

	m.mu.Lock()
	if m.gen != gen || m.stream == nil {
		m.mu.Unlock()
		done(hooks, Frame{}, ErrCountdownAborted)
		return
	}
	m.counting = false
	m.remaining = 0
	img, ok := m.stream.Latest()
	m.mu.Unlock()

	if !ok {
		done(hooks, Frame{}, apperrors.Wrap(apperrors.CodeCameraInactive, "No camera frame received yet.", nil))
		return
	}
	frame := Frame{ID: uuid.NewString(), Source: KindCamera, Image: img}
	m.logger.Info("camera frame captured", "frame_id", frame.ID)
	done(hooks, frame, nil)
}

func (m *Manager) finishCountdown(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen == gen {
		m.counting = false
		m.remaining = 0
	}
}

// State reports the capture status.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := State{Active: KindNone, CountingDown: m.counting, Remaining: m.remaining}
	switch {
	case m.stream != nil:
		st.Active = KindCamera
		_, st.HasFrame = m.stream.Latest()
	case m.file != nil:
		st.Active = KindFile
		st.HasFrame = true
	}
	return st
}

func (m *Manager) releaseLocked() {
	if m.stream != nil {
		m.stream.Stop()
		m.stream = nil
		m.logger.Info("camera released")
	}
	m.gen++
	m.counting = false
	m.remaining = 0
}

func tick(hooks CountdownHooks, remaining int) {
	if hooks.Tick != nil {
		hooks.Tick(remaining)
	}
}

func done(hooks CountdownHooks, frame Frame, err error) {
	if hooks.Done != nil {
		hooks.Done(frame, err)
	}
}
