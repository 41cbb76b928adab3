// Package capture owns the still-frame sources: a live camera stream or an uploaded file.
// At most one source is active at a time.
package capture

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/yanqian/moodfit/internal/domain/inference"
)

// Kind names the active source.
type Kind string

const (
	KindNone   Kind = "none"
	KindCamera Kind = "camera"
	KindFile   Kind = "file"
)

// Permission is the outcome of the device camera permission prompt.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Frame is a single captured still.
type Frame struct {
	ID     string
	Source Kind
	Image  image.Image
}

// Stream is an open camera stream. Stop releases the device and must be idempotent.
type Stream interface {
	Latest() (image.Image, bool)
	Stop()
}

// Device opens camera streams.
type Device interface {
	Open(ctx context.Context) (Stream, error)
}

// Config tunes the capture countdown. MaxSide bounds decoded frame width and height.
type Config struct {
	CountdownTicks int
	TickInterval   time.Duration
	MaxSide        int
}

func (c Config) withDefaults() Config {
	if c.CountdownTicks <= 0 {
		c.CountdownTicks = 3
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.MaxSide <= 0 {
		c.MaxSide = inference.DefaultMaxSide
	}
	return c
}

// FeedDevice opens streams whose frames are pushed by the remote page.
type FeedDevice struct{}

// NewFeedDevice constructs the device.
func NewFeedDevice() *FeedDevice {
	return &FeedDevice{}
}

// Open implements Device.
func (d *FeedDevice) Open(_ context.Context) (Stream, error) {
	return &FeedStream{}, nil
}

// FeedStream holds the most recent pushed frame.
type FeedStream struct {
	mu      sync.RWMutex
	latest  image.Image
	stopped bool
}

// Push replaces the latest frame. Frames pushed after Stop are dropped.
func (s *FeedStream) Push(img image.Image) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.latest = img
	return true
}

// Latest implements Stream.
func (s *FeedStream) Latest() (image.Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped || s.latest == nil {
		return nil, false
	}
	return s.latest, true
}

// Stop implements Stream.
func (s *FeedStream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.latest = nil
}

// Stopped reports whether the stream was released.
func (s *FeedStream) Stopped() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stopped
}

var (
	_ Device = (*FeedDevice)(nil)
	_ Stream = (*FeedStream)(nil)
)
