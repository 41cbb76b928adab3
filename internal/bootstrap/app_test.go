package bootstrap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/moodfit/internal/infra/config"
)

func TestRunLoadsModelAndShutsDown(t *testing.T) {
	cfg := &config.Config{HTTP: config.HTTPConfig{Address: "127.0.0.1:0"}}
	server := &http.Server{Addr: cfg.HTTP.Address, Handler: http.NotFoundHandler()}
	models := &stubLoader{loaded: make(chan struct{})}
	wizard := &stubCloser{}
	app := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), server, models, wizard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	select {
	case <-models.loaded:
	case <-time.After(time.Second):
		t.Fatal("model load was not started")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	require.True(t, wizard.closed)
}

func TestRunReportsListenErrors(t *testing.T) {
	cfg := &config.Config{HTTP: config.HTTPConfig{Address: "256.0.0.1:bad"}}
	server := &http.Server{Addr: cfg.HTTP.Address, Handler: http.NotFoundHandler()}
	models := &stubLoader{loaded: make(chan struct{}), err: errors.New("offline")}
	app := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), server, models, &stubCloser{})

	err := app.Run(context.Background())
	require.Error(t, err)
}

type stubLoader struct {
	loaded chan struct{}
	err    error
}

func (l *stubLoader) Load(ctx context.Context) error {
	close(l.loaded)
	return l.err
}

type stubCloser struct {
	closed bool
}

func (c *stubCloser) Close() {
	c.closed = true
}
