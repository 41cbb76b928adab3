package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/yanqian/moodfit/internal/infra/config"
)

// ModelLoader fetches the classifier; the server is usable while it loads.
type ModelLoader interface {
	Load(ctx context.Context) error
}

// Closer releases background work owned by the wizard.
type Closer interface {
	Close()
}

// App encapsulates the HTTP server lifecycle.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
	models ModelLoader
	wizard Closer
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, models ModelLoader, wizard Closer) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With("component", "bootstrap"),
		server: server,
		models: models,
		wizard: wizard,
	}
}

// Run loads the model in the background, starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	// Request contexts derive from serveCtx so open event streams end on shutdown.
	serveCtx, cancelServe := context.WithCancel(context.Background())
	defer cancelServe()
	a.server.BaseContext = func(net.Listener) context.Context { return serveCtx }

	go func() {
		if err := a.models.Load(ctx); err != nil {
			a.logger.Error("model unavailable, capture disabled", "error", err)
			return
		}
		a.logger.Info("model ready")
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	defer a.wizard.Close()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		cancelServe()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
