package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/moodfit/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.CORSOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/healthz", handler.Healthz)

	api := router.Group("/api/v1")
	{
		api.GET("/model", handler.ModelStatus)
		api.GET("/wizard", handler.Snapshot)
		api.GET("/wizard/events", handler.Events)
		// Frames arrive at camera rate and stay outside the request limiter.
		api.POST("/wizard/camera/frames", handler.PushFrame)

		limited := api.Group("", rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger))
		limited.POST("/wizard/emotion", handler.PickEmotion)
		limited.POST("/wizard/capture/file", handler.UploadFile)
		limited.POST("/wizard/camera/start", handler.StartCamera)
		limited.POST("/wizard/camera/stop", handler.StopCamera)
		limited.POST("/wizard/camera/capture", handler.Capture)
		limited.POST("/wizard/weather", handler.AdvanceToWeather)
		limited.POST("/wizard/weather/pick", handler.PickWeather)
		limited.POST("/wizard/weather/confirm", handler.ConfirmWeather)
		limited.POST("/wizard/gender", handler.PickGender)
		limited.POST("/wizard/restart", handler.Restart)
		limited.POST("/wizard/reset", handler.ResetCapture)
		limited.GET("/recommendations", handler.Recommend)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
