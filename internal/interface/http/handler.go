package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/moodfit/internal/domain/capture"
	"github.com/yanqian/moodfit/internal/domain/inference"
	"github.com/yanqian/moodfit/internal/domain/mood"
	"github.com/yanqian/moodfit/internal/domain/recommendation"
	"github.com/yanqian/moodfit/internal/domain/weather"
	"github.com/yanqian/moodfit/internal/domain/wizard"
	"github.com/yanqian/moodfit/internal/infra/config"
)

// ModelReporter exposes the classifier lifecycle.
type ModelReporter interface {
	State() inference.ModelState
}

// Handler wires the HTTP transport to the wizard.
type Handler struct {
	wizardSvc wizard.Service
	resolver  wizard.Resolver
	models    ModelReporter
	maxUpload int64
	maxSide   int
	logger    *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(cfg *config.Config, wizardSvc wizard.Service, resolver wizard.Resolver, models ModelReporter, logger *slog.Logger) *Handler {
	return &Handler{
		wizardSvc: wizardSvc,
		resolver:  resolver,
		models:    models,
		maxUpload: cfg.HTTP.MaxUploadBytes,
		maxSide:   cfg.Capture.MaxFrameSide,
		logger:    logger.With("component", "http.handler"),
	}
}

type emotionRequest struct {
	Emotion string `json:"emotion"`
}

type cameraRequest struct {
	Permission string `json:"permission"`
}

type advanceRequest struct {
	Geolocation weather.GeoFix `json:"geolocation"`
}

type weatherRequest struct {
	Weather string `json:"weather"`
}

type genderRequest struct {
	Gender string `json:"gender"`
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ModelStatus reports loading, ready (with class count) or stopped (with reason).
func (h *Handler) ModelStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.models.State())
}

func (h *Handler) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.wizardSvc.Snapshot())
}

// Events streams wizard notifications using Server-Sent Events, starting with the current state.
func (h *Handler) Events(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "stream_unsupported", "streaming not supported", nil))
		return
	}
	events, unsubscribe := h.wizardSvc.Subscribe()
	defer unsubscribe()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Status(http.StatusOK)

	h.writeEvent(c.Writer, wizard.Notification{Type: wizard.EventState, Data: h.wizardSvc.Snapshot()})
	flusher.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-events:
			if !ok {
				return
			}
			h.writeEvent(c.Writer, n)
			flusher.Flush()
		}
	}
}

func (h *Handler) writeEvent(w io.Writer, n wizard.Notification) {
	payload, err := json.Marshal(n.Data)
	if err != nil {
		h.logger.Error("marshal event failed", "type", n.Type, "error", err)
		return
	}
	var buf bytes.Buffer
	if n.ID != "" {
		fmt.Fprintf(&buf, "id: %s\n", n.ID)
	}
	fmt.Fprintf(&buf, "event: %s\ndata: ", n.Type)
	buf.Write(payload)
	buf.WriteString("\n\n")
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) PickEmotion(c *gin.Context) {
	var req emotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	emotion, ok := mood.ParseEmotion(req.Emotion)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", fmt.Sprintf("unknown emotion %q", req.Emotion), nil))
		return
	}
	h.respond(c)(h.wizardSvc.PickEmotion(c.Request.Context(), emotion))
}

// UploadFile accepts a multipart "file" field and classifies it immediately.
func (h *Handler) UploadFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "No file selected.", err))
		return
	}
	if header.Size > h.maxUpload {
		abortWithError(c, NewHTTPError(http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds upload limit", nil))
		return
	}
	file, err := header.Open()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	h.respond(c)(h.wizardSvc.SubmitFile(c.Request.Context(), header.Header.Get("Content-Type"), data))
}

func (h *Handler) StartCamera(c *gin.Context) {
	var req cameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	var permission capture.Permission
	switch strings.ToLower(strings.TrimSpace(req.Permission)) {
	case string(capture.PermissionGranted):
		permission = capture.PermissionGranted
	case string(capture.PermissionDenied):
		permission = capture.PermissionDenied
	default:
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "permission must be granted or denied", nil))
		return
	}
	h.respond(c)(h.wizardSvc.StartCamera(c.Request.Context(), permission))
}

func (h *Handler) StopCamera(c *gin.Context) {
	c.JSON(http.StatusOK, h.wizardSvc.StopCamera(c.Request.Context()))
}

// PushFrame takes a raw image body as the latest camera frame.
func (h *Handler) PushFrame(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	frame, _, err := inference.Decode(body, h.maxSide)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithError(c, NewHTTPError(http.StatusRequestEntityTooLarge, "file_too_large", "frame exceeds upload limit", err))
			return
		}
		if errors.Is(err, inference.ErrFrameTooLarge) {
			abortWithError(c, NewHTTPError(http.StatusRequestEntityTooLarge, "file_too_large", fmt.Sprintf("frame exceeds %d px per side", h.maxSide), err))
			return
		}
		abortWithError(c, NewHTTPError(http.StatusUnsupportedMediaType, "file_type_error", "frame is not a valid image", err))
		return
	}
	if err := h.wizardSvc.PushFrame(c.Request.Context(), frame); err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// Capture starts the countdown; progress arrives on the event stream.
func (h *Handler) Capture(c *gin.Context) {
	snap, err := h.wizardSvc.Capture(c.Request.Context())
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusAccepted, snap)
}

func (h *Handler) AdvanceToWeather(c *gin.Context) {
	var req advanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	h.respond(c)(h.wizardSvc.AdvanceToWeather(c.Request.Context(), req.Geolocation))
}

func (h *Handler) PickWeather(c *gin.Context) {
	var req weatherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	cond, ok := weather.ParseCondition(req.Weather)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", fmt.Sprintf("unknown weather %q", req.Weather), nil))
		return
	}
	h.respond(c)(h.wizardSvc.PickWeather(c.Request.Context(), cond))
}

func (h *Handler) ConfirmWeather(c *gin.Context) {
	h.respond(c)(h.wizardSvc.ConfirmWeather(c.Request.Context()))
}

func (h *Handler) PickGender(c *gin.Context) {
	var req genderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	gender, ok := recommendation.ParseGender(req.Gender)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", fmt.Sprintf("unknown gender %q", req.Gender), nil))
		return
	}
	h.respond(c)(h.wizardSvc.PickGender(c.Request.Context(), gender))
}

func (h *Handler) Restart(c *gin.Context) {
	c.JSON(http.StatusOK, h.wizardSvc.Restart(c.Request.Context()))
}

func (h *Handler) ResetCapture(c *gin.Context) {
	c.JSON(http.StatusOK, h.wizardSvc.ResetCapture(c.Request.Context()))
}

// Recommend resolves a card without touching the session: ?mood=&weather=&gender=.
func (h *Handler) Recommend(c *gin.Context) {
	style, ok := mood.ParseStyle(c.Query("mood"))
	if !ok {
		if emotion, isEmotion := mood.ParseEmotion(c.Query("emotion")); isEmotion {
			style, ok = mood.StyleFor(emotion)
		}
	}
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "mood or emotion is required", nil))
		return
	}
	cond, ok := weather.ParseCondition(c.Query("weather"))
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "weather is required", nil))
		return
	}
	gender, ok := recommendation.ParseGender(c.DefaultQuery("gender", string(recommendation.Female)))
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "gender must be Male or Female", nil))
		return
	}

	view, err := h.resolver.Resolve(style, cond, gender)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) respond(c *gin.Context) func(wizard.Snapshot, error) {
	return func(snap wizard.Snapshot, err error) {
		if err != nil {
			abortWithError(c, fromDomainError(err))
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
