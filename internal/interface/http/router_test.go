package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/moodfit/internal/domain/capture"
	"github.com/yanqian/moodfit/internal/domain/inference"
	"github.com/yanqian/moodfit/internal/domain/mood"
	"github.com/yanqian/moodfit/internal/domain/recommendation"
	"github.com/yanqian/moodfit/internal/domain/weather"
	"github.com/yanqian/moodfit/internal/domain/wizard"
	"github.com/yanqian/moodfit/internal/infra/config"
	apperrors "github.com/yanqian/moodfit/pkg/errors"
)

func TestRouter_Healthz(t *testing.T) {
	recorder := performRequest(http.MethodGet, "/healthz", "", newRouterUnderTest(t, &stubWizard{}))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
}

func TestRouter_ModelStatus(t *testing.T) {
	recorder := performRequest(http.MethodGet, "/api/v1/model", "", newRouterUnderTest(t, &stubWizard{}))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got inference.ModelState
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, inference.StatusReady, got.Status)
	require.Equal(t, 4, got.Classes)
}

func TestRouter_PickEmotion(t *testing.T) {
	svc := &stubWizard{
		pickEmotionFn: func(ctx context.Context, e mood.Emotion) (wizard.Snapshot, error) {
			require.Equal(t, mood.Sad, e)
			return wizard.Snapshot{Session: wizard.Session{Step: wizard.StepPredict, Emotion: e, Style: mood.Cozy}, CanAdvance: true}, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/wizard/emotion", `{"emotion":"SAD"}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, "Cozy", got["style"])
	require.Equal(t, true, got["canAdvance"])
}

func TestRouter_PickEmotionUnknown(t *testing.T) {
	recorder := performRequest(http.MethodPost, "/api/v1/wizard/emotion", `{"emotion":"surprised"}`, newRouterUnderTest(t, &stubWizard{}))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
}

func TestRouter_AdvanceRefused(t *testing.T) {
	svc := &stubWizard{
		advanceFn: func(ctx context.Context, fix weather.GeoFix) (wizard.Snapshot, error) {
			require.Equal(t, weather.GeoAvailable, fix.Status)
			require.InDelta(t, 37.57, fix.Position.Latitude, 1e-9)
			return wizard.Snapshot{}, apperrors.Wrap(apperrors.CodeTransitionRefused, "Select emotion first.", nil)
		},
	}

	body := `{"geolocation":{"status":"available","position":{"latitude":37.57,"longitude":126.98}}}`
	recorder := performRequest(http.MethodPost, "/api/v1/wizard/weather", body, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusConflict, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "transition_refused", errBody["error"]["code"])
	require.Equal(t, "Select emotion first.", errBody["error"]["message"])
}

func TestRouter_UploadFile(t *testing.T) {
	svc := &stubWizard{
		submitFileFn: func(ctx context.Context, contentType string, data []byte) (wizard.Snapshot, error) {
			require.Equal(t, "image/png", contentType)
			require.Equal(t, []byte("fake-png"), data)
			return wizard.Snapshot{Session: wizard.Session{Emotion: mood.Happy, Style: mood.Active}}, nil
		},
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", `form-data; name="file"; filename="face.png"`)
	partHeader.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(partHeader)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-png"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wizard/capture/file", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	newRouterUnderTest(t, svc).Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_UploadFileWrongType(t *testing.T) {
	svc := &stubWizard{
		submitFileFn: func(ctx context.Context, contentType string, data []byte) (wizard.Snapshot, error) {
			return wizard.Snapshot{}, apperrors.Wrap(apperrors.CodeFileType, "This is not a valid image file.", nil)
		},
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wizard/capture/file", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	newRouterUnderTest(t, svc).Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "file_type_error", errBody["error"]["code"])
}

func TestRouter_PushFrame(t *testing.T) {
	var pushed image.Image
	svc := &stubWizard{
		pushFrameFn: func(ctx context.Context, frame image.Image) error {
			pushed = frame
			return nil
		},
	}

	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wizard/camera/frames", &buf)
	req.Header.Set("Content-Type", "image/png")
	rec := httptest.NewRecorder()
	newRouterUnderTest(t, svc).Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, 8, pushed.Bounds().Dx())
}

func TestRouter_PushFrameTooManyPixels(t *testing.T) {
	called := false
	svc := &stubWizard{
		pushFrameFn: func(ctx context.Context, frame image.Image) error {
			called = true
			return nil
		},
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 100, 10))))

	recorder := performRequest(http.MethodPost, "/api/v1/wizard/camera/frames", buf.String(), newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusRequestEntityTooLarge, recorder.Code)
	require.Equal(t, "file_too_large", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
	require.False(t, called)
}

func TestRouter_PushFrameCameraOff(t *testing.T) {
	svc := &stubWizard{
		pushFrameFn: func(ctx context.Context, frame image.Image) error {
			return apperrors.Wrap(apperrors.CodeCameraInactive, "Please turn on the camera first.", nil)
		},
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))

	recorder := performRequest(http.MethodPost, "/api/v1/wizard/camera/frames", buf.String(), newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusConflict, recorder.Code)
}

func TestRouter_CaptureAccepted(t *testing.T) {
	svc := &stubWizard{
		captureFn: func(ctx context.Context) (wizard.Snapshot, error) {
			return wizard.Snapshot{Capture: capture.State{Active: capture.KindCamera, CountingDown: true, Remaining: 3}}, nil
		},
	}
	recorder := performRequest(http.MethodPost, "/api/v1/wizard/camera/capture", "", newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusAccepted, recorder.Code)
}

func TestRouter_Recommend(t *testing.T) {
	recorder := performRequest(http.MethodGet, "/api/v1/recommendations?emotion=neutral&weather=rainy&gender=male", "", newRouterUnderTest(t, &stubWizard{}))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got recommendation.View
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, "minimal_rainy", got.ID)
	require.Equal(t, "assets_img/minimal_rainy1.jpg", got.Hero)
	require.Equal(t, recommendation.Male, got.Gender)
}

func TestRouter_RecommendMissingWeather(t *testing.T) {
	recorder := performRequest(http.MethodGet, "/api/v1/recommendations?mood=Active", "", newRouterUnderTest(t, &stubWizard{}))
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRouter_EventsStreamsInitialState(t *testing.T) {
	svc := &stubWizard{events: make(chan wizard.Notification, 1)}
	svc.events <- wizard.Notification{ID: "n1", Type: wizard.EventCountdown, Data: wizard.Countdown{Remaining: 2}}
	close(svc.events)

	recorder := performRequest(http.MethodGet, "/api/v1/wizard/events", "", newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "text/event-stream", recorder.Header().Get("Content-Type"))

	var (
		kinds []string
		ids   []string
	)
	scanner := bufio.NewScanner(strings.NewReader(recorder.Body.String()))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			kinds = append(kinds, strings.TrimPrefix(line, "event: "))
		case strings.HasPrefix(line, "id: "):
			ids = append(ids, strings.TrimPrefix(line, "id: "))
		}
	}
	require.Equal(t, []string{"state", "countdown"}, kinds)
	require.Equal(t, []string{"n1"}, ids)
	require.Contains(t, recorder.Body.String(), `data: {"remaining":2}`)
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/wizard/emotion", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	newRouterUnderTest(t, &stubWizard{}).Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	server := NewRouter(cfg, newHandlerUnderTest(cfg, &stubWizard{}))

	first := performRequest(http.MethodPost, "/api/v1/wizard/restart", "", server)
	require.Equal(t, http.StatusOK, first.Code)
	second := performRequest(http.MethodPost, "/api/v1/wizard/restart", "", server)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
}

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, svc wizard.Service) *http.Server {
	t.Helper()
	cfg := testConfig()
	return NewRouter(cfg, newHandlerUnderTest(cfg, svc))
}

func newHandlerUnderTest(cfg *config.Config, svc wizard.Service) *Handler {
	resolver := recommendation.NewResolver(recommendation.DefaultRecords())
	models := stubModels{state: inference.ModelState{Status: inference.StatusReady, Classes: 4}}
	return NewHandler(cfg, svc, resolver, models, newTestLogger())
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:        ":0",
			ReadTimeout:    time.Second,
			MaxUploadBytes: 1 << 20,
			CORSOrigins:    []string{"http://localhost:5173"},
		},
		Capture: config.CaptureConfig{MaxFrameSide: 64},
	}
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubModels struct {
	state inference.ModelState
}

func (s stubModels) State() inference.ModelState {
	return s.state
}

type stubWizard struct {
	pickEmotionFn func(ctx context.Context, e mood.Emotion) (wizard.Snapshot, error)
	submitFileFn  func(ctx context.Context, contentType string, data []byte) (wizard.Snapshot, error)
	pushFrameFn   func(ctx context.Context, frame image.Image) error
	captureFn     func(ctx context.Context) (wizard.Snapshot, error)
	advanceFn     func(ctx context.Context, fix weather.GeoFix) (wizard.Snapshot, error)
	events        chan wizard.Notification
}

func (s *stubWizard) Snapshot() wizard.Snapshot {
	return wizard.Snapshot{Session: wizard.NewSession()}
}

func (s *stubWizard) PickEmotion(ctx context.Context, e mood.Emotion) (wizard.Snapshot, error) {
	if s.pickEmotionFn != nil {
		return s.pickEmotionFn(ctx, e)
	}
	return s.Snapshot(), nil
}

func (s *stubWizard) SubmitFile(ctx context.Context, contentType string, data []byte) (wizard.Snapshot, error) {
	if s.submitFileFn != nil {
		return s.submitFileFn(ctx, contentType, data)
	}
	return s.Snapshot(), nil
}

func (s *stubWizard) StartCamera(ctx context.Context, permission capture.Permission) (wizard.Snapshot, error) {
	return s.Snapshot(), nil
}

func (s *stubWizard) StopCamera(ctx context.Context) wizard.Snapshot {
	return s.Snapshot()
}

func (s *stubWizard) PushFrame(ctx context.Context, frame image.Image) error {
	if s.pushFrameFn != nil {
		return s.pushFrameFn(ctx, frame)
	}
	return nil
}

func (s *stubWizard) Capture(ctx context.Context) (wizard.Snapshot, error) {
	if s.captureFn != nil {
		return s.captureFn(ctx)
	}
	return s.Snapshot(), nil
}

func (s *stubWizard) AdvanceToWeather(ctx context.Context, fix weather.GeoFix) (wizard.Snapshot, error) {
	if s.advanceFn != nil {
		return s.advanceFn(ctx, fix)
	}
	return s.Snapshot(), nil
}

func (s *stubWizard) PickWeather(ctx context.Context, cond weather.Condition) (wizard.Snapshot, error) {
	return s.Snapshot(), nil
}

func (s *stubWizard) ConfirmWeather(ctx context.Context) (wizard.Snapshot, error) {
	return s.Snapshot(), nil
}

func (s *stubWizard) PickGender(ctx context.Context, gender recommendation.Gender) (wizard.Snapshot, error) {
	return s.Snapshot(), nil
}

func (s *stubWizard) Restart(ctx context.Context) wizard.Snapshot {
	return s.Snapshot()
}

func (s *stubWizard) ResetCapture(ctx context.Context) wizard.Snapshot {
	return s.Snapshot()
}

func (s *stubWizard) Subscribe() (<-chan wizard.Notification, func()) {
	if s.events == nil {
		ch := make(chan wizard.Notification)
		close(ch)
		return ch, func() {}
	}
	return s.events, func() {}
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
