package errors

import "errors"

// Codes shared by the wizard domains and mapped to HTTP statuses by the transport.
const (
	CodeInvalidInput           = "invalid_input"
	CodeTransitionRefused      = "transition_refused"
	CodeModelLoad              = "model_load_error"
	CodeModelUnavailable       = "model_unavailable"
	CodeModelInference         = "model_inference_error"
	CodeCameraPermission       = "camera_permission_error"
	CodeCameraInactive         = "camera_inactive"
	CodeCountdownActive        = "countdown_active"
	CodeFileType               = "file_type_error"
	CodeWeatherFetch           = "weather_fetch_error"
	CodeAirQualityFetch        = "air_quality_fetch_error"
	CodeGeolocationDenied      = "geolocation_denied"
	CodeGeolocationUnsupported = "geolocation_unsupported"
	CodeRecommendationNotFound = "recommendation_not_found"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf returns the outermost AppError code, or an empty string.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// MessageOf returns the user facing message without the wrapped cause.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
