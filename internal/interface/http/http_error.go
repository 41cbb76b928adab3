package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/moodfit/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// fromDomainError keeps the domain code and user facing message and picks the status.
func fromDomainError(err error) *HTTPError {
	code := apperrors.CodeOf(err)
	if code == "" {
		return asHTTPError(err)
	}
	return NewHTTPError(statusForCode(code), code, apperrors.MessageOf(err), err)
}

func statusForCode(code string) int {
	switch code {
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeCameraPermission:
		return http.StatusForbidden
	case apperrors.CodeRecommendationNotFound:
		return http.StatusNotFound
	case apperrors.CodeTransitionRefused, apperrors.CodeCameraInactive, apperrors.CodeCountdownActive:
		return http.StatusConflict
	case apperrors.CodeFileType:
		return http.StatusUnsupportedMediaType
	case apperrors.CodeGeolocationDenied, apperrors.CodeGeolocationUnsupported:
		return http.StatusUnprocessableEntity
	case apperrors.CodeModelLoad, apperrors.CodeModelUnavailable:
		return http.StatusServiceUnavailable
	case apperrors.CodeModelInference, apperrors.CodeWeatherFetch, apperrors.CodeAirQualityFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
