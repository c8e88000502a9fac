package respond

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/apperr"
	"resume-builder/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if isGuest, ok := c.Get("isGuest"); ok {
		fields["is_guest"] = isGuest
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// StatusFor maps an error kind to an HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindExpired:
		return http.StatusGone
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindRenderTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes the response for a service error. Internal failures never
// leak their cause to the client.
func FromError(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		Error(c, http.StatusGatewayTimeout, string(apperr.KindRenderTimeout), "the request timed out", nil)
		return
	}
	e, ok := apperr.As(err)
	if !ok {
		telemetry.Error("http.unhandled_error", map[string]any{
			"request_id": c.GetString("requestId"),
			"error":      err,
		})
		Error(c, http.StatusInternalServerError, "internal_error", "Unexpected server error", nil)
		return
	}
	status := StatusFor(e.Kind)
	message := e.Message
	if status == http.StatusInternalServerError {
		if e.Err != nil {
			telemetry.Error("http.internal_cause", map[string]any{
				"request_id": c.GetString("requestId"),
				"kind":       string(e.Kind),
				"error":      e.Err,
			})
		}
		if e.Kind != apperr.KindRender {
			message = "Unexpected server error"
		}
	}
	Error(c, status, e.Code(), message, e.Details)
}
