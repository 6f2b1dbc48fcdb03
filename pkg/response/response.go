package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"kekspay-gateway/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SuccessResponse is the standard success envelope.
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id"`
	Timestamp string      `json:"timestamp"`
}

// ErrorResponse is the standard error envelope per ERROR_CODES.md.
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data:      data,
		RequestID: getRequestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Created sends a 201 response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{
		Data:      data,
		RequestID: getRequestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Error sends an error response. It checks if err is an *apperror.AppError
// and maps it accordingly, otherwise returns 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, ErrorResponse{
			ErrorCode: appErr.Code,
			Message:   appErr.Message,
			RequestID: getRequestID(c),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	// Unknown error -> 500
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		ErrorCode: "SYS_000",
		Message:   "Internal server error",
		RequestID: getRequestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ProviderMessage is the envelope the payment provider expects from the
// callback endpoint: status 0 acknowledges, -1 rejects.
type ProviderMessage struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// encodingSentinel is written when a provider-facing body cannot be encoded.
const encodingSentinel = "-1"

// ProviderAccepted acknowledges a provider callback.
func ProviderAccepted(c *gin.Context) {
	Raw(c, http.StatusOK, ProviderMessage{Status: 0, Message: "Accepted"})
}

// ProviderRejected rejects a provider callback with a machine-readable reason.
// Non-AppErrors are reported with a generic message and still answer 400.
func ProviderRejected(c *gin.Context, err error) {
	msg := "Internal server error"
	status := http.StatusBadRequest
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			status = appErr.HTTPStatus
		}
	}
	Raw(c, status, ProviderMessage{Status: -1, Message: msg})
}

// Raw writes v as a bare JSON body without the standard envelope.
// If v cannot be encoded the body is the sentinel value -1.
func Raw(c *gin.Context, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		body = []byte(encodingSentinel)
	}
	c.Data(status, "application/json; charset=utf-8", body)
}

// getRequestID retrieves request ID from context, or generates one.
func getRequestID(c *gin.Context) string {
	if id, exists := c.Get("request_id"); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return uuid.New().String()
}
