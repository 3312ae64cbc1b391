package response

import (
	"errors"
	"net/http"
	"time"

	"crypto-payments/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the gin context key the request-id middleware stores the id under.
const RequestIDKey = "request_id"

// SuccessResponse wraps every 2xx payload (invoice, wallet, rate, transfer hash).
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id"`
	Timestamp string      `json:"timestamp"`
}

// ErrorResponse carries an apperror code to API callers. Retryable mirrors
// apperror.IsRetryable: true means the same call may succeed later (rate not yet
// published, chain RPC down), false means retrying is pointless or unsafe
// (unknown invoice, failed transfer).
type ErrorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

func OK(c *gin.Context, data interface{}) {
	success(c, http.StatusOK, data)
}

func Created(c *gin.Context, data interface{}) {
	success(c, http.StatusCreated, data)
}

// Error writes err as an ErrorResponse. Errors outside the apperror taxonomy are
// reported as SYS_001 without exposing their text.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.InternalError(err)
	}

	c.JSON(appErr.HTTPStatus, ErrorResponse{
		ErrorCode: appErr.Code,
		Message:   appErr.Message,
		Retryable: appErr.Retryable,
		RequestID: requestID(c),
		Timestamp: timestamp(),
	})
}

func success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse{
		Data:      data,
		RequestID: requestID(c),
		Timestamp: timestamp(),
	})
}

// requestID falls back to a fresh id for handlers mounted without the middleware.
func requestID(c *gin.Context) string {
	if id, ok := c.Get(RequestIDKey); ok {
		if s, ok := id.(string); ok && s != "" {
			return s
		}
	}
	return uuid.NewString()
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
