package middleware

import (
	"net/http"

	"natours/internal/domain"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorBody is the single error shape returned by the API.
type ErrorBody struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id,omitempty"`
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case domain.IsUnauthenticated(err):
		return http.StatusUnauthorized
	case domain.IsForbidden(err):
		return http.StatusForbidden
	case domain.IsInvalidQuery(err), domain.IsInvalidPage(err), domain.IsValidation(err):
		return http.StatusBadRequest
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsConflict(err):
		return http.StatusConflict
	case domain.IsStoreUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondError aborts the request with the standard error body. Messages of
// 5xx errors are replaced so internals never reach clients.
func RespondError(c *gin.Context, err error) {
	status := StatusFor(err)
	msg := err.Error()
	switch {
	case status == http.StatusServiceUnavailable:
		msg = "service temporarily unavailable, please try again later"
	case status >= 500:
		msg = "something went wrong"
	}
	body := ErrorBody{
		Status:     "fail",
		StatusCode: status,
		Message:    msg,
		RequestID:  GetRequestID(c),
	}
	if status >= 500 {
		body.Status = "error"
	}
	c.AbortWithStatusJSON(status, body)
}

// ErrorHandler renders the last error a handler attached with c.Error when
// nothing has been written yet.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		if StatusFor(err) >= 500 {
			log.Error("request failed",
				zap.String("request_id", GetRequestID(c)),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
		}
		RespondError(c, err)
	}
}
