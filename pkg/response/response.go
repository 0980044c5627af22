// Package response provides the standard HTTP response envelope.
package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/forge-io/agentforge/pkg/errors"
)

// Response is the standard response envelope for all HTTP endpoints.
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// RequestIDKey is the gin context key holding the request ID.
const RequestIDKey = "X-Request-ID"

func envelope(c *gin.Context, code int, message string, data interface{}) *Response {
	r := &Response{
		Code:      code,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
	if requestID := c.GetString(RequestIDKey); requestID != "" {
		r.RequestID = requestID
	}
	return r
}

// OK sends a successful response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope(c, 0, "success", data))
}

// OKWithMessage sends a successful response with a custom message.
func OKWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, envelope(c, 0, message, data))
}

// Fail sends an error response.
// If err is an *errors.Errno, its code and HTTP status are used.
// All other errors are mapped to ErrInternal.
func Fail(c *gin.Context, err error) {
	e := errors.FromError(err)
	c.JSON(e.HTTPStatus(), envelope(c, e.Code, e.MessageEN, nil))
}

// FailWithErrno sends an error response from an Errno, aborting the handler chain.
func FailWithErrno(c *gin.Context, e *errors.Errno) {
	c.AbortWithStatusJSON(e.HTTPStatus(), envelope(c, e.Code, e.MessageEN, nil))
}
