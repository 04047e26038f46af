package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	mimeMsgpack     = "application/msgpack"
)

// requestID tags every request with an id, reusing a client-supplied one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugw("request",
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"ip", c.ClientIP(),
		)
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

func wantsMsgpack(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), mimeMsgpack)
}

// render writes v as msgpack when the client asks for it, JSON otherwise.
func render(c *gin.Context, status int, v any) {
	if !wantsMsgpack(c) {
		c.JSON(status, v)
		return
	}
	data, err := msgpack.Marshal(v)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:     http.StatusText(http.StatusInternalServerError),
			Message:   fmt.Sprintf("failed to encode response: %v", err),
			RequestID: c.GetString(requestIDKey),
		})
		return
	}
	c.Data(status, mimeMsgpack, data)
}

func respondError(c *gin.Context, code int, message string, err error) {
	resp := ErrorResponse{
		Error:     http.StatusText(code),
		Message:   fmt.Sprintf("%s: %v", message, err),
		RequestID: c.GetString(requestIDKey),
	}
	render(c, code, resp)
	c.Abort()
}
