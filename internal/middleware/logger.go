package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"travelbooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID propagates the caller's request id or mints one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		entry := requestEntry(log, c).WithFields(logrus.Fields{
			"status":     c.Writer.Status(),
			"duration":   time.Since(start),
			"user_agent": c.Request.UserAgent(),
		})

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request processed")
		}
	}
}

// Recovery turns a panic into a 500 envelope and logs the stack.
func Recovery(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				for _, err := range c.Errors {
					requestEntry(log, c).WithError(err.Err).WithField("meta", err.Meta).Error("request error")
				}
				return
			}

			requestEntry(log, c).WithFields(logrus.Fields{
				"panic": fmt.Sprintf("%v", recovered),
				"stack": string(debug.Stack()),
			}).Error("panic recovered")

			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong. Please try again.")
			c.Abort()
		}()

		c.Next()
	}
}

func requestEntry(log *logrus.Logger, c *gin.Context) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"query":      c.Request.URL.RawQuery,
		"client_ip":  c.ClientIP(),
		"user_id":    c.GetString(userIDKey),
		"request_id": c.GetString(requestIDKey),
	})
}
