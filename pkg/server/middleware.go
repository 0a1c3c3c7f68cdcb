package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ginLogger creates a gin logger middleware using logrus.
func ginLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// Process request
		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		entry := logger.WithFields(logrus.Fields{
			"status":     statusCode,
			"method":     c.Request.Method,
			"path":       path,
			"ip":         c.ClientIP(),
			"latency":    latency,
			"user_agent": c.Request.UserAgent(),
		})

		if raw != "" {
			entry = entry.WithField("query", raw)
		}

		if statusCode >= 500 {
			entry.Error("Server error")
		} else if statusCode >= 400 {
			entry.Warn("Client error")
		} else {
			entry.Info("Request completed")
		}
	}
}

// corsMiddleware adds CORS headers so the listing APIs can be consumed
// cross-origin.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept-Encoding")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// protectedPathMiddleware rejects exact matches against the configured
// protected path set before any route runs, regardless of filesystem state.
func (s *Server) protectedPathMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, denied := s.protected[c.Request.URL.Path]; denied {
			s.logger.Warnf("Denied access to protected path: %s", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Next()
	}
}

// recoveryMiddleware converts panics into a 500 HTML page so a single bad
// request cannot take down the listener. The panic detail is only echoed
// when exposeErrors is set.
func recoveryMiddleware(logger *logrus.Logger, exposeErrors bool) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered interface{}) {
		logger.Errorf("Panic while handling %s: %v", c.Request.URL.Path, recovered)

		detail := "internal server error"
		if exposeErrors {
			detail = fmt.Sprintf("%v", recovered)
		}
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte(errorPage(detail)))
		c.Abort()
	})
}
