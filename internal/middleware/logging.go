package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger creates a logging middleware for HTTP requests
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		fields := logrus.Fields{
			"timestamp":  param.TimeStamp.Format(time.RFC3339),
			"method":     param.Method,
			"path":       param.Path,
			"status":     param.StatusCode,
			"latency":    param.Latency,
			"client_ip":  param.ClientIP,
			"user_agent": param.Request.UserAgent(),
		}

		if userID, exists := param.Keys["user_id"]; exists {
			fields["user_id"] = userID
		}

		if workspaceID, exists := param.Keys["workspace_id"]; exists {
			fields["workspace_id"] = workspaceID
		}

		switch {
		case param.StatusCode >= 500:
			logger.WithFields(fields).Error("HTTP Request")
		case param.StatusCode >= 400:
			logger.WithFields(fields).Warn("HTTP Request")
		default:
			logger.WithFields(fields).Info("HTTP Request")
		}

		return ""
	})
}

// SecurityLogger logs security-related events
func SecurityLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		fields := logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"client_ip":  c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		}
		if userID, exists := c.Get("user_id"); exists {
			fields["user_id"] = userID
		}

		switch c.Writer.Status() {
		case 401:
			fields["event"] = "unauthorized_access"
			logger.WithFields(fields).Warn("Unauthorized access attempt")
		case 403:
			fields["event"] = "forbidden_access"
			logger.WithFields(fields).Warn("Forbidden access attempt")
		case 429:
			fields["event"] = "rate_limit_exceeded"
			logger.WithFields(fields).Warn("Rate limit exceeded")
		}
	}
}
