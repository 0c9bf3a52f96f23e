// Package middleware 提供HTTP中间件
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"filesafe/internal/logger"
)

// LoggerMiddleware 日志中间件
type LoggerMiddleware struct {
	logger *logrus.Logger
}

// NewLoggerMiddleware 创建日志中间件实例
func NewLoggerMiddleware() *LoggerMiddleware {
	return &LoggerMiddleware{
		logger: logger.GetLogger(),
	}
}

// RequestLogger 请求日志中间件
// 记录每个请求的方法、路径、状态码和耗时
func (m *LoggerMiddleware) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		errorMessage := c.Errors.String()

		m.logger.WithFields(logrus.Fields{
			"status":        status,
			"latency":       latency.String(),
			"client_ip":     c.ClientIP(),
			"method":        c.Request.Method,
			"path":          path,
			"raw_query":     raw,
			"error_message": errorMessage,
		}).Info("HTTP Request")
	}
}
