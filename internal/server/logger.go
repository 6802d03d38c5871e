// file: internal/server/logger.go
// version: 2.0.0
// guid: 1d2e3f4a-5b6c-7d8e-9f0a-1b2c3d4e5f6a

package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/brandmatch/internal/logger"
	"github.com/jdfalk/brandmatch/internal/server/middleware"
	"go.uber.org/zap"
)

// OperationLogger tracks the lifecycle of a handler operation
type OperationLogger struct {
	handler    string
	method     string
	path       string
	startTime  time.Time
	requestID  string
	resourceID string
	details    map[string]any
	log        *zap.Logger
}

// NewOperationLogger creates a new operation logger
func NewOperationLogger(handler, method, path, requestID string) *OperationLogger {
	return &OperationLogger{
		handler:   handler,
		method:    method,
		path:      path,
		startTime: time.Now(),
		requestID: requestID,
		details:   make(map[string]any),
		log:       logger.L(),
	}
}

// operationFor builds an OperationLogger from the request context.
func operationFor(c *gin.Context, handler string) *OperationLogger {
	return NewOperationLogger(handler, c.Request.Method, c.FullPath(), middleware.GetRequestID(c))
}

// SetResourceID sets the resource ID being operated on
func (ol *OperationLogger) SetResourceID(id string) {
	ol.resourceID = id
}

// AddDetail adds a contextual detail to the operation log
func (ol *OperationLogger) AddDetail(key string, value any) {
	ol.details[key] = value
}

func (ol *OperationLogger) fields() []zap.Field {
	fields := []zap.Field{
		zap.String("handler", ol.handler),
		zap.String("method", ol.method),
		zap.String("path", ol.path),
		zap.String("request_id", ol.requestID),
	}
	if ol.resourceID != "" {
		fields = append(fields, zap.String("resource_id", ol.resourceID))
	}
	for k, v := range ol.details {
		fields = append(fields, zap.Any(k, v))
	}
	return fields
}

// LogStart logs the start of the operation
func (ol *OperationLogger) LogStart() {
	ol.log.Debug("operation started", ol.fields()...)
}

// LogSuccess logs the successful completion of the operation
func (ol *OperationLogger) LogSuccess(statusCode int) {
	ol.log.Info("operation completed", append(ol.fields(),
		zap.Int("status", statusCode),
		zap.Duration("duration", time.Since(ol.startTime)),
	)...)
}

// LogError logs an error that occurred during the operation
func (ol *OperationLogger) LogError(statusCode int, err error) {
	ol.log.Error("operation failed", append(ol.fields(),
		zap.Int("status", statusCode),
		zap.Duration("duration", time.Since(ol.startTime)),
		zap.Error(err),
	)...)
}

// LogWarning logs a warning message
func (ol *OperationLogger) LogWarning(message string) {
	ol.log.Warn(message, ol.fields()...)
}

// RequestLogging emits one access log line per request through zap.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.String("request_id", middleware.GetRequestID(c)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		logger.L().Info("request", fields...)
	}
}
