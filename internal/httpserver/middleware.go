package httpserver

import (
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"digihub/internal/handler"
	"digihub/pkg/logger"
	"digihub/pkg/metrics"
	"digihub/pkg/rbac"
	"digihub/pkg/trace"
	"digihub/pkg/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// AuthMiddleware validates the bearer token and stores user id and role on the context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.ExtractToken(c.Request)
		if token == "" {
			abort(c, http.StatusUnauthorized, "missing token")
			return
		}

		claims, err := util.ParseJWT(token, jwtSecret)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid token")
			return
		}

		c.Set(handler.ContextUserID, claims.UserID)
		c.Set(handler.ContextRole, rbac.Normalize(claims.Role))
		c.Next()
	}
}

// RequirePermission rejects callers whose role lacks permission.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(handler.ContextUserID); !ok {
			abort(c, http.StatusUnauthorized, "user not authenticated")
			return
		}
		role, _ := c.Get(handler.ContextRole)
		roleStr, _ := role.(string)
		if err := rbac.CheckPermission(roleStr, permission); err != nil {
			abort(c, http.StatusForbidden, err.Error())
			return
		}
		c.Next()
	}
}

// TraceMiddleware propagates X-Trace-ID, generating one when absent.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := trace.FromHeader(c.GetHeader(trace.HeaderName))
		c.Request = c.Request.WithContext(trace.WithContext(c.Request.Context(), traceID))
		c.Header(trace.HeaderName, traceID)
		c.Next()
	}
}

// RecoveryMiddleware turns a panic into a 500 envelope. The stack is only
// returned to the client in dev mode.
func RecoveryMiddleware(log *zap.Logger, devMode bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				logger.WithTrace(c.Request.Context(), log).Error("Panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.String("stack", stack),
				)
				body := gin.H{"success": false, "message": "Internal server error"}
				if devMode {
					body["stack"] = stack
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, body)
			}
		}()
		c.Next()
	}
}

// RequestLogMiddleware writes one log line per request.
func RequestLogMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if uid, ok := c.Get(handler.ContextUserID); ok {
			fields = append(fields, zap.Any("user_id", uid))
		}
		logger.WithTrace(c.Request.Context(), log).Info("HTTP request", fields...)
	}
}

// MetricsMiddleware records request latency keyed by route template.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequestDuration(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
