package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turbokuzmich/yourcosmetics/internal/domain/identity"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/logging"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/security"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "requestId"
	clientIPKey     = "clientIp"
	maxRequestIDLen = 64
)

// RequestID propagates a sane inbound X-Request-ID or assigns a ULID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if !validRequestID(id) {
			id = security.GenerateULID()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// ClientIP resolves the client address once per request. Forwarding headers
// are honoured only when trustProxy is set.
func ClientIP(trustProxy bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(clientIPKey, identity.ClientIP(c.Request.Header, c.Request.RemoteAddr, trustProxy))
		c.Next()
	}
}

// GetClientIP returns the address resolved by ClientIP, or the socket peer
// when the middleware did not run.
func GetClientIP(c *gin.Context) string {
	if ip := c.GetString(clientIPKey); ip != "" {
		return ip
	}
	return identity.ClientIP(c.Request.Header, c.Request.RemoteAddr, false)
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return false
		}
	}
	return true
}

// RequestLogger writes one line per request to the http channel.
func RequestLogger(logger *logging.ChanneledLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"ip", logging.MaskSessionID(GetClientIP(c)),
			"requestId", GetRequestID(c),
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.HTTP().Error("Request completed", attrs...)
		case status >= http.StatusBadRequest:
			logger.HTTP().Warn("Request completed", attrs...)
		default:
			logger.HTTP().Info("Request completed", attrs...)
		}
	}
}

// BodyLimit caps how many bytes a handler may read from the request body.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// Recovery converts panics into a generic 500 and logs them on the system
// channel.
func Recovery(logger *logging.ChanneledLogger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.System().Error("Panic recovered",
			"panic", recovered,
			"path", c.Request.URL.Path,
			"requestId", GetRequestID(c))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}
