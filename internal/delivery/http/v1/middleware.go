package v1

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-taskmaster/internal/models"
)

const (
	userCtxKey      = "user"
	requestIDCtxKey = "request_id"
	requestIDHeader = "X-Request-ID"
)

func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)
	if header == "" {
		h.logger.Debug().Msg("authorization header required")
		abort(c, newUnauthorizedError(errAuthorizationHeader.Error()))
		return
	}

	const bearerPrefix = "bearer"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerPrefix) || parts[1] == "" {
		h.logger.Debug().Msg("invalid authorization header")
		abort(c, newUnauthorizedError(errAuthorizationHeader.Error()))
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
	if err != nil {
		h.abortWithServiceError(c, err, "failed to authenticate")
		return
	}

	c.Set(userCtxKey, user)
	c.Next()
}

// currentUser returns the user stored by HandleAuthMiddleware.
func currentUser(c *gin.Context) *models.User {
	value, exists := c.Get(userCtxKey)
	if !exists {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

// RequestIDMiddleware propagates the X-Request-ID header, generating a new
// id when the client sent none.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDCtxKey, requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware writes one access log entry per request.
func LoggerMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		}
		event.
			Str("request_id", c.GetString(requestIDCtxKey)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("handled request")
	}
}
