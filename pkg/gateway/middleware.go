package gateway

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/harun/nanoboard/internal/tracing"
	"github.com/harun/nanoboard/pkg/auth"
)

// traceMiddleware attaches a trace id and the client key to the request
// context and echoes the trace id back.
func (s *Server) traceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := tracing.FromRequest(c.Request.Context(), c.Request)
		ctx = tracing.WithClientKey(ctx, auth.ClientKey(c.Request))
		c.Request = c.Request.WithContext(ctx)
		c.Header(tracing.TraceHeader, tracing.GetTraceID(ctx))
		c.Next()
	}
}

// accessLogMiddleware records request metrics and a debug access line.
func (s *Server) accessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		s.metrics.ObserveRequest(c.Request.Method, c.FullPath(), status, elapsed)

		logger := tracing.LoggerFromContext(c.Request.Context(), s.logger)
		event := logger.Debug()
		if status >= http.StatusInternalServerError {
			event = logger.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Int("status", status).
			Dur("elapsed", elapsed).
			Msg("Request handled")
	}
}

// recoveryMiddleware turns panics into a generic 500.
func (s *Server) recoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered interface{}) {
		logger := tracing.LoggerFromContext(c.Request.Context(), s.logger)
		logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
	})
}

// drainMiddleware refuses new work once shutdown has begun.
func (s *Server) drainMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.shuttingDown() {
			c.Header("Connection", "close")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Server is shutting down"})
			return
		}
		c.Next()
	}
}

// corsMiddleware returns nil when no origin is allowed.
func (s *Server) corsMiddleware() gin.HandlerFunc {
	if len(s.corsOrigins) == 0 {
		return nil
	}
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Authorization", "Content-Type", tracing.TraceHeader},
		ExposeHeaders: []string{tracing.TraceHeader, "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range s.corsOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			break
		}
	}
	if !cfg.AllowAllOrigins {
		cfg.AllowOrigins = s.corsOrigins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// requireAuth accepts a bearer header or, for websocket upgrades, a token
// query parameter.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.Request)
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		claims, err := s.auth.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		ctx := tracing.WithSubject(c.Request.Context(), claims.Role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
