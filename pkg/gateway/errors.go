package gateway

import (
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harun/nanoboard/internal/observability"
	"github.com/harun/nanoboard/internal/tracing"
	"github.com/harun/nanoboard/pkg/auth"
	"github.com/harun/nanoboard/pkg/configstore"
	"github.com/harun/nanoboard/pkg/cron"
	"github.com/harun/nanoboard/pkg/resource"
	"github.com/harun/nanoboard/pkg/sandbox"
	"github.com/harun/nanoboard/pkg/skill"
	"github.com/harun/nanoboard/pkg/store"
	"github.com/harun/nanoboard/pkg/workspace"
)

const internalErrorMessage = "Internal server error"

// badRequest lists errors whose message is safe to show the caller.
var badRequest = []error{
	workspace.ErrPathRequired,
	workspace.ErrIsDirectory,
	workspace.ErrNotDirectory,
	store.ErrInvalidEntry,
	cron.ErrInvalidSchedule,
	cron.ErrIDRequired,
	skill.ErrNameRequired,
	configstore.ErrInvalidDocument,
}

// writeError maps a domain error onto a status and a public message. Details
// of unexpected failures are logged and never returned.
func (s *Server) writeError(c *gin.Context, op string, err error) {
	logger := tracing.LoggerFromContext(c.Request.Context(), s.logger)

	var throttled *auth.ThrottledError
	switch {
	case errors.Is(err, sandbox.ErrAccessDenied):
		s.metrics.RecordDenied(op)
		observability.RecordSecurityAudit(c.Request.Context(), "access.denied", map[string]interface{}{
			"operation": op,
			"path":      c.Request.URL.Path,
		})
		logger.Warn().Err(err).Str("op", op).Msg("Access denied")
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.As(err, &throttled):
		c.Header("Retry-After", strconv.Itoa(throttled.RetryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":      "Too many login attempts",
			"retryAfter": throttled.RetryAfter,
		})
	case errors.Is(err, resource.ErrNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, configstore.ErrSnapshotNotFound),
		errors.Is(err, fs.ErrNotExist):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, workspace.ErrExists):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Already exists"})
	case isBadRequest(err):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrMalformed), errors.Is(err, configstore.ErrMalformed):
		logger.Warn().Err(err).Str("op", op).Msg("Stored document is malformed")
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Stored document is malformed"})
	default:
		logger.Error().Err(err).Str("op", op).Msg("Request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
	}
}

func isBadRequest(err error) bool {
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// bind decodes a JSON body and answers 400 itself on failure.
func bind(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}
