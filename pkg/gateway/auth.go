package gateway

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harun/nanoboard/pkg/auth"
)

type loginRequest struct {
	Password string `json:"password"`
}

// handleLogin runs one throttled login attempt for the caller's client key.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}

	token, err := s.auth.Login(c.Request.Context(), auth.ClientKey(c.Request), req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"token": token})
	case errors.Is(err, auth.ErrInvalidPassword):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
	case errors.Is(err, auth.ErrNotConfigured):
		s.logger.Error().Msg("Login attempted but no password is configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Password not configured on server"})
	default:
		s.writeError(c, "auth.login", err)
	}
}

// handleVerify reports whether the bearer token is still good.
func (s *Server) handleVerify(c *gin.Context) {
	token := bearerToken(c.Request)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false})
		return
	}
	if _, err := s.auth.Verify(token); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}
