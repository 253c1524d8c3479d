package gateway

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// handleNoRoute answers unknown API paths with JSON and everything else
// from the static frontend, falling back to index.html for client routes.
func (s *Server) handleNoRoute(c *gin.Context) {
	path := c.Request.URL.Path
	if path == apiPrefix || strings.HasPrefix(path, apiPrefix+"/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "API route not found"})
		return
	}
	if s.static == nil || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	if target, err := s.static.Resolve(strings.TrimPrefix(path, "/")); err == nil {
		if info, err := os.Stat(target); err == nil && info.Mode().IsRegular() {
			c.File(target)
			return
		}
	}

	index := filepath.Join(s.static.Dir(), "index.html")
	if _, err := os.Stat(index); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	c.File(index)
}
