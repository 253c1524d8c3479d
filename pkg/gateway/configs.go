package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harun/nanoboard/internal/observability"
)

type configRequest struct {
	Config json.RawMessage `json:"config"`
}

type snapshotRequest struct {
	Filename string `json:"filename"`
}

// handleConfigLoad returns the stored document untouched, {} when absent.
func (s *Server) handleConfigLoad(c *gin.Context) {
	doc, err := s.configs.Load()
	if err != nil {
		s.writeError(c, "config.load", err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", doc)
}

func (s *Server) handleConfigSave(c *gin.Context) {
	var req configRequest
	if !bind(c, &req) {
		return
	}
	if err := s.configs.Save(req.Config); err != nil {
		s.writeError(c, "config.save", err)
		return
	}
	s.auditConfig(c, "config.save", s.configs.Path())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleConfigValidate(c *gin.Context) {
	var req configRequest
	if !bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, s.configs.Validate(req.Config))
}

func (s *Server) handleConfigHistory(c *gin.Context) {
	history, err := s.configs.History()
	if err != nil {
		s.writeError(c, "config.history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func (s *Server) handleConfigRestore(c *gin.Context) {
	var req snapshotRequest
	if !bind(c, &req) {
		return
	}
	if err := s.configs.Restore(req.Filename); err != nil {
		s.writeError(c, "config.restore", err)
		return
	}
	s.auditConfig(c, "config.restore", req.Filename)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleConfigDeleteVersion(c *gin.Context) {
	var req snapshotRequest
	if !bind(c, &req) {
		return
	}
	if err := s.configs.DeleteVersion(req.Filename); err != nil {
		s.writeError(c, "config.history.delete", err)
		return
	}
	s.auditConfig(c, "config.history.delete", req.Filename)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) auditConfig(c *gin.Context, action, target string) {
	observability.RecordChangeAudit(c.Request.Context(), observability.TypeConfig, action, map[string]interface{}{
		"target": target,
	})
}
