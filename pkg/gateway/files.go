package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harun/nanoboard/internal/observability"
)

type saveFileRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type deleteFileRequest struct {
	Path   string `json:"path"`
	IsFile bool   `json:"isFile"`
}

type renameFileRequest struct {
	Path    string `json:"path"`
	NewName string `json:"newName"`
}

func (s *Server) handleTree(c *gin.Context) {
	entries, err := s.files.Tree(c.Query("path"))
	if err != nil {
		s.writeError(c, "fs.tree", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleContent(c *gin.Context) {
	content, err := s.files.ReadContent(c.Query("path"))
	if err != nil {
		s.writeError(c, "fs.content", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": content})
}

func (s *Server) handleSaveFile(c *gin.Context) {
	var req saveFileRequest
	if !bind(c, &req) {
		return
	}
	if err := s.files.Save(req.Path, req.Content); err != nil {
		s.writeError(c, "fs.save", err)
		return
	}
	s.audit(c, "fs.save", req.Path)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleDeleteFile ignores isFile; the browser decides from what is on disk.
func (s *Server) handleDeleteFile(c *gin.Context) {
	var req deleteFileRequest
	if !bind(c, &req) {
		return
	}
	if err := s.files.Delete(req.Path); err != nil {
		s.writeError(c, "fs.delete", err)
		return
	}
	s.audit(c, "fs.delete", req.Path)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleRenameFile(c *gin.Context) {
	var req renameFileRequest
	if !bind(c, &req) {
		return
	}
	newPath, err := s.files.Rename(req.Path, req.NewName)
	if err != nil {
		s.writeError(c, "fs.rename", err)
		return
	}
	s.audit(c, "fs.rename", req.Path)
	c.JSON(http.StatusOK, gin.H{"success": true, "path": newPath})
}

// audit records a successful mutation of the managed directory.
func (s *Server) audit(c *gin.Context, action, target string) {
	observability.RecordChangeAudit(c.Request.Context(), observability.TypeStore, action, map[string]interface{}{
		"target": target,
	})
}
