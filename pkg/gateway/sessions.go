package gateway

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harun/nanoboard/pkg/resource"
)

type memoryRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleMemoryList(c *gin.Context) {
	entries, err := s.memories.List()
	if err != nil {
		s.writeError(c, "memory.list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": entries, "total": len(entries)})
}

// handleMemoryGet answers an unknown memory with empty content.
func (s *Server) handleMemoryGet(c *gin.Context) {
	content, err := s.memories.Get(c.Param("id"))
	if err != nil {
		s.writeError(c, "memory.get", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": content})
}

func (s *Server) handleMemorySave(c *gin.Context) {
	var req memoryRequest
	if !bind(c, &req) {
		return
	}
	id := c.Param("id")
	if err := s.memories.Save(id, req.Content); err != nil {
		s.writeError(c, "memory.save", err)
		return
	}
	s.audit(c, "memory.save", id)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleMemoryDelete(c *gin.Context) {
	id := c.Param("id")
	if err := s.memories.Delete(id); err != nil {
		s.writeError(c, "memory.delete", err)
		return
	}
	s.audit(c, "memory.delete", id)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleChatList(c *gin.Context) {
	summaries, err := s.sessions.List()
	if err != nil {
		s.writeError(c, "chat.list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": summaries, "total": len(summaries)})
}

func (s *Server) handleChatGet(c *gin.Context) {
	messages, err := s.sessions.Get(c.Param("id"))
	if errors.Is(err, resource.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"success": false, "messages": []resource.Message{}, "message": "Not found"})
		return
	}
	if err != nil {
		s.writeError(c, "chat.get", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "messages": messages})
}
