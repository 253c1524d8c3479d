package gateway

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harun/nanoboard/pkg/resource"
)

type toggleSkillRequest struct {
	Enabled bool `json:"enabled"`
}

type saveSkillRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

func (s *Server) handleSkillList(c *gin.Context) {
	skills, err := s.skills.List()
	if err != nil {
		s.writeError(c, "skill.list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"skills": skills})
}

func (s *Server) handleSkillContent(c *gin.Context) {
	content, err := s.skills.Content(c.Param("id"))
	if errors.Is(err, resource.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"success": false, "content": ""})
		return
	}
	if err != nil {
		s.writeError(c, "skill.content", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "content": content})
}

func (s *Server) handleSkillToggle(c *gin.Context) {
	var req toggleSkillRequest
	if !bind(c, &req) {
		return
	}
	id := c.Param("id")
	if err := s.skills.Toggle(id, req.Enabled); err != nil {
		s.writeError(c, "skill.toggle", err)
		return
	}
	s.audit(c, "skill.toggle", id)
	c.JSON(http.StatusOK, gin.H{"success": true, "enabled": req.Enabled})
}

func (s *Server) handleSkillDelete(c *gin.Context) {
	id := c.Param("id")
	if err := s.skills.Delete(id); err != nil {
		s.writeError(c, "skill.delete", err)
		return
	}
	s.audit(c, "skill.delete", id)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleSkillSave(c *gin.Context) {
	var req saveSkillRequest
	if !bind(c, &req) {
		return
	}
	id, err := s.skills.Save(req.Name, req.Content)
	if err != nil {
		s.writeError(c, "skill.save", err)
		return
	}
	s.audit(c, "skill.save", id)
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}
