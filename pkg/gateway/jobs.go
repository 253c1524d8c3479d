package gateway

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harun/nanoboard/pkg/store"
)

const defaultPreviewRuns = 5

type jobRequest struct {
	Job store.Entry `json:"job"`
}

type jobIDRequest struct {
	ID      string `json:"id"`
	Disable bool   `json:"disable"`
}

func (s *Server) handleJobList(c *gin.Context) {
	jobs, err := s.jobs.List()
	if err != nil {
		s.writeError(c, "cron.list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "jobs": jobs})
}

func (s *Server) handleJobAdd(c *gin.Context) {
	var req jobRequest
	if !bind(c, &req) {
		return
	}
	job, err := s.jobs.Add(req.Job)
	if err != nil {
		s.writeError(c, "cron.add", err)
		return
	}
	s.audit(c, "cron.add", job.ID())
	c.JSON(http.StatusOK, gin.H{"success": true, "job": job})
}

func (s *Server) handleJobUpdate(c *gin.Context) {
	var req jobRequest
	if !bind(c, &req) {
		return
	}
	job, err := s.jobs.Update(req.Job)
	if err != nil {
		s.writeError(c, "cron.update", err)
		return
	}
	s.audit(c, "cron.update", job.ID())
	c.JSON(http.StatusOK, gin.H{"success": true, "job": job})
}

func (s *Server) handleJobRemove(c *gin.Context) {
	var req jobIDRequest
	if !bind(c, &req) {
		return
	}
	if err := s.jobs.Remove(req.ID); err != nil {
		s.writeError(c, "cron.remove", err)
		return
	}
	s.audit(c, "cron.remove", req.ID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleJobEnable(c *gin.Context) {
	var req jobIDRequest
	if !bind(c, &req) {
		return
	}
	job, err := s.jobs.Enable(req.ID, req.Disable)
	if err != nil {
		s.writeError(c, "cron.enable", err)
		return
	}
	s.audit(c, "cron.enable", req.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "job": job})
}

// handleJobPreview lists upcoming run times of ?expr= in ?tz=.
func (s *Server) handleJobPreview(c *gin.Context) {
	n := defaultPreviewRuns
	if raw := c.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "n must be a positive integer"})
			return
		}
		n = parsed
	}

	runs, err := s.jobs.Preview(c.Query("expr"), c.Query("tz"), n)
	if err != nil {
		s.writeError(c, "cron.preview", err)
		return
	}
	out := make([]string, 0, len(runs))
	for _, r := range runs {
		out = append(out, r.Format(time.RFC3339))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "runs": out})
}
