package gateway

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(s.recoveryMiddleware(), s.traceMiddleware(), s.accessLogMiddleware())
	if mw := s.corsMiddleware(); mw != nil {
		engine.Use(mw)
	}
	engine.Use(s.drainMiddleware())

	engine.GET("/healthz", s.handleHealth)
	if s.metrics != nil {
		engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	public := engine.Group(apiPrefix + "/auth")
	public.POST("/login", s.handleLogin)
	public.GET("/verify", s.handleVerify)

	api := engine.Group(apiPrefix, s.requireAuth())

	files := api.Group("/fs")
	files.GET("/tree", s.handleTree)
	files.GET("/content", s.handleContent)
	files.POST("/save", s.handleSaveFile)
	files.POST("/delete", s.handleDeleteFile)
	files.POST("/rename", s.handleRenameFile)
	if s.hub != nil {
		files.GET("/watch", s.handleWatch)
		files.GET("/watch/clients", s.handleWatchClients)
	}

	sessions := api.Group("/session")
	sessions.GET("/list", s.handleMemoryList)
	sessions.GET("/memory/:id", s.handleMemoryGet)
	sessions.POST("/memory/:id", s.handleMemorySave)
	sessions.POST("/delete/:id", s.handleMemoryDelete)
	sessions.GET("/chat/list", s.handleChatList)
	sessions.GET("/chat/:id", s.handleChatGet)

	skills := api.Group("/skill")
	skills.GET("/list", s.handleSkillList)
	skills.POST("/save", s.handleSkillSave)
	skills.GET("/:id/content", s.handleSkillContent)
	skills.POST("/:id/toggle", s.handleSkillToggle)
	skills.POST("/:id/delete", s.handleSkillDelete)

	jobs := api.Group("/cron")
	jobs.GET("/list", s.handleJobList)
	jobs.GET("/preview", s.handleJobPreview)
	jobs.POST("/add", s.handleJobAdd)
	jobs.POST("/update", s.handleJobUpdate)
	jobs.POST("/remove", s.handleJobRemove)
	jobs.POST("/enable", s.handleJobEnable)

	configs := api.Group("/config")
	configs.GET("/load", s.handleConfigLoad)
	configs.POST("/save", s.handleConfigSave)
	configs.POST("/validate", s.handleConfigValidate)
	configs.GET("/history", s.handleConfigHistory)
	configs.POST("/restore", s.handleConfigRestore)
	configs.POST("/history/delete", s.handleConfigDeleteVersion)

	api.GET("/system/info", s.handleSystemInfo)

	engine.NoRoute(s.handleNoRoute)
	return engine
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"uptime":       time.Since(s.startAt).Round(time.Second).String(),
		"watchClients": s.clients.Count(),
	})
}
