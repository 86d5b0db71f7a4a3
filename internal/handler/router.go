package handler

import (
	"scholar-agent-go/internal/middleware"
	"scholar-agent-go/internal/service"

	"github.com/gin-gonic/gin"
)

// NewRouter 创建路由引擎并注册全部 /api/v1 路由。
func NewRouter(agentService service.AgentService) *gin.Engine {
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	// 添加我们自定义的日志中间件和 Gin 的 Recovery 中间件
	r.Use(middleware.RequestLogger(), gin.Recovery())

	sessionHandler := NewSessionHandler(agentService)
	agentHandler := NewAgentHandler(agentService)
	eventsHandler := NewEventsHandler(agentService)

	apiV1 := r.Group("/api/v1")
	{
		apiV1.GET("/session", sessionHandler.GetSession)
		apiV1.PUT("/document", sessionHandler.UpdateDocument)

		attachments := apiV1.Group("/attachments")
		{
			attachments.POST("", sessionHandler.UploadAttachment)
			attachments.DELETE("", sessionHandler.ClearAttachments)
		}

		apiV1.POST("/chat", agentHandler.Chat)
		checks := apiV1.Group("/checks")
		{
			checks.POST("/apa", agentHandler.CheckAPA)
			checks.POST("/risk", agentHandler.AnalyzeRisk)
		}
		apiV1.POST("/suggestions/:turnId/apply", agentHandler.ApplySuggestion)

		// 会话事件 (WebSocket)
		apiV1.GET("/events", eventsHandler.Handle)
	}
	return r
}
