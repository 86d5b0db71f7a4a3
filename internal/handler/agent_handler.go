package handler

import (
	"net/http"
	"scholar-agent-go/internal/service"

	"github.com/gin-gonic/gin"
)

// AgentHandler 负责三种代理操作和应用建议的 API 请求。
// 模型调用失败不会返回错误状态，而是返回一条 isError 的记录。
type AgentHandler struct {
	agentService service.AgentService
}

// NewAgentHandler 创建一个新的 AgentHandler。
func NewAgentHandler(agentService service.AgentService) *AgentHandler {
	return &AgentHandler{agentService: agentService}
}

// ChatRequest 是一条用户消息，附件需预先通过 /attachments 上传。
type ChatRequest struct {
	Text string `json:"text"`
}

// Chat 处理通用对话/编辑请求。
func (h *AgentHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "无效的请求负载")
		return
	}
	turn, err := h.agentService.Chat(c.Request.Context(), req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, turn)
}

// CheckAPA 触发 APA 7 格式修正。
func (h *AgentHandler) CheckAPA(c *gin.Context) {
	res, err := h.agentService.CheckAPA(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, res)
}

// AnalyzeRisk 触发 desk rejection 风险分析。
func (h *AgentHandler) AnalyzeRisk(c *gin.Context) {
	turn, err := h.agentService.AnalyzeRisk(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, turn)
}

// ApplySuggestion 用户确认后把建议写入文档。
func (h *AgentHandler) ApplySuggestion(c *gin.Context) {
	turn, err := h.agentService.ApplySuggestion(c.Param("turnId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"turnId": turn.ID, "document": turn.SuggestedContent})
}
