package handler

import (
	"net/http"
	"scholar-agent-go/internal/service"
	"scholar-agent-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// SessionHandler 负责文档编辑和附件相关的 API 请求。
type SessionHandler struct {
	agentService service.AgentService
}

// NewSessionHandler 创建一个新的 SessionHandler。
func NewSessionHandler(agentService service.AgentService) *SessionHandler {
	return &SessionHandler{agentService: agentService}
}

// GetSession 返回当前会话快照。
func (h *SessionHandler) GetSession(c *gin.Context) {
	respondOK(c, h.agentService.Snapshot())
}

// UpdateDocumentRequest 是编辑器提交的整篇文档。Content 允许为空串。
type UpdateDocumentRequest struct {
	Content *string `json:"content" binding:"required"`
}

// UpdateDocument 用编辑器中的实时文本替换文档。
func (h *SessionHandler) UpdateDocument(c *gin.Context) {
	var req UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "无效的请求负载")
		return
	}
	h.agentService.UpdateDocument(*req.Content)
	respondOK(c, gin.H{"length": len(*req.Content)})
}

// UploadAttachment 接收 multipart 字段 "file"，编码后加入待发送列表。
func (h *SessionHandler) UploadAttachment(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "缺少文件字段 file")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		log.Error("UploadAttachment: failed to open file", err)
		respondError(c, http.StatusBadRequest, "无法读取上传的文件")
		return
	}
	defer file.Close()

	info, err := h.agentService.Attach(fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		log.Warnf("UploadAttachment: rejected %s: %v", fileHeader.Filename, err)
		respondServiceError(c, err)
		return
	}
	respondOK(c, info)
}

// ClearAttachments 丢弃所有待发送附件。
func (h *SessionHandler) ClearAttachments(c *gin.Context) {
	h.agentService.ClearAttachments()
	respondOK(c, nil)
}
