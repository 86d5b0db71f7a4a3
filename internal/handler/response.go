// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"
	"scholar-agent-go/internal/repository"
	"scholar-agent-go/internal/service"

	"github.com/gin-gonic/gin"
)

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"code": status, "message": message, "data": nil})
}

// statusFor 把业务错误映射为 HTTP 状态码；未知错误一律视为 500。
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEmptyInput), errors.Is(err, service.ErrAttachmentRead):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, repository.ErrTurnNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNoSuggestion):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrAttachmentTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrAttachmentType):
		return http.StatusUnsupportedMediaType
	}
	return http.StatusInternalServerError
}

func respondServiceError(c *gin.Context, err error) {
	respondError(c, statusFor(err), err.Error())
}
