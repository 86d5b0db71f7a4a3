// Package llm provides a client for interacting with Large Language Models.
package llm

import "context"

// Role 是模型侧的角色词汇。
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Part 是一段内容：要么是文本，要么是内联数据（MIMEType + base64 Data）。
type Part struct {
	Text     string
	MIMEType string
	Data     string
}

// IsInline 判断该 part 是否为内联数据。
func (p Part) IsInline() bool {
	return p.MIMEType != ""
}

// TextPart 创建一个文本 part。
func TextPart(text string) Part {
	return Part{Text: text}
}

// InlinePart 创建一个内联数据 part。
func InlinePart(mimeType, base64Data string) Part {
	return Part{MIMEType: mimeType, Data: base64Data}
}

// Content 是一条带角色的对话内容。
type Content struct {
	Role  Role
	Parts []Part
}

// Request 是一次生成请求。
type Request struct {
	Model             string
	Contents          []Content
	SystemInstruction string
	// ResponseMIMEType 为 "application/json" 时强制模型输出 JSON
	ResponseMIMEType string
}

// GenerationParams 控制生成行为，nil 字段表示使用模型默认值。
type GenerationParams struct {
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Client defines the interface for an LLM client.
type Client interface {
	// Generate 发送一次请求并返回模型生成的完整文本。
	// 返回的错误可以用 errors.Is 判断 ErrTransport / ErrModel。
	Generate(ctx context.Context, req Request) (string, error)
}
