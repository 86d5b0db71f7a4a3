// Package model 包含了应用的数据模型定义。
package model

import (
	"time"

	"github.com/google/uuid"
)

// Role 表示一轮对话的作者。
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn 代表对话日志中的一条记录。追加后不可变，加载中的占位记录只会被整体替换。
type Turn struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // Unix 毫秒
	// SuggestedContent 是模型提议的完整文档替换文本
	SuggestedContent string      `json:"suggestedContent,omitempty"`
	RiskAnalysis     *RiskReport `json:"riskAnalysis,omitempty"`
	IsLoading        bool        `json:"isLoading,omitempty"`
	IsError          bool        `json:"isError,omitempty"`
}

// HasSuggestion 判断该轮是否携带完整文档的改写建议。
func (t Turn) HasSuggestion() bool {
	return t.SuggestedContent != ""
}

// NewTurn 以新的 id 和当前时间创建一条记录。
func NewTurn(role Role, text string) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewLoadingTurn 创建模型回复到达前显示的占位记录。
func NewLoadingTurn() Turn {
	t := NewTurn(RoleModel, "")
	t.IsLoading = true
	return t
}

// NewErrorTurn 创建面向用户的错误记录。
func NewErrorTurn(text string) Turn {
	t := NewTurn(RoleModel, text)
	t.IsError = true
	return t
}

// Clone 返回深拷贝，RiskAnalysis 及其 Details 不与原记录共享。
func (t Turn) Clone() Turn {
	if t.RiskAnalysis != nil {
		report := *t.RiskAnalysis
		if t.RiskAnalysis.Details != nil {
			report.Details = make([]CriterionScore, len(t.RiskAnalysis.Details))
			copy(report.Details, t.RiskAnalysis.Details)
		}
		t.RiskAnalysis = &report
	}
	return t
}
