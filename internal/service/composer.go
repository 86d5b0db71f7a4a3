package service

import (
	"errors"
	"scholar-agent-go/internal/model"
	"scholar-agent-go/pkg/llm"
	"strings"
)

var errNoCurrentTurn = errors.New("conversation has no turn to answer")

// Composer 把对话日志、附件和实时文档组装成一次模型请求。
type Composer struct {
	model        string
	system       string
	historyLimit int
}

// NewComposer 创建 Composer。historyLimit 为 0 表示携带全部历史。
func NewComposer(modelID, systemInstruction string, historyLimit int) *Composer {
	return &Composer{model: modelID, system: systemInstruction, historyLimit: historyLimit}
}

// Compose 以日志中最新的一条作为当前轮，其余作为历史。
// document 必须是发送时刻读取的实时文档。
func (c *Composer) Compose(turns []model.Turn, attachments []model.Attachment, document string) (llm.Request, error) {
	if len(turns) == 0 {
		return llm.Request{}, errNoCurrentTurn
	}
	prior, current := turns[:len(turns)-1], turns[len(turns)-1]

	history := c.historyContents(prior)
	contents := make([]llm.Content, 0, len(history)+1)
	contents = append(contents, history...)
	contents = append(contents, llm.Content{
		Role:  llm.RoleUser,
		Parts: currentParts(current.Text, attachments, document),
	})

	return llm.Request{
		Model:             c.model,
		Contents:          contents,
		SystemInstruction: c.system,
	}, nil
}

func (c *Composer) historyContents(prior []model.Turn) []llm.Content {
	kept := make([]model.Turn, 0, len(prior))
	for _, t := range prior {
		if t.IsLoading {
			continue
		}
		kept = append(kept, t)
	}
	if c.historyLimit > 0 && len(kept) > c.historyLimit {
		kept = kept[len(kept)-c.historyLimit:]
	}

	out := make([]llm.Content, 0, len(kept))
	for _, t := range kept {
		text := t.Text
		if t.Role == model.RoleModel && t.HasSuggestion() {
			text += suggestionNoteHeader + t.SuggestedContent
		}
		out = append(out, llm.Content{Role: toLLMRole(t.Role), Parts: []llm.Part{llm.TextPart(text)}})
	}
	return out
}

// currentParts 顺序：附件、用户原文、实时文档尾注。
func currentParts(text string, attachments []model.Attachment, document string) []llm.Part {
	parts := make([]llm.Part, 0, len(attachments)+2)
	for _, a := range attachments {
		parts = append(parts, llm.InlinePart(a.MIMEType, a.Data))
	}
	if text != "" {
		parts = append(parts, llm.TextPart(text))
	}
	parts = append(parts, llm.TextPart(documentTrailer(document)))
	return parts
}

func documentTrailer(document string) string {
	var b strings.Builder
	b.Grow(len(documentTrailerHead) + len(document) + len(documentTrailerTail))
	b.WriteString(documentTrailerHead)
	b.WriteString(document)
	b.WriteString(documentTrailerTail)
	return b.String()
}

// oneShot 组装不带历史的单轮请求（APA 和风险分析）。
func oneShot(modelID, prompt, responseMIME string) llm.Request {
	return llm.Request{
		Model:            modelID,
		Contents:         []llm.Content{{Role: llm.RoleUser, Parts: []llm.Part{llm.TextPart(prompt)}}},
		ResponseMIMEType: responseMIME,
	}
}

func toLLMRole(r model.Role) llm.Role {
	if r == model.RoleUser {
		return llm.RoleUser
	}
	return llm.RoleModel
}
