// Package repository 提供了会话状态的数据访问层实现（仅内存，进程退出即丢失）。
package repository

import (
	"errors"
	"fmt"
	"scholar-agent-go/internal/model"
	"sync"
)

// ErrTurnNotFound 表示指定 id 的对话记录不存在。
var ErrTurnNotFound = errors.New("turn not found")

// ConversationRepository 定义了对话日志的操作接口。记录严格按追加顺序保存。
type ConversationRepository interface {
	Append(turn model.Turn)
	// Replace 用新记录整体替换指定 id 的记录（用于加载占位记录）。
	Replace(id string, turn model.Turn) error
	Get(id string) (model.Turn, error)
	List() []model.Turn
	Len() int
}

type memoryConversationRepository struct {
	mu    sync.RWMutex
	turns []model.Turn
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例，可选地带有初始记录。
func NewConversationRepository(initial ...model.Turn) ConversationRepository {
	turns := make([]model.Turn, len(initial))
	for i, t := range initial {
		turns[i] = t.Clone()
	}
	return &memoryConversationRepository{turns: turns}
}

func (r *memoryConversationRepository) Append(turn model.Turn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = append(r.turns, turn.Clone())
}

func (r *memoryConversationRepository) Replace(id string, turn model.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.turns {
		if r.turns[i].ID == id {
			r.turns[i] = turn.Clone()
			return nil
		}
	}
	return fmt.Errorf("replace %s: %w", id, ErrTurnNotFound)
}

func (r *memoryConversationRepository) Get(id string) (model.Turn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.turns {
		if t.ID == id {
			return t.Clone(), nil
		}
	}
	return model.Turn{}, fmt.Errorf("get %s: %w", id, ErrTurnNotFound)
}

// List 返回日志的深拷贝，调用方修改（包括风险报告）不会影响仓库。
func (r *memoryConversationRepository) List() []model.Turn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Turn, len(r.turns))
	for i, t := range r.turns {
		out[i] = t.Clone()
	}
	return out
}

func (r *memoryConversationRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.turns)
}
