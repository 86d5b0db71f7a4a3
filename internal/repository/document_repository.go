package repository

import "sync"

// DocumentRepository 保存当前稿件文本。文本总是有定义的（初始为空串），只能整体替换。
type DocumentRepository interface {
	Get() string
	Replace(content string)
}

type memoryDocumentRepository struct {
	mu      sync.RWMutex
	content string
}

// NewDocumentRepository 创建一个新的 DocumentRepository。
func NewDocumentRepository(initial string) DocumentRepository {
	return &memoryDocumentRepository{content: initial}
}

func (r *memoryDocumentRepository) Get() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.content
}

func (r *memoryDocumentRepository) Replace(content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content = content
}
