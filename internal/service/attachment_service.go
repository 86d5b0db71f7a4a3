package service

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"scholar-agent-go/internal/config"
	"scholar-agent-go/internal/model"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrAttachmentRead 表示文件内容无法读取。
	ErrAttachmentRead = errors.New("attachment could not be read")
	// ErrAttachmentTooLarge 表示文件超过配置的大小上限。
	ErrAttachmentTooLarge = errors.New("attachment exceeds size limit")
	// ErrAttachmentType 表示文件类型不在允许列表中。
	ErrAttachmentType = errors.New("attachment type not allowed")
)

// AttachmentService 负责把用户选择的文件编码为待发送附件，并维护待发送列表。
type AttachmentService interface {
	Attach(name, declaredType string, r io.Reader) (model.AttachmentInfo, error)
	Pending() []model.AttachmentInfo
	// Drain 取出并清空待发送列表，在一轮消息发送时调用。
	Drain() []model.Attachment
	Clear()
}

type attachmentService struct {
	maxBytes int64
	allowed  []string

	mu      sync.Mutex
	pending []model.Attachment
	sizes   []int
}

// NewAttachmentService 创建一个新的 AttachmentService 实例。
func NewAttachmentService(cfg config.AttachmentsConfig) AttachmentService {
	allowed := cfg.AllowedTypes
	if len(allowed) == 0 {
		allowed = []string{"application/pdf", "image/*"}
	}
	return &attachmentService{maxBytes: cfg.MaxBytes, allowed: allowed}
}

func (s *attachmentService) Attach(name, declaredType string, r io.Reader) (model.AttachmentInfo, error) {
	att, size, err := s.encode(name, declaredType, r)
	if err != nil {
		return model.AttachmentInfo{}, err
	}

	s.mu.Lock()
	s.pending = append(s.pending, att)
	s.sizes = append(s.sizes, size)
	s.mu.Unlock()

	return model.AttachmentInfo{Name: att.Name, MIMEType: att.MIMEType, Size: size}, nil
}

func (s *attachmentService) encode(name, declaredType string, r io.Reader) (model.Attachment, int, error) {
	limit := s.maxBytes
	if limit <= 0 {
		limit = 20 << 20
	}
	raw, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return model.Attachment{}, 0, fmt.Errorf("%w: %s: %v", ErrAttachmentRead, name, err)
	}
	if int64(len(raw)) > limit {
		return model.Attachment{}, 0, fmt.Errorf("%w: %s is larger than %d bytes", ErrAttachmentTooLarge, name, limit)
	}

	mimeType := normalizeMIME(declaredType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = normalizeMIME(mimetype.Detect(raw).String())
	}
	if !s.isAllowed(mimeType) {
		return model.Attachment{}, 0, fmt.Errorf("%w: %s (%s)", ErrAttachmentType, name, mimeType)
	}

	return model.Attachment{
		Name:     name,
		MIMEType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(raw),
	}, len(raw), nil
}

func (s *attachmentService) isAllowed(mimeType string) bool {
	for _, pattern := range s.allowed {
		if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
			if strings.HasPrefix(mimeType, prefix+"/") {
				return true
			}
			continue
		}
		if mimeType == pattern {
			return true
		}
	}
	return false
}

func (s *attachmentService) Pending() []model.AttachmentInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AttachmentInfo, len(s.pending))
	for i, a := range s.pending {
		out[i] = model.AttachmentInfo{Name: a.Name, MIMEType: a.MIMEType, Size: s.sizes[i]}
	}
	return out
}

func (s *attachmentService) Drain() []model.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	s.sizes = nil
	return out
}

func (s *attachmentService) Clear() {
	s.Drain()
}

// normalizeMIME 去掉参数部分（如 "; charset=utf-8"）并转为小写。
func normalizeMIME(t string) string {
	t, _, _ = strings.Cut(t, ";")
	return strings.ToLower(strings.TrimSpace(t))
}
