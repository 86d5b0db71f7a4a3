package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport 表示无法到达模型端点（网络错误、超时）。
	ErrTransport = errors.New("llm transport error")
	// ErrModel 表示端点可达但返回了错误状态。
	ErrModel = errors.New("llm model error")
)

// Error 携带分类和可选的 HTTP 状态码。
type Error struct {
	Kind       error
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%v (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

// Is 让 errors.Is(err, ErrTransport) 之类的判断生效。
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func transportError(err error) error {
	return &Error{Kind: ErrTransport, Err: err}
}

func modelError(status int, err error) error {
	return &Error{Kind: ErrModel, StatusCode: status, Err: err}
}
