// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"scholar-agent-go/internal/model"
	"scholar-agent-go/internal/repository"
	"scholar-agent-go/pkg/llm"
	"scholar-agent-go/pkg/log"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrEmptyInput 表示既没有文本也没有附件，不应发起调用。
	ErrEmptyInput = errors.New("message text and attachments are both empty")
	// ErrBusy 表示已有一个模型调用在途。
	ErrBusy = errors.New("another agent operation is in flight")
	// ErrNoSuggestion 表示指定记录不带文档改写建议。
	ErrNoSuggestion = errors.New("turn carries no suggested content")
)

const jsonMIME = "application/json"

// AgentOptions 是代理操作的运行参数。
type AgentOptions struct {
	Model           string
	RiskModel       string
	Timeout         time.Duration
	HistoryLimit    int
	APAAsSuggestion bool
}

// APAResult 是 APA 格式修正的结果。Text 总是模型返回的完整文档。
type APAResult struct {
	Text    string     `json:"text"`
	Applied bool       `json:"applied"`
	Turn    model.Turn `json:"turn"`
}

// AgentService 定义了会话上的全部命令：文档编辑、附件、三种代理操作和应用建议。
type AgentService interface {
	Snapshot() model.SessionSnapshot
	State() model.AgentState
	UpdateDocument(content string)
	Attach(name, declaredType string, r io.Reader) (model.AttachmentInfo, error)
	ClearAttachments()
	Chat(ctx context.Context, text string) (model.Turn, error)
	CheckAPA(ctx context.Context) (APAResult, error)
	AnalyzeRisk(ctx context.Context) (model.Turn, error)
	ApplySuggestion(turnID string) (model.Turn, error)
	Subscribe() (<-chan model.SessionSnapshot, func())
}

type agentService struct {
	docs        repository.DocumentRepository
	turns       repository.ConversationRepository
	attachments AttachmentService
	llmClient   llm.Client
	composer    *Composer
	prompts     Prompts
	opts        AgentOptions
	notifier    *Notifier

	inFlight atomic.Bool
	stateMu  sync.RWMutex
	state    model.AgentState
	op       model.Operation
}

// NewAgentService 创建 AgentService。会话创建时文档为空，日志中只有一条欢迎记录。
func NewAgentService(llmClient llm.Client, attachments AttachmentService, prompts Prompts, opts AgentOptions) AgentService {
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	return &agentService{
		docs:        repository.NewDocumentRepository(""),
		turns:       repository.NewConversationRepository(model.NewTurn(model.RoleModel, prompts.Welcome)),
		attachments: attachments,
		llmClient:   llmClient,
		composer:    NewComposer(opts.Model, prompts.System, opts.HistoryLimit),
		prompts:     prompts,
		opts:        opts,
		notifier:    NewNotifier(),
		state:       model.StateIdle,
	}
}

func (s *agentService) Snapshot() model.SessionSnapshot {
	s.stateMu.RLock()
	state, op := s.state, s.op
	s.stateMu.RUnlock()
	return model.SessionSnapshot{
		Document:    s.docs.Get(),
		Turns:       s.turns.List(),
		State:       state,
		Operation:   op,
		Attachments: s.attachments.Pending(),
	}
}

func (s *agentService) State() model.AgentState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

func (s *agentService) Subscribe() (<-chan model.SessionSnapshot, func()) {
	return s.notifier.Subscribe()
}

func (s *agentService) publish() {
	s.notifier.PublishWith(s.Snapshot)
}

// UpdateDocument 由编辑器在每次输入时调用。
func (s *agentService) UpdateDocument(content string) {
	s.docs.Replace(content)
	s.publish()
}

func (s *agentService) Attach(name, declaredType string, r io.Reader) (model.AttachmentInfo, error) {
	info, err := s.attachments.Attach(name, declaredType, r)
	if err != nil {
		return model.AttachmentInfo{}, err
	}
	s.publish()
	return info, nil
}

func (s *agentService) ClearAttachments() {
	s.attachments.Clear()
	s.publish()
}

// begin 执行 Idle→Sending，在途时拒绝。
func (s *agentService) begin(op model.Operation) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrBusy
	}
	s.setState(model.StateSending, op)
	return nil
}

// finish 执行 Sending→Done/Failed，通知观察者后回到 Idle。
func (s *agentService) finish(op model.Operation, failed bool) {
	terminal := model.StateDone
	if failed {
		terminal = model.StateFailed
	}
	s.setState(terminal, op)
	s.setState(model.StateIdle, "")
	s.inFlight.Store(false)
}

func (s *agentService) setState(state model.AgentState, op model.Operation) {
	s.stateMu.Lock()
	s.state, s.op = state, op
	s.stateMu.Unlock()
	s.publish()
}

// call 在有界超时内执行一次模型调用。调用方断开不会中止在途调用。
func (s *agentService) call(ctx context.Context, op model.Operation, req llm.Request) (string, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.Timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.llmClient.Generate(ctx, req)
	if err != nil {
		kind := "model"
		if errors.Is(err, llm.ErrTransport) {
			kind = "transport"
		}
		log.Errorw("Agent operation failed", "operation", op, "model", req.Model, "kind", kind,
			"latency", time.Since(start).String(), "error", err)
		return "", err
	}
	log.Infow("Agent operation finished", "operation", op, "model", req.Model,
		"latency", time.Since(start).String(), "replyLength", len(raw))
	return raw, nil
}

func (s *agentService) Chat(ctx context.Context, text string) (model.Turn, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return model.Turn{}, ErrBusy
	}
	// 在持有在途标志后取出附件再判空，避免与并发的清空操作交错
	attachments := s.attachments.Drain()
	if strings.TrimSpace(text) == "" && len(attachments) == 0 {
		s.inFlight.Store(false)
		return model.Turn{}, ErrEmptyInput
	}
	s.setState(model.StateSending, model.OperationChat)

	s.turns.Append(model.NewTurn(model.RoleUser, text))
	history := s.turns.List()
	placeholder := model.NewLoadingTurn()
	s.turns.Append(placeholder)
	s.publish()

	req, err := s.composer.Compose(history, attachments, s.docs.Get())
	if err != nil {
		return s.failChat(placeholder.ID, fmt.Errorf("compose request: %w", err)), nil
	}

	raw, err := s.call(ctx, model.OperationChat, req)
	if err != nil {
		return s.failChat(placeholder.ID, err), nil
	}

	result := Interpret(raw)
	turn := model.NewTurn(model.RoleModel, result.Text)
	if result.Kind == Suggestion {
		turn.SuggestedContent = result.Rewrite
	}
	s.replaceTurn(placeholder.ID, turn)
	log.Debugw("Chat reply interpreted", "kind", result.Kind.String(), "attachments", len(attachments))
	s.finish(model.OperationChat, false)
	return turn, nil
}

func (s *agentService) failChat(placeholderID string, err error) model.Turn {
	turn := model.NewErrorTurn(s.prompts.ErrorMsg)
	s.replaceTurn(placeholderID, turn)
	log.Error("Chat turn failed", err)
	s.finish(model.OperationChat, true)
	return turn
}

func (s *agentService) replaceTurn(id string, turn model.Turn) {
	if err := s.turns.Replace(id, turn); err != nil {
		// 占位记录总是存在；万一丢失则追加，保证结果可见
		log.Warnw("Placeholder turn missing, appending result", "id", id, "error", err)
		s.turns.Append(turn)
	}
}

// CheckAPA 单轮、无历史；成功后直接替换文档（或按配置走建议流程）。
func (s *agentService) CheckAPA(ctx context.Context) (APAResult, error) {
	if err := s.begin(model.OperationAPA); err != nil {
		return APAResult{}, err
	}

	document := s.docs.Get()
	raw, err := s.call(ctx, model.OperationAPA, oneShot(s.opts.Model, s.prompts.apaPrompt(document), ""))
	if err != nil {
		turn := model.NewErrorTurn(s.prompts.ErrorMsg)
		s.turns.Append(turn)
		s.finish(model.OperationAPA, true)
		return APAResult{Turn: turn}, nil
	}

	corrected := stripFence(raw)
	if strings.TrimSpace(corrected) == "" {
		corrected = document
	}

	result := APAResult{Text: corrected}
	if s.opts.APAAsSuggestion {
		result.Turn = model.NewTurn(model.RoleModel, apaSuggestedText)
		result.Turn.SuggestedContent = corrected
	} else {
		s.docs.Replace(corrected)
		result.Applied = true
		result.Turn = model.NewTurn(model.RoleModel, apaAppliedText)
	}
	s.turns.Append(result.Turn)
	s.finish(model.OperationAPA, false)
	return result, nil
}

// AnalyzeRisk 单轮、强制 JSON 输出；结果附在新记录上，不修改文档。
func (s *agentService) AnalyzeRisk(ctx context.Context) (model.Turn, error) {
	if err := s.begin(model.OperationRisk); err != nil {
		return model.Turn{}, err
	}

	req := oneShot(s.opts.RiskModel, s.prompts.riskPrompt(s.docs.Get()), jsonMIME)
	raw, err := s.call(ctx, model.OperationRisk, req)
	if err != nil {
		turn := model.NewErrorTurn(s.prompts.ErrorMsg)
		s.turns.Append(turn)
		s.finish(model.OperationRisk, true)
		return turn, nil
	}

	result := InterpretRisk(raw)
	turn := model.NewTurn(model.RoleModel, result.Text)
	turn.RiskAnalysis = result.Report
	if result.Kind != TypedReport {
		log.Warnw("Risk analysis reply is not a report", "replyLength", len(raw))
	}
	s.turns.Append(turn)
	s.finish(model.OperationRisk, false)
	return turn, nil
}

// ApplySuggestion 在用户确认后用某条记录的建议整体替换文档。
func (s *agentService) ApplySuggestion(turnID string) (model.Turn, error) {
	turn, err := s.turns.Get(turnID)
	if err != nil {
		return model.Turn{}, err
	}
	if !turn.HasSuggestion() {
		return model.Turn{}, ErrNoSuggestion
	}
	s.docs.Replace(turn.SuggestedContent)
	s.publish()
	return turn, nil
}

// stripFence 去掉模型偶尔包裹在整段输出外的 markdown 代码块。
func stripFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") || len(trimmed) < 6 {
		return raw
	}
	body := strings.TrimSuffix(trimmed, "```")
	if nl := strings.Index(body, "\n"); nl != -1 {
		body = body[nl+1:]
	} else {
		body = strings.TrimPrefix(body, "```")
	}
	return strings.TrimSpace(body)
}
