package model

// AgentState 是单个在途调用的状态机。
type AgentState string

const (
	StateIdle    AgentState = "idle"
	StateSending AgentState = "sending"
	StateDone    AgentState = "done"
	StateFailed  AgentState = "failed"
)

// Operation 标识三种代理操作。
type Operation string

const (
	OperationChat Operation = "chat"
	OperationAPA  Operation = "apa"
	OperationRisk Operation = "risk"
)

// SessionSnapshot 是会话在某一时刻的只读视图，推送给渲染层。
type SessionSnapshot struct {
	Document    string           `json:"document"`
	Turns       []Turn           `json:"turns"`
	State       AgentState       `json:"state"`
	Operation   Operation        `json:"operation,omitempty"`
	Attachments []AttachmentInfo `json:"attachments"`
}
