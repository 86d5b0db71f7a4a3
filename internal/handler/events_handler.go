package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"scholar-agent-go/internal/service"
	"scholar-agent-go/pkg/log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var (
	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // 允许所有来源
		},
	}
)

const writeWait = 10 * time.Second

// Event 是推送给 WebSocket 客户端的消息。
type Event struct {
	Type      string      `json:"type"`
	Operation string      `json:"operation,omitempty"`
	Message   string      `json:"message,omitempty"`
	Code      int         `json:"code,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Command 是客户端通过 WebSocket 发来的指令：
// {"type":"chat","text":"..."} / {"type":"apa"} / {"type":"risk"} / {"type":"document","text":"..."}
type Command struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// EventsHandler 在 WebSocket 上推送会话快照，并接受与 REST 接口等价的指令。
type EventsHandler struct {
	agentService service.AgentService
}

// NewEventsHandler 创建一个新的 EventsHandler。
func NewEventsHandler(agentService service.AgentService) *EventsHandler {
	return &EventsHandler{agentService: agentService}
}

// wsConn 串行化同一连接上的写操作。
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *wsConn) send(ev Event) error {
	ev.Timestamp = time.Now().UnixMilli()
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteMessage(websocket.TextMessage, b)
}

// Handle 处理一个传入的 WebSocket 连接。连接建立后先推送一次当前快照。
func (h *EventsHandler) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	snapshots, unsubscribe := h.agentService.Subscribe()
	defer unsubscribe()

	ws := &wsConn{conn: conn}
	if err := ws.send(Event{Type: "snapshot", Data: h.agentService.Snapshot()}); err != nil {
		log.Warnf("推送初始快照失败: %v", err)
		return
	}
	log.Infof("WebSocket 事件连接已建立: %s", c.ClientIP())

	var commands sync.WaitGroup
	defer commands.Wait()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warnf("从 WebSocket 读取消息失败: %v", err)
				}
				return
			}
			var cmd Command
			if err := json.Unmarshal(message, &cmd); err != nil {
				_ = ws.send(Event{Type: "error", Code: http.StatusBadRequest, Message: "无效的指令"})
				continue
			}
			// 文档编辑必须按到达顺序生效，只有模型调用离开读循环
			if !isAgentCommand(cmd.Type) {
				h.dispatch(c.Request.Context(), ws, cmd)
				continue
			}
			commands.Add(1)
			go func() {
				defer commands.Done()
				h.dispatch(c.Request.Context(), ws, cmd)
			}()
		}
	}()

	for {
		select {
		case <-closed:
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if err := ws.send(Event{Type: "snapshot", Data: snap}); err != nil {
				log.Warnf("推送快照失败: %v", err)
				return
			}
		}
	}
}

func isAgentCommand(t string) bool {
	return t == "chat" || t == "apa" || t == "risk"
}

// dispatch 执行一条指令并回发结果。会话状态的变化另外通过快照推送。
func (h *EventsHandler) dispatch(ctx context.Context, ws *wsConn, cmd Command) {
	var (
		data interface{}
		err  error
	)
	switch cmd.Type {
	case "chat":
		data, err = h.agentService.Chat(ctx, cmd.Text)
	case "apa":
		data, err = h.agentService.CheckAPA(ctx)
	case "risk":
		data, err = h.agentService.AnalyzeRisk(ctx)
	case "document":
		h.agentService.UpdateDocument(cmd.Text)
		return
	default:
		_ = ws.send(Event{Type: "error", Code: http.StatusBadRequest, Message: "未知的指令类型: " + cmd.Type})
		return
	}
	if err != nil {
		_ = ws.send(Event{Type: "error", Operation: cmd.Type, Code: statusFor(err), Message: err.Error()})
		return
	}
	_ = ws.send(Event{Type: "result", Operation: cmd.Type, Data: data})
}
