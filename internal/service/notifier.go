package service

import (
	"scholar-agent-go/internal/model"
	"sync"
)

const subscriberBuffer = 16

// Notifier 把会话快照广播给渲染层（WebSocket 连接）。慢订阅者只会丢失较旧的快照。
type Notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]chan model.SessionSnapshot
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan model.SessionSnapshot)}
}

// Subscribe 返回快照通道和取消函数，取消后通道会被关闭。
func (n *Notifier) Subscribe() (<-chan model.SessionSnapshot, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.next
	n.next++
	ch := make(chan model.SessionSnapshot, subscriberBuffer)
	n.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs, id)
			close(ch)
		})
	}
}

func (n *Notifier) Publish(snap model.SessionSnapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.broadcast(snap)
}

// PublishWith 在广播锁内生成快照，并发发布者的快照按生成顺序送达。
func (n *Notifier) PublishWith(snapshot func() model.SessionSnapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.broadcast(snapshot())
}

func (n *Notifier) broadcast(snap model.SessionSnapshot) {
	for _, ch := range n.subs {
		select {
		case ch <- snap:
		default:
			// 缓冲已满：丢弃最旧的一条再写入
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (n *Notifier) subscribers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
