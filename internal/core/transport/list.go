package transport

import (
	"sync"

	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/types"
)

// List 进程级传输注册表
//
// 单锁守护；遍历取快照，断连钩子在不持锁时触发。
type List struct {
	mu         sync.Mutex
	nextID     types.TransportID
	transports []*Transport
}

// NewList 创建传输注册表
func NewList() *List {
	return &List{nextID: 1}
}

// Register 分配 TransportID 并登记传输
//
// 同时挂一个断连钩子，传输被 kick 时自动摘除。
func (l *List) Register(t *Transport) types.TransportID {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	t.SetID(id)
	l.transports = append(l.transports, t)
	l.mu.Unlock()

	t.AddDisconnect(NewDisconnect(func(t *Transport) {
		l.Unregister(t)
	}))
	return id
}

// Unregister 摘除传输（幂等）
func (l *List) Unregister(t *Transport) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, cur := range l.transports {
		if cur == t {
			l.transports = append(l.transports[:i], l.transports[i+1:]...)
			return
		}
	}
}

// Snapshot 返回当前传输列表的副本
func (l *List) Snapshot() []*Transport {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Transport, len(l.transports))
	copy(out, l.transports)
	return out
}

// Count 返回在册传输数
func (l *List) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.transports)
}

// Find 按目标查询匹配的传输
func (l *List) Find(target string) (*Transport, error) {
	for _, t := range l.Snapshot() {
		if t.MatchesTarget(target) {
			return t, nil
		}
	}
	return nil, ErrNotFound
}

// KickAll 拆除全部传输（守护进程关停路径）
func (l *List) KickAll() {
	for _, t := range l.Snapshot() {
		t.Kick()
	}
}
