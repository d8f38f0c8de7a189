package socket

import (
	"sync"

	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/interfaces"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/lib/log"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/types"
)

var logger = log.Logger("core/socket")

// Registry 进程级 local_id → 套接字映射
//
// 单锁守护映射与 ID 分配器；遍历在锁内做快照。
type Registry struct {
	mu      sync.Mutex
	sockets map[types.SocketID]Socket
	nextID  uint32
}

// NewRegistry 创建套接字注册表
func NewRegistry() *Registry {
	return &Registry{
		sockets: make(map[types.SocketID]Socket),
		nextID:  1,
	}
}

// Install 分配一个新 ID 并安装套接字
//
// ID 单调递增，回绕时跳过 0 与所有在用 ID。
func (r *Registry) Install(s Socket) (types.SocketID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// 至多扫一整圈
	for i := 0; i < 1<<32-1; i++ {
		id := types.SocketID(r.nextID)
		r.nextID++
		if r.nextID == 0 {
			r.nextID = 1
		}
		if id.IsZero() {
			continue
		}
		if _, used := r.sockets[id]; used {
			continue
		}
		r.sockets[id] = s
		s.SetID(id)
		return id, nil
	}
	return 0, ErrRegistryFull
}

// Lookup 按 ID 查找套接字
//
// peerID 非零时要求目标的 peer 未配对或与之相符，
// 防止串线的报文落到复用后的 ID 上。
func (r *Registry) Lookup(id, peerID types.SocketID) Socket {
	r.mu.Lock()
	s, ok := r.sockets[id]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	if peerID != 0 {
		if p := s.Peer(); p != nil && p.ID() != peerID {
			return nil
		}
	}
	return s
}

// Remove 从注册表摘除套接字（幂等）
func (r *Registry) Remove(s Socket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := s.ID()
	if cur, ok := r.sockets[id]; ok && cur == s {
		delete(r.sockets, id)
	}
}

// Count 返回在表套接字数
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sockets)
}

// EnumerateForTransport 快照指定传输上的全部套接字
func (r *Registry) EnumerateForTransport(t interfaces.Transport) []Socket {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Socket
	for _, s := range r.sockets {
		if s.Transport() == t {
			out = append(out, s)
		}
	}
	return out
}

// CloseForTransport 关闭指定传输上的全部套接字
//
// 传输拆除时调用；每个套接字收到等价于对端 CLSE 的关闭，并从注册表移除。
func (r *Registry) CloseForTransport(t interfaces.Transport) {
	snapshot := r.EnumerateForTransport(t)
	for _, s := range snapshot {
		logger.Debug("传输拆除关闭套接字", "socket", uint32(s.ID()))
		s.Close()
		r.Remove(s)
	}
}
