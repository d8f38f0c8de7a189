package service

import (
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/socket"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/interfaces"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/lib/log"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/types"
)

var logger = log.Logger("core/service")

// Behavior 进程内服务套接字的可变部分
//
// 源实现用虚函数表达；这里由具体服务实现本接口，
// 基座 ServiceSocket 负责配对、信用与关闭级联。
type Behavior interface {
	// OnEnqueue 收到一段入站负载
	OnEnqueue(data []byte) int

	// OnReady 信用到手，可以产出
	OnReady()

	// OnClose 套接字拆除前的清理
	OnClose()
}

// ServiceSocket 进程内服务套接字基座
//
// 入站负载先自动返还信用再交给服务（该接口无法表达背压，
// 与源实现一致），出站由服务在 OnReady 里经 peer.Enqueue 推送。
type ServiceSocket struct {
	id        types.SocketID
	peer      socket.Socket
	transport interfaces.Transport
	registry  *socket.Registry
	behavior  Behavior
	closing   bool
}

var _ socket.Socket = (*ServiceSocket)(nil)

// Init 安装基座并进入注册表
func (s *ServiceSocket) Init(reg *socket.Registry, t interfaces.Transport, b Behavior) error {
	s.registry = reg
	s.transport = t
	s.behavior = b
	_, err := reg.Install(s)
	return err
}

// ID 返回 local_id
func (s *ServiceSocket) ID() types.SocketID { return s.id }

// SetID 注册表安装时赋值
func (s *ServiceSocket) SetID(id types.SocketID) { s.id = id }

// Transport 返回所属传输
func (s *ServiceSocket) Transport() interfaces.Transport { return s.transport }

// Peer 返回配对的远端
func (s *ServiceSocket) Peer() socket.Socket { return s.peer }

// SetPeer 建立/解除配对
func (s *ServiceSocket) SetPeer(p socket.Socket) { s.peer = p }

// Enqueue 接受入站负载
//
// 先把信用还给对端，再交服务消化。
func (s *ServiceSocket) Enqueue(data []byte) int {
	if s.closing {
		return socket.EnqueueClosed
	}
	if s.peer != nil {
		s.peer.Ready()
	}
	return s.behavior.OnEnqueue(data)
}

// Ready 信用返还
func (s *ServiceSocket) Ready() {
	if s.closing {
		return
	}
	s.behavior.OnReady()
}

// Shutdown 服务端无预关闭动作
func (s *ServiceSocket) Shutdown() {}

// Close 拆除并级联最终 CLSE
func (s *ServiceSocket) Close() {
	if s.closing {
		return
	}
	s.closing = true
	s.behavior.OnClose()

	if p := s.peer; p != nil {
		p.Shutdown()
		s.peer = nil
		p.SetPeer(nil)
		p.Close()
	}
	s.registry.Remove(s)
}

// Closing 是否已进入关闭流程
func (s *ServiceSocket) Closing() bool { return s.closing }
