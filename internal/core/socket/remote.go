package socket

import (
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/wire"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/interfaces"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/types"
)

// RemoteSocket 对端本地套接字在本进程内的影子
//
// 只在配对存活期间存在；收到 CLSE 或传输拆除时销毁。
// 它把本地端的产出转译成线上的 WRTE/OKAY/CLSE。
type RemoteSocket struct {
	remoteID  types.SocketID
	transport interfaces.Transport
	peer      Socket
	closeSent bool
	closed    bool
}

var _ Socket = (*RemoteSocket)(nil)

// NewRemoteSocket 创建远端影子
func NewRemoteSocket(remoteID types.SocketID, t interfaces.Transport) *RemoteSocket {
	return &RemoteSocket{remoteID: remoteID, transport: t}
}

// ID 返回对端的 local_id（即本端视角的 remote_id）
func (s *RemoteSocket) ID() types.SocketID { return s.remoteID }

// SetID 覆盖远端影子的 remote_id（注册表不安装远端影子，不经此路径分配 ID）
func (s *RemoteSocket) SetID(id types.SocketID) { s.remoteID = id }

// Transport 返回所属传输
func (s *RemoteSocket) Transport() interfaces.Transport { return s.transport }

// Peer 返回配对的本地端
func (s *RemoteSocket) Peer() Socket { return s.peer }

// SetPeer 建立/解除配对
func (s *RemoteSocket) SetPeer(p Socket) { s.peer = p }

// Enqueue 把本地端产出的负载作为 WRTE 发往对端
//
// 恒返回背压：信用要等对端的 OKAY 才回来。
func (s *RemoteSocket) Enqueue(data []byte) int {
	if s.closed {
		return EnqueueClosed
	}
	localID := uint32(0)
	if s.peer != nil {
		localID = uint32(s.peer.ID())
	}
	if err := s.transport.SendPacket(wire.NewPacket(wire.CmdWrite, localID, uint32(s.remoteID), data)); err != nil {
		logger.Debug("WRTE 发送失败", "remote", uint32(s.remoteID), "error", err)
		return EnqueueClosed
	}
	return EnqueueBackpressure
}

// Ready 把信用返还给对端（OKAY）
//
// 本地端完全消费一段入站负载后调用。
func (s *RemoteSocket) Ready() {
	if s.closed {
		return
	}
	localID := uint32(0)
	if s.peer != nil {
		localID = uint32(s.peer.ID())
	}
	_ = s.transport.SendPacket(wire.NewPacket(wire.CmdOkay, localID, uint32(s.remoteID), nil))
}

// Shutdown 发出最终 CLSE（至多一次）
func (s *RemoteSocket) Shutdown() {
	if s.closeSent {
		return
	}
	s.closeSent = true
	localID := uint32(0)
	if s.peer != nil {
		localID = uint32(s.peer.ID())
	}
	_ = s.transport.SendPacket(wire.NewPacket(wire.CmdClose, localID, uint32(s.remoteID), nil))
}

// MarkCloseSent 抑制后续 CLSE
//
// 对端已先行关闭（入站 CLSE 的 arg0 为 0）时调用，避免回声。
func (s *RemoteSocket) MarkCloseSent() {
	s.closeSent = true
}

// Close 拆除影子；未发过最终 CLSE 则补发，并级联关闭本地端
func (s *RemoteSocket) Close() {
	if s.closed {
		return
	}
	s.Shutdown()
	s.closed = true
	if p := s.peer; p != nil {
		s.peer = nil
		p.SetPeer(nil)
		p.Close()
	}
}
