package socket

import (
	"golang.org/x/sys/unix"

	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/fdevent"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/interfaces"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/types"
)

// FDSocket 描述符承载的本地套接字
//
// 从描述符读出的数据驱动出站 WRTE（受 max_payload 限制），
// 入站 WRTE 负载写回描述符。严格遵守信用：
// 只有在 Ready 之后才会再次读取描述符。
type FDSocket struct {
	id        types.SocketID
	peer      Socket
	transport interfaces.Transport

	loop     *fdevent.Loop
	registry *Registry
	fd       int

	// 入站方向：未写完的负载与其后排队的分段
	wbuf    []byte
	pending [][]byte

	readable bool // 信用在手，关注读就绪
	closing  bool
}

var _ Socket = (*FDSocket)(nil)

// NewFDSocket 创建并安装描述符套接字
//
// 接管 fd 的所有权：置为非阻塞、注册进事件循环、装入注册表。
// 初始不持有信用，等配对方 Ready 后才开始读取。
func NewFDSocket(loop *fdevent.Loop, reg *Registry, t interfaces.Transport, fd int) (*FDSocket, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, err
	}

	s := &FDSocket{
		loop:      loop,
		registry:  reg,
		transport: t,
		fd:        fd,
	}
	if _, err := reg.Install(s); err != nil {
		return nil, err
	}
	if err := loop.Register(fd, s.onEvent); err != nil {
		reg.Remove(s)
		return nil, err
	}
	return s, nil
}

// ID 返回 local_id
func (s *FDSocket) ID() types.SocketID { return s.id }

// SetID 注册表安装时赋值
func (s *FDSocket) SetID(id types.SocketID) { s.id = id }

// Transport 返回所属传输
func (s *FDSocket) Transport() interfaces.Transport { return s.transport }

// Peer 返回配对的远端
func (s *FDSocket) Peer() Socket { return s.peer }

// SetPeer 建立/解除配对
func (s *FDSocket) SetPeer(p Socket) { s.peer = p }

// FD 返回承载的描述符（测试用）
func (s *FDSocket) FD() int { return s.fd }

// Enqueue 接受入站负载并尽量写入描述符
//
// 未能一次写完时关注写就绪并返回背压；
// 全部落盘后通过 peer.Ready() 返还信用。
func (s *FDSocket) Enqueue(data []byte) int {
	if s.closing {
		return EnqueueClosed
	}

	if len(s.wbuf) == 0 && len(s.pending) == 0 {
		s.wbuf = data
	} else {
		s.pending = append(s.pending, data)
	}

	if s.flush() {
		if s.peer != nil {
			s.peer.Ready()
		}
		return EnqueueOK
	}
	if s.closing {
		return EnqueueClosed
	}
	s.updateEvents()
	return EnqueueBackpressure
}

// Ready 信用返还：恢复读取描述符
func (s *FDSocket) Ready() {
	if s.closing {
		return
	}
	s.readable = true
	s.updateEvents()
}

// Shutdown 描述符端无预关闭动作
func (s *FDSocket) Shutdown() {}

// Close 拆除套接字并级联最终 CLSE
//
// 已在关闭流程中时静默幂等。
func (s *FDSocket) Close() {
	if s.closing {
		return
	}
	s.closing = true

	if p := s.peer; p != nil {
		p.Shutdown()
		s.peer = nil
		p.SetPeer(nil)
		p.Close()
	}

	s.loop.Unregister(s.fd)
	s.registry.Remove(s)
	_ = unix.Close(s.fd)
}

// ============================================================================
//                              循环线程内部
// ============================================================================

func (s *FDSocket) onEvent(fd int, ev fdevent.Events) {
	if s.closing {
		return
	}
	if ev&fdevent.Write != 0 {
		if s.flush() {
			s.updateEvents()
			if s.peer != nil {
				s.peer.Ready()
			}
		}
	}
	if s.closing {
		return
	}
	if ev&fdevent.Read != 0 && s.readable {
		s.pump()
	}
	if s.closing {
		return
	}
	if ev&fdevent.Error != 0 {
		s.Close()
	}
}

// pump 消耗一份信用：读一段负载交给对端
func (s *FDSocket) pump() {
	max := MaxPayloadFor(s.transport)
	buf := make([]byte, max)
	n, err := unix.Read(s.fd, buf)
	switch {
	case n > 0:
		s.readable = false
		s.updateEvents()
		if s.peer != nil {
			s.peer.Enqueue(buf[:n])
		}
	case n == 0:
		// EOF：服务端结束
		s.Close()
	case err == unix.EAGAIN:
		// 虚假就绪，保持关注
	default:
		s.Close()
	}
}

// flush 把待写负载推进描述符；true 表示全部写完
func (s *FDSocket) flush() bool {
	for {
		if len(s.wbuf) == 0 {
			if len(s.pending) == 0 {
				return true
			}
			s.wbuf = s.pending[0]
			s.pending = s.pending[1:]
		}
		n, err := unix.Write(s.fd, s.wbuf)
		if n > 0 {
			s.wbuf = s.wbuf[n:]
			continue
		}
		if err == unix.EAGAIN {
			return false
		}
		// 写失败：对端已消失
		s.Close()
		return false
	}
}

func (s *FDSocket) updateEvents() {
	var ev fdevent.Events
	if s.readable {
		ev |= fdevent.Read
	}
	if len(s.wbuf) > 0 || len(s.pending) > 0 {
		ev |= fdevent.Write
	}
	_ = s.loop.SetEvents(s.fd, ev)
}
