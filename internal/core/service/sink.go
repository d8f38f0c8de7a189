package service

import (
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/socket"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/interfaces"
)

// ============================================================================
//                              SinkSocket
// ============================================================================

// SinkSocket 吞掉指定字节数后自行关闭的测试服务
type SinkSocket struct {
	ServiceSocket
	bytesLeft uint64
}

// NewSinkSocket 创建 sink:<n> 服务套接字
func NewSinkSocket(reg *socket.Registry, t interfaces.Transport, byteCount uint64) (*SinkSocket, error) {
	s := &SinkSocket{bytesLeft: byteCount}
	if err := s.Init(reg, t, s); err != nil {
		return nil, err
	}
	logger.Debug("创建 sink 服务", "capacity", byteCount)
	return s, nil
}

// OnEnqueue 计数入站字节；额度耗尽时关闭
func (s *SinkSocket) OnEnqueue(data []byte) int {
	if s.bytesLeft <= uint64(len(data)) {
		s.Close()
		return socket.EnqueueClosed
	}
	s.bytesLeft -= uint64(len(data))
	return socket.EnqueueOK
}

// OnReady sink 不产出
func (s *SinkSocket) OnReady() {}

// OnClose 无资源可清理
func (s *SinkSocket) OnClose() {}

// ============================================================================
//                              SourceSocket
// ============================================================================

// SourceSocket 产出指定字节数的零字节流后自行关闭的测试服务
type SourceSocket struct {
	ServiceSocket
	bytesLeft uint64
}

// NewSourceSocket 创建 source:<n> 服务套接字
func NewSourceSocket(reg *socket.Registry, t interfaces.Transport, byteCount uint64) (*SourceSocket, error) {
	s := &SourceSocket{bytesLeft: byteCount}
	if err := s.Init(reg, t, s); err != nil {
		return nil, err
	}
	logger.Debug("创建 source 服务", "capacity", byteCount)
	return s, nil
}

// OnReady 消耗一份信用产出一段零字节
func (s *SourceSocket) OnReady() {
	n := uint64(socket.MaxPayloadFor(s.transport))
	if s.bytesLeft < n {
		n = s.bytesLeft
	}
	if n == 0 {
		s.Close()
		return
	}
	if s.peer != nil {
		s.peer.Enqueue(make([]byte, n))
	}
	s.bytesLeft -= n
}

// OnEnqueue source 不接受入站数据
func (s *SourceSocket) OnEnqueue(data []byte) int {
	return socket.EnqueueClosed
}

// OnClose 无资源可清理
func (s *SourceSocket) OnClose() {}
