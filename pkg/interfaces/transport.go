package interfaces

import (
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/wire"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/types"
)

// Transport 套接字与服务所见的传输面
//
// 完整实现位于 internal/core/transport；本接口只暴露
// 逻辑流与服务启动所需的最小能力。
type Transport interface {
	// ID 返回进程内传输标识
	ID() types.TransportID

	// Kind 返回物理类别（usb/local）
	Kind() types.TransportKind

	// Serial 返回序列号（可能为空）
	Serial() string

	// ConnectionState 返回当前连接状态
	ConnectionState() types.ConnectionState

	// MaxPayload 返回协商后的单报文负载上限
	MaxPayload() uint32

	// HasFeature 检查协商特性
	HasFeature(name string) bool

	// SendPacket 向对端发送报文；传输离线后恒返回错误
	SendPacket(p *wire.Packet) error

	// Kick 强制拆除传输（状态置 Offline、关闭所有流、触发断连钩子）
	Kick()
}
