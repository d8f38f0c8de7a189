package interfaces

import (
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/wire"
)

// PacketHandler 收到完整报文时的回调
type PacketHandler func(p *wire.Packet)

// ErrorHandler 连接不可恢复错误的回调，至多触发一次
type ErrorHandler func(err error)

// Connection 一条物理链路
//
// 实现负责把字节/USB 传输变成完整报文流。
// 生命周期：Start 开始读取；Stop 幂等中止；出错后进入终态，
// Send 永远失败且不再有任何回调。
type Connection interface {
	// Start 开始后台读取，每个完整报文交给 onRead；
	// 不可恢复的 I/O 或帧错误恰好触发一次 onError。
	Start(onRead PacketHandler, onError ErrorHandler) error

	// Send 发送一个报文，背压时可短暂阻塞
	Send(p *wire.Packet) error

	// Stop 幂等停止；返回后不再有任何回调
	Stop()
}
