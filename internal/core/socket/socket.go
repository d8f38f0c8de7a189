package socket

import (
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/wire"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/interfaces"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/types"
)

// Socket 逻辑流一端的多态操作
//
// 源实现用函数指针加上行转型表达这些操作；这里收敛为一个小接口，
// 具体变体（描述符、进程内服务、远端影子）各自实现。
// 除 ID/Transport 这类只读访问外，所有方法只允许在事件循环线程调用。
type Socket interface {
	// ID 返回本端 ID（远端影子返回对端的 remote_id）
	ID() types.SocketID

	// SetID 由注册表在安装时赋值
	SetID(id types.SocketID)

	// Transport 返回所属传输；纯进程内配对可为 nil
	Transport() interfaces.Transport

	// Peer 返回配对的另一端，未配对为 nil
	Peer() Socket

	// SetPeer 建立/解除配对
	SetPeer(p Socket)

	// Enqueue 接受一段入站负载
	//
	// 返回 EnqueueOK / EnqueueBackpressure / EnqueueClosed。
	// 返回 EnqueueBackpressure 后，在 Ready 之前不得再次投递。
	Enqueue(data []byte) int

	// Ready 信用返还：对端已确认上一段传输，可以继续产出
	Ready()

	// Close 拆除本端；若尚未发过最终 CLSE，级联到对端补发
	Close()

	// Shutdown 预关闭通知（远端影子在此发出最终 CLSE）
	Shutdown()
}

// MaxPayloadFor 返回套接字产出负载时应遵守的上限
func MaxPayloadFor(t interfaces.Transport) uint32 {
	if t == nil {
		return wire.MaxPayload
	}
	return t.MaxPayload()
}
