package connection

import (
	"sync"
	"sync/atomic"

	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/wire"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/interfaces"
)

// PacketReadWriter 以报文为单位的物理链路
//
// USB 端点这类链路天然按报文收发，不需要字节流解码。
type PacketReadWriter interface {
	ReadPacket() (*wire.Packet, error)
	WritePacket(p *wire.Packet) error
	Close() error
}

// PacketConnection 报文式链路的连接实现
//
// 单读取协程；发送在调用方协程上直接写出（互斥保护）。
type PacketConnection struct {
	prw PacketReadWriter

	sendMu sync.Mutex

	dead chan struct{}

	started atomic.Bool
	stopped atomic.Bool
	failed  atomic.Bool

	errOnce  sync.Once
	stopOnce sync.Once
	readDone chan struct{}
}

var _ interfaces.Connection = (*PacketConnection)(nil)

// NewPacketConnection 创建报文式连接
func NewPacketConnection(prw PacketReadWriter) *PacketConnection {
	return &PacketConnection{
		prw:      prw,
		dead:     make(chan struct{}),
		readDone: make(chan struct{}),
	}
}

// Start 启动读取协程
func (c *PacketConnection) Start(onRead interfaces.PacketHandler, onError interfaces.ErrorHandler) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	go func() {
		defer close(c.readDone)
		for {
			p, err := c.prw.ReadPacket()
			if err != nil {
				c.fail(err, onError)
				return
			}
			onRead(p)
		}
	}()
	return nil
}

// Send 在调用方协程直接写出报文
func (c *PacketConnection) Send(p *wire.Packet) error {
	if !c.started.Load() {
		return ErrNotStarted
	}
	if c.failed.Load() || c.stopped.Load() {
		return ErrClosed
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if err := c.prw.WritePacket(p); err != nil {
		// 发送失败由调用方上报，不重复触发 onError
		c.failed.Store(true)
		return err
	}
	return nil
}

// Stop 幂等停止
func (c *PacketConnection) Stop() {
	c.stopOnce.Do(func() {
		c.stopped.Store(true)
		_ = c.prw.Close()
		if c.started.Load() {
			<-c.readDone
		}
	})
}

func (c *PacketConnection) fail(err error, onError interfaces.ErrorHandler) {
	c.errOnce.Do(func() {
		c.failed.Store(true)
		_ = c.prw.Close()
		if c.stopped.Load() {
			return
		}
		onError(err)
	})
}
