package connection

import (
	"io"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/wire"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/interfaces"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/lib/log"
)

var logger = log.Logger("core/connection")

// DefaultSendQueueDepth 出站队列默认深度
const DefaultSendQueueDepth = 32

// BlockingConnectionAdapter 把阻塞式字节管道适配成报文连接
//
// 读协程逐报文解码后交给 onRead；写协程从有界队列取报文编码写出。
// 任一侧失败都会关闭底层管道、唤醒另一侧，并恰好触发一次 onError。
type BlockingConnectionAdapter struct {
	rwc io.ReadWriteCloser
	dec *wire.Decoder
	enc *wire.Encoder

	// 主线程在握手后调高；maxPayload 读每个报文前取用，
	// version 写协程每个报文前取用、读协程每个报文读完后取用
	maxPayload atomic.Uint32
	version    atomic.Uint32

	out    chan *wire.Packet
	dead   chan struct{}
	failCh chan struct{}

	started atomic.Bool
	stopped atomic.Bool
	failed  atomic.Bool

	errOnce  sync.Once
	stopOnce sync.Once
	group    *errgroup.Group
}

var _ interfaces.Connection = (*BlockingConnectionAdapter)(nil)

// NewBlockingConnectionAdapter 创建流式连接适配器
func NewBlockingConnectionAdapter(rwc io.ReadWriteCloser) *BlockingConnectionAdapter {
	c := &BlockingConnectionAdapter{
		rwc:  rwc,
		dec:  wire.NewDecoder(rwc),
		enc:  wire.NewEncoder(rwc),
		out:    make(chan *wire.Packet, DefaultSendQueueDepth),
		dead:   make(chan struct{}),
		failCh: make(chan struct{}),
	}
	// 握手完成前按传统上限与 v1 语义收发
	c.maxPayload.Store(wire.MaxPayloadLegacy)
	c.version.Store(wire.VersionMin)
	return c
}

// SetMaxPayload 更新解码侧允许的最大负载（握手后调用）
func (c *BlockingConnectionAdapter) SetMaxPayload(n uint32) {
	c.maxPayload.Store(n)
}

// SetVersion 更新协议版本（决定校验和语义）
func (c *BlockingConnectionAdapter) SetVersion(v uint32) {
	c.version.Store(v)
}

// Start 启动读写协程
func (c *BlockingConnectionAdapter) Start(onRead interfaces.PacketHandler, onError interfaces.ErrorHandler) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	c.group = &errgroup.Group{}

	// 读协程
	c.group.Go(func() error {
		for {
			c.dec.MaxPayload = c.maxPayload.Load()
			// 解码器不验校验和：报文读完后再按此刻的协商版本判定，
			// 阻塞读期间完成的版本协商也能生效；CNXN 按其自身宣告的版本判定
			c.dec.Version = wire.VersionSkipChecksum
			p, err := c.dec.ReadPacket()
			if err == nil {
				version := c.version.Load()
				if p.Command == wire.CmdConnect && p.Arg0 > version {
					version = p.Arg0
				}
				if version < wire.VersionSkipChecksum && wire.Checksum(p.Payload) != p.DataChecksum {
					err = &wire.ProtocolError{Command: p.Command, Err: wire.ErrBadChecksum}
				}
			}
			if err != nil {
				c.fail(err, onError)
				return nil
			}
			onRead(p)
		}
	})

	// 写协程
	c.group.Go(func() error {
		for {
			select {
			case p := <-c.out:
				c.enc.Version = c.version.Load()
				if err := c.enc.WritePacket(p); err != nil {
					c.fail(err, onError)
					return nil
				}
			case <-c.dead:
				return nil
			case <-c.failCh:
				return nil
			}
		}
	})

	return nil
}

// Send 入队一个出站报文
//
// 队列满时阻塞直到写协程腾出空间；连接死亡后立即失败。
func (c *BlockingConnectionAdapter) Send(p *wire.Packet) error {
	if !c.started.Load() {
		return ErrNotStarted
	}
	if c.failed.Load() || c.stopped.Load() {
		return ErrClosed
	}
	select {
	case c.out <- p:
		return nil
	case <-c.dead:
		return ErrClosed
	case <-c.failCh:
		return ErrClosed
	}
}

// Stop 幂等停止：中断在途读写并等待协程退出
//
// 返回后不再有任何回调。
func (c *BlockingConnectionAdapter) Stop() {
	c.stopOnce.Do(func() {
		c.stopped.Store(true)
		close(c.dead)
		_ = c.rwc.Close()
		if c.group != nil {
			_ = c.group.Wait()
		}
	})
}

// fail 记录首个错误并通知上层（至多一次）
func (c *BlockingConnectionAdapter) fail(err error, onError interfaces.ErrorHandler) {
	c.errOnce.Do(func() {
		c.failed.Store(true)
		close(c.failCh)
		_ = c.rwc.Close()
		if c.stopped.Load() {
			// Stop 之后的收尾错误不上抛
			return
		}
		logger.Debug("连接失效", "error", err)
		onError(err)
	})
}
