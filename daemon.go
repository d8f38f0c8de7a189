package adb

import (
	"context"

	"github.com/Lunaris-AOSP/packages-modules-adb/config"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/service"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/transport"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/daemon"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/lib/log"
)

var logger = log.Logger("adb/daemon")

// Daemon 设备侧守护进程
//
// 聚合事件循环、套接字注册表、传输注册表、服务分发与接入服务器，
// 生命周期由内部的 Fx 应用驱动。
type Daemon struct {
	cfg *config.Config
	app *fxApp

	list       *transport.List
	dispatcher *service.Dispatcher
	jdwp       *service.JDWPRegistry
	server     *daemon.SocketServer
}

// New 创建守护进程
func New(opts ...Option) (*Daemon, error) {
	dc := &daemonConfig{cfg: config.NewConfig()}
	for _, opt := range opts {
		if err := opt(dc); err != nil {
			return nil, err
		}
	}
	if err := dc.cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Daemon{cfg: dc.cfg}
	app, err := buildFxApp(dc, d)
	if err != nil {
		return nil, err
	}
	d.app = app
	return d, nil
}

// Config 返回生效的配置
func (d *Daemon) Config() *config.Config { return d.cfg }

// Transports 返回传输注册表
func (d *Daemon) Transports() *transport.List { return d.list }

// Services 返回服务分发器（嵌入方经 RegisterFD 装配扩展服务）
func (d *Daemon) Services() *service.Dispatcher { return d.dispatcher }

// JDWP 返回可调试进程登记表
func (d *Daemon) JDWP() *service.JDWPRegistry { return d.jdwp }

// ListenAddrs 返回实际监听地址
func (d *Daemon) ListenAddrs() []string {
	if d.server == nil {
		return nil
	}
	return d.server.Addrs()
}

// Start 启动守护进程
func (d *Daemon) Start(ctx context.Context) error {
	logger.Info("启动守护进程", "listen", d.cfg.Server.ListenAddrs)
	return d.app.Start(ctx)
}

// Stop 关停守护进程：停止接入、拆除全部传输、停事件循环
func (d *Daemon) Stop(ctx context.Context) error {
	logger.Info("关停守护进程")
	return d.app.Stop(ctx)
}

// Run 启动并阻塞到 ctx 取消，然后关停
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return d.Stop(stopCtx)
}
