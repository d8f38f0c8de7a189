package adb

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/auth"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/fdevent"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/metrics"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/service"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/socket"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/transport"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/daemon"
)

// stopTimeout 关停的宽限期
const stopTimeout = 10 * time.Second

// fxApp 对 fx.App 的薄封装，隔离根包对 fx 类型的暴露
type fxApp struct {
	app *fx.App
}

func (a *fxApp) Start(ctx context.Context) error { return a.app.Start(ctx) }
func (a *fxApp) Stop(ctx context.Context) error  { return a.app.Stop(ctx) }

// buildFxApp 组装 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 配置与事件循环
//  2. 套接字注册表、认证、服务分发
//  3. 传输注册表与接入服务器
func buildFxApp(dc *daemonConfig, d *Daemon) (*fxApp, error) {
	opts := []fx.Option{
		fx.NopLogger,
		fx.Supply(dc.cfg),
		fdevent.Module,
		socket.Module,
		auth.Module,
		service.Module,
		transport.Module,
		daemon.Module,
		fx.Populate(&d.list, &d.dispatcher, &d.jdwp, &d.server),
	}

	if dc.policy != nil {
		policy := dc.policy
		opts = append(opts, fx.Provide(func() auth.Policy { return policy }))
	}
	if dc.cfg.Metrics.Enabled {
		opts = append(opts, metrics.Module)
	}

	app := fx.New(opts...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return &fxApp{app: app}, nil
}
