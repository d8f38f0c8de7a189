package daemon

import (
	"context"

	"go.uber.org/fx"

	"github.com/Lunaris-AOSP/packages-modules-adb/config"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/auth"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/fdevent"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/metrics"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/service"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/socket"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/transport"
)

// Params 接入服务器依赖
type Params struct {
	fx.In

	Cfg        *config.Config
	Loop       *fdevent.Loop
	Registry   *socket.Registry
	List       *transport.List
	Dispatcher *service.Dispatcher
	Auth       *auth.Authenticator `optional:"true"`
	Metrics    *metrics.Metrics    `optional:"true"`
}

// Module 守护进程 Fx 模块
var Module = fx.Module("daemon",
	fx.Provide(provideSocketServer),
)

func provideSocketServer(params Params, lc fx.Lifecycle) *SocketServer {
	var authorizer transport.Authorizer
	if params.Auth != nil && params.Cfg.Auth.Required {
		authorizer = params.Auth
	}

	srv := NewSocketServer(
		params.Cfg,
		params.Loop,
		params.Registry,
		params.List,
		params.Dispatcher,
		authorizer,
		params.Metrics,
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return srv.Start()
		},
		OnStop: func(context.Context) error {
			err := srv.Stop()
			// 先停接入，再拆现存传输
			params.List.KickAll()
			return err
		},
	})
	return srv
}
