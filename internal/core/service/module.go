package service

import (
	"go.uber.org/fx"

	"github.com/Lunaris-AOSP/packages-modules-adb/config"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/fdevent"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/socket"
)

// Params 服务模块依赖
type Params struct {
	fx.In

	Cfg  *config.Config
	Loop *fdevent.Loop
	Reg  *socket.Registry
}

// Module 服务 Fx 模块
var Module = fx.Module("service",
	fx.Provide(provideJDWPRegistry),
	fx.Provide(provideDispatcher),
)

func provideJDWPRegistry(loop *fdevent.Loop) *JDWPRegistry {
	return NewJDWPRegistry(loop)
}

func provideDispatcher(params Params, jdwp *JDWPRegistry) *Dispatcher {
	return NewDispatcher(Config{
		TradeInMode:      params.Cfg.Service.TradeInMode,
		EnableSubprocess: params.Cfg.Service.EnableSubprocess,
	}, params.Loop, params.Reg, jdwp)
}
