package fdevent

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"
)

// Params 事件循环依赖
type Params struct {
	fx.In

	Clock clock.Clock `optional:"true"`
}

// Module 事件循环 Fx 模块
//
// 随应用生命周期启停：Start 拉起循环协程，Stop 等它退出。
var Module = fx.Module("fdevent",
	fx.Provide(provideLoop),
)

func provideLoop(params Params, lc fx.Lifecycle) (*Loop, error) {
	loop, err := New(params.Clock)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() { _ = loop.Run() }()
			return nil
		},
		OnStop: func(context.Context) error {
			loop.Stop()
			return nil
		},
	})
	return loop, nil
}
