package transport

import (
	"go.uber.org/fx"
)

// Module 传输 Fx 模块
//
// 只提供进程级传输注册表；具体 Transport 由 socket server
// 在每条链路建立时创建。
var Module = fx.Module("transport",
	fx.Provide(NewList),
)
