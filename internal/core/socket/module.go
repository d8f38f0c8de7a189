package socket

import (
	"go.uber.org/fx"
)

// Module 套接字 Fx 模块
var Module = fx.Module("socket",
	fx.Provide(NewRegistry),
)
