package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Params 指标模块依赖
type Params struct {
	fx.In

	Registry prometheus.Registerer `optional:"true"`
}

// Module 指标 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(provideMetrics),
)

// provideMetrics 提供指标集合
//
// 未注入注册表时退回进程默认注册表。
func provideMetrics(params Params) *Metrics {
	reg := params.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return New(reg)
}
