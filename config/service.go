package config

// ServiceConfig 服务分发配置
type ServiceConfig struct {
	// TradeInMode 置换评估模式：拒绝启动描述符服务
	TradeInMode bool `json:"trade_in_mode"`

	// EnableSubprocess 允许 shell/exec 子进程服务
	EnableSubprocess bool `json:"enable_subprocess"`
}

// DefaultServiceConfig 返回服务分发默认配置
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		EnableSubprocess: true,
	}
}
