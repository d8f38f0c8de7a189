package config

// ServerConfig 套接字服务器配置
type ServerConfig struct {
	// ListenAddrs 监听地址列表（"tcp:host:port" 或 "tcp:port"）
	ListenAddrs []string `json:"listen_addrs"`
}

// DefaultServerConfig 返回套接字服务器默认配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddrs: []string{"tcp:5555"},
	}
}
