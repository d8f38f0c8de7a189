package config

import "time"

// TransportConfig 传输层配置
type TransportConfig struct {
	// MaxPayload 愿意接受的单报文负载上限（字节）
	MaxPayload uint32 `json:"max_payload"`

	// Product 本端 banner 的 ro.product.name
	Product string `json:"product"`

	// Model 本端 banner 的 ro.product.model
	Model string `json:"model"`

	// Device 本端 banner 的 ro.product.device
	Device string `json:"device"`

	// ConnectTimeout 等待对端完成握手的时限，超时即 kick
	ConnectTimeout Duration `json:"connect_timeout"`

	// EnableTLS 是否接受对端的 STLS 升级请求
	EnableTLS bool `json:"enable_tls"`
}

// DefaultTransportConfig 返回传输层默认配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		MaxPayload:     1024 * 1024,
		ConnectTimeout: Duration(10 * time.Second),
	}
}
