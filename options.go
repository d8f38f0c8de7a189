package adb

import (
	"github.com/Lunaris-AOSP/packages-modules-adb/config"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/auth"
)

// Option 守护进程构造选项
type Option func(*daemonConfig) error

type daemonConfig struct {
	cfg    *config.Config
	policy auth.Policy
}

// WithConfig 使用给定配置
func WithConfig(cfg *config.Config) Option {
	return func(dc *daemonConfig) error {
		dc.cfg = cfg
		return nil
	}
}

// WithConfigFile 从文件加载配置
func WithConfigFile(path string) Option {
	return func(dc *daemonConfig) error {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		dc.cfg = cfg
		return nil
	}
}

// WithListenAddrs 覆盖监听地址
func WithListenAddrs(addrs ...string) Option {
	return func(dc *daemonConfig) error {
		dc.cfg.Server.ListenAddrs = addrs
		return nil
	}
}

// WithoutAuth 关闭认证（仅限可调试环境）
func WithoutAuth() Option {
	return func(dc *daemonConfig) error {
		dc.cfg.Auth.Required = false
		return nil
	}
}

// WithAuthPolicy 装配公钥授权策略
func WithAuthPolicy(policy auth.Policy) Option {
	return func(dc *daemonConfig) error {
		dc.policy = policy
		return nil
	}
}

// WithBannerIdentity 设置本端 banner 的产品身份
func WithBannerIdentity(product, model, device string) Option {
	return func(dc *daemonConfig) error {
		dc.cfg.Transport.Product = product
		dc.cfg.Transport.Model = model
		dc.cfg.Transport.Device = device
		return nil
	}
}
