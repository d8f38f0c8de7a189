package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBadMaxPayload 负载上限越界
	ErrBadMaxPayload = errors.New("max_payload out of range")

	// ErrBadListenAddr 监听地址格式非法
	ErrBadListenAddr = errors.New("bad listen address")
)

// 负载上限的允许区间
const (
	minMaxPayload = 4096
	maxMaxPayload = 1024 * 1024
)

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Transport.MaxPayload < minMaxPayload || c.Transport.MaxPayload > maxMaxPayload {
		return fmt.Errorf("%w: %d", ErrBadMaxPayload, c.Transport.MaxPayload)
	}
	for _, addr := range c.Server.ListenAddrs {
		if !strings.HasPrefix(addr, "tcp:") {
			return fmt.Errorf("%w: %q", ErrBadListenAddr, addr)
		}
	}
	return nil
}
