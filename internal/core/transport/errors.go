package transport

import "errors"

var (
	// ErrOffline 传输已离线，不再接受出站报文
	ErrOffline = errors.New("transport offline")

	// ErrNoConnection 尚未安装连接
	ErrNoConnection = errors.New("transport has no connection")

	// ErrMalformedBanner banner 缺少 "::" 分隔
	ErrMalformedBanner = errors.New("malformed connection banner")

	// ErrUnknownService 服务名无法解析
	ErrUnknownService = errors.New("unknown service")

	// ErrNotFound 目标传输不存在
	ErrNotFound = errors.New("transport not found")
)
