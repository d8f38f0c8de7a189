package socket

import "errors"

var (
	// ErrRegistryFull 无可分配的套接字 ID
	ErrRegistryFull = errors.New("socket registry exhausted")

	// ErrNotInstalled 套接字未安装进注册表
	ErrNotInstalled = errors.New("socket not installed")
)

// Enqueue 返回值约定
const (
	// EnqueueOK 负载已接受，可以继续投递
	EnqueueOK = 0
	// EnqueueBackpressure 负载已接受，但在 Ready 之前不得再投递
	EnqueueBackpressure = 1
	// EnqueueClosed 套接字已自行关闭
	EnqueueClosed = -1
)
