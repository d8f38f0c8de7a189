package connection

import "errors"

var (
	// ErrClosed 连接已停止或已出错
	ErrClosed = errors.New("connection closed")

	// ErrAlreadyStarted Start 被重复调用
	ErrAlreadyStarted = errors.New("connection already started")

	// ErrNotStarted 未 Start 就调用 Send
	ErrNotStarted = errors.New("connection not started")
)
