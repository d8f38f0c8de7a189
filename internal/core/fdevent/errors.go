package fdevent

import "errors"

var (
	// ErrLoopClosed 循环已停止
	ErrLoopClosed = errors.New("fdevent loop closed")

	// ErrAlreadyRunning Run 被重复调用
	ErrAlreadyRunning = errors.New("fdevent loop already running")

	// ErrFdRegistered 描述符已注册
	ErrFdRegistered = errors.New("fd already registered")

	// ErrFdNotRegistered 描述符未注册
	ErrFdNotRegistered = errors.New("fd not registered")
)
