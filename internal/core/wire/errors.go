package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrBadMagic magic 与 command 不互补
	ErrBadMagic = errors.New("packet magic mismatch")

	// ErrOversizePayload 负载超出协商上限
	ErrOversizePayload = errors.New("packet payload exceeds max payload")

	// ErrBadChecksum v1 校验和不匹配
	ErrBadChecksum = errors.New("packet checksum mismatch")
)

// ProtocolError 帧级协议错误
//
// 对传输而言是致命的：连接读取方收到后触发 kick。
type ProtocolError struct {
	Command uint32
	Err     error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error on %s: %v", CommandString(e.Command), e.Err)
}

// Unwrap 返回底层错误
func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsProtocolError 检查错误是否为帧级协议错误
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
