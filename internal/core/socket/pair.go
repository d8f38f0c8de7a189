package socket

import (
	"golang.org/x/sys/unix"

	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/fdevent"
)

// Pair 建立对称配对：a.Peer() == b 且 b.Peer() == a
func Pair(a, b Socket) {
	a.SetPeer(b)
	b.SetPeer(a)
}

// NewLocalPair 在进程内直接对接两个本地套接字（无传输）
//
// fd0 与 fd1 必须来自两条独立的字节管道：
// 从 fd0 读出的数据写入 fd1，反之亦然。
// 内部服务用字节管道喂数据时使用。
func NewLocalPair(loop *fdevent.Loop, reg *Registry, fd0, fd1 int) (*FDSocket, *FDSocket, error) {
	a, err := NewFDSocket(loop, reg, nil, fd0)
	if err != nil {
		return nil, nil, err
	}
	b, err := NewFDSocket(loop, reg, nil, fd1)
	if err != nil {
		a.Close()
		return nil, nil, err
	}

	Pair(a, b)
	// 进程内配对两端初始都持有信用
	a.Ready()
	b.Ready()
	return a, b, nil
}

// ServicePipe 创建一条服务管道
//
// 返回守护进程侧描述符与服务侧描述符，等价于源实现的
// adb_socketpair：服务代码拿一端，另一端包成描述符套接字。
func ServicePipe() (daemonFD, serviceFD int, err error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, -1, err
	}
	return fds[0], fds[1], nil
}
