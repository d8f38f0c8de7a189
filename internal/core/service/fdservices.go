package service

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/fdevent"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/socket"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/interfaces"
)

// defaultShell 子进程使用的 shell
const defaultShell = "/bin/sh"

// CreateServiceThread 在协程里运行服务体，返回守护进程侧描述符
//
// 服务体拿到管道另一端；返回后管道自动关闭，对端看到 EOF。
func CreateServiceThread(name string, body func(fd int)) (int, error) {
	daemonFD, serviceFD, err := socket.ServicePipe()
	if err != nil {
		return -1, err
	}
	go func() {
		body(serviceFD)
		unix.Close(serviceFD)
	}()
	logger.Debug("启动服务协程", "service", name)
	return daemonFD, nil
}

// writeFully 把整段数据写入描述符
func writeFully(fd int, data []byte) {
	for len(data) > 0 {
		n, err := unix.Write(fd, data)
		if n <= 0 || err != nil {
			return
		}
		data = data[n:]
	}
}

// ============================================================================
//                              子进程服务
// ============================================================================

// shell 服务参数
const (
	shellArgRaw      = "raw"
	shellArgPty      = "pty"
	shellArgProtocol = "v2"
	shellArgTermPfx  = "TERM="
)

// startSubprocess 经 socketpair 挂接一个子进程
//
// 子进程的标准输入输出错误都接到管道服务侧；
// 返回守护进程侧描述符。
func startSubprocess(cmdline, terminalType string) (int, error) {
	daemonFD, serviceFD, err := socket.ServicePipe()
	if err != nil {
		return -1, err
	}

	child := os.NewFile(uintptr(serviceFD), "subprocess")

	var cmd *exec.Cmd
	if cmdline == "" {
		cmd = exec.Command(defaultShell, "-i")
	} else {
		cmd = exec.Command(defaultShell, "-c", cmdline)
	}
	cmd.Stdin = child
	cmd.Stdout = child
	cmd.Stderr = child
	cmd.Env = append(os.Environ(), "TERM="+terminalType)

	if err := cmd.Start(); err != nil {
		child.Close()
		unix.Close(daemonFD)
		return -1, fmt.Errorf("start subprocess: %w", err)
	}

	// 父进程侧不再需要服务端；子进程退出后回收
	child.Close()
	go func() { _ = cmd.Wait() }()

	return daemonFD, nil
}

// shellService 解析 shell[,arg,...]:[cmd] 并启动子进程
//
// 缺省：交互式用 pty、带命令用 raw；终端类型 dumb。
// 伪终端分配在本实现中恒用 raw 模式；未知参数告警后忽略。
func shellService(args string) (int, error) {
	spec, cmdline, found := strings.Cut(args, ":")
	if !found {
		return -1, fmt.Errorf("%w: shell service without ':'", ErrBadServiceArg)
	}

	terminalType := "dumb"
	for _, arg := range strings.Split(spec, ",") {
		switch {
		case arg == "" || arg == shellArgRaw || arg == shellArgPty:
			// pty 请求降级为 raw
		case arg == shellArgProtocol:
			// shell 协议 v2 的成帧属于 shell 服务语义，这里不展开
		case strings.HasPrefix(arg, shellArgTermPfx):
			terminalType = strings.TrimPrefix(arg, shellArgTermPfx)
		default:
			logger.Warn("忽略未知 shell 参数", "arg", arg)
		}
	}

	return startSubprocess(cmdline, terminalType)
}

// ============================================================================
//                              设备节点服务
// ============================================================================

// devService 打开设备节点（dev:<path>）
func devService(path string, raw bool) (int, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("open %s: %w", path, err)
	}
	if !raw {
		return fd, nil
	}

	// dev-raw：终端节点进原始模式
	tio, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("tcgetattr %s: %w", path, err)
	}
	tio.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	tio.Oflag &^= unix.OPOST
	tio.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	tio.Cflag &^= unix.CSIZE | unix.PARENB
	tio.Cflag |= unix.CS8
	if err := unix.IoctlSetTermios(fd, unix.TCSETSW, tio); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("tcsetattr %s: %w", path, err)
	}
	return fd, nil
}

// ============================================================================
//                              杂项服务
// ============================================================================

// reconnectService 回应 "done" 后拆除传输，迫使对端重连重协商
func reconnectService(t interfaces.Transport) (int, error) {
	return CreateServiceThread("reconnect", func(fd int) {
		writeFully(fd, []byte("done"))
		t.Kick()
	})
}

// spinService 造一个永远就绪却无人处理的事件（调试事件循环用）
func spinService(loop *fdevent.Loop) (int, error) {
	return CreateServiceThread("spin", func(fd int) {
		var p [2]int
		if err := unix.Pipe2(p[:], unix.O_CLOEXEC); err != nil {
			writeFully(fd, []byte("failed to create pipe\n"))
			return
		}
		// 写端保持打开且永不写入：读端的读就绪永不到来，事件恒挂起
		loop.Post(func() {
			if err := loop.Register(p[0], func(int, fdevent.Events) {}); err == nil {
				_ = loop.SetEvents(p[0], fdevent.Read)
			}
		})
		writeFully(fd, []byte("spinning\n"))
	})
}
