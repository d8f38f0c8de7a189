package service

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/fdevent"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/socket"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/interfaces"
)

// FDHandler 扩展描述符服务
//
// args 为去掉前缀后的剩余串；返回守护进程侧描述符。
type FDHandler func(args string, t interfaces.Transport) (int, error)

// Config 分发器配置
type Config struct {
	// TradeInMode 置换评估模式：拒绝启动任何描述符服务
	TradeInMode bool

	// EnableSubprocess 允许 shell/exec 子进程服务
	EnableSubprocess bool
}

// Dispatcher 服务分发器
//
// 纯查表加解析；进程内服务直接构造套接字，
// 描述符服务拿到 fd 后包成描述符套接字。
type Dispatcher struct {
	cfg  Config
	loop *fdevent.Loop
	reg  *socket.Registry
	jdwp *JDWPRegistry

	mu       sync.RWMutex
	handlers map[string]FDHandler
}

// NewDispatcher 创建分发器
func NewDispatcher(cfg Config, loop *fdevent.Loop, reg *socket.Registry, jdwp *JDWPRegistry) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg,
		loop:     loop,
		reg:      reg,
		jdwp:     jdwp,
		handlers: make(map[string]FDHandler),
	}
}

// RegisterFD 注册扩展描述符服务（前缀含冒号，如 "sync:"）
//
// 覆盖同名内建解析；嵌入方用它装配 sync/reverse 等完整实现。
func (d *Dispatcher) RegisterFD(prefix string, h FDHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[prefix] = h
}

// Open 把服务名解析成已安装的本地套接字
func (d *Dispatcher) Open(name string, t interfaces.Transport) (socket.Socket, error) {
	if s, handled, err := d.ToSocket(name, t); handled {
		return s, err
	}

	fd, err := d.ToFD(name, t)
	if err != nil {
		return nil, err
	}
	s, err := socket.NewFDSocket(d.loop, d.reg, t, fd)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ToSocket 进程内服务（service_to_socket 工厂）
func (d *Dispatcher) ToSocket(name string, t interfaces.Transport) (socket.Socket, bool, error) {
	switch {
	case name == "jdwp":
		s, err := newTrackerSocket(d.jdwp, d.reg, t, modeJdwpList)
		return s, true, err
	case name == "track-jdwp":
		s, err := newTrackerSocket(d.jdwp, d.reg, t, modeTrackJdwp)
		return s, true, err
	case name == "track-app":
		s, err := newTrackerSocket(d.jdwp, d.reg, t, modeTrackApp)
		return s, true, err
	}

	if rest, found := strings.CutPrefix(name, "sink:"); found {
		n, err := parseByteCount(rest)
		if err != nil {
			return nil, true, err
		}
		s, err := NewSinkSocket(d.reg, t, n)
		return s, true, err
	}
	if rest, found := strings.CutPrefix(name, "source:"); found {
		n, err := parseByteCount(rest)
		if err != nil {
			return nil, true, err
		}
		s, err := NewSourceSocket(d.reg, t, n)
		return s, true, err
	}

	return nil, false, nil
}

// ToFD 描述符服务（service_to_fd 工厂）
func (d *Dispatcher) ToFD(name string, t interfaces.Transport) (int, error) {
	if d.cfg.TradeInMode {
		return -1, fmt.Errorf("%w: %s", ErrPolicyForbidden, name)
	}

	// 扩展服务优先
	d.mu.RLock()
	for prefix, h := range d.handlers {
		if rest, found := strings.CutPrefix(name, prefix); found {
			d.mu.RUnlock()
			return h(rest, t)
		}
	}
	d.mu.RUnlock()

	switch {
	case strings.HasPrefix(name, "dev:"):
		return devService(strings.TrimPrefix(name, "dev:"), false)

	case strings.HasPrefix(name, "dev-raw:"):
		return devService(strings.TrimPrefix(name, "dev-raw:"), true)

	case strings.HasPrefix(name, "jdwp:"):
		pid, err := strconv.Atoi(strings.TrimPrefix(name, "jdwp:"))
		if err != nil {
			return -1, fmt.Errorf("%w: %s", ErrBadServiceArg, name)
		}
		return d.jdwp.ConnectFD(pid)

	case strings.HasPrefix(name, "shell"):
		if !d.cfg.EnableSubprocess {
			return -1, fmt.Errorf("%w: %s", ErrUnsupportedService, name)
		}
		return shellService(strings.TrimPrefix(name, "shell"))

	case strings.HasPrefix(name, "exec:"):
		if !d.cfg.EnableSubprocess {
			return -1, fmt.Errorf("%w: %s", ErrUnsupportedService, name)
		}
		return startSubprocess(strings.TrimPrefix(name, "exec:"), "dumb")

	case name == "reconnect":
		return reconnectService(t)

	case name == "spin":
		return spinService(d.loop)

	case strings.HasPrefix(name, "sync:"):
		// 文件同步服务的实现由嵌入方经 RegisterFD 装配
		return -1, fmt.Errorf("%w: %s", ErrUnsupportedService, name)

	case strings.HasPrefix(name, "reverse:"):
		// 反向转发由主机侧协作者实现
		return -1, fmt.Errorf("%w: %s", ErrUnsupportedService, name)
	}

	return -1, fmt.Errorf("%w: %q", ErrUnknownService, name)
}

// parseByteCount 解析 sink/source 的字节数参数
func parseByteCount(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadServiceArg, err)
	}
	return n, nil
}
