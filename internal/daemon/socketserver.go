package daemon

import (
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	tec "github.com/jbenet/go-temp-err-catcher"
	"go.uber.org/multierr"

	"github.com/Lunaris-AOSP/packages-modules-adb/config"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/connection"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/fdevent"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/metrics"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/socket"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/transport"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/lib/log"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/types"
)

var logger = log.Logger("daemon/server")

// SocketServer 网络传输的接入服务器
type SocketServer struct {
	cfg        *config.Config
	loop       *fdevent.Loop
	registry   *socket.Registry
	list       *transport.List
	dispatcher transport.Dispatcher
	auth       transport.Authorizer
	stats      *metrics.Metrics

	mu        sync.Mutex
	listeners []net.Listener
	wg        sync.WaitGroup
	closed    atomic.Bool

	connSeq atomic.Uint64
}

// NewSocketServer 创建接入服务器
func NewSocketServer(
	cfg *config.Config,
	loop *fdevent.Loop,
	reg *socket.Registry,
	list *transport.List,
	d transport.Dispatcher,
	a transport.Authorizer,
	m *metrics.Metrics,
) *SocketServer {
	return &SocketServer{
		cfg:        cfg,
		loop:       loop,
		registry:   reg,
		list:       list,
		dispatcher: d,
		auth:       a,
		stats:      m,
	}
}

// parseListenAddr 把 "tcp:port" / "tcp:host:port" 变成 net.Listen 参数
func parseListenAddr(addr string) (network, hostport string, err error) {
	rest, found := strings.CutPrefix(addr, "tcp:")
	if !found {
		return "", "", fmt.Errorf("unsupported listen address %q", addr)
	}
	if strings.Contains(rest, ":") {
		return "tcp", rest, nil
	}
	return "tcp", ":" + rest, nil
}

// Start 开始监听全部配置地址
func (s *SocketServer) Start() error {
	for _, addr := range s.cfg.Server.ListenAddrs {
		network, hostport, err := parseListenAddr(addr)
		if err != nil {
			s.Stop()
			return err
		}
		ln, err := net.Listen(network, hostport)
		if err != nil {
			s.Stop()
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		logger.Info("开始监听", "addr", ln.Addr().String())

		s.mu.Lock()
		s.listeners = append(s.listeners, ln)
		s.mu.Unlock()

		s.wg.Add(1)
		go s.acceptLoop(ln)
	}
	return nil
}

// Addrs 返回实际监听地址（端口 0 时由系统分配）
func (s *SocketServer) Addrs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.listeners))
	for _, ln := range s.listeners {
		out = append(out, ln.Addr().String())
	}
	return out
}

// Stop 停止监听；已建立的传输由各自的 kick 路径拆除
func (s *SocketServer) Stop() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.mu.Lock()
	listeners := s.listeners
	s.listeners = nil
	s.mu.Unlock()

	var err error
	for _, ln := range listeners {
		err = multierr.Append(err, ln.Close())
	}
	s.wg.Wait()
	return err
}

// acceptLoop 接受循环：容忍暂时性错误，关停时退出
func (s *SocketServer) acceptLoop(ln net.Listener) {
	defer s.wg.Done()

	catcher := tec.TempErrCatcher{}
	for {
		c, err := ln.Accept()
		if err != nil {
			if catcher.IsTemporary(err) {
				continue
			}
			if !s.closed.Load() {
				logger.Warn("接受连接失败", "error", err)
			}
			return
		}
		s.handleConn(c)
	}
}

// handleConn 把一条字节流接成传输
func (s *SocketServer) handleConn(c net.Conn) {
	if tcp, ok := c.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}

	serial := fmt.Sprintf("host-%d", s.connSeq.Add(1))
	logger.Info("新连接", "serial", serial, "remote", c.RemoteAddr().String())

	authRequired := s.auth != nil && s.auth.Required()
	t := transport.New(s.loop, s.registry, s.dispatcher, s.auth, s.stats, transport.Options{
		Kind:         types.KindLocal,
		Serial:       serial,
		AuthRequired: authRequired,
		Banner: transport.DeviceBanner{
			Side:     "device",
			Product:  s.cfg.Transport.Product,
			Model:    s.cfg.Transport.Model,
			Device:   s.cfg.Transport.Device,
			Features: types.SupportedFeatures(),
		},
	})
	s.list.Register(t)

	conn := connection.NewBlockingConnectionAdapter(c)
	if err := t.SetConnection(conn); err != nil {
		logger.Error("连接启动失败", "serial", serial, "error", err)
		t.Kick()
		return
	}

	// 握手超时降级为 kick
	if d := s.cfg.Transport.ConnectTimeout.Duration(); d > 0 {
		s.loop.PostDelayed(func() {
			if t.ConnectionState() == types.StateConnecting {
				logger.Warn("握手超时", "serial", serial)
				t.Kick()
			}
		}, d)
	}
}
