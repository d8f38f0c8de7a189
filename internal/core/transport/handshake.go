package transport

import (
	"bytes"

	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/socket"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/wire"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/types"
)

// codecTuner 握手后可调整收发参数的连接
type codecTuner interface {
	SetMaxPayload(n uint32)
	SetVersion(v uint32)
}

// HandlePacket 处理一个入站报文
//
// 只允许在事件循环线程调用；连接读取线程经 Post 移交。
func (t *Transport) HandlePacket(p *wire.Packet) {
	if t.stats != nil {
		t.stats.PacketReceived(wire.CommandString(p.Command), len(p.Payload))
	}

	switch p.Command {
	case wire.CmdConnect:
		t.handleConnect(p)
	case wire.CmdAuth:
		t.handleAuth(p)
	case wire.CmdStartTLS:
		t.handleStartTLS(p)
	case wire.CmdOpen:
		t.handleOpen(p)
	case wire.CmdOkay:
		t.handleOkay(p)
	case wire.CmdClose:
		t.handleClose(p)
	case wire.CmdWrite:
		t.handleWrite(p)
	case wire.CmdSync:
		// 保留命令，忽略
	default:
		logger.Warn("未知命令", "transport", t.traceID, "command", wire.CommandString(p.Command))
		t.Kick()
	}
}

// ============================================================================
//                              握手
// ============================================================================

func (t *Transport) handleConnect(p *wire.Packet) {
	// 版本与负载上限向下协商
	version := p.Arg0
	if version > wire.CurrentVersion {
		version = wire.CurrentVersion
	}
	if version < wire.VersionMin {
		version = wire.VersionMin
	}
	maxPayload := p.Arg1
	if maxPayload == 0 || maxPayload > wire.MaxPayload {
		maxPayload = wire.MaxPayload
	}
	if maxPayload < wire.MaxPayloadLegacy {
		maxPayload = wire.MaxPayloadLegacy
	}

	t.mu.Lock()
	t.protocolVersion = version
	t.maxPayload = maxPayload
	conn := t.conn
	t.mu.Unlock()

	if ct, ok := conn.(codecTuner); ok {
		ct.SetMaxPayload(maxPayload)
		ct.SetVersion(version)
	}

	if err := ParseBanner(string(p.Payload), t); err != nil {
		logger.Warn("banner 解析失败", "transport", t.traceID, "error", err)
		return
	}

	logger.Info("收到连接",
		"transport", t.traceID,
		"state", t.ConnectionState().String(),
		"version", version,
		"maxPayload", maxPayload,
	)

	if t.authRequired {
		t.sendAuthToken()
		return
	}
	t.goOnline()
}

func (t *Transport) handleAuth(p *wire.Packet) {
	if t.auth == nil {
		t.Kick()
		return
	}

	switch p.Arg0 {
	case wire.AuthSignature:
		t.SetConnectionState(types.StateAuthorizing)
		t.mu.Lock()
		token := t.token
		t.mu.Unlock()
		if len(token) > 0 && t.auth.VerifySignature(token, p.Payload) {
			t.goOnline()
			return
		}
		logger.Info("签名验证失败，重发挑战", "transport", t.traceID)
		t.sendAuthToken()

	case wire.AuthRSAPublicKey:
		t.SetConnectionState(types.StateAuthorizing)
		if t.auth.ConfirmPublicKey(p.Payload) {
			t.goOnline()
			return
		}
		logger.Info("公钥被策略拒绝", "transport", t.traceID)
		t.sendAuthToken()

	default:
		logger.Warn("意外的 AUTH 子命令", "transport", t.traceID, "arg0", p.Arg0)
		t.Kick()
	}
}

func (t *Transport) handleStartTLS(p *wire.Packet) {
	if t.tlsUpgrade == nil {
		logger.Warn("对端请求 STLS 但未配置升级回调", "transport", t.traceID)
		t.Kick()
		return
	}
	if err := t.SendPacket(wire.NewPacket(wire.CmdStartTLS, wire.VersionSTLSMin, 0, nil)); err != nil {
		return
	}
	if err := t.tlsUpgrade(t); err != nil {
		logger.Warn("TLS 升级失败", "transport", t.traceID, "error", err)
		t.Kick()
	}
}

// sendAuthToken 下发随机挑战并进入 Unauthorized
func (t *Transport) sendAuthToken() {
	token, err := t.auth.GenerateToken()
	if err != nil {
		logger.Error("挑战生成失败", "transport", t.traceID, "error", err)
		t.Kick()
		return
	}
	t.mu.Lock()
	t.token = token
	t.mu.Unlock()
	t.SetConnectionState(types.StateUnauthorized)
	_ = t.SendPacket(wire.NewPacket(wire.CmdAuth, wire.AuthToken, 0, token))
}

// goOnline 认证（或免认证）完成：恢复 banner 状态并回 CNXN
func (t *Transport) goOnline() {
	t.mu.Lock()
	state := t.bannerState
	if !state.IsOnline() {
		state = types.StateHost
	}
	t.state = state
	alreadyOnline := t.wentOnline
	t.wentOnline = true
	version := t.protocolVersion
	maxPayload := t.maxPayload
	t.mu.Unlock()

	banner := FormatBanner(t.local)
	_ = t.SendPacket(wire.NewPacket(wire.CmdConnect, version, maxPayload, []byte(banner)))

	if t.stats != nil && !alreadyOnline {
		t.stats.TransportOnline()
	}
	logger.Info("传输上线", "transport", t.traceID, "state", state.String())
}

// ============================================================================
//                              逻辑流分发
// ============================================================================

func (t *Transport) online() bool {
	return t.ConnectionState().IsOnline()
}

func (t *Transport) handleOpen(p *wire.Packet) {
	if !t.online() || p.Arg0 == 0 {
		return
	}
	name := string(bytes.TrimRight(p.Payload, "\x00"))

	s, err := t.dispatcher.Open(name, t)
	if err != nil || s == nil {
		logger.Info("服务启动失败", "transport", t.traceID, "service", name, "error", err)
		// 未知或失败的服务：CLSE(0, remote_id)
		_ = t.SendPacket(wire.NewPacket(wire.CmdClose, 0, p.Arg0, nil))
		return
	}

	remote := socket.NewRemoteSocket(types.SocketID(p.Arg0), t)
	socket.Pair(s, remote)

	if err := t.SendPacket(wire.NewPacket(wire.CmdOkay, uint32(s.ID()), p.Arg0, nil)); err != nil {
		return
	}
	// 为服务侧注入首份信用，让产出型服务立即开始工作
	s.Ready()
}

func (t *Transport) handleOkay(p *wire.Packet) {
	if !t.online() || p.Arg1 == 0 {
		return
	}
	s := t.registry.Lookup(types.SocketID(p.Arg1), types.SocketID(p.Arg0))
	if s == nil {
		return
	}
	// 流的首个 OKAY 兼做配对：学习对端 remote_id
	if s.Peer() == nil && p.Arg0 != 0 {
		remote := socket.NewRemoteSocket(types.SocketID(p.Arg0), t)
		socket.Pair(s, remote)
	}
	s.Ready()
}

func (t *Transport) handleClose(p *wire.Packet) {
	if p.Arg1 == 0 {
		return
	}
	s := t.registry.Lookup(types.SocketID(p.Arg1), types.SocketID(p.Arg0))
	if s == nil {
		return
	}
	// arg0 为 0：对端已先行拆除（对我方 CLSE 的应答），不再回声
	if p.Arg0 == 0 {
		if rs, ok := s.Peer().(*socket.RemoteSocket); ok {
			rs.MarkCloseSent()
		}
	}
	s.Close()
}

func (t *Transport) handleWrite(p *wire.Packet) {
	if !t.online() || p.Arg1 == 0 {
		return
	}
	s := t.registry.Lookup(types.SocketID(p.Arg1), types.SocketID(p.Arg0))
	if s == nil {
		return
	}
	// 信用机制保证同一流至多一段在途负载；
	// 返还（OKAY）由端点消费完负载后经 peer.Ready 发出
	s.Enqueue(p.Payload)
}
