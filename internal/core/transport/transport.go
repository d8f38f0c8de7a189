package transport

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/fdevent"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/metrics"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/socket"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/wire"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/interfaces"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/lib/log"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/types"
)

var logger = log.Logger("core/transport")

// ============================================================================
//                              协作接口
// ============================================================================

// Dispatcher 服务分发：按名字把 OPEN 绑定到本地端点
type Dispatcher interface {
	// Open 解析服务名并返回已安装进注册表的本地套接字
	Open(name string, t interfaces.Transport) (socket.Socket, error)
}

// Authorizer 认证协作者
type Authorizer interface {
	// Required 是否要求认证
	Required() bool

	// GenerateToken 生成 20 字节随机挑战
	GenerateToken() ([]byte, error)

	// VerifySignature 用已安装的公钥验证对挑战的签名
	VerifySignature(token, sig []byte) bool

	// ConfirmPublicKey 征询授权策略；接受时负责存储公钥
	ConfirmPublicKey(key []byte) bool
}

// TLSUpgrader STLS 升级回调（TLS 协商本身在核心之外）
type TLSUpgrader func(t *Transport) error

// Disconnect 断连钩子的持有句柄
//
// 注册返回句柄、注销消耗句柄，避免钩子触发时自注销的重入问题。
type Disconnect struct {
	fn func(*Transport)
}

// NewDisconnect 创建断连钩子
func NewDisconnect(fn func(*Transport)) *Disconnect {
	return &Disconnect{fn: fn}
}

// ============================================================================
//                              Transport
// ============================================================================

// DeviceBanner 本端在 CNXN 中宣告的身份
type DeviceBanner struct {
	Side     string
	Product  string
	Model    string
	Device   string
	Features types.FeatureSet
}

// Options 传输构造参数
type Options struct {
	Kind         types.TransportKind
	Serial       string
	DevPath      string
	AuthRequired bool
	Banner       DeviceBanner
	TLSUpgrade   TLSUpgrader
}

// Transport 一条到对端的活动链路
type Transport struct {
	id      types.TransportID
	kind    types.TransportKind
	serial  string
	devpath string
	traceID string

	loop       *fdevent.Loop
	registry   *socket.Registry
	dispatcher Dispatcher
	auth       Authorizer
	stats      *metrics.Metrics

	local      DeviceBanner
	tlsUpgrade TLSUpgrader

	mu    sync.Mutex
	conn  interfaces.Connection
	state types.ConnectionState
	// 对端 banner 解出的身份
	product  string
	model    string
	device   string
	features types.FeatureSet
	// 对端 banner 给出的在线状态，认证通过后恢复
	bannerState types.ConnectionState

	protocolVersion uint32
	maxPayload      uint32
	authRequired    bool
	token           []byte
	wentOnline      bool

	disconnects []*Disconnect

	kickOnce sync.Once
}

var _ interfaces.Transport = (*Transport)(nil)

// New 创建传输
//
// ID 由 List 在注册时分配；此前为 0。
func New(loop *fdevent.Loop, reg *socket.Registry, d Dispatcher, a Authorizer, m *metrics.Metrics, opts Options) *Transport {
	authRequired := opts.AuthRequired
	if a == nil {
		authRequired = false
	}
	return &Transport{
		kind:            opts.Kind,
		serial:          opts.Serial,
		devpath:         opts.DevPath,
		traceID:         uuid.New().String(),
		loop:            loop,
		registry:        reg,
		dispatcher:      d,
		auth:            a,
		stats:           m,
		local:           opts.Banner,
		tlsUpgrade:      opts.TLSUpgrade,
		state:           types.StateConnecting,
		features:        types.NewFeatureSet(),
		protocolVersion: wire.VersionMin,
		maxPayload:      wire.MaxPayloadLegacy,
		authRequired:    authRequired,
	}
}

// ============================================================================
//                              标识访问
// ============================================================================

// ID 返回进程内传输标识
func (t *Transport) ID() types.TransportID { return t.id }

// SetID 由 List 注册时赋值
func (t *Transport) SetID(id types.TransportID) { t.id = id }

// Kind 返回物理类别
func (t *Transport) Kind() types.TransportKind { return t.kind }

// Serial 返回序列号
func (t *Transport) Serial() string { return t.serial }

// DevPath 返回设备路径
func (t *Transport) DevPath() string { return t.devpath }

// Product 返回对端 ro.product.name
func (t *Transport) Product() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.product
}

// Model 返回对端 ro.product.model
func (t *Transport) Model() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.model
}

// Device 返回对端 ro.product.device
func (t *Transport) Device() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.device
}

// ConnectionState 返回当前状态
func (t *Transport) ConnectionState() types.ConnectionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// SetConnectionState 更新状态
func (t *Transport) SetConnectionState(s types.ConnectionState) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

// MaxPayload 返回协商后的负载上限
func (t *Transport) MaxPayload() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.maxPayload
}

// ProtocolVersion 返回协商后的协议版本
func (t *Transport) ProtocolVersion() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.protocolVersion
}

// ============================================================================
//                              特性集合
// ============================================================================

// SetFeatures 用逗号分隔串整体替换特性集合
func (t *Transport) SetFeatures(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.features = types.ParseFeatureSet(s)
}

// Features 返回当前特性集合
func (t *Transport) Features() types.FeatureSet {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.features
}

// HasFeature 检查特性
func (t *Transport) HasFeature(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.features.Has(name)
}

// ============================================================================
//                              连接与收发
// ============================================================================

// SetConnection 安装并启动连接，状态进入 Connecting
func (t *Transport) SetConnection(conn interfaces.Connection) error {
	t.mu.Lock()
	t.conn = conn
	t.state = types.StateConnecting
	t.mu.Unlock()

	return conn.Start(
		func(p *wire.Packet) {
			// 跨线程移交：报文处理约束在循环线程
			t.loop.Post(func() { t.HandlePacket(p) })
		},
		func(err error) {
			logger.Info("连接失效", "transport", t.traceID, "error", err)
			t.loop.Post(t.Kick)
		},
	)
}

// SendPacket 经连接发出报文；失败时发起 kick
func (t *Transport) SendPacket(p *wire.Packet) error {
	t.mu.Lock()
	conn := t.conn
	offline := t.state == types.StateOffline
	t.mu.Unlock()

	if offline {
		return ErrOffline
	}
	if conn == nil {
		return ErrNoConnection
	}
	if err := conn.Send(p); err != nil {
		logger.Warn("报文发送失败", "transport", t.traceID, "command", wire.CommandString(p.Command), "error", err)
		t.Kick()
		return err
	}
	if t.stats != nil {
		t.stats.PacketSent(wire.CommandString(p.Command), len(p.Payload))
	}
	return nil
}

// Kick 强制拆除传输
//
// 状态置 Offline、停止连接、关闭所有挂载的套接字（各自级联
// 等价于对端 CLSE 的关闭）、按注册顺序触发断连钩子恰好一次。
func (t *Transport) Kick() {
	t.kickOnce.Do(func() {
		logger.Info("拆除传输", "transport", t.traceID, "serial", t.serial)

		t.mu.Lock()
		t.state = types.StateOffline
		conn := t.conn
		wentOnline := t.wentOnline
		t.mu.Unlock()

		if conn != nil {
			conn.Stop()
		}
		if t.registry != nil {
			t.registry.CloseForTransport(t)
		}
		t.RunDisconnects()
		if t.stats != nil && wentOnline {
			t.stats.TransportClosed()
		}
	})
}

// ============================================================================
//                              断连钩子
// ============================================================================

// AddDisconnect 注册断连钩子
func (t *Transport) AddDisconnect(d *Disconnect) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disconnects = append(t.disconnects, d)
}

// RemoveDisconnect 注销尚未触发的钩子
func (t *Transport) RemoveDisconnect(d *Disconnect) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, cur := range t.disconnects {
		if cur == d {
			t.disconnects = append(t.disconnects[:i], t.disconnects[i+1:]...)
			return
		}
	}
}

// RunDisconnects 按注册顺序触发并清空钩子
//
// 触发后即清空，连续调用两次每个钩子至多触发一次。
// 钩子在不持有传输锁的情况下执行。
func (t *Transport) RunDisconnects() {
	t.mu.Lock()
	hooks := t.disconnects
	t.disconnects = nil
	t.mu.Unlock()

	for _, d := range hooks {
		d.fn(t)
	}
}
