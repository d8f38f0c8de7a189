package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/socket"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/wire"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/interfaces"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/types"
)

// ============================================================================
//                              测试替身
// ============================================================================

// mockConn 记录发出的报文
type mockConn struct {
	sent    []*wire.Packet
	stopped bool
	sendErr error
}

func (c *mockConn) Start(onRead interfaces.PacketHandler, onError interfaces.ErrorHandler) error {
	return nil
}
func (c *mockConn) Send(p *wire.Packet) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, p)
	return nil
}
func (c *mockConn) Stop() { c.stopped = true }

// lastSent 返回最近一个指定命令的报文
func (c *mockConn) lastSent(command uint32) *wire.Packet {
	for i := len(c.sent) - 1; i >= 0; i-- {
		if c.sent[i].Command == command {
			return c.sent[i]
		}
	}
	return nil
}

// mockService 可安装进注册表的服务端替身
type mockService struct {
	id      types.SocketID
	peer    socket.Socket
	t       interfaces.Transport
	enq     [][]byte
	readies int
	closed  bool
}

func (m *mockService) ID() types.SocketID              { return m.id }
func (m *mockService) SetID(id types.SocketID)         { m.id = id }
func (m *mockService) Transport() interfaces.Transport { return m.t }
func (m *mockService) Peer() socket.Socket             { return m.peer }
func (m *mockService) SetPeer(p socket.Socket)         { m.peer = p }
func (m *mockService) Enqueue(data []byte) int {
	m.enq = append(m.enq, data)
	return socket.EnqueueOK
}
func (m *mockService) Ready()    { m.readies++ }
func (m *mockService) Shutdown() {}
func (m *mockService) Close() {
	if m.closed {
		return
	}
	m.closed = true
	if p := m.peer; p != nil {
		p.Shutdown()
		m.peer = nil
		p.SetPeer(nil)
		p.Close()
	}
}

// mockDispatcher 固定返回预设服务
type mockDispatcher struct {
	svc  *mockService
	err  error
	last string
}

func (d *mockDispatcher) Open(name string, t interfaces.Transport) (socket.Socket, error) {
	d.last = name
	if d.err != nil {
		return nil, d.err
	}
	d.svc.t = t
	// 与真实分发器一致：返回前装入传输的注册表
	if tr, ok := t.(*Transport); ok && tr.registry != nil {
		if _, err := tr.registry.Install(d.svc); err != nil {
			return nil, err
		}
	}
	return d.svc, nil
}

// mockAuth 可编程认证器
type mockAuth struct {
	token     []byte
	verifyOK  bool
	confirmOK bool
}

func (a *mockAuth) Required() bool { return true }
func (a *mockAuth) GenerateToken() ([]byte, error) {
	if a.token == nil {
		a.token = []byte("01234567890123456789")
	}
	return a.token, nil
}
func (a *mockAuth) VerifySignature(token, sig []byte) bool { return a.verifyOK }
func (a *mockAuth) ConfirmPublicKey(key []byte) bool       { return a.confirmOK }

func newTestTransport(t *testing.T, opts Options) (*Transport, *mockConn, *socket.Registry) {
	t.Helper()
	reg := socket.NewRegistry()
	tr := New(nil, reg, &mockDispatcher{svc: &mockService{}}, nil, nil, opts)
	conn := &mockConn{}
	tr.mu.Lock()
	tr.conn = conn
	tr.mu.Unlock()
	return tr, conn, reg
}

// ============================================================================
//                              断连钩子
// ============================================================================

func TestRunDisconnects(t *testing.T) {
	tr, _, _ := newTestTransport(t, Options{Kind: types.KindLocal})

	// 空钩子表可安全调用
	tr.RunDisconnects()

	count := 0
	d := NewDisconnect(func(*Transport) { count++ })
	tr.AddDisconnect(d)
	tr.RunDisconnects()
	assert.Equal(t, 1, count)

	// 触发后自动摘除
	tr.RunDisconnects()
	assert.Equal(t, 1, count)

	count = 0
	tr.AddDisconnect(d)
	tr.RemoveDisconnect(d)
	tr.RunDisconnects()
	assert.Equal(t, 0, count)
}

func TestDisconnectsRunInRegistrationOrder(t *testing.T) {
	tr, _, _ := newTestTransport(t, Options{})

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		tr.AddDisconnect(NewDisconnect(func(*Transport) { order = append(order, i) }))
	}
	tr.RunDisconnects()
	assert.Equal(t, []int{0, 1, 2}, order)
}

// ============================================================================
//                              特性集合
// ============================================================================

func TestSetFeatures(t *testing.T) {
	tr, _, _ := newTestTransport(t, Options{Kind: types.KindLocal})
	assert.Equal(t, 0, tr.Features().Len())

	tr.SetFeatures("foo")
	assert.Equal(t, 1, tr.Features().Len())
	assert.True(t, tr.HasFeature("foo"))

	tr.SetFeatures("foo,bar")
	assert.Equal(t, 2, tr.Features().Len())
	assert.True(t, tr.HasFeature("foo"))
	assert.True(t, tr.HasFeature("bar"))

	tr.SetFeatures("foo,bar,foo")
	assert.GreaterOrEqual(t, tr.Features().Len(), 2)
	assert.True(t, tr.HasFeature("foo"))
	assert.True(t, tr.HasFeature("bar"))

	// 整体替换而非合并
	tr.SetFeatures("bar,baz")
	assert.Equal(t, 2, tr.Features().Len())
	assert.False(t, tr.HasFeature("foo"))
	assert.True(t, tr.HasFeature("bar"))
	assert.True(t, tr.HasFeature("baz"))

	tr.SetFeatures("")
	assert.Equal(t, 0, tr.Features().Len())
}

// ============================================================================
//                              Kick
// ============================================================================

func TestKick(t *testing.T) {
	tr, conn, reg := newTestTransport(t, Options{Serial: "foo"})

	// 挂两个套接字
	a := &mockService{t: tr}
	b := &mockService{t: tr}
	_, err := reg.Install(a)
	require.NoError(t, err)
	_, err = reg.Install(b)
	require.NoError(t, err)

	hooks := 0
	tr.AddDisconnect(NewDisconnect(func(*Transport) { hooks++ }))

	tr.Kick()

	assert.Equal(t, types.StateOffline, tr.ConnectionState())
	assert.True(t, conn.stopped)
	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.Empty(t, reg.EnumerateForTransport(tr))
	assert.Equal(t, 1, hooks)

	// 离线后发送恒失败
	assert.ErrorIs(t, tr.SendPacket(wire.NewPacket(wire.CmdOkay, 1, 2, nil)), ErrOffline)

	// 重复 kick 不再触发钩子
	tr.Kick()
	assert.Equal(t, 1, hooks)
}

func TestSendFailureKicks(t *testing.T) {
	tr, conn, _ := newTestTransport(t, Options{})
	conn.sendErr = assert.AnError

	err := tr.SendPacket(wire.NewPacket(wire.CmdOkay, 1, 2, nil))
	assert.Error(t, err)
	assert.Equal(t, types.StateOffline, tr.ConnectionState())
}

// ============================================================================
//                              传输注册表
// ============================================================================

func TestListRegisterAndKickUnregisters(t *testing.T) {
	l := NewList()
	tr, _, _ := newTestTransport(t, Options{Serial: "x"})

	id := l.Register(tr)
	assert.Equal(t, types.TransportID(1), id)
	assert.Equal(t, id, tr.ID())
	assert.Equal(t, 1, l.Count())

	// kick 经断连钩子自动摘除
	tr.Kick()
	assert.Equal(t, 0, l.Count())
}

func TestListFind(t *testing.T) {
	l := NewList()
	a, _, _ := newTestTransport(t, Options{Serial: "alpha", Kind: types.KindUSB})
	b, _, _ := newTestTransport(t, Options{Serial: "10.0.0.1:5555", Kind: types.KindLocal})
	l.Register(a)
	l.Register(b)

	got, err := l.Find("alpha")
	require.NoError(t, err)
	assert.Same(t, a, got)

	got, err = l.Find("tcp:10.0.0.1")
	require.NoError(t, err)
	assert.Same(t, b, got)

	_, err = l.Find("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKickAll(t *testing.T) {
	l := NewList()
	a, _, _ := newTestTransport(t, Options{Serial: "a"})
	b, _, _ := newTestTransport(t, Options{Serial: "b"})
	l.Register(a)
	l.Register(b)

	l.KickAll()
	assert.Equal(t, 0, l.Count())
	assert.Equal(t, types.StateOffline, a.ConnectionState())
	assert.Equal(t, types.StateOffline, b.ConnectionState())
}
