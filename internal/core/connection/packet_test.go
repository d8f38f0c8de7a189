package connection

import (
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/wire"
)

// fakePacketLink 内存报文链路
type fakePacketLink struct {
	mu     sync.Mutex
	in     chan *wire.Packet
	out    []*wire.Packet
	closed atomic.Bool
}

func newFakePacketLink() *fakePacketLink {
	return &fakePacketLink{in: make(chan *wire.Packet, 8)}
}

func (f *fakePacketLink) ReadPacket() (*wire.Packet, error) {
	p, ok := <-f.in
	if !ok {
		return nil, io.EOF
	}
	return p, nil
}

func (f *fakePacketLink) WritePacket(p *wire.Packet) error {
	if f.closed.Load() {
		return io.ErrClosedPipe
	}
	f.mu.Lock()
	f.out = append(f.out, p)
	f.mu.Unlock()
	return nil
}

func (f *fakePacketLink) Close() error {
	if f.closed.CompareAndSwap(false, true) {
		close(f.in)
	}
	return nil
}

func TestPacketConnectionReceive(t *testing.T) {
	link := newFakePacketLink()
	c := NewPacketConnection(link)
	defer c.Stop()

	got := make(chan *wire.Packet, 1)
	require.NoError(t, c.Start(
		func(p *wire.Packet) { got <- p },
		func(error) {},
	))

	link.in <- wire.NewPacket(wire.CmdOkay, 1, 2, nil)

	select {
	case p := <-got:
		assert.Equal(t, wire.CmdOkay, p.Command)
	case <-time.After(time.Second):
		t.Fatal("packet not delivered")
	}
}

func TestPacketConnectionSendDirect(t *testing.T) {
	link := newFakePacketLink()
	c := NewPacketConnection(link)
	defer c.Stop()

	require.NoError(t, c.Start(func(*wire.Packet) {}, func(error) {}))
	require.NoError(t, c.Send(wire.NewPacket(wire.CmdWrite, 1, 2, []byte("x"))))

	link.mu.Lock()
	defer link.mu.Unlock()
	require.Len(t, link.out, 1)
	assert.Equal(t, wire.CmdWrite, link.out[0].Command)
}

func TestPacketConnectionErrorOnce(t *testing.T) {
	link := newFakePacketLink()
	c := NewPacketConnection(link)

	var errs atomic.Int32
	require.NoError(t, c.Start(func(*wire.Packet) {}, func(error) { errs.Add(1) }))

	link.Close()

	assert.Eventually(t, func() bool { return errs.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, c.Send(wire.NewPacket(wire.CmdOkay, 1, 2, nil)), ErrClosed)
}

func TestPacketConnectionStopSuppresses(t *testing.T) {
	link := newFakePacketLink()
	c := NewPacketConnection(link)

	var errs atomic.Int32
	require.NoError(t, c.Start(func(*wire.Packet) {}, func(error) { errs.Add(1) }))

	c.Stop()
	c.Stop()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), errs.Load())
	assert.ErrorIs(t, c.Send(wire.NewPacket(wire.CmdOkay, 1, 2, nil)), ErrClosed)
}
