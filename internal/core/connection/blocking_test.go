package connection

import (
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/wire"
)

func pipeAdapter(t *testing.T) (*BlockingConnectionAdapter, net.Conn) {
	t.Helper()
	local, remote := net.Pipe()
	c := NewBlockingConnectionAdapter(local)
	t.Cleanup(c.Stop)
	t.Cleanup(func() { remote.Close() })
	return c, remote
}

func TestBlockingReceive(t *testing.T) {
	c, remote := pipeAdapter(t)

	got := make(chan *wire.Packet, 1)
	require.NoError(t, c.Start(
		func(p *wire.Packet) { got <- p },
		func(err error) {},
	))

	enc := wire.NewEncoder(remote)
	go func() {
		_ = enc.WritePacket(wire.NewPacket(wire.CmdOpen, 1, 0, []byte("sink:100\x00")))
	}()

	select {
	case p := <-got:
		assert.Equal(t, wire.CmdOpen, p.Command)
		assert.Equal(t, []byte("sink:100\x00"), p.Payload)
	case <-time.After(time.Second):
		t.Fatal("packet not delivered")
	}
}

func TestBlockingSend(t *testing.T) {
	c, remote := pipeAdapter(t)

	require.NoError(t, c.Start(func(*wire.Packet) {}, func(error) {}))

	dec := wire.NewDecoder(remote)
	done := make(chan *wire.Packet, 1)
	go func() {
		p, err := dec.ReadPacket()
		if err == nil {
			done <- p
		}
	}()

	require.NoError(t, c.Send(wire.NewPacket(wire.CmdOkay, 3, 4, nil)))

	select {
	case p := <-done:
		assert.Equal(t, wire.CmdOkay, p.Command)
		assert.Equal(t, uint32(3), p.Arg0)
	case <-time.After(time.Second):
		t.Fatal("packet not sent")
	}
}

func TestOnErrorExactlyOnce(t *testing.T) {
	c, remote := pipeAdapter(t)

	var errCount atomic.Int32
	require.NoError(t, c.Start(
		func(*wire.Packet) {},
		func(err error) { errCount.Add(1) },
	))

	remote.Close() // 对端挂断

	assert.Eventually(t, func() bool {
		return errCount.Load() == 1
	}, time.Second, 10*time.Millisecond)

	// 出错后发送恒失败
	assert.ErrorIs(t, c.Send(wire.NewPacket(wire.CmdOkay, 1, 2, nil)), ErrClosed)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), errCount.Load())
}

func TestFramingErrorSurfacesAsProtocolError(t *testing.T) {
	c, remote := pipeAdapter(t)

	errCh := make(chan error, 1)
	require.NoError(t, c.Start(
		func(*wire.Packet) {},
		func(err error) { errCh <- err },
	))

	// 伪造 magic 损坏的头部
	bad := make([]byte, wire.HeaderSize)
	copy(bad[0:4], []byte("CNXN"))
	go remote.Write(bad)

	select {
	case err := <-errCh:
		assert.True(t, wire.IsProtocolError(err))
	case <-time.After(time.Second):
		t.Fatal("framing error not surfaced")
	}
}

func TestStopSuppressesCallbacks(t *testing.T) {
	c, _ := pipeAdapter(t)

	var errCount atomic.Int32
	require.NoError(t, c.Start(
		func(*wire.Packet) {},
		func(err error) { errCount.Add(1) },
	))

	c.Stop()
	c.Stop() // 幂等

	assert.ErrorIs(t, c.Send(wire.NewPacket(wire.CmdOkay, 1, 2, nil)), ErrClosed)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), errCount.Load())
}

func TestSendBeforeStart(t *testing.T) {
	local, _ := net.Pipe()
	c := NewBlockingConnectionAdapter(local)
	defer c.Stop()
	assert.ErrorIs(t, c.Send(wire.NewPacket(wire.CmdOkay, 1, 2, nil)), ErrNotStarted)
}

func TestStartTwice(t *testing.T) {
	c, _ := pipeAdapter(t)
	require.NoError(t, c.Start(func(*wire.Packet) {}, func(error) {}))
	assert.ErrorIs(t, c.Start(func(*wire.Packet) {}, func(error) {}), ErrAlreadyStarted)
}
