package adb_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adb "github.com/Lunaris-AOSP/packages-modules-adb"
	"github.com/Lunaris-AOSP/packages-modules-adb/config"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/wire"
)

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Auth.Required = false
	cfg.Metrics.Enabled = false
	cfg.Server.ListenAddrs = []string{"tcp:127.0.0.1:0"}
	cfg.Transport.Product = "it_product"
	return cfg
}

func TestDaemonLifecycle(t *testing.T) {
	d, err := adb.New(adb.WithConfig(testConfig()))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, d.Start(ctx))
	defer func() { require.NoError(t, d.Stop(ctx)) }()

	addrs := d.ListenAddrs()
	require.Len(t, addrs, 1)

	c, err := net.Dial("tcp", addrs[0])
	require.NoError(t, err)
	defer c.Close()

	enc := wire.NewEncoder(c)
	enc.Version = wire.VersionSkipChecksum
	dec := wire.NewDecoder(c)
	dec.Version = wire.VersionSkipChecksum

	require.NoError(t, enc.WritePacket(
		wire.NewPacket(wire.CmdConnect, wire.CurrentVersion, wire.MaxPayload, []byte("host::"))))

	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	reply, err := dec.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, wire.CmdConnect, reply.Command)
	assert.Contains(t, string(reply.Payload), "device::")
	assert.Contains(t, string(reply.Payload), "ro.product.name=it_product")

	// 上线后传输在册
	assert.Equal(t, 1, d.Transports().Count())
}

func TestDaemonRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Transport.MaxPayload = 1
	_, err := adb.New(adb.WithConfig(cfg))
	assert.Error(t, err)
}

func TestDaemonOptionOverrides(t *testing.T) {
	d, err := adb.New(
		adb.WithConfig(testConfig()),
		adb.WithBannerIdentity("p", "m", "dv"),
		adb.WithListenAddrs("tcp:127.0.0.1:0"),
	)
	require.NoError(t, err)
	assert.Equal(t, "p", d.Config().Transport.Product)
	assert.Equal(t, []string{"tcp:127.0.0.1:0"}, d.Config().Server.ListenAddrs)
}
