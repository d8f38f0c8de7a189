package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Auth.Required)
	assert.Equal(t, uint32(1024*1024), cfg.Transport.MaxPayload)
	assert.Equal(t, []string{"tcp:5555"}, cfg.Server.ListenAddrs)
}

func TestFromJSONOverridesDefaults(t *testing.T) {
	data := []byte(`{
		"transport": {"max_payload": 65536, "product": "sdk_gphone", "connect_timeout": "5s"},
		"auth": {"required": false},
		"server": {"listen_addrs": ["tcp:127.0.0.1:5557"]}
	}`)

	cfg, err := FromJSON(data)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, uint32(65536), cfg.Transport.MaxPayload)
	assert.Equal(t, "sdk_gphone", cfg.Transport.Product)
	assert.Equal(t, 5*time.Second, cfg.Transport.ConnectTimeout.Duration())
	assert.False(t, cfg.Auth.Required)
	assert.Equal(t, []string{"tcp:127.0.0.1:5557"}, cfg.Server.ListenAddrs)
	// 未覆盖的字段保持默认
	assert.True(t, cfg.Service.EnableSubprocess)
}

func TestDurationAcceptsNanoseconds(t *testing.T) {
	cfg, err := FromJSON([]byte(`{"transport": {"connect_timeout": 3000000000}}`))
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Transport.ConnectTimeout.Duration())
}

func TestDurationRejectsGarbage(t *testing.T) {
	_, err := FromJSON([]byte(`{"transport": {"connect_timeout": "soon"}}`))
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := NewConfig()
	cfg.Transport.MaxPayload = 1
	assert.ErrorIs(t, cfg.Validate(), ErrBadMaxPayload)

	cfg = NewConfig()
	cfg.Server.ListenAddrs = []string{"quic:5555"}
	assert.ErrorIs(t, cfg.Validate(), ErrBadListenAddr)
}

func TestJSONRoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.Transport.Model = "Pixel 9"

	data, err := cfg.ToJSON()
	require.NoError(t, err)

	back, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}
