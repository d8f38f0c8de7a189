package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionStateString(t *testing.T) {
	assert.Equal(t, "offline", StateOffline.String())
	assert.Equal(t, "bootloader", StateBootloader.String())
	assert.Equal(t, "device", StateDevice.String())
	assert.Equal(t, "host", StateHost.String())
	assert.Equal(t, "recovery", StateRecovery.String())
	assert.Equal(t, "rescue", StateRescue.String())
	assert.Equal(t, "sideload", StateSideload.String())
	assert.Equal(t, "unauthorized", StateUnauthorized.String())
	assert.Equal(t, "authorizing", StateAuthorizing.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "noperm", StateNoPermission.String())
	assert.Equal(t, "detached", StateDetached.String())
}

func TestConnectionStateIsOnline(t *testing.T) {
	online := []ConnectionState{
		StateBootloader, StateDevice, StateHost,
		StateRecovery, StateSideload, StateRescue,
	}
	for _, s := range online {
		assert.True(t, s.IsOnline(), s.String())
	}

	offline := []ConnectionState{
		StateConnecting, StateAuthorizing, StateUnauthorized,
		StateNoPermission, StateDetached, StateOffline,
	}
	for _, s := range offline {
		assert.False(t, s.IsOnline(), s.String())
	}
}

func TestTransportKindString(t *testing.T) {
	assert.Equal(t, "usb", KindUSB.String())
	assert.Equal(t, "local", KindLocal.String())
	assert.Equal(t, "any", KindAny.String())
}

func TestSocketIDIsZero(t *testing.T) {
	assert.True(t, SocketID(0).IsZero())
	assert.False(t, SocketID(1).IsZero())
}
