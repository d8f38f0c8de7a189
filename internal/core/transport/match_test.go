package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/types"
)

func usbTransport(t *testing.T) *Transport {
	t.Helper()
	tr, _, _ := newTestTransport(t, Options{
		Kind:    types.KindUSB,
		Serial:  "foo",
		DevPath: "/path/to/bar",
	})
	require.NoError(t, ParseBanner(
		"host::ro.product.name=test_product;ro.product.model=test_model;ro.product.device=test_device", tr))
	return tr
}

func TestMatchesTargetUSB(t *testing.T) {
	tr := usbTransport(t)

	assert.True(t, tr.MatchesTarget("foo"))
	assert.True(t, tr.MatchesTarget("/path/to/bar"))
	assert.True(t, tr.MatchesTarget("product:test_product"))
	assert.True(t, tr.MatchesTarget("model:test_model"))
	assert.True(t, tr.MatchesTarget("device:test_device"))

	// 无前缀不匹配属性
	assert.False(t, tr.MatchesTarget("test_product"))
	assert.False(t, tr.MatchesTarget("test_model"))
	assert.False(t, tr.MatchesTarget("test_device"))

	// 网络形式只对网络传输有效
	assert.False(t, tr.MatchesTarget("tcp:foo"))
	assert.False(t, tr.MatchesTarget("udp:foo"))
}

func TestMatchesTargetLocal(t *testing.T) {
	tr, _, _ := newTestTransport(t, Options{
		Kind:   types.KindLocal,
		Serial: "100.100.100.100:5555",
	})

	assert.True(t, tr.MatchesTarget("100.100.100.100"))
	assert.True(t, tr.MatchesTarget("tcp:100.100.100.100"))
	assert.True(t, tr.MatchesTarget("tcp:100.100.100.100:5555"))
	assert.True(t, tr.MatchesTarget("udp:100.100.100.100"))
	assert.True(t, tr.MatchesTarget("udp:100.100.100.100:5555"))

	// 错误的主机、端口或协议
	assert.False(t, tr.MatchesTarget("100.100.100"))
	assert.False(t, tr.MatchesTarget("100.100.100.100:"))
	assert.False(t, tr.MatchesTarget("100.100.100.100:-1"))
	assert.False(t, tr.MatchesTarget("100.100.100.100:5554"))
	assert.False(t, tr.MatchesTarget("tcp:100.100.100.100:5554"))
	assert.False(t, tr.MatchesTarget("abc:100.100.100.100"))
}

func TestMatchesTargetLocalFormsRejectedOnUSB(t *testing.T) {
	tr, _, _ := newTestTransport(t, Options{
		Kind:   types.KindUSB,
		Serial: "100.100.100.100:5555",
	})

	assert.False(t, tr.MatchesTarget("100.100.100.100"))
	assert.False(t, tr.MatchesTarget("tcp:100.100.100.100:5555"))
	assert.False(t, tr.MatchesTarget("udp:100.100.100.100"))
	// 完整序列号仍然匹配
	assert.True(t, tr.MatchesTarget("100.100.100.100:5555"))
}

func TestMatchesTargetStable(t *testing.T) {
	tr := usbTransport(t)
	for _, q := range []string{"foo", "tcp:foo", "product:test_product", "nope"} {
		assert.Equal(t, tr.MatchesTarget(q), tr.MatchesTarget(q), "query %q", q)
	}
}

func TestMatchesTargetSerialMatchIsExact(t *testing.T) {
	tr, _, _ := newTestTransport(t, Options{Kind: types.KindUSB, Serial: ""})
	// 空序列号不会匹配空查询之外的任何东西
	assert.False(t, tr.MatchesTarget("anything"))
}
