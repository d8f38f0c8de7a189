package transport

import (
	"strings"

	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/types"
)

// banner 键名
const (
	propProduct  = "ro.product.name"
	propModel    = "ro.product.model"
	propDevice   = "ro.product.device"
	propFeatures = "features"
)

// sideToState 把 banner 的 side 段映射为连接状态
func sideToState(side string) types.ConnectionState {
	switch side {
	case "host":
		return types.StateHost
	case "device":
		return types.StateDevice
	case "bootloader":
		return types.StateBootloader
	case "recovery":
		return types.StateRecovery
	case "rescue":
		return types.StateRescue
	case "sideload":
		return types.StateSideload
	default:
		return types.StateOffline
	}
}

// ParseBanner 解析对端 CNXN 负载并更新传输身份
//
// 格式：<side>"::"<k=v;...>。空属性表合法；未知键忽略。
// 缺少 "::" 的畸形 banner 使传输离线而不是崩溃。
func ParseBanner(banner string, t *Transport) error {
	side, props, found := strings.Cut(banner, "::")
	if !found {
		t.SetConnectionState(types.StateOffline)
		return ErrMalformedBanner
	}

	state := sideToState(side)

	t.mu.Lock()
	t.product = ""
	t.model = ""
	t.device = ""
	t.mu.Unlock()

	var features string
	for _, kv := range strings.Split(props, ";") {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		switch key {
		case propProduct:
			t.mu.Lock()
			t.product = value
			t.mu.Unlock()
		case propModel:
			t.mu.Lock()
			t.model = value
			t.mu.Unlock()
		case propDevice:
			t.mu.Lock()
			t.device = value
			t.mu.Unlock()
		case propFeatures:
			features = value
		}
	}
	t.SetFeatures(features)

	t.mu.Lock()
	t.state = state
	t.bannerState = state
	t.mu.Unlock()
	return nil
}

// FormatBanner 构造本端 CNXN 负载
func FormatBanner(b DeviceBanner) string {
	side := b.Side
	if side == "" {
		side = "device"
	}

	var props []string
	if b.Product != "" {
		props = append(props, propProduct+"="+b.Product)
	}
	if b.Model != "" {
		props = append(props, propModel+"="+b.Model)
	}
	if b.Device != "" {
		props = append(props, propDevice+"="+b.Device)
	}
	if b.Features.Len() > 0 {
		props = append(props, propFeatures+"="+b.Features.String())
	}
	return side + "::" + strings.Join(props, ";")
}
