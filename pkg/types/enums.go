package types

// ============================================================================
//                              ConnectionState - 连接状态
// ============================================================================

// ConnectionState 传输的连接状态
type ConnectionState int

const (
	// StateConnecting 等待对端的 CNXN
	StateConnecting ConnectionState = iota
	// StateAuthorizing 已收到签名/公钥，正在验证
	StateAuthorizing
	// StateUnauthorized 等待对端出示签名
	StateUnauthorized
	// StateNoPermission 设备不可访问（权限不足）
	StateNoPermission
	// StateDetached 已从守护进程分离
	StateDetached
	// StateOffline 已离线，不再收发任何报文
	StateOffline
	// StateBootloader 对端处于 bootloader
	StateBootloader
	// StateDevice 对端为普通设备
	StateDevice
	// StateHost 对端为主机控制器
	StateHost
	// StateRecovery 对端处于 recovery
	StateRecovery
	// StateSideload 对端处于 sideload
	StateSideload
	// StateRescue 对端处于 rescue
	StateRescue
)

// String 返回状态的字符串表示（设备列举通道使用的固定名字）
func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthorizing:
		return "authorizing"
	case StateUnauthorized:
		return "unauthorized"
	case StateNoPermission:
		return "noperm"
	case StateDetached:
		return "detached"
	case StateOffline:
		return "offline"
	case StateBootloader:
		return "bootloader"
	case StateDevice:
		return "device"
	case StateHost:
		return "host"
	case StateRecovery:
		return "recovery"
	case StateSideload:
		return "sideload"
	case StateRescue:
		return "rescue"
	default:
		return "unknown"
	}
}

// IsOnline 检查状态是否允许继续收发报文
func (s ConnectionState) IsOnline() bool {
	switch s {
	case StateBootloader, StateDevice, StateHost, StateRecovery, StateSideload, StateRescue:
		return true
	default:
		return false
	}
}

// ============================================================================
//                              TransportKind - 传输类别
// ============================================================================

// TransportKind 传输的物理类别
type TransportKind int

const (
	// KindAny 任意类别（仅用于匹配查询）
	KindAny TransportKind = iota
	// KindUSB USB 批量端点
	KindUSB
	// KindLocal 网络套接字（TCP/vsock）
	KindLocal
)

// String 返回类别的字符串表示
func (k TransportKind) String() string {
	switch k {
	case KindUSB:
		return "usb"
	case KindLocal:
		return "local"
	default:
		return "any"
	}
}
