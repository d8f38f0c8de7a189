package transport

import (
	"strconv"
	"strings"

	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/types"
)

// defaultLocalPort 网络传输的缺省端口
const defaultLocalPort = 5555

// parseHostPort 解析 host[:port]
//
// 省略端口时取 defPort；端口必须是十进制正整数。
func parseHostPort(s string, defPort int) (host string, port int, ok bool) {
	if s == "" {
		return "", 0, false
	}
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return s, defPort, true
	}
	host = s[:idx]
	p, err := strconv.Atoi(s[idx+1:])
	if err != nil || p <= 0 || host == "" {
		return "", 0, false
	}
	return host, p, true
}

// MatchesTarget 模糊匹配目标查询
//
// 接受的形式：
//   - 裸串：等于 serial 或 devpath；网络传输还可等于 serial 的 host 段
//   - product:X / model:X / device:X：匹配对应属性
//   - tcp:H[:P] / udp:H[:P]：仅网络传输；H 等于 serial 的 host，
//     给出 P 时还要求端口一致
func (t *Transport) MatchesTarget(target string) bool {
	if t.serial != "" {
		if target == t.serial {
			return true
		}
		if t.kind == types.KindLocal {
			if host, port, ok := parseHostPort(t.serial, defaultLocalPort); ok {
				if target == host {
					return true
				}
				for _, prefix := range []string{"tcp:", "udp:"} {
					if rest, found := strings.CutPrefix(target, prefix); found {
						if qh, qp, qok := parseHostPort(rest, port); qok && qh == host && qp == port {
							return true
						}
						return false
					}
				}
			}
		}
	}

	if t.devpath != "" && target == t.devpath {
		return true
	}

	if v, found := strings.CutPrefix(target, "product:"); found {
		return v != "" && v == t.Product()
	}
	if v, found := strings.CutPrefix(target, "model:"); found {
		return v != "" && v == t.Model()
	}
	if v, found := strings.CutPrefix(target, "device:"); found {
		return v != "" && v == t.Device()
	}

	return false
}
