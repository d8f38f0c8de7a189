// Package service 实现服务分发
//
// OPEN 报文携带的服务名经分发器解析后绑定到新建的本地套接字：
// 进程内服务（jdwp/track-jdwp/track-app/sink/source）直接实现
// 套接字契约；描述符服务（shell/exec/dev/...）先拿到一个 fd，
// 再包成描述符套接字。分发器本身只做查表与解析，不持有流状态。
package service
