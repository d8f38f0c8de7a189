// Package interfaces 定义 adbd 核心的跨组件契约
//
// 套接字、服务分发与具体传输实现之间通过本包的接口解耦，
// 避免 internal/core 各包互相引用形成环。
package interfaces
