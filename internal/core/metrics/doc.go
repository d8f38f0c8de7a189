// Package metrics 实现守护进程的运行指标
//
// 基于 prometheus 客户端：按命令统计收发报文与字节数，
// 跟踪在线传输与在表套接字数量。注册表由调用方注入，
// 便于测试隔离与多实例并存。
package metrics
