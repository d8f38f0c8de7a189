// Package daemon 装配守护进程侧的外围设施
//
// 套接字服务器监听配置的地址，把每条接受的连接包成
// 流式连接适配器、登记为网络类传输并启动握手。
package daemon
