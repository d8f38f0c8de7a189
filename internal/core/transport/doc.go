// Package transport 实现单条链路的传输状态机
//
// Transport 包装一个 Connection：处理 CNXN/AUTH/STLS 握手与特性协商，
// 把 OPEN/OKAY/CLSE/WRTE 分发给套接字注册表，并在链路失效时
// 负责安全拆除（kick：状态置 Offline、停止连接、按注册顺序触发
// 断连钩子恰好一次、关闭所有挂载的本地套接字）。
//
// 报文处理全部发生在事件循环线程：连接读取线程只负责投递。
package transport
