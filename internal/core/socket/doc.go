// Package socket 实现逻辑流的本地/远端套接字对
//
// 一条逻辑流由一对套接字构成：本地端（描述符或进程内服务）
// 与远端影子（RemoteSocket，对应对端的 local_id）。二者互为 peer，
// 始终满足 s.Peer().Peer() == s 的对称配对不变式。
//
// 信用流控：本地端每向对端送出一段负载后即失去发送权，
// 直到对端以 OKAY 返还信用（Ready 被调用）。反向亦然：
// 入站负载被本地端完全消费后，通过 peer.Ready() 把 OKAY 发回去。
//
// 所有套接字状态都约束在事件循环线程上变更；
// 连接读写线程通过向循环投递任务跨线程移交。
package socket
