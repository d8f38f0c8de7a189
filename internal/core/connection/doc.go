// Package connection 实现物理链路到报文流的适配
//
// 两种变体：
//   - BlockingConnectionAdapter：包装字节管道（TCP/USB bulk），
//     一读一写两个后台协程，出站为有界队列，发送阻塞式背压。
//   - PacketConnection：包装本身就以报文为单位的链路，
//     单读取协程，发送在调用方协程直接完成。
//
// 两者共同满足 interfaces.Connection 契约：onError 至多一次，
// Stop 幂等，出错或停止之后 Send 恒失败且不再有回调。
package connection
