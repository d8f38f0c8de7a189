// Package wire 实现报文编解码
//
// 线格式为 24 字节小端定长头部加变长负载：
//
//	command:u32 arg0:u32 arg1:u32 data_length:u32 data_checksum:u32 magic:u32
//
// magic 恒等于 command ^ 0xffffffff。协议 v1 对负载做逐字节求和校验；
// v2 发送方将 data_checksum 置 0，接收方忽略该字段（兼容起见不拒绝非零值）。
//
// 每个报文携带一个流的一段连续负载，不做分片。
package wire
