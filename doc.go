// Package adb 实现调试桥设备侧守护进程的核心
//
// 守护进程接受主机控制器的单条多路复用连接，在其上承载任意数量的
// 双向逻辑流，把具名服务（shell、文件同步、进程调试接入等）
// 绑定到新建的流上。核心是报文复用传输与逐流状态机：
// 二进制线协议加逐流信用流控、每流一个状态机加每传输一个状态机、
// 跨多个并发 I/O 线程的生命周期管理，以及部分失效时的安全拆除。
//
// 快速开始：
//
//	d, err := adb.New(adb.WithListenAddrs("tcp:5555"), adb.WithoutAuth())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := d.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//	defer d.Stop(context.Background())
package adb
