// Package fdevent 实现单线程描述符就绪事件循环
//
// 循环线程拥有全部进程内描述符以及挂在其上的本地套接字状态；
// 其它线程只能通过 Post/PostDelayed 把工作移交进来。
// 就绪检测基于 poll(2)，唤醒用一条自管道。
//
// 事件掩码为 Read/Write/Error/Timeout 的按位组合。
package fdevent
