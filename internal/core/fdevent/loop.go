package fdevent

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sys/unix"

	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/lib/log"
)

var logger = log.Logger("core/fdevent")

// ============================================================================
//                              事件掩码
// ============================================================================

// Events 就绪事件掩码
type Events uint32

const (
	// Read 描述符可读
	Read Events = 1 << iota
	// Write 描述符可写
	Write
	// Error 描述符出错或被挂断
	Error
	// Timeout 定时器位；循环本身不投递该事件，定时任务经 PostDelayed 执行
	Timeout
)

// Handler 描述符就绪回调，总是在循环线程上执行
type Handler func(fd int, ev Events)

// ============================================================================
//                              Loop
// ============================================================================

type watch struct {
	events  Events
	handler Handler
}

type timer struct {
	deadline time.Time
	fn       func()
}

// Loop 单线程事件循环
//
// Run 所在的协程即「主线程」：所有本地套接字的变更都发生在这里。
// Post/PostDelayed/Register 可从任意协程调用。
type Loop struct {
	clk clock.Clock

	mu     sync.Mutex
	tasks  []func()
	timers []timer
	fds    map[int]*watch

	wakeR, wakeW int
	wakeBuf      [16]byte

	running atomic.Bool
	stopped atomic.Bool
	done    chan struct{}
}

// New 创建事件循环
func New(clk clock.Clock) (*Loop, error) {
	if clk == nil {
		clk = clock.New()
	}

	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		return nil, err
	}

	return &Loop{
		clk:   clk,
		fds:   make(map[int]*watch),
		wakeR: p[0],
		wakeW: p[1],
		done:  make(chan struct{}),
	}, nil
}

// Run 运行循环直到 Stop 被调用
//
// 阻塞当前协程；该协程成为循环线程。
func (l *Loop) Run() error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(l.done)

	for !l.stopped.Load() {
		pollFds, handlers := l.buildPollSet()

		timeout := l.nextTimeout()
		n, err := unix.Poll(pollFds, timeout)
		if err != nil && err != unix.EINTR {
			logger.Error("poll 失败", "error", err)
			return err
		}

		l.drainWake()
		l.runTasks()
		l.runDueTimers()

		if n <= 0 {
			continue
		}
		for i, pfd := range pollFds {
			if i == 0 || pfd.Revents == 0 {
				continue // 0 号槽位固定是唤醒管道
			}
			ev := reventsToEvents(pfd.Revents)
			if ev == 0 {
				continue
			}
			if h := handlers[i]; h != nil {
				h(int(pfd.Fd), ev)
			}
		}
	}

	l.runTasks() // 清空关停前投递的任务
	return nil
}

// Post 把任务投递到循环线程的下一轮迭代
func (l *Loop) Post(f func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, f)
	l.mu.Unlock()
	l.wake()
}

// PostDelayed 在指定延迟后于循环线程执行任务
func (l *Loop) PostDelayed(f func(), d time.Duration) {
	l.mu.Lock()
	l.timers = append(l.timers, timer{deadline: l.clk.Now().Add(d), fn: f})
	l.mu.Unlock()
	l.wake()
}

// Register 注册描述符与回调，初始不关注任何事件
func (l *Loop) Register(fd int, h Handler) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.fds[fd]; ok {
		return ErrFdRegistered
	}
	l.fds[fd] = &watch{handler: h}
	return nil
}

// SetEvents 更新描述符关注的事件掩码
func (l *Loop) SetEvents(fd int, ev Events) error {
	l.mu.Lock()
	w, ok := l.fds[fd]
	if ok {
		w.events = ev
	}
	l.mu.Unlock()
	if !ok {
		return ErrFdNotRegistered
	}
	l.wake()
	return nil
}

// Unregister 注销描述符
func (l *Loop) Unregister(fd int) {
	l.mu.Lock()
	delete(l.fds, fd)
	l.mu.Unlock()
	l.wake()
}

// Stop 幂等停止循环并等待其退出
func (l *Loop) Stop() {
	if !l.stopped.CompareAndSwap(false, true) {
		return
	}
	l.wake()
	if l.running.Load() {
		<-l.done
		unix.Close(l.wakeR)
		unix.Close(l.wakeW)
	}
}

// ============================================================================
//                              内部实现
// ============================================================================

func (l *Loop) buildPollSet() ([]unix.PollFd, []Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pollFds := make([]unix.PollFd, 1, len(l.fds)+1)
	handlers := make([]Handler, 1, len(l.fds)+1)
	pollFds[0] = unix.PollFd{Fd: int32(l.wakeR), Events: unix.POLLIN}

	for fd, w := range l.fds {
		var ev int16
		if w.events&Read != 0 {
			ev |= unix.POLLIN
		}
		if w.events&Write != 0 {
			ev |= unix.POLLOUT
		}
		if ev == 0 {
			continue
		}
		pollFds = append(pollFds, unix.PollFd{Fd: int32(fd), Events: ev})
		handlers = append(handlers, w.handler)
	}
	return pollFds, handlers
}

func (l *Loop) nextTimeout() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.timers) == 0 {
		return -1
	}
	now := l.clk.Now()
	min := -1
	for _, t := range l.timers {
		ms := int(t.deadline.Sub(now) / time.Millisecond)
		if ms < 0 {
			ms = 0
		}
		if min < 0 || ms < min {
			min = ms
		}
	}
	return min
}

func (l *Loop) runTasks() {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	l.mu.Unlock()
	for _, f := range tasks {
		f()
	}
}

func (l *Loop) runDueTimers() {
	l.mu.Lock()
	now := l.clk.Now()
	var due []func()
	rest := l.timers[:0]
	for _, t := range l.timers {
		if !t.deadline.After(now) {
			due = append(due, t.fn)
		} else {
			rest = append(rest, t)
		}
	}
	l.timers = rest
	l.mu.Unlock()
	for _, f := range due {
		f()
	}
}

func (l *Loop) drainWake() {
	for {
		n, err := unix.Read(l.wakeR, l.wakeBuf[:])
		if n <= 0 || err != nil {
			return
		}
	}
}

func (l *Loop) wake() {
	_, _ = unix.Write(l.wakeW, []byte{1})
}

func reventsToEvents(re int16) Events {
	var ev Events
	if re&unix.POLLIN != 0 {
		ev |= Read
	}
	if re&unix.POLLOUT != 0 {
		ev |= Write
	}
	if re&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
		ev |= Error
	}
	return ev
}
