package service

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/fdevent"
	"github.com/Lunaris-AOSP/packages-modules-adb/internal/core/socket"
	"github.com/Lunaris-AOSP/packages-modules-adb/pkg/interfaces"
)

// Process 一个可调试进程的登记项
type Process struct {
	PID         int
	Arch        string
	Debuggable  bool
	Profileable bool
}

// JDWPRegistry 可调试进程登记表
//
// 由守护进程喂入进程事件；跟踪器套接字的状态变更全部
// 经事件循环移交。
type JDWPRegistry struct {
	loop *fdevent.Loop

	mu    sync.Mutex
	procs map[int]Process
	pipes map[int]int // pid → 调试器管道的进程侧 fd

	// 仅在循环线程访问
	trackers map[*trackerSocket]struct{}
}

// NewJDWPRegistry 创建登记表
func NewJDWPRegistry(loop *fdevent.Loop) *JDWPRegistry {
	return &JDWPRegistry{
		loop:     loop,
		procs:    make(map[int]Process),
		pipes:    make(map[int]int),
		trackers: make(map[*trackerSocket]struct{}),
	}
}

// Register 登记进程并通知所有跟踪器
func (r *JDWPRegistry) Register(p Process) {
	r.mu.Lock()
	r.procs[p.PID] = p
	r.mu.Unlock()
	r.loop.Post(r.notifyTrackers)
}

// Unregister 注销进程并通知所有跟踪器
func (r *JDWPRegistry) Unregister(pid int) {
	r.mu.Lock()
	delete(r.procs, pid)
	r.mu.Unlock()
	r.loop.Post(r.notifyTrackers)
}

// ConnectFD 为 jdwp:<pid> 建立调试器管道
//
// 返回守护进程侧描述符；进程侧描述符暂存，由嵌入方取走
// 交给目标进程（等价于源实现把 fd 发进 JVM）。
func (r *JDWPRegistry) ConnectFD(pid int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.procs[pid]; !ok {
		return -1, fmt.Errorf("%w: %d", ErrNoSuchProcess, pid)
	}

	daemonFD, serviceFD, err := socket.ServicePipe()
	if err != nil {
		return -1, err
	}
	r.pipes[pid] = serviceFD
	return daemonFD, nil
}

// TakeProcessPipe 取走调试器管道的进程侧描述符
func (r *JDWPRegistry) TakeProcessPipe(pid int) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fd, ok := r.pipes[pid]
	if ok {
		delete(r.pipes, pid)
	}
	return fd, ok
}

// snapshot 排序后的进程列表
func (r *JDWPRegistry) snapshot() []Process {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Process, 0, len(r.procs))
	for _, p := range r.procs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

// notifyTrackers 循环线程：推送更新
func (r *JDWPRegistry) notifyTrackers() {
	for t := range r.trackers {
		t.needUpdate = true
		t.maybeSend()
	}
}

// ============================================================================
//                              跟踪器套接字
// ============================================================================

type trackerMode int

const (
	// modeJdwpList 一次性列表（"jdwp" 服务）
	modeJdwpList trackerMode = iota
	// modeTrackJdwp 持续跟踪 pid 列表
	modeTrackJdwp
	// modeTrackApp 持续跟踪应用清单
	modeTrackApp
)

// trackerSocket 进程列表跟踪服务
//
// 每份信用推送一帧：4 位十六进制长度前缀加正文。
type trackerSocket struct {
	ServiceSocket
	reg        *JDWPRegistry
	mode       trackerMode
	hasCredit  bool
	needUpdate bool
}

func newTrackerSocket(reg *JDWPRegistry, sreg *socket.Registry, t interfaces.Transport, mode trackerMode) (*trackerSocket, error) {
	s := &trackerSocket{reg: reg, mode: mode, needUpdate: true}
	if err := s.Init(sreg, t, s); err != nil {
		return nil, err
	}
	reg.trackers[s] = struct{}{}
	return s, nil
}

// OnReady 信用到手，推送待发的更新
func (s *trackerSocket) OnReady() {
	s.hasCredit = true
	s.maybeSend()
}

// OnEnqueue 跟踪器忽略入站数据
func (s *trackerSocket) OnEnqueue(data []byte) int { return socket.EnqueueOK }

// OnClose 从登记表摘除
func (s *trackerSocket) OnClose() {
	delete(s.reg.trackers, s)
}

func (s *trackerSocket) maybeSend() {
	if !s.hasCredit || !s.needUpdate || s.Closing() {
		return
	}
	body := s.format(s.reg.snapshot())
	payload := fmt.Sprintf("%04x%s", len(body), body)

	s.hasCredit = false
	s.needUpdate = false
	if s.peer != nil {
		s.peer.Enqueue([]byte(payload))
	}

	if s.mode == modeJdwpList {
		// 一次性服务：送完即关
		s.Close()
	}
}

func (s *trackerSocket) format(procs []Process) string {
	var b strings.Builder
	for _, p := range procs {
		switch s.mode {
		case modeTrackApp:
			if !p.Debuggable && !p.Profileable {
				continue
			}
			fmt.Fprintf(&b, "%d %s debuggable=%t profileable=%t\n",
				p.PID, p.Arch, p.Debuggable, p.Profileable)
		default:
			fmt.Fprintf(&b, "%d\n", p.PID)
		}
	}
	return b.String()
}
