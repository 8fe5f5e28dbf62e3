package actor

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/lwmacct/251218-go-pkg-ask/pkg/mailbox"
)

// ═══════════════════════════════════════════════════════════════════════════
// 回调执行器
// ═══════════════════════════════════════════════════════════════════════════

// Executor 执行 Future 回调的调度器
// Execute 不得在调用者的栈上同步执行 task
type Executor interface {
	Execute(task func())
}

// ExecutorFunc 函数式 Executor
type ExecutorFunc func(task func())

// Execute 实现 Executor 接口
func (f ExecutorFunc) Execute(task func()) { f(task) }

// GoExecutor 每个回调启动一个新的 goroutine
var GoExecutor Executor = ExecutorFunc(func(task func()) { go task() })

// PoolExecutor 固定数量 goroutine 的回调执行池
// 与 Actor 工作线程分开，慢回调不会拖慢 Actor 调度
type PoolExecutor struct {
	queue   *mailbox.Mailbox[func()]
	group   errgroup.Group
	logger  *slog.Logger
	stopped atomic.Bool
}

// NewPoolExecutor 创建回调执行池
// workers <= 0 时使用 runtime.NumCPU()
func NewPoolExecutor(workers int, logger *slog.Logger) *PoolExecutor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &PoolExecutor{
		queue:  mailbox.New[func()](),
		logger: logger,
	}
	for i := 0; i < workers; i++ {
		p.group.Go(p.loop)
	}
	return p
}

// Execute 提交回调
// 执行池关闭后回调改为在新 goroutine 中执行，保证不会丢失
func (p *PoolExecutor) Execute(task func()) {
	if !p.queue.Push(task) {
		go p.run(task)
	}
}

// Shutdown 停止接收新任务，执行完已排队的任务后返回
func (p *PoolExecutor) Shutdown() {
	if !p.stopped.CompareAndSwap(false, true) {
		return
	}
	p.queue.Close()
	_ = p.group.Wait()
}

// Pending 返回排队中的任务数
func (p *PoolExecutor) Pending() int {
	return p.queue.Len()
}

func (p *PoolExecutor) loop() error {
	for {
		task, err := p.queue.Pop(context.Background())
		if err != nil {
			return nil
		}
		p.run(task)
	}
}

func (p *PoolExecutor) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic in future callback",
				"error", r,
				"stack", string(debug.Stack()))
		}
	}()
	task()
}
