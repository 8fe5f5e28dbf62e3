package actor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lwmacct/251218-go-pkg-ask/pkg/mailbox"
)

// System Actor 系统
// 管理 Actor 的生命周期、消息投递、工作线程调度和 Ask 关联
type System struct {
	// 基本信息
	name string

	// Actor 注册表
	actors   map[string]*actorCell
	actorsMu sync.RWMutex

	// 等待应答的 Ask，按临时 PID 索引
	asks   map[string]*pendingAsk
	asksMu sync.Mutex

	// ready 就绪队列，存放邮箱非空且未被调度的 Actor
	ready *mailbox.Mailbox[*actorCell]

	// 生命周期控制
	ctx       context.Context
	cancel    context.CancelFunc
	workers   errgroup.Group
	isRunning atomic.Bool

	// 配置
	config   *SystemConfig
	executor Executor
	// ownExecutor 未指定 Executor 时由系统创建并负责关闭
	ownExecutor *PoolExecutor
	clock       Clock

	// 统计信息
	stats     systemCounters
	startTime time.Time

	// 日志
	logger *slog.Logger
}

// SystemConfig 系统配置
type SystemConfig struct {
	// Workers Actor 工作线程数，所有 Actor 共享
	Workers int
	// ContinuationWorkers 系统自建回调执行池的大小，Executor 非空时忽略
	ContinuationWorkers int
	// AskTimeout Ask 未指定超时时使用的默认值
	AskTimeout time.Duration
	// AskFailFast 目标 Actor 不存在时立即失败，而不是等待超时
	AskFailFast bool
	// Executor Future 回调的执行器，为 nil 时系统创建 PoolExecutor
	Executor Executor
	// Clock Ask 超时计时使用的时钟，为 nil 时使用 WallClock
	Clock Clock
	// PanicHandler Actor 处理消息 panic 时调用，为 nil 时记录错误日志
	PanicHandler func(failure *BehaviorFailure)
	// Logger 自定义日志器
	Logger *slog.Logger
}

// DefaultSystemConfig 默认系统配置
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		Workers:             runtime.NumCPU(),
		ContinuationWorkers: runtime.NumCPU(),
		AskTimeout:          5 * time.Second,
	}
}

// actorCell Actor 单元，包含 Actor 及其运行时状态
type actorCell struct {
	pid     *PID
	actor   Actor
	mailbox *mailbox.Mailbox[envelope]

	// scheduled 为 true 时 Actor 已在就绪队列中或正被某个工作线程处理
	scheduled atomic.Bool
	stopped   atomic.Bool

	stats *StatsCollector

	ctx    context.Context
	cancel context.CancelFunc
}

// envelope 消息信封
type envelope struct {
	sender  *PID
	message Message
}

// NewSystem 创建新的 Actor 系统
func NewSystem(name string) *System {
	return NewSystemWithConfig(name, DefaultSystemConfig())
}

// NewSystemWithConfig 使用配置创建 Actor 系统
func NewSystemWithConfig(name string, config *SystemConfig) *System {
	defaults := DefaultSystemConfig()
	if config == nil {
		config = defaults
	}
	cfg := *config
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.ContinuationWorkers <= 0 {
		cfg.ContinuationWorkers = defaults.ContinuationWorkers
	}
	if cfg.AskTimeout <= 0 {
		cfg.AskTimeout = defaults.AskTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("system", name)

	clock := cfg.Clock
	if clock == nil {
		clock = WallClock
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &System{
		name:      name,
		actors:    make(map[string]*actorCell),
		asks:      make(map[string]*pendingAsk),
		ready:     mailbox.New[*actorCell](),
		ctx:       ctx,
		cancel:    cancel,
		config:    &cfg,
		executor:  cfg.Executor,
		clock:     clock,
		startTime: time.Now(),
		logger:    logger,
	}

	if s.executor == nil {
		s.ownExecutor = NewPoolExecutor(cfg.ContinuationWorkers, logger)
		s.executor = s.ownExecutor
	}

	s.isRunning.Store(true)

	for i := 0; i < cfg.Workers; i++ {
		s.workers.Go(s.worker)
	}

	s.logger.Info("actor system started", "workers", cfg.Workers)
	return s
}

// Name 返回系统名称
func (s *System) Name() string {
	return s.name
}

// Executor 返回 Future 回调使用的执行器
func (s *System) Executor() Executor {
	return s.executor
}

// Spawn 创建 Actor
// name 为空时自动生成唯一名称
func (s *System) Spawn(actor Actor, name string) *PID {
	return s.SpawnWithProps(actor, DefaultProps(name))
}

// SpawnWithProps 使用属性创建 Actor
// 名称已存在时返回已有的 PID，系统已关闭时返回 nil
func (s *System) SpawnWithProps(actor Actor, props *Props) *PID {
	if !s.isRunning.Load() {
		s.logger.Warn("actor system is stopping, cannot spawn actor")
		return nil
	}
	if props == nil {
		props = DefaultProps("")
	}

	name := props.Name
	if name == "" {
		name = "actor-" + uuid.NewString()
	}
	if strings.HasPrefix(name, askPrefix) {
		s.logger.Warn("actor name uses reserved prefix", "name", name)
		return nil
	}

	s.actorsMu.Lock()
	if cell, exists := s.actors[name]; exists {
		s.actorsMu.Unlock()
		s.logger.Warn("actor already exists, returning existing PID", "name", name)
		return cell.pid
	}

	ctx, cancel := context.WithCancel(s.ctx)
	cell := &actorCell{
		pid:     &PID{ID: name, system: s},
		actor:   actor,
		mailbox: mailbox.New[envelope](),
		stats:   NewStatsCollector(),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.actors[name] = cell
	// 在持有写锁时入队，保证 Started 先于任何其他消息
	cell.mailbox.Push(envelope{message: &Started{}})
	s.actorsMu.Unlock()

	s.stats.totalActors.Add(1)
	s.schedule(cell)

	s.logger.Debug("spawned actor", "name", name)
	return cell.pid
}

// Send 发送消息（无发送者）
func (s *System) Send(target *PID, msg Message) {
	s.SendWithSender(target, msg, nil)
}

// SendWithSender 发送消息（带发送者）
//
// 永不阻塞也不返回错误；目标不存在或已停止时消息作为死信丢弃。
// 发往临时应答地址的消息交给对应的 Ask 处理。
func (s *System) SendWithSender(target *PID, msg Message, sender *PID) {
	if target == nil || msg == nil || !s.isRunning.Load() {
		return
	}

	if target.IsTemporary() {
		s.deliverReply(target, msg, sender)
		return
	}

	s.actorsMu.RLock()
	cell, exists := s.actors[target.ID]
	s.actorsMu.RUnlock()

	if !exists || cell.stopped.Load() || !cell.mailbox.Push(envelope{sender: sender, message: msg}) {
		s.deadLetter(target, msg, sender)
		return
	}

	s.stats.totalMessages.Add(1)
	s.schedule(cell)
}

// Stop 停止 Actor
// PoisonPill 排在已入队消息之后，之前的消息仍会被处理
func (s *System) Stop(pid *PID) {
	if pid == nil || pid.IsTemporary() {
		return
	}
	s.Send(pid, &PoisonPill{})
}

// StopGracefully 停止 Actor 并等待其退出
func (s *System) StopGracefully(pid *PID, timeout time.Duration) error {
	if pid == nil {
		return nil
	}
	s.Stop(pid)

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, exists := s.GetActor(pid.ID); !exists {
			return nil
		}
		time.Sleep(5 * time.Millisecond)
	}

	return fmt.Errorf("timeout waiting for actor %s to stop", pid.ID)
}

// Shutdown 关闭整个 Actor 系统
func (s *System) Shutdown() {
	s.ShutdownWithTimeout(30 * time.Second)
}

// ShutdownWithTimeout 带超时的关闭
//
// 关闭顺序：停止接收消息、使所有未完成的 Ask 失败、停止所有 Actor、
// 停止工作线程，最后排空回调执行池。
func (s *System) ShutdownWithTimeout(timeout time.Duration) {
	if !s.isRunning.CompareAndSwap(true, false) {
		return
	}
	s.logger.Info("actor system shutting down")
	deadline := time.Now().Add(timeout)

	s.failPendingAsks(ErrSystemStopped)

	s.actorsMu.RLock()
	cells := make([]*actorCell, 0, len(s.actors))
	for _, cell := range s.actors {
		cells = append(cells, cell)
	}
	s.actorsMu.RUnlock()

	for _, cell := range cells {
		// isRunning 已为 false，绕过 Send 直接入队
		if cell.mailbox.Push(envelope{message: &PoisonPill{}}) {
			s.schedule(cell)
		}
	}

	for s.Count() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	s.cancel()
	s.ready.Close()

	done := make(chan struct{})
	go func() {
		_ = s.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		if s.ownExecutor != nil {
			s.ownExecutor.Shutdown()
		}
		s.logger.Info("actor system shutdown complete")
	case <-time.After(max(time.Until(deadline), 100*time.Millisecond)):
		s.logger.Warn("actor system shutdown timeout, forcing exit", "remaining", s.Count())
	}
}

// worker 工作线程：每次从就绪队列取出一个 Actor 并处理其一条消息
func (s *System) worker() error {
	for {
		cell, err := s.ready.Pop(s.ctx)
		if err != nil {
			return nil
		}
		s.runOnce(cell)
	}
}

// runOnce 处理 cell 的一条消息，然后释放调度权
func (s *System) runOnce(cell *actorCell) {
	if env, ok := cell.mailbox.TryPop(); ok {
		s.processMessage(cell, env)
	}

	cell.scheduled.Store(false)
	// 释放后再检查邮箱：与 SendWithSender 的 Push-then-schedule 配合，消息不会被遗漏
	if cell.mailbox.Len() > 0 {
		s.schedule(cell)
	}
}

// schedule 将 Actor 放入就绪队列，已在队列中或正在处理时不做任何事
func (s *System) schedule(cell *actorCell) {
	if cell.scheduled.CompareAndSwap(false, true) {
		if !s.ready.Push(cell) {
			cell.scheduled.Store(false)
		}
	}
}

// processMessage 处理单条消息
func (s *System) processMessage(cell *actorCell, env envelope) {
	if cell.stopped.Load() {
		s.deadLetter(cell.pid, env.message, env.sender)
		return
	}

	if _, ok := env.message.(*PoisonPill); ok {
		s.terminate(cell)
		return
	}

	cell.stats.RecordReceived()
	start := time.Now()
	if s.invoke(cell, env) {
		cell.stats.RecordHandled(time.Since(start))
		s.stats.processedMsgs.Add(1)
	}
}

// invoke 调用 Actor 的 Receive 并捕获 panic
// 返回 false 表示处理过程中发生了 panic
func (s *System) invoke(cell *actorCell, env envelope) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			failure := &BehaviorFailure{
				Actor:  cell.pid,
				Kind:   env.message.Kind(),
				Reason: r,
				Stack:  debug.Stack(),
			}
			s.stats.behaviorFailures.Add(1)
			cell.stats.RecordError(failure)

			if s.config.PanicHandler != nil {
				s.config.PanicHandler(failure)
			} else {
				s.logger.Error("panic in actor",
					"actor", cell.pid.ID,
					"message", failure.Kind,
					"error", r,
					"stack", string(failure.Stack))
			}
		}
	}()

	ctx := &Context{
		Self:    cell.pid,
		Sender:  env.sender,
		system:  s,
		ctx:     cell.ctx,
		message: env.message,
	}
	cell.actor.Receive(ctx, env.message)
	return true
}

// terminate 停止 Actor：Stopping → 注销 → 剩余消息转死信 → Stopped
func (s *System) terminate(cell *actorCell) {
	if !cell.stopped.CompareAndSwap(false, true) {
		return
	}

	s.invoke(cell, envelope{message: &Stopping{}})

	s.actorsMu.Lock()
	if s.actors[cell.pid.ID] == cell {
		delete(s.actors, cell.pid.ID)
	}
	s.actorsMu.Unlock()

	cell.mailbox.Close()
	for {
		env, ok := cell.mailbox.TryPop()
		if !ok {
			break
		}
		s.deadLetter(cell.pid, env.message, env.sender)
	}

	s.invoke(cell, envelope{message: &Stopped{}})
	cell.cancel()

	s.stats.totalActors.Add(-1)
	s.logger.Debug("actor stopped", "actor", cell.pid.ID)
}

// deadLetter 记录无法投递的消息
func (s *System) deadLetter(target *PID, msg Message, sender *PID) {
	s.stats.deadLetters.Add(1)
	s.logger.Debug("dead letter",
		"message", msg.Kind(),
		"target", target.String(),
		"sender", sender.String())
}

// Stats 获取统计信息
func (s *System) Stats() *SystemStats {
	s.asksMu.Lock()
	pending := int64(len(s.asks))
	s.asksMu.Unlock()

	return &SystemStats{
		TotalActors:      s.stats.totalActors.Load(),
		TotalMessages:    s.stats.totalMessages.Load(),
		DeadLetters:      s.stats.deadLetters.Load(),
		ProcessedMsgs:    s.stats.processedMsgs.Load(),
		BehaviorFailures: s.stats.behaviorFailures.Load(),
		PendingAsks:      pending,
		AsksReplied:      s.stats.asksReplied.Load(),
		AsksTimedOut:     s.stats.asksTimedOut.Load(),
		AsksFailed:       s.stats.asksFailed.Load(),
		LateReplies:      s.stats.lateReplies.Load(),
		StartTime:        s.startTime,
	}
}

// ActorStats 获取单个 Actor 的统计信息
func (s *System) ActorStats(pid *PID) (*ActorStats, bool) {
	if pid == nil {
		return nil, false
	}
	s.actorsMu.RLock()
	cell, ok := s.actors[pid.ID]
	s.actorsMu.RUnlock()
	if !ok {
		return nil, false
	}
	return cell.stats.Stats(), true
}

// GetActor 获取 Actor
func (s *System) GetActor(name string) (*PID, bool) {
	s.actorsMu.RLock()
	defer s.actorsMu.RUnlock()

	if cell, ok := s.actors[name]; ok {
		return cell.pid, true
	}
	return nil, false
}

// ListActors 列出所有 Actor
func (s *System) ListActors() []*PID {
	s.actorsMu.RLock()
	defer s.actorsMu.RUnlock()

	pids := make([]*PID, 0, len(s.actors))
	for _, cell := range s.actors {
		pids = append(pids, cell.pid)
	}
	return pids
}

// Count 返回 Actor 数量
func (s *System) Count() int {
	s.actorsMu.RLock()
	defer s.actorsMu.RUnlock()
	return len(s.actors)
}

// IsRunning 检查系统是否运行中
func (s *System) IsRunning() bool {
	return s.isRunning.Load()
}
