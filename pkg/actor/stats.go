package actor

import (
	"sync"
	"sync/atomic"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// 系统统计信息
// ═══════════════════════════════════════════════════════════════════════════

// SystemStats 系统统计快照
type SystemStats struct {
	TotalActors      int64 // 存活的 Actor 数
	TotalMessages    int64 // 成功入队的消息数
	DeadLetters      int64 // 无法投递而丢弃的消息数
	ProcessedMsgs    int64 // 处理完成的用户消息数
	BehaviorFailures int64 // Receive 中捕获的 panic 数

	PendingAsks  int64 // 尚未完成的 Ask
	AsksReplied  int64 // 收到应答而完成的 Ask
	AsksTimedOut int64 // 超时的 Ask
	AsksFailed   int64 // 因系统关闭或目标不存在而失败的 Ask
	LateReplies  int64 // Ask 完成后才到达而被丢弃的应答

	StartTime time.Time
}

// systemCounters 系统级计数器，全部为原子操作
type systemCounters struct {
	totalActors      atomic.Int64
	totalMessages    atomic.Int64
	deadLetters      atomic.Int64
	processedMsgs    atomic.Int64
	behaviorFailures atomic.Int64

	asksReplied  atomic.Int64
	asksTimedOut atomic.Int64
	asksFailed   atomic.Int64
	lateReplies  atomic.Int64
}

// ═══════════════════════════════════════════════════════════════════════════
// Actor 统计信息
// ═══════════════════════════════════════════════════════════════════════════

// ActorStats Actor 运行时统计信息
type ActorStats struct {
	// 消息计数
	MessagesReceived int64 // 接收的消息总数
	MessagesHandled  int64 // 成功处理的消息数
	Errors           int64 // 处理中 panic 的次数

	// 延迟统计
	TotalLatency   time.Duration
	AverageLatency time.Duration
	MaxLatency     time.Duration

	// 时间戳
	StartedAt     time.Time
	LastMessageAt time.Time

	// LastError 最后一次失败
	LastError error
}

// StatsCollector 使用原子操作的统计收集器
// 由运行时在每条消息处理前后调用
type StatsCollector struct {
	messagesReceived atomic.Int64
	messagesHandled  atomic.Int64
	errors           atomic.Int64
	totalLatencyNs   atomic.Int64
	maxLatencyNs     atomic.Int64

	// 非原子字段，需要锁保护
	mu            sync.RWMutex
	startedAt     time.Time
	lastMessageAt time.Time
	lastError     error
}

// NewStatsCollector 创建统计收集器
func NewStatsCollector() *StatsCollector {
	return &StatsCollector{
		startedAt: time.Now(),
	}
}

// RecordReceived 记录接收
func (c *StatsCollector) RecordReceived() {
	c.messagesReceived.Add(1)
	c.mu.Lock()
	c.lastMessageAt = time.Now()
	c.mu.Unlock()
}

// RecordHandled 记录处理完成
func (c *StatsCollector) RecordHandled(latency time.Duration) {
	c.messagesHandled.Add(1)
	c.totalLatencyNs.Add(int64(latency))
	for {
		cur := c.maxLatencyNs.Load()
		if int64(latency) <= cur || c.maxLatencyNs.CompareAndSwap(cur, int64(latency)) {
			return
		}
	}
}

// RecordError 记录错误
func (c *StatsCollector) RecordError(err error) {
	c.errors.Add(1)
	c.mu.Lock()
	c.lastError = err
	c.mu.Unlock()
}

// Stats 获取统计快照
func (c *StatsCollector) Stats() *ActorStats {
	received := c.messagesReceived.Load()
	handled := c.messagesHandled.Load()
	totalLatency := time.Duration(c.totalLatencyNs.Load())

	var avgLatency time.Duration
	if handled > 0 {
		avgLatency = totalLatency / time.Duration(handled)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return &ActorStats{
		MessagesReceived: received,
		MessagesHandled:  handled,
		Errors:           c.errors.Load(),
		TotalLatency:     totalLatency,
		AverageLatency:   avgLatency,
		MaxLatency:       time.Duration(c.maxLatencyNs.Load()),
		StartedAt:        c.startedAt,
		LastMessageAt:    c.lastMessageAt,
		LastError:        c.lastError,
	}
}
