package actor

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// ═══════════════════════════════════════════════════════════════════════════
// Ask：把 fire-and-forget 消息桥接为一次性的 Future
// ═══════════════════════════════════════════════════════════════════════════

// pendingAsk 一个未完成的 Ask
//
// 状态：Armed → Resolved(应答 | 超时 | 系统关闭) → Destroyed。
// 从注册表中删除即为"认领"，只有认领成功的一方可以完成 future。
type pendingAsk struct {
	pid      *PID
	target   *PID
	future   *Future[Message]
	timeout  time.Duration
	deadline time.Time
	timer    Timer
}

// Ask 向 target 发送 msg，返回应答的 Future，调用方不会阻塞
//
// 应答类型不是 T 时 Future 以 *TypeMismatch 失败；
// timeout 内没有应答时以 *ResponseTimeout 失败。
//
// 用法示例:
//
//	f := actor.Ask[*PongMessage](sys, pid, &PingMessage{}, time.Second)
//	f.OnComplete(func(pong *PongMessage, err error) { ... })
func Ask[T Message](s *System, target *PID, msg Message, timeout time.Duration) *Future[T] {
	if s == nil {
		return Failed[T](GoExecutor, ErrSystemStopped)
	}
	return Then(s.AskMessage(target, msg, timeout), func(reply Message) (T, error) {
		v, ok := reply.(T)
		if !ok {
			var zero T
			return zero, &TypeMismatch{
				Expected: reflect.TypeFor[T]().String(),
				Actual:   fmt.Sprintf("%T", reply),
				Reply:    reply,
			}
		}
		return v, nil
	})
}

// AskMessage 不做类型转换的 Ask
// timeout <= 0 时使用 SystemConfig.AskTimeout
func (s *System) AskMessage(target *PID, msg Message, timeout time.Duration) *Future[Message] {
	if target == nil {
		return Failed[Message](s.executor, ErrActorNotFound)
	}
	// 临时应答地址只接收应答，不能作为请求目标
	if target.IsTemporary() {
		return Failed[Message](s.executor, fmt.Errorf("ask %s: %w", target, ErrActorNotFound))
	}
	if msg == nil {
		return Failed[Message](s.executor, fmt.Errorf("ask %s: nil message", target))
	}
	if timeout <= 0 {
		timeout = s.config.AskTimeout
	}

	p := &pendingAsk{
		pid:      &PID{ID: askPrefix + uuid.NewString(), system: s},
		target:   target,
		future:   newFuture[Message](s.executor),
		timeout:  timeout,
		deadline: s.clock.Now().Add(timeout),
	}

	s.asksMu.Lock()
	// 在锁内检查，与 failPendingAsks 互斥，关闭期间不会漏掉新注册的 Ask
	if !s.isRunning.Load() {
		s.asksMu.Unlock()
		s.stats.asksFailed.Add(1)
		return Failed[Message](s.executor, ErrSystemStopped)
	}
	s.asks[p.pid.ID] = p
	// 在锁内设置定时器，即使立即触发也要等注册完成
	p.timer = s.clock.AfterFunc(timeout, func() { s.expire(p.pid.ID) })
	s.asksMu.Unlock()

	if s.config.AskFailFast && !s.hasActor(target) {
		s.fail(p.pid.ID, fmt.Errorf("ask %s: %w", target, ErrActorNotFound))
		return p.future
	}

	s.SendWithSender(target, msg, p.pid)
	return p.future
}

// claim 认领 Ask：从注册表删除并返回
// 同一 Ask 只有一次调用能返回 true
func (s *System) claim(id string) (*pendingAsk, bool) {
	s.asksMu.Lock()
	defer s.asksMu.Unlock()

	p, ok := s.asks[id]
	if ok {
		delete(s.asks, id)
	}
	return p, ok
}

// deliverReply 处理发往临时应答地址的消息
func (s *System) deliverReply(to *PID, msg Message, from *PID) {
	p, ok := s.claim(to.ID)
	if !ok {
		s.stats.lateReplies.Add(1)
		s.logger.Debug("reply dropped, ask already resolved",
			"ask", to.ID,
			"message", msg.Kind(),
			"sender", from.String())
		return
	}

	p.timer.Stop()
	s.stats.asksReplied.Add(1)
	p.future.complete(msg, nil)
}

// expire 超时回调
func (s *System) expire(id string) {
	p, ok := s.claim(id)
	if !ok {
		return
	}

	s.stats.asksTimedOut.Add(1)
	s.logger.Debug("ask timed out", "ask", id, "target", p.target.String(), "timeout", p.timeout, "deadline", p.deadline)
	p.future.complete(nil, &ResponseTimeout{Target: p.target, Timeout: p.timeout, Deadline: p.deadline})
}

// fail 以 err 完成 Ask
func (s *System) fail(id string, err error) {
	p, ok := s.claim(id)
	if !ok {
		return
	}

	p.timer.Stop()
	s.stats.asksFailed.Add(1)
	p.future.complete(nil, err)
}

// failPendingAsks 使所有未完成的 Ask 以 err 失败
func (s *System) failPendingAsks(err error) {
	s.asksMu.Lock()
	pending := s.asks
	s.asks = make(map[string]*pendingAsk)
	s.asksMu.Unlock()

	for _, p := range pending {
		p.timer.Stop()
		s.stats.asksFailed.Add(1)
		p.future.complete(nil, err)
	}
	if len(pending) > 0 {
		s.logger.Info("failed pending asks", "count", len(pending), "error", err)
	}
}

func (s *System) hasActor(pid *PID) bool {
	_, ok := s.GetActor(pid.ID)
	return ok
}
