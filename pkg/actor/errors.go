package actor

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrActorNotFound 目标 Actor 不存在或已终止
	ErrActorNotFound = errors.New("actor not found")
	// ErrAskTimeout Ask 在超时前未收到应答
	ErrAskTimeout = errors.New("ask timeout")
	// ErrTypeMismatch 应答的类型与期望的类型不符
	ErrTypeMismatch = errors.New("reply type mismatch")
	// ErrSystemStopped Actor 系统已关闭
	ErrSystemStopped = errors.New("actor system is not running")
)

// ResponseTimeout 响应超时错误
// errors.Is(err, ErrAskTimeout) 为 true
type ResponseTimeout struct {
	Target  *PID
	Timeout time.Duration
	// Deadline 按系统时钟计算的截止时间
	Deadline time.Time
}

// Error 实现 error 接口
func (r *ResponseTimeout) Error() string {
	return fmt.Sprintf("request to %s timed out after %v", r.Target, r.Timeout)
}

// Unwrap 返回 ErrAskTimeout
func (r *ResponseTimeout) Unwrap() error { return ErrAskTimeout }

// TypeMismatch 应答类型不匹配错误
// 携带收到的应答，调用方仍可自行检查
type TypeMismatch struct {
	Expected string
	Actual   string
	Reply    Message
}

// Error 实现 error 接口
func (t *TypeMismatch) Error() string {
	return fmt.Sprintf("expected reply of type %s, got %s", t.Expected, t.Actual)
}

// Unwrap 返回 ErrTypeMismatch
func (t *TypeMismatch) Unwrap() error { return ErrTypeMismatch }

// BehaviorFailure Actor 处理消息时发生的 panic
// 由运行时捕获并记录，不会传播到调用方
type BehaviorFailure struct {
	Actor  *PID
	Kind   string
	Reason any
	Stack  []byte
}

// Error 实现 error 接口
func (b *BehaviorFailure) Error() string {
	return fmt.Sprintf("actor %s failed on %s: %v", b.Actor, b.Kind, b.Reason)
}

// Unwrap 当 panic 值本身是 error 时返回它
func (b *BehaviorFailure) Unwrap() error {
	if err, ok := b.Reason.(error); ok {
		return err
	}
	return nil
}
