package actor

import (
	"context"
	"strings"
	"time"
)

// Message Actor 消息接口
// 所有 Actor 间传递的消息都必须实现此接口
type Message interface {
	// Kind 返回消息类型标识，用于分发和日志
	Kind() string
}

// askPrefix 临时应答地址的 ID 前缀
const askPrefix = "$ask/"

// PID (Process ID) Actor 进程标识符
// 是 Actor 的唯一寻址方式，按 ID 比较
type PID struct {
	// ID Actor 唯一标识
	ID string
	// system 所属的 Actor 系统（内部使用）
	system *System
}

// String 返回 PID 的字符串表示
func (p *PID) String() string {
	if p == nil {
		return "<nil>"
	}
	return p.ID
}

// Equal 判断两个 PID 是否指向同一个 Actor
func (p *PID) Equal(other *PID) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.ID == other.ID
}

// IsTemporary 是否为 Ask 创建的临时应答地址
func (p *PID) IsTemporary() bool {
	return p != nil && strings.HasPrefix(p.ID, askPrefix)
}

// Tell 发送消息（fire-and-forget）
func (p *PID) Tell(msg Message) {
	if p != nil && p.system != nil {
		p.system.Send(p, msg)
	}
}

// Ask 发送消息并返回应答的 Future，调用方不会阻塞
func (p *PID) Ask(msg Message, timeout time.Duration) *Future[Message] {
	if p == nil || p.system == nil {
		return Failed[Message](GoExecutor, ErrActorNotFound)
	}
	return p.system.AskMessage(p, msg, timeout)
}

// Request 发送请求并等待响应（同步调用）
// 基于 Ask 实现，阻塞的是调用 Request 的 goroutine
func (p *PID) Request(msg Message, timeout time.Duration) (Message, error) {
	return p.Ask(msg, timeout).Await(context.Background())
}

// Actor Actor 接口
// 实现此接口即可成为 Actor，同一 Actor 的 Receive 不会被并发调用
type Actor interface {
	// Receive 处理接收到的消息
	// ctx 提供 Actor 上下文，msg 为接收到的消息
	Receive(ctx *Context, msg Message)
}

// ActorFunc 函数式 Actor，便于快速创建简单 Actor
type ActorFunc func(ctx *Context, msg Message)

// Receive 实现 Actor 接口
func (f ActorFunc) Receive(ctx *Context, msg Message) {
	f(ctx, msg)
}

// BaseActor 基础 Actor 实现
// 提供默认的空实现，方便嵌入
type BaseActor struct{}

// Receive 默认实现，不处理任何消息
func (b *BaseActor) Receive(_ *Context, _ Message) {}

// Context Actor 执行上下文
// 每条消息创建一个，只在 Receive 期间有效
type Context struct {
	// Self 当前 Actor 的 PID
	Self *PID
	// Sender 消息发送者的 PID（如果有），Ask 发来的消息为临时应答地址
	Sender *PID

	system  *System
	ctx     context.Context
	message Message
}

// Reply 回复消息给发送者
// 没有发送者时不做任何事
func (c *Context) Reply(msg Message) {
	if c.Sender != nil {
		c.system.SendWithSender(c.Sender, msg, c.Self)
	}
}

// Forward 转发当前消息到另一个 Actor，保留原发送者
func (c *Context) Forward(target *PID) {
	if c.message != nil {
		c.system.SendWithSender(target, c.message, c.Sender)
	}
}

// Stop 停止指定 Actor
func (c *Context) Stop(pid *PID) {
	c.system.Stop(pid)
}

// StopSelf 停止当前 Actor
func (c *Context) StopSelf() {
	c.system.Stop(c.Self)
}

// Context 获取 Actor 生命周期 context，Actor 停止时取消
func (c *Context) Context() context.Context {
	return c.ctx
}

// Message 获取当前正在处理的消息
func (c *Context) Message() Message {
	return c.message
}

// System 获取 Actor 系统引用
func (c *Context) System() *System {
	return c.system
}

// Props Actor 属性配置
type Props struct {
	// Name Actor 名称，为空时自动生成
	Name string
}

// DefaultProps 默认属性
func DefaultProps(name string) *Props {
	return &Props{Name: name}
}

// ============== 系统消息 ==============

// Started Actor 启动完成消息，总是 Actor 收到的第一条消息
type Started struct{}

// Kind 实现 Message 接口
func (s *Started) Kind() string { return "system.started" }

// Stopping Actor 正在停止消息
type Stopping struct{}

// Kind 实现 Message 接口
func (s *Stopping) Kind() string { return "system.stopping" }

// Stopped Actor 已停止消息，Actor 收到的最后一条消息
type Stopped struct{}

// Kind 实现 Message 接口
func (s *Stopped) Kind() string { return "system.stopped" }

// PoisonPill 毒丸消息，排在之前的消息之后优雅停止 Actor
type PoisonPill struct{}

// Kind 实现 Message 接口
func (p *PoisonPill) Kind() string { return "system.poison_pill" }

// ============== 通用消息类型 ==============

// SimpleMessage 简单消息，用于快速创建消息
type SimpleMessage struct {
	kind    string
	Payload any
}

// NewSimpleMessage 创建简单消息
func NewSimpleMessage(kind string, payload any) *SimpleMessage {
	return &SimpleMessage{kind: kind, Payload: payload}
}

// Kind 实现 Message 接口
func (m *SimpleMessage) Kind() string { return m.kind }
