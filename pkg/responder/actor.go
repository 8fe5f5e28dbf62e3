package responder

import (
	"log/slog"
	"time"

	"github.com/lwmacct/251218-go-pkg-ask/pkg/actor"
)

// Responder 应答 Actor
//
// 对任何带有发送者的消息回复一个 Response（GetStats 除外，它回复 *StatsResult），
// 没有发送者时不应答。silent 模式下从不应答，用于演示 Ask 超时。
//
// Thread Safety: 状态只在 Receive 中修改，由 Actor 串行处理保证一致性。
type Responder struct {
	silent bool

	requests int64
	replied  int64

	logger *slog.Logger
	stats  *actor.StatsCollector
}

// Option Responder 配置选项
type Option func(*Responder)

// WithLogger 设置日志记录器
func WithLogger(logger *slog.Logger) Option {
	return func(r *Responder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New 创建会应答的 Responder
func New(opts ...Option) *Responder {
	r := &Responder{
		logger: slog.Default(),
		stats:  actor.NewStatsCollector(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewSilent 创建从不应答的 Responder
func NewSilent(opts ...Option) *Responder {
	r := New(opts...)
	r.silent = true
	return r
}

// Receive 处理接收到的消息
func (r *Responder) Receive(ctx *actor.Context, msg actor.Message) {
	r.stats.RecordReceived()
	startTime := time.Now()

	defer func() {
		r.stats.RecordHandled(time.Since(startTime))
	}()

	switch m := msg.(type) {
	case *actor.Started:
		r.logger.Debug("responder started", "actor", ctx.Self.ID, "silent", r.silent)

	case *actor.Stopped:
		r.logger.Debug("responder stopped", "actor", ctx.Self.ID, "requests", r.requests)

	case *Request:
		r.requests++
		if r.silent || ctx.Sender == nil {
			return
		}
		r.replied++
		ctx.Reply(&Response{})
		r.logger.Debug("request answered", "actor", ctx.Self.ID, "req_id", m.ReqID, "sender", ctx.Sender.ID)

	case *GetStats:
		ctx.Reply(&StatsResult{Requests: r.requests, Replied: r.replied})

	default:
		// 其他带发送者的消息同样以 Response 应答
		if r.silent || ctx.Sender == nil {
			return
		}
		r.replied++
		ctx.Reply(&Response{})
		r.logger.Debug("message answered", "actor", ctx.Self.ID, "kind", msg.Kind(), "sender", ctx.Sender.ID)
	}
}

// Stats 返回 Actor 处理统计
func (r *Responder) Stats() *actor.ActorStats {
	return r.stats.Stats()
}
