package responder

import (
	"context"
	"time"

	"github.com/lwmacct/251218-go-pkg-ask/pkg/actor"
)

// ═══════════════════════════════════════════════════════════════════════════
// Ask 便捷函数
// ═══════════════════════════════════════════════════════════════════════════

// DoRequest 向 Responder 发送 Request 并返回应答的 Future
//
// 调用方不会阻塞，超时时 Future 以 *actor.ResponseTimeout 失败。
func DoRequest(sys *actor.System, pid *actor.PID, reqID int, timeout time.Duration) *actor.Future[*Response] {
	return actor.Ask[*Response](sys, pid, &Request{ReqID: reqID}, timeout)
}

// DoGetStats 查询 Responder 的处理统计（阻塞）
func DoGetStats(sys *actor.System, pid *actor.PID, timeout time.Duration) (*StatsResult, error) {
	return actor.Ask[*StatsResult](sys, pid, &GetStats{}, timeout).Await(context.Background())
}
