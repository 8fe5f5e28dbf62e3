package responder

import "fmt"

// ═══════════════════════════════════════════════════════════════════════════
// 请求 / 应答消息
// ═══════════════════════════════════════════════════════════════════════════

// Request 请求消息，ReqID 由调用方自行分配
type Request struct {
	ReqID int
}

// Kind 实现 actor.Message 接口
func (m *Request) Kind() string { return "responder.request" }

// String 返回可读的字符串表示
func (m *Request) String() string {
	if m == nil {
		return "<nil>"
	}
	return fmt.Sprintf("Request{ReqID: %d}", m.ReqID)
}

// Response 应答消息，不携带数据
type Response struct{}

// Kind 实现 actor.Message 接口
func (m *Response) Kind() string { return "responder.response" }

// String 返回可读的字符串表示
func (m *Response) String() string {
	if m == nil {
		return "<nil>"
	}
	return "Response{}"
}

// ═══════════════════════════════════════════════════════════════════════════
// 查询消息
// ═══════════════════════════════════════════════════════════════════════════

// GetStats 查询 Responder 的处理统计，应答为 *StatsResult
type GetStats struct{}

// Kind 实现 actor.Message 接口
func (m *GetStats) Kind() string { return "responder.get_stats" }

// StatsResult GetStats 的应答
type StatsResult struct {
	// Requests 收到的 Request 数量
	Requests int64
	// Replied 已回复 Response 的消息数量
	Replied int64
}

// Kind 实现 actor.Message 接口
func (m *StatsResult) Kind() string { return "responder.stats_result" }
