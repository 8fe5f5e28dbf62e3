// Package responder 提供最小的请求 / 应答 Actor
//
// [Responder] 收到带发送者的 [Request] 时回复 [Response]，
// 静默模式（[NewSilent]）从不应答，用来观察 Ask 的超时路径。
//
// 基本用法:
//
//	sys := actor.NewSystem("demo")
//	pid := sys.Spawn(responder.New(), "responder")
//
//	responder.DoRequest(sys, pid, 1, time.Second).
//	    OnComplete(func(resp *responder.Response, err error) {
//	        fmt.Println(resp, err)
//	    })
package responder
