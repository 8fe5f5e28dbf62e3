// Package actor 提供轻量级 Actor 运行时与 Ask 请求-应答关联
//
// Actor 是独立调度的串行消息处理单元：
// • 每个 Actor 拥有自己的无界邮箱
// • 同一 Actor 一次只处理一条消息，按邮箱顺序处理
// • 不同 Actor 在共享的工作线程池上并行运行
//
// # 核心组件
//
// [System] 是运行时句柄，由调用者创建和关闭，没有全局单例：
//
//	sys := actor.NewSystem("my-system")
//	defer sys.Shutdown()
//
// [Actor] 接口定义消息处理行为，[ActorFunc] 提供函数式快捷方式。
// Receive 中的 panic 会被运行时捕获并记录为 [BehaviorFailure]，Actor 继续处理后续消息。
//
// [PID] 是 Actor 的唯一标识。[PID.Tell] 异步发送消息（fire-and-forget），
// 目标不存在时消息被静默丢弃。
//
// # Ask
//
// [Ask] 为每次调用创建一个临时应答地址，以它作为发送者把消息发给目标 Actor，
// 并立即返回 [Future]。目标通过 [Context.Reply] 回复到临时地址时 Future 成功；
// 超时先到则以 [ResponseTimeout] 失败。应答与超时通过一次原子认领决出胜负，
// Future 只会完成一次，迟到的应答被丢弃。
//
//	f := actor.Ask[*Pong](sys, pid, &Ping{}, time.Second)
//	f.OnComplete(func(p *Pong, err error) { ... })
//
// Future 回调在 [SystemConfig.Executor] 上执行，默认是系统自建的 [PoolExecutor]，
// 与 Actor 工作线程相互独立。
//
// # 系统消息
//
// Actor 生命周期中会收到以下系统消息：[Started] 启动完成，[Stopping] 正在停止，
// [Stopped] 已停止。[PoisonPill] 用于排队后优雅停止。
//
// 完整使用示例请参考 example_test.go 或运行 go doc -all。
package actor
