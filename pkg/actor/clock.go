package actor

import "time"

// Clock 时间源，Ask 超时通过它计时
// 测试中可替换为手动推进的时钟
type Clock interface {
	Now() time.Time
	// AfterFunc 在 d 之后于独立 goroutine 中调用 f
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer AfterFunc 返回的定时器
type Timer interface {
	// Stop 取消定时器，定时器已触发或已停止时返回 false
	Stop() bool
}

// WallClock 基于 time 包的真实时钟
var WallClock Clock = wallClock{}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func (wallClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
