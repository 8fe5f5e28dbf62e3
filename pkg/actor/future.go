package actor

import (
	"context"
	"sync"
)

// Future 只完成一次的异步结果
//
// 完成后注册的回调与完成前注册的回调一样，都提交到 Executor 执行，
// 永远不会在完成者或注册者的调用栈上运行。
type Future[T any] struct {
	executor Executor
	done     chan struct{}

	mu        sync.Mutex
	completed bool
	value     T
	err       error
	callbacks []func(T, error)
}

// newFuture 创建一个未完成的 Future
func newFuture[T any](executor Executor) *Future[T] {
	if executor == nil {
		executor = GoExecutor
	}
	return &Future[T]{
		executor: executor,
		done:     make(chan struct{}),
	}
}

// Completed 返回一个已成功完成的 Future
func Completed[T any](executor Executor, v T) *Future[T] {
	f := newFuture[T](executor)
	f.complete(v, nil)
	return f
}

// Failed 返回一个已失败的 Future
func Failed[T any](executor Executor, err error) *Future[T] {
	f := newFuture[T](executor)
	var zero T
	f.complete(zero, err)
	return f
}

// complete 完成 Future
// 只有第一次调用生效并返回 true
func (f *Future[T]) complete(v T, err error) bool {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return false
	}
	f.completed = true
	f.value = v
	f.err = err
	cbs := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range cbs {
		f.dispatch(cb, v, err)
	}
	return true
}

func (f *Future[T]) dispatch(cb func(T, error), v T, err error) {
	f.executor.Execute(func() { cb(v, err) })
}

// OnComplete 注册完成回调
func (f *Future[T]) OnComplete(cb func(T, error)) {
	f.mu.Lock()
	if !f.completed {
		f.callbacks = append(f.callbacks, cb)
		f.mu.Unlock()
		return
	}
	v, err := f.value, f.err
	f.mu.Unlock()

	f.dispatch(cb, v, err)
}

// OnSuccess 仅在成功时回调
func (f *Future[T]) OnSuccess(cb func(T)) {
	f.OnComplete(func(v T, err error) {
		if err == nil {
			cb(v)
		}
	})
}

// OnFailure 仅在失败时回调
func (f *Future[T]) OnFailure(cb func(error)) {
	f.OnComplete(func(_ T, err error) {
		if err != nil {
			cb(err)
		}
	})
}

// Done 返回在 Future 完成时关闭的通道
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// IsDone 是否已完成
func (f *Future[T]) IsDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Result 返回结果
// 只应在 Done 关闭后调用，未完成时返回零值和 nil
func (f *Future[T]) Result() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err
}

// Await 阻塞直到 Future 完成或 ctx 取消
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.Result()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then 将 Future[A] 转换为 Future[B]
// fa 失败时 fn 不会被调用，错误原样传递
func Then[A any, B any](fa *Future[A], fn func(A) (B, error)) *Future[B] {
	fb := newFuture[B](fa.executor)
	fa.OnComplete(func(a A, err error) {
		if err != nil {
			var zero B
			fb.complete(zero, err)
			return
		}
		fb.complete(fn(a))
	})
	return fb
}

// All 等待所有 Future 完成，结果顺序与输入一致
// 任一失败时返回第一个被观察到的错误
func All[T any](executor Executor, fs ...*Future[T]) *Future[[]T] {
	out := newFuture[[]T](executor)
	if len(fs) == 0 {
		out.complete(nil, nil)
		return out
	}

	var (
		mu   sync.Mutex
		left = len(fs)
		vals = make([]T, len(fs))
	)
	for i, f := range fs {
		f.OnComplete(func(v T, err error) {
			if err != nil {
				out.complete(nil, err)
				return
			}
			mu.Lock()
			vals[i] = v
			left--
			last := left == 0
			mu.Unlock()
			if last {
				out.complete(vals, nil)
			}
		})
	}
	return out
}
