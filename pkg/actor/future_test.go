package actor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queueExecutor 只排队不执行，测试可以控制回调的执行时机
type queueExecutor struct {
	mu    sync.Mutex
	tasks []func()
}

func (q *queueExecutor) Execute(task func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, task)
	q.mu.Unlock()
}

func (q *queueExecutor) RunAll() int {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()
	for _, task := range tasks {
		task()
	}
	return len(tasks)
}

func TestFutureCompletesOnce(t *testing.T) {
	f := newFuture[int](GoExecutor)
	assert.False(t, f.IsDone())

	assert.True(t, f.complete(1, nil))
	assert.False(t, f.complete(2, nil))
	assert.False(t, f.complete(0, errors.New("late")))

	assert.True(t, f.IsDone())
	v, err := f.Result()
	assert.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestFutureCallbacksRunOnExecutor(t *testing.T) {
	q := &queueExecutor{}
	f := newFuture[string](q)

	var got []string
	f.OnComplete(func(v string, _ error) { got = append(got, "before:"+v) })
	f.complete("x", nil)
	// 完成后注册的回调也不会同步执行
	f.OnComplete(func(v string, _ error) { got = append(got, "after:"+v) })

	assert.Empty(t, got)
	assert.Equal(t, 2, q.RunAll())
	assert.Equal(t, []string{"before:x", "after:x"}, got)
}

func TestFutureOnSuccessOnFailure(t *testing.T) {
	q := &queueExecutor{}
	ok := Completed(q, 7)
	bad := Failed[int](q, errors.New("boom"))

	var success, failure atomic.Int32
	for _, f := range []*Future[int]{ok, bad} {
		f.OnSuccess(func(int) { success.Add(1) })
		f.OnFailure(func(error) { failure.Add(1) })
	}
	q.RunAll()

	assert.Equal(t, int32(1), success.Load())
	assert.Equal(t, int32(1), failure.Load())
}

func TestFutureAwait(t *testing.T) {
	f := newFuture[int](GoExecutor)
	go func() {
		time.Sleep(10 * time.Millisecond)
		f.complete(42, nil)
	}()

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestFutureAwaitContextCanceled(t *testing.T) {
	f := newFuture[int](GoExecutor)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, f.IsDone())
}

func TestThen(t *testing.T) {
	fa := newFuture[int](GoExecutor)
	fb := Then(fa, func(a int) (string, error) {
		if a < 0 {
			return "", errors.New("negative")
		}
		return "ok", nil
	})
	fa.complete(1, nil)

	v, err := fb.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", v)

	fc := Then(Completed(GoExecutor, -1), func(a int) (string, error) {
		if a < 0 {
			return "", errors.New("negative")
		}
		return "ok", nil
	})
	_, err = fc.Await(context.Background())
	assert.EqualError(t, err, "negative")
}

func TestThenPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	var called atomic.Bool
	fb := Then(Failed[int](GoExecutor, boom), func(int) (int, error) {
		called.Store(true)
		return 0, nil
	})

	_, err := fb.Await(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, called.Load())
}

func TestAll(t *testing.T) {
	fs := []*Future[int]{
		newFuture[int](GoExecutor),
		newFuture[int](GoExecutor),
		newFuture[int](GoExecutor),
	}
	all := All(GoExecutor, fs...)

	fs[2].complete(3, nil)
	fs[0].complete(1, nil)
	fs[1].complete(2, nil)

	vals, err := all.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, vals)

	empty, err := All[int](GoExecutor).Await(context.Background())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAllFailsOnFirstError(t *testing.T) {
	boom := errors.New("boom")
	all := All(GoExecutor, Completed(GoExecutor, 1), Failed[int](GoExecutor, boom))

	_, err := all.Await(context.Background())
	assert.ErrorIs(t, err, boom)
}
