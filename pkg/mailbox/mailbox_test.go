package mailbox

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushPopFIFO(t *testing.T) {
	m := New[int]()
	for i := 0; i < 1000; i++ {
		require.True(t, m.Push(i))
	}
	assert.Equal(t, 1000, m.Len())

	for i := 0; i < 1000; i++ {
		v, err := m.Pop(context.Background())
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
	assert.Equal(t, 0, m.Len())
}

func TestTryPopEmpty(t *testing.T) {
	m := New[string]()
	_, ok := m.TryPop()
	assert.False(t, ok)

	m.Push("a")
	v, ok := m.TryPop()
	assert.True(t, ok)
	assert.Equal(t, "a", v)
}

func TestPopBlocksUntilPush(t *testing.T) {
	m := New[int]()
	got := make(chan int, 1)

	go func() {
		v, err := m.Pop(context.Background())
		if err == nil {
			got <- v
		}
	}()

	select {
	case <-got:
		t.Fatal("Pop returned before any Push")
	case <-time.After(30 * time.Millisecond):
	}

	m.Push(42)

	select {
	case v := <-got:
		assert.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake up after Push")
	}
}

func TestPopContextCanceled(t *testing.T) {
	m := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.Pop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCloseDrainsThenFails(t *testing.T) {
	m := New[int]()
	m.Push(1)
	m.Push(2)
	m.Close()
	m.Close()

	assert.True(t, m.IsClosed())
	assert.False(t, m.Push(3), "push after close must be rejected")

	v, err := m.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	v, err = m.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	_, err = m.Pop(context.Background())
	assert.ErrorIs(t, err, ErrMailboxClosed)

	select {
	case <-m.Closed():
	default:
		t.Fatal("Closed channel should be closed")
	}
}

func TestCloseWakesWaiters(t *testing.T) {
	m := New[int]()
	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		go func() {
			_, err := m.Pop(context.Background())
			errs <- err
		}()
	}

	time.Sleep(20 * time.Millisecond)
	m.Close()

	for i := 0; i < 3; i++ {
		select {
		case err := <-errs:
			assert.ErrorIs(t, err, ErrMailboxClosed)
		case <-time.After(time.Second):
			t.Fatal("waiter not woken by Close")
		}
	}
}

// 每个发送者自身的消息顺序必须保持
func TestConcurrentProducersKeepPerSenderOrder(t *testing.T) {
	type item struct {
		sender int
		seq    int
	}

	const producers = 8
	const perProducer = 500

	m := New[item]()
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				m.Push(item{sender: p, seq: i})
			}
		}(p)
	}
	wg.Wait()

	require.Equal(t, producers*perProducer, m.Len())

	last := make([]int, producers)
	for i := range last {
		last[i] = -1
	}
	for i := 0; i < producers*perProducer; i++ {
		it, ok := m.TryPop()
		require.True(t, ok)
		assert.Equal(t, last[it.sender]+1, it.seq, "sender %d out of order", it.sender)
		last[it.sender] = it.seq
	}
}

// 多个消费者并发 Pop，每条消息恰好被取出一次
func TestMultipleConsumersNoLossNoDup(t *testing.T) {
	const total = 2000

	m := New[int]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	seen := make(map[int]int, total)
	var wg sync.WaitGroup
	for c := 0; c < 4; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				v, err := m.Pop(ctx)
				if err != nil {
					return
				}
				mu.Lock()
				seen[v]++
				mu.Unlock()
			}
		}()
	}

	for i := 0; i < total; i++ {
		m.Push(i)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == total
	}, 2*time.Second, 5*time.Millisecond)

	m.Close()
	wg.Wait()

	for i := 0; i < total; i++ {
		assert.Equal(t, 1, seen[i], "item %d", i)
	}
}

func TestCompactionKeepsOrder(t *testing.T) {
	m := New[int]()
	next := 0
	want := 0
	// 交替入队出队，触发压缩路径
	for round := 0; round < 50; round++ {
		for i := 0; i < 100; i++ {
			m.Push(next)
			next++
		}
		for i := 0; i < 70; i++ {
			v, ok := m.TryPop()
			require.True(t, ok)
			require.Equal(t, want, v)
			want++
		}
	}
	for m.Len() > 0 {
		v, _ := m.TryPop()
		require.Equal(t, want, v)
		want++
	}
	assert.Equal(t, next, want)
}
