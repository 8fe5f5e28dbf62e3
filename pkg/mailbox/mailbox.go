// Package mailbox 提供无界、有序的消息邮箱
//
// 邮箱是一个线程安全的 FIFO 队列：
//   - Push 永不阻塞，多个发送者按到达顺序串行追加
//   - Pop 阻塞直到有消息、context 取消或邮箱关闭且已取空
//   - 关闭后不再接收新消息，但已入队的消息仍可取出
//
// Actor 运行时使用它作为每个 Actor 的收件箱，同时也用它作为调度器的就绪队列。
package mailbox

import (
	"context"
	"errors"
	"sync"
)

// ErrMailboxClosed 邮箱已关闭且没有剩余消息
var ErrMailboxClosed = errors.New("mailbox closed")

// Mailbox 无界 FIFO 邮箱
type Mailbox[T any] struct {
	mu     sync.Mutex
	items  []T
	head   int
	closed bool

	// notify 容量为 1 的唤醒信号，Push 时非阻塞写入
	notify chan struct{}
	// done 关闭信号
	done chan struct{}
}

// New 创建空邮箱
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{
		items:  make([]T, 0, 16),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Push 追加消息到队尾
// 邮箱已关闭时丢弃消息并返回 false
func (m *Mailbox[T]) Push(v T) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.items = append(m.items, v)
	m.mu.Unlock()

	m.signal()
	return true
}

// TryPop 非阻塞取出队首消息
func (m *Mailbox[T]) TryPop() (T, bool) {
	m.mu.Lock()
	v, ok, more := m.popLocked()
	m.mu.Unlock()

	if more {
		m.signal()
	}
	return v, ok
}

// Pop 取出队首消息，邮箱为空时阻塞等待
//
// 返回错误的情况：
//   - ctx 取消，返回 ctx.Err()
//   - 邮箱已关闭且已取空，返回 ErrMailboxClosed
func (m *Mailbox[T]) Pop(ctx context.Context) (T, error) {
	var zero T
	for {
		m.mu.Lock()
		v, ok, more := m.popLocked()
		closed := m.closed
		m.mu.Unlock()

		if ok {
			// 还有剩余消息时把唤醒信号传递给其他等待者
			if more {
				m.signal()
			}
			return v, nil
		}
		if closed {
			return zero, ErrMailboxClosed
		}

		select {
		case <-m.notify:
		case <-m.done:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// Len 返回当前排队的消息数
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items) - m.head
}

// Close 关闭邮箱并唤醒所有等待者，重复调用无副作用
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.done)
}

// Closed 返回在邮箱关闭时被关闭的通道
func (m *Mailbox[T]) Closed() <-chan struct{} {
	return m.done
}

// IsClosed 检查邮箱是否已关闭
func (m *Mailbox[T]) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// popLocked 调用者必须持有 m.mu
// 返回值 more 表示取出后队列是否仍非空
func (m *Mailbox[T]) popLocked() (v T, ok bool, more bool) {
	if m.head >= len(m.items) {
		return v, false, false
	}

	var zero T
	v = m.items[m.head]
	m.items[m.head] = zero
	m.head++

	switch {
	case m.head == len(m.items):
		m.items = m.items[:0]
		m.head = 0
	case m.head > 64 && m.head*2 >= len(m.items):
		// 已消费部分超过一半时压缩，避免底层数组无限增长
		n := copy(m.items, m.items[m.head:])
		clear(m.items[n:])
		m.items = m.items[:n]
		m.head = 0
	}
	return v, true, m.head < len(m.items)
}

func (m *Mailbox[T]) signal() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}
