// Package events 提供进程内的发布/订阅总线，用于把工具生命周期事件推给界面。
package events

import "sync"

// DefaultBuffer 是每个订阅者通道的缓冲长度。
const DefaultBuffer = 64

// Bus 是简单的 pub-sub；Publish 从不阻塞，订阅者跟不上时事件被丢弃。
type Bus[T any] struct {
	mu     sync.Mutex
	subs   map[int]chan T
	next   int
	buffer int
	closed bool
}

func NewBus[T any]() *Bus[T] {
	return NewBusWithBuffer[T](DefaultBuffer)
}

func NewBusWithBuffer[T any](buffer int) *Bus[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Bus[T]{subs: make(map[int]chan T), buffer: buffer}
}

// Subscribe 返回事件通道和退订函数；退订会关闭通道，可重复调用。
func (b *Bus[T]) Subscribe() (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		ch := make(chan T)
		close(ch)
		return ch, func() {}
	}
	id := b.next
	b.next++
	ch := make(chan T, b.buffer)
	b.subs[id] = ch
	return ch, func() { b.unsubscribe(id) }
}

func (b *Bus[T]) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(ch)
}

// Publish 投递给所有订阅者，返回被丢弃的次数。
func (b *Bus[T]) Publish(evt T) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0
	}
	dropped := 0
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			dropped++
		}
	}
	return dropped
}

// Subscribers 返回当前订阅者数量。
func (b *Bus[T]) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
	b.closed = true
}
