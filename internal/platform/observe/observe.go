// Package observe holds published store state. Observers are notified in
// the order values are set; the UI turns notifications into bubbletea
// messages so all rendering happens on the event loop.
package observe

import "sync"

type Value[T any] struct {
	mu       sync.RWMutex
	notifyMu sync.Mutex
	v        T
	subs     map[int]func(T)
	next     int
}

func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{v: initial, subs: map[int]func(T){}}
}

func (o *Value[T]) Get() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.v
}

func (o *Value[T]) Set(v T) {
	o.Update(func(cur *T) { *cur = v })
}

// Update mutates the value under lock and then notifies observers with the
// result. Observers may call Get but must not Set the same Value.
func (o *Value[T]) Update(fn func(*T)) {
	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()

	o.mu.Lock()
	fn(&o.v)
	v := o.v
	subs := make([]func(T), 0, len(o.subs))
	for _, fn := range o.subs {
		subs = append(subs, fn)
	}
	o.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Subscribe registers fn and returns a function that removes it.
func (o *Value[T]) Subscribe(fn func(T)) (cancel func()) {
	o.mu.Lock()
	id := o.next
	o.next++
	o.subs[id] = fn
	o.mu.Unlock()
	return func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}
}
