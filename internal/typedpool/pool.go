// Package typedpool wraps sync.Pool for values of a single type.
package typedpool

import "sync"

type Pool[T any] struct {
	pool  sync.Pool
	reset func(*T)
}

// New creates a pool of *T. If reset is not nil, it is applied to every
// value handed out by Get.
func New[T any](reset func(*T)) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any { return new(T) },
		},
		reset: reset,
	}
}

func (p *Pool[T]) Get() *T {
	value := p.pool.Get().(*T)
	if p.reset != nil {
		p.reset(value)
	}

	return value
}

func (p *Pool[T]) Put(value *T) {
	p.pool.Put(value)
}
