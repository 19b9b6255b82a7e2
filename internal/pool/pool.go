package pool

// Resettable is implemented by values that can be cleared for reuse.
type Resettable interface {
	Reset()
}

// Poolable values are resettable and comparable, so the zero value can be skipped.
type Poolable interface {
	Resettable
	comparable
}

// Pool is a bounded free list of reusable values. Unlike sync.Pool it never
// drops items on GC and reports an empty pool by returning the zero value.
type Pool[T Poolable] struct {
	items chan T
}

// New creates a pool holding at most capacity idle values.
func New[T Poolable](capacity int) *Pool[T] {
	return &Pool[T]{
		items: make(chan T, capacity),
	}
}

// Get takes an idle value or returns the zero value when none is available.
func (p *Pool[T]) Get() T {
	select {
	case item := <-p.items:
		return item
	default:
		var zero T
		return zero
	}
}

// Put resets item and keeps it for reuse. Zero values are ignored and
// items beyond capacity are discarded.
func (p *Pool[T]) Put(item T) {
	var zero T
	if item == zero {
		return
	}
	item.Reset()

	select {
	case p.items <- item:
	default:
	}
}

// Len reports the number of idle values.
func (p *Pool[T]) Len() int {
	return len(p.items)
}
