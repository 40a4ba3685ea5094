package vkng

// handleTable maps the opaque integer handles handed out through the gpu
// interfaces to the wrapper objects behind them. Zero is never issued.
type handleTable[T any] struct {
	next  uint64
	items map[uint64]T
}

func newHandleTable[T any]() *handleTable[T] {
	return &handleTable[T]{items: map[uint64]T{}}
}

func (t *handleTable[T]) add(item T) uint64 {
	t.next++
	t.items[t.next] = item
	return t.next
}

func (t *handleTable[T]) get(handle uint64) (T, bool) {
	item, ok := t.items[handle]
	return item, ok
}

// lookup returns the item for handle, or the zero value when handle is null
// or unknown.
func (t *handleTable[T]) lookup(handle uint64) T {
	item, _ := t.get(handle)
	return item
}

func (t *handleTable[T]) remove(handle uint64) (T, bool) {
	item, ok := t.items[handle]
	if ok {
		delete(t.items, handle)
	}
	return item, ok
}

func (t *handleTable[T]) len() int {
	return len(t.items)
}
