package render

// InvalidID is returned by failed allocations and marks unused ID slots.
const InvalidID = -1

// DefaultPoolCapacity is the number of slots in each resource pool when
// InitSettings.PoolCapacity is zero.
const DefaultPoolCapacity = 4096

// pool is a fixed-capacity slot allocator. IDs are indices into the slot
// array; freed slots are reused most recently freed first.
type pool[T any] struct {
	values []T
	used   []bool
	free   []int32
}

func newPool[T any](capacity int) *pool[T] {
	p := &pool[T]{
		values: make([]T, capacity),
		used:   make([]bool, capacity),
		free:   make([]int32, 0, capacity),
	}
	for i := capacity - 1; i >= 0; i-- {
		p.free = append(p.free, int32(i))
	}
	return p
}

// alloc reserves a slot and returns its ID, or false when the pool is full.
func (p *pool[T]) alloc() (int32, bool) {
	if len(p.free) == 0 {
		return InvalidID, false
	}
	id := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.used[id] = true
	var zero T
	p.values[id] = zero
	return id, true
}

// get returns the slot for id, or nil if id is not allocated.
func (p *pool[T]) get(id int32) *T {
	if id < 0 || int(id) >= len(p.values) || !p.used[id] {
		return nil
	}
	return &p.values[id]
}

// release frees id. It reports false if id was not allocated.
func (p *pool[T]) release(id int32) bool {
	if p.get(id) == nil {
		return false
	}
	var zero T
	p.values[id] = zero
	p.used[id] = false
	p.free = append(p.free, id)
	return true
}

func (p *pool[T]) usedCount() int {
	return len(p.values) - len(p.free)
}

func (p *pool[T]) capacity() int {
	return len(p.values)
}

// each calls fn for every allocated slot.
func (p *pool[T]) each(fn func(id int32, v *T)) {
	for i := range p.values {
		if p.used[i] {
			fn(int32(i), &p.values[i])
		}
	}
}

func (p *pool[T]) clear() {
	*p = *newPool[T](len(p.values))
}
