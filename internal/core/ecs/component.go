package ecs

// Removable lets the World drop an entity from every store on destroy.
type Removable interface {
	Remove(id EntityID)
}

// Store is a typed component map keyed by entity.
type Store[T any] struct {
	data map[EntityID]*T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{data: make(map[EntityID]*T, 64)}
}

func (s *Store[T]) Set(id EntityID, c *T) { s.data[id] = c }

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *Store[T]) Remove(id EntityID) { delete(s.data, id) }
func (s *Store[T]) Len() int           { return len(s.data) }

// Join calls fn for every entity present in both a and b, walking the
// smaller store.
func Join[A, B any](a *Store[A], b *Store[B], fn func(EntityID, *A, *B)) {
	if a.Len() <= b.Len() {
		for id, ca := range a.data {
			if cb, ok := b.data[id]; ok {
				fn(id, ca, cb)
			}
		}
		return
	}
	for id, cb := range b.data {
		if ca, ok := a.data[id]; ok {
			fn(id, ca, cb)
		}
	}
}
