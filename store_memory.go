package main

import (
	"context"
	"strings"
	"sync"
	"time"
)

// memoryRepository keeps rows in insertion order. Values are copied in and out.
type memoryRepository[E any] struct {
	mu     sync.RWMutex
	rows   []E
	nextID int64
	id     func(e *E) *int64
}

func newMemoryRepository[E any](id func(e *E) *int64) *memoryRepository[E] {
	return &memoryRepository[E]{nextID: 1, id: id}
}

func (r *memoryRepository[E]) index(id int64) int {
	for i := range r.rows {
		if *r.id(&r.rows[i]) == id {
			return i
		}
	}
	return -1
}

func (r *memoryRepository[E]) List(_ context.Context) ([]E, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]E, len(r.rows))
	copy(out, r.rows)
	return out, nil
}

func (r *memoryRepository[E]) Get(_ context.Context, id int64) (E, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var zero E
	i := r.index(id)
	if i < 0 {
		return zero, ErrNotFound
	}
	return r.rows[i], nil
}

func (r *memoryRepository[E]) Create(_ context.Context, e *E) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.id(e) = r.nextID
	r.nextID++
	r.rows = append(r.rows, *e)
	return nil
}

func (r *memoryRepository[E]) Update(_ context.Context, e *E) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(*r.id(e))
	if i < 0 {
		return ErrNotFound
	}
	r.rows[i] = *e
	return nil
}

func (r *memoryRepository[E]) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return ErrNotFound
	}
	r.rows = append(r.rows[:i], r.rows[i+1:]...)
	return nil
}

func (r *memoryRepository[E]) Exists(_ context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index(id) >= 0, nil
}

type MemoryUserStore struct {
	mu     sync.RWMutex
	users  map[int64]User
	nextID int64
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[int64]User), nextID: 1}
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) FindByID(_ context.Context, id int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryUserStore) CreateUser(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrEmailTaken
		}
	}
	now := time.Now().UTC().Truncate(time.Second)
	u.ID, u.CreatedAt, u.UpdatedAt = s.nextID, now, now
	s.nextID++
	s.users[u.ID] = *u
	return nil
}

func NewMemoryStores() *Stores {
	return &Stores{
		Users:      NewMemoryUserStore(),
		Shops:      newMemoryRepository(shopTable.id),
		Categories: newMemoryRepository(categoryTable.id),
		Products:   newMemoryRepository(productTable.id),
		Stocks:     newMemoryRepository(stockTable.id),
	}
}
