package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ecomstack/backend/internal/models"
)

// MemoryStore is a process-local store for development and tests.
// It satisfies the same contracts as the database backends.
type MemoryStore struct {
	mu       sync.Mutex
	products []models.Product
	users    map[string]*models.User // by id
	byEmail  map[string]string       // email -> id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryStore) InsertProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := 1
	for _, existing := range s.products {
		if existing.ID >= next {
			next = existing.ID + 1
		}
	}
	p.ID = next
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	s.products = append(s.products, *p)
	return nil
}

func (s *MemoryStore) DeleteProduct(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.products {
		if p.ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) ListProducts(_ context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *MemoryStore) ListProductsByCategory(_ context.Context, category string, limit int) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Product{}
	for _, p := range s.products {
		if limit > 0 && len(out) == limit {
			break
		}
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[u.Email]; taken {
		return models.ErrDuplicate
	}
	u.ID = uuid.NewString()
	if u.Date.IsZero() {
		u.Date = time.Now().UTC()
	}
	if u.Cart == nil {
		u.Cart = models.NewCart()
	}

	stored := *u
	stored.Cart = copyCart(u.Cart)
	s.users[u.ID] = &stored
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, models.ErrNotFound
	}
	u := *s.users[id]
	u.Cart = copyCart(u.Cart)
	return &u, nil
}

func (s *MemoryStore) GetCart(_ context.Context, userID string) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return copyCart(u.Cart), nil
}

func (s *MemoryStore) IncrementCartSlot(_ context.Context, userID string, slot int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return models.ErrNotFound
	}
	u.Cart[slot]++
	return nil
}

func (s *MemoryStore) DecrementCartSlot(_ context.Context, userID string, slot int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return models.ErrNotFound
	}
	if u.Cart[slot] > 0 {
		u.Cart[slot]--
	}
	return nil
}

func copyCart(c models.Cart) models.Cart {
	out := make(models.Cart, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
