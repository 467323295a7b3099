package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/habscollection/storefront/internal/entity"
)

// UserStore implements repository.UserRepository over a mutex-guarded map.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*entity.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*entity.User)}
}

func (s *UserStore) Create(ctx context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return entity.ErrDuplicate
		}
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *UserStore) Update(ctx context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return entity.ErrNotFound
	}
	existing.FirstName = user.FirstName
	existing.LastName = user.LastName
	return nil
}

func (s *UserStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return entity.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}
