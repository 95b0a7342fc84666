package access

import (
	"sync"

	"github.com/rtowner/charguess/internal/model"
)

// Service is the privilege gate for catalog mutation commands: a static
// owner plus a dynamically grown sudo set. Only the owner can grow the set.
type Service struct {
	owner model.UserID

	mu   sync.RWMutex
	sudo map[model.UserID]struct{}
}

// New creates a new access Service. The owner is always privileged.
func New(owner model.UserID) *Service {
	return &Service{
		owner: owner,
		sudo:  make(map[model.UserID]struct{}),
	}
}

// IsPrivileged reports whether the user is the owner or a sudo user
func (s *Service) IsPrivileged(id model.UserID) bool {
	if id == s.owner {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sudo[id]
	return ok
}

// AddSudo grants sudo to target. Only the owner may do this.
func (s *Service) AddSudo(caller, target model.UserID) error {
	if caller != s.owner {
		return model.ErrUnauthorized
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sudo[target] = struct{}{}
	return nil
}

// SudoUsers returns the current sudo set (excluding the owner)
func (s *Service) SudoUsers() []model.UserID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]model.UserID, 0, len(s.sudo))
	for id := range s.sudo {
		users = append(users, id)
	}
	return users
}
