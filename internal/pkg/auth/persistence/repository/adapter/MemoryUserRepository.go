package adapter

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	auth "github.com/sparxmathsalternative/damnis/internal/pkg/auth/domain"
	repository "github.com/sparxmathsalternative/damnis/internal/pkg/auth/persistence/repository/port"
)

// MemoryUserRepository is an in-process repository.UserRepository used in
// tests and local development without Postgres.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	users   map[string]auth.User                // keyed by username
	pending map[string]auth.PendingVerification // keyed by email
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:   make(map[string]auth.User),
		pending: make(map[string]auth.PendingVerification),
	}
}

// Ensure interface compliance at compile time
var _ repository.UserRepository = (*MemoryUserRepository)(nil)

func (r *MemoryUserRepository) CreateUser(ctx context.Context, u auth.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Username]; ok {
		return "", fmt.Errorf("memory: username %q already exists", u.Username)
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	r.users[u.Username] = u
	return u.ID, nil
}

func (r *MemoryUserRepository) FindUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[username]; ok {
		return &u, nil
	}
	return nil, repository.ErrNotFound
}

func (r *MemoryUserRepository) FindUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *MemoryUserRepository) FindUserByQuickCode(ctx context.Context, code string) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.QuickCode == code {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *MemoryUserRepository) UpdateQuickCode(ctx context.Context, username string, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return repository.ErrNotFound
	}
	u.QuickCode = code
	r.users[username] = u
	return nil
}

func (r *MemoryUserRepository) UpdateAvatar(ctx context.Context, username string, avatarBase64 *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return repository.ErrNotFound
	}
	u.AvatarBase64 = avatarBase64
	r.users[username] = u
	return nil
}

func (r *MemoryUserRepository) UpsertPending(ctx context.Context, p auth.PendingVerification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	r.pending[p.Email] = p
	return nil
}

func (r *MemoryUserRepository) FindPendingByEmail(ctx context.Context, email string) (*auth.PendingVerification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.pending[email]; ok {
		return &p, nil
	}
	return nil, repository.ErrNotFound
}

func (r *MemoryUserRepository) DeletePending(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, email)
	return nil
}
