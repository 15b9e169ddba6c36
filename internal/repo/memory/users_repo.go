package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/speakwise/speakwise/internal/domain/user"
)

// UsersRepo is an in-memory credential store for tests and DB-less runs.
// Uniqueness of username and email is enforced under the mutex, giving the
// same observable behavior as the unique indexes in Postgres.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User // keyed by id
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

func (r *UsersRepo) Create(ctx context.Context, email, username, passwordHash string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Username == username || existing.Email == email {
			return user.User{}, user.ErrExists
		}
	}

	now := time.Now().UTC()
	u := user.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		ExamRecords:  map[string]any{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Username == username {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByUsernameOrEmail(ctx context.Context, username, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) Update(ctx context.Context, id string, changes user.Changes) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if changes.Username != "" && changes.Username != u.Username {
		for _, other := range r.items {
			if other.ID != id && other.Username == changes.Username {
				return user.User{}, user.ErrExists
			}
		}
		u.Username = changes.Username
	}

	if changes.Email != "" && changes.Email != u.Email {
		for _, other := range r.items {
			if other.ID != id && other.Email == changes.Email {
				return user.User{}, user.ErrExists
			}
		}
		u.Email = changes.Email
	}

	if changes.PasswordHash != "" {
		u.PasswordHash = changes.PasswordHash
	}

	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u

	return u, nil
}
