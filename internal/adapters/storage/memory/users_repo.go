package memory

import (
	"context"
	"errors"
	"strings"

	"pet-tag-registry/internal/domain/users"
)

type userRepo struct {
	st *Store
}

func NewUserRepo(st *Store) users.Repository {
	return &userRepo{st: st}
}

func (r *userRepo) Create(ctx context.Context, u users.User) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" || strings.TrimSpace(u.Email) == "" {
		return errors.New("user id and email required")
	}
	if _, exists := r.st.userIDByEmail[u.Email]; exists {
		return users.ErrEmailTaken
	}

	r.st.usersByID[u.ID] = u
	r.st.userIDByEmail[u.Email] = u.ID
	return nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	id, ok := r.st.userIDByEmail[email]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return r.st.usersByID[id], nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	u, ok := r.st.usersByID[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}
