package users

import "context"

type Repository interface {
	// Create inserta la cuenta. Devuelve ErrEmailTaken si el email
	// ya existe (unique en storage).
	Create(ctx context.Context, u User) error

	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
}
