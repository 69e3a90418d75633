package pets

import (
	"context"
	"time"
)

type Repository interface {
	// CreateActivating es la transición completa de activación:
	// verifica que el code exista y siga raw, inserta el perfil y
	// marca el code como active con activatedAt, todo de forma
	// atómica (una transacción en postgres, un lock en memoria).
	// Dos activaciones concurrentes sobre el mismo code: exactamente
	// una gana, la otra recibe ErrAlreadyActivated.
	CreateActivating(ctx context.Context, code string, p Pet, activatedAt time.Time) (Pet, error)

	GetByID(ctx context.Context, id string) (Pet, error)
	GetByCodeID(ctx context.Context, codeID string) (Pet, error)

	// ListByTutor devuelve los perfiles del tutor, created_at desc,
	// cada uno con su code impreso.
	ListByTutor(ctx context.Context, tutorID string) ([]PetWithCode, error)

	Update(ctx context.Context, p Pet) error

	Count(ctx context.Context) (int, error)
}
