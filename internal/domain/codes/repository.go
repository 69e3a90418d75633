package codes

import "context"

// ListFilter filtra y pagina el listado admin.
// Status nil = todos. Limit <= 0 = sin límite (lo usa el export).
type ListFilter struct {
	Status *Status
	Limit  int
	Offset int
}

// StatusCounts son los contadores para el panel admin.
type StatusCounts struct {
	Total  int
	Raw    int
	Active int
}

type Repository interface {
	// Create inserta un código nuevo en estado raw.
	// Devuelve ErrCodeTaken si el code ya existe (colisión entre
	// generaciones concurrentes; el unique del storage la detecta).
	Create(ctx context.Context, c Code) error

	GetByID(ctx context.Context, id string) (CodeWithPet, error)
	GetByCode(ctx context.Context, code string) (Code, error)

	// LastCode devuelve el code máximo existente, o "" si no hay ninguno.
	LastCode(ctx context.Context) (string, error)

	// List devuelve códigos en orden created_at desc más el total
	// (sin paginar) que cumple el filtro.
	List(ctx context.Context, f ListFilter) ([]CodeWithPet, int, error)

	CountByStatus(ctx context.Context) (StatusCounts, error)

	Delete(ctx context.Context, id string) error
}
