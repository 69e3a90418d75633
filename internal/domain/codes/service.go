package codes

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("code not found")

	// ErrCodeTaken: otro proceso insertó el mismo code entre el
	// "leer último" y el "escribir lote". Conflicto retryable.
	ErrCodeTaken = errors.New("code already exists")
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Generate crea count códigos nuevos en estado raw, continuando la
// secuencia desde el máximo existente. La imagen QR no se persiste:
// se regenera on-demand, así que acá solo va el registro.
func (s *Service) Generate(ctx context.Context, count int) ([]Code, error) {
	last, err := s.repo.LastCode(ctx)
	if err != nil {
		return nil, err
	}

	batch, err := AllocateBatch(last, count)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]Code, 0, len(batch))
	for _, code := range batch {
		c := Code{
			ID:        uuid.NewString(),
			Code:      code,
			Status:    StatusRaw,
			CreatedAt: now,
		}
		if err := s.repo.Create(ctx, c); err != nil {
			// ErrCodeTaken sube tal cual: el caller decide reintentar.
			return nil, err
		}
		out = append(out, c)
	}

	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (CodeWithPet, error) {
	if strings.TrimSpace(id) == "" {
		return CodeWithPet{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (Code, error) {
	if strings.TrimSpace(code) == "" {
		return Code{}, ErrNotFound
	}
	return s.repo.GetByCode(ctx, code)
}

// Pagination es el sobre estándar de paginado por offset.
type Pagination struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// List pagina con clamping documentado: page < 1 => 1,
// limit < 1 => 20, limit > 100 => 100. Los valores efectivos
// vuelven en Pagination para que el caller no adivine.
func (s *Service) List(ctx context.Context, status *Status, page, limit int) ([]CodeWithPet, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	items, total, err := s.repo.List(ctx, ListFilter{
		Status: status,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, Pagination{}, err
	}

	return items, Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Stats(ctx context.Context) (StatusCounts, error) {
	return s.repo.CountByStatus(ctx)
}
