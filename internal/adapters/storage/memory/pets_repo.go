package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"pet-tag-registry/internal/domain/codes"
	"pet-tag-registry/internal/domain/pets"
)

type petRepo struct {
	st *Store
}

func NewPetRepo(st *Store) pets.Repository {
	return &petRepo{st: st}
}

// CreateActivating hace toda la transición bajo el lock del store:
// dos activaciones concurrentes del mismo code se serializan acá y
// la segunda ve status=active.
func (r *petRepo) CreateActivating(ctx context.Context, code string, p pets.Pet, activatedAt time.Time) (pets.Pet, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return pets.Pet{}, errors.New("pet id required")
	}

	codeID, ok := r.st.codeIDByCode[code]
	if !ok {
		return pets.Pet{}, pets.ErrCodeNotFound
	}
	c := r.st.codesByID[codeID]
	if c.Status != codes.StatusRaw {
		return pets.Pet{}, pets.ErrAlreadyActivated
	}
	if _, taken := r.st.petIDByCodeID[codeID]; taken {
		return pets.Pet{}, pets.ErrAlreadyActivated
	}

	p.CodeID = codeID
	r.st.petsByID[p.ID] = p
	r.st.petIDByCodeID[codeID] = p.ID

	at := activatedAt
	c.Status = codes.StatusActive
	c.ActivatedAt = &at
	r.st.codesByID[codeID] = c

	return p, nil
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	p, ok := r.st.petsByID[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, nil
}

func (r *petRepo) GetByCodeID(ctx context.Context, codeID string) (pets.Pet, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	petID, ok := r.st.petIDByCodeID[codeID]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return r.st.petsByID[petID], nil
}

func (r *petRepo) ListByTutor(ctx context.Context, tutorID string) ([]pets.PetWithCode, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make([]pets.PetWithCode, 0)
	for _, p := range r.st.petsByID {
		if p.TutorID != tutorID {
			continue
		}
		code := ""
		if c, ok := r.st.codesByID[p.CodeID]; ok {
			code = c.Code
		}
		out = append(out, pets.PetWithCode{Pet: p, Code: code})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *petRepo) Update(ctx context.Context, p pets.Pet) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.petsByID[p.ID]; !ok {
		return pets.ErrNotFound
	}
	r.st.petsByID[p.ID] = p
	return nil
}

func (r *petRepo) Count(ctx context.Context) (int, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	return len(r.st.petsByID), nil
}
