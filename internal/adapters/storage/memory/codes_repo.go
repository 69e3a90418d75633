package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"pet-tag-registry/internal/domain/codes"
)

type codeRepo struct {
	st *Store
}

func NewCodeRepo(st *Store) codes.Repository {
	return &codeRepo{st: st}
}

func (r *codeRepo) Create(ctx context.Context, c codes.Code) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" || strings.TrimSpace(c.Code) == "" {
		return errors.New("code id and code required")
	}
	if _, exists := r.st.codeIDByCode[c.Code]; exists {
		return codes.ErrCodeTaken
	}

	r.st.codesByID[c.ID] = c
	r.st.codeIDByCode[c.Code] = c.ID
	return nil
}

func (r *codeRepo) GetByID(ctx context.Context, id string) (codes.CodeWithPet, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	c, ok := r.st.codesByID[id]
	if !ok {
		return codes.CodeWithPet{}, codes.ErrNotFound
	}
	return r.withPet(c), nil
}

func (r *codeRepo) GetByCode(ctx context.Context, code string) (codes.Code, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	id, ok := r.st.codeIDByCode[code]
	if !ok {
		return codes.Code{}, codes.ErrNotFound
	}
	return r.st.codesByID[id], nil
}

func (r *codeRepo) LastCode(ctx context.Context) (string, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	// ancho fijo: el máximo lexicográfico es el máximo numérico
	last := ""
	for code := range r.st.codeIDByCode {
		if code > last {
			last = code
		}
	}
	return last, nil
}

func (r *codeRepo) List(ctx context.Context, f codes.ListFilter) ([]codes.CodeWithPet, int, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	all := make([]codes.CodeWithPet, 0, len(r.st.codesByID))
	for _, c := range r.st.codesByID {
		if f.Status != nil && c.Status != *f.Status {
			continue
		}
		all = append(all, r.withPet(c))
	}

	// created_at desc; dentro de un mismo lote (mismo timestamp),
	// code desc para un orden estable
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].Code.Code > all[j].Code.Code
	})

	total := len(all)

	if f.Offset > 0 {
		if f.Offset >= len(all) {
			return []codes.CodeWithPet{}, total, nil
		}
		all = all[f.Offset:]
	}
	if f.Limit > 0 && len(all) > f.Limit {
		all = all[:f.Limit]
	}

	return all, total, nil
}

func (r *codeRepo) CountByStatus(ctx context.Context) (codes.StatusCounts, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := codes.StatusCounts{Total: len(r.st.codesByID)}
	for _, c := range r.st.codesByID {
		switch c.Status {
		case codes.StatusRaw:
			out.Raw++
		case codes.StatusActive:
			out.Active++
		}
	}
	return out, nil
}

func (r *codeRepo) Delete(ctx context.Context, id string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	c, ok := r.st.codesByID[id]
	if !ok {
		return codes.ErrNotFound
	}

	// borrado administrativo: se lleva el perfil vinculado si lo hay
	if petID, ok := r.st.petIDByCodeID[id]; ok {
		delete(r.st.petsByID, petID)
		delete(r.st.petIDByCodeID, id)
	}

	delete(r.st.codesByID, id)
	delete(r.st.codeIDByCode, c.Code)
	return nil
}

// withPet asume el read lock tomado.
func (r *codeRepo) withPet(c codes.Code) codes.CodeWithPet {
	out := codes.CodeWithPet{Code: c}
	if petID, ok := r.st.petIDByCodeID[c.ID]; ok {
		if p, ok := r.st.petsByID[petID]; ok {
			out.Pet = &codes.PetSummary{
				Name:      p.Name,
				TutorName: p.TutorName,
			}
		}
	}
	return out
}
