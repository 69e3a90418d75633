package codes

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID   map[string]Code
	byCode map[string]string

	// lastCode simula una lectura desactualizada del máximo (carrera
	// entre dos generaciones); nil = comportamiento normal.
	lastCode *string
}

func newTestRepo() *testRepo {
	return &testRepo{
		byID:   map[string]Code{},
		byCode: map[string]string{},
	}
}

func (r *testRepo) Create(ctx context.Context, c Code) error {
	if _, ok := r.byCode[c.Code]; ok {
		return ErrCodeTaken
	}
	r.byID[c.ID] = c
	r.byCode[c.Code] = c.ID
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (CodeWithPet, error) {
	c, ok := r.byID[id]
	if !ok {
		return CodeWithPet{}, ErrNotFound
	}
	return CodeWithPet{Code: c}, nil
}

func (r *testRepo) GetByCode(ctx context.Context, code string) (Code, error) {
	id, ok := r.byCode[code]
	if !ok {
		return Code{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *testRepo) LastCode(ctx context.Context) (string, error) {
	if r.lastCode != nil {
		return *r.lastCode, nil
	}
	last := ""
	for code := range r.byCode {
		if code > last {
			last = code
		}
	}
	return last, nil
}

func (r *testRepo) List(ctx context.Context, f ListFilter) ([]CodeWithPet, int, error) {
	all := make([]CodeWithPet, 0)
	for _, c := range r.byID {
		if f.Status != nil && c.Status != *f.Status {
			continue
		}
		all = append(all, CodeWithPet{Code: c})
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].Code.Code > all[j].Code.Code
	})
	total := len(all)
	if f.Offset > 0 {
		if f.Offset >= len(all) {
			return nil, total, nil
		}
		all = all[f.Offset:]
	}
	if f.Limit > 0 && len(all) > f.Limit {
		all = all[:f.Limit]
	}
	return all, total, nil
}

func (r *testRepo) CountByStatus(ctx context.Context) (StatusCounts, error) {
	out := StatusCounts{Total: len(r.byID)}
	for _, c := range r.byID {
		if c.Status == StatusRaw {
			out.Raw++
		} else {
			out.Active++
		}
	}
	return out, nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	c, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byCode, c.Code)
	return nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Generate_EmptyStore(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	generated, err := svc.Generate(context.Background(), 3)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	want := []string{"00001", "00002", "00003"}
	if len(generated) != len(want) {
		t.Fatalf("expected %d codes, got %d", len(want), len(generated))
	}
	for i, c := range generated {
		if c.Code != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], c.Code)
		}
		if c.Status != StatusRaw {
			t.Fatalf("expected status raw, got %s", c.Status)
		}
		if c.ActivatedAt != nil {
			t.Fatalf("raw code must not have ActivatedAt")
		}
		if c.CreatedAt != now {
			t.Fatalf("expected CreatedAt = now")
		}
	}
}

func TestService_Generate_ContinuesFromLast(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	if _, err := svc.Generate(context.Background(), 2); err != nil {
		t.Fatalf("Generate #1 error: %v", err)
	}
	more, err := svc.Generate(context.Background(), 2)
	if err != nil {
		t.Fatalf("Generate #2 error: %v", err)
	}
	if more[0].Code != "00003" || more[1].Code != "00004" {
		t.Fatalf("expected 00003/00004, got %s/%s", more[0].Code, more[1].Code)
	}
}

func TestService_Generate_InvalidCount(t *testing.T) {
	svc := NewService(newTestRepo())

	for _, count := range []int{0, 101} {
		if _, err := svc.Generate(context.Background(), count); !errors.Is(err, ErrInvalidCount) {
			t.Fatalf("count=%d: expected ErrInvalidCount, got %v", count, err)
		}
	}
}

func TestService_Generate_SurfacesCollision(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	// otro proceso insertó 00001 entre el "leer último" y el "escribir"
	if err := repo.Create(context.Background(), Code{ID: "x", Code: "00001", Status: StatusRaw}); err != nil {
		t.Fatalf("seed error: %v", err)
	}
	stale := ""
	repo.lastCode = &stale

	if _, err := svc.Generate(context.Background(), 1); !errors.Is(err, ErrCodeTaken) {
		t.Fatalf("expected ErrCodeTaken, got %v", err)
	}
}

func TestService_List_ClampsPagination(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	if _, err := svc.Generate(context.Background(), 5); err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	// page y limit fuera de rango se clampean, y los efectivos vuelven
	items, pg, err := svc.List(context.Background(), nil, 0, -3)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if pg.Page != 1 || pg.Limit != 20 {
		t.Fatalf("expected clamped page=1 limit=20, got page=%d limit=%d", pg.Page, pg.Limit)
	}
	if pg.Total != 5 || pg.TotalPages != 1 {
		t.Fatalf("expected total=5 totalPages=1, got %d/%d", pg.Total, pg.TotalPages)
	}
	if len(items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(items))
	}
}

func TestService_List_OffsetFormula(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	if _, err := svc.Generate(context.Background(), 5); err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	// orden desc: página 2 con limit 2 = tercer y cuarto código más nuevos
	items, pg, err := svc.List(context.Background(), nil, 2, 2)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if pg.TotalPages != 3 {
		t.Fatalf("expected totalPages=3, got %d", pg.TotalPages)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Code.Code != "00003" || items[1].Code.Code != "00002" {
		t.Fatalf("expected 00003/00002, got %s/%s", items[0].Code.Code, items[1].Code.Code)
	}
}

func TestService_List_FilterByStatus(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	if _, err := svc.Generate(context.Background(), 3); err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	// activar 00002 a mano en el repo de test
	id := repo.byCode["00002"]
	c := repo.byID[id]
	at := time.Now()
	c.Status = StatusActive
	c.ActivatedAt = &at
	repo.byID[id] = c

	raw := StatusRaw
	items, pg, err := svc.List(context.Background(), &raw, 1, 10)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if pg.Total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 raw codes, got total=%d len=%d", pg.Total, len(items))
	}
	for _, it := range items {
		if it.Status != StatusRaw {
			t.Fatalf("expected only raw codes, got %s", it.Status)
		}
	}
}

func TestService_Stats(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	if _, err := svc.Generate(context.Background(), 4); err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	id := repo.byCode["00001"]
	c := repo.byID[id]
	at := time.Now()
	c.Status = StatusActive
	c.ActivatedAt = &at
	repo.byID[id] = c

	counts, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if counts.Total != 4 || counts.Raw != 3 || counts.Active != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestService_Delete(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	generated, err := svc.Generate(context.Background(), 1)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	if err := svc.Delete(context.Background(), generated[0].ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := svc.Delete(context.Background(), generated[0].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
