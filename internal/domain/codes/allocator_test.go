package codes

import (
	"errors"
	"fmt"
	"strconv"
	"testing"
)

func TestNextCode_FirstCode(t *testing.T) {
	got, err := NextCode("")
	if err != nil {
		t.Fatalf("NextCode returned error: %v", err)
	}
	if got != "00001" {
		t.Fatalf("expected 00001, got %s", got)
	}
}

func TestNextCode_Increments(t *testing.T) {
	got, err := NextCode("00001")
	if err != nil {
		t.Fatalf("NextCode returned error: %v", err)
	}
	if got != "00002" {
		t.Fatalf("expected 00002, got %s", got)
	}
}

func TestNextCode_Monotonic_PreservesWidth(t *testing.T) {
	// cada código supera al anterior en exactamente 1 y mantiene ancho 5
	current := ""
	for i := 1; i <= 250; i++ {
		next, err := NextCode(current)
		if err != nil {
			t.Fatalf("NextCode(%q) error: %v", current, err)
		}
		if len(next) != CodeWidth {
			t.Fatalf("expected width %d, got %q", CodeWidth, next)
		}
		n, _ := strconv.Atoi(next)
		if n != i {
			t.Fatalf("expected numeric value %d, got %d", i, n)
		}
		current = next
	}
}

func TestNextCode_RejectsMalformed(t *testing.T) {
	cases := []string{
		"1",      // ancho incorrecto
		"000001", // ancho incorrecto
		"0001a",  // no numérico
		"-0001",  // signo
		"+0001",  // signo
		" 0001",  // espacio
	}
	for _, c := range cases {
		if _, err := NextCode(c); !errors.Is(err, ErrBadLastCode) {
			t.Fatalf("NextCode(%q): expected ErrBadLastCode, got %v", c, err)
		}
	}
}

func TestNextCode_SpaceExhausted(t *testing.T) {
	if _, err := NextCode("99999"); !errors.Is(err, ErrCodeSpaceFull) {
		t.Fatalf("expected ErrCodeSpaceFull, got %v", err)
	}
}

func TestAllocateBatch_SequentialNoGaps(t *testing.T) {
	batch, err := AllocateBatch("00041", 3)
	if err != nil {
		t.Fatalf("AllocateBatch error: %v", err)
	}
	want := []string{"00042", "00043", "00044"}
	if len(batch) != len(want) {
		t.Fatalf("expected %d codes, got %d", len(want), len(batch))
	}
	for i := range want {
		if batch[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], batch[i])
		}
	}
}

func TestAllocateBatch_Deterministic(t *testing.T) {
	a, err := AllocateBatch("00007", 5)
	if err != nil {
		t.Fatalf("AllocateBatch error: %v", err)
	}
	b, err := AllocateBatch("00007", 5)
	if err != nil {
		t.Fatalf("AllocateBatch error: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected identical sequences, got %v vs %v", a, b)
		}
	}
}

func TestAllocateBatch_PairwiseDistinct(t *testing.T) {
	batch, err := AllocateBatch("", MaxBatch)
	if err != nil {
		t.Fatalf("AllocateBatch error: %v", err)
	}
	seen := map[string]struct{}{}
	for _, c := range batch {
		if _, dup := seen[c]; dup {
			t.Fatalf("duplicate code %s in batch", c)
		}
		seen[c] = struct{}{}
	}
	if len(seen) != MaxBatch {
		t.Fatalf("expected %d distinct codes, got %d", MaxBatch, len(seen))
	}
}

func TestAllocateBatch_InvalidCount(t *testing.T) {
	for _, count := range []int{0, -1, MaxBatch + 1} {
		if _, err := AllocateBatch("", count); !errors.Is(err, ErrInvalidCount) {
			t.Fatalf("count=%d: expected ErrInvalidCount, got %v", count, err)
		}
	}
}

func TestAllocateBatch_StopsAtSpaceEnd(t *testing.T) {
	// el lote no envuelve silenciosamente al llegar a 99999
	if _, err := AllocateBatch("99998", 2); !errors.Is(err, ErrCodeSpaceFull) {
		t.Fatalf("expected ErrCodeSpaceFull, got %v", err)
	}
}

func TestAllocateBatch_PropagatesBadLastCode(t *testing.T) {
	if _, err := AllocateBatch("garbage", 1); !errors.Is(err, ErrBadLastCode) {
		t.Fatalf("expected ErrBadLastCode, got %v", err)
	}
}

func ExampleNextCode() {
	first, _ := NextCode("")
	second, _ := NextCode(first)
	fmt.Println(first, second)
	// Output: 00001 00002
}
