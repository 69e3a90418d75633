package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStore_SaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	st := New(dir, "/uploads/pets/")

	url, err := st.Save(context.Background(), "pet-1-123.png", "image/png", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if url != "/uploads/pets/pet-1-123.png" {
		t.Fatalf("unexpected url %q", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "pet-1-123.png"))
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if string(data) != "data" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := st.Remove(context.Background(), url); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "pet-1-123.png")); !os.IsNotExist(err) {
		t.Fatalf("expected file gone, got %v", err)
	}

	// borrar de nuevo no es error
	if err := st.Remove(context.Background(), url); err != nil {
		t.Fatalf("Remove twice error: %v", err)
	}
}

func TestStore_SaveStripsPath(t *testing.T) {
	dir := t.TempDir()
	st := New(dir, "/uploads/pets")

	url, err := st.Save(context.Background(), "../../etc/passwd.png", "image/png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if url != "/uploads/pets/passwd.png" {
		t.Fatalf("expected traversal stripped, got %q", url)
	}
	if _, err := os.Stat(filepath.Join(dir, "passwd.png")); err != nil {
		t.Fatalf("expected file inside dir: %v", err)
	}
}

func TestStore_RemoveIgnoresForeignURL(t *testing.T) {
	st := New(t.TempDir(), "/uploads/pets")

	if err := st.Remove(context.Background(), "https://bucket.s3.amazonaws.com/pets/x.png"); err != nil {
		t.Fatalf("foreign url must be a no-op, got %v", err)
	}
}
