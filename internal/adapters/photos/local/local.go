// Package local guarda las fotos en disco, bajo un directorio servible
// como estático. Es el default para dev y despliegues chicos.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type Store struct {
	dir       string // directorio físico, ej. public/uploads/pets
	urlPrefix string // prefijo público, ej. /uploads/pets
}

func New(dir, urlPrefix string) *Store {
	return &Store{
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
	}
}

func (s *Store) Save(_ context.Context, key, _ string, r io.Reader) (string, error) {
	key = filepath.Base(key) // sin path traversal

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create photos dir: %w", err)
	}

	f, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", fmt.Errorf("create photo file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write photo: %w", err)
	}

	return s.urlPrefix + "/" + key, nil
}

func (s *Store) Remove(_ context.Context, url string) error {
	if !strings.HasPrefix(url, s.urlPrefix+"/") {
		// URL de otro store (p.ej. quedó de una config S3 anterior): no tocar
		return nil
	}
	key := filepath.Base(strings.TrimPrefix(url, s.urlPrefix+"/"))

	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
