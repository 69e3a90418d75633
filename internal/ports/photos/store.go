package photos

import (
	"context"
	"io"
)

// Store es el blob store de fotos de perfil. El dominio solo guarda
// la URL que devuelve Save; dónde viven los bytes (disco local o S3)
// es asunto del adapter.
type Store interface {
	// Save persiste el contenido bajo key y devuelve la URL pública.
	Save(ctx context.Context, key, contentType string, r io.Reader) (string, error)

	// Remove borra el blob referido por la URL que devolvió Save.
	// Borrar algo que ya no existe no es error.
	Remove(ctx context.Context, url string) error
}
