package auth

import "context"

// AuthVerifier verifica un token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// TokenIssuer emite un token firmado para los claims dados.
// Lo consume el módulo users en el login; la implementación
// concreta vive en adapters/auth.
type TokenIssuer interface {
	Issue(ctx context.Context, c Claims) (string, error)
}
