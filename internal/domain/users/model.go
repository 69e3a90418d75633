package users

import (
	"time"

	"pet-tag-registry/internal/ports/auth"
)

// User es la cuenta autenticable. El rol viaja en los claims del
// token; acá solo se persiste.
type User struct {
	ID    string
	Email string
	Name  string

	// PasswordHash es bcrypt; nunca sale en respuestas.
	PasswordHash string

	Role auth.Role

	CreatedAt time.Time
}
