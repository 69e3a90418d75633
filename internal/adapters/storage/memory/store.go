// Package memory implementa los repositorios sobre maps en proceso.
// Todos los repos comparten un Store con un único lock: así la
// activación (insertar pet + pasar el code a active) es atómica
// también acá, igual que la transacción en postgres.
package memory

import (
	"sync"

	"pet-tag-registry/internal/domain/codes"
	"pet-tag-registry/internal/domain/pets"
	"pet-tag-registry/internal/domain/users"
)

type Store struct {
	mu sync.RWMutex

	codesByID    map[string]codes.Code
	codeIDByCode map[string]string

	petsByID      map[string]pets.Pet
	petIDByCodeID map[string]string

	usersByID     map[string]users.User
	userIDByEmail map[string]string
}

func NewStore() *Store {
	return &Store{
		codesByID:     make(map[string]codes.Code),
		codeIDByCode:  make(map[string]string),
		petsByID:      make(map[string]pets.Pet),
		petIDByCodeID: make(map[string]string),
		usersByID:     make(map[string]users.User),
		userIDByEmail: make(map[string]string),
	}
}
