package pets

import "time"

// ContactType define cómo prefiere ser contactado el tutor.
// @Enum whatsapp, phone
type ContactType string

const (
	ContactWhatsApp ContactType = "whatsapp" // mensaje
	ContactPhone    ContactType = "phone"    // llamada
)

// Sex define el sexo de la mascota.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// Pet es el perfil público de una mascota registrada contra un código.
// Se crea en la activación (raw -> active) y después solo lo edita
// su tutor. CodeID y TutorID son inmutables.
type Pet struct {
	ID      string
	CodeID  string
	TutorID string

	// Campos de contacto: nombre y teléfono principal son obligatorios,
	// es lo único que un finder necesita para devolver la mascota.
	TutorName      string
	TutorPhone     string
	ContactType    ContactType
	SecondaryPhone string

	// Campos de perfil, todos opcionales.
	Name         string
	Species      string
	Breed        string
	Sex          Sex
	BirthDate    *time.Time
	Observations string
	Photo        *string // referencia al blob, nil = sin foto

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PetWithCode agrega el code impreso al perfil (para el listado del tutor).
type PetWithCode struct {
	Pet
	Code string
}
