package codes

import "time"

// Status define el ciclo de vida de un código impreso.
// @Enum raw, active
type Status string

const (
	StatusRaw    Status = "raw"    // generado, sin mascota
	StatusActive Status = "active" // vinculado a una mascota (terminal)
)

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusRaw, StatusActive:
		return Status(s), true
	default:
		return "", false
	}
}

// Code representa un identificador imprimible (una chapita física).
// El campo Code es fijo de 5 dígitos con ceros a la izquierda,
// así el orden lexicográfico coincide con el numérico.
type Code struct {
	ID   string
	Code string

	Status Status

	CreatedAt   time.Time
	ActivatedAt *time.Time // no-nil sii Status == active
}

// PetSummary es el resumen de la mascota vinculada que necesita
// el listado admin y el export. Lo llena el adapter (join), no hay
// import de pets acá para evitar acoplar los módulos.
type PetSummary struct {
	Name      string
	TutorName string
}

// CodeWithPet es un Code más su mascota (nil si sigue raw).
type CodeWithPet struct {
	Code
	Pet *PetSummary
}
