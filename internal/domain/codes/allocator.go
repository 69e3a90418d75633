package codes

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	// CodeWidth es el ancho fijo del código impreso.
	CodeWidth = 5

	// MaxBatch es tope de política para generación en lote,
	// no un límite técnico.
	MaxBatch = 100

	maxCodeValue = 99999
)

var (
	// ErrBadLastCode indica que el último código persistido no parsea
	// como decimal de ancho fijo. Es señal de datos corruptos: se
	// reporta, nunca se "recupera" truncando o envolviendo.
	ErrBadLastCode = errors.New("last code is not a valid fixed-width number")

	// ErrCodeSpaceFull indica que se agotó el espacio de 5 dígitos.
	ErrCodeSpaceFull = errors.New("code space exhausted")

	// ErrInvalidCount indica un count fuera de 1..MaxBatch.
	ErrInvalidCount = errors.New("count must be between 1 and 100")
)

// NextCode devuelve el siguiente código secuencial.
// lastCode vacío significa "no hay códigos todavía" => "00001".
// Es función pura: mismo input, mismo output. La unicidad bajo
// concurrencia la garantiza el storage (unique en code), no esto.
func NextCode(lastCode string) (string, error) {
	if lastCode == "" {
		return fmt.Sprintf("%0*d", CodeWidth, 1), nil
	}

	if len(lastCode) != CodeWidth {
		return "", ErrBadLastCode
	}
	for _, r := range lastCode {
		if r < '0' || r > '9' {
			return "", ErrBadLastCode
		}
	}
	n, err := strconv.Atoi(lastCode)
	if err != nil {
		return "", ErrBadLastCode
	}
	if n >= maxCodeValue {
		return "", ErrCodeSpaceFull
	}

	return fmt.Sprintf("%0*d", CodeWidth, n+1), nil
}

// AllocateBatch genera count códigos consecutivos a partir de lastCode,
// realimentando cada resultado como nuevo lastCode. La secuencia es
// estrictamente creciente, sin huecos y sin repetidos.
func AllocateBatch(lastCode string, count int) ([]string, error) {
	if count < 1 || count > MaxBatch {
		return nil, ErrInvalidCount
	}

	out := make([]string, 0, count)
	current := lastCode
	for i := 0; i < count; i++ {
		next, err := NextCode(current)
		if err != nil {
			return nil, err
		}
		out = append(out, next)
		current = next
	}

	return out, nil
}
