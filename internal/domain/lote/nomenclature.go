// Package lote contiene las reglas de nomenclatura de lotes: LOT-YYYYMMDD-NNN.
package lote

import (
	"fmt"
	"regexp"
	"time"

	"github.com/jhoicas/donaciones-api/internal/domain"
)

const (
	// Prefijo fijo de todo código de lote.
	Prefijo = "LOT"
	// MaxSecuencia mayor secuencia representable con 3 dígitos.
	MaxSecuencia = 999

	fechaLayout = "20060102"
)

var codigoRe = regexp.MustCompile(`^LOT-(\d{8})-(\d{3})$`)

// ValidateCode verifica el formato LOT-YYYYMMDD-NNN y que los 8 dígitos formen una fecha real.
func ValidateCode(codigo string) error {
	m := codigoRe.FindStringSubmatch(codigo)
	if m == nil {
		return fmt.Errorf("%w: el código de lote %q no cumple el formato LOT-YYYYMMDD-NNN", domain.ErrValidation, codigo)
	}
	if _, err := time.Parse(fechaLayout, m[1]); err != nil {
		return fmt.Errorf("%w: el código de lote %q contiene una fecha inexistente", domain.ErrValidation, codigo)
	}
	return nil
}

// SuggestCode deriva un código candidato para la fecha y secuencia dadas.
// No garantiza unicidad: el llamador debe reintentar ante ErrConflict.
func SuggestCode(fecha time.Time, secuencia int) (string, error) {
	if secuencia < 1 || secuencia > MaxSecuencia {
		return "", fmt.Errorf("%w: la secuencia debe estar entre 1 y %d", domain.ErrValidation, MaxSecuencia)
	}
	return fmt.Sprintf("%s-%s-%03d", Prefijo, fecha.Format(fechaLayout), secuencia), nil
}

// ValidateDates exige vencimiento estrictamente posterior a la fabricación.
func ValidateDates(fabricacion, vencimiento time.Time) error {
	if fabricacion.IsZero() || vencimiento.IsZero() {
		return fmt.Errorf("%w: fechas de fabricación y vencimiento son obligatorias", domain.ErrValidation)
	}
	if !vencimiento.After(fabricacion) {
		return fmt.Errorf("%w: la fecha de vencimiento debe ser posterior a la de fabricación", domain.ErrValidation)
	}
	return nil
}
