package repository

import (
	"context"

	"github.com/jhoicas/donaciones-api/internal/domain/entity"
)

// MedicamentoRepository lectura del catálogo de medicamentos.
type MedicamentoRepository interface {
	GetByCode(ctx context.Context, codigo string) (*entity.Medicamento, error)
}
