package repository

import (
	"context"

	"github.com/jhoicas/donaciones-api/internal/domain/entity"
)

// LoteFilter criterios de listado de lotes.
type LoteFilter struct {
	MedicamentoCodigo string
	Limit             int
	Offset            int
}

// LoteRepository define el puerto de persistencia para lotes. No hay Update ni Delete: los lotes son inmutables.
type LoteRepository interface {
	// Create devuelve domain.ErrConflict si el código ya existe.
	Create(ctx context.Context, lote *entity.Lote) error
	// GetByCode devuelve (nil, nil) si no existe.
	GetByCode(ctx context.Context, codigo string) (*entity.Lote, error)
	List(ctx context.Context, f LoteFilter) ([]*entity.Lote, int, error)
}
