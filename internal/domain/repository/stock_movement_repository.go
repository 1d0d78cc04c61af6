package repository

import (
	"context"

	"github.com/jhoicas/donaciones-api/internal/domain/entity"
)

// StockMovementFilter filtros opcionales del historial de movimientos.
type StockMovementFilter struct {
	AlmacenID         string
	LoteCodigo        string
	MedicamentoCodigo string
	SolicitudID       *int64
	Limit             int
	Offset            int
}

// StockMovementRepository define el puerto de persistencia para la auditoría de stock.
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	List(ctx context.Context, f StockMovementFilter) ([]*entity.StockMovement, error)
}
