package repository

import (
	"context"

	"github.com/jhoicas/donaciones-api/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar stock por (almacén, lote, medicamento).
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get devuelve una entrada en cero si no existe.
	Get(ctx context.Context, key entity.StockKey) (*entity.StockEntry, error)
	// GetForUpdate igual que Get pero bloquea la clave hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockEntry, error)
	Upsert(ctx context.Context, entry *entity.StockEntry) error
	ListAll(ctx context.Context) ([]*entity.StockEntry, error)
}
