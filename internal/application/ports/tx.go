package ports

import (
	"context"

	"github.com/jhoicas/donaciones-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción (o a una lectura consistente).
type Repos struct {
	Lotes        repository.LoteRepository
	Medicamentos repository.MedicamentoRepository
	Almacenes    repository.AlmacenRepository
	Stock        repository.StockRepository
	Movimientos  repository.StockMovementRepository
	Solicitudes  repository.SolicitudRepository
	Detalles     repository.DetalleRepository
}

// TxRunner ejecuta funciones dentro de una unidad atómica del almacenamiento.
//
// Run: lectura-escritura; Commit si fn devuelve nil, Rollback en cualquier otro caso.
// Ningún cambio parcial queda visible ante error.
// View: solo lectura sobre una instantánea consistente.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
	View(ctx context.Context, fn func(r Repos) error) error
}
