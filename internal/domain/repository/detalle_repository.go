package repository

import (
	"context"

	"github.com/jhoicas/donaciones-api/internal/domain/entity"
)

// DetalleRepository conjunto de líneas de asignación de una solicitud.
// Solo admite reemplazo completo; no hay edición por línea.
type DetalleRepository interface {
	ListBySolicitud(ctx context.Context, solicitudID int64) ([]entity.DetalleLine, error)
	Replace(ctx context.Context, solicitudID int64, lines []entity.DetalleLine) error
	Count(ctx context.Context, solicitudID int64) (int, error)
}
