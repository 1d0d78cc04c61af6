package repository

import (
	"context"

	"github.com/jhoicas/donaciones-api/internal/domain/entity"
)

// SolicitudFilter paginación (offset/limit) y filtro opcional de estado.
type SolicitudFilter struct {
	Estado entity.EstadoSolicitud
	Limit  int
	Offset int
}

// SolicitudRepository define el puerto de persistencia para solicitudes, su historial y despacho.
type SolicitudRepository interface {
	// Create asigna el ID secuencial.
	Create(ctx context.Context, s *entity.Solicitud) error
	GetByID(ctx context.Context, id int64) (*entity.Solicitud, error)
	// GetForUpdate bloquea la solicitud; serializa transiciones y asignaciones por solicitud.
	GetForUpdate(ctx context.Context, id int64) (*entity.Solicitud, error)
	UpdateEstado(ctx context.Context, s *entity.Solicitud) error
	List(ctx context.Context, f SolicitudFilter) ([]*entity.Solicitud, int, error)

	AddHistorial(ctx context.Context, h *entity.SolicitudHistorial) error
	ListHistorial(ctx context.Context, solicitudID int64) ([]*entity.SolicitudHistorial, error)

	CreateDespacho(ctx context.Context, d *entity.Despacho) error
	GetDespacho(ctx context.Context, solicitudID int64) (*entity.Despacho, error)
}
