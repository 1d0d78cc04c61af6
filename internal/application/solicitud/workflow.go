package solicitud

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/donaciones-api/internal/application/dto"
	"github.com/jhoicas/donaciones-api/internal/application/ports"
	"github.com/jhoicas/donaciones-api/internal/domain"
	"github.com/jhoicas/donaciones-api/internal/domain/entity"
	domainsol "github.com/jhoicas/donaciones-api/internal/domain/solicitud"
)

// Transition cambia el estado de la solicitud según la tabla del flujo de revisión.
//
// in.EstadoActual es obligatorio: es el estado que el cliente leyó antes de decidir. La solicitud
// se bloquea durante toda la operación y, si su estado ya no es ese, falla con ErrInvalidState.
// Así, de varias transiciones concurrentes decididas sobre el mismo estado gana una sola.
//
// Efectos:
//   - DESPACHADA exige al menos una línea de detalle y registra el despacho.
//   - RECHAZADA y CANCELADA liberan todas las asignaciones en la misma transacción.
func (uc *UseCase) Transition(ctx context.Context, usuarioID string, id int64, in dto.TransitionRequest) (*dto.SolicitudResponse, error) {
	target, err := domainsol.ParseEstado(strings.ToUpper(strings.TrimSpace(in.Estado)))
	if err != nil {
		return nil, err
	}
	actual := strings.TrimSpace(in.EstadoActual)
	if actual == "" {
		return nil, fmt.Errorf("%w: estado_actual es obligatorio", domain.ErrValidation)
	}
	expected, err := domainsol.ParseEstado(strings.ToUpper(actual))
	if err != nil {
		return nil, err
	}
	obs := strings.TrimSpace(in.Observaciones)
	if err := checkObservaciones(obs); err != nil {
		return nil, err
	}

	now := uc.now()
	var out *dto.SolicitudResponse
	var from entity.EstadoSolicitud
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		s, err := r.Solicitudes.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if s == nil {
			return fmt.Errorf("%w: solicitud %d", domain.ErrNotFound, id)
		}
		from = s.Estado
		if expected != from {
			return fmt.Errorf("%w: la solicitud %d cambió a %s (se esperaba %s)", domain.ErrInvalidState, id, from, expected)
		}
		if err := domainsol.CheckTransition(from, target); err != nil {
			return err
		}

		var despacho *entity.Despacho
		switch {
		case target == entity.EstadoDespachada:
			n, err := r.Detalles.Count(ctx, id)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: la solicitud %d no tiene asignaciones para despachar", domain.ErrInvalidState, id)
			}
			despacho = &entity.Despacho{SolicitudID: id, UsuarioID: usuarioID, FechaDespacho: now}
			if err := r.Solicitudes.CreateDespacho(ctx, despacho); err != nil {
				return err
			}
		case domainsol.ReleasesOnEntry(target):
			if err := uc.releaser.ReleaseAllInTx(ctx, r, id, usuarioID); err != nil {
				return fmt.Errorf("liberar asignaciones: %w", err)
			}
		}

		s.Estado = target
		s.Observaciones = obs
		s.UpdatedAt = now
		if err := r.Solicitudes.UpdateEstado(ctx, s); err != nil {
			return err
		}
		if err := r.Solicitudes.AddHistorial(ctx, &entity.SolicitudHistorial{
			SolicitudID:    id,
			EstadoAnterior: from,
			EstadoNuevo:    target,
			Observaciones:  obs,
			UsuarioID:      usuarioID,
			CreatedAt:      now,
		}); err != nil {
			return err
		}
		out = toResponse(s, despacho)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Int64("solicitud", id).
		Str("desde", string(from)).
		Str("hacia", string(target)).
		Str("usuario", usuarioID).
		Msg("solicitud en nuevo estado")
	return out, nil
}
