// Package solicitud define la máquina de estados de una solicitud de donación.
//
//	PENDIENTE ─▶ EN_REVISION ─▶ APROBADA ─▶ DESPACHADA
//	                   │
//	                   ├─▶ RECHAZADA
//	                   └─▶ INCOMPLETA
//
// Todo estado no terminal puede pasar a CANCELADA.
package solicitud

import (
	"fmt"

	"github.com/jhoicas/donaciones-api/internal/domain"
	"github.com/jhoicas/donaciones-api/internal/domain/entity"
)

var transiciones = map[entity.EstadoSolicitud][]entity.EstadoSolicitud{
	entity.EstadoPendiente:  {entity.EstadoEnRevision, entity.EstadoCancelada},
	entity.EstadoEnRevision: {entity.EstadoAprobada, entity.EstadoRechazada, entity.EstadoIncompleta, entity.EstadoCancelada},
	entity.EstadoAprobada:   {entity.EstadoDespachada, entity.EstadoCancelada},
	entity.EstadoIncompleta: {entity.EstadoCancelada},
}

// Estados lista completa de estados conocidos.
var Estados = []entity.EstadoSolicitud{
	entity.EstadoPendiente,
	entity.EstadoEnRevision,
	entity.EstadoAprobada,
	entity.EstadoRechazada,
	entity.EstadoIncompleta,
	entity.EstadoDespachada,
	entity.EstadoCancelada,
}

// EstadoInicial estado con el que se crea toda solicitud.
const EstadoInicial = entity.EstadoPendiente

// ParseEstado valida un estado recibido como texto.
func ParseEstado(s string) (entity.EstadoSolicitud, error) {
	for _, e := range Estados {
		if string(e) == s {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: estado %q desconocido", domain.ErrValidation, s)
}

// IsTerminal indica si no hay transiciones de salida.
func IsTerminal(e entity.EstadoSolicitud) bool {
	return e == entity.EstadoRechazada || e == entity.EstadoDespachada || e == entity.EstadoCancelada
}

// Allocatable indica si en el estado se pueden modificar las asignaciones de stock.
func Allocatable(e entity.EstadoSolicitud) bool {
	return e == entity.EstadoEnRevision || e == entity.EstadoAprobada
}

// ReleasesOnEntry indica si entrar al estado libera todo el stock reservado.
// DESPACHADA consume el stock; el resto de terminales lo devuelven.
func ReleasesOnEntry(e entity.EstadoSolicitud) bool {
	return IsTerminal(e) && e != entity.EstadoDespachada
}

// CanTransition indica si la arista from → to existe.
func CanTransition(from, to entity.EstadoSolicitud) bool {
	for _, t := range transiciones[from] {
		if t == to {
			return true
		}
	}
	return false
}

// CheckTransition devuelve ErrInvalidState si la arista no existe.
func CheckTransition(from, to entity.EstadoSolicitud) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: transición %s → %s no permitida", domain.ErrInvalidState, from, to)
	}
	return nil
}

// NextStates estados alcanzables desde e, en el orden de la tabla.
func NextStates(e entity.EstadoSolicitud) []entity.EstadoSolicitud {
	out := make([]entity.EstadoSolicitud, len(transiciones[e]))
	copy(out, transiciones[e])
	return out
}
