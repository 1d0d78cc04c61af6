package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/donaciones-api/internal/application/dto"
	"github.com/jhoicas/donaciones-api/internal/application/ports"
	"github.com/jhoicas/donaciones-api/internal/domain"
	"github.com/jhoicas/donaciones-api/internal/domain/entity"
	domaininv "github.com/jhoicas/donaciones-api/internal/domain/inventory"
	"github.com/jhoicas/donaciones-api/internal/domain/solicitud"
	"github.com/jhoicas/donaciones-api/pkg/logger"
)

// AllocationUseCase conjunto de líneas de detalle (asignaciones) de una solicitud.
//
// El conjunto se reemplaza siempre completo: las líneas previas se liberan y las nuevas se
// reservan en una sola transacción, sobre filas de stock bloqueadas en orden de clave.
type AllocationUseCase struct {
	tx  ports.TxRunner
	log *logger.Logger
	now func() time.Time
}

// NewAllocationUseCase construye el caso de uso.
func NewAllocationUseCase(tx ports.TxRunner, log *logger.Logger) *AllocationUseCase {
	return &AllocationUseCase{tx: tx, log: log.Component("asignaciones"), now: time.Now}
}

// WithClock reemplaza el reloj (tests y vencimientos).
func (uc *AllocationUseCase) WithClock(now func() time.Time) *AllocationUseCase {
	uc.now = now
	return uc
}

// ReplaceAllocations reemplaza el detalle de la solicitud.
//
// Retorna:
//   - domain.ErrNotFound          si la solicitud, un lote o un almacén no existen.
//   - domain.ErrInvalidState      si la solicitud no está en EN_REVISION o APROBADA.
//   - domain.ErrValidation        si una línea es inválida, el lote es de otro medicamento o está vencido.
//   - domain.ErrInsufficientStock si algún saldo quedaría negativo; nada se modifica.
func (uc *AllocationUseCase) ReplaceAllocations(
	ctx context.Context,
	usuarioID string,
	solicitudID int64,
	in dto.ReplaceDetalleRequest,
) (*dto.DetalleListResponse, error) {
	lines := toLines(solicitudID, in.Lineas)
	if err := domaininv.ValidateLines(lines); err != nil {
		return nil, err
	}

	now := uc.now()
	var out *dto.DetalleListResponse
	var deltas []domaininv.Delta
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		sol, err := lockAllocatable(ctx, r, solicitudID)
		if err != nil {
			return err
		}
		if err := checkNewLines(ctx, r, lines, now); err != nil {
			return err
		}
		deltas, err = replaceInTx(ctx, r, solicitudID, lines, usuarioID, now)
		if err != nil {
			return err
		}
		out, err = buildDetalle(ctx, r, sol, lines)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Int64("solicitud", solicitudID).
		Int("lineas", len(lines)).
		Int("claves_afectadas", len(deltas)).
		Str("usuario", usuarioID).
		Msg("asignaciones reemplazadas")
	return out, nil
}

// ClearAllocations libera todo el stock reservado y elimina el detalle. Misma verificación de estado.
func (uc *AllocationUseCase) ClearAllocations(ctx context.Context, usuarioID string, solicitudID int64) error {
	now := uc.now()
	var deltas []domaininv.Delta
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		if _, err := lockAllocatable(ctx, r, solicitudID); err != nil {
			return err
		}
		var err error
		deltas, err = replaceInTx(ctx, r, solicitudID, nil, usuarioID, now)
		return err
	})
	if err != nil {
		return err
	}
	uc.log.Info().
		Int64("solicitud", solicitudID).
		Int("claves_liberadas", len(deltas)).
		Str("usuario", usuarioID).
		Msg("asignaciones eliminadas")
	return nil
}

// ReleaseAllInTx libera el detalle completo dentro de una transacción abierta por el llamador,
// sin verificar el estado (lo usa el flujo de revisión al entrar a un estado terminal).
// La solicitud debe estar ya bloqueada por el llamador.
func (uc *AllocationUseCase) ReleaseAllInTx(ctx context.Context, r ports.Repos, solicitudID int64, usuarioID string) error {
	_, err := replaceInTx(ctx, r, solicitudID, nil, usuarioID, uc.now())
	return err
}

// GetAllocations proyección de solo lectura del detalle enriquecido.
func (uc *AllocationUseCase) GetAllocations(ctx context.Context, solicitudID int64) (*dto.DetalleListResponse, error) {
	var out *dto.DetalleListResponse
	err := uc.tx.View(ctx, func(r ports.Repos) error {
		sol, err := r.Solicitudes.GetByID(ctx, solicitudID)
		if err != nil {
			return err
		}
		if sol == nil {
			return fmt.Errorf("%w: solicitud %d", domain.ErrNotFound, solicitudID)
		}
		lines, err := r.Detalles.ListBySolicitud(ctx, solicitudID)
		if err != nil {
			return err
		}
		out, err = buildDetalle(ctx, r, sol, lines)
		return err
	})
	return out, err
}

// lockAllocatable bloquea la solicitud y exige un estado que admita asignaciones.
func lockAllocatable(ctx context.Context, r ports.Repos, solicitudID int64) (*entity.Solicitud, error) {
	sol, err := r.Solicitudes.GetForUpdate(ctx, solicitudID)
	if err != nil {
		return nil, err
	}
	if sol == nil {
		return nil, fmt.Errorf("%w: solicitud %d", domain.ErrNotFound, solicitudID)
	}
	if !solicitud.Allocatable(sol.Estado) {
		return nil, fmt.Errorf("%w: la solicitud %d está en %s; solo se asigna en %s o %s",
			domain.ErrInvalidState, solicitudID, sol.Estado, entity.EstadoEnRevision, entity.EstadoAprobada)
	}
	return sol, nil
}

// checkNewLines resuelve lote y almacén de cada línea nueva.
func checkNewLines(ctx context.Context, r ports.Repos, lines []entity.DetalleLine, now time.Time) error {
	for i, l := range lines {
		if err := checkStockRefs(ctx, r, l.Key()); err != nil {
			return fmt.Errorf("línea %d: %w", i+1, err)
		}
		lote, err := r.Lotes.GetByCode(ctx, l.LoteCodigo)
		if err != nil {
			return err
		}
		if lote.VencidoEn(now) {
			return fmt.Errorf("%w: línea %d: el lote %s venció el %s",
				domain.ErrValidation, i+1, lote.Codigo, lote.FechaVencimiento.Format("2006-01-02"))
		}
	}
	return nil
}

// replaceInTx libera el conjunto previo y reserva el nuevo. Primero bloquea y verifica cada clave
// afectada y solo después aplica: si alguna clave no alcanza, no se modifica nada.
func replaceInTx(
	ctx context.Context,
	r ports.Repos,
	solicitudID int64,
	lines []entity.DetalleLine,
	usuarioID string,
	now time.Time,
) ([]domaininv.Delta, error) {
	previo, err := r.Detalles.ListBySolicitud(ctx, solicitudID)
	if err != nil {
		return nil, err
	}
	deltas := domaininv.NetDeltas(previo, lines)

	// Fase 1: bloquear en orden de clave y verificar factibilidad.
	entries := make([]*entity.StockEntry, len(deltas))
	for i, d := range deltas {
		e, err := r.Stock.GetForUpdate(ctx, d.Key)
		if err != nil {
			return nil, err
		}
		if _, err := domaininv.ApplyDelta(d.Key, e.Cantidad, d.Cantidad); err != nil {
			return nil, err
		}
		entries[i] = e
	}

	// Fase 2: aplicar.
	txID := uuid.New().String()
	sid := solicitudID
	for i, d := range deltas {
		if _, err := applyDelta(ctx, r, entries[i], d.Cantidad, movement{
			tipo:        domaininv.MovementType(d.Cantidad),
			usuarioID:   usuarioID,
			solicitudID: &sid,
			txID:        txID,
			at:          now,
		}); err != nil {
			return nil, err
		}
	}
	if err := r.Detalles.Replace(ctx, solicitudID, lines); err != nil {
		return nil, err
	}
	return deltas, nil
}

func buildDetalle(ctx context.Context, r ports.Repos, sol *entity.Solicitud, lines []entity.DetalleLine) (*dto.DetalleListResponse, error) {
	out := &dto.DetalleListResponse{
		SolicitudID: sol.ID,
		Estado:      string(sol.Estado),
		Lineas:      make([]dto.DetalleLineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		item := dto.DetalleLineResponse{
			AlmacenID:         l.AlmacenID,
			AlmacenNombre:     l.AlmacenID,
			LoteCodigo:        l.LoteCodigo,
			MedicamentoCodigo: l.MedicamentoCodigo,
			MedicamentoNombre: l.MedicamentoCodigo,
			Cantidad:          l.Cantidad,
			DosisIndicada:     l.DosisIndicada,
			TiempoTratamiento: l.TiempoTratamiento,
		}
		lote, err := r.Lotes.GetByCode(ctx, l.LoteCodigo)
		if err != nil {
			return nil, err
		}
		if lote != nil {
			item.FechaFabricacion = lote.FechaFabricacion.Format("2006-01-02")
			item.FechaVencimiento = lote.FechaVencimiento.Format("2006-01-02")
		}
		alm, err := r.Almacenes.GetByID(ctx, l.AlmacenID)
		if err != nil {
			return nil, err
		}
		if alm != nil {
			item.AlmacenNombre = alm.Nombre
		}
		med, err := r.Medicamentos.GetByCode(ctx, l.MedicamentoCodigo)
		if err != nil {
			return nil, err
		}
		if med != nil {
			item.MedicamentoNombre = med.Nombre
		}
		out.Lineas = append(out.Lineas, item)
		out.TotalUnidades += l.Cantidad
	}
	return out, nil
}

func toLines(solicitudID int64, in []dto.DetalleLineRequest) []entity.DetalleLine {
	lines := make([]entity.DetalleLine, 0, len(in))
	for _, l := range in {
		lines = append(lines, entity.DetalleLine{
			SolicitudID:       solicitudID,
			AlmacenID:         strings.TrimSpace(l.AlmacenID),
			LoteCodigo:        strings.TrimSpace(l.LoteCodigo),
			MedicamentoCodigo: strings.TrimSpace(l.MedicamentoCodigo),
			Cantidad:          l.Cantidad,
			DosisIndicada:     strings.TrimSpace(l.DosisIndicada),
			TiempoTratamiento: strings.TrimSpace(l.TiempoTratamiento),
		})
	}
	return lines
}
