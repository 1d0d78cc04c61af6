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
	"github.com/jhoicas/donaciones-api/internal/domain/repository"
	"github.com/jhoicas/donaciones-api/pkg/logger"
)

// StockLedgerUseCase libro de stock por (almacén, lote, medicamento).
// Cada ajuste bloquea la fila (SELECT FOR UPDATE en PostgreSQL) y se aplica con Commit/Rollback.
type StockLedgerUseCase struct {
	tx  ports.TxRunner
	log *logger.Logger
	now func() time.Time
}

// NewStockLedgerUseCase construye el caso de uso.
func NewStockLedgerUseCase(tx ports.TxRunner, log *logger.Logger) *StockLedgerUseCase {
	return &StockLedgerUseCase{tx: tx, log: log.Component("stock"), now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *StockLedgerUseCase) WithClock(now func() time.Time) *StockLedgerUseCase {
	uc.now = now
	return uc
}

// Adjust aplica un delta con signo. Si el resultado fuera negativo devuelve ErrInsufficientStock
// y la entrada queda intacta.
func (uc *StockLedgerUseCase) Adjust(ctx context.Context, usuarioID string, in dto.AdjustStockRequest) (*dto.StockEntryResponse, error) {
	key := toKey(in.StockKeyRequest)
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if in.Delta == 0 {
		return nil, fmt.Errorf("%w: el delta no puede ser cero", domain.ErrValidation)
	}
	return uc.mutate(ctx, usuarioID, key, in.Motivo, func(int64) int64 { return in.Delta })
}

// SetQuantity fija una cantidad absoluta (conteo físico) como un ajuste por la diferencia.
func (uc *StockLedgerUseCase) SetQuantity(ctx context.Context, usuarioID string, in dto.SetStockRequest) (*dto.StockEntryResponse, error) {
	key := toKey(in.StockKeyRequest)
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if in.Cantidad < 0 {
		return nil, fmt.Errorf("%w: la cantidad no puede ser negativa", domain.ErrValidation)
	}
	return uc.mutate(ctx, usuarioID, key, in.Motivo, func(actual int64) int64 { return in.Cantidad - actual })
}

func (uc *StockLedgerUseCase) mutate(
	ctx context.Context,
	usuarioID string,
	key entity.StockKey,
	motivo string,
	deltaFor func(actual int64) int64,
) (*dto.StockEntryResponse, error) {
	now := uc.now()
	txID := uuid.New().String()
	var out *entity.StockEntry
	var delta int64

	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		if err := checkStockRefs(ctx, r, key); err != nil {
			return err
		}
		entry, err := r.Stock.GetForUpdate(ctx, key)
		if err != nil {
			return err
		}
		delta = deltaFor(entry.Cantidad)
		if delta == 0 {
			out = entry
			return nil
		}
		out, err = applyDelta(ctx, r, entry, delta, movement{
			tipo: entity.MovimientoAjuste, motivo: motivo, usuarioID: usuarioID, txID: txID, at: now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if delta != 0 {
		uc.log.Info().
			Str("clave", key.String()).
			Int64("delta", delta).
			Int64("saldo", out.Cantidad).
			Str("usuario", usuarioID).
			Msg("stock ajustado")
	}
	return toStockResponse(out), nil
}

// Available cantidad actual de la clave; 0 si la entrada no existe.
func (uc *StockLedgerUseCase) Available(ctx context.Context, in dto.StockKeyRequest) (*dto.StockEntryResponse, error) {
	key := toKey(in)
	if err := validateKey(key); err != nil {
		return nil, err
	}
	var out *entity.StockEntry
	err := uc.tx.View(ctx, func(r ports.Repos) error {
		var err error
		out, err = r.Stock.Get(ctx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toStockResponse(out), nil
}

// ConsolidatedView total por medicamento con desglose por almacén y lote. Solo lectura.
func (uc *StockLedgerUseCase) ConsolidatedView(ctx context.Context) ([]dto.ConsolidatedStockDTO, error) {
	var rows []domaininv.ConsolidatedRow
	err := uc.tx.View(ctx, func(r ports.Repos) error {
		entries, err := r.Stock.ListAll(ctx)
		if err != nil {
			return err
		}
		meds := map[string]string{}
		alms := map[string]string{}
		enriched := make([]domaininv.ConsolidatedEntry, 0, len(entries))
		for _, e := range entries {
			medNombre, ok := meds[e.MedicamentoCodigo]
			if !ok {
				m, err := r.Medicamentos.GetByCode(ctx, e.MedicamentoCodigo)
				if err != nil {
					return err
				}
				medNombre = e.MedicamentoCodigo
				if m != nil {
					medNombre = m.Nombre
				}
				meds[e.MedicamentoCodigo] = medNombre
			}
			almNombre, ok := alms[e.AlmacenID]
			if !ok {
				a, err := r.Almacenes.GetByID(ctx, e.AlmacenID)
				if err != nil {
					return err
				}
				almNombre = e.AlmacenID
				if a != nil {
					almNombre = a.Nombre
				}
				alms[e.AlmacenID] = almNombre
			}
			enriched = append(enriched, domaininv.ConsolidatedEntry{
				StockEntry:        *e,
				MedicamentoNombre: medNombre,
				AlmacenNombre:     almNombre,
			})
		}
		rows = domaininv.BuildConsolidated(enriched)
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]dto.ConsolidatedStockDTO, 0, len(rows))
	for _, row := range rows {
		items := make([]dto.ConsolidatedItemDTO, 0, len(row.Desglose))
		for _, it := range row.Desglose {
			items = append(items, dto.ConsolidatedItemDTO{
				AlmacenID:     it.AlmacenID,
				AlmacenNombre: it.AlmacenNombre,
				LoteCodigo:    it.LoteCodigo,
				Cantidad:      it.Cantidad,
			})
		}
		out = append(out, dto.ConsolidatedStockDTO{
			MedicamentoCodigo: row.MedicamentoCodigo,
			MedicamentoNombre: row.MedicamentoNombre,
			Total:             row.Total,
			Desglose:          items,
		})
	}
	return out, nil
}

// ListMovements historial de auditoría, más recientes primero.
func (uc *StockLedgerUseCase) ListMovements(ctx context.Context, f repository.StockMovementFilter) ([]dto.StockMovementResponse, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	var list []*entity.StockMovement
	err := uc.tx.View(ctx, func(r ports.Repos) error {
		var err error
		list, err = r.Movimientos.List(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.StockMovementResponse{
			ID:                m.ID,
			TransactionID:     m.TransactionID,
			AlmacenID:         m.AlmacenID,
			LoteCodigo:        m.LoteCodigo,
			MedicamentoCodigo: m.MedicamentoCodigo,
			Tipo:              m.Tipo,
			Delta:             m.Delta,
			Saldo:             m.Saldo,
			SolicitudID:       m.SolicitudID,
			Motivo:            m.Motivo,
			UsuarioID:         m.UsuarioID,
			CreatedAt:         m.CreatedAt,
		})
	}
	return out, nil
}

// movement datos de auditoría de un cambio de stock.
type movement struct {
	tipo        string
	motivo      string
	usuarioID   string
	solicitudID *int64
	txID        string
	at          time.Time
}

// applyDelta aplica delta sobre una entrada ya bloqueada y registra el movimiento.
// Debe llamarse dentro de TxRunner.Run.
func applyDelta(ctx context.Context, r ports.Repos, entry *entity.StockEntry, delta int64, mv movement) (*entity.StockEntry, error) {
	saldo, err := domaininv.ApplyDelta(entry.StockKey, entry.Cantidad, delta)
	if err != nil {
		return nil, err
	}
	updated := &entity.StockEntry{StockKey: entry.StockKey, Cantidad: saldo, UpdatedAt: mv.at}
	if err := r.Stock.Upsert(ctx, updated); err != nil {
		return nil, err
	}
	err = r.Movimientos.Create(ctx, &entity.StockMovement{
		TransactionID: mv.txID,
		StockKey:      entry.StockKey,
		Tipo:          mv.tipo,
		Delta:         delta,
		Saldo:         saldo,
		SolicitudID:   mv.solicitudID,
		Motivo:        mv.motivo,
		UsuarioID:     mv.usuarioID,
		CreatedAt:     mv.at,
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// checkStockRefs verifica que lote y almacén existan y que el lote sea del medicamento indicado.
func checkStockRefs(ctx context.Context, r ports.Repos, key entity.StockKey) error {
	lote, err := r.Lotes.GetByCode(ctx, key.LoteCodigo)
	if err != nil {
		return err
	}
	if lote == nil {
		return fmt.Errorf("%w: lote %s", domain.ErrNotFound, key.LoteCodigo)
	}
	if lote.MedicamentoCodigo != key.MedicamentoCodigo {
		return fmt.Errorf("%w: el lote %s corresponde al medicamento %s, no a %s",
			domain.ErrValidation, lote.Codigo, lote.MedicamentoCodigo, key.MedicamentoCodigo)
	}
	alm, err := r.Almacenes.GetByID(ctx, key.AlmacenID)
	if err != nil {
		return err
	}
	if alm == nil {
		return fmt.Errorf("%w: almacén %s", domain.ErrNotFound, key.AlmacenID)
	}
	return nil
}

func toKey(in dto.StockKeyRequest) entity.StockKey {
	return entity.StockKey{
		AlmacenID:         strings.TrimSpace(in.AlmacenID),
		LoteCodigo:        strings.TrimSpace(in.LoteCodigo),
		MedicamentoCodigo: strings.TrimSpace(in.MedicamentoCodigo),
	}
}

func validateKey(k entity.StockKey) error {
	if k.AlmacenID == "" || k.LoteCodigo == "" || k.MedicamentoCodigo == "" {
		return fmt.Errorf("%w: almacen_id, lote y medicamento son obligatorios", domain.ErrValidation)
	}
	return nil
}

func toStockResponse(e *entity.StockEntry) *dto.StockEntryResponse {
	out := &dto.StockEntryResponse{
		AlmacenID:         e.AlmacenID,
		LoteCodigo:        e.LoteCodigo,
		MedicamentoCodigo: e.MedicamentoCodigo,
		Cantidad:          e.Cantidad,
	}
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}
