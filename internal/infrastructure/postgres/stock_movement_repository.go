package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/donaciones-api/internal/domain/entity"
	"github.com/jhoicas/donaciones-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo auditoría de cambios de stock.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador.
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create registra un movimiento; asigna ID si viene vacío.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movimientos
			(id, transaction_id, almacen_id, lote_codigo, medicamento_codigo, tipo, delta, saldo,
			 solicitud_id, motivo, usuario_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TransactionID, m.AlmacenID, m.LoteCodigo, m.MedicamentoCodigo, m.Tipo, m.Delta, m.Saldo,
		m.SolicitudID, m.Motivo, m.UsuarioID, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movimiento: %w", err)
	}
	return nil
}

// List movimientos más recientes primero; los filtros vacíos no aplican.
func (r *StockMovementRepo) List(ctx context.Context, f repository.StockMovementFilter) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, transaction_id, almacen_id, lote_codigo, medicamento_codigo, tipo, delta, saldo,
		       solicitud_id, motivo, usuario_id, created_at
		FROM stock_movimientos
		WHERE ($1 = '' OR almacen_id = $1)
		  AND ($2 = '' OR lote_codigo = $2)
		  AND ($3 = '' OR medicamento_codigo = $3)
		  AND ($4::bigint IS NULL OR solicitud_id = $4)
		ORDER BY created_at DESC, id
		LIMIT $5 OFFSET $6`
	rows, err := r.q.Query(ctx, query,
		f.AlmacenID, f.LoteCodigo, f.MedicamentoCodigo, f.SolicitudID, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list movimientos: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.StockMovement, 0)
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(
			&m.ID, &m.TransactionID, &m.AlmacenID, &m.LoteCodigo, &m.MedicamentoCodigo, &m.Tipo, &m.Delta, &m.Saldo,
			&m.SolicitudID, &m.Motivo, &m.UsuarioID, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movimiento: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
