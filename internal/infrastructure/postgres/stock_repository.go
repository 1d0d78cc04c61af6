package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/donaciones-api/internal/domain"
	"github.com/jhoicas/donaciones-api/internal/domain/entity"
	"github.com/jhoicas/donaciones-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `almacen_id, lote_codigo, medicamento_codigo, cantidad, updated_at`

// Get obtiene el stock actual de la clave; entrada en cero si no existe.
func (r *StockRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockEntry, error) {
	query := `SELECT ` + stockColumns + `
		FROM stock WHERE almacen_id = $1 AND lote_codigo = $2 AND medicamento_codigo = $3`
	e, err := scanStock(r.q.QueryRow(ctx, query, key.AlmacenID, key.LoteCodigo, key.MedicamentoCodigo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockEntry{StockKey: key}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return e, nil
}

// GetForUpdate obtiene el stock y bloquea la fila (SELECT FOR UPDATE).
// Una fila inexistente no se puede bloquear: primero se inserta en cero (sin pisar una existente)
// para que dos transacciones sobre una clave nueva también queden serializadas.
func (r *StockRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockEntry, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock (almacen_id, lote_codigo, medicamento_codigo, cantidad, updated_at)
		VALUES ($1, $2, $3, 0, now())
		ON CONFLICT (almacen_id, lote_codigo, medicamento_codigo) DO NOTHING`,
		key.AlmacenID, key.LoteCodigo, key.MedicamentoCodigo,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure stock row: %w", err)
	}
	query := `SELECT ` + stockColumns + `
		FROM stock WHERE almacen_id = $1 AND lote_codigo = $2 AND medicamento_codigo = $3
		FOR UPDATE`
	e, err := scanStock(r.q.QueryRow(ctx, query, key.AlmacenID, key.LoteCodigo, key.MedicamentoCodigo))
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return e, nil
}

// Upsert inserta o actualiza la cantidad. El CHECK (cantidad >= 0) de la tabla respalda la validación del dominio.
func (r *StockRepo) Upsert(ctx context.Context, e *entity.StockEntry) error {
	query := `
		INSERT INTO stock (almacen_id, lote_codigo, medicamento_codigo, cantidad, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (almacen_id, lote_codigo, medicamento_codigo)
		DO UPDATE SET cantidad = EXCLUDED.cantidad, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, e.AlmacenID, e.LoteCodigo, e.MedicamentoCodigo, e.Cantidad, e.UpdatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: %s quedaría negativo", domain.ErrInsufficientStock, e.StockKey)
		}
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// ListAll todas las entradas con cantidad positiva.
func (r *StockRepo) ListAll(ctx context.Context) ([]*entity.StockEntry, error) {
	rows, err := r.q.Query(ctx, `SELECT `+stockColumns+`
		FROM stock WHERE cantidad > 0
		ORDER BY almacen_id, lote_codigo, medicamento_codigo`)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.StockEntry, 0)
	for rows.Next() {
		e, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanStock(row pgx.Row) (*entity.StockEntry, error) {
	var e entity.StockEntry
	if err := row.Scan(&e.AlmacenID, &e.LoteCodigo, &e.MedicamentoCodigo, &e.Cantidad, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
