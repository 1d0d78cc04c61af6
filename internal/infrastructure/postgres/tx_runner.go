package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/donaciones-api/internal/application/ports"
	"github.com/jhoicas/donaciones-api/internal/domain"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// maxAttempts reintentos ante deadlock o fallo de serialización.
const maxAttempts = 3

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los bloqueos (SELECT FOR UPDATE) los toman los propios repos. Si el servidor aborta por deadlock
// se reintenta; agotados los intentos se devuelve domain.ErrConflict.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ports.Repos) error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = r.run(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
		if err == nil || !isLockFailure(err) {
			return err
		}
	}
	return fmt.Errorf("%w: operación concurrente, reintente: %v", domain.ErrConflict, err)
}

// View transacción de solo lectura REPEATABLE READ: lectura consistente sin bloquear escritores.
func (r *TxRunner) View(ctx context.Context, fn func(repos ports.Repos) error) error {
	return r.run(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, fn)
}

func (r *TxRunner) run(ctx context.Context, opts pgx.TxOptions, fn func(repos ports.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(Repos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Repos construye todos los repositorios sobre el mismo Querier (pool o tx).
func Repos(q Querier) ports.Repos {
	return ports.Repos{
		Lotes:        NewLoteRepository(q),
		Medicamentos: NewMedicamentoRepository(q),
		Almacenes:    NewAlmacenRepository(q),
		Stock:        NewStockRepository(q),
		Movimientos:  NewStockMovementRepository(q),
		Solicitudes:  NewSolicitudRepository(q),
		Detalles:     NewDetalleRepository(q),
	}
}
