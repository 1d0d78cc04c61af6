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

var _ repository.LoteRepository = (*LoteRepo)(nil)

// LoteRepo implementación de LoteRepository sobre PostgreSQL.
type LoteRepo struct {
	q Querier
}

// NewLoteRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLoteRepository(q Querier) *LoteRepo {
	return &LoteRepo{q: q}
}

// Create persiste un lote nuevo. La PK sobre codigo resuelve registros concurrentes del mismo código.
func (r *LoteRepo) Create(ctx context.Context, l *entity.Lote) error {
	query := `
		INSERT INTO lotes (codigo, medicamento_codigo, fecha_fabricacion, fecha_vencimiento, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, l.Codigo, l.MedicamentoCodigo, l.FechaFabricacion, l.FechaVencimiento, l.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: el lote %s ya existe", domain.ErrConflict, l.Codigo)
		}
		return fmt.Errorf("insert lote: %w", err)
	}
	return nil
}

// GetByCode obtiene un lote por código.
func (r *LoteRepo) GetByCode(ctx context.Context, codigo string) (*entity.Lote, error) {
	query := `
		SELECT codigo, medicamento_codigo, fecha_fabricacion, fecha_vencimiento, created_at
		FROM lotes WHERE codigo = $1`
	var l entity.Lote
	err := r.q.QueryRow(ctx, query, codigo).Scan(
		&l.Codigo, &l.MedicamentoCodigo, &l.FechaFabricacion, &l.FechaVencimiento, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lote: %w", err)
	}
	return &l, nil
}

// List lista lotes ordenados por código, con el total para paginar.
func (r *LoteRepo) List(ctx context.Context, f repository.LoteFilter) ([]*entity.Lote, int, error) {
	var total int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM lotes WHERE ($1 = '' OR medicamento_codigo = $1)`,
		f.MedicamentoCodigo,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count lotes: %w", err)
	}

	query := `
		SELECT codigo, medicamento_codigo, fecha_fabricacion, fecha_vencimiento, created_at
		FROM lotes WHERE ($1 = '' OR medicamento_codigo = $1)
		ORDER BY codigo LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, f.MedicamentoCodigo, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list lotes: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Lote, 0)
	for rows.Next() {
		var l entity.Lote
		if err := rows.Scan(&l.Codigo, &l.MedicamentoCodigo, &l.FechaFabricacion, &l.FechaVencimiento, &l.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan lote: %w", err)
		}
		list = append(list, &l)
	}
	return list, total, rows.Err()
}
