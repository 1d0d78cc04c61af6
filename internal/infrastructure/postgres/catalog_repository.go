package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/donaciones-api/internal/domain/entity"
	"github.com/jhoicas/donaciones-api/internal/domain/repository"
)

var (
	_ repository.MedicamentoRepository = (*MedicamentoRepo)(nil)
	_ repository.AlmacenRepository     = (*AlmacenRepo)(nil)
)

// MedicamentoRepo lectura del catálogo de medicamentos (lo mantiene cmd/seed_catalogo).
type MedicamentoRepo struct {
	q Querier
}

// NewMedicamentoRepository construye el adaptador.
func NewMedicamentoRepository(q Querier) *MedicamentoRepo {
	return &MedicamentoRepo{q: q}
}

// GetByCode obtiene un medicamento; (nil, nil) si no existe.
func (r *MedicamentoRepo) GetByCode(ctx context.Context, codigo string) (*entity.Medicamento, error) {
	var m entity.Medicamento
	err := r.q.QueryRow(ctx,
		`SELECT codigo, nombre, presentacion FROM medicamentos WHERE codigo = $1`, codigo,
	).Scan(&m.Codigo, &m.Nombre, &m.Presentacion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get medicamento: %w", err)
	}
	return &m, nil
}

// AlmacenRepo lectura de almacenes.
type AlmacenRepo struct {
	q Querier
}

// NewAlmacenRepository construye el adaptador.
func NewAlmacenRepository(q Querier) *AlmacenRepo {
	return &AlmacenRepo{q: q}
}

// GetByID obtiene un almacén; (nil, nil) si no existe.
func (r *AlmacenRepo) GetByID(ctx context.Context, id string) (*entity.Almacen, error) {
	var a entity.Almacen
	err := r.q.QueryRow(ctx,
		`SELECT id, nombre, direccion, created_at FROM almacenes WHERE id = $1`, id,
	).Scan(&a.ID, &a.Nombre, &a.Direccion, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get almacen: %w", err)
	}
	return &a, nil
}
