package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/donaciones-api/internal/domain/entity"
	"github.com/jhoicas/donaciones-api/internal/domain/repository"
)

var _ repository.DetalleRepository = (*DetalleRepo)(nil)

// DetalleRepo líneas de asignación. Replace borra e inserta; se usa siempre dentro de TxRunner.Run.
type DetalleRepo struct {
	q Querier
}

// NewDetalleRepository construye el adaptador.
func NewDetalleRepository(q Querier) *DetalleRepo {
	return &DetalleRepo{q: q}
}

// ListBySolicitud líneas en orden de inserción.
func (r *DetalleRepo) ListBySolicitud(ctx context.Context, solicitudID int64) ([]entity.DetalleLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT solicitud_id, almacen_id, lote_codigo, medicamento_codigo, cantidad, dosis_indicada, tiempo_tratamiento
		FROM solicitud_detalles WHERE solicitud_id = $1 ORDER BY orden`, solicitudID)
	if err != nil {
		return nil, fmt.Errorf("list detalle: %w", err)
	}
	defer rows.Close()

	out := make([]entity.DetalleLine, 0)
	for rows.Next() {
		var l entity.DetalleLine
		if err := rows.Scan(
			&l.SolicitudID, &l.AlmacenID, &l.LoteCodigo, &l.MedicamentoCodigo, &l.Cantidad,
			&l.DosisIndicada, &l.TiempoTratamiento,
		); err != nil {
			return nil, fmt.Errorf("scan detalle: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Replace descarta el conjunto previo y persiste el nuevo tal cual.
func (r *DetalleRepo) Replace(ctx context.Context, solicitudID int64, lines []entity.DetalleLine) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM solicitud_detalles WHERE solicitud_id = $1`, solicitudID); err != nil {
		return fmt.Errorf("delete detalle: %w", err)
	}
	if len(lines) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(lines))
	for i, l := range lines {
		rows = append(rows, []any{
			solicitudID, i + 1, l.AlmacenID, l.LoteCodigo, l.MedicamentoCodigo, l.Cantidad,
			l.DosisIndicada, l.TiempoTratamiento,
		})
	}
	_, err := r.copyFrom(ctx, rows)
	if err != nil {
		return fmt.Errorf("insert detalle: %w", err)
	}
	return nil
}

// copyFrom usa COPY cuando el Querier es una tx o conexión pgx; si no, INSERT fila a fila.
func (r *DetalleRepo) copyFrom(ctx context.Context, rows [][]any) (int64, error) {
	cols := []string{
		"solicitud_id", "orden", "almacen_id", "lote_codigo", "medicamento_codigo", "cantidad",
		"dosis_indicada", "tiempo_tratamiento",
	}
	if c, ok := r.q.(interface {
		CopyFrom(ctx context.Context, table pgx.Identifier, cols []string, src pgx.CopyFromSource) (int64, error)
	}); ok {
		return c.CopyFrom(ctx, pgx.Identifier{"solicitud_detalles"}, cols, pgx.CopyFromRows(rows))
	}
	for _, row := range rows {
		if _, err := r.q.Exec(ctx, `
			INSERT INTO solicitud_detalles
				(solicitud_id, orden, almacen_id, lote_codigo, medicamento_codigo, cantidad, dosis_indicada, tiempo_tratamiento)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, row...); err != nil {
			return 0, err
		}
	}
	return int64(len(rows)), nil
}

// Count número de líneas de la solicitud.
func (r *DetalleRepo) Count(ctx context.Context, solicitudID int64) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM solicitud_detalles WHERE solicitud_id = $1`, solicitudID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count detalle: %w", err)
	}
	return n, nil
}
