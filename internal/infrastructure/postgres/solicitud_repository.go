package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/donaciones-api/internal/domain"
	"github.com/jhoicas/donaciones-api/internal/domain/entity"
	"github.com/jhoicas/donaciones-api/internal/domain/repository"
)

var _ repository.SolicitudRepository = (*SolicitudRepo)(nil)

// SolicitudRepo solicitudes, historial y despachos sobre PostgreSQL.
// Los documentos se guardan como JSONB con la forma de entity.Documento.
type SolicitudRepo struct {
	q Querier
}

// NewSolicitudRepository construye el adaptador.
func NewSolicitudRepository(q Querier) *SolicitudRepo {
	return &SolicitudRepo{q: q}
}

const solicitudColumns = `id, solicitante_id, tipo_solicitud, centro_medico, patologia, documentos,
	estado, observaciones, created_by, created_at, updated_at`

// Create inserta la solicitud y asigna el ID de la secuencia.
func (r *SolicitudRepo) Create(ctx context.Context, s *entity.Solicitud) error {
	docs, err := json.Marshal(s.Documentos)
	if err != nil {
		return fmt.Errorf("marshal documentos: %w", err)
	}
	query := `
		INSERT INTO solicitudes
			(solicitante_id, tipo_solicitud, centro_medico, patologia, documentos,
			 estado, observaciones, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err = r.q.QueryRow(ctx, query,
		s.SolicitanteID, s.TipoSolicitud, s.CentroMedico, s.Patologia, docs,
		s.Estado, s.Observaciones, s.CreatedBy, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("insert solicitud: %w", err)
	}
	return nil
}

// GetByID obtiene una solicitud; (nil, nil) si no existe.
func (r *SolicitudRepo) GetByID(ctx context.Context, id int64) (*entity.Solicitud, error) {
	return r.get(ctx, `SELECT `+solicitudColumns+` FROM solicitudes WHERE id = $1`, id)
}

// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
func (r *SolicitudRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Solicitud, error) {
	return r.get(ctx, `SELECT `+solicitudColumns+` FROM solicitudes WHERE id = $1 FOR UPDATE`, id)
}

func (r *SolicitudRepo) get(ctx context.Context, query string, id int64) (*entity.Solicitud, error) {
	s, err := scanSolicitud(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get solicitud: %w", err)
	}
	return s, nil
}

// UpdateEstado persiste estado, observaciones y fecha de actualización.
func (r *SolicitudRepo) UpdateEstado(ctx context.Context, s *entity.Solicitud) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE solicitudes SET estado = $2, observaciones = $3, updated_at = $4 WHERE id = $1`,
		s.ID, s.Estado, s.Observaciones, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update solicitud: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: solicitud %d", domain.ErrNotFound, s.ID)
	}
	return nil
}

// List solicitudes por ID descendente con el total para paginar.
func (r *SolicitudRepo) List(ctx context.Context, f repository.SolicitudFilter) ([]*entity.Solicitud, int, error) {
	var total int
	estado := string(f.Estado)
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM solicitudes WHERE ($1 = '' OR estado = $1)`, estado,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count solicitudes: %w", err)
	}

	rows, err := r.q.Query(ctx, `SELECT `+solicitudColumns+`
		FROM solicitudes WHERE ($1 = '' OR estado = $1)
		ORDER BY id DESC LIMIT $2 OFFSET $3`, estado, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list solicitudes: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Solicitud, 0)
	for rows.Next() {
		s, err := scanSolicitud(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan solicitud: %w", err)
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}

// AddHistorial registra un cambio de estado.
func (r *SolicitudRepo) AddHistorial(ctx context.Context, h *entity.SolicitudHistorial) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO solicitud_historial (solicitud_id, estado_anterior, estado_nuevo, observaciones, usuario_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		h.SolicitudID, h.EstadoAnterior, h.EstadoNuevo, h.Observaciones, h.UsuarioID, h.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert historial: %w", err)
	}
	return nil
}

// ListHistorial cambios en orden cronológico.
func (r *SolicitudRepo) ListHistorial(ctx context.Context, solicitudID int64) ([]*entity.SolicitudHistorial, error) {
	rows, err := r.q.Query(ctx, `
		SELECT solicitud_id, estado_anterior, estado_nuevo, observaciones, usuario_id, created_at
		FROM solicitud_historial WHERE solicitud_id = $1 ORDER BY id`, solicitudID)
	if err != nil {
		return nil, fmt.Errorf("list historial: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.SolicitudHistorial, 0)
	for rows.Next() {
		var h entity.SolicitudHistorial
		if err := rows.Scan(&h.SolicitudID, &h.EstadoAnterior, &h.EstadoNuevo, &h.Observaciones, &h.UsuarioID, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan historial: %w", err)
		}
		out = append(out, &h)
	}
	return out, rows.Err()
}

// CreateDespacho registra el despacho; la PK sobre solicitud_id impide un segundo despacho.
func (r *SolicitudRepo) CreateDespacho(ctx context.Context, d *entity.Despacho) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO despachos (solicitud_id, usuario_id, fecha_despacho) VALUES ($1, $2, $3)`,
		d.SolicitudID, d.UsuarioID, d.FechaDespacho,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: la solicitud %d ya tiene despacho", domain.ErrConflict, d.SolicitudID)
		}
		return fmt.Errorf("insert despacho: %w", err)
	}
	return nil
}

// GetDespacho (nil, nil) si la solicitud no fue despachada.
func (r *SolicitudRepo) GetDespacho(ctx context.Context, solicitudID int64) (*entity.Despacho, error) {
	var d entity.Despacho
	err := r.q.QueryRow(ctx,
		`SELECT solicitud_id, usuario_id, fecha_despacho FROM despachos WHERE solicitud_id = $1`, solicitudID,
	).Scan(&d.SolicitudID, &d.UsuarioID, &d.FechaDespacho)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get despacho: %w", err)
	}
	return &d, nil
}

func scanSolicitud(row pgx.Row) (*entity.Solicitud, error) {
	var s entity.Solicitud
	var docs []byte
	if err := row.Scan(
		&s.ID, &s.SolicitanteID, &s.TipoSolicitud, &s.CentroMedico, &s.Patologia, &docs,
		&s.Estado, &s.Observaciones, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(docs) > 0 {
		if err := json.Unmarshal(docs, &s.Documentos); err != nil {
			return nil, fmt.Errorf("unmarshal documentos: %w", err)
		}
	}
	return &s, nil
}
