package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/donaciones-api/internal/domain"
	"github.com/jhoicas/donaciones-api/internal/domain/entity"
	"github.com/jhoicas/donaciones-api/internal/domain/repository"
)

var (
	_ repository.LoteRepository          = (*loteRepo)(nil)
	_ repository.MedicamentoRepository   = (*medicamentoRepo)(nil)
	_ repository.AlmacenRepository       = (*almacenRepo)(nil)
	_ repository.StockRepository         = (*stockRepo)(nil)
	_ repository.StockMovementRepository = (*movimientoRepo)(nil)
	_ repository.SolicitudRepository     = (*solicitudRepo)(nil)
	_ repository.DetalleRepository       = (*detalleRepo)(nil)
)

// ── Lotes ─────────────────────────────────────────────────────────────────────

type loteRepo struct {
	st *state
	ro bool
}

func (r *loteRepo) Create(_ context.Context, l *entity.Lote) error {
	if r.ro {
		return errReadOnly
	}
	if _, ok := r.st.lotes[l.Codigo]; ok {
		return fmt.Errorf("%w: el lote %s ya existe", domain.ErrConflict, l.Codigo)
	}
	r.st.lotes[l.Codigo] = *l
	return nil
}

func (r *loteRepo) GetByCode(_ context.Context, codigo string) (*entity.Lote, error) {
	l, ok := r.st.lotes[codigo]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *loteRepo) List(_ context.Context, f repository.LoteFilter) ([]*entity.Lote, int, error) {
	all := make([]*entity.Lote, 0, len(r.st.lotes))
	for _, l := range r.st.lotes {
		if f.MedicamentoCodigo != "" && l.MedicamentoCodigo != f.MedicamentoCodigo {
			continue
		}
		l := l
		all = append(all, &l)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Codigo < all[j].Codigo })
	return page(all, f.Offset, f.Limit), len(all), nil
}

// ── Catálogos ─────────────────────────────────────────────────────────────────

type medicamentoRepo struct{ st *state }

func (r *medicamentoRepo) GetByCode(_ context.Context, codigo string) (*entity.Medicamento, error) {
	m, ok := r.st.medicamentos[codigo]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

type almacenRepo struct{ st *state }

func (r *almacenRepo) GetByID(_ context.Context, id string) (*entity.Almacen, error) {
	a, ok := r.st.almacenes[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// ── Stock ─────────────────────────────────────────────────────────────────────

type stockRepo struct {
	st *state
	ro bool
}

func (r *stockRepo) Get(_ context.Context, key entity.StockKey) (*entity.StockEntry, error) {
	e, ok := r.st.stock[key]
	if !ok {
		return &entity.StockEntry{StockKey: key}, nil
	}
	return &e, nil
}

// GetForUpdate no necesita bloquear: Run ya serializa toda la transacción.
func (r *stockRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockEntry, error) {
	return r.Get(ctx, key)
}

func (r *stockRepo) Upsert(_ context.Context, e *entity.StockEntry) error {
	if r.ro {
		return errReadOnly
	}
	if e.Cantidad < 0 {
		return fmt.Errorf("upsert stock: cantidad negativa en %s", e.StockKey)
	}
	r.st.stock[e.StockKey] = *e
	return nil
}

// ListAll omite entradas en cero.
func (r *stockRepo) ListAll(_ context.Context) ([]*entity.StockEntry, error) {
	out := make([]*entity.StockEntry, 0, len(r.st.stock))
	for _, e := range r.st.stock {
		if e.Cantidad == 0 {
			continue
		}
		e := e
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StockKey.Less(out[j].StockKey) })
	return out, nil
}

type movimientoRepo struct {
	st *state
	ro bool
}

func (r *movimientoRepo) Create(_ context.Context, m *entity.StockMovement) error {
	if r.ro {
		return errReadOnly
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	r.st.movimientos = append(r.st.movimientos, *m)
	return nil
}

// List devuelve los movimientos más recientes primero.
func (r *movimientoRepo) List(_ context.Context, f repository.StockMovementFilter) ([]*entity.StockMovement, error) {
	out := make([]*entity.StockMovement, 0)
	for i := len(r.st.movimientos) - 1; i >= 0; i-- {
		m := r.st.movimientos[i]
		if f.AlmacenID != "" && m.AlmacenID != f.AlmacenID {
			continue
		}
		if f.LoteCodigo != "" && m.LoteCodigo != f.LoteCodigo {
			continue
		}
		if f.MedicamentoCodigo != "" && m.MedicamentoCodigo != f.MedicamentoCodigo {
			continue
		}
		if f.SolicitudID != nil && (m.SolicitudID == nil || *m.SolicitudID != *f.SolicitudID) {
			continue
		}
		out = append(out, &m)
	}
	return page(out, f.Offset, f.Limit), nil
}

// ── Solicitudes ───────────────────────────────────────────────────────────────

type solicitudRepo struct {
	st *state
	ro bool
}

func (r *solicitudRepo) Create(_ context.Context, s *entity.Solicitud) error {
	if r.ro {
		return errReadOnly
	}
	r.st.nextID++
	s.ID = r.st.nextID
	c := *s
	c.Documentos = append([]entity.Documento(nil), s.Documentos...)
	r.st.solicitudes[s.ID] = c
	return nil
}

func (r *solicitudRepo) GetByID(_ context.Context, id int64) (*entity.Solicitud, error) {
	s, ok := r.st.solicitudes[id]
	if !ok {
		return nil, nil
	}
	s.Documentos = append([]entity.Documento(nil), s.Documentos...)
	return &s, nil
}

func (r *solicitudRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Solicitud, error) {
	return r.GetByID(ctx, id)
}

func (r *solicitudRepo) UpdateEstado(_ context.Context, s *entity.Solicitud) error {
	if r.ro {
		return errReadOnly
	}
	cur, ok := r.st.solicitudes[s.ID]
	if !ok {
		return fmt.Errorf("%w: solicitud %d", domain.ErrNotFound, s.ID)
	}
	cur.Estado = s.Estado
	cur.Observaciones = s.Observaciones
	cur.UpdatedAt = s.UpdatedAt
	r.st.solicitudes[s.ID] = cur
	return nil
}

// List ordena por ID descendente (más recientes primero).
func (r *solicitudRepo) List(_ context.Context, f repository.SolicitudFilter) ([]*entity.Solicitud, int, error) {
	all := make([]*entity.Solicitud, 0, len(r.st.solicitudes))
	for _, s := range r.st.solicitudes {
		if f.Estado != "" && s.Estado != f.Estado {
			continue
		}
		s := s
		all = append(all, &s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return page(all, f.Offset, f.Limit), len(all), nil
}

func (r *solicitudRepo) AddHistorial(_ context.Context, h *entity.SolicitudHistorial) error {
	if r.ro {
		return errReadOnly
	}
	r.st.historial[h.SolicitudID] = append(r.st.historial[h.SolicitudID], *h)
	return nil
}

func (r *solicitudRepo) ListHistorial(_ context.Context, solicitudID int64) ([]*entity.SolicitudHistorial, error) {
	hs := r.st.historial[solicitudID]
	out := make([]*entity.SolicitudHistorial, 0, len(hs))
	for i := range hs {
		h := hs[i]
		out = append(out, &h)
	}
	return out, nil
}

func (r *solicitudRepo) CreateDespacho(_ context.Context, d *entity.Despacho) error {
	if r.ro {
		return errReadOnly
	}
	if _, ok := r.st.despachos[d.SolicitudID]; ok {
		return fmt.Errorf("%w: la solicitud %d ya tiene despacho", domain.ErrConflict, d.SolicitudID)
	}
	r.st.despachos[d.SolicitudID] = *d
	return nil
}

func (r *solicitudRepo) GetDespacho(_ context.Context, solicitudID int64) (*entity.Despacho, error) {
	d, ok := r.st.despachos[solicitudID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

// ── Detalle ───────────────────────────────────────────────────────────────────

type detalleRepo struct {
	st *state
	ro bool
}

func (r *detalleRepo) ListBySolicitud(_ context.Context, solicitudID int64) ([]entity.DetalleLine, error) {
	return append([]entity.DetalleLine{}, r.st.detalles[solicitudID]...), nil
}

func (r *detalleRepo) Replace(_ context.Context, solicitudID int64, lines []entity.DetalleLine) error {
	if r.ro {
		return errReadOnly
	}
	if len(lines) == 0 {
		delete(r.st.detalles, solicitudID)
		return nil
	}
	cp := make([]entity.DetalleLine, len(lines))
	for i, l := range lines {
		l.SolicitudID = solicitudID
		cp[i] = l
	}
	r.st.detalles[solicitudID] = cp
	return nil
}

func (r *detalleRepo) Count(_ context.Context, solicitudID int64) (int, error) {
	return len(r.st.detalles[solicitudID]), nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return items[:0]
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
