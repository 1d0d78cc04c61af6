package solicitud_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/donaciones-api/internal/application/dto"
	"github.com/jhoicas/donaciones-api/internal/application/inventory"
	"github.com/jhoicas/donaciones-api/internal/application/ports"
	"github.com/jhoicas/donaciones-api/internal/application/solicitud"
	"github.com/jhoicas/donaciones-api/internal/domain"
	"github.com/jhoicas/donaciones-api/internal/domain/entity"
	domainsol "github.com/jhoicas/donaciones-api/internal/domain/solicitud"
	"github.com/jhoicas/donaciones-api/internal/infrastructure/memory"
	"github.com/jhoicas/donaciones-api/pkg/logger"
)

var hoy = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

const (
	revisor = "u-revisor"
	lote    = "LOT-20250101-001"
	almacen = "ALM-CENTRAL"
)

type fixture struct {
	store  *memory.Store
	uc     *solicitud.UseCase
	ledger *inventory.StockLedgerUseCase
	alloc  *inventory.AllocationUseCase
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	store.SeedMedicamento(entity.Medicamento{Codigo: "MED-001", Nombre: "Paracetamol 500mg"})
	store.SeedAlmacen(entity.Almacen{ID: almacen, Nombre: "Bodega Central"})
	err := store.Run(context.Background(), func(r ports.Repos) error {
		return r.Lotes.Create(context.Background(), &entity.Lote{
			Codigo:            lote,
			MedicamentoCodigo: "MED-001",
			FechaFabricacion:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			FechaVencimiento:  time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		})
	})
	require.NoError(t, err)

	clock := func() time.Time { return hoy }
	alloc := inventory.NewAllocationUseCase(store, logger.Nop()).WithClock(clock)
	return fixture{
		store:  store,
		uc:     solicitud.NewUseCase(store, alloc, logger.Nop()).WithClock(clock),
		ledger: inventory.NewStockLedgerUseCase(store, logger.Nop()).WithClock(clock),
		alloc:  alloc,
	}
}

func (f fixture) create(t *testing.T) int64 {
	t.Helper()
	out, err := f.uc.Create(context.Background(), revisor, dto.CreateSolicitudRequest{
		SolicitanteID: "pac-001",
		TipoSolicitud: "medicamentos",
		CentroMedico:  "Hospital San José",
		Patologia:     "Hipertensión",
		Documentos: []dto.DocumentoDTO{
			{Tipo: "receta", Nombre: "receta.pdf", URL: "https://files.example.org/receta.pdf"},
		},
	})
	require.NoError(t, err)
	return out.ID
}

// move lee el estado vigente y lo envía como estado_actual, como haría un cliente.
func (f fixture) move(id int64, estado entity.EstadoSolicitud) (*dto.SolicitudResponse, error) {
	actual := string(entity.EstadoPendiente)
	if got, err := f.uc.Get(context.Background(), id); err == nil {
		actual = got.Estado
	}
	return f.uc.Transition(context.Background(), revisor, id, dto.TransitionRequest{
		Estado:       string(estado),
		EstadoActual: actual,
	})
}

func (f fixture) available(t *testing.T) int64 {
	t.Helper()
	out, err := f.ledger.Available(context.Background(), dto.StockKeyRequest{AlmacenID: almacen, LoteCodigo: lote, MedicamentoCodigo: "MED-001"})
	require.NoError(t, err)
	return out.Cantidad
}

func (f fixture) stock(t *testing.T, qty int64) {
	t.Helper()
	_, err := f.ledger.Adjust(context.Background(), "u-operador", dto.AdjustStockRequest{
		StockKeyRequest: dto.StockKeyRequest{AlmacenID: almacen, LoteCodigo: lote, MedicamentoCodigo: "MED-001"},
		Delta:           qty,
	})
	require.NoError(t, err)
}

func (f fixture) allocate(t *testing.T, id int64, qty int64) {
	t.Helper()
	_, err := f.alloc.ReplaceAllocations(context.Background(), revisor, id, dto.ReplaceDetalleRequest{
		Lineas: []dto.DetalleLineRequest{{AlmacenID: almacen, LoteCodigo: lote, MedicamentoCodigo: "MED-001", Cantidad: qty}},
	})
	require.NoError(t, err)
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.create(t)
	got, err := f.uc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(entity.EstadoPendiente), got.Estado)
	assert.Equal(t, []string{"EN_REVISION", "CANCELADA"}, got.SiguientesEstados)
	require.Len(t, got.Documentos, 1)
	assert.Equal(t, "receta", got.Documentos[0].Tipo)

	_, err = f.uc.Get(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t)
	base := dto.CreateSolicitudRequest{SolicitanteID: "pac-001", TipoSolicitud: "medicamentos"}

	cases := []struct {
		name string
		mod  func(*dto.CreateSolicitudRequest)
	}{
		{"sin solicitante", func(r *dto.CreateSolicitudRequest) { r.SolicitanteID = "" }},
		{"tipo de documento", func(r *dto.CreateSolicitudRequest) {
			r.Documentos = []dto.DocumentoDTO{{Tipo: "foto", Nombre: "x", URL: "https://a.org/x"}}
		}},
		{"url relativa", func(r *dto.CreateSolicitudRequest) {
			r.Documentos = []dto.DocumentoDTO{{Tipo: "otro", Nombre: "x", URL: "/tmp/x"}}
		}},
		{"documento sin nombre", func(r *dto.CreateSolicitudRequest) {
			r.Documentos = []dto.DocumentoDTO{{Tipo: "otro", URL: "https://a.org/x"}}
		}},
		{"observaciones largas", func(r *dto.CreateSolicitudRequest) {
			r.Observaciones = strings.Repeat("ñ", solicitud.MaxObservaciones+1)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mod(&in)
			_, err := f.uc.Create(context.Background(), revisor, in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestList_PaginadoYFiltrado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		f.create(t)
	}
	_, err := f.move(2, entity.EstadoEnRevision)
	require.NoError(t, err)

	out, err := f.uc.List(ctx, "", dto.PageRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, dto.Pagination{Total: 5, Page: 1, Limit: 2, TotalPages: 3}, out.Pagination)
	require.Len(t, out.Data, 2)
	assert.Equal(t, int64(5), out.Data[0].ID)

	out, err = f.uc.List(ctx, "en_revision", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, out.Data, 1)
	assert.Equal(t, int64(2), out.Data[0].ID)
	assert.Equal(t, 20, out.Pagination.Limit)

	_, err = f.uc.List(ctx, "ARCHIVADA", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// Cada arista de la tabla funciona desde su origen y falla desde cualquier otro estado.
func TestTransition_Tabla(t *testing.T) {
	for _, from := range domainsol.Estados {
		for _, to := range domainsol.Estados {
			f := newFixture(t)
			id := f.seed(t, from)

			_, err := f.move(id, to)
			if domainsol.CanTransition(from, to) {
				assert.NoError(t, err, "%s → %s", from, to)
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidState, "%s → %s", from, to)
			}
		}
	}
}

// seed crea una solicitud directamente en estado e con una línea de detalle.
func (f fixture) seed(t *testing.T, e entity.EstadoSolicitud) int64 {
	t.Helper()
	s := &entity.Solicitud{SolicitanteID: "pac-001", TipoSolicitud: "medicamentos", Estado: e}
	err := f.store.Run(context.Background(), func(r ports.Repos) error {
		if err := r.Solicitudes.Create(context.Background(), s); err != nil {
			return err
		}
		return r.Detalles.Replace(context.Background(), s.ID, []entity.DetalleLine{
			{AlmacenID: almacen, LoteCodigo: lote, MedicamentoCodigo: "MED-001", Cantidad: 1},
		})
	})
	require.NoError(t, err)
	return s.ID
}

func TestTransition_AprobadaAPendiente(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, entity.EstadoAprobada)
	_, err := f.move(id, entity.EstadoPendiente)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestTransition_DespachoSinDetalle(t *testing.T) {
	f := newFixture(t)
	id := f.create(t)
	_, err := f.move(id, entity.EstadoEnRevision)
	require.NoError(t, err)
	_, err = f.move(id, entity.EstadoAprobada)
	require.NoError(t, err)

	_, err = f.move(id, entity.EstadoDespachada)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	got, err := f.uc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, string(entity.EstadoAprobada), got.Estado)
}

func TestTransition_DespachoConsumeStock(t *testing.T) {
	f := newFixture(t)
	f.stock(t, 10)
	id := f.create(t)
	_, err := f.move(id, entity.EstadoEnRevision)
	require.NoError(t, err)
	f.allocate(t, id, 4)
	_, err = f.move(id, entity.EstadoAprobada)
	require.NoError(t, err)

	out, err := f.move(id, entity.EstadoDespachada)
	require.NoError(t, err)
	require.NotNil(t, out.Despacho)
	assert.Equal(t, revisor, out.Despacho.UsuarioID)
	assert.Empty(t, out.SiguientesEstados)
	assert.Equal(t, int64(6), f.available(t))

	_, err = f.move(id, entity.EstadoCancelada)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "DESPACHADA es terminal")
	assert.Equal(t, int64(6), f.available(t))
}

func TestTransition_TerminalLibera(t *testing.T) {
	for _, target := range []entity.EstadoSolicitud{entity.EstadoRechazada, entity.EstadoCancelada} {
		t.Run(string(target), func(t *testing.T) {
			f := newFixture(t)
			f.stock(t, 10)
			id := f.create(t)
			_, err := f.move(id, entity.EstadoEnRevision)
			require.NoError(t, err)
			f.allocate(t, id, 7)
			assert.Equal(t, int64(3), f.available(t))

			_, err = f.uc.Transition(context.Background(), revisor, id, dto.TransitionRequest{
				Estado:        string(target),
				EstadoActual:  string(entity.EstadoEnRevision),
				Observaciones: "documentación insuficiente",
			})
			require.NoError(t, err)
			assert.Equal(t, int64(10), f.available(t))

			got, err := f.alloc.GetAllocations(context.Background(), id)
			require.NoError(t, err)
			assert.Empty(t, got.Lineas)

			hist, err := f.uc.History(context.Background(), id)
			require.NoError(t, err)
			require.Len(t, hist, 3)
			assert.Equal(t, "EN_REVISION", hist[2].EstadoAnterior)
			assert.Equal(t, string(target), hist[2].EstadoNuevo)
			assert.Equal(t, "documentación insuficiente", hist[2].Observaciones)
		})
	}
}

func TestTransition_EstadoActualDesactualizado(t *testing.T) {
	f := newFixture(t)
	id := f.create(t)
	_, err := f.move(id, entity.EstadoEnRevision)
	require.NoError(t, err)

	_, err = f.uc.Transition(context.Background(), revisor, id, dto.TransitionRequest{
		Estado:       "CANCELADA",
		EstadoActual: "PENDIENTE",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.uc.Transition(context.Background(), revisor, id, dto.TransitionRequest{
		Estado:       "CANCELADA",
		EstadoActual: "EN_REVISION",
	})
	assert.NoError(t, err)
}

func TestTransition_Concurrente(t *testing.T) {
	f := newFixture(t)
	id := f.create(t)
	_, err := f.move(id, entity.EstadoEnRevision)
	require.NoError(t, err)

	targets := []entity.EstadoSolicitud{
		entity.EstadoAprobada, entity.EstadoRechazada, entity.EstadoIncompleta, entity.EstadoCancelada,
	}
	var wg sync.WaitGroup
	var mu sync.Mutex
	ganadores := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(target entity.EstadoSolicitud) {
			defer wg.Done()
			_, err := f.uc.Transition(context.Background(), revisor, id, dto.TransitionRequest{
				Estado:       string(target),
				EstadoActual: string(entity.EstadoEnRevision),
			})
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrInvalidState)
				return
			}
			mu.Lock()
			ganadores++
			mu.Unlock()
		}(targets[i%len(targets)])
	}
	wg.Wait()
	assert.Equal(t, 1, ganadores)
}

func TestTransition_SinEstadoActual(t *testing.T) {
	f := newFixture(t)
	id := f.create(t)
	_, err := f.move(id, entity.EstadoEnRevision)
	require.NoError(t, err)

	_, err = f.uc.Transition(context.Background(), revisor, id, dto.TransitionRequest{Estado: "CANCELADA"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := f.uc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, string(entity.EstadoEnRevision), got.Estado)
	hist, err := f.uc.History(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, hist, 2)
}

// Dos revisores deciden a la vez sobre la misma solicitud en EN_REVISION:
// uno aprueba y otro cancela. Solo una decisión se aplica; la otra no la pisa.
func TestTransition_DecisionesSimultaneas(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newFixture(t)
		id := f.create(t)
		_, err := f.move(id, entity.EstadoEnRevision)
		require.NoError(t, err)

		targets := []entity.EstadoSolicitud{entity.EstadoCancelada, entity.EstadoAprobada}
		errs := make([]error, len(targets))
		var wg sync.WaitGroup
		for j, target := range targets {
			wg.Add(1)
			go func(j int, target entity.EstadoSolicitud) {
				defer wg.Done()
				_, errs[j] = f.uc.Transition(context.Background(), revisor, id, dto.TransitionRequest{
					Estado:       string(target),
					EstadoActual: string(entity.EstadoEnRevision),
				})
			}(j, target)
		}
		wg.Wait()

		ganador := -1
		for j, err := range errs {
			if err == nil {
				require.Equal(t, -1, ganador, "solo una transición puede aplicarse")
				ganador = j
				continue
			}
			assert.ErrorIs(t, err, domain.ErrInvalidState)
		}
		require.NotEqual(t, -1, ganador)

		got, err := f.uc.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, string(targets[ganador]), got.Estado)
		hist, err := f.uc.History(context.Background(), id)
		require.NoError(t, err)
		assert.Len(t, hist, 3)
	}
}

func TestTransition_Validaciones(t *testing.T) {
	f := newFixture(t)
	id := f.create(t)

	_, err := f.move(id, "ARCHIVADA")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.uc.Transition(context.Background(), revisor, id, dto.TransitionRequest{
		Estado:        "EN_REVISION",
		EstadoActual:  "PENDIENTE",
		Observaciones: strings.Repeat("a", solicitud.MaxObservaciones+1),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.uc.Transition(context.Background(), revisor, id, dto.TransitionRequest{
		Estado:       "EN_REVISION",
		EstadoActual: "ARCHIVADA",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.move(9999, entity.EstadoEnRevision)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
