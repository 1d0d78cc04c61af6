package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/donaciones-api/internal/application/dto"
	"github.com/jhoicas/donaciones-api/internal/application/inventory"
	"github.com/jhoicas/donaciones-api/internal/application/lote"
	"github.com/jhoicas/donaciones-api/internal/application/solicitud"
	"github.com/jhoicas/donaciones-api/internal/domain/entity"
	"github.com/jhoicas/donaciones-api/internal/infrastructure/memory"
	"github.com/jhoicas/donaciones-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/donaciones-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/donaciones-api/pkg/jwt"
	"github.com/jhoicas/donaciones-api/pkg/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorBody  `json:"error"`
}

// newAPI router completo sobre el almacenamiento en memoria.
func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	store.SeedMedicamento(entity.Medicamento{Codigo: "MED-001", Nombre: "Paracetamol 500mg"})
	store.SeedAlmacen(entity.Almacen{ID: "ALM-1", Nombre: "Bodega Principal"})

	log := logger.Nop()
	alloc := inventory.NewAllocationUseCase(store, log)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		LoteUC:       lote.NewUseCase(store, log),
		StockUC:      inventory.NewStockLedgerUseCase(store, log),
		AllocationUC: alloc,
		PDFUC:        inventory.NewPDFUseCase(store, pdf.NewMarotoPDFGenerator()),
		SolicitudUC:  solicitud.NewUseCase(store, alloc, log),
		JWTSecret:    testJWTSecret,
		JWTIssuer:    testIssuer,
		Logger:       log,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env), "%s %s", method, path)
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

const (
	admin    = pkgjwt.RoleAdmin
	revisor  = pkgjwt.RoleRevisor
	operador = pkgjwt.RoleOperador
	stockURL = "/api/stock?almacen_id=ALM-1&lote=LOT-20250101-001&medicamento=MED-001"
)

func crearLote(t *testing.T, app *fiber.App) {
	t.Helper()
	status, env := call(t, app, http.MethodPost, "/api/lotes", operador, dto.CreateLoteRequest{
		Codigo:            "LOT-20250101-001",
		MedicamentoCodigo: "MED-001",
		FechaFabricacion:  "2025-01-01",
		FechaVencimiento:  "2030-01-01",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
}

func TestHealth(t *testing.T) {
	status, env := call(t, newAPI(t), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}

func TestLotes(t *testing.T) {
	app := newAPI(t)
	crearLote(t, app)

	status, env := call(t, app, http.MethodPost, "/api/lotes", revisor, dto.CreateLoteRequest{})
	assert.Equal(t, http.StatusForbidden, status, "el revisor no registra lotes")

	status, env = call(t, app, http.MethodPost, "/api/lotes", operador, dto.CreateLoteRequest{
		Codigo: "LOTE-2025-01", MedicamentoCodigo: "MED-001", FechaFabricacion: "2025-01-01", FechaVencimiento: "2030-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION", env.Error.Code)

	status, env = call(t, app, http.MethodPost, "/api/lotes", admin, dto.CreateLoteRequest{
		Codigo: "LOT-20250101-001", MedicamentoCodigo: "MED-001", FechaFabricacion: "2025-01-01", FechaVencimiento: "2030-01-01",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	status, env = call(t, app, http.MethodGet, "/api/lotes/LOT-20250101-001", revisor, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2030-01-01", decode[dto.LoteResponse](t, env).FechaVencimiento)

	status, _ = call(t, app, http.MethodGet, "/api/lotes/LOT-20990101-001", revisor, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = call(t, app, http.MethodGet, "/api/lotes?medicamento=MED-001", revisor, nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[dto.LoteListResponse](t, env)
	assert.Len(t, list.Data, 1)
	assert.Equal(t, 1, list.Pagination.Total)

	status, env = call(t, app, http.MethodGet, "/api/lotes/sugerencia?secuencia=7", operador, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Regexp(t, `^LOT-\d{8}-007$`, decode[dto.SuggestLoteResponse](t, env).Codigo)

	status, _ = call(t, app, http.MethodGet, "/api/lotes/sugerencia?secuencia=1000", operador, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestFlujoSolicitud(t *testing.T) {
	app := newAPI(t)
	crearLote(t, app)

	status, env := call(t, app, http.MethodPost, "/api/stock/ajustes", operador, dto.AdjustStockRequest{
		StockKeyRequest: dto.StockKeyRequest{AlmacenID: "ALM-1", LoteCodigo: "LOT-20250101-001", MedicamentoCodigo: "MED-001"},
		Delta:           10,
		Motivo:          "donación recibida",
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, int64(10), decode[dto.StockEntryResponse](t, env).Cantidad)

	nueva := dto.CreateSolicitudRequest{SolicitanteID: "pac-001", TipoSolicitud: "medicamentos"}
	status, env = call(t, app, http.MethodPost, "/api/solicitudes", revisor, nueva)
	require.Equal(t, http.StatusCreated, status)
	r1 := decode[dto.SolicitudResponse](t, env)
	assert.Equal(t, "PENDIENTE", r1.Estado)

	status, env = call(t, app, http.MethodPost, "/api/solicitudes", revisor, nueva)
	require.Equal(t, http.StatusCreated, status)
	r2 := decode[dto.SolicitudResponse](t, env)

	url1 := "/api/solicitudes/" + itoa(r1.ID)
	url2 := "/api/solicitudes/" + itoa(r2.ID)
	enRevision := dto.TransitionRequest{Estado: "EN_REVISION", EstadoActual: "PENDIENTE"}

	status, _ = call(t, app, http.MethodPatch, url1+"/estado", operador, enRevision)
	assert.Equal(t, http.StatusForbidden, status, "el operador no cambia estados")

	for _, u := range []string{url1, url2} {
		status, env = call(t, app, http.MethodPatch, u+"/estado", revisor, enRevision)
		require.Equal(t, http.StatusOK, status, env.Error)
	}

	linea := func(qty int64) dto.ReplaceDetalleRequest {
		return dto.ReplaceDetalleRequest{Lineas: []dto.DetalleLineRequest{
			{AlmacenID: "ALM-1", LoteCodigo: "LOT-20250101-001", MedicamentoCodigo: "MED-001", Cantidad: qty},
		}}
	}
	status, env = call(t, app, http.MethodPatch, url1+"/detalle", operador, linea(4))
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, int64(4), decode[dto.DetalleListResponse](t, env).TotalUnidades)

	status, env = call(t, app, http.MethodGet, stockURL, revisor, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(6), decode[dto.StockEntryResponse](t, env).Cantidad)

	status, env = call(t, app, http.MethodPatch, url2+"/detalle", operador, linea(7))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", env.Error.Code)

	status, env = call(t, app, http.MethodPatch, url1+"/estado", revisor, dto.TransitionRequest{Estado: "PENDIENTE", EstadoActual: "EN_REVISION"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)

	status, env = call(t, app, http.MethodPatch, url1+"/estado", revisor, dto.TransitionRequest{Estado: "APROBADA"})
	assert.Equal(t, http.StatusBadRequest, status, "estado_actual es obligatorio")
	assert.Equal(t, "VALIDATION", env.Error.Code)

	status, env = call(t, app, http.MethodPatch, url1+"/estado", revisor, dto.TransitionRequest{Estado: "APROBADA", EstadoActual: "PENDIENTE"})
	assert.Equal(t, http.StatusUnprocessableEntity, status, "estado_actual desactualizado")
	assert.Equal(t, "INVALID_STATE", env.Error.Code)

	status, env = call(t, app, http.MethodGet, url1+"/detalle", revisor, nil)
	require.Equal(t, http.StatusOK, status)
	det := decode[dto.DetalleListResponse](t, env)
	require.Len(t, det.Lineas, 1)
	assert.Equal(t, "Bodega Principal", det.Lineas[0].AlmacenNombre)

	status, env = call(t, app, http.MethodGet, "/api/stock/consolidado", revisor, nil)
	require.Equal(t, http.StatusOK, status)
	cons := decode[[]dto.ConsolidatedStockDTO](t, env)
	require.Len(t, cons, 1)
	assert.Equal(t, int64(6), cons[0].Total)

	status, env = call(t, app, http.MethodDelete, url1+"/detalle", operador, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	_, env = call(t, app, http.MethodGet, stockURL, revisor, nil)
	assert.Equal(t, int64(10), decode[dto.StockEntryResponse](t, env).Cantidad)

	status, env = call(t, app, http.MethodPatch, url2+"/estado", revisor, dto.TransitionRequest{Estado: "CANCELADA", EstadoActual: "EN_REVISION", Observaciones: "duplicada"})
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[dto.SolicitudResponse](t, env).SiguientesEstados)

	status, env = call(t, app, http.MethodGet, url2+"/historial", revisor, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]dto.HistorialResponse](t, env), 3)

	status, env = call(t, app, http.MethodGet, "/api/solicitudes?page=1&limit=1", revisor, nil)
	require.Equal(t, http.StatusOK, status)
	page := decode[dto.SolicitudListResponse](t, env)
	assert.Equal(t, dto.Pagination{Total: 2, Page: 1, Limit: 1, TotalPages: 2}, page.Pagination)

	status, env = call(t, app, http.MethodGet, "/api/stock/movimientos?lote=LOT-20250101-001", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]dto.StockMovementResponse](t, env), 3, "ajuste, reserva y liberación")

	status, env = call(t, app, http.MethodGet, "/api/solicitudes/abc", revisor, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = call(t, app, http.MethodGet, "/api/solicitudes/999", revisor, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDetallePDF(t *testing.T) {
	app := newAPI(t)
	crearLote(t, app)
	call(t, app, http.MethodPost, "/api/stock/ajustes", operador, dto.AdjustStockRequest{
		StockKeyRequest: dto.StockKeyRequest{AlmacenID: "ALM-1", LoteCodigo: "LOT-20250101-001", MedicamentoCodigo: "MED-001"},
		Delta:           5,
	})
	_, env := call(t, app, http.MethodPost, "/api/solicitudes", revisor, dto.CreateSolicitudRequest{SolicitanteID: "pac-001", TipoSolicitud: "medicamentos"})
	url := "/api/solicitudes/" + itoa(decode[dto.SolicitudResponse](t, env).ID)

	status, _ := call(t, app, http.MethodGet, url+"/detalle/pdf", revisor, nil)
	assert.Equal(t, http.StatusBadRequest, status, "sin asignaciones no hay lista de alistamiento")

	call(t, app, http.MethodPatch, url+"/estado", revisor, dto.TransitionRequest{Estado: "EN_REVISION", EstadoActual: "PENDIENTE"})
	call(t, app, http.MethodPatch, url+"/detalle", operador, dto.ReplaceDetalleRequest{Lineas: []dto.DetalleLineRequest{
		{AlmacenID: "ALM-1", LoteCodigo: "LOT-20250101-001", MedicamentoCodigo: "MED-001", Cantidad: 2},
	}})

	req := httptest.NewRequest(http.MethodGet, url+"/detalle/pdf", nil)
	req.Header.Set("Authorization", tokenForRole(t, revisor))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
