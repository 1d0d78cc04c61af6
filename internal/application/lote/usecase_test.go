package lote_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/donaciones-api/internal/application/dto"
	"github.com/jhoicas/donaciones-api/internal/application/lote"
	"github.com/jhoicas/donaciones-api/internal/domain"
	"github.com/jhoicas/donaciones-api/internal/domain/entity"
	"github.com/jhoicas/donaciones-api/internal/infrastructure/memory"
	"github.com/jhoicas/donaciones-api/pkg/logger"
)

var hoy = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func newUseCase(t *testing.T) *lote.UseCase {
	t.Helper()
	store := memory.NewStore()
	store.SeedMedicamento(entity.Medicamento{Codigo: "MED-001", Nombre: "Paracetamol 500mg"})
	store.SeedMedicamento(entity.Medicamento{Codigo: "MED-002", Nombre: "Ibuprofeno 400mg"})
	return lote.NewUseCase(store, logger.Nop()).WithClock(func() time.Time { return hoy })
}

func req(codigo string) dto.CreateLoteRequest {
	return dto.CreateLoteRequest{
		Codigo:            codigo,
		MedicamentoCodigo: "MED-001",
		FechaFabricacion:  "2025-01-01",
		FechaVencimiento:  "2027-01-01",
	}
}

func TestRegisterLot_OK(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	out, err := uc.RegisterLot(ctx, req("LOT-20250101-001"))
	require.NoError(t, err)
	assert.Equal(t, "LOT-20250101-001", out.Codigo)
	assert.Equal(t, "2027-01-01", out.FechaVencimiento)

	got, err := uc.GetByCode(ctx, "LOT-20250101-001")
	require.NoError(t, err)
	assert.Equal(t, "MED-001", got.MedicamentoCodigo)
}

func TestRegisterLot_CodigoInvalido(t *testing.T) {
	uc := newUseCase(t)
	for _, c := range []string{"LOTE-2025-01", "LOT-20250101-1", "LOT-20250101-ABC"} {
		_, err := uc.RegisterLot(context.Background(), req(c))
		assert.ErrorIs(t, err, domain.ErrValidation, c)
	}
}

func TestRegisterLot_Fechas(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	in := req("LOT-20250101-001")
	in.FechaVencimiento = in.FechaFabricacion
	_, err := uc.RegisterLot(ctx, in)
	assert.ErrorIs(t, err, domain.ErrValidation, "vencimiento igual a fabricación")

	in = req("LOT-20250101-001")
	in.FechaVencimiento = "01/01/2027"
	_, err = uc.RegisterLot(ctx, in)
	assert.ErrorIs(t, err, domain.ErrValidation, "formato de fecha")
}

func TestRegisterLot_Duplicado(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	_, err := uc.RegisterLot(ctx, req("LOT-20250101-001"))
	require.NoError(t, err)
	_, err = uc.RegisterLot(ctx, req("LOT-20250101-001"))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRegisterLot_MedicamentoInexistente(t *testing.T) {
	uc := newUseCase(t)
	in := req("LOT-20250101-001")
	in.MedicamentoCodigo = "MED-999"
	_, err := uc.RegisterLot(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetByCode_NoExiste(t *testing.T) {
	uc := newUseCase(t)
	_, err := uc.GetByCode(context.Background(), "LOT-20250101-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSuggestNextCode(t *testing.T) {
	uc := newUseCase(t)
	out, err := uc.SuggestNextCode(3)
	require.NoError(t, err)
	assert.Equal(t, "LOT-20250615-003", out.Codigo)

	_, err = uc.SuggestNextCode(0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// La sugerencia no garantiza unicidad: el llamador reintenta con la siguiente secuencia.
func TestSuggestNextCode_ReintentoTrasConflicto(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	first, err := uc.SuggestNextCode(1)
	require.NoError(t, err)
	_, err = uc.RegisterLot(ctx, req(first.Codigo))
	require.NoError(t, err)

	var registrado string
	for seq := 1; seq <= 3; seq++ {
		s, err := uc.SuggestNextCode(seq)
		require.NoError(t, err)
		_, err = uc.RegisterLot(ctx, req(s.Codigo))
		if err == nil {
			registrado = s.Codigo
			break
		}
		require.ErrorIs(t, err, domain.ErrConflict)
	}
	assert.Equal(t, "LOT-20250615-002", registrado)
}

func TestList_FiltroYPaginacion(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()
	for _, c := range []string{"LOT-20250101-001", "LOT-20250101-002", "LOT-20250101-003"} {
		_, err := uc.RegisterLot(ctx, req(c))
		require.NoError(t, err)
	}
	otro := req("LOT-20250101-004")
	otro.MedicamentoCodigo = "MED-002"
	_, err := uc.RegisterLot(ctx, otro)
	require.NoError(t, err)

	out, err := uc.List(ctx, "MED-001", dto.PageRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Pagination.Total)
	assert.Equal(t, 2, out.Pagination.TotalPages)
	require.Len(t, out.Data, 1)
	assert.Equal(t, "LOT-20250101-003", out.Data[0].Codigo)
}
