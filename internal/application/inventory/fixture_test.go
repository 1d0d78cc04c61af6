package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/donaciones-api/internal/application/dto"
	"github.com/jhoicas/donaciones-api/internal/application/ports"
	"github.com/jhoicas/donaciones-api/internal/domain/entity"
	"github.com/jhoicas/donaciones-api/internal/infrastructure/memory"
)

var hoy = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return hoy }

const (
	almNorte = "ALM-NORTE"
	almSur   = "ALM-SUR"
	loteA    = "LOT-20250101-001" // MED-001
	loteB    = "LOT-20250201-001" // MED-001
	loteC    = "LOT-20250301-001" // MED-002
	loteVenc = "LOT-20230101-001" // MED-001, vencido
	usuario  = "u-operador"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// newStore catálogo mínimo: dos medicamentos, dos almacenes y cuatro lotes.
func newStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	store.SeedMedicamento(entity.Medicamento{Codigo: "MED-001", Nombre: "Paracetamol 500mg"})
	store.SeedMedicamento(entity.Medicamento{Codigo: "MED-002", Nombre: "Amoxicilina 500mg"})
	store.SeedAlmacen(entity.Almacen{ID: almNorte, Nombre: "Bodega Norte"})
	store.SeedAlmacen(entity.Almacen{ID: almSur, Nombre: "Bodega Sur"})

	lotes := []entity.Lote{
		{Codigo: loteA, MedicamentoCodigo: "MED-001", FechaFabricacion: date("2025-01-01"), FechaVencimiento: date("2027-01-01")},
		{Codigo: loteB, MedicamentoCodigo: "MED-001", FechaFabricacion: date("2025-02-01"), FechaVencimiento: date("2027-02-01")},
		{Codigo: loteC, MedicamentoCodigo: "MED-002", FechaFabricacion: date("2025-03-01"), FechaVencimiento: date("2026-03-01")},
		{Codigo: loteVenc, MedicamentoCodigo: "MED-001", FechaFabricacion: date("2023-01-01"), FechaVencimiento: date("2025-06-15")},
	}
	err := store.Run(context.Background(), func(r ports.Repos) error {
		for i := range lotes {
			if err := r.Lotes.Create(context.Background(), &lotes[i]); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return store
}

// newSolicitud crea una solicitud directamente en el estado dado.
func newSolicitud(t *testing.T, store *memory.Store, estado entity.EstadoSolicitud) int64 {
	t.Helper()
	s := &entity.Solicitud{
		SolicitanteID: "sol-1",
		TipoSolicitud: "medicamentos",
		Estado:        estado,
		CreatedAt:     hoy,
		UpdatedAt:     hoy,
	}
	err := store.Run(context.Background(), func(r ports.Repos) error {
		return r.Solicitudes.Create(context.Background(), s)
	})
	require.NoError(t, err)
	return s.ID
}

func key(alm, lote, med string) dto.StockKeyRequest {
	return dto.StockKeyRequest{AlmacenID: alm, LoteCodigo: lote, MedicamentoCodigo: med}
}

func line(alm, lote, med string, qty int64) dto.DetalleLineRequest {
	return dto.DetalleLineRequest{AlmacenID: alm, LoteCodigo: lote, MedicamentoCodigo: med, Cantidad: qty}
}
