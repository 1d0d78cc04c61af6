package inventory

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jhoicas/donaciones-api/internal/domain/entity"
)

// ConsolidatedEntry entrada de stock enriquecida con nombres para la vista consolidada.
type ConsolidatedEntry struct {
	entity.StockEntry
	MedicamentoNombre string
	AlmacenNombre     string
}

// ConsolidatedItem desglose (almacén, lote, cantidad) de un medicamento.
type ConsolidatedItem struct {
	AlmacenID     string
	AlmacenNombre string
	LoteCodigo    string
	Cantidad      int64
}

// ConsolidatedRow total de un medicamento en todos los almacenes.
type ConsolidatedRow struct {
	MedicamentoCodigo string
	MedicamentoNombre string
	Total             int64
	Desglose          []ConsolidatedItem
}

// BuildConsolidated agrupa por medicamento y ordena por nombre de medicamento y luego por
// nombre de almacén con colación española (acentos y mayúsculas no alteran el orden).
// Empates: código de medicamento, id de almacén y código de lote.
func BuildConsolidated(entries []ConsolidatedEntry) []ConsolidatedRow {
	// collate.Collator no es seguro para uso concurrente: uno por llamada.
	col := collate.New(language.Spanish, collate.IgnoreCase, collate.IgnoreDiacritics)

	sorted := make([]ConsolidatedEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if c := col.CompareString(a.MedicamentoNombre, b.MedicamentoNombre); c != 0 {
			return c < 0
		}
		if a.MedicamentoCodigo != b.MedicamentoCodigo {
			return a.MedicamentoCodigo < b.MedicamentoCodigo
		}
		if c := col.CompareString(a.AlmacenNombre, b.AlmacenNombre); c != 0 {
			return c < 0
		}
		if a.AlmacenID != b.AlmacenID {
			return a.AlmacenID < b.AlmacenID
		}
		return a.LoteCodigo < b.LoteCodigo
	})

	rows := make([]ConsolidatedRow, 0)
	for _, e := range sorted {
		if n := len(rows); n == 0 || rows[n-1].MedicamentoCodigo != e.MedicamentoCodigo {
			rows = append(rows, ConsolidatedRow{
				MedicamentoCodigo: e.MedicamentoCodigo,
				MedicamentoNombre: e.MedicamentoNombre,
				Desglose:          []ConsolidatedItem{},
			})
		}
		r := &rows[len(rows)-1]
		r.Total += e.Cantidad
		r.Desglose = append(r.Desglose, ConsolidatedItem{
			AlmacenID:     e.AlmacenID,
			AlmacenNombre: e.AlmacenNombre,
			LoteCodigo:    e.LoteCodigo,
			Cantidad:      e.Cantidad,
		})
	}
	return rows
}
