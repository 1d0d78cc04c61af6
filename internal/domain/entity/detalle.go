package entity

// DetalleLine línea de asignación: cantidad reservada de un (almacén, lote) para una solicitud.
// Identidad: (SolicitudID, AlmacenID, LoteCodigo).
type DetalleLine struct {
	SolicitudID       int64
	AlmacenID         string
	LoteCodigo        string
	MedicamentoCodigo string
	Cantidad          int64
	DosisIndicada     string
	TiempoTratamiento string
}

// Key clave de stock referenciada por la línea.
func (d DetalleLine) Key() StockKey {
	return StockKey{AlmacenID: d.AlmacenID, LoteCodigo: d.LoteCodigo, MedicamentoCodigo: d.MedicamentoCodigo}
}
