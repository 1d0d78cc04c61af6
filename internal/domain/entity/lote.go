package entity

import "time"

// Lote representa un lote fabricado de un medicamento, con vencimiento fijo.
// Es inmutable: no existe ruta de actualización ni borrado.
type Lote struct {
	Codigo            string // LOT-YYYYMMDD-NNN
	MedicamentoCodigo string
	FechaFabricacion  time.Time
	FechaVencimiento  time.Time
	CreatedAt         time.Time
}

// VencidoEn indica si el lote ya no puede asignarse en la fecha dada.
// Un lote que vence hoy se considera vencido.
func (l *Lote) VencidoEn(t time.Time) bool {
	y, m, d := t.Date()
	hoy := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	vy, vm, vd := l.FechaVencimiento.Date()
	vence := time.Date(vy, vm, vd, 0, 0, 0, 0, time.UTC)
	return !vence.After(hoy)
}
