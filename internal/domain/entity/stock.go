package entity

import (
	"fmt"
	"time"
)

// StockKey identifica una entrada de stock: (almacén, lote, medicamento).
type StockKey struct {
	AlmacenID         string
	LoteCodigo        string
	MedicamentoCodigo string
}

// String forma legible para mensajes de error y logs.
func (k StockKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.AlmacenID, k.LoteCodigo, k.MedicamentoCodigo)
}

// Less orden total de claves; define el orden de bloqueo de filas.
func (k StockKey) Less(o StockKey) bool {
	if k.AlmacenID != o.AlmacenID {
		return k.AlmacenID < o.AlmacenID
	}
	if k.LoteCodigo != o.LoteCodigo {
		return k.LoteCodigo < o.LoteCodigo
	}
	return k.MedicamentoCodigo < o.MedicamentoCodigo
}

// StockEntry cantidad disponible de un lote en un almacén. Cantidad >= 0 siempre.
type StockEntry struct {
	StockKey
	Cantidad  int64
	UpdatedAt time.Time
}
