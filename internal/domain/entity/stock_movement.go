package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovimientoAjuste     = "AJUSTE"     // ajuste manual (delta o conteo)
	MovimientoReserva    = "RESERVA"    // asignación a una solicitud
	MovimientoLiberacion = "LIBERACION" // devolución al inventario desde una solicitud
)

// StockMovement registro de auditoría de cada cambio aplicado a una StockEntry.
type StockMovement struct {
	ID            string
	TransactionID string
	StockKey
	Tipo        string
	Delta       int64 // positivo entra al inventario, negativo sale
	Saldo       int64 // cantidad resultante
	SolicitudID *int64
	Motivo      string
	UsuarioID   string
	CreatedAt   time.Time
}
