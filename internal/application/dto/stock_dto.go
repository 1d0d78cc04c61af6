package dto

import "time"

// StockKeyRequest identifica una entrada de stock.
type StockKeyRequest struct {
	AlmacenID         string `json:"almacen_id" query:"almacen_id"`
	LoteCodigo        string `json:"lote_codigo" query:"lote"`
	MedicamentoCodigo string `json:"medicamento_codigo" query:"medicamento"`
}

// AdjustStockRequest body para POST /api/stock/ajustes (delta con signo).
type AdjustStockRequest struct {
	StockKeyRequest
	Delta  int64  `json:"delta"`
	Motivo string `json:"motivo"`
}

// SetStockRequest body para PUT /api/stock/cantidad (conteo físico, valor absoluto).
type SetStockRequest struct {
	StockKeyRequest
	Cantidad int64  `json:"cantidad"`
	Motivo   string `json:"motivo"`
}

// StockEntryResponse salida de una entrada de stock.
type StockEntryResponse struct {
	AlmacenID         string     `json:"almacen_id"`
	LoteCodigo        string     `json:"lote_codigo"`
	MedicamentoCodigo string     `json:"medicamento_codigo"`
	Cantidad          int64      `json:"cantidad"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

// ConsolidatedItemDTO desglose por almacén y lote.
type ConsolidatedItemDTO struct {
	AlmacenID     string `json:"almacen_id"`
	AlmacenNombre string `json:"almacen_nombre"`
	LoteCodigo    string `json:"lote_codigo"`
	Cantidad      int64  `json:"cantidad"`
}

// ConsolidatedStockDTO total por medicamento.
type ConsolidatedStockDTO struct {
	MedicamentoCodigo string                `json:"medicamento_codigo"`
	MedicamentoNombre string                `json:"medicamento_nombre"`
	Total             int64                 `json:"total"`
	Desglose          []ConsolidatedItemDTO `json:"desglose"`
}

// StockMovementResponse registro de auditoría.
type StockMovementResponse struct {
	ID                string    `json:"id"`
	TransactionID     string    `json:"transaction_id"`
	AlmacenID         string    `json:"almacen_id"`
	LoteCodigo        string    `json:"lote_codigo"`
	MedicamentoCodigo string    `json:"medicamento_codigo"`
	Tipo              string    `json:"tipo"`
	Delta             int64     `json:"delta"`
	Saldo             int64     `json:"saldo"`
	SolicitudID       *int64    `json:"solicitud_id,omitempty"`
	Motivo            string    `json:"motivo,omitempty"`
	UsuarioID         string    `json:"usuario_id"`
	CreatedAt         time.Time `json:"created_at"`
}
