package dto

import "time"

// CreateLoteRequest body para POST /api/lotes. Fechas en formato YYYY-MM-DD.
type CreateLoteRequest struct {
	Codigo            string `json:"codigo"`
	MedicamentoCodigo string `json:"medicamento_codigo"`
	FechaFabricacion  string `json:"fecha_fabricacion"`
	FechaVencimiento  string `json:"fecha_vencimiento"`
}

// LoteResponse salida de un lote.
type LoteResponse struct {
	Codigo            string    `json:"codigo"`
	MedicamentoCodigo string    `json:"medicamento_codigo"`
	FechaFabricacion  string    `json:"fecha_fabricacion"`
	FechaVencimiento  string    `json:"fecha_vencimiento"`
	CreatedAt         time.Time `json:"created_at"`
}

// LoteListResponse lista paginada de lotes.
type LoteListResponse struct {
	Data       []LoteResponse `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// SuggestLoteResponse código sugerido para un nuevo lote.
type SuggestLoteResponse struct {
	Codigo string `json:"codigo"`
}
