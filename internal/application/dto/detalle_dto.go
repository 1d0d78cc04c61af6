package dto

// DetalleLineRequest línea entrante de asignación.
type DetalleLineRequest struct {
	AlmacenID         string `json:"almacen_id"`
	LoteCodigo        string `json:"lote_codigo"`
	MedicamentoCodigo string `json:"medicamento_codigo"`
	Cantidad          int64  `json:"cantidad"`
	DosisIndicada     string `json:"dosis_indicada"`
	TiempoTratamiento string `json:"tiempo_tratamiento"`
}

// ReplaceDetalleRequest body para PATCH /api/solicitudes/:id/detalle (reemplaza el conjunto completo).
type ReplaceDetalleRequest struct {
	Lineas []DetalleLineRequest `json:"lineas"`
}

// DetalleLineResponse línea enriquecida con datos de lote, medicamento y almacén.
type DetalleLineResponse struct {
	AlmacenID         string `json:"almacen_id"`
	AlmacenNombre     string `json:"almacen_nombre"`
	LoteCodigo        string `json:"lote_codigo"`
	FechaFabricacion  string `json:"fecha_fabricacion"`
	FechaVencimiento  string `json:"fecha_vencimiento"`
	MedicamentoCodigo string `json:"medicamento_codigo"`
	MedicamentoNombre string `json:"medicamento_nombre"`
	Cantidad          int64  `json:"cantidad"`
	DosisIndicada     string `json:"dosis_indicada"`
	TiempoTratamiento string `json:"tiempo_tratamiento"`
}

// DetalleListResponse conjunto de asignaciones de una solicitud.
type DetalleListResponse struct {
	SolicitudID   int64                 `json:"solicitud_id"`
	Estado        string                `json:"estado"`
	Lineas        []DetalleLineResponse `json:"lineas"`
	TotalUnidades int64                 `json:"total_unidades"`
}
