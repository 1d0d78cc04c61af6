package dto

import "time"

// DocumentoDTO documento adjunto tipado.
type DocumentoDTO struct {
	Tipo   string `json:"tipo"`
	Nombre string `json:"nombre"`
	URL    string `json:"url"`
}

// CreateSolicitudRequest body para POST /api/solicitudes.
type CreateSolicitudRequest struct {
	SolicitanteID string         `json:"solicitante_id"`
	TipoSolicitud string         `json:"tipo_solicitud"`
	CentroMedico  string         `json:"centro_medico"`
	Patologia     string         `json:"patologia"`
	Documentos    []DocumentoDTO `json:"documentos"`
	Observaciones string         `json:"observaciones"`
}

// TransitionRequest body para PATCH /api/solicitudes/:id/estado.
// EstadoActual es el estado que el cliente leyó; si ya cambió, la transición falla con 422.
type TransitionRequest struct {
	Estado        string `json:"estado" validate:"required"`
	EstadoActual  string `json:"estado_actual" validate:"required"`
	Observaciones string `json:"observaciones"`
}

// SolicitudResponse salida de una solicitud.
type SolicitudResponse struct {
	ID                int64          `json:"id"`
	SolicitanteID     string         `json:"solicitante_id"`
	TipoSolicitud     string         `json:"tipo_solicitud"`
	CentroMedico      string         `json:"centro_medico"`
	Patologia         string         `json:"patologia"`
	Documentos        []DocumentoDTO `json:"documentos"`
	Estado            string         `json:"estado"`
	Observaciones     string         `json:"observaciones"`
	SiguientesEstados []string       `json:"siguientes_estados"`
	Despacho          *DespachoDTO   `json:"despacho,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// DespachoDTO presencia del despacho de una solicitud.
type DespachoDTO struct {
	UsuarioID     string    `json:"usuario_id"`
	FechaDespacho time.Time `json:"fecha_despacho"`
}

// SolicitudListResponse lista paginada.
type SolicitudListResponse struct {
	Data       []SolicitudResponse `json:"data"`
	Pagination Pagination          `json:"pagination"`
}

// HistorialResponse cambio de estado.
type HistorialResponse struct {
	EstadoAnterior string    `json:"estado_anterior"`
	EstadoNuevo    string    `json:"estado_nuevo"`
	Observaciones  string    `json:"observaciones"`
	UsuarioID      string    `json:"usuario_id"`
	CreatedAt      time.Time `json:"created_at"`
}
