package entity

import "time"

// EstadoSolicitud estado del ciclo de vida de una solicitud.
type EstadoSolicitud string

// Estados de la solicitud.
const (
	EstadoPendiente  EstadoSolicitud = "PENDIENTE"
	EstadoEnRevision EstadoSolicitud = "EN_REVISION"
	EstadoAprobada   EstadoSolicitud = "APROBADA"
	EstadoRechazada  EstadoSolicitud = "RECHAZADA"
	EstadoIncompleta EstadoSolicitud = "INCOMPLETA"
	EstadoDespachada EstadoSolicitud = "DESPACHADA"
	EstadoCancelada  EstadoSolicitud = "CANCELADA"
)

// TipoDocumento variantes admitidas de documentos adjuntos.
type TipoDocumento string

const (
	DocumentoReceta         TipoDocumento = "receta"
	DocumentoInformeMedico  TipoDocumento = "informe_medico"
	DocumentoIdentificacion TipoDocumento = "identificacion"
	DocumentoOtro           TipoDocumento = "otro"
)

// Documento adjunto de una solicitud (validado en el borde, nunca opaco).
type Documento struct {
	Tipo   TipoDocumento `json:"tipo"`
	Nombre string        `json:"nombre"`
	URL    string        `json:"url"`
}

// Solicitud de donación de medicamentos.
type Solicitud struct {
	ID            int64
	SolicitanteID string // persona/usuario que solicita
	TipoSolicitud string
	CentroMedico  string
	Patologia     string
	Documentos    []Documento
	Estado        EstadoSolicitud
	Observaciones string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SolicitudHistorial cambio de estado registrado por el flujo de revisión.
type SolicitudHistorial struct {
	SolicitudID    int64
	EstadoAnterior EstadoSolicitud
	EstadoNuevo    EstadoSolicitud
	Observaciones  string
	UsuarioID      string
	CreatedAt      time.Time
}

// Despacho marca la entrega física de lo asignado (fuera del núcleo salvo su existencia).
type Despacho struct {
	SolicitudID   int64
	UsuarioID     string
	FechaDespacho time.Time
}
