package entity

// Medicamento catálogo de medicamentos (mantenido por un servicio externo).
type Medicamento struct {
	Codigo       string
	Nombre       string
	Presentacion string
}
