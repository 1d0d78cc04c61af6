package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/donaciones-api/internal/application/dto"
	"github.com/jhoicas/donaciones-api/internal/application/inventory"
	"github.com/jhoicas/donaciones-api/internal/application/solicitud"
	"github.com/jhoicas/donaciones-api/pkg/logger"
)

// SolicitudHandler solicitudes, su flujo de revisión y su detalle de asignaciones (protegido).
type SolicitudHandler struct {
	uc    *solicitud.UseCase
	alloc *inventory.AllocationUseCase
	pdf   *inventory.PDFUseCase
	log   *logger.Logger
}

// NewSolicitudHandler construye el handler.
func NewSolicitudHandler(
	uc *solicitud.UseCase,
	alloc *inventory.AllocationUseCase,
	pdf *inventory.PDFUseCase,
	log *logger.Logger,
) *SolicitudHandler {
	return &SolicitudHandler{uc: uc, alloc: alloc, pdf: pdf, log: log.Component("http")}
}

// Create godoc
// @Summary      Crear solicitud
// @Tags         solicitudes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateSolicitudRequest  true  "Datos de la solicitud y documentos adjuntos"
// @Success      201   {object}  dto.Envelope{data=dto.SolicitudResponse}
// @Failure      400   {object}  dto.Envelope
// @Router       /api/solicitudes [post]
func (h *SolicitudHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSolicitudRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.Context(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// List godoc
// @Summary      Listar solicitudes
// @Tags         solicitudes
// @Security     Bearer
// @Produce      json
// @Param        page    query     int     false  "Página (1..)"
// @Param        limit   query     int     false  "Tamaño de página (máx. 100)"
// @Param        estado  query     string  false  "Filtrar por estado"
// @Success      200     {object}  dto.Envelope{data=dto.SolicitudListResponse}
// @Failure      400     {object}  dto.Envelope
// @Router       /api/solicitudes [get]
func (h *SolicitudHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.List(c.Context(), c.Query("estado"), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Get godoc
// @Summary      Obtener solicitud
// @Tags         solicitudes
// @Security     Bearer
// @Produce      json
// @Param        id   path      int  true  "ID de la solicitud"
// @Success      200  {object}  dto.Envelope{data=dto.SolicitudResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /api/solicitudes/{id} [get]
func (h *SolicitudHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Transition godoc
// @Summary      Cambiar estado de la solicitud
// @Description  RECHAZADA y CANCELADA liberan el stock asignado. DESPACHADA exige al menos una línea de detalle.
// @Description  estado_actual es obligatorio (400 si falta); si no coincide con el vigente la transición falla con 422.
// @Tags         solicitudes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      int                    true  "ID de la solicitud"
// @Param        body  body      dto.TransitionRequest  true  "estado destino, estado_actual esperado, observaciones"
// @Success      200   {object}  dto.Envelope{data=dto.SolicitudResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Failure      422   {object}  dto.Envelope
// @Router       /api/solicitudes/{id}/estado [patch]
func (h *SolicitudHandler) Transition(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var in dto.TransitionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Transition(c.Context(), GetUserID(c), id, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// History godoc
// @Summary      Historial de estados
// @Tags         solicitudes
// @Security     Bearer
// @Produce      json
// @Param        id   path      int  true  "ID de la solicitud"
// @Success      200  {object}  dto.Envelope{data=[]dto.HistorialResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /api/solicitudes/{id}/historial [get]
func (h *SolicitudHandler) History(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.History(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// GetDetalle godoc
// @Summary      Detalle de asignaciones
// @Tags         detalle
// @Security     Bearer
// @Produce      json
// @Param        id   path      int  true  "ID de la solicitud"
// @Success      200  {object}  dto.Envelope{data=dto.DetalleListResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /api/solicitudes/{id}/detalle [get]
func (h *SolicitudHandler) GetDetalle(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.alloc.GetAllocations(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// ReplaceDetalle godoc
// @Summary      Reemplazar detalle de asignaciones
// @Description  Reemplaza el conjunto completo: libera lo previo y reserva lo nuevo en una sola operación.
// @Tags         detalle
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      int                        true  "ID de la solicitud"
// @Param        body  body      dto.ReplaceDetalleRequest  true  "Conjunto completo de líneas"
// @Success      200   {object}  dto.Envelope{data=dto.DetalleListResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Failure      422   {object}  dto.Envelope
// @Router       /api/solicitudes/{id}/detalle [patch]
func (h *SolicitudHandler) ReplaceDetalle(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var in dto.ReplaceDetalleRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.alloc.ReplaceAllocations(c.Context(), GetUserID(c), id, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// ClearDetalle godoc
// @Summary      Eliminar detalle de asignaciones
// @Tags         detalle
// @Security     Bearer
// @Produce      json
// @Param        id   path      int  true  "ID de la solicitud"
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Failure      422  {object}  dto.Envelope
// @Router       /api/solicitudes/{id}/detalle [delete]
func (h *SolicitudHandler) ClearDetalle(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	if err := h.alloc.ClearAllocations(c.Context(), GetUserID(c), id); err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"message": "detalle eliminado"})
}

// DetallePDF godoc
// @Summary      Lista de alistamiento en PDF
// @Tags         detalle
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  int  true  "ID de la solicitud"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /api/solicitudes/{id}/detalle/pdf [get]
func (h *SolicitudHandler) DetallePDF(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	pdfBytes, filename, err := h.pdf.AllocationPDF(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
