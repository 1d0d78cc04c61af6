package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/donaciones-api/internal/application/dto"
	"github.com/jhoicas/donaciones-api/internal/application/lote"
	"github.com/jhoicas/donaciones-api/pkg/logger"
)

// LoteHandler maneja las peticiones HTTP del registro de lotes (protegido).
type LoteHandler struct {
	uc  *lote.UseCase
	log *logger.Logger
}

// NewLoteHandler construye el handler.
func NewLoteHandler(uc *lote.UseCase, log *logger.Logger) *LoteHandler {
	return &LoteHandler{uc: uc, log: log.Component("http")}
}

// Create godoc
// @Summary      Registrar lote
// @Description  El código debe seguir LOT-YYYYMMDD-NNN y el vencimiento ser posterior a la fabricación.
// @Tags         lotes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateLoteRequest  true  "codigo, medicamento_codigo, fecha_fabricacion, fecha_vencimiento"
// @Success      201   {object}  dto.Envelope{data=dto.LoteResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/lotes [post]
func (h *LoteHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLoteRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.RegisterLot(c.Context(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// List godoc
// @Summary      Listar lotes
// @Tags         lotes
// @Security     Bearer
// @Produce      json
// @Param        medicamento  query     string  false  "Código de medicamento"
// @Param        page         query     int     false  "Página (1..)"
// @Param        limit        query     int     false  "Tamaño de página (máx. 100)"
// @Success      200          {object}  dto.Envelope{data=dto.LoteListResponse}
// @Router       /api/lotes [get]
func (h *LoteHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.List(c.Context(), c.Query("medicamento"), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Suggest godoc
// @Summary      Sugerir código de lote para hoy
// @Description  No reserva el código: dos llamadas con la misma secuencia devuelven lo mismo.
// @Tags         lotes
// @Security     Bearer
// @Produce      json
// @Param        secuencia  query     int  false  "Secuencia 1..999 (por defecto 1)"
// @Success      200        {object}  dto.Envelope{data=dto.SuggestLoteResponse}
// @Failure      400        {object}  dto.Envelope
// @Router       /api/lotes/sugerencia [get]
func (h *LoteHandler) Suggest(c *fiber.Ctx) error {
	out, err := h.uc.SuggestNextCode(c.QueryInt("secuencia", 1))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// GetByCode godoc
// @Summary      Obtener lote
// @Tags         lotes
// @Security     Bearer
// @Produce      json
// @Param        codigo  path      string  true  "Código del lote"
// @Success      200     {object}  dto.Envelope{data=dto.LoteResponse}
// @Failure      404     {object}  dto.Envelope
// @Router       /api/lotes/{codigo} [get]
func (h *LoteHandler) GetByCode(c *fiber.Ctx) error {
	out, err := h.uc.GetByCode(c.Context(), c.Params("codigo"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}
