package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/donaciones-api/internal/application/dto"
	"github.com/jhoicas/donaciones-api/internal/application/inventory"
	"github.com/jhoicas/donaciones-api/internal/domain/repository"
	"github.com/jhoicas/donaciones-api/pkg/logger"
)

// StockHandler maneja las peticiones HTTP del libro de stock (protegido).
type StockHandler struct {
	uc  *inventory.StockLedgerUseCase
	log *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockLedgerUseCase, log *logger.Logger) *StockHandler {
	return &StockHandler{uc: uc, log: log.Component("http")}
}

// Get godoc
// @Summary      Stock disponible de una clave
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        almacen_id   query     string  true  "Almacén"
// @Param        lote         query     string  true  "Código de lote"
// @Param        medicamento  query     string  true  "Código de medicamento"
// @Success      200          {object}  dto.Envelope{data=dto.StockEntryResponse}
// @Failure      400          {object}  dto.Envelope
// @Router       /api/stock [get]
func (h *StockHandler) Get(c *fiber.Ctx) error {
	var in dto.StockKeyRequest
	if err := c.QueryParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Available(c.Context(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Adjust godoc
// @Summary      Ajustar stock (delta con signo)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.AdjustStockRequest  true  "almacen_id, lote_codigo, medicamento_codigo, delta, motivo"
// @Success      200   {object}  dto.Envelope{data=dto.StockEntryResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/stock/ajustes [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Adjust(c.Context(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// SetQuantity godoc
// @Summary      Fijar cantidad (conteo físico)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.SetStockRequest  true  "almacen_id, lote_codigo, medicamento_codigo, cantidad, motivo"
// @Success      200   {object}  dto.Envelope{data=dto.StockEntryResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/stock/cantidad [put]
func (h *StockHandler) SetQuantity(c *fiber.Ctx) error {
	var in dto.SetStockRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.SetQuantity(c.Context(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Consolidated godoc
// @Summary      Stock consolidado por medicamento
// @Description  Total por medicamento con desglose por almacén y lote, en orden alfabético.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.Envelope{data=[]dto.ConsolidatedStockDTO}
// @Router       /api/stock/consolidado [get]
func (h *StockHandler) Consolidated(c *fiber.Ctx) error {
	out, err := h.uc.ConsolidatedView(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Movements godoc
// @Summary      Historial de movimientos de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        almacen_id    query     string  false  "Almacén"
// @Param        lote          query     string  false  "Código de lote"
// @Param        medicamento   query     string  false  "Código de medicamento"
// @Param        solicitud_id  query     int     false  "Solicitud"
// @Param        limit         query     int     false  "Máx. 200 (por defecto 50)"
// @Param        offset        query     int     false  "Desplazamiento"
// @Success      200           {object}  dto.Envelope{data=[]dto.StockMovementResponse}
// @Router       /api/stock/movimientos [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	f := repository.StockMovementFilter{
		AlmacenID:         c.Query("almacen_id"),
		LoteCodigo:        c.Query("lote"),
		MedicamentoCodigo: c.Query("medicamento"),
		Limit:             c.QueryInt("limit", 50),
		Offset:            c.QueryInt("offset", 0),
	}
	if sid := int64(c.QueryInt("solicitud_id", 0)); sid > 0 {
		f.SolicitudID = &sid
	}
	out, err := h.uc.ListMovements(c.Context(), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}
