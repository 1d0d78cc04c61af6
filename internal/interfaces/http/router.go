package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/donaciones-api/internal/application/inventory"
	"github.com/jhoicas/donaciones-api/internal/application/lote"
	"github.com/jhoicas/donaciones-api/internal/application/solicitud"
	"github.com/jhoicas/donaciones-api/pkg/jwt"
	"github.com/jhoicas/donaciones-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LoteUC       *lote.UseCase
	StockUC      *inventory.StockLedgerUseCase
	AllocationUC *inventory.AllocationUseCase
	PDFUC        *inventory.PDFUseCase
	SolicitudUC  *solicitud.UseCase
	JWTSecret    string
	JWTIssuer    string
	Logger       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return ok(c, fiber.StatusOK, fiber.Map{"status": "ok"})
	})

	// Todo /api requiere Bearer Token; la lectura está abierta a cualquier rol.
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleRevisor, jwt.RoleOperador)
	inventario := RequireRole(jwt.RoleAdmin, jwt.RoleOperador)
	revision := RequireRole(jwt.RoleAdmin, jwt.RoleRevisor)

	// Lotes
	lotes := api.Group("/lotes")
	loteHandler := NewLoteHandler(deps.LoteUC, deps.Logger)
	lotes.Post("/", inventario, loteHandler.Create)
	lotes.Get("/", anyRole, loteHandler.List)
	lotes.Get("/sugerencia", anyRole, loteHandler.Suggest)
	lotes.Get("/:codigo", anyRole, loteHandler.GetByCode)

	// Stock
	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.StockUC, deps.Logger)
	stock.Get("/", anyRole, stockHandler.Get)
	stock.Post("/ajustes", inventario, stockHandler.Adjust)
	stock.Put("/cantidad", inventario, stockHandler.SetQuantity)
	stock.Get("/consolidado", anyRole, stockHandler.Consolidated)
	stock.Get("/movimientos", anyRole, stockHandler.Movements)

	// Solicitudes y detalle
	solicitudes := api.Group("/solicitudes")
	solHandler := NewSolicitudHandler(deps.SolicitudUC, deps.AllocationUC, deps.PDFUC, deps.Logger)
	solicitudes.Post("/", anyRole, solHandler.Create)
	solicitudes.Get("/", anyRole, solHandler.List)
	solicitudes.Get("/:id", anyRole, solHandler.Get)
	solicitudes.Patch("/:id/estado", revision, solHandler.Transition)
	solicitudes.Get("/:id/historial", anyRole, solHandler.History)
	solicitudes.Get("/:id/detalle", anyRole, solHandler.GetDetalle)
	solicitudes.Patch("/:id/detalle", anyRole, solHandler.ReplaceDetalle)
	solicitudes.Delete("/:id/detalle", anyRole, solHandler.ClearDetalle)
	solicitudes.Get("/:id/detalle/pdf", anyRole, solHandler.DetallePDF)
}
