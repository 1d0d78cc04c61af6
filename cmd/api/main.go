package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/donaciones-api/docs"
	"github.com/jhoicas/donaciones-api/internal/application/inventory"
	"github.com/jhoicas/donaciones-api/internal/application/lote"
	"github.com/jhoicas/donaciones-api/internal/application/ports"
	"github.com/jhoicas/donaciones-api/internal/application/solicitud"
	"github.com/jhoicas/donaciones-api/internal/domain/entity"
	"github.com/jhoicas/donaciones-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/donaciones-api/internal/infrastructure/pdf"
	"github.com/jhoicas/donaciones-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/donaciones-api/internal/interfaces/http"
	"github.com/jhoicas/donaciones-api/pkg/config"
	"github.com/jhoicas/donaciones-api/pkg/logger"
)

// @title                       Donaciones API
// @version                     1.0
// @description                 Solicitudes de medicamentos donados, lotes y stock por almacén.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	var txRunner ports.TxRunner
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		store := memory.NewStore()
		if cfg.Storage.SeedDemo {
			seedDemo(store)
			log.Info().Msg("catálogo de demostración cargado")
		}
		txRunner = store
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool)
	}

	loteUC := lote.NewUseCase(txRunner, log)
	stockUC := inventory.NewStockLedgerUseCase(txRunner, log)
	allocationUC := inventory.NewAllocationUseCase(txRunner, log)
	// PDF: lista de alistamiento para bodega
	pdfUC := inventory.NewPDFUseCase(txRunner, infrapdf.NewMarotoPDFGenerator())
	solicitudUC := solicitud.NewUseCase(txRunner, allocationUC, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Donaciones API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		LoteUC:       loteUC,
		StockUC:      stockUC,
		AllocationUC: allocationUC,
		PDFUC:        pdfUC,
		SolicitudUC:  solicitudUC,
		JWTSecret:    cfg.JWT.Secret,
		JWTIssuer:    cfg.JWT.Issuer,
		Logger:       log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// seedDemo catálogo mínimo para STORAGE_DRIVER=memory.
func seedDemo(store *memory.Store) {
	for _, m := range []entity.Medicamento{
		{Codigo: "MED-001", Nombre: "Acetaminofén 500 mg"},
		{Codigo: "MED-002", Nombre: "Losartán 50 mg"},
		{Codigo: "MED-003", Nombre: "Metformina 850 mg"},
	} {
		store.SeedMedicamento(m)
	}
	for _, a := range []entity.Almacen{
		{ID: "ALM-CENTRAL", Nombre: "Bodega Central"},
		{ID: "ALM-NORTE", Nombre: "Bodega Norte"},
	} {
		store.SeedAlmacen(a)
	}
}
