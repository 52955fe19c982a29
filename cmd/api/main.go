package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/pos-ledger/docs"
	"github.com/jhoicas/pos-ledger/internal/app"
	httpRouter "github.com/jhoicas/pos-ledger/internal/interfaces/http"
	"github.com/jhoicas/pos-ledger/pkg/config"
	"github.com/jhoicas/pos-ledger/pkg/logger"
	"github.com/jhoicas/pos-ledger/pkg/telemetry"
)

// @title        POS Ledger API
// @version      1.0
// @description  Ventas de mostrador con control de stock, SKUs canónicos y estadísticas.
// @BasePath     /
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
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Bool("redis", cfg.Redis.Enabled()).
		Msg("iniciando aplicación")

	ctx := context.Background()
	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Env,
		Exporter:    cfg.Telemetry.Exporter,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	backend, err := app.NewBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer backend.Close()

	server := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	server.Use(recover.New())
	server.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	server.Use(httpRouter.TracingMiddleware(cfg.App.Name))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, statErr := os.Stat(cfg.HTTP.DocsFile); statErr == nil {
		server.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.DocsFile,
			Path:     "docs",
			Title:    "POS Ledger API",
		}))
	} else {
		log.Warn().Str("file", cfg.HTTP.DocsFile).Msg("swagger.json no encontrado; /docs deshabilitado")
	}

	httpRouter.Router(server, httpRouter.RouterDeps{
		OrdersUC:        backend.Orders,
		ReceiptUC:       backend.Receipts,
		SKUUC:           backend.SKUs,
		ProductUC:       backend.Products,
		DashboardUC:     backend.Dashboard,
		ReplenishmentUC: backend.Replenishment,
		HealthChecks:    backend.HealthChecks,
		BackfillBatch:   cfg.Store.BackfillBatch,
		JWTSecret:       cfg.JWT.Secret,
	})

	go func() {
		if err := server.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("vaciar trazas")
	}

	log.Info().Msg("aplicación detenida")
}
