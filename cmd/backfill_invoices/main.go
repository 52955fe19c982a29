// Comando backfill_invoices asigna invoice ids a las órdenes antiguas que no lo tienen.
//
// Uso:
//
//	STORE_DRIVER=postgres DATABASE_URL=... go run ./cmd/backfill_invoices -batch 500
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/pos-ledger/internal/app"
	"github.com/jhoicas/pos-ledger/pkg/config"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	batch := flag.Int("batch", cfg.Store.BackfillBatch, "órdenes por lote")
	flag.Parse()

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("backfill")
	if cfg.Store.Driver != config.DriverPostgres {
		log.Warn().Str("store", cfg.Store.Driver).Msg("el backfill sobre memoria no tiene efecto persistente")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := app.NewBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer backend.Close()

	res, err := backend.Orders.BackfillInvoiceIDs(ctx, *batch)
	if err != nil {
		log.Error().Err(err).Msg("backfill interrumpido")
		backend.Close()
		os.Exit(1)
	}
	log.Info().
		Int("scanned", res.Scanned).
		Int("assigned", res.Assigned).
		Int("skipped", res.Skipped).
		Msg("backfill terminado")
}
