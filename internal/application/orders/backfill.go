package orders

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/domain/lifecycle"
)

// DefaultBackfillBatch tamaño de página por defecto del backfill.
const DefaultBackfillBatch = 100

// BackfillInvoiceIDs asigna invoice id a las órdenes que no lo tienen (datos previos a
// la asignación automática o colisiones). Es idempotente: una orden que ya tiene id
// nunca se modifica. Las órdenes que no se pueden asignar se omiten y el recorrido
// avanza el offset en la cantidad de omitidas, así cada página trae órdenes nuevas.
func (uc *UseCase) BackfillInvoiceIDs(ctx context.Context, batch int) (dto.BackfillResult, error) {
	if batch <= 0 {
		batch = DefaultBackfillBatch
	}
	ctx, span := uc.tracer.Start(ctx, "orders.BackfillInvoiceIDs")
	var res dto.BackfillResult
	var err error
	defer func() { finishSpan(span, err) }()

	for {
		if err = ctx.Err(); err != nil {
			return res, err
		}
		page, lErr := uc.orderRepo.ListMissingInvoice(ctx, batch, res.Skipped)
		if lErr != nil {
			err = fmt.Errorf("listar órdenes sin invoice id: %w", lErr)
			return res, err
		}
		if len(page) == 0 {
			break
		}
		for _, o := range page {
			res.Scanned++
			invoiceID, idErr := lifecycle.InvoiceID(o.ID)
			if idErr != nil {
				uc.log.Warn().Err(idErr).Str("order_id", o.ID).Msg("backfill: id de orden no apto para invoice id")
				res.Skipped++
				continue
			}
			ok, aErr := uc.orderRepo.AssignInvoiceID(ctx, o.ID, invoiceID)
			if aErr != nil {
				err = fmt.Errorf("asignar invoice id a %s: %w", o.ID, aErr)
				return res, err
			}
			if !ok {
				uc.log.Warn().Str("order_id", o.ID).Str("invoice_id", invoiceID).Msg("backfill: invoice id en uso")
				res.Skipped++
				continue
			}
			res.Assigned++
		}
		uc.log.Debug().Int("scanned", res.Scanned).Int("assigned", res.Assigned).Msg("backfill: página procesada")
	}

	uc.log.Info().
		Int("scanned", res.Scanned).
		Int("assigned", res.Assigned).
		Int("skipped", res.Skipped).
		Msg("backfill de invoice ids terminado")
	return res, nil
}
