package worker

import (
	"context"
	"fmt"
	"log/slog"

	"parkrent/internal/amqp"
	"parkrent/internal/sheets"
	"parkrent/internal/storage"
)

// LedgerWorker mirrors payment history rows into the external bookkeeping
// spreadsheet. It always fetches current state from the database, so a
// message that arrives after an edit writes the edited values.
type LedgerWorker struct {
	storage  *storage.SQLiteRepository
	appender sheets.RowAppender
}

func NewLedgerWorker(storage *storage.SQLiteRepository, appender sheets.RowAppender) *LedgerWorker {
	return &LedgerWorker{
		storage:  storage,
		appender: appender,
	}
}

// HandlePaymentRecorded processes one payment-recorded message.
func (w *LedgerWorker) HandlePaymentRecorded(ctx context.Context, msg *amqp.PaymentRecordedMessage) error {
	slog.InfoContext(ctx, "Processing payment recorded message",
		"payment_id", msg.PaymentID,
		"contract_id", msg.ContractID)

	q := w.storage.Queries()

	payment, err := q.GetPayment(ctx, msg.PaymentID)
	if err != nil {
		// The payment may have been deleted before we got here; the ledger
		// only records payments that still exist.
		return fmt.Errorf("get payment %d: %w", msg.PaymentID, err)
	}

	contract, err := q.GetContract(ctx, payment.ContractID)
	if err != nil {
		return fmt.Errorf("get contract %d: %w", payment.ContractID, err)
	}

	rowRef, err := w.appender.AppendLedgerRow(ctx, sheets.LedgerRow{
		PaymentID:   payment.ID,
		ContractID:  contract.ID,
		PaymentDate: payment.PaymentDate,
		Owner:       contract.Owner,
		PlateNumber: contract.PlateNumber,
		Months:      payment.MonthsCovered.Format(),
		Amount:      payment.AmountPaid,
		Method:      payment.PaymentMethod,
		Notes:       payment.Notes,
	})
	if err != nil {
		return fmt.Errorf("append ledger row: %w", err)
	}

	slog.InfoContext(ctx, "Payment mirrored to ledger",
		"payment_id", payment.ID,
		"contract_id", contract.ID,
		"row_ref", rowRef)
	return nil
}
