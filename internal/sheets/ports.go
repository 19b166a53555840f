package sheets

import (
	"context"

	"parkrent/internal/core"
)

// LedgerRow is one line of the external bookkeeping ledger. It is a
// flattened, display-ready projection of a payment and its contract.
type LedgerRow struct {
	PaymentID   int64
	ContractID  int64
	PaymentDate core.Date
	Owner       string
	PlateNumber string
	Months      string
	Amount      int64
	Method      string
	Notes       string
}

// RowAppender is the outbound port for the ledger spreadsheet.
type RowAppender interface {
	AppendLedgerRow(ctx context.Context, row LedgerRow) (rowRef string, err error)
}
