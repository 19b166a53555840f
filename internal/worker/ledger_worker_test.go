package worker

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkrent/internal/amqp"
	"parkrent/internal/core"
	"parkrent/internal/sheets/memory"
	"parkrent/internal/storage"
)

func TestHandlePaymentRecorded(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "parkrent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	ctx := context.Background()
	q := repo.Queries()

	contract, err := q.CreateContract(ctx, core.Contract{
		Owner:       "Nguyễn Văn An",
		PlateNumber: "29A-123.45",
		StartDate:   core.NewDate(2024, 1, 15),
		EndDate:     core.NewDate(2024, 12, 15),
		MonthlyRate: 3_000_000,
	})
	require.NoError(t, err)

	payment, err := q.CreatePayment(ctx, core.PaymentRecord{
		ContractID:    contract.ID,
		PaymentDate:   core.NewDate(2024, 1, 20),
		AmountPaid:    6_000_000,
		MonthsCovered: core.ParseMonthSet("Tháng 1/2024+Tháng 2/2024"),
		PaymentMethod: core.MethodCash,
	})
	require.NoError(t, err)

	store := memory.New()
	w := NewLedgerWorker(repo, store)

	err = w.HandlePaymentRecorded(ctx, amqp.NewPaymentRecordedMessage(payment.ID, contract.ID))
	require.NoError(t, err)

	rows := store.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, payment.ID, rows[0].PaymentID)
	assert.Equal(t, "Nguyễn Văn An", rows[0].Owner)
	assert.Equal(t, "29A-123.45", rows[0].PlateNumber)
	assert.Equal(t, "Tháng 1/2024+Tháng 2/2024", rows[0].Months)
	assert.Equal(t, int64(6_000_000), rows[0].Amount)
}

func TestHandlePaymentRecordedMissingPayment(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "parkrent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	w := NewLedgerWorker(repo, memory.New())

	err = w.HandlePaymentRecorded(context.Background(), amqp.NewPaymentRecordedMessage(42, 1))
	assert.ErrorIs(t, err, core.ErrPaymentNotFound)
}
