package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkrent/internal/core"
	"parkrent/internal/storage"
)

type fakePublisher struct {
	recorded []int64
}

func (f *fakePublisher) PublishPaymentRecorded(ctx context.Context, paymentID, contractID int64) error {
	f.recorded = append(f.recorded, paymentID)
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestServices(t *testing.T, today time.Time) (*ContractService, *PaymentService, *fakePublisher) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "parkrent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	pub := &fakePublisher{}
	cs := NewContractService(repo, pub)
	cs.now = fixedClock(today)
	ps := NewPaymentService(repo, pub)
	ps.now = fixedClock(today)
	return cs, ps, pub
}

func yearContract() core.Contract {
	return core.Contract{
		Owner:       "Nguyễn Văn An",
		PlateNumber: "29A-123.45",
		StartDate:   core.NewDate(2024, 1, 15),
		EndDate:     core.NewDate(2024, 12, 15),
		MonthlyRate: 3_000_000,
	}
}

func TestCreateContractDerivesInitialState(t *testing.T) {
	cs, _, _ := newTestServices(t, time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))

	created, err := cs.CreateContract(context.Background(), yearContract())
	require.NoError(t, err)

	assert.Equal(t, int64(36_000_000), created.AmountOwed)
	assert.Zero(t, created.MonthsPaid)
	assert.False(t, created.Settled)
}

func TestCreateContractRejectsInvalid(t *testing.T) {
	cs, _, _ := newTestServices(t, time.Now())

	c := yearContract()
	c.Owner = ""
	_, err := cs.CreateContract(context.Background(), c)
	assert.ErrorIs(t, err, core.ErrEmptyOwner)
}

func TestRateIncreaseAppendsSurchargeNote(t *testing.T) {
	today := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	cs, ps, _ := newTestServices(t, today)
	ctx := context.Background()

	created, err := cs.CreateContract(ctx, yearContract())
	require.NoError(t, err)

	_, err = ps.AddPayment(ctx, core.PaymentRecord{
		ContractID:    created.ID,
		PaymentDate:   core.NewDate(2024, 1, 20),
		AmountPaid:    6_000_000,
		MonthsCovered: core.ParseMonthSet("Tháng 1/2024+Tháng 2/2024"),
		PaymentMethod: core.MethodCash,
	})
	require.NoError(t, err)

	created.MonthlyRate = 4_000_000
	updated, err := cs.UpdateContract(ctx, created)
	require.NoError(t, err)

	// 12 months at the new rate minus the 6,000,000 already paid. The two
	// covered months are repriced, which is the 2,000,000 surcharge.
	assert.Equal(t, int64(42_000_000), updated.AmountOwed)

	history, err := ps.ListPayments(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	adj := history[len(history)-1]
	assert.Equal(t, core.MethodAdjustment, adj.PaymentMethod)
	assert.Zero(t, adj.AmountPaid)
	assert.Contains(t, adj.Notes, "phụ thu")
	assert.Equal(t, 2, adj.MonthsCovered.Len())
}

func TestRateDecreaseCreatesPendingRefund(t *testing.T) {
	today := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	cs, ps, _ := newTestServices(t, today)
	ctx := context.Background()

	created, err := cs.CreateContract(ctx, yearContract())
	require.NoError(t, err)

	_, err = ps.AddPayment(ctx, core.PaymentRecord{
		ContractID:    created.ID,
		PaymentDate:   core.NewDate(2024, 1, 20),
		AmountPaid:    6_000_000,
		MonthsCovered: core.ParseMonthSet("Tháng 1/2024+Tháng 2/2024"),
		PaymentMethod: core.MethodBank,
	})
	require.NoError(t, err)

	created.MonthlyRate = 2_000_000
	updated, err := cs.UpdateContract(ctx, created)
	require.NoError(t, err)

	// 24,000,000 liability, 6,000,000 paid, 2,000,000 refunded back.
	assert.Equal(t, int64(20_000_000), updated.AmountOwed)

	history, err := ps.ListPayments(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	refund := history[len(history)-1]
	assert.Equal(t, core.MethodRefund, refund.PaymentMethod)
	assert.Equal(t, int64(-2_000_000), refund.AmountPaid)
	assert.Equal(t, core.RefundPending, refund.RefundStatus)
}

func TestRateChangeWithoutCoverageAddsNothing(t *testing.T) {
	today := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	cs, ps, _ := newTestServices(t, today)
	ctx := context.Background()

	created, err := cs.CreateContract(ctx, yearContract())
	require.NoError(t, err)

	created.MonthlyRate = 4_000_000
	updated, err := cs.UpdateContract(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, int64(48_000_000), updated.AmountOwed)

	history, err := ps.ListPayments(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestDeleteContractRemovesHistory(t *testing.T) {
	today := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	cs, ps, _ := newTestServices(t, today)
	ctx := context.Background()

	created, err := cs.CreateContract(ctx, yearContract())
	require.NoError(t, err)

	p, err := ps.AddPayment(ctx, core.PaymentRecord{
		ContractID:    created.ID,
		PaymentDate:   core.NewDate(2024, 1, 20),
		AmountPaid:    3_000_000,
		MonthsCovered: core.ParseMonthSet("Tháng 1/2024"),
	})
	require.NoError(t, err)

	require.NoError(t, cs.DeleteContract(ctx, created.ID))

	_, err = cs.GetContract(ctx, created.ID)
	assert.ErrorIs(t, err, core.ErrContractNotFound)
	_, err = ps.GetPayment(ctx, p.ID)
	assert.ErrorIs(t, err, core.ErrPaymentNotFound)
}

func TestListContractsOrdersByUrgency(t *testing.T) {
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	cs, ps, _ := newTestServices(t, today)
	ctx := context.Background()

	overdue, err := cs.CreateContract(ctx, yearContract())
	require.NoError(t, err)

	ahead := yearContract()
	ahead.PlateNumber = "30F-567.89"
	paidAhead, err := cs.CreateContract(ctx, ahead)
	require.NoError(t, err)

	_, err = ps.AddPayment(ctx, core.PaymentRecord{
		ContractID:    paidAhead.ID,
		PaymentDate:   core.NewDate(2024, 1, 15),
		AmountPaid:    24_000_000,
		MonthsCovered: core.ParseMonthSet("Tháng 1-8/2024"),
	})
	require.NoError(t, err)

	contracts, err := cs.ListContracts(ctx)
	require.NoError(t, err)
	require.Len(t, contracts, 2)
	assert.Equal(t, overdue.ID, contracts[0].ID)
	assert.Equal(t, paidAhead.ID, contracts[1].ID)
}

func TestRecalculateAll(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cs, _, _ := newTestServices(t, start)
	ctx := context.Background()

	open := core.Contract{
		Owner:       "Trần Thị Bình",
		PlateNumber: "51K-246.80",
		StartDate:   core.NewDate(2024, 1, 1),
		OpenEnded:   true,
		MonthlyRate: 1_000_000,
	}
	created, err := cs.CreateContract(ctx, open)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), created.AmountOwed)

	// Four months later the open-ended liability has grown.
	cs.now = fixedClock(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	n, err := cs.RecalculateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := cs.GetContract(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4_000_000), got.AmountOwed)
}
