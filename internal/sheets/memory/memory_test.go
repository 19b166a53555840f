package memory

import (
	"context"
	"testing"

	"parkrent/internal/core"
	"parkrent/internal/sheets"
)

func TestAppendLedgerRow(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.AppendLedgerRow(ctx, sheets.LedgerRow{
		PaymentID:   1,
		ContractID:  2,
		PaymentDate: core.NewDate(2024, 1, 20),
		Owner:       "Nguyễn Văn An",
		PlateNumber: "29A-123.45",
		Months:      "Tháng 1/2024",
		Amount:      3_000_000,
		Method:      core.MethodCash,
	})
	if err != nil {
		t.Fatalf("AppendLedgerRow: %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}

	rows := s.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Owner != "Nguyễn Văn An" || rows[0].Amount != 3_000_000 {
		t.Errorf("row = %+v", rows[0])
	}

	// Rows returns a copy.
	rows[0].Amount = 0
	if s.Rows()[0].Amount != 3_000_000 {
		t.Error("Rows must not expose internal state")
	}
}
