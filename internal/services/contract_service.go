package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"parkrent/internal/core"
	"parkrent/internal/storage"
)

// ContractService orchestrates contract lifecycle operations. Every write
// ends with a reconciliation pass inside the same transaction, so derived
// billing fields are never stale.
type ContractService struct {
	storage   *storage.SQLiteRepository
	publisher EventPublisher
	now       func() time.Time
}

func NewContractService(storage *storage.SQLiteRepository, publisher EventPublisher) *ContractService {
	return &ContractService{
		storage:   storage,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *ContractService) CreateContract(ctx context.Context, c core.Contract) (core.Contract, error) {
	if err := c.Validate(); err != nil {
		return core.Contract{}, err
	}

	// A fresh contract has no history; its derived fields are the liability
	// at creation time.
	result := core.Reconcile(c, nil, s.now())
	result.Apply(&c)

	var created core.Contract
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		var err error
		created, err = q.CreateContract(ctx, c)
		return err
	})
	if err != nil {
		return core.Contract{}, fmt.Errorf("create contract: %w", err)
	}

	slog.InfoContext(ctx, "Contract created",
		"id", created.ID,
		"owner", created.Owner,
		"plate_number", created.PlateNumber,
		"amount_owed", created.AmountOwed)
	return created, nil
}

// UpdateContract replaces a contract's editable fields. A monthly rate change
// appends an adjustment record to the payment history covering the months
// already paid: a zero-amount surcharge note on an increase, a pending refund
// on a decrease. Reconciliation then reprices everything at the new rate.
func (s *ContractService) UpdateContract(ctx context.Context, c core.Contract) (core.Contract, error) {
	if err := c.Validate(); err != nil {
		return core.Contract{}, err
	}

	var updated core.Contract
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		existing, err := q.GetContract(ctx, c.ID)
		if err != nil {
			return err
		}

		if err := q.UpdateContract(ctx, c); err != nil {
			return err
		}

		if err := s.recordRateChange(ctx, q, existing, c.MonthlyRate); err != nil {
			return err
		}

		if _, err := reconcileContract(ctx, q, c.ID, s.now()); err != nil {
			return err
		}

		updated, err = q.GetContract(ctx, c.ID)
		return err
	})
	if err != nil {
		return core.Contract{}, fmt.Errorf("update contract %d: %w", c.ID, err)
	}

	slog.InfoContext(ctx, "Contract updated",
		"id", updated.ID,
		"amount_owed", updated.AmountOwed,
		"settled", updated.Settled)
	return updated, nil
}

func (s *ContractService) recordRateChange(ctx context.Context, q *storage.Queries, existing core.Contract, newRate int64) error {
	if newRate == existing.MonthlyRate {
		return nil
	}
	months := existing.Coverage.Len()
	if months == 0 {
		// Nothing was paid at the old rate, so there is nothing to settle.
		return nil
	}

	diff := (newRate - existing.MonthlyRate) * int64(months)
	record := core.PaymentRecord{
		ContractID:    existing.ID,
		PaymentDate:   core.DateOf(s.now()),
		MonthsCovered: existing.Coverage,
		PaymentMethod: core.MethodAdjustment,
	}
	if diff > 0 {
		// The repriced liability already includes the surcharge; this record
		// only documents it in the history.
		record.AmountPaid = 0
		record.Notes = fmt.Sprintf("Tăng giá %s, phụ thu %s cho %d tháng đã đóng",
			core.FormatVND(newRate), core.FormatVND(diff), months)
	} else {
		record.AmountPaid = diff
		record.PaymentMethod = core.MethodRefund
		record.RefundStatus = core.RefundPending
		record.Notes = fmt.Sprintf("Giảm giá %s, hoàn %s cho %d tháng đã đóng",
			core.FormatVND(newRate), core.FormatVND(-diff), months)
	}

	created, err := q.CreatePayment(ctx, record)
	if err != nil {
		return fmt.Errorf("record rate change: %w", err)
	}

	slog.InfoContext(ctx, "Rate change recorded",
		"contract_id", existing.ID,
		"old_rate", existing.MonthlyRate,
		"new_rate", newRate,
		"adjustment", created.AmountPaid,
		"months", months)
	return nil
}

// DeleteContract removes a contract and, through the schema's cascade, its
// entire payment history.
func (s *ContractService) DeleteContract(ctx context.Context, id int64) error {
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		return q.DeleteContract(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete contract %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Contract deleted", "id", id)
	return nil
}

func (s *ContractService) GetContract(ctx context.Context, id int64) (core.Contract, error) {
	return s.storage.Queries().GetContract(ctx, id)
}

// ListContracts returns all contracts ordered by payment urgency: nearest
// due date first, then unknown, expired and settled contracts.
func (s *ContractService) ListContracts(ctx context.Context) ([]core.Contract, error) {
	contracts, err := s.storage.Queries().ListContracts(ctx)
	if err != nil {
		return nil, err
	}
	core.SortContractsByDue(contracts, s.now())
	return contracts, nil
}

// RecalculateAll rederives the billing state of every contract. Open-ended
// liabilities grow with the calendar, so this runs periodically and on
// demand.
func (s *ContractService) RecalculateAll(ctx context.Context) (int, error) {
	contracts, err := s.storage.Queries().ListContracts(ctx)
	if err != nil {
		return 0, fmt.Errorf("list contracts: %w", err)
	}

	today := s.now()
	count := 0
	for _, c := range contracts {
		err := s.storage.InTx(ctx, func(q *storage.Queries) error {
			_, err := reconcileContract(ctx, q, c.ID, today)
			return err
		})
		if err != nil {
			return count, fmt.Errorf("recalculate contract %d: %w", c.ID, err)
		}
		count++
	}

	slog.InfoContext(ctx, "Recalculated all contracts", "count", count)
	return count, nil
}

// Close releases the storage handle and the publisher connection if it owns
// one.
func (s *ContractService) Close() error {
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			return fmt.Errorf("close storage: %w", err)
		}
	}
	return nil
}
