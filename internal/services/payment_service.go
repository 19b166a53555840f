package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"parkrent/internal/core"
	"parkrent/internal/storage"
)

// PaymentService owns the payment history mutation protocol: every add, edit
// or delete re-reconciles the owning contract in the same transaction.
type PaymentService struct {
	storage   *storage.SQLiteRepository
	publisher EventPublisher
	now       func() time.Time
}

func NewPaymentService(storage *storage.SQLiteRepository, publisher EventPublisher) *PaymentService {
	return &PaymentService{
		storage:   storage,
		publisher: publisher,
		now:       time.Now,
	}
}

// AddPayment appends a payment to a contract's history. The covered-month
// selection must be non-empty; there is no such thing as a payment for no
// months.
func (s *PaymentService) AddPayment(ctx context.Context, p core.PaymentRecord) (core.PaymentRecord, error) {
	if err := p.Validate(); err != nil {
		return core.PaymentRecord{}, err
	}

	var created core.PaymentRecord
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		if _, err := q.GetContract(ctx, p.ContractID); err != nil {
			return err
		}

		var err error
		created, err = q.CreatePayment(ctx, p)
		if err != nil {
			return err
		}

		_, err = reconcileContract(ctx, q, p.ContractID, s.now())
		return err
	})
	if err != nil {
		return core.PaymentRecord{}, fmt.Errorf("add payment: %w", err)
	}

	s.publishRecorded(ctx, created.ID, created.ContractID)

	slog.InfoContext(ctx, "Payment recorded",
		"id", created.ID,
		"contract_id", created.ContractID,
		"amount", created.AmountPaid,
		"months", created.MonthsCovered.Format())
	return created, nil
}

// EditPayment replaces a payment record in full. Partial patching would let
// the months and the amount drift apart.
func (s *PaymentService) EditPayment(ctx context.Context, p core.PaymentRecord) (core.PaymentRecord, error) {
	if err := p.Validate(); err != nil {
		return core.PaymentRecord{}, err
	}

	var updated core.PaymentRecord
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		existing, err := q.GetPayment(ctx, p.ID)
		if err != nil {
			return err
		}
		// The owning contract never changes on edit.
		p.ContractID = existing.ContractID

		if err := q.UpdatePayment(ctx, p); err != nil {
			return err
		}
		updated = p

		_, err = reconcileContract(ctx, q, p.ContractID, s.now())
		return err
	})
	if err != nil {
		return core.PaymentRecord{}, fmt.Errorf("edit payment %d: %w", p.ID, err)
	}

	s.publishRecorded(ctx, updated.ID, updated.ContractID)

	slog.InfoContext(ctx, "Payment edited",
		"id", updated.ID,
		"contract_id", updated.ContractID,
		"amount", updated.AmountPaid)
	return updated, nil
}

// DeletePayment removes a record and restores the contract to the state it
// would have had without it.
func (s *PaymentService) DeletePayment(ctx context.Context, id int64) error {
	var contractID int64
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		existing, err := q.GetPayment(ctx, id)
		if err != nil {
			return err
		}
		contractID = existing.ContractID

		if err := q.DeletePayment(ctx, id); err != nil {
			return err
		}

		_, err = reconcileContract(ctx, q, contractID, s.now())
		return err
	})
	if err != nil {
		return fmt.Errorf("delete payment %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Payment deleted", "id", id, "contract_id", contractID)
	return nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id int64) (core.PaymentRecord, error) {
	return s.storage.Queries().GetPayment(ctx, id)
}

// AllPayments returns every payment record grouped by contract, for report
// building.
func (s *PaymentService) AllPayments(ctx context.Context) (map[int64][]core.PaymentRecord, error) {
	payments, err := s.storage.Queries().ListAllPayments(ctx)
	if err != nil {
		return nil, err
	}
	byContract := make(map[int64][]core.PaymentRecord, len(payments))
	for _, p := range payments {
		byContract[p.ContractID] = append(byContract[p.ContractID], p)
	}
	return byContract, nil
}

func (s *PaymentService) ListPayments(ctx context.Context, contractID int64) ([]core.PaymentRecord, error) {
	if _, err := s.storage.Queries().GetContract(ctx, contractID); err != nil {
		return nil, err
	}
	return s.storage.Queries().ListPayments(ctx, contractID)
}

// MarkRefundFulfilled flips a pending refund to fulfilled. The amount was
// already counted when the refund record was created, so no reconciliation
// runs.
func (s *PaymentService) MarkRefundFulfilled(ctx context.Context, id int64) error {
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		return q.MarkRefundFulfilled(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("mark refund %d fulfilled: %w", id, err)
	}

	slog.InfoContext(ctx, "Refund marked fulfilled", "id", id)
	return nil
}

// CreateSurplusRefund turns a contract's overpayment into a pending refund
// record. It is a no-op error if the contract has no surplus.
func (s *PaymentService) CreateSurplusRefund(ctx context.Context, contractID int64) (core.PaymentRecord, error) {
	var created core.PaymentRecord
	err := s.storage.InTx(ctx, func(q *storage.Queries) error {
		contract, err := q.GetContract(ctx, contractID)
		if err != nil {
			return err
		}
		history, err := q.ListPayments(ctx, contractID)
		if err != nil {
			return err
		}

		result := core.Reconcile(contract, history, s.now())
		if result.Surplus <= 0 {
			return fmt.Errorf("contract %d has no surplus: %w", contractID, core.ErrInvalidAmount)
		}

		created, err = q.CreatePayment(ctx, core.PaymentRecord{
			ContractID:    contractID,
			PaymentDate:   core.DateOf(s.now()),
			AmountPaid:    -result.Surplus,
			MonthsCovered: result.Coverage,
			PaymentMethod: core.MethodRefund,
			RefundStatus:  core.RefundPending,
			Notes:         fmt.Sprintf("Hoàn tiền thừa %s", core.FormatVND(result.Surplus)),
		})
		if err != nil {
			return err
		}

		_, err = reconcileContract(ctx, q, contractID, s.now())
		return err
	})
	if err != nil {
		return core.PaymentRecord{}, fmt.Errorf("create surplus refund: %w", err)
	}

	s.publishRecorded(ctx, created.ID, created.ContractID)

	slog.InfoContext(ctx, "Surplus refund created",
		"id", created.ID,
		"contract_id", created.ContractID,
		"amount", created.AmountPaid)
	return created, nil
}

func (s *PaymentService) publishRecorded(ctx context.Context, paymentID, contractID int64) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Publisher not available, skipping payment recorded message")
		return
	}
	if err := s.publisher.PublishPaymentRecorded(ctx, paymentID, contractID); err != nil {
		// The write already committed; losing the message only delays the
		// external ledger.
		slog.ErrorContext(ctx, "Failed to publish payment recorded message",
			"payment_id", paymentID,
			"contract_id", contractID,
			"error", err)
	}
}
