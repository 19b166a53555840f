package services

import (
	"context"
	"fmt"
	"time"

	"parkrent/internal/core"
	"parkrent/internal/storage"
)

// reconcileContract reloads the full payment history, rederives the
// contract's billing state and persists it. Callers run it inside the same
// transaction as the mutation that made the state stale.
func reconcileContract(ctx context.Context, q *storage.Queries, contractID int64, today time.Time) (core.ReconcileResult, error) {
	contract, err := q.GetContract(ctx, contractID)
	if err != nil {
		return core.ReconcileResult{}, err
	}

	history, err := q.ListPayments(ctx, contractID)
	if err != nil {
		return core.ReconcileResult{}, fmt.Errorf("load history: %w", err)
	}

	result := core.Reconcile(contract, history, today)
	if err := q.UpdateContractDerived(ctx, contractID, result); err != nil {
		return core.ReconcileResult{}, fmt.Errorf("persist derived fields: %w", err)
	}
	return result, nil
}
