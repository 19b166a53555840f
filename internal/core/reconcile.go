package core

import (
	"time"
)

// ReconcileResult carries the derived contract fields produced by one
// reconciliation pass.
type ReconcileResult struct {
	Coverage   MonthSet
	MonthsPaid int
	AmountOwed int64
	Settled    bool

	// Surplus is the overpayment clamped out of AmountOwed, if any. It is
	// reported rather than stored; turning it into a pending refund record
	// is an explicit operation, not a side effect of reconciliation.
	Surplus int64
}

// Liability is the contract's theoretical total at the current monthly rate:
// rate times the number of contract months for fixed terms (inclusive,
// minimum one), or rate times the months elapsed since the start for
// open-ended contracts.
func Liability(c Contract, today time.Time) int64 {
	if c.StartDate.IsZero() {
		return 0
	}
	var months int
	if c.OpenEnded {
		months = MonthsBetween(c.StartDate, DateOf(today))
	} else {
		if c.EndDate.IsZero() {
			return 0
		}
		months = MonthsBetween(c.StartDate, c.EndDate)
	}
	return c.MonthlyRate * int64(months)
}

// Reconcile derives a contract's coverage, paid-month count, outstanding
// balance and settled flag from its complete payment history. It is a pure
// function of its inputs and is always re-executed in full, so edits and
// deletions self-correct without drift.
//
// Rate changes need no special handling here: liability is always priced at
// the current rate, and the surcharge/refund adjustment records the
// rate-change handler appends to history account for months paid at an old
// rate exactly once.
func Reconcile(c Contract, history []PaymentRecord, today time.Time) ReconcileResult {
	var coverage MonthSet
	var netPaid int64
	for _, p := range history {
		coverage = coverage.Union(p.MonthsCovered)
		netPaid += p.AmountPaid
	}

	liability := Liability(c, today)
	owed := liability - netPaid
	var surplus int64
	if owed < 0 {
		surplus = -owed
		owed = 0
	}

	return ReconcileResult{
		Coverage:   coverage,
		MonthsPaid: coverage.Len(),
		AmountOwed: owed,
		Settled:    owed == 0,
		Surplus:    surplus,
	}
}

// Apply copies the derived fields onto the contract.
func (r ReconcileResult) Apply(c *Contract) {
	c.Coverage = r.Coverage
	c.MonthsPaid = r.MonthsPaid
	c.AmountOwed = r.AmountOwed
	c.Settled = r.Settled
}
