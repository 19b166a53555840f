package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"parkrent/internal/core"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same query methods
// work inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

const contractColumns = `id, owner, address, phone, vehicle_model, plate_number, parking_zone,
	start_date, end_date, open_ended, monthly_rate,
	months_paid, coverage, amount_owed, settled, payment_method, notes`

func scanContract(row interface{ Scan(...any) error }) (core.Contract, error) {
	var (
		c                  core.Contract
		startDate, endDate string
		coverage           string
	)
	err := row.Scan(
		&c.ID, &c.Owner, &c.Address, &c.Phone, &c.VehicleModel, &c.PlateNumber, &c.ParkingZone,
		&startDate, &endDate, &c.OpenEnded, &c.MonthlyRate,
		&c.MonthsPaid, &coverage, &c.AmountOwed, &c.Settled, &c.PaymentMethod, &c.Notes,
	)
	if err != nil {
		return core.Contract{}, err
	}
	if c.StartDate, err = core.ParseDate(startDate); err != nil {
		return core.Contract{}, fmt.Errorf("contract %d: parse start_date %q: %w", c.ID, startDate, err)
	}
	if endDate != "" {
		if c.EndDate, err = core.ParseDate(endDate); err != nil {
			return core.Contract{}, fmt.Errorf("contract %d: parse end_date %q: %w", c.ID, endDate, err)
		}
	}
	c.Coverage = core.ParseMonthSet(coverage)
	return c, nil
}

func isoOrEmpty(d core.Date) string {
	if d.IsEmpty() {
		return ""
	}
	return d.ISO()
}

func (q *Queries) CreateContract(ctx context.Context, c core.Contract) (core.Contract, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO contracts (
			owner, address, phone, vehicle_model, plate_number, parking_zone,
			start_date, end_date, open_ended, monthly_rate,
			months_paid, coverage, amount_owed, settled, payment_method, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Owner, c.Address, c.Phone, c.VehicleModel, c.PlateNumber, c.ParkingZone,
		c.StartDate.ISO(), isoOrEmpty(c.EndDate), c.OpenEnded, c.MonthlyRate,
		c.MonthsPaid, c.Coverage.Format(), c.AmountOwed, c.Settled, c.PaymentMethod, c.Notes,
	)
	if err != nil {
		return core.Contract{}, fmt.Errorf("insert contract: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.Contract{}, fmt.Errorf("contract insert id: %w", err)
	}
	return c, nil
}

func (q *Queries) GetContract(ctx context.Context, id int64) (core.Contract, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = ?`, id)
	c, err := scanContract(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Contract{}, core.ErrContractNotFound
	}
	if err != nil {
		return core.Contract{}, fmt.Errorf("get contract %d: %w", id, err)
	}
	return c, nil
}

func (q *Queries) ListContracts(ctx context.Context) ([]core.Contract, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+contractColumns+` FROM contracts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []core.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func (q *Queries) UpdateContract(ctx context.Context, c core.Contract) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE contracts SET
			owner = ?, address = ?, phone = ?, vehicle_model = ?, plate_number = ?, parking_zone = ?,
			start_date = ?, end_date = ?, open_ended = ?, monthly_rate = ?,
			payment_method = ?, notes = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		c.Owner, c.Address, c.Phone, c.VehicleModel, c.PlateNumber, c.ParkingZone,
		c.StartDate.ISO(), isoOrEmpty(c.EndDate), c.OpenEnded, c.MonthlyRate,
		c.PaymentMethod, c.Notes,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("update contract %d: %w", c.ID, err)
	}
	return requireRow(res, core.ErrContractNotFound)
}

// UpdateContractDerived writes only the reconciliation outputs. All other
// columns belong to the edit path.
func (q *Queries) UpdateContractDerived(ctx context.Context, id int64, r core.ReconcileResult) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE contracts SET
			months_paid = ?, coverage = ?, amount_owed = ?, settled = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		r.MonthsPaid, r.Coverage.Format(), r.AmountOwed, r.Settled, id,
	)
	if err != nil {
		return fmt.Errorf("update contract %d derived fields: %w", id, err)
	}
	return requireRow(res, core.ErrContractNotFound)
}

func (q *Queries) DeleteContract(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM contracts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete contract %d: %w", id, err)
	}
	return requireRow(res, core.ErrContractNotFound)
}

const paymentColumns = `id, contract_id, payment_date, amount_paid, months_covered,
	payment_method, refund_status, notes`

func scanPayment(row interface{ Scan(...any) error }) (core.PaymentRecord, error) {
	var (
		p           core.PaymentRecord
		paymentDate string
		months      string
	)
	err := row.Scan(
		&p.ID, &p.ContractID, &paymentDate, &p.AmountPaid, &months,
		&p.PaymentMethod, &p.RefundStatus, &p.Notes,
	)
	if err != nil {
		return core.PaymentRecord{}, err
	}
	if p.PaymentDate, err = core.ParseDate(paymentDate); err != nil {
		return core.PaymentRecord{}, fmt.Errorf("payment %d: parse payment_date %q: %w", p.ID, paymentDate, err)
	}
	p.MonthsCovered = core.ParseMonthSet(months)
	return p, nil
}

func (q *Queries) CreatePayment(ctx context.Context, p core.PaymentRecord) (core.PaymentRecord, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO payment_history (
			contract_id, payment_date, amount_paid, months_covered,
			payment_method, refund_status, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ContractID, p.PaymentDate.ISO(), p.AmountPaid, p.MonthsCovered.Format(),
		p.PaymentMethod, p.RefundStatus, p.Notes,
	)
	if err != nil {
		return core.PaymentRecord{}, fmt.Errorf("insert payment: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return core.PaymentRecord{}, fmt.Errorf("payment insert id: %w", err)
	}
	return p, nil
}

func (q *Queries) GetPayment(ctx context.Context, id int64) (core.PaymentRecord, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payment_history WHERE id = ?`, id)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.PaymentRecord{}, core.ErrPaymentNotFound
	}
	if err != nil {
		return core.PaymentRecord{}, fmt.Errorf("get payment %d: %w", id, err)
	}
	return p, nil
}

// ListPayments returns a contract's history in chronological order, ties
// broken by insertion order.
func (q *Queries) ListPayments(ctx context.Context, contractID int64) ([]core.PaymentRecord, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payment_history WHERE contract_id = ? ORDER BY payment_date, id`,
		contractID)
	if err != nil {
		return nil, fmt.Errorf("list payments for contract %d: %w", contractID, err)
	}
	defer rows.Close()

	var payments []core.PaymentRecord
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (q *Queries) ListAllPayments(ctx context.Context) ([]core.PaymentRecord, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payment_history ORDER BY payment_date, id`)
	if err != nil {
		return nil, fmt.Errorf("list all payments: %w", err)
	}
	defer rows.Close()

	var payments []core.PaymentRecord
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (q *Queries) UpdatePayment(ctx context.Context, p core.PaymentRecord) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE payment_history SET
			payment_date = ?, amount_paid = ?, months_covered = ?,
			payment_method = ?, refund_status = ?, notes = ?
		WHERE id = ?`,
		p.PaymentDate.ISO(), p.AmountPaid, p.MonthsCovered.Format(),
		p.PaymentMethod, p.RefundStatus, p.Notes,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update payment %d: %w", p.ID, err)
	}
	return requireRow(res, core.ErrPaymentNotFound)
}

func (q *Queries) DeletePayment(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM payment_history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete payment %d: %w", id, err)
	}
	return requireRow(res, core.ErrPaymentNotFound)
}

func (q *Queries) MarkRefundFulfilled(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE payment_history SET refund_status = ?
		WHERE id = ? AND refund_status = ?`,
		core.RefundFulfilled, id, core.RefundPending,
	)
	if err != nil {
		return fmt.Errorf("mark refund %d fulfilled: %w", id, err)
	}
	return requireRow(res, core.ErrPaymentNotFound)
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
