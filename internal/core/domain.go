package core

import (
	"errors"
	"strings"
	"time"
)

// Payment method labels as persisted by the historical data set. These are
// stored values, not display strings, so they stay in the original language.
const (
	MethodCash       = "Tiền mặt"
	MethodBank       = "Chuyển khoản"
	MethodAdjustment = "Điều chỉnh giá"
	MethodRefund     = "Hoàn tiền"
)

// RefundStatus tracks the lifecycle of a refund record. It is only meaningful
// on records with a negative AmountPaid.
type RefundStatus string

const (
	RefundNone      RefundStatus = ""
	RefundPending   RefundStatus = "pending"
	RefundFulfilled RefundStatus = "fulfilled"
)

var (
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidRate         = errors.New("invalid monthly rate")
	ErrEmptyOwner          = errors.New("empty owner name")
	ErrEmptyPlateNumber    = errors.New("empty plate number")
	ErrEndBeforeStart      = errors.New("end date must be after start date")
	ErrEmptyMonthSelection = errors.New("payment must cover at least one month")
	ErrContractNotFound    = errors.New("contract not found")
	ErrPaymentNotFound     = errors.New("payment not found")
)

// Date is a calendar date with the time of day stripped.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to a calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO "2006-01-02" date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// IsEmpty returns true for the zero date (used for optional end dates).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ISO returns the storage form "2006-01-02".
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// Contract is a monthly parking-space rental agreement. The derived fields
// (MonthsPaid, Coverage, AmountOwed, Settled) are owned by the reconciliation
// engine and never edited directly.
type Contract struct {
	ID           int64
	Owner        string
	Address      string
	Phone        string
	VehicleModel string
	PlateNumber  string
	ParkingZone  string

	StartDate Date
	EndDate   Date // zero iff OpenEnded
	OpenEnded bool

	MonthlyRate int64 // VND per month

	MonthsPaid int
	Coverage   MonthSet
	AmountOwed int64
	Settled    bool

	PaymentMethod string
	Notes         string
}

func (c Contract) Validate() error {
	if strings.TrimSpace(c.Owner) == "" {
		return ErrEmptyOwner
	}
	if strings.TrimSpace(c.PlateNumber) == "" {
		return ErrEmptyPlateNumber
	}
	if err := c.StartDate.Validate(); err != nil {
		return err
	}
	if !c.OpenEnded {
		if err := c.EndDate.Validate(); err != nil {
			return err
		}
		if !c.EndDate.After(c.StartDate.Time) {
			return ErrEndBeforeStart
		}
	}
	if c.MonthlyRate < 0 {
		return ErrInvalidRate
	}
	return nil
}

// AnchorDay is the day-of-month of the contract's start date. Each paid
// month's billing interval begins on this day.
func (c Contract) AnchorDay() int {
	if c.StartDate.IsZero() {
		return 1
	}
	return c.StartDate.Day()
}

// PaymentRecord is a single entry in a contract's payment history. Negative
// AmountPaid marks a refund; zero-amount records are administrative
// adjustments (for example a rate-increase surcharge note).
type PaymentRecord struct {
	ID         int64
	ContractID int64

	PaymentDate   Date
	AmountPaid    int64
	MonthsCovered MonthSet
	PaymentMethod string
	RefundStatus  RefundStatus
	Notes         string
}

func (p PaymentRecord) Validate() error {
	if err := p.PaymentDate.Validate(); err != nil {
		return err
	}
	if p.MonthsCovered.IsEmpty() {
		return ErrEmptyMonthSelection
	}
	return nil
}

// IsRefund reports whether the record represents money flowing back to the
// customer.
func (p PaymentRecord) IsRefund() bool {
	return p.AmountPaid < 0
}
