package core

import (
	"sort"
	"time"
)

// DueState classifies how urgently a contract needs its next payment.
type DueState int

const (
	DueUnknown DueState = iota
	DueSettled
	DueExpired
	DueOverdue
	DueToday
	DueUpcoming
)

func (s DueState) String() string {
	switch s {
	case DueSettled:
		return "settled"
	case DueExpired:
		return "expired"
	case DueOverdue:
		return "overdue"
	case DueToday:
		return "due_today"
	case DueUpcoming:
		return "upcoming"
	default:
		return "unknown"
	}
}

// DueInfo is the due-date projection for a contract.
type DueInfo struct {
	State   DueState
	NextDue Date // zero when the state carries no date (settled, unknown)
}

// daysIn returns the number of days in the given calendar month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// clampDay pins day to the length of the target month. A contract anchored on
// the 31st bills on the 28th/29th/30th in shorter months rather than rolling
// over into the next one.
func clampDay(year int, month time.Month, day int) int {
	if last := daysIn(year, month); day > last {
		return last
	}
	return day
}

// addMonths advances a date by n calendar months, preserving the anchor day
// where the target month allows it.
func addMonths(d Date, n int) Date {
	y, m, day := d.Date()
	total := int(m) - 1 + n
	ny := y + total/12
	nm := time.Month(total%12 + 1)
	return NewDate(ny, int(nm), clampDay(ny, nm, day))
}

// MonthsBetween counts the calendar months spanned by two dates, inclusive of
// both endpoints' months, minimum one. Day-of-month is ignored: a contract
// running 15 Jan to 15 Dec spans twelve billable months.
func MonthsBetween(start, end Date) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()) + 1
	if months < 1 {
		return 1
	}
	return months
}

// BillingInterval maps a calendar month to the concrete date range its
// payment covers: from the contract's anchor day in that month through the
// day before the same anchor day one month later. Both endpoints clamp to the
// target month's length.
func BillingInterval(anchorDay int, m Month) (start, end Date) {
	start = NewDate(m.Year, m.Mon, clampDay(m.Year, time.Month(m.Mon), anchorDay))
	next := m.Next()
	anchorNext := NewDate(next.Year, next.Mon, clampDay(next.Year, time.Month(next.Mon), anchorDay))
	end = DateOf(anchorNext.AddDate(0, 0, -1))
	return start, end
}

// BillingPeriod is the concrete date range one covered month pays for.
type BillingPeriod struct {
	Month Month
	Start Date
	End   Date
}

// PaymentPeriods expands a payment record's coverage into the exact date
// ranges it pays for, one per covered month. Opaque coverage entries have no
// derivable dates and are skipped.
func PaymentPeriods(c Contract, p PaymentRecord) []BillingPeriod {
	if c.StartDate.IsZero() {
		return nil
	}
	anchor := c.AnchorDay()
	months := p.MonthsCovered.Sorted()
	periods := make([]BillingPeriod, 0, len(months))
	for _, m := range months {
		start, end := BillingInterval(anchor, m)
		periods = append(periods, BillingPeriod{Month: m, Start: start, End: end})
	}
	return periods
}

// NextDueDate projects when the next month's payment falls due: the start
// date advanced by one month per month already paid, plus one.
func NextDueDate(c Contract) (Date, bool) {
	if c.StartDate.IsZero() {
		return Date{}, false
	}
	return addMonths(c.StartDate, c.MonthsPaid+1), true
}

// EvaluateDue classifies a contract's payment urgency as of today. The rules,
// in order: settled contracts report Settled regardless of dates; contracts
// with unusable dates report Unknown; fixed-term contracts whose next due
// date lands past the end date report Expired; otherwise the next due date is
// compared against today date-only.
func EvaluateDue(c Contract, today time.Time) DueInfo {
	if c.Settled {
		return DueInfo{State: DueSettled}
	}
	next, ok := NextDueDate(c)
	if !ok {
		return DueInfo{State: DueUnknown}
	}
	if !c.OpenEnded {
		if c.EndDate.IsZero() {
			return DueInfo{State: DueUnknown}
		}
		if next.After(c.EndDate.Time) {
			return DueInfo{State: DueExpired}
		}
	}
	t := DateOf(today)
	switch {
	case next.Before(t.Time):
		return DueInfo{State: DueOverdue, NextDue: next}
	case next.Equal(t.Time):
		return DueInfo{State: DueToday, NextDue: next}
	default:
		return DueInfo{State: DueUpcoming, NextDue: next}
	}
}

// DueSortKey ranks contracts for display: dated states chronologically by
// next due date, then unknown, then expired, with settled contracts last.
// Ties break by contract ID ascending for a deterministic order.
func DueSortKey(c Contract, today time.Time) (rank int64, id int64) {
	info := EvaluateDue(c, today)
	switch info.State {
	case DueSettled:
		return 1<<62 + 2, c.ID
	case DueExpired:
		return 1<<62 + 1, c.ID
	case DueUnknown:
		return 1 << 62, c.ID
	default:
		return info.NextDue.Unix(), c.ID
	}
}

// SortContractsByDue orders contracts in place per DueSortKey.
func SortContractsByDue(contracts []Contract, today time.Time) {
	sort.SliceStable(contracts, func(i, j int) bool {
		ri, _ := DueSortKey(contracts[i], today)
		rj, _ := DueSortKey(contracts[j], today)
		if ri != rj {
			return ri < rj
		}
		return contracts[i].ID < contracts[j].ID
	})
}
