package core

import (
	"testing"
	"time"
)

func TestBillingInterval(t *testing.T) {
	tests := []struct {
		name      string
		anchorDay int
		month     Month
		wantStart Date
		wantEnd   Date
	}{
		{
			name:      "mid-month anchor",
			anchorDay: 15,
			month:     NewMonth(2024, 1),
			wantStart: NewDate(2024, 1, 15),
			wantEnd:   NewDate(2024, 2, 14),
		},
		{
			name:      "first of month",
			anchorDay: 1,
			month:     NewMonth(2024, 3),
			wantStart: NewDate(2024, 3, 1),
			wantEnd:   NewDate(2024, 3, 31),
		},
		{
			name:      "anchor clamps in february",
			anchorDay: 31,
			month:     NewMonth(2023, 2),
			wantStart: NewDate(2023, 2, 28),
			wantEnd:   NewDate(2023, 3, 30),
		},
		{
			name:      "anchor clamps in leap february",
			anchorDay: 30,
			month:     NewMonth(2024, 2),
			wantStart: NewDate(2024, 2, 29),
			wantEnd:   NewDate(2024, 3, 29),
		},
		{
			name:      "december wraps into january",
			anchorDay: 10,
			month:     NewMonth(2024, 12),
			wantStart: NewDate(2024, 12, 10),
			wantEnd:   NewDate(2025, 1, 9),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := BillingInterval(tt.anchorDay, tt.month)
			if !start.Equal(tt.wantStart.Time) || !end.Equal(tt.wantEnd.Time) {
				t.Errorf("BillingInterval(%d, %v) = %s..%s, want %s..%s",
					tt.anchorDay, tt.month, start.ISO(), end.ISO(), tt.wantStart.ISO(), tt.wantEnd.ISO())
			}
		})
	}
}

func TestNextDueDate(t *testing.T) {
	c := Contract{StartDate: NewDate(2024, 1, 15)}

	next, ok := NextDueDate(c)
	if !ok || !next.Equal(NewDate(2024, 2, 15).Time) {
		t.Errorf("no months paid: next due = %s, want 2024-02-15", next.ISO())
	}

	c.MonthsPaid = 2
	next, _ = NextDueDate(c)
	if !next.Equal(NewDate(2024, 4, 15).Time) {
		t.Errorf("two months paid: next due = %s, want 2024-04-15", next.ISO())
	}

	// Anchor day preserved with clamping: start on the 31st.
	c = Contract{StartDate: NewDate(2024, 1, 31)}
	next, _ = NextDueDate(c)
	if !next.Equal(NewDate(2024, 2, 29).Time) {
		t.Errorf("anchor 31 into february: next due = %s, want 2024-02-29", next.ISO())
	}

	if _, ok := NextDueDate(Contract{}); ok {
		t.Error("missing start date should not produce a due date")
	}
}

func TestEvaluateDue(t *testing.T) {
	today := time.Date(2024, 6, 15, 13, 45, 0, 0, time.UTC) // time of day must be ignored
	start := NewDate(2024, 1, 15)
	end := NewDate(2024, 12, 15)

	tests := []struct {
		name string
		c    Contract
		want DueState
	}{
		{
			name: "settled wins regardless of dates",
			c:    Contract{StartDate: start, EndDate: end, Settled: true},
			want: DueSettled,
		},
		{
			name: "missing start date",
			c:    Contract{EndDate: end},
			want: DueUnknown,
		},
		{
			name: "fixed term missing end date",
			c:    Contract{StartDate: start},
			want: DueUnknown,
		},
		{
			name: "fixed term expired",
			c:    Contract{StartDate: start, EndDate: end, MonthsPaid: 11},
			want: DueExpired,
		},
		{
			name: "fixed term overdue",
			c:    Contract{StartDate: start, EndDate: end, MonthsPaid: 2}, // due 2024-04-15
			want: DueOverdue,
		},
		{
			name: "fixed term due today",
			c:    Contract{StartDate: start, EndDate: end, MonthsPaid: 4}, // due 2024-06-15
			want: DueToday,
		},
		{
			name: "fixed term upcoming",
			c:    Contract{StartDate: start, EndDate: end, MonthsPaid: 6}, // due 2024-08-15
			want: DueUpcoming,
		},
		{
			name: "open ended never expires",
			c:    Contract{StartDate: start, OpenEnded: true, MonthsPaid: 40},
			want: DueUpcoming,
		},
		{
			name: "open ended overdue",
			c:    Contract{StartDate: start, OpenEnded: true, MonthsPaid: 1},
			want: DueOverdue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateDue(tt.c, today); got.State != tt.want {
				t.Errorf("EvaluateDue() = %v, want %v", got.State, tt.want)
			}
		})
	}
}

func TestEvaluateDue_SettledWheneverNothingOwed(t *testing.T) {
	c := Contract{StartDate: NewDate(2024, 1, 15), Settled: true} // no end date, no open-ended flag
	if got := EvaluateDue(c, time.Now()); got.State != DueSettled {
		t.Errorf("settled contract reports %v, want settled", got.State)
	}
}

func TestSortContractsByDue(t *testing.T) {
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	start := NewDate(2024, 1, 15)
	end := NewDate(2024, 12, 15)

	contracts := []Contract{
		{ID: 1, StartDate: start, EndDate: end, Settled: true},     // settled: last
		{ID: 2, StartDate: start, EndDate: end, MonthsPaid: 11},    // expired: second to last
		{ID: 3, StartDate: start, EndDate: end, MonthsPaid: 6},     // due 2024-08-15
		{ID: 4, StartDate: start, EndDate: end, MonthsPaid: 1},     // due 2024-03-15
		{ID: 5},                                                    // unknown: after dated
		{ID: 6, StartDate: start, OpenEnded: true, MonthsPaid: 1},  // due 2024-03-15, tie with 4
	}
	SortContractsByDue(contracts, today)

	wantOrder := []int64{4, 6, 3, 5, 2, 1}
	for i, want := range wantOrder {
		if contracts[i].ID != want {
			ids := make([]int64, len(contracts))
			for j, c := range contracts {
				ids[j] = c.ID
			}
			t.Fatalf("order = %v, want %v", ids, wantOrder)
		}
	}
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name  string
		start Date
		end   Date
		want  int
	}{
		{"full year inclusive", NewDate(2024, 1, 15), NewDate(2024, 12, 15), 12},
		{"same month", NewDate(2024, 3, 1), NewDate(2024, 3, 28), 1},
		{"four elapsed months", NewDate(2024, 1, 1), NewDate(2024, 4, 1), 4},
		{"minimum one", NewDate(2024, 5, 1), NewDate(2024, 3, 1), 1},
		{"across years", NewDate(2023, 11, 10), NewDate(2024, 2, 10), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthsBetween(tt.start, tt.end); got != tt.want {
				t.Errorf("MonthsBetween(%s, %s) = %d, want %d", tt.start.ISO(), tt.end.ISO(), got, tt.want)
			}
		})
	}
}

func TestPaymentPeriods(t *testing.T) {
	c := Contract{StartDate: NewDate(2024, 1, 15)}
	p := PaymentRecord{MonthsCovered: ParseMonthSet("Tháng 1/2024+Tháng 2/2024")}

	periods := PaymentPeriods(c, p)
	if len(periods) != 2 {
		t.Fatalf("got %d periods, want 2", len(periods))
	}
	if !periods[0].Start.Equal(NewDate(2024, 1, 15).Time) || !periods[0].End.Equal(NewDate(2024, 2, 14).Time) {
		t.Errorf("january period = %s..%s", periods[0].Start.ISO(), periods[0].End.ISO())
	}
	if !periods[1].Start.Equal(NewDate(2024, 2, 15).Time) || !periods[1].End.Equal(NewDate(2024, 3, 14).Time) {
		t.Errorf("february period = %s..%s", periods[1].Start.ISO(), periods[1].End.ISO())
	}

	// Opaque coverage has no derivable dates.
	p = PaymentRecord{MonthsCovered: ParseMonthSet("ghi chú cũ")}
	if got := PaymentPeriods(c, p); len(got) != 0 {
		t.Errorf("opaque coverage produced %d periods, want 0", len(got))
	}
}
