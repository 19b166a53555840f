package http

import (
	"encoding/json"
	"time"

	"parkrent/internal/core"
)

// vndAmount accepts either a plain JSON number or a formatted price string
// ("3.000.000", "3,000,000") the way the entry forms submit them.
type vndAmount int64

func (a *vndAmount) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := core.ParseAmount(s)
		if err != nil {
			return err
		}
		*a = vndAmount(v)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = vndAmount(n)
	return nil
}

type contractRequest struct {
	Owner         string    `json:"owner"`
	Address       string    `json:"address"`
	Phone         string    `json:"phone"`
	VehicleModel  string    `json:"vehicle_model"`
	PlateNumber   string    `json:"plate_number"`
	ParkingZone   string    `json:"parking_zone"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	OpenEnded     bool      `json:"open_ended"`
	MonthlyRate   vndAmount `json:"monthly_rate"`
	PaymentMethod string    `json:"payment_method"`
	Notes         string    `json:"notes"`
}

func (r contractRequest) toContract() (core.Contract, error) {
	start, err := core.ParseDate(r.StartDate)
	if err != nil {
		return core.Contract{}, err
	}

	var end core.Date
	if !r.OpenEnded {
		end, err = core.ParseDate(r.EndDate)
		if err != nil {
			return core.Contract{}, err
		}
	}

	return core.Contract{
		Owner:         r.Owner,
		Address:       r.Address,
		Phone:         r.Phone,
		VehicleModel:  r.VehicleModel,
		PlateNumber:   r.PlateNumber,
		ParkingZone:   r.ParkingZone,
		StartDate:     start,
		EndDate:       end,
		OpenEnded:     r.OpenEnded,
		MonthlyRate:   int64(r.MonthlyRate),
		PaymentMethod: r.PaymentMethod,
		Notes:         r.Notes,
	}, nil
}

type contractResponse struct {
	ID            int64  `json:"id"`
	Owner         string `json:"owner"`
	Address       string `json:"address,omitempty"`
	Phone         string `json:"phone,omitempty"`
	VehicleModel  string `json:"vehicle_model,omitempty"`
	PlateNumber   string `json:"plate_number"`
	ParkingZone   string `json:"parking_zone,omitempty"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date,omitempty"`
	OpenEnded     bool   `json:"open_ended"`
	MonthlyRate   int64  `json:"monthly_rate"`
	RateDisplay   string `json:"rate_display"`
	MonthsPaid    int    `json:"months_paid"`
	Coverage      string `json:"coverage"`
	CoverageLabel string `json:"coverage_label"`
	AmountOwed    int64  `json:"amount_owed"`
	OwedDisplay   string `json:"owed_display"`
	Settled       bool   `json:"settled"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Notes         string `json:"notes,omitempty"`
	DueState      string `json:"due_state"`
	NextDueDate   string `json:"next_due_date,omitempty"`
}

func toContractResponse(c core.Contract, today time.Time) contractResponse {
	resp := contractResponse{
		ID:            c.ID,
		Owner:         c.Owner,
		Address:       c.Address,
		Phone:         c.Phone,
		VehicleModel:  c.VehicleModel,
		PlateNumber:   c.PlateNumber,
		ParkingZone:   c.ParkingZone,
		StartDate:     c.StartDate.ISO(),
		OpenEnded:     c.OpenEnded,
		MonthlyRate:   c.MonthlyRate,
		RateDisplay:   core.FormatVND(c.MonthlyRate),
		MonthsPaid:    c.MonthsPaid,
		Coverage:      c.Coverage.Format(),
		CoverageLabel: c.Coverage.FormatRange(),
		AmountOwed:    c.AmountOwed,
		OwedDisplay:   core.FormatVND(c.AmountOwed),
		Settled:       c.Settled,
		PaymentMethod: c.PaymentMethod,
		Notes:         c.Notes,
	}
	if !c.EndDate.IsEmpty() {
		resp.EndDate = c.EndDate.ISO()
	}

	due := core.EvaluateDue(c, today)
	resp.DueState = due.State.String()
	if !due.NextDue.IsZero() {
		resp.NextDueDate = due.NextDue.ISO()
	}
	return resp
}

type paymentRequest struct {
	PaymentDate   string    `json:"payment_date"`
	AmountPaid    vndAmount `json:"amount_paid"`
	MonthsCovered string    `json:"months_covered"`
	PaymentMethod string    `json:"payment_method"`
	Notes         string    `json:"notes"`
}

func (r paymentRequest) toPayment(contractID int64) (core.PaymentRecord, error) {
	date, err := core.ParseDate(r.PaymentDate)
	if err != nil {
		return core.PaymentRecord{}, err
	}
	return core.PaymentRecord{
		ContractID:    contractID,
		PaymentDate:   date,
		AmountPaid:    int64(r.AmountPaid),
		MonthsCovered: core.ParseMonthSet(r.MonthsCovered),
		PaymentMethod: r.PaymentMethod,
		Notes:         r.Notes,
	}, nil
}

type paymentResponse struct {
	ID            int64  `json:"id"`
	ContractID    int64  `json:"contract_id"`
	PaymentDate   string `json:"payment_date"`
	AmountPaid    int64  `json:"amount_paid"`
	AmountDisplay string `json:"amount_display"`
	MonthsCovered string `json:"months_covered"`
	MonthsLabel   string `json:"months_label"`
	PaymentMethod string `json:"payment_method,omitempty"`
	RefundStatus  string `json:"refund_status,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

func toPaymentResponse(p core.PaymentRecord) paymentResponse {
	return paymentResponse{
		ID:            p.ID,
		ContractID:    p.ContractID,
		PaymentDate:   p.PaymentDate.ISO(),
		AmountPaid:    p.AmountPaid,
		AmountDisplay: core.FormatVND(p.AmountPaid),
		MonthsCovered: p.MonthsCovered.Format(),
		MonthsLabel:   p.MonthsCovered.FormatRange(),
		PaymentMethod: p.PaymentMethod,
		RefundStatus:  string(p.RefundStatus),
		Notes:         p.Notes,
	}
}

type invoiceResponse struct {
	ReceiptNumber string                  `json:"receipt_number"`
	IssuedAt      string                  `json:"issued_at"`
	Owner         string                  `json:"owner"`
	PlateNumber   string                  `json:"plate_number"`
	ParkingZone   string                  `json:"parking_zone,omitempty"`
	PaymentDate   string                  `json:"payment_date"`
	MonthsLabel   string                  `json:"months_label"`
	Periods       []billingPeriodResponse `json:"periods"`
	Amount        int64                   `json:"amount"`
	AmountDisplay string                  `json:"amount_display"`
	PaymentMethod string                  `json:"payment_method"`
}

// billingPeriodResponse is one covered month's exact paid-for date range.
type billingPeriodResponse struct {
	Month string `json:"month"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func toBillingPeriods(c core.Contract, p core.PaymentRecord) []billingPeriodResponse {
	periods := core.PaymentPeriods(c, p)
	resp := make([]billingPeriodResponse, 0, len(periods))
	for _, bp := range periods {
		resp = append(resp, billingPeriodResponse{
			Month: bp.Month.String(),
			Start: bp.Start.ISO(),
			End:   bp.End.ISO(),
		})
	}
	return resp
}
