package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"parkrent/internal/core"
)

func (s *Server) handleAddPayment(w http.ResponseWriter, r *http.Request) {
	contractID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid contract id")
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	payment, err := req.toPayment(contractID)
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := s.payments.AddPayment(r.Context(), payment)
	if err != nil {
		writeError(w, err)
		return
	}

	paymentsRecorded.Inc()
	writeJSON(w, http.StatusCreated, toPaymentResponse(created))
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	contractID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid contract id")
		return
	}

	payments, err := s.payments.ListPayments(r.Context(), contractID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		resp = append(resp, toPaymentResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEditPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid payment id")
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	payment, err := req.toPayment(0)
	if err != nil {
		writeError(w, err)
		return
	}
	payment.ID = id

	updated, err := s.payments.EditPayment(r.Context(), payment)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPaymentResponse(updated))
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid payment id")
		return
	}

	if err := s.payments.DeletePayment(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefundFulfilled(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid payment id")
		return
	}

	if err := s.payments.MarkRefundFulfilled(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	payment, err := s.payments.GetPayment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(payment))
}

func (s *Server) handleSurplusRefund(w http.ResponseWriter, r *http.Request) {
	contractID, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid contract id")
		return
	}

	created, err := s.payments.CreateSurplusRefund(r.Context(), contractID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPaymentResponse(created))
}

// handleInvoice renders a printable receipt payload for one payment. Each
// request issues a fresh receipt number.
func (s *Server) handleInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid payment id")
		return
	}

	payment, err := s.payments.GetPayment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	contract, err := s.contracts.GetContract(r.Context(), payment.ContractID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, invoiceResponse{
		ReceiptNumber: uuid.NewString(),
		IssuedAt:      s.now().Format("02/01/2006 15:04"),
		Owner:         contract.Owner,
		PlateNumber:   contract.PlateNumber,
		ParkingZone:   contract.ParkingZone,
		PaymentDate:   payment.PaymentDate.ISO(),
		MonthsLabel:   payment.MonthsCovered.FormatRange(),
		Periods:       toBillingPeriods(contract, payment),
		Amount:        payment.AmountPaid,
		AmountDisplay: core.FormatVND(payment.AmountPaid),
		PaymentMethod: payment.PaymentMethod,
	})
}
