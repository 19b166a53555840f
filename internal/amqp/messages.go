package amqp

import (
	"encoding/json"
	"time"
)

// PaymentRecordedMessage announces that a payment history row was written.
// It carries only identifiers; the ledger worker fetches current state from
// the database so that stale messages never overwrite fresher data.
type PaymentRecordedMessage struct {
	PaymentID  int64     `json:"payment_id"`
	ContractID int64     `json:"contract_id"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewPaymentRecordedMessage(paymentID, contractID int64) *PaymentRecordedMessage {
	return &PaymentRecordedMessage{
		PaymentID:  paymentID,
		ContractID: contractID,
		Timestamp:  time.Now(),
	}
}

func (m *PaymentRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func PaymentRecordedMessageFromJSON(data []byte) (*PaymentRecordedMessage, error) {
	var msg PaymentRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
