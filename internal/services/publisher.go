package services

import "context"

// EventPublisher publishes domain events after database writes commit. A nil
// publisher disables publishing; write paths must still succeed without it.
type EventPublisher interface {
	PublishPaymentRecorded(ctx context.Context, paymentID, contractID int64) error
}
