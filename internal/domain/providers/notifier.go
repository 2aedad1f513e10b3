package providers

import "context"

// ConfirmationNotifier delivers a booking confirmation to the patient's phone
type ConfirmationNotifier interface {
	SendConfirmation(ctx context.Context, phoneNumber, message string) error
}

// NoopNotifier is used when no delivery channel is configured
type NoopNotifier struct{}

func (NoopNotifier) SendConfirmation(ctx context.Context, phoneNumber, message string) error {
	return nil
}
