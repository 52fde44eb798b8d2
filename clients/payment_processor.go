package clients

import "context"

// PaymentIntent is the processor-side handle for a charge. ClientSecret goes
// to the frontend checkout; ProviderPaymentID keys our payment row to the
// processor's order.
type PaymentIntent struct {
	ProviderPaymentID string
	ClientSecret      string
}

// PaymentProcessor abstracts the external card processor so the settlement
// service can be unit-tested with a double. Amounts are minor currency units.
type PaymentProcessor interface {
	CreateIntent(ctx context.Context, amount int64, currency, receipt string) (*PaymentIntent, error)
	ConfirmStatus(ctx context.Context, providerPaymentID string) (string, error)
	Refund(ctx context.Context, providerPaymentID string, amount int64) (string, error)
	VerifyWebhookSignature(body, signature string) bool
}

// Processor payment statuses as reported by ConfirmStatus.
const (
	ProcessorStatusPaid    = "paid"
	ProcessorStatusPending = "pending"
	ProcessorStatusFailed  = "failed"
)
