package clients

import (
	"context"
	"fmt"

	"github.com/razorpay/razorpay-go"
	razorpayutils "github.com/razorpay/razorpay-go/utils"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/logger"
)

// RazorpayProcessor implements PaymentProcessor on the Razorpay SDK.
type RazorpayProcessor struct {
	Client        *razorpay.Client
	WebhookSecret string
}

func NewRazorpayProcessor(keyID, keySecret, webhookSecret string) *RazorpayProcessor {
	return &RazorpayProcessor{
		Client:        razorpay.NewClient(keyID, keySecret),
		WebhookSecret: webhookSecret,
	}
}

// CreateIntent creates a Razorpay order. The order id doubles as the client
// secret handed to the checkout frontend.
func (r *RazorpayProcessor) CreateIntent(ctx context.Context, amount int64, currency, receipt string) (*PaymentIntent, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	order, err := r.Client.Order.Create(data, nil)
	if err != nil {
		logger.ErrorLogger.Errorf("Razorpay order create failed for receipt %s: %v", receipt, err)
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}

	orderID, ok := order["id"].(string)
	if !ok || orderID == "" {
		return nil, fmt.Errorf("razorpay order response missing id")
	}
	return &PaymentIntent{ProviderPaymentID: orderID, ClientSecret: orderID}, nil
}

// ConfirmStatus fetches the order and maps Razorpay's status onto ours.
func (r *RazorpayProcessor) ConfirmStatus(ctx context.Context, providerPaymentID string) (string, error) {
	order, err := r.Client.Order.Fetch(providerPaymentID, nil, nil)
	if err != nil {
		logger.ErrorLogger.Errorf("Razorpay order fetch failed for %s: %v", providerPaymentID, err)
		return "", fmt.Errorf("razorpay order fetch: %w", err)
	}

	status, _ := order["status"].(string)
	switch status {
	case "paid":
		return ProcessorStatusPaid, nil
	case "attempted", "created":
		return ProcessorStatusPending, nil
	default:
		return ProcessorStatusFailed, nil
	}
}

// Refund issues a refund against the payment captured for the order.
func (r *RazorpayProcessor) Refund(ctx context.Context, providerPaymentID string, amount int64) (string, error) {
	payments, err := r.Client.Order.Payments(providerPaymentID, nil, nil)
	if err != nil {
		logger.ErrorLogger.Errorf("Razorpay payments fetch failed for order %s: %v", providerPaymentID, err)
		return "", fmt.Errorf("razorpay payments fetch: %w", err)
	}

	items, _ := payments["items"].([]interface{})
	if len(items) == 0 {
		return "", fmt.Errorf("no captured payment found for order %s", providerPaymentID)
	}
	first, _ := items[0].(map[string]interface{})
	paymentID, _ := first["id"].(string)
	if paymentID == "" {
		return "", fmt.Errorf("razorpay payment id missing for order %s", providerPaymentID)
	}

	refund, err := r.Client.Payment.Refund(paymentID, int(amount), nil, nil)
	if err != nil {
		logger.ErrorLogger.Errorf("Razorpay refund failed for payment %s: %v", paymentID, err)
		return "", fmt.Errorf("razorpay refund: %w", err)
	}

	refundID, _ := refund["id"].(string)
	if refundID == "" {
		return "", fmt.Errorf("razorpay refund response missing id")
	}
	return refundID, nil
}

// VerifyWebhookSignature checks the HMAC signature Razorpay sends with each
// webhook delivery.
func (r *RazorpayProcessor) VerifyWebhookSignature(body, signature string) bool {
	return razorpayutils.VerifyWebhookSignature(body, signature, r.WebhookSecret)
}
