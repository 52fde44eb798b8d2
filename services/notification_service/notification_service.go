package notification_service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/clients"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/logger"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/booking_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/notification_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/payment_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/payout_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/provider_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/user_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/apperrors"
)

// Email template paths
const (
	bookingConfirmationTemplate = "templates/email/booking_confirmation.html"
	bookingCanceledTemplate     = "templates/email/booking_canceled.html"
	paymentReceiptTemplate      = "templates/email/payment_receipt.html"
	payoutNoticeTemplate        = "templates/email/payout_notice.html"
)

const (
	maxSendAttempts = 3
	retryBackoff    = 500 * time.Millisecond
)

// Directory resolves the people behind bookings and payouts. Provider ids on
// bookings and payments reference provider profiles, not users.
type Directory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*user_models.User, error)
	GetProvider(ctx context.Context, id uuid.UUID) (*provider_models.ServiceProviderProfile, error)
}

// Recorder persists the in-app copy of every notification sent.
type Recorder interface {
	SaveNotification(ctx context.Context, n *notification_models.Notification) error
}

// EmailSender renders and delivers one templated email.
type EmailSender interface {
	SendEmail(ctx context.Context, toEmail, subject, templatePath string, data interface{}) error
}

// Dispatcher delivers lifecycle and settlement notifications over email and
// SMS, with an in-app record per recipient. Send failures are retried a few
// times and then reported to the caller; callers treat them as advisory.
type Dispatcher struct {
	Directory Directory
	Recorder  Recorder
	Mailer    EmailSender
	SMS       clients.SMSSender
}

func NewDispatcher(directory Directory, recorder Recorder, mailer EmailSender, sms clients.SMSSender) *Dispatcher {
	return &Dispatcher{Directory: directory, Recorder: recorder, Mailer: mailer, SMS: sms}
}

// SendBookingConfirmation notifies the customer by email and the provider
// in-app.
func (d *Dispatcher) SendBookingConfirmation(ctx context.Context, booking *booking_models.Booking) error {
	customer, err := d.Directory.GetUser(ctx, booking.CustomerID)
	if err != nil {
		return err
	}

	data := struct {
		FirstName string
		Reference string
		StartTime string
		Amount    string
		Year      int
	}{
		FirstName: customer.FirstName,
		Reference: booking.BookingReference,
		StartTime: booking.StartTime.Format(time.RFC1123),
		Amount:    formatAmount(booking.Price, booking.Currency),
		Year:      time.Now().Year(),
	}

	sendErr := d.withRetry(ctx, "booking confirmation email", func(ctx context.Context) error {
		return d.Mailer.SendEmail(ctx, customer.Email, "Booking Confirmed", bookingConfirmationTemplate, data)
	})

	d.record(ctx, customer.ID, notification_models.NotifBookingConfirmed, "email",
		"Booking confirmed",
		fmt.Sprintf("Booking %s is confirmed for %s", booking.BookingReference, data.StartTime))
	d.notifyProvider(ctx, booking.ProviderID, notification_models.NotifBookingConfirmed,
		"Booking confirmed",
		fmt.Sprintf("Booking %s was confirmed", booking.BookingReference))

	return sendErr
}

// SendBookingCanceled notifies both parties; the customer additionally gets an
// SMS when a phone number is on file.
func (d *Dispatcher) SendBookingCanceled(ctx context.Context, booking *booking_models.Booking, reason string) error {
	customer, err := d.Directory.GetUser(ctx, booking.CustomerID)
	if err != nil {
		return err
	}

	data := struct {
		FirstName string
		Reference string
		Reason    string
		Year      int
	}{
		FirstName: customer.FirstName,
		Reference: booking.BookingReference,
		Reason:    reason,
		Year:      time.Now().Year(),
	}

	sendErr := d.withRetry(ctx, "booking cancellation email", func(ctx context.Context) error {
		return d.Mailer.SendEmail(ctx, customer.Email, "Booking Canceled", bookingCanceledTemplate, data)
	})

	if d.SMS != nil && customer.Phone != nil {
		text := fmt.Sprintf("Your booking %s was canceled: %s", booking.BookingReference, reason)
		if err := d.withRetry(ctx, "booking cancellation SMS", func(ctx context.Context) error {
			return d.SMS.SendSMS(ctx, *customer.Phone, text)
		}); err == nil {
			d.record(ctx, customer.ID, notification_models.NotifBookingCanceled, "sms", "Booking canceled", text)
		}
	}

	d.record(ctx, customer.ID, notification_models.NotifBookingCanceled, "email",
		"Booking canceled",
		fmt.Sprintf("Booking %s was canceled: %s", booking.BookingReference, reason))
	d.notifyProvider(ctx, booking.ProviderID, notification_models.NotifBookingCanceled,
		"Booking canceled",
		fmt.Sprintf("Booking %s was canceled: %s", booking.BookingReference, reason))

	return sendErr
}

// SendPaymentReceipt emails the customer their receipt.
func (d *Dispatcher) SendPaymentReceipt(ctx context.Context, payment *payment_models.Payment) error {
	customer, err := d.Directory.GetUser(ctx, payment.CustomerID)
	if err != nil {
		return err
	}

	paidAt := ""
	if payment.PaidAt != nil {
		paidAt = payment.PaidAt.Format(time.RFC1123)
	}
	data := struct {
		FirstName string
		Amount    string
		Reference string
		PaidAt    string
		Year      int
	}{
		FirstName: customer.FirstName,
		Amount:    formatAmount(payment.Amount, payment.Currency),
		Reference: payment.BookingID.String(),
		PaidAt:    paidAt,
		Year:      time.Now().Year(),
	}

	sendErr := d.withRetry(ctx, "payment receipt email", func(ctx context.Context) error {
		return d.Mailer.SendEmail(ctx, customer.Email, "Payment Receipt", paymentReceiptTemplate, data)
	})

	d.record(ctx, customer.ID, notification_models.NotifPaymentReceipt, "email",
		"Payment received",
		fmt.Sprintf("We received your payment of %s", data.Amount))
	return sendErr
}

// SendPayoutNotice emails the provider's user about an outgoing payout.
func (d *Dispatcher) SendPayoutNotice(ctx context.Context, payout *payout_models.Payout) error {
	provider, err := d.Directory.GetProvider(ctx, payout.ProviderID)
	if err != nil {
		return err
	}
	user, err := d.Directory.GetUser(ctx, provider.UserID)
	if err != nil {
		return err
	}

	currency := "USD"
	data := struct {
		FirstName string
		Amount    string
		Fees      string
		NetAmount string
		Reference string
		Year      int
	}{
		FirstName: user.FirstName,
		Amount:    formatAmount(payout.Amount, currency),
		Fees:      formatAmount(payout.Fees, currency),
		NetAmount: formatAmount(payout.NetAmount, currency),
		Reference: payout.Reference,
		Year:      time.Now().Year(),
	}

	sendErr := d.withRetry(ctx, "payout notice email", func(ctx context.Context) error {
		return d.Mailer.SendEmail(ctx, user.Email, "Payout Issued", payoutNoticeTemplate, data)
	})

	d.record(ctx, user.ID, notification_models.NotifPayoutNotice, "email",
		"Payout issued",
		fmt.Sprintf("Payout %s for %s is on its way", payout.Reference, data.NetAmount))
	return sendErr
}

// NotifyNewMessage leaves an in-app notification for the message recipient.
func (d *Dispatcher) NotifyNewMessage(ctx context.Context, recipientID, senderID uuid.UUID) error {
	sender, err := d.Directory.GetUser(ctx, senderID)
	if err != nil {
		return err
	}
	d.record(ctx, recipientID, notification_models.NotifNewMessage, "in_app",
		"New message",
		fmt.Sprintf("%s %s sent you a message", sender.FirstName, sender.LastName))
	return nil
}

// NotifyNewReview leaves an in-app notification for the reviewed provider.
func (d *Dispatcher) NotifyNewReview(ctx context.Context, providerID uuid.UUID, rating int) error {
	provider, err := d.Directory.GetProvider(ctx, providerID)
	if err != nil {
		return err
	}
	d.record(ctx, provider.UserID, notification_models.NotifNewReview, "in_app",
		"New review",
		fmt.Sprintf("You received a new %d-star review", rating))
	return nil
}

func (d *Dispatcher) notifyProvider(ctx context.Context, providerID uuid.UUID, notifType notification_models.NotificationType, title, message string) {
	provider, err := d.Directory.GetProvider(ctx, providerID)
	if err != nil {
		logger.WarnLogger.Warnf("Cannot resolve provider %s for notification: %v", providerID, err)
		return
	}
	d.record(ctx, provider.UserID, notifType, "in_app", title, message)
}

func (d *Dispatcher) record(ctx context.Context, userID uuid.UUID, notifType notification_models.NotificationType, channel, title, message string) {
	n, err := notification_models.NewNotification(userID, notifType, title, message, channel)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to build notification for user %s: %v", userID, err)
		return
	}
	if err := d.Recorder.SaveNotification(ctx, n); err != nil {
		logger.WarnLogger.Warnf("Failed to persist notification for user %s: %v", userID, err)
	}
}

// withRetry runs send up to maxSendAttempts with linear backoff. The final
// error is wrapped as an external service failure.
func (d *Dispatcher) withRetry(ctx context.Context, what string, send func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		if lastErr = send(ctx); lastErr == nil {
			return nil
		}
		logger.WarnLogger.Warnf("Attempt %d/%d to send %s failed: %v", attempt, maxSendAttempts, what, lastErr)
		if attempt < maxSendAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}
	}
	return apperrors.External(fmt.Sprintf("failed to send %s", what), lastErr)
}

func formatAmount(minor int64, currency string) string {
	return fmt.Sprintf("%s %d.%02d", currency, minor/100, minor%100)
}
