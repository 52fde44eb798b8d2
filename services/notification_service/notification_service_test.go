package notification_service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/booking_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/notification_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/payment_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/payout_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/provider_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/user_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/apperrors"
)

type fakeDirectory struct {
	users     map[uuid.UUID]*user_models.User
	providers map[uuid.UUID]*provider_models.ServiceProviderProfile
}

func (d *fakeDirectory) GetUser(_ context.Context, id uuid.UUID) (*user_models.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return u, nil
}

func (d *fakeDirectory) GetProvider(_ context.Context, id uuid.UUID) (*provider_models.ServiceProviderProfile, error) {
	p, ok := d.providers[id]
	if !ok {
		return nil, apperrors.NotFound("provider not found")
	}
	return p, nil
}

type fakeRecorder struct {
	mu    sync.Mutex
	saved []*notification_models.Notification
}

func (r *fakeRecorder) SaveNotification(_ context.Context, n *notification_models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, n)
	return nil
}

func (r *fakeRecorder) forUser(userID uuid.UUID) []*notification_models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*notification_models.Notification
	for _, n := range r.saved {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// fakeMailer fails the first failUntil calls and succeeds afterwards.
type fakeMailer struct {
	mu        sync.Mutex
	calls     int
	failUntil int
	lastTo    string
	lastPath  string
}

func (m *fakeMailer) SendEmail(_ context.Context, toEmail, _, templatePath string, _ interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastTo = toEmail
	m.lastPath = templatePath
	if m.calls <= m.failUntil {
		return errors.New("smtp: connection reset")
	}
	return nil
}

type fakeSMS struct {
	mu    sync.Mutex
	sent  []string
	texts []string
}

func (s *fakeSMS) SendSMS(_ context.Context, to, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to)
	s.texts = append(s.texts, body)
	return nil
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *fakeDirectory, *fakeRecorder, *fakeMailer, *fakeSMS) {
	t.Helper()
	dir := &fakeDirectory{
		users:     map[uuid.UUID]*user_models.User{},
		providers: map[uuid.UUID]*provider_models.ServiceProviderProfile{},
	}
	rec := &fakeRecorder{}
	mailer := &fakeMailer{}
	sms := &fakeSMS{}
	return NewDispatcher(dir, rec, mailer, sms), dir, rec, mailer, sms
}

func seedCustomer(t *testing.T, dir *fakeDirectory, phone *string) *user_models.User {
	t.Helper()
	u, err := user_models.NewUser("rina@example.com", "pw123456", "Rina", "Shrestha", "customer")
	require.NoError(t, err)
	u.Phone = phone
	dir.users[u.ID] = u
	return u
}

func seedProvider(t *testing.T, dir *fakeDirectory) *provider_models.ServiceProviderProfile {
	t.Helper()
	owner, err := user_models.NewUser("owner@example.com", "pw123456", "Hari", "Gurung", "provider")
	require.NoError(t, err)
	dir.users[owner.ID] = owner

	p, err := provider_models.NewProviderProfile(owner.ID, "Gurung Cleaning", "", "Pokhara")
	require.NoError(t, err)
	dir.providers[p.ID] = p
	return p
}

func seedTestBooking(t *testing.T, customerID, providerID uuid.UUID) *booking_models.Booking {
	t.Helper()
	start := time.Date(2026, 9, 12, 14, 0, 0, 0, time.UTC)
	b, err := booking_models.NewBooking(customerID, providerID, uuid.New(), start, start, start.Add(time.Hour), 7500, "USD")
	require.NoError(t, err)
	return b
}

func TestSendBookingConfirmation(t *testing.T) {
	d, dir, rec, mailer, _ := newTestDispatcher(t)
	customer := seedCustomer(t, dir, nil)
	provider := seedProvider(t, dir)
	booking := seedTestBooking(t, customer.ID, provider.ID)

	require.NoError(t, d.SendBookingConfirmation(context.Background(), booking))

	assert.Equal(t, customer.Email, mailer.lastTo)
	assert.Equal(t, bookingConfirmationTemplate, mailer.lastPath)

	// Customer gets the email record, the provider's user an in-app one.
	require.Len(t, rec.forUser(customer.ID), 1)
	assert.Equal(t, "email", rec.forUser(customer.ID)[0].Channel)
	require.Len(t, rec.forUser(provider.UserID), 1)
	assert.Equal(t, "in_app", rec.forUser(provider.UserID)[0].Channel)
}

func TestSendBookingCanceled(t *testing.T) {
	t.Run("WithPhoneSendsSMS", func(t *testing.T) {
		d, dir, rec, _, sms := newTestDispatcher(t)
		phone := "+9779800000001"
		customer := seedCustomer(t, dir, &phone)
		provider := seedProvider(t, dir)
		booking := seedTestBooking(t, customer.ID, provider.ID)

		require.NoError(t, d.SendBookingCanceled(context.Background(), booking, "provider unavailable"))

		require.Len(t, sms.sent, 1)
		assert.Equal(t, phone, sms.sent[0])
		assert.Contains(t, sms.texts[0], booking.BookingReference)
		// email + sms records for the customer
		assert.Len(t, rec.forUser(customer.ID), 2)
	})

	t.Run("WithoutPhoneSkipsSMS", func(t *testing.T) {
		d, dir, rec, _, sms := newTestDispatcher(t)
		customer := seedCustomer(t, dir, nil)
		provider := seedProvider(t, dir)
		booking := seedTestBooking(t, customer.ID, provider.ID)

		require.NoError(t, d.SendBookingCanceled(context.Background(), booking, "provider unavailable"))
		assert.Empty(t, sms.sent)
		assert.Len(t, rec.forUser(customer.ID), 1)
	})
}

func TestSendPaymentReceipt(t *testing.T) {
	d, dir, rec, mailer, _ := newTestDispatcher(t)
	customer := seedCustomer(t, dir, nil)

	paidAt := time.Now().UTC()
	payment, err := payment_models.NewPayment(uuid.New(), customer.ID, uuid.New(), 12345, "USD", "order_abc")
	require.NoError(t, err)
	payment.PaidAt = &paidAt

	require.NoError(t, d.SendPaymentReceipt(context.Background(), payment))
	assert.Equal(t, customer.Email, mailer.lastTo)
	require.Len(t, rec.forUser(customer.ID), 1)
	assert.Contains(t, rec.forUser(customer.ID)[0].Message, "USD 123.45")
}

func TestSendPayoutNotice(t *testing.T) {
	d, dir, rec, mailer, _ := newTestDispatcher(t)
	provider := seedProvider(t, dir)

	payout, err := payout_models.NewPayout(provider.ID, 10000, 500)
	require.NoError(t, err)

	require.NoError(t, d.SendPayoutNotice(context.Background(), payout))

	// The notice goes to the human behind the profile.
	assert.Equal(t, dir.users[provider.UserID].Email, mailer.lastTo)
	require.Len(t, rec.forUser(provider.UserID), 1)
	assert.Contains(t, rec.forUser(provider.UserID)[0].Message, payout.Reference)
}

func TestWithRetry(t *testing.T) {
	t.Run("RecoversWithinBudget", func(t *testing.T) {
		d, dir, _, mailer, _ := newTestDispatcher(t)
		customer := seedCustomer(t, dir, nil)
		provider := seedProvider(t, dir)
		booking := seedTestBooking(t, customer.ID, provider.ID)
		mailer.failUntil = 2

		require.NoError(t, d.SendBookingConfirmation(context.Background(), booking))
		assert.Equal(t, 3, mailer.calls)
	})

	t.Run("ExhaustedRetriesAreExternal", func(t *testing.T) {
		d, dir, rec, mailer, _ := newTestDispatcher(t)
		customer := seedCustomer(t, dir, nil)
		provider := seedProvider(t, dir)
		booking := seedTestBooking(t, customer.ID, provider.ID)
		mailer.failUntil = maxSendAttempts

		err := d.SendBookingConfirmation(context.Background(), booking)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindExternalService))
		assert.Equal(t, maxSendAttempts, mailer.calls)
		// The in-app records still land even when the email does not.
		assert.NotEmpty(t, rec.forUser(customer.ID))
	})
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "USD 123.45", formatAmount(12345, "USD"))
	assert.Equal(t, "USD 0.05", formatAmount(5, "USD"))
	assert.Equal(t, "NPR 100.00", formatAmount(10000, "NPR"))
}
