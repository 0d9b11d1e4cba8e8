package services

import (
	"context"
	"errors"
	"testing"
	"time"

	appauth "github.com/parivartan/platform-api/internal/app/auth"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/functions"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type donationFixture struct {
	campaigns *mockCampaignRepo
	donations *mockDonationRepo
	users     *mockUserRepo
	invoker   *fakeInvoker
	mailer    *fakeMailer
	notifier  *fakeNotifier
	service   *DonationService
	now       time.Time
}

func newDonationFixture() *donationFixture {
	f := &donationFixture{
		campaigns: new(mockCampaignRepo),
		donations: new(mockDonationRepo),
		users:     new(mockUserRepo),
		invoker:   newFakeInvoker(),
		mailer:    &fakeMailer{},
		notifier:  &fakeNotifier{},
		now:       time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC),
	}
	f.service = NewDonationService(f.campaigns, f.donations, f.users, f.invoker, f.mailer, f.notifier, "inr", zerolog.Nop())
	f.service.now = func() time.Time { return f.now }
	return f
}

var donor = appauth.Actor{UserID: 11, Role: models.RoleMember}

func openCampaign() *models.Campaign {
	return &models.Campaign{ID: 3, Title: "Clean water", GoalAmount: 100000, Currency: "INR", IsActive: true}
}

func TestDonate(t *testing.T) {
	ctx := context.Background()

	t.Run("below minimum", func(t *testing.T) {
		f := newDonationFixture()
		_, err := f.service.Donate(ctx, donor, 3, &dto.DonateRequest{Amount: 99})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("closed campaign", func(t *testing.T) {
		f := newDonationFixture()
		c := openCampaign()
		ended := f.now.Add(-time.Hour)
		c.EndsAt = &ended
		f.campaigns.On("GetByID", ctx, int64(3)).Return(c, nil)

		_, err := f.service.Donate(ctx, donor, 3, &dto.DonateRequest{Amount: 500})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("opens provider order", func(t *testing.T) {
		f := newDonationFixture()
		f.campaigns.On("GetByID", ctx, int64(3)).Return(openCampaign(), nil)
		f.users.On("GetByID", ctx, donor.UserID).Return(&models.User{ID: donor.UserID, Email: "d@example.org"}, nil)
		f.donations.On("CreatePending", ctx, mock.MatchedBy(func(d *models.Donation) bool {
			return d.Status == models.DonationPending && d.Amount == 500 && d.Currency == "INR"
		})).Return(&models.PaymentTransaction{ID: 1}, nil)
		f.donations.On("SetProviderOrder", ctx, int64(7), "order_1").Return(nil)
		f.invoker.on(functions.CreatePaymentOrder, func(request, out any) error {
			req := request.(functions.PaymentOrderRequest)
			assert.Equal(t, int64(7), req.DonationID)
			assert.Equal(t, "d@example.org", req.Email)
			*out.(*functions.PaymentOrderResponse) = functions.PaymentOrderResponse{OrderID: "order_1", PaymentKey: "key"}
			return nil
		})

		resp, err := f.service.Donate(ctx, donor, 3, &dto.DonateRequest{Amount: 500})
		require.NoError(t, err)
		assert.Equal(t, &dto.DonateResponse{DonationID: 7, OrderID: "order_1", PaymentKey: "key", Amount: 500, Currency: "INR"}, resp)
		f.donations.AssertExpectations(t)
	})

	t.Run("provider failure marks donation failed", func(t *testing.T) {
		f := newDonationFixture()
		f.campaigns.On("GetByID", ctx, int64(3)).Return(openCampaign(), nil)
		f.users.On("GetByID", ctx, donor.UserID).Return(&models.User{ID: donor.UserID, Email: "d@example.org"}, nil)
		f.donations.On("CreatePending", ctx, mock.Anything).Return(&models.PaymentTransaction{ID: 1}, nil)
		f.donations.On("MarkFailed", ctx, int64(7), mock.AnythingOfType("string")).Return(nil)
		f.invoker.on(functions.CreatePaymentOrder, func(request, out any) error {
			return errors.New("provider down")
		})

		_, err := f.service.Donate(ctx, donor, 3, &dto.DonateRequest{Amount: 500})
		assert.ErrorIs(t, err, apperrors.ErrExternalService)
		f.donations.AssertCalled(t, "MarkFailed", ctx, int64(7), mock.AnythingOfType("string"))
		f.donations.AssertNotCalled(t, "SetProviderOrder", mock.Anything, mock.Anything, mock.Anything)
	})
}

func pendingDonation() *models.Donation {
	uid := donor.UserID
	return &models.Donation{ID: 7, CampaignID: 3, UserID: &uid, Amount: 500, Currency: "INR", Status: models.DonationPending, CampaignTitle: "Clean water"}
}

func TestVerifyPayment(t *testing.T) {
	ctx := context.Background()
	order := "order_1"
	req := &dto.VerifyPaymentRequest{OrderID: order, PaymentID: "pay_1", Signature: "sig"}

	t.Run("other users see not found", func(t *testing.T) {
		f := newDonationFixture()
		f.donations.On("GetByID", ctx, int64(7)).Return(pendingDonation(), nil)

		_, err := f.service.VerifyPayment(ctx, appauth.Actor{UserID: 99, Role: models.RoleMember}, 7, req)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})

	t.Run("order mismatch", func(t *testing.T) {
		f := newDonationFixture()
		other := "order_2"
		f.donations.On("GetByID", ctx, int64(7)).Return(pendingDonation(), nil)
		f.donations.On("GetTransaction", ctx, int64(7)).Return(&models.PaymentTransaction{DonationID: 7, ProviderOrderID: &other}, nil)

		_, err := f.service.VerifyPayment(ctx, donor, 7, req)
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("bad signature fails the donation", func(t *testing.T) {
		f := newDonationFixture()
		f.donations.On("GetByID", ctx, int64(7)).Return(pendingDonation(), nil)
		f.donations.On("GetTransaction", ctx, int64(7)).Return(&models.PaymentTransaction{DonationID: 7, ProviderOrderID: &order}, nil)
		f.donations.On("MarkFailed", ctx, int64(7), "bad signature").Return(nil)
		f.invoker.on(functions.VerifyPayment, func(request, out any) error {
			*out.(*functions.VerifyPaymentResponse) = functions.VerifyPaymentResponse{Verified: false, Reason: "bad signature"}
			return nil
		})

		_, err := f.service.VerifyPayment(ctx, donor, 7, req)
		assert.ErrorIs(t, err, apperrors.ErrPaymentFailed)
		f.donations.AssertExpectations(t)
		assert.Zero(t, f.notifier.count())
	})

	t.Run("completes once and sends receipt", func(t *testing.T) {
		f := newDonationFixture()
		completed := pendingDonation()
		completed.Status = models.DonationCompleted
		f.donations.On("GetByID", ctx, int64(7)).Return(pendingDonation(), nil)
		f.donations.On("GetTransaction", ctx, int64(7)).Return(&models.PaymentTransaction{DonationID: 7, ProviderOrderID: &order}, nil)
		f.donations.On("Complete", ctx, int64(7), "pay_1").Return(completed, false, nil)
		f.users.On("GetByID", ctx, donor.UserID).Return(&models.User{ID: donor.UserID, Email: "d@example.org"}, nil)
		f.invoker.on(functions.VerifyPayment, func(request, out any) error {
			out.(*functions.VerifyPaymentResponse).Verified = true
			return nil
		})

		got, err := f.service.VerifyPayment(ctx, donor, 7, req)
		require.NoError(t, err)
		assert.Equal(t, models.DonationCompleted, got.Status)
		assert.Equal(t, 1, f.notifier.count())
		assert.Equal(t, models.NotificationDonationReceived, f.notifier.sent[0].Type)
		require.Equal(t, []string{"receipt"}, f.mailer.kinds())
		assert.Equal(t, "Clean water", f.mailer.sent[0].Receipt.CampaignTitle)
		assert.Equal(t, "pay_1", f.mailer.sent[0].Receipt.PaymentID)
	})

	t.Run("racing completion does not notify twice", func(t *testing.T) {
		f := newDonationFixture()
		completed := pendingDonation()
		completed.Status = models.DonationCompleted
		f.donations.On("GetByID", ctx, int64(7)).Return(pendingDonation(), nil)
		f.donations.On("GetTransaction", ctx, int64(7)).Return(&models.PaymentTransaction{DonationID: 7, ProviderOrderID: &order}, nil)
		f.donations.On("Complete", ctx, int64(7), "pay_1").Return(completed, true, nil)
		f.invoker.on(functions.VerifyPayment, func(request, out any) error {
			out.(*functions.VerifyPaymentResponse).Verified = true
			return nil
		})

		_, err := f.service.VerifyPayment(ctx, donor, 7, req)
		require.NoError(t, err)
		assert.Zero(t, f.notifier.count())
		assert.Empty(t, f.mailer.kinds())
	})

	t.Run("donation failed while verifying", func(t *testing.T) {
		f := newDonationFixture()
		f.donations.On("GetByID", ctx, int64(7)).Return(pendingDonation(), nil)
		f.donations.On("GetTransaction", ctx, int64(7)).Return(&models.PaymentTransaction{DonationID: 7, ProviderOrderID: &order}, nil)
		f.donations.On("Complete", ctx, int64(7), "pay_1").
			Return(nil, false, apperrors.NewCustomError(apperrors.ErrPaymentFailed, "donation is no longer pending"))
		f.invoker.on(functions.VerifyPayment, func(request, out any) error {
			out.(*functions.VerifyPaymentResponse).Verified = true
			return nil
		})

		_, err := f.service.VerifyPayment(ctx, donor, 7, req)
		assert.ErrorIs(t, err, apperrors.ErrPaymentFailed)
		assert.Zero(t, f.notifier.count())
		assert.Empty(t, f.mailer.kinds())
	})

	t.Run("already completed skips the provider", func(t *testing.T) {
		f := newDonationFixture()
		completed := pendingDonation()
		completed.Status = models.DonationCompleted
		f.donations.On("GetByID", ctx, int64(7)).Return(completed, nil)

		got, err := f.service.VerifyPayment(ctx, donor, 7, req)
		require.NoError(t, err)
		assert.Equal(t, completed, got)
		assert.Zero(t, f.invoker.called(functions.VerifyPayment))
	})
}
