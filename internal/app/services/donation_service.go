package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	appauth "github.com/parivartan/platform-api/internal/app/auth"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/repositories"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/email"
	"github.com/parivartan/platform-api/internal/pkg/functions"
	"github.com/parivartan/platform-api/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// DonationService handles campaigns and the donation payment flow
type DonationService struct {
	campaignRepo repositories.ICampaignRepository
	donationRepo repositories.IDonationRepository
	userRepo     repositories.IUserRepository
	functions    functions.Invoker
	mailer       email.Mailer
	notifier     Notifier
	currency     string
	logger       zerolog.Logger
	now          func() time.Time
}

// NewDonationService creates a new DonationService. currency is the default for new campaigns.
func NewDonationService(
	campaignRepo repositories.ICampaignRepository,
	donationRepo repositories.IDonationRepository,
	userRepo repositories.IUserRepository,
	invoker functions.Invoker,
	mailer email.Mailer,
	notifier Notifier,
	currency string,
	logger zerolog.Logger,
) *DonationService {
	if currency == "" {
		currency = "INR"
	}
	return &DonationService{
		campaignRepo: campaignRepo,
		donationRepo: donationRepo,
		userRepo:     userRepo,
		functions:    invoker,
		mailer:       mailer,
		notifier:     notifier,
		currency:     strings.ToUpper(currency),
		logger:       logger,
		now:          time.Now,
	}
}

// ListCampaigns lists campaigns newest first; non-staff only see active ones
func (s *DonationService) ListCampaigns(ctx context.Context, viewer appauth.Actor, page, size int) (*dto.PaginatedResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	campaigns, total, err := s.campaignRepo.List(ctx, !viewer.IsStaff(), offset, limit)
	if err != nil {
		return nil, err
	}
	if campaigns == nil {
		campaigns = []*models.Campaign{}
	}
	return paginate(campaigns, total, page, size), nil
}

// GetCampaign returns a campaign with raised amount and donor count
func (s *DonationService) GetCampaign(ctx context.Context, viewer appauth.Actor, id int64) (*models.Campaign, error) {
	c, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsActive && !viewer.IsStaff() {
		return nil, apperrors.NewResourceNotFoundError("campaign not found")
	}
	return c, nil
}

func (s *DonationService) applyCampaignRequest(c *models.Campaign, req *dto.CampaignRequest, defaultActive bool) error {
	if req.GoalAmount <= 0 {
		return apperrors.NewBadRequestError("goal amount must be positive")
	}
	if req.StartsAt != nil && req.EndsAt != nil && !req.EndsAt.After(*req.StartsAt) {
		return apperrors.NewBadRequestError("campaign end must be after its start")
	}
	c.Title = req.Title
	c.Description = req.Description
	c.GoalAmount = req.GoalAmount
	if req.Currency != "" {
		c.Currency = strings.ToUpper(req.Currency)
	} else if c.Currency == "" {
		c.Currency = s.currency
	}
	c.CoverImageURL = req.CoverImageURL
	c.StartsAt = req.StartsAt
	c.EndsAt = req.EndsAt
	c.IsActive = boolOr(req.IsActive, defaultActive)
	return nil
}

// CreateCampaign starts a new campaign
func (s *DonationService) CreateCampaign(ctx context.Context, actor appauth.Actor, req *dto.CampaignRequest) (*models.Campaign, error) {
	c := &models.Campaign{CreatedBy: &actor.UserID}
	if err := s.applyCampaignRequest(c, req, true); err != nil {
		return nil, err
	}
	if err := s.campaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCampaign replaces campaign details. The raised amount is never edited here.
func (s *DonationService) UpdateCampaign(ctx context.Context, id int64, req *dto.CampaignRequest) (*models.Campaign, error) {
	c, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyCampaignRequest(c, req, c.IsActive); err != nil {
		return nil, err
	}
	if err := s.campaignRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCampaign removes a campaign without donations
func (s *DonationService) DeleteCampaign(ctx context.Context, id int64) error {
	return s.campaignRepo.Delete(ctx, id)
}

// Donate opens a pending donation and a provider order for it
func (s *DonationService) Donate(ctx context.Context, actor appauth.Actor, campaignID int64, req *dto.DonateRequest) (*dto.DonateResponse, error) {
	if req.Amount < models.MinDonationAmount {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("minimum donation is %d", models.MinDonationAmount))
	}

	campaign, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if !campaign.AcceptsDonationsAt(s.now()) {
		return nil, apperrors.NewBadRequestError("this campaign is not accepting donations")
	}

	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	donation := &models.Donation{
		CampaignID:  campaignID,
		UserID:      &actor.UserID,
		Amount:      req.Amount,
		Currency:    campaign.Currency,
		IsAnonymous: req.Anonymous,
		Message:     req.Message,
		Status:      models.DonationPending,
	}
	if _, err := s.donationRepo.CreatePending(ctx, donation); err != nil {
		return nil, err
	}

	var order functions.PaymentOrderResponse
	err = s.functions.Invoke(ctx, functions.CreatePaymentOrder, functions.PaymentOrderRequest{
		DonationID: donation.ID,
		Amount:     donation.Amount,
		Currency:   donation.Currency,
		Email:      user.Email,
	}, &order)
	if err == nil && order.OrderID == "" {
		err = apperrors.NewExternalServiceError("payment provider returned no order id")
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("donationID", donation.ID).Msg("Payment order creation failed")
		if markErr := s.donationRepo.MarkFailed(ctx, donation.ID, err.Error()); markErr != nil {
			s.logger.Error().Err(markErr).Int64("donationID", donation.ID).Msg("Error marking donation failed")
		}
		return nil, apperrors.NewExternalServiceError("could not create a payment order, please try again")
	}

	if err := s.donationRepo.SetProviderOrder(ctx, donation.ID, order.OrderID); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("donationID", donation.ID).Int64("campaignID", campaignID).Int64("amount", donation.Amount).Msg("Donation started")
	return &dto.DonateResponse{
		DonationID: donation.ID,
		OrderID:    order.OrderID,
		PaymentKey: order.PaymentKey,
		Amount:     donation.Amount,
		Currency:   donation.Currency,
	}, nil
}

// VerifyPayment checks the provider signature and completes the donation.
// Verifying an already completed donation returns it unchanged.
func (s *DonationService) VerifyPayment(ctx context.Context, actor appauth.Actor, donationID int64, req *dto.VerifyPaymentRequest) (*models.Donation, error) {
	donation, err := s.donationRepo.GetByID(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if donation.UserID == nil || *donation.UserID != actor.UserID {
		if !actor.IsStaff() {
			return nil, apperrors.NewResourceNotFoundError("donation not found")
		}
	}

	switch donation.Status {
	case models.DonationCompleted:
		return donation, nil
	case models.DonationFailed:
		return nil, apperrors.NewCustomError(apperrors.ErrPaymentFailed, "this donation has already failed")
	}

	txn, err := s.donationRepo.GetTransaction(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if txn.ProviderOrderID == nil || *txn.ProviderOrderID != req.OrderID {
		return nil, apperrors.NewBadRequestError("order id does not match this donation")
	}

	var result functions.VerifyPaymentResponse
	if err := s.functions.Invoke(ctx, functions.VerifyPayment, functions.VerifyPaymentRequest{
		DonationID: donationID,
		OrderID:    req.OrderID,
		PaymentID:  req.PaymentID,
		Signature:  req.Signature,
	}, &result); err != nil {
		return nil, err
	}

	if !result.Verified {
		reason := result.Reason
		if reason == "" {
			reason = "signature verification failed"
		}
		if err := s.donationRepo.MarkFailed(ctx, donationID, reason); err != nil {
			return nil, err
		}
		s.logger.Warn().Int64("donationID", donationID).Str("reason", reason).Msg("Payment verification failed")
		return nil, apperrors.NewCustomError(apperrors.ErrPaymentFailed, "payment could not be verified")
	}

	completed, alreadyCompleted, err := s.donationRepo.Complete(ctx, donationID, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if !alreadyCompleted {
		s.afterCompletion(ctx, completed, req.PaymentID)
	}
	return completed, nil
}

// afterCompletion notifies the donor and queues the receipt
func (s *DonationService) afterCompletion(ctx context.Context, d *models.Donation, paymentID string) {
	s.logger.Info().Int64("donationID", d.ID).Int64("amount", d.Amount).Msg("Donation completed")
	if d.UserID == nil {
		return
	}

	campaignTitle := d.CampaignTitle
	if campaignTitle == "" {
		if c, err := s.campaignRepo.GetByID(ctx, d.CampaignID); err == nil {
			campaignTitle = c.Title
		}
	}

	receipt := email.Receipt{
		CampaignTitle: campaignTitle,
		Amount:        d.Amount,
		Currency:      d.Currency,
		DonationID:    d.ID,
		PaymentID:     paymentID,
	}
	s.notifier.Notify(ctx, newNotification(*d.UserID, models.NotificationDonationReceived,
		"Thank you for your donation",
		fmt.Sprintf("%s to %s", receipt.FormattedAmount(), campaignTitle),
		fmt.Sprintf("/campaigns/%d", d.CampaignID)))

	user, err := s.userRepo.GetByID(ctx, *d.UserID)
	if err != nil {
		s.logger.Error().Err(err).Int64("donationID", d.ID).Msg("Error loading donor for receipt")
		return
	}
	receipt.DonorName = displayName(user)
	if err := s.mailer.SendDonationReceipt(ctx, user.Email, receipt); err != nil {
		s.logger.Error().Err(err).Int64("donationID", d.ID).Msg("Error sending donation receipt")
	}
}

// ListMine lists the caller's donations
func (s *DonationService) ListMine(ctx context.Context, actor appauth.Actor, page, size int) (*dto.PaginatedResponse, error) {
	return s.List(ctx, models.DonationFilter{UserID: &actor.UserID}, page, size)
}

// List lists donations matching filter, newest first
func (s *DonationService) List(ctx context.Context, filter models.DonationFilter, page, size int) (*dto.PaginatedResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	donations, total, err := s.donationRepo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, err
	}
	if donations == nil {
		donations = []*models.Donation{}
	}
	return paginate(donations, total, page, size), nil
}
