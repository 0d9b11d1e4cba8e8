package models

import "time"

// DonationStatus tracks a donation through payment
type DonationStatus string

const (
	DonationPending   DonationStatus = "pending"
	DonationCompleted DonationStatus = "completed"
	DonationFailed    DonationStatus = "failed"
)

// TransactionStatus tracks the payment provider side
type TransactionStatus string

const (
	TransactionCreated TransactionStatus = "created"
	TransactionSuccess TransactionStatus = "success"
	TransactionFailed  TransactionStatus = "failed"
)

// MinDonationAmount is the smallest accepted donation in minor units
const MinDonationAmount int64 = 100

// Campaign is a fundraising campaign. Amounts are minor currency units.
type Campaign struct {
	ID            int64      `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Description   *string    `json:"description,omitempty" db:"description"`
	GoalAmount    int64      `json:"goalAmount" db:"goal_amount"`
	RaisedAmount  int64      `json:"raisedAmount" db:"raised_amount"`
	Currency      string     `json:"currency" db:"currency"`
	CoverImageURL *string    `json:"coverImageUrl,omitempty" db:"cover_image_url"`
	StartsAt      *time.Time `json:"startsAt,omitempty" db:"starts_at"`
	EndsAt        *time.Time `json:"endsAt,omitempty" db:"ends_at"`
	IsActive      bool       `json:"isActive" db:"is_active"`
	CreatedBy     *int64     `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`

	DonorCount int64 `json:"donorCount"`
}

// AcceptsDonationsAt reports whether the campaign is open for donations
func (c *Campaign) AcceptsDonationsAt(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return false
	}
	if c.EndsAt != nil && !now.Before(*c.EndsAt) {
		return false
	}
	return true
}

// Donation is a pledge towards a campaign
type Donation struct {
	ID          int64          `json:"id" db:"id"`
	CampaignID  int64          `json:"campaignId" db:"campaign_id"`
	UserID      *int64         `json:"userId,omitempty" db:"user_id"`
	Amount      int64          `json:"amount" db:"amount"`
	Currency    string         `json:"currency" db:"currency"`
	IsAnonymous bool           `json:"isAnonymous" db:"is_anonymous"`
	Message     *string        `json:"message,omitempty" db:"message"`
	Status      DonationStatus `json:"status" db:"status"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	CompletedAt *time.Time     `json:"completedAt,omitempty" db:"completed_at"`

	CampaignTitle string       `json:"campaignTitle,omitempty"`
	Donor         *UserSummary `json:"donor,omitempty"`
}

// PaymentTransaction mirrors the payment provider order for a donation
type PaymentTransaction struct {
	ID                int64             `json:"id" db:"id"`
	DonationID        int64             `json:"donationId" db:"donation_id"`
	ProviderOrderID   *string           `json:"providerOrderId,omitempty" db:"provider_order_id"`
	ProviderPaymentID *string           `json:"providerPaymentId,omitempty" db:"provider_payment_id"`
	Amount            int64             `json:"amount" db:"amount"`
	Currency          string            `json:"currency" db:"currency"`
	Status            TransactionStatus `json:"status" db:"status"`
	FailureReason     *string           `json:"failureReason,omitempty" db:"failure_reason"`
	CreatedAt         time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time         `json:"updatedAt" db:"updated_at"`
}

// DonationFilter narrows admin donation listings
type DonationFilter struct {
	CampaignID *int64
	UserID     *int64
	Status     *DonationStatus
}
