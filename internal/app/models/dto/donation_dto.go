package dto

import "time"

// CampaignRequest creates or replaces a campaign. Amounts are minor units.
type CampaignRequest struct {
	Title         string     `json:"title" binding:"required,max=200"`
	Description   *string    `json:"description" binding:"omitempty,max=10000"`
	GoalAmount    int64      `json:"goalAmount" binding:"required,gt=0"`
	Currency      string     `json:"currency" binding:"omitempty,len=3"`
	CoverImageURL *string    `json:"coverImageUrl" binding:"omitempty,url"`
	StartsAt      *time.Time `json:"startsAt"`
	EndsAt        *time.Time `json:"endsAt"`
	IsActive      *bool      `json:"isActive"`
}

// DonateRequest starts a donation
type DonateRequest struct {
	Amount    int64   `json:"amount" binding:"required,min=100"`
	Anonymous bool    `json:"anonymous"`
	Message   *string `json:"message" binding:"omitempty,max=500"`
}

// DonateResponse hands the client what it needs to open the payment sheet
type DonateResponse struct {
	DonationID int64  `json:"donationId"`
	OrderID    string `json:"orderId"`
	PaymentKey string `json:"paymentKey,omitempty"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
}

// VerifyPaymentRequest carries the provider callback fields
type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId" binding:"required"`
	PaymentID string `json:"paymentId" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}
