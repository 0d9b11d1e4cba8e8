package functions

// EmailRequest is the send-email payload
type EmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html,omitempty"`
	Text    string `json:"text,omitempty"`
}

// PaymentOrderRequest is the create-payment-order payload
type PaymentOrderRequest struct {
	DonationID int64  `json:"donationId"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	Email      string `json:"email,omitempty"`
}

// PaymentOrderResponse is returned by create-payment-order
type PaymentOrderResponse struct {
	OrderID    string `json:"orderId"`
	PaymentKey string `json:"paymentKey"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
}

// VerifyPaymentRequest is the verify-payment payload
type VerifyPaymentRequest struct {
	DonationID int64  `json:"donationId"`
	OrderID    string `json:"orderId"`
	PaymentID  string `json:"paymentId"`
	Signature  string `json:"signature"`
}

// VerifyPaymentResponse is returned by verify-payment
type VerifyPaymentResponse struct {
	Verified bool   `json:"verified"`
	Reason   string `json:"reason,omitempty"`
}

// SetupTwoFactorRequest is the setup-2fa payload
type SetupTwoFactorRequest struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
}

// SetupTwoFactorResponse is returned by setup-2fa. SecretRef is opaque to the API.
type SetupTwoFactorResponse struct {
	SecretRef  string `json:"secretRef"`
	OtpauthURL string `json:"otpauthUrl"`
	QRCode     string `json:"qrCode"`
}

// VerifyTwoFactorRequest is the verify-2fa payload
type VerifyTwoFactorRequest struct {
	UserID    int64  `json:"userId"`
	SecretRef string `json:"secretRef"`
	Code      string `json:"code"`
}

// VerifyTwoFactorResponse is returned by verify-2fa
type VerifyTwoFactorResponse struct {
	Valid bool `json:"valid"`
}

// GenerateImageRequest is the generate-image payload
type GenerateImageRequest struct {
	UserID int64  `json:"userId"`
	Prompt string `json:"prompt"`
	Style  string `json:"style,omitempty"`
}

// GenerateImageResponse is returned by generate-image
type GenerateImageResponse struct {
	ImageURL string `json:"imageUrl"`
}
