package dto

import (
	"time"

	"github.com/parivartan/platform-api/internal/app/models"
)

// GenerateImageRequest asks the studio for an image
type GenerateImageRequest struct {
	Prompt string  `json:"prompt" binding:"required,min=3,max=1000"`
	Style  *string `json:"style" binding:"omitempty,max=50"`
}

// GenerateImageResponse is the generated asset
type GenerateImageResponse struct {
	ImageURL string `json:"imageUrl"`
	UsageID  int64  `json:"usageId"`
}

// StudioUsageResponse reports the caller's quota
type StudioUsageResponse struct {
	UsedToday  int64             `json:"usedToday"`
	DailyLimit int               `json:"dailyLimit"`
	Unlimited  bool              `json:"unlimited"`
	History    []*models.AIUsage `json:"history"`
}

// AskRequest is a chatbot question
type AskRequest struct {
	Question string `json:"question" binding:"required,min=1,max=500"`
}

// AskResponse is the chatbot answer
type AskResponse struct {
	Answer  string `json:"answer"`
	Matched bool   `json:"matched"`
	FAQID   *int64 `json:"faqId,omitempty"`
}

// FAQRequest creates or replaces a chatbot entry
type FAQRequest struct {
	Question string   `json:"question" binding:"required,max=500"`
	Answer   string   `json:"answer" binding:"required,max=5000"`
	Keywords []string `json:"keywords" binding:"omitempty,max=50,dive,min=1,max=50"`
	Priority int      `json:"priority"`
	IsActive *bool    `json:"isActive"`
}

// ClientErrorRequest is an error reported by the frontend
type ClientErrorRequest struct {
	Message   string  `json:"message" binding:"required,max=2000"`
	Stack     *string `json:"stack" binding:"omitempty,max=20000"`
	URL       *string `json:"url" binding:"omitempty,max=2000"`
	UserAgent *string `json:"userAgent" binding:"omitempty,max=500"`
	Severity  string  `json:"severity" binding:"omitempty,oneof=info warning error critical"`
}

// PurgeResponse reports deleted log rows
type PurgeResponse struct {
	Deleted   int64     `json:"deleted"`
	OlderThan time.Time `json:"olderThan"`
}
