package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/logger"
)

// Names of the serverless functions the API calls
const (
	SendEmail          = "send-email"
	CreatePaymentOrder = "create-payment-order"
	VerifyPayment      = "verify-payment"
	SetupTwoFactor     = "setup-2fa"
	VerifyTwoFactor    = "verify-2fa"
	GenerateImage      = "generate-image"
)

// maxErrorBody bounds how much of a failed response body is read
const maxErrorBody = 4096

// Invoker calls a named function with a JSON request and decodes the JSON response into out
type Invoker interface {
	Invoke(ctx context.Context, name string, request any, out any) error
}

// Config holds the functions endpoint settings
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client invokes serverless functions over HTTPS
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a new functions client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Invoke POSTs request as JSON to {baseURL}/{name}. A non-2xx answer becomes an
// ErrExternalService carrying the status and the body's error field.
func (c *Client) Invoke(ctx context.Context, name string, request any, out any) error {
	if c.baseURL == "" {
		return apperrors.NewExternalServiceError(fmt.Sprintf("function %s is not configured", name))
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+name, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Error().Err(err).Str("function", name).Msg("Function call failed")
		return &apperrors.CustomError{
			Err:     apperrors.ErrExternalService,
			Message: fmt.Sprintf("function %s unreachable: %v", name, err),
		}
	}
	defer resp.Body.Close()

	logger.Debug().
		Str("function", name).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Function invoked")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		reason := strings.TrimSpace(string(body))
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil {
			if eb.Error != "" {
				reason = eb.Error
			} else if eb.Message != "" {
				reason = eb.Message
			}
		}
		logger.Warn().Str("function", name).Int("status", resp.StatusCode).Str("reason", reason).Msg("Function returned an error")
		return &apperrors.CustomError{
			Err:     apperrors.ErrExternalService,
			Message: fmt.Sprintf("function %s failed with status %d: %s", name, resp.StatusCode, reason),
			Details: map[string]interface{}{"function": name, "status": resp.StatusCode},
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return &apperrors.CustomError{
			Err:     apperrors.ErrExternalService,
			Message: fmt.Sprintf("function %s returned an invalid response: %v", name, err),
		}
	}
	return nil
}
