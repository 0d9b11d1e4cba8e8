package functions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoke_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/"+VerifyPayment, r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req VerifyPaymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "order_1", req.OrderID)

		_ = json.NewEncoder(w).Encode(VerifyPaymentResponse{Verified: true})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/", APIKey: "secret", Timeout: time.Second})

	var out VerifyPaymentResponse
	err := c.Invoke(context.Background(), VerifyPayment, VerifyPaymentRequest{OrderID: "order_1"}, &out)
	require.NoError(t, err)
	assert.True(t, out.Verified)
}

func TestInvoke_ErrorStatusCarriesReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"provider down"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	err := c.Invoke(context.Background(), CreatePaymentOrder, PaymentOrderRequest{DonationID: 1}, &PaymentOrderResponse{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrExternalService))
	assert.Contains(t, err.Error(), "provider down")
	assert.Contains(t, err.Error(), "502")
}

func TestInvoke_NilOutDiscardsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	assert.NoError(t, c.Invoke(context.Background(), SendEmail, EmailRequest{To: "a@b.c"}, nil))
}

func TestInvoke_NotConfigured(t *testing.T) {
	c := NewClient(Config{})
	err := c.Invoke(context.Background(), GenerateImage, GenerateImageRequest{}, nil)
	assert.True(t, errors.Is(err, apperrors.ErrExternalService))
}

func TestInvoke_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
	err := c.Invoke(context.Background(), SetupTwoFactor, SetupTwoFactorRequest{}, &SetupTwoFactorResponse{})
	assert.True(t, errors.Is(err, apperrors.ErrExternalService))
}
