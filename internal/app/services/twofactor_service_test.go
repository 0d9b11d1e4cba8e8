package services

import (
	"context"
	"testing"

	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/functions"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type twoFactorFixture struct {
	users   *mockUserRepo
	factors *mockTwoFactorRepo
	invoker *fakeInvoker
	service *TwoFactorService
}

func newTwoFactorFixture() *twoFactorFixture {
	f := &twoFactorFixture{
		users:   new(mockUserRepo),
		factors: new(mockTwoFactorRepo),
		invoker: newFakeInvoker(),
	}
	f.service = NewTwoFactorService(f.users, f.factors, f.invoker, zerolog.Nop())
	return f
}

// acceptCode makes verify-2fa accept only code for secretRef
func (f *twoFactorFixture) acceptCode(secretRef, code string) {
	f.invoker.on(functions.VerifyTwoFactor, func(request, out any) error {
		req := request.(functions.VerifyTwoFactorRequest)
		out.(*functions.VerifyTwoFactorResponse).Valid = req.SecretRef == secretRef && req.Code == code
		return nil
	})
}

func TestTwoFactorSetup(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the secret reference as pending", func(t *testing.T) {
		f := newTwoFactorFixture()
		f.factors.On("Get", ctx, int64(5)).Return(nil, apperrors.ErrResourceNotFound)
		f.users.On("GetByID", ctx, int64(5)).Return(&models.User{ID: 5, Email: "five@example.org"}, nil)
		f.factors.On("SavePending", ctx, int64(5), "ref-5").Return(nil)
		f.invoker.on(functions.SetupTwoFactor, func(request, out any) error {
			assert.Equal(t, "five@example.org", request.(functions.SetupTwoFactorRequest).Email)
			*out.(*functions.SetupTwoFactorResponse) = functions.SetupTwoFactorResponse{
				SecretRef: "ref-5", OtpauthURL: "otpauth://totp/PARIVARTAN:five", QRCode: "data:image/png;base64,AAA",
			}
			return nil
		})

		resp, err := f.service.Setup(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, "otpauth://totp/PARIVARTAN:five", resp.OtpauthURL)
		f.factors.AssertExpectations(t)
	})

	t.Run("already enabled", func(t *testing.T) {
		f := newTwoFactorFixture()
		f.factors.On("Get", ctx, int64(5)).Return(&models.TwoFactor{UserID: 5, SecretRef: "ref-5", Enabled: true}, nil)

		_, err := f.service.Setup(ctx, 5)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.Zero(t, f.invoker.called(functions.SetupTwoFactor))
	})

	t.Run("function without secret reference", func(t *testing.T) {
		f := newTwoFactorFixture()
		f.factors.On("Get", ctx, int64(5)).Return(nil, apperrors.ErrResourceNotFound)
		f.users.On("GetByID", ctx, int64(5)).Return(&models.User{ID: 5}, nil)
		f.invoker.on(functions.SetupTwoFactor, func(request, out any) error { return nil })

		_, err := f.service.Setup(ctx, 5)
		assert.ErrorIs(t, err, apperrors.ErrExternalService)
		f.factors.AssertNotCalled(t, "SavePending", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTwoFactorEnable(t *testing.T) {
	ctx := context.Background()

	t.Run("valid code enables", func(t *testing.T) {
		f := newTwoFactorFixture()
		f.factors.On("Get", ctx, int64(5)).Return(&models.TwoFactor{UserID: 5, SecretRef: "ref-5"}, nil)
		f.factors.On("Enable", ctx, int64(5)).Return(nil)
		f.acceptCode("ref-5", "123456")

		require.NoError(t, f.service.Enable(ctx, 5, "123456"))
		f.factors.AssertExpectations(t)
	})

	t.Run("wrong code", func(t *testing.T) {
		f := newTwoFactorFixture()
		f.factors.On("Get", ctx, int64(5)).Return(&models.TwoFactor{UserID: 5, SecretRef: "ref-5"}, nil)
		f.acceptCode("ref-5", "123456")

		assert.ErrorIs(t, f.service.Enable(ctx, 5, "000000"), apperrors.ErrTwoFactorInvalid)
		f.factors.AssertNotCalled(t, "Enable", mock.Anything, mock.Anything)
	})

	t.Run("setup not started", func(t *testing.T) {
		f := newTwoFactorFixture()
		f.factors.On("Get", ctx, int64(5)).Return(nil, apperrors.ErrResourceNotFound)

		assert.ErrorIs(t, f.service.Enable(ctx, 5, "123456"), apperrors.ErrBadRequest)
	})
}

func TestTwoFactorDisable(t *testing.T) {
	ctx := context.Background()

	t.Run("valid code removes the factor", func(t *testing.T) {
		f := newTwoFactorFixture()
		f.factors.On("Get", ctx, int64(5)).Return(&models.TwoFactor{UserID: 5, SecretRef: "ref-5", Enabled: true}, nil)
		f.factors.On("Delete", ctx, int64(5)).Return(nil)
		f.acceptCode("ref-5", "654321")

		require.NoError(t, f.service.Disable(ctx, 5, "654321"))
		f.factors.AssertExpectations(t)
	})

	t.Run("wrong code keeps the factor", func(t *testing.T) {
		f := newTwoFactorFixture()
		f.factors.On("Get", ctx, int64(5)).Return(&models.TwoFactor{UserID: 5, SecretRef: "ref-5", Enabled: true}, nil)
		f.acceptCode("ref-5", "654321")

		assert.ErrorIs(t, f.service.Disable(ctx, 5, "111111"), apperrors.ErrTwoFactorInvalid)
		f.factors.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("pending enrollment is not enabled", func(t *testing.T) {
		f := newTwoFactorFixture()
		f.factors.On("Get", ctx, int64(5)).Return(&models.TwoFactor{UserID: 5, SecretRef: "ref-5"}, nil)

		assert.ErrorIs(t, f.service.Disable(ctx, 5, "654321"), apperrors.ErrBadRequest)
		assert.Zero(t, f.invoker.called(functions.VerifyTwoFactor))
	})
}

func TestTwoFactorStatus(t *testing.T) {
	ctx := context.Background()
	f := newTwoFactorFixture()
	f.factors.On("Get", ctx, int64(5)).Return(nil, apperrors.ErrResourceNotFound)

	status, err := f.service.Status(ctx, 5)
	require.NoError(t, err)
	assert.False(t, status.Enabled)
}
