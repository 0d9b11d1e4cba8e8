package services

import (
	"context"
	"testing"
	"time"

	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/auth"
	"github.com/parivartan/platform-api/internal/pkg/functions"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	users      *mockUserRepo
	tokens     *mockTokenRepo
	userTokens *mockUserTokenRepo
	twoFactor  *mockTwoFactorRepo
	invoker    *fakeInvoker
	mailer     *fakeMailer
	service    *AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:      new(mockUserRepo),
		tokens:     new(mockTokenRepo),
		userTokens: new(mockUserTokenRepo),
		twoFactor:  new(mockTwoFactorRepo),
		invoker:    newFakeInvoker(),
		mailer:     &fakeMailer{},
	}
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "test",
	})
	f.service = NewAuthService(f.users, f.tokens, f.userTokens, f.twoFactor, jwtService, f.invoker, f.mailer, zerolog.Nop())
	return f
}

func activeUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return &models.User{
		ID:           11,
		Email:        "asha@example.org",
		PasswordHash: hash,
		IsActive:     true,
		Role:         models.RoleMember,
		Profile:      &models.Profile{UserID: 11, Username: "asha", FullName: "Asha Rao"},
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate email", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("EmailExists", ctx, "asha@example.org").Return(true, nil)

		_, err := f.service.Register(ctx, &dto.RegisterRequest{Email: " Asha@Example.org ", Password: "Secret123", Username: "asha", FullName: "Asha"})
		assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
	})

	t.Run("creates viewer and sends verification", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("EmailExists", ctx, "asha@example.org").Return(false, nil)
		f.users.On("CreateAccount", ctx, mock.AnythingOfType("*models.User"), mock.AnythingOfType("*models.Profile"), models.RoleViewer).Return(nil)
		f.userTokens.On("Create", ctx, mock.MatchedBy(func(tok *models.UserToken) bool {
			return tok.Purpose == models.TokenPurposeEmailVerification && tok.UserID == 42
		})).Return(nil)

		resp, err := f.service.Register(ctx, &dto.RegisterRequest{Email: "asha@example.org", Password: "Secret123", Username: "asha", FullName: "Asha"})
		require.NoError(t, err)
		assert.Equal(t, int64(42), resp.ID)
		assert.Equal(t, models.RoleViewer, resp.Role)
		assert.Equal(t, []string{"verification"}, f.mailer.kinds())
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmail", ctx, "asha@example.org").Return(activeUser(t, "Secret123"), nil)

		_, err := f.service.Login(ctx, &dto.LoginRequest{Email: "asha@example.org", Password: "nope"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown email looks like wrong password", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmail", ctx, "ghost@example.org").Return(nil, apperrors.ErrUserNotFound)

		_, err := f.service.Login(ctx, &dto.LoginRequest{Email: "ghost@example.org", Password: "x"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("disabled account", func(t *testing.T) {
		f := newAuthFixture()
		user := activeUser(t, "Secret123")
		user.IsActive = false
		f.users.On("GetByEmail", ctx, user.Email).Return(user, nil)

		_, err := f.service.Login(ctx, &dto.LoginRequest{Email: user.Email, Password: "Secret123"})
		assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
	})

	t.Run("issues tokens without 2fa", func(t *testing.T) {
		f := newAuthFixture()
		user := activeUser(t, "Secret123")
		f.users.On("GetByEmail", ctx, user.Email).Return(user, nil)
		f.twoFactor.On("Get", ctx, user.ID).Return(nil, apperrors.ErrResourceNotFound)
		f.tokens.On("CreateToken", ctx, mock.AnythingOfType("string"), user.ID, mock.AnythingOfType("time.Time")).Return(nil)
		f.users.On("UpdateLastLogin", ctx, user.ID).Return(nil)

		resp, err := f.service.Login(ctx, &dto.LoginRequest{Email: user.Email, Password: "Secret123"})
		require.NoError(t, err)
		assert.False(t, resp.TwoFactorRequired)
		require.NotNil(t, resp.Token)
		assert.Equal(t, "Bearer", resp.Token.TokenType)
		assert.NotEmpty(t, resp.Token.AccessToken)
		assert.NotEmpty(t, resp.Token.RefreshToken)
		f.tokens.AssertExpectations(t)
	})

	t.Run("2fa challenge then code", func(t *testing.T) {
		f := newAuthFixture()
		user := activeUser(t, "Secret123")
		f.users.On("GetByEmail", ctx, user.Email).Return(user, nil)
		f.users.On("GetByID", ctx, user.ID).Return(user, nil)
		f.twoFactor.On("Get", ctx, user.ID).Return(&models.TwoFactor{UserID: user.ID, SecretRef: "ref-1", Enabled: true}, nil)
		f.tokens.On("CreateToken", ctx, mock.AnythingOfType("string"), user.ID, mock.AnythingOfType("time.Time")).Return(nil)
		f.users.On("UpdateLastLogin", ctx, user.ID).Return(nil)
		f.invoker.on(functions.VerifyTwoFactor, func(request, out any) error {
			req := request.(functions.VerifyTwoFactorRequest)
			out.(*functions.VerifyTwoFactorResponse).Valid = req.SecretRef == "ref-1" && req.Code == "123456"
			return nil
		})

		first, err := f.service.Login(ctx, &dto.LoginRequest{Email: user.Email, Password: "Secret123"})
		require.NoError(t, err)
		assert.True(t, first.TwoFactorRequired)
		assert.Nil(t, first.Token)
		require.NotEmpty(t, first.ChallengeToken)

		_, err = f.service.LoginTwoFactor(ctx, &dto.TwoFactorLoginRequest{ChallengeToken: first.ChallengeToken, Code: "000000"})
		assert.ErrorIs(t, err, apperrors.ErrTwoFactorInvalid)

		second, err := f.service.LoginTwoFactor(ctx, &dto.TwoFactorLoginRequest{ChallengeToken: first.ChallengeToken, Code: "123456"})
		require.NoError(t, err)
		require.NotNil(t, second.Token)
		assert.Equal(t, 2, f.invoker.called(functions.VerifyTwoFactor))
	})

	t.Run("access token is not a challenge", func(t *testing.T) {
		f := newAuthFixture()
		user := activeUser(t, "Secret123")
		f.users.On("GetByEmail", ctx, user.Email).Return(user, nil)
		f.twoFactor.On("Get", ctx, user.ID).Return(nil, apperrors.ErrResourceNotFound)
		f.tokens.On("CreateToken", ctx, mock.Anything, user.ID, mock.Anything).Return(nil)
		f.users.On("UpdateLastLogin", ctx, user.ID).Return(nil)

		resp, err := f.service.Login(ctx, &dto.LoginRequest{Email: user.Email, Password: "Secret123"})
		require.NoError(t, err)

		_, err = f.service.LoginTwoFactor(ctx, &dto.TwoFactorLoginRequest{ChallengeToken: resp.Token.AccessToken, Code: "123456"})
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})
}

func TestRefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates", func(t *testing.T) {
		f := newAuthFixture()
		user := activeUser(t, "Secret123")
		f.tokens.On("ConsumeToken", ctx, "old").Return(user.ID, nil)
		f.users.On("GetByID", ctx, user.ID).Return(user, nil)
		f.tokens.On("CreateToken", ctx, mock.MatchedBy(func(tok string) bool { return tok != "old" }), user.ID, mock.Anything).Return(nil)

		resp, err := f.service.RefreshToken(ctx, "old")
		require.NoError(t, err)
		assert.NotEqual(t, "old", resp.RefreshToken)
		f.tokens.AssertExpectations(t)
		f.tokens.AssertNotCalled(t, "RevokeToken", mock.Anything, mock.Anything)
	})

	t.Run("a token rotates only once", func(t *testing.T) {
		f := newAuthFixture()
		user := activeUser(t, "Secret123")
		f.tokens.On("ConsumeToken", ctx, "old").Return(user.ID, nil).Once()
		f.tokens.On("ConsumeToken", ctx, "old").Return(int64(0), apperrors.ErrTokenRevoked)
		f.users.On("GetByID", ctx, user.ID).Return(user, nil)
		f.tokens.On("CreateToken", ctx, mock.Anything, user.ID, mock.Anything).Return(nil)

		_, err := f.service.RefreshToken(ctx, "old")
		require.NoError(t, err)
		_, err = f.service.RefreshToken(ctx, "old")
		assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
		f.tokens.AssertNumberOfCalls(t, "CreateToken", 1)
	})

	t.Run("revoked token", func(t *testing.T) {
		f := newAuthFixture()
		f.tokens.On("ConsumeToken", ctx, "old").Return(int64(0), apperrors.ErrTokenRevoked)

		_, err := f.service.RefreshToken(ctx, "old")
		assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
	})

	t.Run("disabled user loses every session", func(t *testing.T) {
		f := newAuthFixture()
		user := activeUser(t, "Secret123")
		user.IsActive = false
		f.tokens.On("ConsumeToken", ctx, "old").Return(user.ID, nil)
		f.users.On("GetByID", ctx, user.ID).Return(user, nil)
		f.tokens.On("RevokeAllUserTokens", ctx, user.ID).Return(nil)

		_, err := f.service.RefreshToken(ctx, "old")
		assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
		f.tokens.AssertCalled(t, "RevokeAllUserTokens", ctx, user.ID)
	})
}

func TestLogoutIgnoresUnknownToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	f.tokens.On("RevokeToken", ctx, "missing").Return(apperrors.ErrTokenNotFound)

	assert.NoError(t, f.service.Logout(ctx, "missing"))
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	f.users.On("GetByEmail", ctx, "ghost@example.org").Return(nil, apperrors.ErrUserNotFound)

	assert.NoError(t, f.service.ForgotPassword(ctx, "ghost@example.org"))
	assert.Empty(t, f.mailer.kinds())
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("expired token", func(t *testing.T) {
		f := newAuthFixture()
		f.service.now = func() time.Time { return now }
		f.userTokens.On("GetByToken", ctx, "tok", models.TokenPurposePasswordReset).Return(&models.UserToken{
			ID: 1, UserID: 11, ExpiresAt: now.Add(-time.Minute),
		}, nil)

		err := f.service.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: "tok", NewPassword: "NewSecret1"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidPasswordResetToken)
		f.userTokens.AssertNotCalled(t, "MarkUsed", mock.Anything, mock.Anything)
	})

	t.Run("used token", func(t *testing.T) {
		f := newAuthFixture()
		f.service.now = func() time.Time { return now }
		used := now.Add(-time.Minute)
		f.userTokens.On("GetByToken", ctx, "tok", models.TokenPurposePasswordReset).Return(&models.UserToken{
			ID: 1, UserID: 11, ExpiresAt: now.Add(time.Hour), UsedAt: &used,
		}, nil)

		err := f.service.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: "tok", NewPassword: "NewSecret1"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidPasswordResetToken)
	})

	t.Run("sets password and revokes sessions", func(t *testing.T) {
		f := newAuthFixture()
		f.service.now = func() time.Time { return now }
		f.userTokens.On("GetByToken", ctx, "tok", models.TokenPurposePasswordReset).Return(&models.UserToken{
			ID: 1, UserID: 11, ExpiresAt: now.Add(time.Hour),
		}, nil)
		f.userTokens.On("MarkUsed", ctx, int64(1)).Return(nil)
		f.users.On("UpdatePassword", ctx, int64(11), mock.MatchedBy(func(hash string) bool {
			return auth.CheckPassword(hash, "NewSecret1")
		})).Return(nil)
		f.tokens.On("RevokeAllUserTokens", ctx, int64(11)).Return(nil)

		require.NoError(t, f.service.ResetPassword(ctx, &dto.ResetPasswordRequest{Token: "tok", NewPassword: "NewSecret1"}))
		f.users.AssertExpectations(t)
		f.tokens.AssertExpectations(t)
	})
}
