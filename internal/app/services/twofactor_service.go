package services

import (
	"context"
	"errors"

	"github.com/parivartan/platform-api/internal/app/models/dto"
	"github.com/parivartan/platform-api/internal/app/repositories"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/functions"
	"github.com/rs/zerolog"
)

// verifyTwoFactorCode asks the verify-2fa function whether code is valid for secretRef
func verifyTwoFactorCode(ctx context.Context, invoker functions.Invoker, userID int64, secretRef, code string) error {
	var resp functions.VerifyTwoFactorResponse
	err := invoker.Invoke(ctx, functions.VerifyTwoFactor, functions.VerifyTwoFactorRequest{
		UserID:    userID,
		SecretRef: secretRef,
		Code:      code,
	}, &resp)
	if err != nil {
		return err
	}
	if !resp.Valid {
		return apperrors.ErrTwoFactorInvalid
	}
	return nil
}

// TwoFactorService manages a user's second factor. Secrets stay inside the 2FA functions.
type TwoFactorService struct {
	userRepo      repositories.IUserRepository
	twoFactorRepo repositories.ITwoFactorRepository
	functions     functions.Invoker
	logger        zerolog.Logger
}

// NewTwoFactorService creates a new TwoFactorService
func NewTwoFactorService(
	userRepo repositories.IUserRepository,
	twoFactorRepo repositories.ITwoFactorRepository,
	invoker functions.Invoker,
	logger zerolog.Logger,
) *TwoFactorService {
	return &TwoFactorService{
		userRepo:      userRepo,
		twoFactorRepo: twoFactorRepo,
		functions:     invoker,
		logger:        logger,
	}
}

// Setup starts enrollment. The row stays disabled until Enable confirms a code.
func (s *TwoFactorService) Setup(ctx context.Context, userID int64) (*dto.TwoFactorSetupResponse, error) {
	existing, err := s.twoFactorRepo.Get(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, err
	}
	if existing != nil && existing.Enabled {
		return nil, apperrors.NewConflictError("two-factor authentication is already enabled")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var resp functions.SetupTwoFactorResponse
	if err := s.functions.Invoke(ctx, functions.SetupTwoFactor, functions.SetupTwoFactorRequest{
		UserID: user.ID,
		Email:  user.Email,
	}, &resp); err != nil {
		return nil, err
	}
	if resp.SecretRef == "" {
		return nil, apperrors.NewExternalServiceError("2FA setup returned no secret reference")
	}

	if err := s.twoFactorRepo.SavePending(ctx, userID, resp.SecretRef); err != nil {
		return nil, err
	}
	return &dto.TwoFactorSetupResponse{OtpauthURL: resp.OtpauthURL, QRCode: resp.QRCode}, nil
}

// Enable confirms a pending enrollment with a valid code
func (s *TwoFactorService) Enable(ctx context.Context, userID int64, code string) error {
	tf, err := s.twoFactorRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.NewBadRequestError("two-factor setup has not been started")
		}
		return err
	}
	if tf.Enabled {
		return apperrors.NewConflictError("two-factor authentication is already enabled")
	}
	if err := verifyTwoFactorCode(ctx, s.functions, userID, tf.SecretRef, code); err != nil {
		return err
	}
	if err := s.twoFactorRepo.Enable(ctx, userID); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", userID).Msg("Two-factor authentication enabled")
	return nil
}

// Disable removes the second factor after checking a valid code
func (s *TwoFactorService) Disable(ctx context.Context, userID int64, code string) error {
	tf, err := s.twoFactorRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.NewBadRequestError("two-factor authentication is not enabled")
		}
		return err
	}
	if !tf.Enabled {
		return apperrors.NewBadRequestError("two-factor authentication is not enabled")
	}
	if err := verifyTwoFactorCode(ctx, s.functions, userID, tf.SecretRef, code); err != nil {
		return err
	}
	if err := s.twoFactorRepo.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", userID).Msg("Two-factor authentication disabled")
	return nil
}

// Status reports whether the user has an enabled second factor
func (s *TwoFactorService) Status(ctx context.Context, userID int64) (*dto.TwoFactorStatusResponse, error) {
	tf, err := s.twoFactorRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return &dto.TwoFactorStatusResponse{Enabled: false}, nil
		}
		return nil, err
	}
	return &dto.TwoFactorStatusResponse{Enabled: tf.Enabled}, nil
}
