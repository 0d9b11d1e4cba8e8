package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
)

// ITwoFactorRepository stores user_2fa rows
type ITwoFactorRepository interface {
	Get(ctx context.Context, userID int64) (*models.TwoFactor, error)
	SavePending(ctx context.Context, userID int64, secretRef string) error
	Enable(ctx context.Context, userID int64) error
	Delete(ctx context.Context, userID int64) error
}

// TwoFactorRepository handles the user_2fa table
type TwoFactorRepository struct {
	db *pgxpool.Pool
}

// NewTwoFactorRepository creates a new TwoFactorRepository
func NewTwoFactorRepository(db *pgxpool.Pool) *TwoFactorRepository {
	return &TwoFactorRepository{db: db}
}

// Get returns the 2FA row of a user or ErrResourceNotFound
func (r *TwoFactorRepository) Get(ctx context.Context, userID int64) (*models.TwoFactor, error) {
	tf := &models.TwoFactor{}
	err := r.db.QueryRow(ctx, `
		SELECT user_id, secret_ref, enabled, enabled_at, created_at FROM user_2fa WHERE user_id = $1`, userID,
	).Scan(&tf.UserID, &tf.SecretRef, &tf.Enabled, &tf.EnabledAt, &tf.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error retrieving 2fa: %w", err)
	}
	return tf, nil
}

// SavePending stores a fresh secret reference, disabled until confirmed
func (r *TwoFactorRepository) SavePending(ctx context.Context, userID int64, secretRef string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_2fa (user_id, secret_ref, enabled)
		VALUES ($1, $2, FALSE)
		ON CONFLICT (user_id) DO UPDATE
		SET secret_ref = EXCLUDED.secret_ref, enabled = FALSE, enabled_at = NULL, created_at = NOW()`,
		userID, secretRef)
	if err != nil {
		return fmt.Errorf("error saving pending 2fa: %w", err)
	}
	return nil
}

// Enable turns 2FA on
func (r *TwoFactorRepository) Enable(ctx context.Context, userID int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE user_2fa SET enabled = TRUE, enabled_at = NOW() WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("error enabling 2fa: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// Delete removes the 2FA row
func (r *TwoFactorRepository) Delete(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM user_2fa WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("error deleting 2fa: %w", err)
	}
	return nil
}
