package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/logger"
)

// IUserTokenRepository stores single-use email verification and password reset tokens
type IUserTokenRepository interface {
	Create(ctx context.Context, token *models.UserToken) error
	GetByToken(ctx context.Context, token string, purpose models.TokenPurpose) (*models.UserToken, error)
	MarkUsed(ctx context.Context, id int64) error
	InvalidateForUser(ctx context.Context, userID int64, purpose models.TokenPurpose) error
}

// UserTokenRepository handles the user_tokens table
type UserTokenRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserTokenRepository creates a new UserTokenRepository
func NewUserTokenRepository(db *pgxpool.Pool) *UserTokenRepository {
	return &UserTokenRepository{
		db: db,
		sb: newBuilder(),
	}
}

// Create stores a new token
func (r *UserTokenRepository) Create(ctx context.Context, token *models.UserToken) error {
	sql, args, err := r.sb.Insert("user_tokens").
		Columns("user_id", "token", "purpose", "expires_at").
		Values(token.UserID, token.Token, token.Purpose, token.ExpiresAt).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user token query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&token.ID, &token.CreatedAt); err != nil {
		logger.Error().Err(err).Int64("userID", token.UserID).Str("purpose", string(token.Purpose)).Msg("Error creating user token")
		return fmt.Errorf("error creating user token: %w", err)
	}
	return nil
}

// GetByToken finds a token of the given purpose, used or not
func (r *UserTokenRepository) GetByToken(ctx context.Context, token string, purpose models.TokenPurpose) (*models.UserToken, error) {
	t := &models.UserToken{}
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, token, purpose, expires_at, used_at, created_at
		FROM user_tokens WHERE token = $1 AND purpose = $2`, token, purpose,
	).Scan(&t.ID, &t.UserID, &t.Token, &t.Purpose, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, fmt.Errorf("error retrieving user token: %w", err)
	}
	return t, nil
}

// MarkUsed consumes a token. A token already consumed yields ErrTokenRevoked.
func (r *UserTokenRepository) MarkUsed(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE user_tokens SET used_at = $1 WHERE id = $2 AND used_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("error consuming user token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTokenRevoked
	}
	return nil
}

// InvalidateForUser consumes every outstanding token of a purpose for a user
func (r *UserTokenRepository) InvalidateForUser(ctx context.Context, userID int64, purpose models.TokenPurpose) error {
	_, err := r.db.Exec(ctx, `
		UPDATE user_tokens SET used_at = NOW()
		WHERE user_id = $1 AND purpose = $2 AND used_at IS NULL`, userID, purpose)
	if err != nil {
		return fmt.Errorf("error invalidating user tokens: %w", err)
	}
	return nil
}
