package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/dberrors"
)

// IBadgeRepository stores verification badges
type IBadgeRepository interface {
	Grant(ctx context.Context, badge *models.VerificationBadge) error
	Revoke(ctx context.Context, userID int64, badgeType string) error
	ListByUser(ctx context.Context, userID int64) ([]*models.VerificationBadge, error)
}

// BadgeRepository handles the verification_badges table
type BadgeRepository struct {
	db *pgxpool.Pool
}

// NewBadgeRepository creates a new BadgeRepository
func NewBadgeRepository(db *pgxpool.Pool) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// Grant inserts a badge. The pair (user, type) is unique.
func (r *BadgeRepository) Grant(ctx context.Context, badge *models.VerificationBadge) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO verification_badges (user_id, badge_type, granted_by)
		VALUES ($1, $2, $3) RETURNING id, created_at`,
		badge.UserID, badge.BadgeType, badge.GrantedBy,
	).Scan(&badge.ID, &badge.CreatedAt)
	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, "verification_badges_user_type_key"):
			return apperrors.NewConflictError("user already has this badge")
		case dberrors.IsForeignKeyViolation(err):
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("error granting badge: %w", err)
	}
	return nil
}

// Revoke deletes a badge
func (r *BadgeRepository) Revoke(ctx context.Context, userID int64, badgeType string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM verification_badges WHERE user_id = $1 AND badge_type = $2`, userID, badgeType)
	if err != nil {
		return fmt.Errorf("error revoking badge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("badge not found")
	}
	return nil
}

// ListByUser lists a user's badges
func (r *BadgeRepository) ListByUser(ctx context.Context, userID int64) ([]*models.VerificationBadge, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, badge_type, granted_by, created_at
		FROM verification_badges WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing badges: %w", err)
	}
	defer rows.Close()

	badges := []*models.VerificationBadge{}
	for rows.Next() {
		b := &models.VerificationBadge{}
		if err := rows.Scan(&b.ID, &b.UserID, &b.BadgeType, &b.GrantedBy, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning badge: %w", err)
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}
