package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/dberrors"
)

// IAchievementRepository defines achievement persistence
type IAchievementRepository interface {
	Create(ctx context.Context, a *models.Achievement) error
	GetByID(ctx context.Context, id int64) (*models.Achievement, error)
	Delete(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, userID int64) ([]*models.Achievement, error)
}

// AchievementRepository handles the achievements table
type AchievementRepository struct {
	db *pgxpool.Pool
}

// NewAchievementRepository creates a new AchievementRepository
func NewAchievementRepository(db *pgxpool.Pool) *AchievementRepository {
	return &AchievementRepository{db: db}
}

const achievementSelect = `SELECT id, user_id, title, description, icon, points, awarded_by, awarded_at FROM achievements`

func scanAchievement(row pgx.Row) (*models.Achievement, error) {
	a := &models.Achievement{}
	err := row.Scan(&a.ID, &a.UserID, &a.Title, &a.Description, &a.Icon, &a.Points, &a.AwardedBy, &a.AwardedAt)
	return a, err
}

// Create awards an achievement
func (r *AchievementRepository) Create(ctx context.Context, a *models.Achievement) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO achievements (user_id, title, description, icon, points, awarded_by)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, awarded_at`,
		a.UserID, a.Title, a.Description, a.Icon, a.Points, a.AwardedBy,
	).Scan(&a.ID, &a.AwardedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("error creating achievement: %w", err)
	}
	return nil
}

// GetByID loads one achievement
func (r *AchievementRepository) GetByID(ctx context.Context, id int64) (*models.Achievement, error) {
	a, err := scanAchievement(r.db.QueryRow(ctx, achievementSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("achievement not found")
		}
		return nil, fmt.Errorf("error retrieving achievement: %w", err)
	}
	return a, nil
}

// Delete removes an achievement
func (r *AchievementRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM achievements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting achievement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("achievement not found")
	}
	return nil
}

// ListByUser lists a user's achievements, newest first
func (r *AchievementRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Achievement, error) {
	rows, err := r.db.Query(ctx, achievementSelect+` WHERE user_id = $1 ORDER BY awarded_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing achievements: %w", err)
	}
	defer rows.Close()

	items := []*models.Achievement{}
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning achievement: %w", err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
