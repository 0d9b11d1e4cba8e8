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
	"github.com/parivartan/platform-api/internal/db"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
)

// IAIUsageRepository defines content studio usage persistence
type IAIUsageRepository interface {
	Reserve(ctx context.Context, u *models.AIUsage, since time.Time, limit int) error
	Finish(ctx context.Context, u *models.AIUsage) error
	CountSuccessSince(ctx context.Context, userID int64, since time.Time) (int64, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]*models.AIUsage, error)
	List(ctx context.Context, offset uint64, limit int) ([]*models.AIUsage, int64, error)
}

// AIUsageRepository handles the ai_usage table
type AIUsageRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAIUsageRepository creates a new AIUsageRepository
func NewAIUsageRepository(db *pgxpool.Pool) *AIUsageRepository {
	return &AIUsageRepository{
		db: db,
		sb: newBuilder(),
	}
}

func scanAIUsageRows(rows pgx.Rows) ([]*models.AIUsage, error) {
	defer rows.Close()
	items := []*models.AIUsage{}
	for rows.Next() {
		u := &models.AIUsage{}
		if err := rows.Scan(&u.ID, &u.UserID, &u.Kind, &u.Prompt, &u.Status, &u.ResultURL, &u.ErrorMessage, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning ai usage: %w", err)
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

// Reserve inserts a pending generation for u.UserID unless the user already has
// limit pending or successful generations since the given time. The check and
// the insert run under a per-user advisory lock. A limit of zero is unlimited.
func (r *AIUsageRepository) Reserve(ctx context.Context, u *models.AIUsage, since time.Time, limit int) error {
	if u.Kind == "" {
		u.Kind = "image"
	}
	u.Status = models.AIUsagePending

	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if limit > 0 {
			if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended('ai_usage:' || $1::text, 0))`, u.UserID); err != nil {
				return err
			}
			var used int64
			if err := tx.QueryRow(ctx, `
				SELECT COUNT(*) FROM ai_usage
				WHERE user_id = $1 AND status IN ('pending', 'success') AND created_at >= $2`,
				u.UserID, since,
			).Scan(&used); err != nil {
				return err
			}
			if used >= int64(limit) {
				return apperrors.ErrQuotaExceeded
			}
		}
		return tx.QueryRow(ctx, `
			INSERT INTO ai_usage (user_id, kind, prompt, status)
			VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
			u.UserID, u.Kind, u.Prompt, u.Status,
		).Scan(&u.ID, &u.CreatedAt)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrQuotaExceeded) {
			return err
		}
		return fmt.Errorf("error reserving ai usage: %w", err)
	}
	return nil
}

// Finish stores the outcome of a reserved generation
func (r *AIUsageRepository) Finish(ctx context.Context, u *models.AIUsage) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE ai_usage SET status = $1, result_url = $2, error_message = $3
		WHERE id = $4 AND status = 'pending'`,
		u.Status, u.ResultURL, u.ErrorMessage, u.ID)
	if err != nil {
		return fmt.Errorf("error recording ai usage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("generation not found")
	}
	return nil
}

// CountSuccessSince counts successful generations of a user since a point in time
func (r *AIUsageRepository) CountSuccessSince(ctx context.Context, userID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM ai_usage WHERE user_id = $1 AND status = 'success' AND created_at >= $2`,
		userID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting ai usage: %w", err)
	}
	return count, nil
}

// ListByUser returns the latest generations of a user
func (r *AIUsageRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*models.AIUsage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, kind, prompt, status, result_url, error_message, created_at
		FROM ai_usage WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing ai usage: %w", err)
	}
	return scanAIUsageRows(rows)
}

// List returns all generations, newest first
func (r *AIUsageRepository) List(ctx context.Context, offset uint64, limit int) ([]*models.AIUsage, int64, error) {
	total, err := queryCount(ctx, r.db, r.sb.Select("COUNT(*)").From("ai_usage"))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting ai usage: %w", err)
	}

	sql, args, err := r.sb.
		Select("id", "user_id", "kind", "prompt", "status", "result_url", "error_message", "created_at").
		From("ai_usage").
		OrderBy("created_at DESC", "id DESC").
		Offset(offset).Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list ai usage query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing ai usage: %w", err)
	}
	items, err := scanAIUsageRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
