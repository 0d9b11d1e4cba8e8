package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/pkg/helpers"
)

// IAnalyticsRepository produces dashboard aggregates
type IAnalyticsRepository interface {
	Snapshot(ctx context.Context, now time.Time) (*models.Analytics, error)
}

// AnalyticsRepository runs read-only aggregate queries
type AnalyticsRepository struct {
	db *pgxpool.Pool
}

// NewAnalyticsRepository creates a new AnalyticsRepository
func NewAnalyticsRepository(db *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// Snapshot counts users, content, events, donations, messages, studio usage and errors
func (r *AnalyticsRepository) Snapshot(ctx context.Context, now time.Time) (*models.Analytics, error) {
	a := &models.Analytics{
		UsersByRole: map[models.Role]int64{},
		GeneratedAt: now,
	}

	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM posts),
			(SELECT COUNT(*) FROM posts WHERE status = 'hidden'),
			(SELECT COUNT(*) FROM events),
			(SELECT COUNT(*) FROM events WHERE starts_at >= $1),
			(SELECT COUNT(*) FROM campaigns WHERE is_active),
			(SELECT COUNT(*) FROM donations WHERE status = 'completed'),
			(SELECT COALESCE(SUM(amount), 0) FROM donations WHERE status = 'completed'),
			(SELECT COUNT(*) FROM messages WHERE created_at >= $2),
			(SELECT COUNT(*) FROM ai_usage WHERE status = 'success' AND created_at >= $3),
			(SELECT COUNT(*) FROM error_logs WHERE created_at >= $4)`,
		now, helpers.DaysAgo(now, 7), helpers.StartOfDayUTC(now), now.Add(-24*time.Hour),
	).Scan(&a.TotalUsers, &a.TotalPosts, &a.HiddenPosts, &a.TotalEvents, &a.UpcomingEvents, &a.ActiveCampaigns,
		&a.CompletedDonations, &a.DonationsRaised, &a.MessagesLast7Days, &a.AIGenerationsToday, &a.ErrorsLast24Hours)
	if err != nil {
		return nil, fmt.Errorf("error computing analytics: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT COALESCE(ur.role, 'viewer') AS role, COUNT(*)
		FROM users u LEFT JOIN user_roles ur ON ur.user_id = u.id
		GROUP BY 1`)
	if err != nil {
		return nil, fmt.Errorf("error counting users by role: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var role models.Role
		var count int64
		if err := rows.Scan(&role, &count); err != nil {
			return nil, fmt.Errorf("error scanning role count: %w", err)
		}
		a.UsersByRole[role] = count
	}
	return a, rows.Err()
}
