package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/parivartan/platform-api/internal/app/models"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
)

// IAnnouncementRepository defines announcement persistence
type IAnnouncementRepository interface {
	Create(ctx context.Context, a *models.Announcement) error
	GetByID(ctx context.Context, id int64) (*models.Announcement, error)
	Update(ctx context.Context, a *models.Announcement) error
	Delete(ctx context.Context, id int64) error
	ListActive(ctx context.Context, now time.Time) ([]*models.Announcement, error)
}

// AnnouncementRepository handles the announcements table
type AnnouncementRepository struct {
	db *pgxpool.Pool
}

// NewAnnouncementRepository creates a new AnnouncementRepository
func NewAnnouncementRepository(db *pgxpool.Pool) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

const announcementSelect = `
	SELECT id, title, body, is_pinned, is_active, expires_at, created_by, created_at, updated_at FROM announcements`

func scanAnnouncement(row pgx.Row) (*models.Announcement, error) {
	a := &models.Announcement{}
	err := row.Scan(&a.ID, &a.Title, &a.Body, &a.IsPinned, &a.IsActive, &a.ExpiresAt, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Create inserts an announcement
func (r *AnnouncementRepository) Create(ctx context.Context, a *models.Announcement) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO announcements (title, body, is_pinned, is_active, expires_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`,
		a.Title, a.Body, a.IsPinned, a.IsActive, a.ExpiresAt, a.CreatedBy,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating announcement: %w", err)
	}
	return nil
}

// GetByID loads one announcement
func (r *AnnouncementRepository) GetByID(ctx context.Context, id int64) (*models.Announcement, error) {
	a, err := scanAnnouncement(r.db.QueryRow(ctx, announcementSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("announcement not found")
		}
		return nil, fmt.Errorf("error retrieving announcement: %w", err)
	}
	return a, nil
}

// Update replaces an announcement
func (r *AnnouncementRepository) Update(ctx context.Context, a *models.Announcement) error {
	err := r.db.QueryRow(ctx, `
		UPDATE announcements SET title = $1, body = $2, is_pinned = $3, is_active = $4, expires_at = $5, updated_at = NOW()
		WHERE id = $6 RETURNING updated_at`,
		a.Title, a.Body, a.IsPinned, a.IsActive, a.ExpiresAt, a.ID,
	).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewResourceNotFoundError("announcement not found")
		}
		return fmt.Errorf("error updating announcement: %w", err)
	}
	return nil
}

// Delete removes an announcement
func (r *AnnouncementRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting announcement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("announcement not found")
	}
	return nil
}

// ListActive lists unexpired active announcements, pinned first then newest
func (r *AnnouncementRepository) ListActive(ctx context.Context, now time.Time) ([]*models.Announcement, error) {
	rows, err := r.db.Query(ctx, announcementSelect+`
		WHERE is_active AND (expires_at IS NULL OR expires_at > $1)
		ORDER BY is_pinned DESC, created_at DESC, id DESC`, now)
	if err != nil {
		return nil, fmt.Errorf("error listing announcements: %w", err)
	}
	defer rows.Close()

	items := []*models.Announcement{}
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning announcement: %w", err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
