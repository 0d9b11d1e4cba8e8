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
	"github.com/parivartan/platform-api/internal/pkg/dberrors"
)

// IPopupRepository defines popup persistence
type IPopupRepository interface {
	Create(ctx context.Context, p *models.Popup) error
	GetByID(ctx context.Context, id int64) (*models.Popup, error)
	Update(ctx context.Context, p *models.Popup) error
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context) ([]*models.Popup, error)
	ListLiveNotViewed(ctx context.Context, userID int64, now time.Time) ([]*models.Popup, error)
	RecordView(ctx context.Context, popupID, userID int64) error
}

// PopupRepository handles popups and popup_views
type PopupRepository struct {
	db *pgxpool.Pool
}

// NewPopupRepository creates a new PopupRepository
func NewPopupRepository(db *pgxpool.Pool) *PopupRepository {
	return &PopupRepository{db: db}
}

const popupSelect = `
	SELECT p.id, p.title, p.content, p.image_url, p.cta_label, p.cta_url, p.audience, p.starts_at, p.ends_at,
		p.is_active, p.created_by, p.created_at, p.updated_at
	FROM popups p`

func scanPopup(row pgx.Row) (*models.Popup, error) {
	p := &models.Popup{}
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.ImageURL, &p.CTALabel, &p.CTAURL, &p.Audience, &p.StartsAt, &p.EndsAt,
		&p.IsActive, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PopupRepository) query(ctx context.Context, sql string, args ...any) ([]*models.Popup, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing popups: %w", err)
	}
	defer rows.Close()

	items := []*models.Popup{}
	for rows.Next() {
		p, err := scanPopup(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning popup: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// Create inserts a popup
func (r *PopupRepository) Create(ctx context.Context, p *models.Popup) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO popups (title, content, image_url, cta_label, cta_url, audience, starts_at, ends_at, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id, created_at, updated_at`,
		p.Title, p.Content, p.ImageURL, p.CTALabel, p.CTAURL, p.Audience, p.StartsAt, p.EndsAt, p.IsActive, p.CreatedBy,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating popup: %w", err)
	}
	return nil
}

// GetByID loads one popup
func (r *PopupRepository) GetByID(ctx context.Context, id int64) (*models.Popup, error) {
	p, err := scanPopup(r.db.QueryRow(ctx, popupSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("popup not found")
		}
		return nil, fmt.Errorf("error retrieving popup: %w", err)
	}
	return p, nil
}

// Update replaces a popup
func (r *PopupRepository) Update(ctx context.Context, p *models.Popup) error {
	err := r.db.QueryRow(ctx, `
		UPDATE popups SET title = $1, content = $2, image_url = $3, cta_label = $4, cta_url = $5, audience = $6,
			starts_at = $7, ends_at = $8, is_active = $9, updated_at = NOW()
		WHERE id = $10 RETURNING created_at, updated_at`,
		p.Title, p.Content, p.ImageURL, p.CTALabel, p.CTAURL, p.Audience, p.StartsAt, p.EndsAt, p.IsActive, p.ID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewResourceNotFoundError("popup not found")
		}
		return fmt.Errorf("error updating popup: %w", err)
	}
	return nil
}

// Delete removes a popup and its views
func (r *PopupRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM popups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting popup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("popup not found")
	}
	return nil
}

// ListAll lists every popup, newest first
func (r *PopupRepository) ListAll(ctx context.Context) ([]*models.Popup, error) {
	return r.query(ctx, popupSelect+` ORDER BY p.created_at DESC, p.id DESC`)
}

// ListLiveNotViewed lists active popups inside their window that userID has not seen
func (r *PopupRepository) ListLiveNotViewed(ctx context.Context, userID int64, now time.Time) ([]*models.Popup, error) {
	return r.query(ctx, popupSelect+`
		WHERE p.is_active
			AND (p.starts_at IS NULL OR p.starts_at <= $2)
			AND (p.ends_at IS NULL OR p.ends_at > $2)
			AND NOT EXISTS (SELECT 1 FROM popup_views v WHERE v.popup_id = p.id AND v.user_id = $1)
		ORDER BY p.created_at DESC, p.id DESC`, userID, now)
}

// RecordView marks a popup seen; repeated calls are no-ops
func (r *PopupRepository) RecordView(ctx context.Context, popupID, userID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO popup_views (popup_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, popupID, userID)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewResourceNotFoundError("popup not found")
		}
		return fmt.Errorf("error recording popup view: %w", err)
	}
	return nil
}
