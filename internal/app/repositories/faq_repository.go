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

// IFAQRepository defines chatbot FAQ persistence
type IFAQRepository interface {
	Create(ctx context.Context, f *models.ChatbotFAQ) error
	GetByID(ctx context.Context, id int64) (*models.ChatbotFAQ, error)
	Update(ctx context.Context, f *models.ChatbotFAQ) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, activeOnly bool) ([]*models.ChatbotFAQ, error)
}

// FAQRepository handles the chatbot_faq table
type FAQRepository struct {
	db *pgxpool.Pool
}

// NewFAQRepository creates a new FAQRepository
func NewFAQRepository(db *pgxpool.Pool) *FAQRepository {
	return &FAQRepository{db: db}
}

const faqSelect = `
	SELECT id, question, answer, keywords, priority, is_active, created_at, updated_at FROM chatbot_faq`

func scanFAQ(row pgx.Row) (*models.ChatbotFAQ, error) {
	f := &models.ChatbotFAQ{}
	err := row.Scan(&f.ID, &f.Question, &f.Answer, &f.Keywords, &f.Priority, &f.IsActive, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

// Create inserts an FAQ entry
func (r *FAQRepository) Create(ctx context.Context, f *models.ChatbotFAQ) error {
	if f.Keywords == nil {
		f.Keywords = []string{}
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO chatbot_faq (question, answer, keywords, priority, is_active)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`,
		f.Question, f.Answer, f.Keywords, f.Priority, f.IsActive,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating faq: %w", err)
	}
	return nil
}

// GetByID loads one FAQ entry
func (r *FAQRepository) GetByID(ctx context.Context, id int64) (*models.ChatbotFAQ, error) {
	f, err := scanFAQ(r.db.QueryRow(ctx, faqSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("faq not found")
		}
		return nil, fmt.Errorf("error retrieving faq: %w", err)
	}
	return f, nil
}

// Update replaces an FAQ entry
func (r *FAQRepository) Update(ctx context.Context, f *models.ChatbotFAQ) error {
	if f.Keywords == nil {
		f.Keywords = []string{}
	}
	err := r.db.QueryRow(ctx, `
		UPDATE chatbot_faq SET question = $1, answer = $2, keywords = $3, priority = $4, is_active = $5,
			updated_at = NOW()
		WHERE id = $6 RETURNING created_at, updated_at`,
		f.Question, f.Answer, f.Keywords, f.Priority, f.IsActive, f.ID,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewResourceNotFoundError("faq not found")
		}
		return fmt.Errorf("error updating faq: %w", err)
	}
	return nil
}

// Delete removes an FAQ entry
func (r *FAQRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM chatbot_faq WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting faq: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("faq not found")
	}
	return nil
}

// List returns FAQ entries by descending priority
func (r *FAQRepository) List(ctx context.Context, activeOnly bool) ([]*models.ChatbotFAQ, error) {
	query := faqSelect
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY priority DESC, id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing faq: %w", err)
	}
	defer rows.Close()

	items := []*models.ChatbotFAQ{}
	for rows.Next() {
		f, err := scanFAQ(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning faq: %w", err)
		}
		items = append(items, f)
	}
	return items, rows.Err()
}
