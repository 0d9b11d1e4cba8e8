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

// ICommentRepository defines comment persistence
type ICommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	ListByPost(ctx context.Context, postID int64, offset uint64, limit int) ([]*models.Comment, int64, error)
	Delete(ctx context.Context, id int64) error
}

// CommentRepository handles the comments table
type CommentRepository struct {
	db *pgxpool.Pool
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentSelect = `
	SELECT c.id, c.post_id, c.author_id, c.content, c.created_at, pr.username, pr.full_name, pr.avatar_url
	FROM comments c JOIN profiles pr ON pr.user_id = c.author_id`

func scanComment(row pgx.Row) (*models.Comment, error) {
	c := &models.Comment{Author: &models.UserSummary{}}
	if err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt,
		&c.Author.Username, &c.Author.FullName, &c.Author.AvatarURL); err != nil {
		return nil, err
	}
	c.Author.ID = c.AuthorID
	return c, nil
}

// Create inserts a comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO comments (post_id, author_id, content) VALUES ($1, $2, $3)
		RETURNING id, created_at`, comment.PostID, comment.AuthorID, comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewResourceNotFoundError("post not found")
		}
		return fmt.Errorf("error creating comment: %w", err)
	}
	return nil
}

// GetByID loads one comment
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	c, err := scanComment(r.db.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("comment not found")
		}
		return nil, fmt.Errorf("error retrieving comment: %w", err)
	}
	return c, nil
}

// ListByPost lists comments oldest first
func (r *CommentRepository) ListByPost(ctx context.Context, postID int64, offset uint64, limit int) ([]*models.Comment, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM comments WHERE post_id = $1`, postID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting comments: %w", err)
	}

	rows, err := r.db.Query(ctx, commentSelect+` WHERE c.post_id = $1 ORDER BY c.created_at ASC, c.id ASC OFFSET $2 LIMIT $3`,
		postID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing comments: %w", err)
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, total, rows.Err()
}

// Delete removes a comment
func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("comment not found")
	}
	return nil
}
