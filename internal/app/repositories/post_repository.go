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
	"github.com/parivartan/platform-api/internal/pkg/logger"
)

// IPostRepository defines post and like persistence
type IPostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id, viewerID int64) (*models.Post, error)
	Update(ctx context.Context, id int64, content string, imageURL *string) error
	SetImage(ctx context.Context, id int64, imageURL string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter models.PostFilter, offset uint64, limit int) ([]*models.Post, int64, error)
	ToggleLike(ctx context.Context, postID, userID int64) (bool, int64, error)
	SetStatus(ctx context.Context, ids []int64, status models.PostStatus) (int64, error)
	DeleteMany(ctx context.Context, ids []int64) (int64, error)
}

// PostRepository handles posts and post_likes
type PostRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{
		db: db,
		sb: newBuilder(),
	}
}

func (r *PostRepository) selectPosts(viewerID int64) squirrel.SelectBuilder {
	return r.sb.Select(
		"p.id", "p.author_id", "p.content", "p.image_url", "p.status", "p.created_at", "p.updated_at",
		"pr.username", "pr.full_name", "pr.avatar_url",
		"(SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id)",
		"(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id)",
	).
		Column(squirrel.Expr("EXISTS(SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = ?)", viewerID)).
		From("posts p").
		Join("profiles pr ON pr.user_id = p.author_id")
}

func scanPost(row pgx.Row) (*models.Post, error) {
	p := &models.Post{Author: &models.UserSummary{}}
	err := row.Scan(
		&p.ID, &p.AuthorID, &p.Content, &p.ImageURL, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		&p.Author.Username, &p.Author.FullName, &p.Author.AvatarURL,
		&p.LikeCount, &p.CommentCount, &p.LikedByMe,
	)
	if err != nil {
		return nil, err
	}
	p.Author.ID = p.AuthorID
	return p, nil
}

// Create inserts a post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.Status == "" {
		post.Status = models.PostStatusPublished
	}
	sql, args, err := r.sb.Insert("posts").
		Columns("author_id", "content", "image_url", "status").
		Values(post.AuthorID, post.Content, post.ImageURL, post.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create post query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt); err != nil {
		logger.Error().Err(err).Int64("authorID", post.AuthorID).Msg("Error creating post")
		return fmt.Errorf("error creating post: %w", err)
	}
	return nil
}

// GetByID loads a post with counts as seen by viewerID
func (r *PostRepository) GetByID(ctx context.Context, id, viewerID int64) (*models.Post, error) {
	sql, args, err := r.selectPosts(viewerID).Where(squirrel.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get post query: %w", err)
	}

	post, err := scanPost(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("post not found")
		}
		return nil, fmt.Errorf("error retrieving post: %w", err)
	}
	return post, nil
}

// Update replaces post content
func (r *PostRepository) Update(ctx context.Context, id int64, content string, imageURL *string) error {
	tag, err := r.db.Exec(ctx, `UPDATE posts SET content = $1, image_url = $2, updated_at = $3 WHERE id = $4`,
		content, imageURL, time.Now(), id)
	if err != nil {
		return fmt.Errorf("error updating post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("post not found")
	}
	return nil
}

// SetImage stores an uploaded image URL
func (r *PostRepository) SetImage(ctx context.Context, id int64, imageURL string) error {
	tag, err := r.db.Exec(ctx, `UPDATE posts SET image_url = $1, updated_at = NOW() WHERE id = $2`, imageURL, id)
	if err != nil {
		return fmt.Errorf("error setting post image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("post not found")
	}
	return nil
}

// Delete removes a post; likes and comments cascade
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("post not found")
	}
	return nil
}

// List returns newest posts first
func (r *PostRepository) List(ctx context.Context, filter models.PostFilter, offset uint64, limit int) ([]*models.Post, int64, error) {
	where := squirrel.And{}
	if filter.AuthorID != nil {
		where = append(where, squirrel.Eq{"p.author_id": *filter.AuthorID})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"p.status": *filter.Status})
	}

	total, err := queryCount(ctx, r.db, r.sb.Select("COUNT(*)").From("posts p").Where(where))
	if err != nil {
		logger.Error().Err(err).Msg("Error counting posts")
		return nil, 0, fmt.Errorf("error counting posts: %w", err)
	}

	sql, args, err := r.selectPosts(filter.ViewerID).Where(where).
		OrderBy("p.created_at DESC", "p.id DESC").
		Offset(offset).Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list posts query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing posts")
		return nil, 0, fmt.Errorf("error listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*models.Post, 0, limit)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, total, rows.Err()
}

// ToggleLike likes or unlikes a post and returns the new state and count
func (r *PostRepository) ToggleLike(ctx context.Context, postID, userID int64) (bool, int64, error) {
	var liked bool
	var count int64

	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return apperrors.NewResourceNotFoundError("post not found")
		}

		tag, err := tx.Exec(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			if _, err := tx.Exec(ctx, `
				INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)
				ON CONFLICT DO NOTHING`, postID, userID); err != nil {
				return err
			}
			liked = true
		}

		return tx.QueryRow(ctx, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&count)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return false, 0, err
		}
		logger.Error().Err(err).Int64("postID", postID).Msg("Error toggling like")
		return false, 0, fmt.Errorf("error toggling like: %w", err)
	}
	return liked, count, nil
}

// SetStatus changes the status of many posts
func (r *PostRepository) SetStatus(ctx context.Context, ids []int64, status models.PostStatus) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE posts SET status = $1, updated_at = NOW() WHERE id = ANY($2)`, status, ids)
	if err != nil {
		return 0, fmt.Errorf("error updating post status: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteMany removes many posts
func (r *PostRepository) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("error deleting posts: %w", err)
	}
	return tag.RowsAffected(), nil
}
